package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/terraincognita07/travelgc/internal/api"
	"github.com/terraincognita07/travelgc/internal/config"
	"github.com/terraincognita07/travelgc/internal/content"
	"github.com/terraincognita07/travelgc/internal/db"
	"github.com/terraincognita07/travelgc/internal/mailrelay"
	"github.com/terraincognita07/travelgc/internal/metrics"
	"github.com/terraincognita07/travelgc/internal/services"
)

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := setupLogging(cfg.LogLevel); err != nil {
		return err
	}

	deck, err := content.Load(cfg.DeckPath)
	if err != nil {
		return fmt.Errorf("deck init failed: %w", err)
	}

	dbPath := cfg.SessionDBPath
	if dbPath == "" {
		dbPath = db.MemoryDSN
	}
	database, err := db.OpenSQLite(dbPath)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	repositories := db.NewRepositories(database)

	relay := mailrelay.NewClient(relayConfig(cfg.Relay), nil)
	if !relay.Enabled() {
		log.Warn().Msg("email relay is not configured, registrations will fail")
	}

	recorder := metrics.NewRecorder()
	presentation := services.NewPresentationService(repositories.Sessions, relay, presentationConfig(deck, cfg), cfg.SessionTTL).
		WithStaleSendingAfter(staleSendingAfter(cfg.Relay.Timeout)).
		WithRecorder(recorder)

	handler, err := api.NewHandler(deck, presentation, cfg.SecretKey, cfg.TemplatesDir, api.HandlerOptions{
		CookieSecure: cfg.CookieSecure,
		SubmitLimit:  cfg.SubmitLimit,
		SubmitWindow: cfg.SubmitWindow,
		Views:        recorder,
		Sessions:     repositories.Sessions,
	})
	if err != nil {
		return fmt.Errorf("handler init failed: %w", err)
	}

	app := fiber.New(fiber.Config{
		AppName:               "TRAVEL GC",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())
	app.Use(csrf.New(csrfMiddlewareConfig(cfg.CookieSecure)))

	app.Static("/static", cfg.StaticDir)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(recorder.Registry(), promhttp.HandlerOpts{})))
	api.RegisterRoutes(app, handler)
	app.Use(handler.NotFound)

	janitor := services.NewSessionJanitor(repositories.Sessions, cfg.SessionSweepInterval)
	lifecycleCtx, cancelLifecycle := context.WithCancel(context.Background())
	defer cancelLifecycle()
	janitor.Start(lifecycleCtx)

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		cancelLifecycle()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown failed")
		}
	}()

	log.Info().
		Str("port", cfg.Port).
		Str("db", dbPath).
		Int("slides", deck.Len()).
		Bool("relay", relay.Enabled()).
		Msg("TRAVEL GC listening")
	if err := app.Listen(":" + cfg.Port); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}

func setupLogging(rawLevel string) error {
	level, err := config.ResolveLogLevel(rawLevel)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Str("app", appName).Logger()
	return nil
}

func csrfMiddlewareConfig(cookieSecure bool) csrf.Config {
	return csrf.Config{
		KeyLookup:      "form:csrf_token",
		CookieName:     "travelgc_csrf",
		CookieSameSite: "Lax",
		CookieHTTPOnly: true,
		CookieSecure:   cookieSecure,
		ContextKey:     "csrf",
	}
}

func relayConfig(cfg config.RelayConfig) mailrelay.Config {
	return mailrelay.Config{
		BaseURL:     cfg.BaseURL,
		ServiceID:   cfg.ServiceID,
		TemplateID:  cfg.TemplateID,
		PublicKey:   cfg.PublicKey,
		AccessToken: cfg.AccessToken,
		Timeout:     cfg.Timeout,
	}
}

func presentationConfig(deck *content.Deck, cfg config.Config) services.PresentationConfig {
	agreement := deck.AgreementText
	if cfg.AgreementText != "" {
		agreement = cfg.AgreementText
	}
	return services.PresentationConfig{
		SlideCount:    deck.Len(),
		CityCount:     len(deck.Cities()),
		AgreementText: agreement,
	}
}

// staleSendingAfter gives a hung relay call time to hit its own timeout
// before a stored Sending state is treated as failed.
func staleSendingAfter(relayTimeout time.Duration) time.Duration {
	after := 2 * relayTimeout
	if after < time.Minute {
		return time.Minute
	}
	return after
}
