// Package config reads the deck server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

const minimumSecretKeyLength = 32

var insecureSecretKeys = map[string]struct{}{
	"change_me_in_production":                    {},
	"replace_with_at_least_32_random_characters": {},
}

type Config struct {
	Port                 string        `env:"PORT" envDefault:"8080"`
	SecretKey            string        `env:"SECRET_KEY"`
	CookieSecure         bool          `env:"COOKIE_SECURE" envDefault:"false"`
	SessionDBPath        string        `env:"SESSION_DB_PATH"`
	SessionTTL           time.Duration `env:"SESSION_TTL" envDefault:"2h"`
	SessionSweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"10m"`
	TemplatesDir         string        `env:"TEMPLATES_DIR" envDefault:"internal/templates"`
	StaticDir            string        `env:"STATIC_DIR" envDefault:"web/static"`
	DeckPath             string        `env:"DECK_PATH"`
	LogLevel             string        `env:"LOG_LEVEL" envDefault:"info"`
	AgreementText        string        `env:"AGREEMENT_TEXT"`
	SubmitLimit          int           `env:"SUBMIT_LIMIT" envDefault:"5"`
	SubmitWindow         time.Duration `env:"SUBMIT_WINDOW" envDefault:"10m"`
	Relay                RelayConfig   `envPrefix:"RELAY_"`
}

type RelayConfig struct {
	BaseURL     string        `env:"BASE_URL" envDefault:"https://api.emailjs.com"`
	ServiceID   string        `env:"SERVICE_ID"`
	TemplateID  string        `env:"TEMPLATE_ID"`
	PublicKey   string        `env:"PUBLIC_KEY"`
	AccessToken string        `env:"ACCESS_TOKEN"`
	Timeout     time.Duration `env:"TIMEOUT" envDefault:"15s"`
}

func Load() (Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	secret, err := ResolveSecretKey(cfg.SecretKey)
	if err != nil {
		return Config{}, err
	}
	cfg.SecretKey = secret

	port, err := ResolvePort(cfg.Port)
	if err != nil {
		return Config{}, err
	}
	cfg.Port = port

	if _, err := ResolveLogLevel(cfg.LogLevel); err != nil {
		return Config{}, err
	}
	if cfg.SessionTTL <= 0 {
		return Config{}, errors.New("SESSION_TTL must be positive")
	}
	if cfg.SubmitLimit <= 0 || cfg.SubmitWindow <= 0 {
		return Config{}, errors.New("SUBMIT_LIMIT and SUBMIT_WINDOW must be positive")
	}
	return cfg, nil
}

func ResolveSecretKey(raw string) (string, error) {
	secret := strings.TrimSpace(raw)
	if secret == "" {
		return "", errors.New("SECRET_KEY is required")
	}
	if _, insecure := insecureSecretKeys[strings.ToLower(secret)]; insecure {
		return "", errors.New("SECRET_KEY uses an insecure placeholder value")
	}
	if len(secret) < minimumSecretKeyLength {
		return "", fmt.Errorf("SECRET_KEY must be at least %d characters", minimumSecretKeyLength)
	}
	return secret, nil
}

func ResolvePort(raw string) (string, error) {
	port := strings.TrimSpace(raw)
	if port == "" {
		return "8080", nil
	}
	parsed, err := strconv.Atoi(port)
	if err != nil || parsed < 1 || parsed > 65535 {
		return "", fmt.Errorf("invalid PORT %q", raw)
	}
	return strconv.Itoa(parsed), nil
}

func ResolveLogLevel(raw string) (zerolog.Level, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(normalized)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid LOG_LEVEL %q", raw)
	}
	return level, nil
}
