package api

import (
	"errors"
	"fmt"
	"time"

	"github.com/terraincognita07/travelgc/internal/content"
	"github.com/terraincognita07/travelgc/internal/security"
	"github.com/terraincognita07/travelgc/internal/services"
)

type HandlerOptions struct {
	CookieSecure bool
	SubmitLimit  int
	SubmitWindow time.Duration
	Views        SlideViewRecorder
	Sessions     ActiveSessionCounter
}

func NewHandler(deck *content.Deck, presentation *services.PresentationService, secret string, templateDir string, options HandlerOptions) (*Handler, error) {
	if deck == nil {
		return nil, errors.New("deck is required")
	}
	if presentation == nil {
		return nil, errors.New("presentation service is required")
	}

	sessionKey, err := security.DeriveKey([]byte(secret), "session-token")
	if err != nil {
		return nil, fmt.Errorf("derive session key: %w", err)
	}
	cookies, err := newCookieSealer([]byte(secret))
	if err != nil {
		return nil, err
	}

	templates, err := loadTemplateSet(templateDir, newTemplateFuncMap(), []string{"deck", "not_found"}, []string{"registration_hints.html"})
	if err != nil {
		return nil, err
	}

	if options.SubmitLimit <= 0 {
		options.SubmitLimit = defaultSubmitLimit
	}
	if options.SubmitWindow <= 0 {
		options.SubmitWindow = defaultSubmitWindow
	}

	return &Handler{
		deck:         deck,
		presentation: presentation,
		sessionKey:   sessionKey,
		cookies:      cookies,
		cookieSecure: options.CookieSecure,
		templates:    templates,
		throttle:     newSubmissionThrottle(options.SubmitLimit, options.SubmitWindow),
		views:        options.Views,
		sessions:     options.Sessions,
	}, nil
}
