package api

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/terraincognita07/travelgc/internal/content"
	"github.com/terraincognita07/travelgc/internal/services"
)

type SlideViewRecorder interface {
	RecordSlideView(slideKey string)
}

type ActiveSessionCounter interface {
	CountActive(ctx context.Context, now time.Time) (int64, error)
}

type Handler struct {
	deck         *content.Deck
	presentation *services.PresentationService
	sessionKey   []byte
	cookies      *cookieSealer
	cookieSecure bool
	templates    *templateSet
	throttle     *submissionThrottle
	views        SlideViewRecorder
	sessions     ActiveSessionCounter
}

type FlashPayload struct {
	RegistrationError string `json:"registration_error,omitempty"`
}

const (
	sessionTokenTTL     = 12 * time.Hour
	defaultSubmitLimit  = 5
	defaultSubmitWindow = 10 * time.Minute
)

type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}
