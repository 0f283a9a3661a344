package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/terraincognita07/travelgc/internal/services"
)

// SessionMiddleware attaches the visitor's deck session to the request,
// starting a fresh one when the cookie is missing, forged or expired.
func (handler *Handler) SessionMiddleware(c *fiber.Ctx) error {
	ctx := c.UserContext()

	if sessionID, err := handler.parseSessionToken(c.Cookies(sessionCookieName)); err == nil {
		state, loadErr := handler.presentation.Load(ctx, sessionID)
		if loadErr == nil {
			c.Locals(contextSessionKey, sessionID)
			c.Locals(contextStateKey, state)
			return c.Next()
		}
		if !errors.Is(loadErr, services.ErrSessionNotFound) {
			log.Error().Err(loadErr).Str("session", sessionID).Msg("load deck session")
			return apiError(c, fiber.StatusInternalServerError, "failed to load session")
		}
		log.Debug().Str("session", sessionID).Msg("deck session expired, starting a new one")
	}

	sessionID, state, err := handler.presentation.Start(ctx)
	if err != nil {
		log.Error().Err(err).Msg("start deck session")
		return apiError(c, fiber.StatusInternalServerError, "failed to start session")
	}

	now := time.Now()
	token, err := handler.buildSessionToken(sessionID, now)
	if err != nil {
		log.Error().Err(err).Msg("sign deck session token")
		return apiError(c, fiber.StatusInternalServerError, "failed to start session")
	}
	handler.setSessionCookie(c, token, now)

	c.Locals(contextSessionKey, sessionID)
	c.Locals(contextStateKey, state)
	return c.Next()
}
