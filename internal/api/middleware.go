package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/travelgc/internal/services"
)

const (
	sessionCookieName = "travelgc_session"
	flashCookieName   = "travelgc_flash"
	contextSessionKey = "deck_session_id"
	contextStateKey   = "deck_state"
)

func currentSessionID(c *fiber.Ctx) string {
	sessionID, _ := c.Locals(contextSessionKey).(string)
	return sessionID
}

func currentState(c *fiber.Ctx) (services.PresentationState, bool) {
	state, ok := c.Locals(contextStateKey).(services.PresentationState)
	return state, ok
}
