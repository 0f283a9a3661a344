package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const flashLifetime = 5 * time.Minute

func (handler *Handler) setFlashCookie(c *fiber.Ctx, payload FlashPayload) {
	payload.RegistrationError = strings.TrimSpace(payload.RegistrationError)
	if payload.RegistrationError == "" {
		handler.clearFlashCookie(c)
		return
	}

	expires := time.Now().Add(flashLifetime)
	sealed, err := handler.cookies.sealJSON(flashCookieName, payload, expires)
	if err != nil {
		log.Warn().Err(err).Msg("flash cookie not set")
		return
	}
	handler.writeFlashCookie(c, sealed, expires)
}

// popFlashCookie returns the pending flash once and clears it.
func (handler *Handler) popFlashCookie(c *fiber.Ctx) FlashPayload {
	raw := c.Cookies(flashCookieName)
	if strings.TrimSpace(raw) == "" {
		return FlashPayload{}
	}
	handler.clearFlashCookie(c)

	var payload FlashPayload
	if err := handler.cookies.openJSON(flashCookieName, raw, time.Now(), &payload); err != nil {
		return FlashPayload{}
	}
	payload.RegistrationError = strings.TrimSpace(payload.RegistrationError)
	return payload
}

func (handler *Handler) clearFlashCookie(c *fiber.Ctx) {
	handler.writeFlashCookie(c, "", time.Now().Add(-time.Hour))
}

func (handler *Handler) writeFlashCookie(c *fiber.Ctx, value string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     flashCookieName,
		Value:    value,
		Path:     "/",
		HTTPOnly: true,
		Secure:   handler.cookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  expires,
	})
}
