package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

func (handler *Handler) Health(c *fiber.Ctx) error {
	payload := fiber.Map{"status": "ok", "slides": handler.deck.Len()}
	if handler.sessions != nil {
		active, err := handler.sessions.CountActive(c.UserContext(), time.Now())
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded"})
		}
		payload["active_sessions"] = active
	}
	return c.JSON(payload)
}

func (handler *Handler) render(c *fiber.Ctx, name string, data fiber.Map) error {
	output, err := handler.templates.renderPage(name, handler.withTemplateDefaults(c, data))
	if err != nil {
		log.Error().Err(err).Str("page", name).Msg("render failed")
		return c.Status(fiber.StatusInternalServerError).SendString("failed to render template")
	}
	c.Type("html", "utf-8")
	return c.Send(output)
}

func (handler *Handler) renderPartial(c *fiber.Ctx, name string, data fiber.Map) error {
	output, err := handler.templates.renderPartial(name, handler.withTemplateDefaults(c, data))
	if err != nil {
		log.Error().Err(err).Str("partial", name).Msg("render failed")
		return c.Status(fiber.StatusInternalServerError).SendString("failed to render partial")
	}
	c.Type("html", "utf-8")
	return c.Send(output)
}

func (handler *Handler) withTemplateDefaults(c *fiber.Ctx, data fiber.Map) fiber.Map {
	payload := fiber.Map{
		"Brand":     handler.deck.Brand,
		"Tagline":   handler.deck.Tagline,
		"CSRFToken": csrfToken(c),
	}
	for key, value := range data {
		payload[key] = value
	}
	if _, ok := payload["Title"]; !ok {
		payload["Title"] = handler.deck.Brand
	}
	return payload
}
