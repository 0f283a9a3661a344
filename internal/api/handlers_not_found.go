package api

import "github.com/gofiber/fiber/v2"

const notFoundMessage = "Page introuvable"

func (handler *Handler) NotFound(c *fiber.Ctx) error {
	switch {
	case acceptsJSON(c):
		return apiError(c, fiber.StatusNotFound, "not found")
	case isHTMX(c):
		return apiError(c, fiber.StatusNotFound, notFoundMessage)
	}

	c.Status(fiber.StatusNotFound)
	return handler.render(c, "not_found", fiber.Map{
		"Title":   handler.deck.Brand + " | " + notFoundMessage,
		"Message": notFoundMessage,
	})
}
