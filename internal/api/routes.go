package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	registerPageRoutes(app, handler)
	registerDeckRoutes(app, handler)
}

func registerPageRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)
	app.Get("/favicon.ico", sendNoContent)
	app.Get("/", handler.SessionMiddleware, handler.ShowDeck)
}

func registerDeckRoutes(app *fiber.App, handler *Handler) {
	deck := app.Group("/deck", handler.SessionMiddleware)
	deck.Post("/next", handler.NextSlide)
	deck.Post("/previous", handler.PreviousSlide)
	deck.Post("/key", handler.KeyNavigation)
	deck.Post("/city/:index", handler.SelectCity)

	registration := app.Group("/registration", handler.SessionMiddleware)
	registration.Post("/open", handler.OpenRegistration)
	registration.Post("/close", handler.CloseRegistration)
	registration.Post("/validate", handler.ValidateRegistration)
	registration.Post("/submit", handler.SubmitRegistration)
}

func sendNoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}
