package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/terraincognita07/travelgc/internal/services"
)

func (handler *Handler) ShowDeck(c *fiber.Ctx) error {
	state, ok := currentState(c)
	if !ok {
		return apiError(c, fiber.StatusInternalServerError, "session is not loaded")
	}

	// Notices are shown once.
	notice := state.Notice
	if !notice.Empty() {
		dismissed, err := handler.presentation.Handle(c.UserContext(), currentSessionID(c), services.NoticeDismissed{})
		if err != nil {
			log.Warn().Err(err).Str("session", currentSessionID(c)).Msg("dismiss notice")
		} else {
			state = dismissed
		}
	}

	config := handler.presentation.Config()
	view := buildDeckView(handler.deck, config, state, notice, handler.popFlashCookie(c))
	if handler.views != nil {
		handler.views.RecordSlideView(view.Slide.Key)
	}

	if acceptsJSON(c) {
		return c.JSON(fiber.Map{
			"state":    state,
			"notice":   notice,
			"slide":    view.Slide.Key,
			"progress": view.Progress,
		})
	}

	return handler.render(c, "deck", fiber.Map{
		"Deck": view,
	})
}

func (handler *Handler) NextSlide(c *fiber.Ctx) error {
	return handler.applyEvent(c, services.NextSlideRequested{})
}

func (handler *Handler) PreviousSlide(c *fiber.Ctx) error {
	return handler.applyEvent(c, services.PreviousSlideRequested{})
}

func (handler *Handler) KeyNavigation(c *fiber.Ctx) error {
	key, ok := services.ParseNavigationKey(c.FormValue("key"))
	if !ok {
		return apiError(c, fiber.StatusBadRequest, "unsupported key")
	}
	return handler.applyEvent(c, services.KeyPressed{Key: key})
}

func (handler *Handler) SelectCity(c *fiber.Ctx) error {
	index, err := c.ParamsInt("index")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid city index")
	}
	return handler.applyEvent(c, services.CitySelected{Index: index})
}

func (handler *Handler) applyEvent(c *fiber.Ctx, event services.Event) error {
	state, err := handler.presentation.Handle(c.UserContext(), currentSessionID(c), event)
	if err != nil {
		return handler.presentationError(c, err)
	}
	return redirectOrJSON(c, "/", state)
}

func (handler *Handler) presentationError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		return apiError(c, fiber.StatusGone, "session expired")
	case errors.Is(err, services.ErrSubmissionInFlight):
		return apiError(c, fiber.StatusConflict, "submission already in progress")
	case errors.Is(err, services.ErrConcurrentUpdate):
		return apiError(c, fiber.StatusConflict, "session changed, retry")
	default:
		log.Error().Err(err).Str("session", currentSessionID(c)).Msg("deck event failed")
		return apiError(c, fiber.StatusInternalServerError, "failed to update deck")
	}
}
