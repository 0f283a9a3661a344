package api

import (
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/travelgc/internal/services"
)

const (
	submitThrottledMessage = "Trop de tentatives. Merci de patienter quelques minutes."
	submitInFlightMessage  = "Ton inscription est déjà en cours d'envoi."
)

func (handler *Handler) OpenRegistration(c *fiber.Ctx) error {
	return handler.applyEvent(c, services.RegistrationOpened{})
}

func (handler *Handler) CloseRegistration(c *fiber.Ctx) error {
	return handler.applyEvent(c, services.RegistrationClosed{})
}

func (handler *Handler) ValidateRegistration(c *fiber.Ctx) error {
	input, err := parseRegistrationInput(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	state, err := handler.presentation.Handle(c.UserContext(), currentSessionID(c), services.FieldsEdited{Fields: input.RegistrationFields})
	if err != nil {
		return handler.presentationError(c, err)
	}

	form := buildRegistrationView(handler.presentation.Config(), state, FlashPayload{})
	if isHTMX(c) {
		return handler.renderPartial(c, "registration_hints", fiber.Map{
			"Form": form,
		})
	}
	return c.JSON(fiber.Map{
		"can_submit": form.CanSubmit,
		"hints":      form.Hints,
		"messages":   renderHintMessages(form.Hints),
		"status":     form.Status,
	})
}

func (handler *Handler) SubmitRegistration(c *fiber.Ctx) error {
	if allowed, retryAfter := handler.throttle.take(throttleClientKey(c), time.Now()); !allowed {
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
		if acceptsJSON(c) {
			return apiError(c, fiber.StatusTooManyRequests, "too many submissions")
		}
		handler.setFlashCookie(c, FlashPayload{RegistrationError: submitThrottledMessage})
		return redirectOrJSON(c, "/", services.PresentationState{})
	}

	input, err := parseRegistrationInput(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	state, err := handler.presentation.Handle(c.UserContext(), currentSessionID(c), services.RegistrationSubmitted{
		Fields:   input.RegistrationFields,
		Honeypot: input.Honeypot,
	})
	if errors.Is(err, services.ErrSubmissionInFlight) && !acceptsJSON(c) {
		handler.setFlashCookie(c, FlashPayload{RegistrationError: submitInFlightMessage})
		return redirectOrJSON(c, "/", state)
	}
	if err != nil {
		return handler.presentationError(c, err)
	}

	if acceptsJSON(c) {
		return c.JSON(fiber.Map{
			"ok":     state.Notice.Kind == services.NoticeSuccess,
			"state":  state,
			"notice": state.Notice,
			"hints":  services.FieldHints(state.Fields),
		})
	}
	return redirectOrJSON(c, "/", state)
}
