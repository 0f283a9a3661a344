package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/travelgc/internal/services"
)

const honeypotFieldName = "website"

type registrationInput struct {
	services.RegistrationFields
	Honeypot string `json:"website" form:"website"`
}

func parseRegistrationInput(c *fiber.Ctx) (registrationInput, error) {
	if strings.Contains(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEApplicationJSON) {
		input := registrationInput{}
		if err := c.BodyParser(&input); err != nil {
			return registrationInput{}, err
		}
		return input, nil
	}

	return registrationInput{
		RegistrationFields: services.RegistrationFields{
			FirstName:     c.FormValue("first_name"),
			LastName:      c.FormValue("last_name"),
			Email:         c.FormValue("email"),
			StudentID:     c.FormValue("student_id"),
			AgreedToTerms: parseBoolValue(c.FormValue("agreed_to_terms")),
		},
		Honeypot: c.FormValue(honeypotFieldName),
	}, nil
}

func parseBoolValue(value string) bool {
	normalized := strings.ToLower(strings.TrimSpace(value))
	return normalized == "1" || normalized == "true" || normalized == "on" || normalized == "yes"
}
