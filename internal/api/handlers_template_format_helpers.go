package api

import (
	"encoding/json"
	"fmt"
	"html/template"
	"strconv"

	"github.com/terraincognita07/travelgc/internal/services"
)

var hintMessages = map[services.HintCode]string{
	services.HintFirstNameTooShort: "Ton prénom doit contenir au moins 2 caractères.",
	services.HintLastNameTooShort:  "Ton nom doit contenir au moins 2 caractères.",
	services.HintEmailInvalid:      "Adresse email invalide.",
	services.HintStudentIDDigits:   "Le numéro étudiant ne contient que des chiffres.",
	services.HintStudentIDLength:   "Le numéro étudiant compte 6 ou 7 chiffres.",
}

const (
	registrationSendingStatus = "Envoi en cours…"
	registrationReadyStatus   = "Tout est prêt."
	registrationPendingStatus = "Complète le formulaire pour t'inscrire."
)

func registrationStatusMessage(sending bool, canSubmit bool) string {
	switch {
	case sending:
		return registrationSendingStatus
	case canSubmit:
		return registrationReadyStatus
	default:
		return registrationPendingStatus
	}
}

// renderHintMessages maps each hinted field to the sentence shown under it,
// so scripts display the same text as the server-rendered form.
func renderHintMessages(hints map[string]services.HintCode) map[string]string {
	messages := make(map[string]string, len(hints))
	for field := range hints {
		messages[field] = templateHintMessage(hints, field)
	}
	return messages
}

func formatTemplateFloat(value float64) string {
	return fmt.Sprintf("%.1f", value)
}

// formatTemplatePercent renders a CSS width value, always with a dot decimal separator.
func formatTemplatePercent(value float64) template.CSS {
	return template.CSS(strconv.FormatFloat(value, 'f', 2, 64) + "%")
}

func templateHintMessage(hints map[string]services.HintCode, field string) string {
	code, ok := hints[field]
	if !ok {
		return ""
	}
	if message, ok := hintMessages[code]; ok {
		return message
	}
	return string(code)
}

func templateAdd(value int, delta int) int {
	return value + delta
}

func templateToJSON(value any) template.JS {
	serialized, err := json.Marshal(value)
	if err != nil {
		return template.JS("null")
	}
	return template.JS(serialized)
}

func templateDict(values ...any) (map[string]any, error) {
	if len(values)%2 != 0 {
		return nil, fmt.Errorf("dict requires key-value pairs")
	}
	result := make(map[string]any, len(values)/2)
	for index := 0; index < len(values); index += 2 {
		key, ok := values[index].(string)
		if !ok {
			return nil, fmt.Errorf("dict key at index %d is not a string", index)
		}
		result[key] = values[index+1]
	}
	return result, nil
}
