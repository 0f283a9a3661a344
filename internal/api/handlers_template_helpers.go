package api

import (
	"html/template"
)

func newTemplateFuncMap() template.FuncMap {
	return template.FuncMap{
		"formatFloat": formatTemplateFloat,
		"percent":     formatTemplatePercent,
		"hint":        templateHintMessage,
		"add":         templateAdd,
		"toJSON":      templateToJSON,
		"dict":        templateDict,
	}
}
