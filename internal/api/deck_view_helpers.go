package api

import (
	"github.com/terraincognita07/travelgc/internal/content"
	"github.com/terraincognita07/travelgc/internal/services"
)

type DeckView struct {
	Slide     content.Slide
	Index     int
	Number    int
	Count     int
	Progress  float64
	IsFirst   bool
	IsLast    bool
	Keys      []string
	Cities    []content.City
	CityIndex int
	City      content.City
	Overlay   services.OverlayMode
	Notice    services.Notice
	Form      RegistrationView
}

type RegistrationView struct {
	Open          bool
	Fields        services.RegistrationFields
	Hints         map[string]services.HintCode
	CanSubmit     bool
	Sending       bool
	Status        string
	AgreementText string
	Error         string
}

func buildDeckView(deck *content.Deck, config services.PresentationConfig, state services.PresentationState, notice services.Notice, flash FlashPayload) DeckView {
	count := deck.Len()
	index := services.ClampIndex(state.SlideIndex, count)

	view := DeckView{
		Slide:    deck.SlideAt(index),
		Index:    index,
		Number:   index + 1,
		Count:    count,
		Progress: services.ProgressPercent(index, count),
		IsFirst:  index == 0,
		IsLast:   index == services.LastIndex(count),
		Keys:     deck.Keys(),
		Cities:   deck.Cities(),
		Overlay:  state.Overlay,
		Notice:   notice,
		Form:     buildRegistrationView(config, state, flash),
	}
	if len(view.Cities) > 0 {
		view.CityIndex = services.ClampIndex(state.CityIndex, len(view.Cities))
		view.City = view.Cities[view.CityIndex]
	}
	return view
}

func buildRegistrationView(config services.PresentationConfig, state services.PresentationState, flash FlashPayload) RegistrationView {
	sending := state.Submission == services.SubmissionSending
	canSubmit := services.CanSubmit(state.Fields, sending)
	return RegistrationView{
		Open:          state.Overlay.Visible(),
		Fields:        state.Fields,
		Hints:         services.FieldHints(state.Fields),
		CanSubmit:     canSubmit,
		Sending:       sending,
		Status:        registrationStatusMessage(sending, canSubmit),
		AgreementText: config.AgreementText,
		Error:         flash.RegistrationError,
	}
}
