package services

const (
	RegistrationSuccessMessage = "Merci ! Ton inscription est bien partie, on revient vers toi très vite."
	RegistrationFailureMessage = "L'envoi a échoué. Merci de réessayer."
)

type NoticeKind string

const (
	NoticeNone    NoticeKind = ""
	NoticeSuccess NoticeKind = "success"
	NoticeFailure NoticeKind = "failure"
)

type Notice struct {
	Kind    NoticeKind `json:"kind,omitempty"`
	Message string     `json:"message,omitempty"`
}

func (notice Notice) Empty() bool {
	return notice.Kind == NoticeNone
}

type PresentationConfig struct {
	SlideCount    int
	CityCount     int
	AgreementText string
}

type PresentationState struct {
	SlideIndex int                `json:"slide_index"`
	CityIndex  int                `json:"city_index"`
	Overlay    OverlayMode        `json:"overlay"`
	Fields     RegistrationFields `json:"fields"`
	Submission SubmissionState    `json:"submission"`
	Notice     Notice             `json:"notice"`
}

func NewPresentationState() PresentationState {
	return PresentationState{
		Overlay:    OverlayDeck,
		Submission: SubmissionIdle,
	}
}

type Event interface {
	presentationEvent()
}

type KeyPressed struct{ Key NavigationKey }
type NextSlideRequested struct{}
type PreviousSlideRequested struct{}
type CitySelected struct{ Index int }
type RegistrationOpened struct{}
type RegistrationClosed struct{}
type FieldsEdited struct{ Fields RegistrationFields }
type NoticeDismissed struct{}

type RegistrationSubmitted struct {
	Fields   RegistrationFields
	Honeypot string
}

type SubmissionResolved struct{ Err error }

func (KeyPressed) presentationEvent()             {}
func (NextSlideRequested) presentationEvent()     {}
func (PreviousSlideRequested) presentationEvent() {}
func (CitySelected) presentationEvent()           {}
func (RegistrationOpened) presentationEvent()     {}
func (RegistrationClosed) presentationEvent()     {}
func (FieldsEdited) presentationEvent()           {}
func (NoticeDismissed) presentationEvent()        {}
func (RegistrationSubmitted) presentationEvent()  {}
func (SubmissionResolved) presentationEvent()     {}

type Effect struct {
	Dispatch bool
	Payload  RegistrationPayload
	Decision SubmissionDecision
}

// Reduce folds one event into the session state. It never performs I/O: a
// submission that passes its gate is returned as an Effect for the caller to
// run, and its outcome comes back as SubmissionResolved.
func Reduce(config PresentationConfig, state PresentationState, event Event) (PresentationState, Effect) {
	lastSlide := LastIndex(config.SlideCount)
	state.SlideIndex = ClampIndex(state.SlideIndex, config.SlideCount)

	switch typed := event.(type) {
	case KeyPressed:
		if !state.Overlay.AcceptsKeyboardNavigation() {
			return state, Effect{}
		}
		switch typed.Key {
		case KeyLeft:
			state.SlideIndex = PreviousSlide(state.SlideIndex, lastSlide)
		case KeyRight:
			state.SlideIndex = NextSlide(state.SlideIndex, lastSlide)
		}
	case NextSlideRequested:
		if state.Overlay.Visible() {
			return state, Effect{}
		}
		state.SlideIndex = NextSlide(state.SlideIndex, lastSlide)
	case PreviousSlideRequested:
		if state.Overlay.Visible() {
			return state, Effect{}
		}
		state.SlideIndex = PreviousSlide(state.SlideIndex, lastSlide)
	case CitySelected:
		state.CityIndex = ClampIndex(typed.Index, config.CityCount)
	case RegistrationOpened:
		state.Overlay = state.Overlay.Open()
		state.Notice = Notice{}
	case RegistrationClosed:
		state.Overlay = state.Overlay.Close()
	case FieldsEdited:
		if state.Submission == SubmissionSending {
			return state, Effect{}
		}
		state.Fields = typed.Fields
	case NoticeDismissed:
		state.Notice = Notice{}
	case RegistrationSubmitted:
		return reduceSubmission(config, state, typed)
	case SubmissionResolved:
		return reduceResolution(state, typed.Err), Effect{}
	}

	return state, Effect{}
}

func reduceSubmission(config PresentationConfig, state PresentationState, event RegistrationSubmitted) (PresentationState, Effect) {
	next, decision := BeginSubmission(state.Submission, event.Fields, event.Honeypot)
	switch decision {
	case SubmissionDiscarded:
		return state, Effect{Decision: SubmissionDiscarded}
	case SubmissionRejected:
		if state.Submission != SubmissionSending {
			state.Fields = event.Fields
		}
		return state, Effect{Decision: SubmissionRejected}
	}

	state.Fields = event.Fields
	state.Submission = next
	state.Notice = Notice{}
	return state, Effect{
		Dispatch: true,
		Payload:  BuildRegistrationPayload(event.Fields, config.AgreementText),
		Decision: SubmissionStarted,
	}
}

func reduceResolution(state PresentationState, err error) PresentationState {
	resolved := ResolveSubmission(state.Submission, err)
	switch resolved {
	case SubmissionSucceeded:
		state.Fields = RegistrationFields{}
		state.Overlay = state.Overlay.Close()
		state.SlideIndex = 0
		state.CityIndex = 0
		state.Notice = Notice{Kind: NoticeSuccess, Message: RegistrationSuccessMessage}
	case SubmissionFailed:
		state.Notice = Notice{Kind: NoticeFailure, Message: RegistrationFailureMessage}
	default:
		return state
	}
	state.Submission = SettleSubmission(resolved)
	return state
}
