package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/terraincognita07/travelgc/internal/models"
	"gorm.io/gorm"
)

var (
	ErrSessionNotFound  = errors.New("deck session not found")
	ErrConcurrentUpdate = errors.New("deck session kept changing during update")
	errStaleSubmission  = errors.New("registration submission did not complete")
)

const (
	defaultStaleSendingAfter = time.Minute
	maxUpdateAttempts        = 4
)

type DeckSessionRepository interface {
	Create(ctx context.Context, session *models.DeckSession) error
	FindActive(ctx context.Context, sessionID string, now time.Time) (models.DeckSession, error)
	SaveIfStatus(ctx context.Context, session *models.DeckSession, expected string) (bool, error)
	ClaimSending(ctx context.Context, session *models.DeckSession) (bool, error)
}

type SubmissionOutcome string

const (
	OutcomeSent      SubmissionOutcome = "sent"
	OutcomeFailed    SubmissionOutcome = "failed"
	OutcomeDiscarded SubmissionOutcome = "discarded"
	OutcomeRejected  SubmissionOutcome = "rejected"
	OutcomeInFlight  SubmissionOutcome = "in_flight"
)

type SubmissionRecorder interface {
	RecordSubmission(outcome SubmissionOutcome)
}

// PresentationService owns the per-session presentation state: it loads the
// session, folds one event through Reduce, runs the resulting effect and
// stores the outcome.
type PresentationService struct {
	sessions  DeckSessionRepository
	submitter Submitter
	config    PresentationConfig
	ttl       time.Duration
	staleSend time.Duration
	recorder  SubmissionRecorder
	now       func() time.Time
}

func NewPresentationService(sessions DeckSessionRepository, submitter Submitter, config PresentationConfig, ttl time.Duration) *PresentationService {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &PresentationService{
		sessions:  sessions,
		submitter: submitter,
		config:    config,
		ttl:       ttl,
		staleSend: defaultStaleSendingAfter,
		now:       time.Now,
	}
}

// WithStaleSendingAfter bounds how long a stored Sending state is trusted. A
// session still marked Sending after that (the process died mid-call) is
// handed back as a failed, editable form.
func (service *PresentationService) WithStaleSendingAfter(after time.Duration) *PresentationService {
	if after > 0 {
		service.staleSend = after
	}
	return service
}

func (service *PresentationService) WithRecorder(recorder SubmissionRecorder) *PresentationService {
	service.recorder = recorder
	return service
}

func (service *PresentationService) Config() PresentationConfig {
	return service.config
}

func (service *PresentationService) Start(ctx context.Context) (string, PresentationState, error) {
	state := NewPresentationState()
	now := service.now()
	session := sessionFromState(uuid.NewString(), state)
	session.CreatedAt = now
	session.UpdatedAt = now
	session.ExpiresAt = now.Add(service.ttl)

	if err := service.sessions.Create(ctx, &session); err != nil {
		return "", PresentationState{}, fmt.Errorf("create deck session: %w", err)
	}
	return session.ID, state, nil
}

// Load returns the session state without writing it. A stale Sending state is
// reported as already failed; the row itself is released by the next Handle.
func (service *PresentationService) Load(ctx context.Context, sessionID string) (PresentationState, error) {
	session, err := service.find(ctx, sessionID)
	if err != nil {
		return PresentationState{}, err
	}
	state := stateFromSession(session)
	if service.isStale(session) {
		state = reduceResolution(state, errStaleSubmission)
	}
	return state, nil
}

func (service *PresentationService) find(ctx context.Context, sessionID string) (models.DeckSession, error) {
	session, err := service.sessions.FindActive(ctx, sessionID, service.now())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.DeckSession{}, ErrSessionNotFound
	}
	if err != nil {
		return models.DeckSession{}, fmt.Errorf("load session: %w", err)
	}
	return session, nil
}

// isStale reports a Sending row whose claim is older than the stale window,
// meaning the process that held it died mid-call.
func (service *PresentationService) isStale(session models.DeckSession) bool {
	if session.SubmissionStatus != models.SubmissionStatusSending {
		return false
	}
	claimedAt := session.UpdatedAt
	if session.ClaimedAt != nil {
		claimedAt = *session.ClaimedAt
	}
	return service.now().Sub(claimedAt) > service.staleSend
}

// Handle applies event to the stored session. A relay failure is not returned
// as an error: it is part of the resulting state (failure notice, Idle form).
// ErrSubmissionInFlight is returned when another request already holds the
// Sending gate for this session.
//
// Every write is conditional on the submission status that was read, so a
// request racing a submission reloads instead of clearing the Sending gate.
func (service *PresentationService) Handle(ctx context.Context, sessionID string, event Event) (PresentationState, error) {
	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		session, err := service.find(ctx, sessionID)
		if err != nil {
			return PresentationState{}, err
		}
		current := stateFromSession(session)
		stored := session.SubmissionStatus

		if service.isStale(session) {
			log.Warn().Str("session", sessionID).Msg("releasing stale registration submission")
			current = reduceResolution(current, errStaleSubmission)
			saved, err := service.saveIfStatus(ctx, sessionID, current, stored)
			if err != nil {
				return PresentationState{}, err
			}
			if !saved {
				continue
			}
			stored = string(current.Submission)
		}

		next, effect := Reduce(service.config, current, event)
		if !effect.Dispatch {
			saved, err := service.saveIfStatus(ctx, sessionID, next, stored)
			if err != nil {
				return PresentationState{}, err
			}
			if !saved {
				continue
			}
			if _, isSubmission := event.(RegistrationSubmitted); isSubmission {
				service.recordDecision(effect.Decision, current.Submission)
			}
			return next, nil
		}
		return service.dispatch(ctx, sessionID, current, next, effect.Payload)
	}
	return PresentationState{}, ErrConcurrentUpdate
}

func (service *PresentationService) dispatch(ctx context.Context, sessionID string, current PresentationState, next PresentationState, payload RegistrationPayload) (PresentationState, error) {
	sending := sessionFromState(sessionID, next)
	sending.UpdatedAt = service.now()
	sending.ExpiresAt = sending.UpdatedAt.Add(service.ttl)
	claimed, err := service.sessions.ClaimSending(ctx, &sending)
	if err != nil {
		return PresentationState{}, fmt.Errorf("claim registration submission: %w", err)
	}
	if !claimed {
		service.record(OutcomeInFlight)
		return current, ErrSubmissionInFlight
	}

	submitErr := service.submitter.Submit(ctx, payload)
	if submitErr != nil {
		log.Warn().Err(submitErr).Str("session", sessionID).Msg("registration relay failed")
		service.record(OutcomeFailed)
	} else {
		log.Info().Str("session", sessionID).Msg("registration relayed")
		service.record(OutcomeSent)
	}
	return service.resolve(context.WithoutCancel(ctx), sessionID, submitErr)
}

// resolve folds the relay outcome into the session as stored now, so changes
// made while the call was in flight (closing the overlay, moving slides) stay.
func (service *PresentationService) resolve(ctx context.Context, sessionID string, submitErr error) (PresentationState, error) {
	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		session, err := service.find(ctx, sessionID)
		if err != nil {
			return PresentationState{}, err
		}
		state := stateFromSession(session)
		if state.Submission != SubmissionSending {
			// released as stale while the call ran
			return state, nil
		}

		resolved := reduceResolution(state, submitErr)
		saved, err := service.saveIfStatus(ctx, sessionID, resolved, models.SubmissionStatusSending)
		if err != nil {
			return PresentationState{}, err
		}
		if saved {
			return resolved, nil
		}
	}
	return PresentationState{}, ErrConcurrentUpdate
}

func (service *PresentationService) saveIfStatus(ctx context.Context, sessionID string, state PresentationState, expected string) (bool, error) {
	session := sessionFromState(sessionID, state)
	session.UpdatedAt = service.now()
	session.ExpiresAt = session.UpdatedAt.Add(service.ttl)
	saved, err := service.sessions.SaveIfStatus(ctx, &session, expected)
	if err != nil {
		return false, fmt.Errorf("save deck session: %w", err)
	}
	return saved, nil
}

func (service *PresentationService) recordDecision(decision SubmissionDecision, before SubmissionState) {
	switch decision {
	case SubmissionDiscarded:
		log.Info().Msg("registration discarded by honeypot")
		service.record(OutcomeDiscarded)
	case SubmissionRejected:
		if before == SubmissionSending {
			service.record(OutcomeInFlight)
			return
		}
		service.record(OutcomeRejected)
	}
}

func (service *PresentationService) record(outcome SubmissionOutcome) {
	if service.recorder != nil {
		service.recorder.RecordSubmission(outcome)
	}
}

func sessionFromState(sessionID string, state PresentationState) models.DeckSession {
	return models.DeckSession{
		ID:               sessionID,
		SlideIndex:       state.SlideIndex,
		CityIndex:        state.CityIndex,
		Overlay:          string(state.Overlay),
		FirstName:        state.Fields.FirstName,
		LastName:         state.Fields.LastName,
		Email:            state.Fields.Email,
		StudentID:        state.Fields.StudentID,
		AgreedToTerms:    state.Fields.AgreedToTerms,
		SubmissionStatus: string(state.Submission),
		NoticeKind:       string(state.Notice.Kind),
		NoticeMessage:    state.Notice.Message,
	}
}

func stateFromSession(session models.DeckSession) PresentationState {
	return PresentationState{
		SlideIndex: session.SlideIndex,
		CityIndex:  session.CityIndex,
		Overlay:    ParseOverlayMode(session.Overlay),
		Fields: RegistrationFields{
			FirstName:     session.FirstName,
			LastName:      session.LastName,
			Email:         session.Email,
			StudentID:     session.StudentID,
			AgreedToTerms: session.AgreedToTerms,
		},
		Submission: ParseSubmissionState(session.SubmissionStatus),
		Notice: Notice{
			Kind:    NoticeKind(session.NoticeKind),
			Message: session.NoticeMessage,
		},
	}
}
