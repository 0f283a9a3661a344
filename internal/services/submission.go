package services

import (
	"context"
	"errors"

	"github.com/terraincognita07/travelgc/internal/models"
)

var ErrSubmissionInFlight = errors.New("registration submission already in flight")

type SubmissionState string

const (
	SubmissionIdle      SubmissionState = models.SubmissionStatusIdle
	SubmissionSending   SubmissionState = models.SubmissionStatusSending
	SubmissionSucceeded SubmissionState = models.SubmissionStatusSucceeded
	SubmissionFailed    SubmissionState = models.SubmissionStatusFailed
)

func ParseSubmissionState(raw string) SubmissionState {
	switch SubmissionState(raw) {
	case SubmissionSending, SubmissionSucceeded, SubmissionFailed:
		return SubmissionState(raw)
	default:
		return SubmissionIdle
	}
}

// RegistrationPayload is the fixed set of template parameters handed to the
// email relay. Keys match the relay template variables.
type RegistrationPayload struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Email         string `json:"email"`
	StudentID     string `json:"studentId"`
	AgreementText string `json:"agreementText"`
	ReplyTo       string `json:"replyTo"`
}

func BuildRegistrationPayload(fields RegistrationFields, agreementText string) RegistrationPayload {
	normalized := NormalizeFields(fields)
	return RegistrationPayload{
		FirstName:     normalized.FirstName,
		LastName:      normalized.LastName,
		Email:         normalized.Email,
		StudentID:     normalized.StudentID,
		AgreementText: agreementText,
		ReplyTo:       normalized.Email,
	}
}

type Submitter interface {
	Submit(ctx context.Context, payload RegistrationPayload) error
}

type SubmitterFunc func(ctx context.Context, payload RegistrationPayload) error

func (fn SubmitterFunc) Submit(ctx context.Context, payload RegistrationPayload) error {
	return fn(ctx, payload)
}

type SubmissionDecision int

const (
	SubmissionRejected SubmissionDecision = iota
	SubmissionDiscarded
	SubmissionStarted
)

func BeginSubmission(state SubmissionState, fields RegistrationFields, honeypot string) (SubmissionState, SubmissionDecision) {
	if IsHoneypotTriggered(honeypot) {
		return state, SubmissionDiscarded
	}
	if !CanSubmit(fields, state == SubmissionSending) {
		return state, SubmissionRejected
	}
	return SubmissionSending, SubmissionStarted
}

func ResolveSubmission(state SubmissionState, err error) SubmissionState {
	if state != SubmissionSending {
		return state
	}
	if err != nil {
		return SubmissionFailed
	}
	return SubmissionSucceeded
}

// SettleSubmission returns a finished submission to Idle so the form is
// editable again.
func SettleSubmission(state SubmissionState) SubmissionState {
	if state == SubmissionSucceeded || state == SubmissionFailed {
		return SubmissionIdle
	}
	return state
}
