package services

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// \s is ASCII-only in RE2, so Unicode separators such as U+00A0 are listed
// through \p{Z}.
var registrationEmailRegex = regexp.MustCompile(`^[^\s\p{Z}@]+@[^\s\p{Z}@]+\.[^\s\p{Z}@]+$`)
var studentIDRegex = regexp.MustCompile(`^[0-9]{6,7}$`)

const minimumNameRunes = 2

type RegistrationFields struct {
	FirstName     string `json:"first_name" form:"first_name"`
	LastName      string `json:"last_name" form:"last_name"`
	Email         string `json:"email" form:"email"`
	StudentID     string `json:"student_id" form:"student_id"`
	AgreedToTerms bool   `json:"agreed_to_terms" form:"agreed_to_terms"`
}

type HintCode string

const (
	HintFirstNameTooShort HintCode = "first_name_too_short"
	HintLastNameTooShort  HintCode = "last_name_too_short"
	HintEmailInvalid      HintCode = "email_invalid"
	HintStudentIDDigits   HintCode = "student_id_digits"
	HintStudentIDLength   HintCode = "student_id_length"
)

const (
	FieldFirstName = "first_name"
	FieldLastName  = "last_name"
	FieldEmail     = "email"
	FieldStudentID = "student_id"
)

func IsValidEmail(value string) bool {
	return registrationEmailRegex.MatchString(value)
}

// IsValidStudentID accepts SCIPER numbers: 6 or 7 decimal digits, nothing else.
func IsValidStudentID(value string) bool {
	return studentIDRegex.MatchString(value)
}

func isValidRegistrationName(value string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(value)) >= minimumNameRunes
}

func CanSubmit(fields RegistrationFields, sending bool) bool {
	if sending {
		return false
	}
	return isValidRegistrationName(fields.FirstName) &&
		isValidRegistrationName(fields.LastName) &&
		IsValidEmail(strings.TrimSpace(fields.Email)) &&
		IsValidStudentID(strings.TrimSpace(fields.StudentID)) &&
		fields.AgreedToTerms
}

// FieldHints lists the failing predicate of every field the user already
// started to fill in. Untouched fields stay silent.
func FieldHints(fields RegistrationFields) map[string]HintCode {
	hints := make(map[string]HintCode)

	if strings.TrimSpace(fields.FirstName) != "" && !isValidRegistrationName(fields.FirstName) {
		hints[FieldFirstName] = HintFirstNameTooShort
	}
	if strings.TrimSpace(fields.LastName) != "" && !isValidRegistrationName(fields.LastName) {
		hints[FieldLastName] = HintLastNameTooShort
	}

	email := strings.TrimSpace(fields.Email)
	if email != "" && !IsValidEmail(email) {
		hints[FieldEmail] = HintEmailInvalid
	}

	studentID := strings.TrimSpace(fields.StudentID)
	if studentID != "" && !IsValidStudentID(studentID) {
		if strings.Trim(studentID, "0123456789") != "" {
			hints[FieldStudentID] = HintStudentIDDigits
		} else {
			hints[FieldStudentID] = HintStudentIDLength
		}
	}

	return hints
}

func NormalizeFields(fields RegistrationFields) RegistrationFields {
	return RegistrationFields{
		FirstName:     normalizeFieldValue(fields.FirstName),
		LastName:      normalizeFieldValue(fields.LastName),
		Email:         normalizeFieldValue(fields.Email),
		StudentID:     normalizeFieldValue(fields.StudentID),
		AgreedToTerms: fields.AgreedToTerms,
	}
}

func normalizeFieldValue(raw string) string {
	return norm.NFC.String(strings.TrimSpace(raw))
}

func IsHoneypotTriggered(honeypot string) bool {
	return strings.TrimSpace(honeypot) != ""
}
