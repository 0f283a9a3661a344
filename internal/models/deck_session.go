package models

import "time"

const (
	SubmissionStatusIdle      = "idle"
	SubmissionStatusSending   = "sending"
	SubmissionStatusSucceeded = "succeeded"
	SubmissionStatusFailed    = "failed"
)

const (
	OverlayDeck         = "deck"
	OverlayRegistration = "registration"
)

type DeckSession struct {
	ID               string     `gorm:"primaryKey"`
	SlideIndex       int        `gorm:"not null;default:0"`
	CityIndex        int        `gorm:"not null;default:0"`
	Overlay          string     `gorm:"not null;default:deck"`
	FirstName        string     `gorm:"not null;default:''"`
	LastName         string     `gorm:"not null;default:''"`
	Email            string     `gorm:"not null;default:''"`
	StudentID        string     `gorm:"column:student_id;not null;default:''"`
	AgreedToTerms    bool       `gorm:"not null;default:false"`
	SubmissionStatus string     `gorm:"not null;default:idle"`
	NoticeKind       string     `gorm:"not null;default:''"`
	NoticeMessage    string     `gorm:"not null;default:''"`
	ClaimedAt        *time.Time `gorm:"column:claimed_at"`
	CreatedAt        time.Time  `gorm:"not null"`
	UpdatedAt        time.Time  `gorm:"not null"`
	ExpiresAt        time.Time  `gorm:"not null;index"`
}

func (DeckSession) TableName() string {
	return "deck_sessions"
}
