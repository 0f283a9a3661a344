package db

import (
	"context"
	"time"

	"github.com/terraincognita07/travelgc/internal/models"
	"gorm.io/gorm"
)

type SessionRepository struct {
	database *gorm.DB
}

func NewSessionRepository(database *gorm.DB) *SessionRepository {
	return &SessionRepository{database: database}
}

func (repo *SessionRepository) Create(ctx context.Context, session *models.DeckSession) error {
	return repo.database.WithContext(ctx).Create(session).Error
}

func (repo *SessionRepository) FindActive(ctx context.Context, sessionID string, now time.Time) (models.DeckSession, error) {
	var session models.DeckSession
	if err := repo.database.WithContext(ctx).
		Where("id = ? AND expires_at > ?", sessionID, now).
		First(&session).Error; err != nil {
		return models.DeckSession{}, err
	}
	return session, nil
}

// SaveIfStatus stores session only while the stored submission status still
// equals expected. It reports false when the row is gone or its status moved,
// so a request that loaded an Idle row cannot overwrite a Sending claim.
func (repo *SessionRepository) SaveIfStatus(ctx context.Context, session *models.DeckSession, expected string) (bool, error) {
	result := repo.database.WithContext(ctx).
		Model(&models.DeckSession{}).
		Where("id = ? AND submission_status = ?", session.ID, expected).
		Updates(sessionColumns(session))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ClaimSending stores session with status sending unless the stored row is
// already sending. It reports false when another request holds the claim.
func (repo *SessionRepository) ClaimSending(ctx context.Context, session *models.DeckSession) (bool, error) {
	columns := sessionColumns(session)
	columns["submission_status"] = models.SubmissionStatusSending
	columns["claimed_at"] = session.UpdatedAt

	result := repo.database.WithContext(ctx).
		Model(&models.DeckSession{}).
		Where("id = ? AND submission_status <> ?", session.ID, models.SubmissionStatusSending).
		Updates(columns)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (repo *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := repo.database.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&models.DeckSession{})
	return result.RowsAffected, result.Error
}

func (repo *SessionRepository) CountActive(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	if err := repo.database.WithContext(ctx).
		Model(&models.DeckSession{}).
		Where("expires_at > ?", now).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func sessionColumns(session *models.DeckSession) map[string]any {
	return map[string]any{
		"slide_index":       session.SlideIndex,
		"city_index":        session.CityIndex,
		"overlay":           session.Overlay,
		"first_name":        session.FirstName,
		"last_name":         session.LastName,
		"email":             session.Email,
		"student_id":        session.StudentID,
		"agreed_to_terms":   session.AgreedToTerms,
		"submission_status": session.SubmissionStatus,
		"notice_kind":       session.NoticeKind,
		"notice_message":    session.NoticeMessage,
		"updated_at":        session.UpdatedAt,
		"expires_at":        session.ExpiresAt,
	}
}
