package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/terraincognita07/travelgc/internal/models"
	"gorm.io/gorm"
)

func newSessionRepositoryForTest(t *testing.T) *SessionRepository {
	t.Helper()

	database := openSQLiteForMigrationBootstrapTest(t, filepath.Join(t.TempDir(), "sessions.db"))
	return NewRepositories(database).Sessions
}

func newStoredSession(id string, now time.Time, ttl time.Duration) *models.DeckSession {
	return &models.DeckSession{
		ID:               id,
		Overlay:          models.OverlayDeck,
		SubmissionStatus: models.SubmissionStatusIdle,
		CreatedAt:        now,
		UpdatedAt:        now,
		ExpiresAt:        now.Add(ttl),
	}
}

func TestSessionRepositoryCreateAndFindActive(t *testing.T) {
	repo := newSessionRepositoryForTest(t)
	ctx := context.Background()
	now := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

	session := newStoredSession("session-a", now, time.Hour)
	session.SlideIndex = 2
	session.FirstName = "Léa"
	if err := repo.Create(ctx, session); err != nil {
		t.Fatalf("create session: %v", err)
	}

	loaded, err := repo.FindActive(ctx, "session-a", now.Add(time.Minute))
	if err != nil {
		t.Fatalf("find active session: %v", err)
	}
	if loaded.SlideIndex != 2 || loaded.FirstName != "Léa" {
		t.Fatalf("unexpected loaded session: %+v", loaded)
	}
	if loaded.SubmissionStatus != models.SubmissionStatusIdle {
		t.Fatalf("expected idle status, got %q", loaded.SubmissionStatus)
	}
}

func TestSessionRepositoryFindActiveIgnoresExpiredSessions(t *testing.T) {
	repo := newSessionRepositoryForTest(t)
	ctx := context.Background()
	now := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

	if err := repo.Create(ctx, newStoredSession("session-old", now, time.Minute)); err != nil {
		t.Fatalf("create session: %v", err)
	}

	_, err := repo.FindActive(ctx, "session-old", now.Add(2*time.Minute))
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record not found for expired session, got %v", err)
	}

	_, err = repo.FindActive(ctx, "missing", now)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record not found for unknown session, got %v", err)
	}
}

func TestSessionRepositorySaveUpdatesEveryColumn(t *testing.T) {
	repo := newSessionRepositoryForTest(t)
	ctx := context.Background()
	now := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

	session := newStoredSession("session-b", now, time.Hour)
	session.AgreedToTerms = true
	if err := repo.Create(ctx, session); err != nil {
		t.Fatalf("create session: %v", err)
	}

	session.SlideIndex = 4
	session.CityIndex = 1
	session.Overlay = models.OverlayRegistration
	session.AgreedToTerms = false
	session.NoticeKind = "failure"
	session.NoticeMessage = "relay down"
	saved, err := repo.SaveIfStatus(ctx, session, models.SubmissionStatusIdle)
	if err != nil {
		t.Fatalf("save session: %v", err)
	}
	if !saved {
		t.Fatal("expected save to match the idle row")
	}

	loaded, err := repo.FindActive(ctx, "session-b", now)
	if err != nil {
		t.Fatalf("find active session: %v", err)
	}
	if loaded.SlideIndex != 4 || loaded.CityIndex != 1 {
		t.Fatalf("expected position 4/1, got %d/%d", loaded.SlideIndex, loaded.CityIndex)
	}
	if loaded.Overlay != models.OverlayRegistration {
		t.Fatalf("expected registration overlay, got %q", loaded.Overlay)
	}
	if loaded.AgreedToTerms {
		t.Fatal("expected agreement to be cleared")
	}
	if loaded.NoticeKind != "failure" || loaded.NoticeMessage != "relay down" {
		t.Fatalf("unexpected notice: %q %q", loaded.NoticeKind, loaded.NoticeMessage)
	}
}

func TestSessionRepositorySaveReportsMissingSession(t *testing.T) {
	repo := newSessionRepositoryForTest(t)
	now := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

	saved, err := repo.SaveIfStatus(context.Background(), newStoredSession("ghost", now, time.Hour), models.SubmissionStatusIdle)
	if err != nil {
		t.Fatalf("save missing session: %v", err)
	}
	if saved {
		t.Fatal("expected save of a missing session to report no match")
	}
}

func TestSessionRepositorySaveIfStatusKeepsSendingClaim(t *testing.T) {
	repo := newSessionRepositoryForTest(t)
	ctx := context.Background()
	now := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

	session := newStoredSession("session-d", now, time.Hour)
	if err := repo.Create(ctx, session); err != nil {
		t.Fatalf("create session: %v", err)
	}

	// A request read the idle row before another request claimed it.
	staleCopy := *session
	staleCopy.FirstName = "Noé"

	claimed, err := repo.ClaimSending(ctx, session)
	if err != nil || !claimed {
		t.Fatalf("claim: claimed=%v err=%v", claimed, err)
	}

	saved, err := repo.SaveIfStatus(ctx, &staleCopy, models.SubmissionStatusIdle)
	if err != nil {
		t.Fatalf("save stale copy: %v", err)
	}
	if saved {
		t.Fatal("expected save against the idle status to miss the claimed row")
	}

	loaded, err := repo.FindActive(ctx, "session-d", now)
	if err != nil {
		t.Fatalf("find active session: %v", err)
	}
	if loaded.SubmissionStatus != models.SubmissionStatusSending {
		t.Fatalf("expected claim to survive, got status %q", loaded.SubmissionStatus)
	}
	if loaded.FirstName == "Noé" {
		t.Fatal("expected stale fields to be discarded")
	}
	if loaded.ClaimedAt == nil || !loaded.ClaimedAt.Equal(now) {
		t.Fatalf("expected claim time %v, got %v", now, loaded.ClaimedAt)
	}
}

func TestSessionRepositoryClaimSendingIsExclusive(t *testing.T) {
	repo := newSessionRepositoryForTest(t)
	ctx := context.Background()
	now := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

	session := newStoredSession("session-c", now, time.Hour)
	if err := repo.Create(ctx, session); err != nil {
		t.Fatalf("create session: %v", err)
	}

	claimed, err := repo.ClaimSending(ctx, session)
	if err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if !claimed {
		t.Fatal("expected first claim to succeed")
	}

	claimed, err = repo.ClaimSending(ctx, session)
	if err != nil {
		t.Fatalf("second claim: %v", err)
	}
	if claimed {
		t.Fatal("expected second claim to be refused while sending")
	}

	loaded, err := repo.FindActive(ctx, "session-c", now)
	if err != nil {
		t.Fatalf("find active session: %v", err)
	}
	if loaded.SubmissionStatus != models.SubmissionStatusSending {
		t.Fatalf("expected sending status, got %q", loaded.SubmissionStatus)
	}

	loaded.SubmissionStatus = models.SubmissionStatusFailed
	saved, err := repo.SaveIfStatus(ctx, &loaded, models.SubmissionStatusSending)
	if err != nil || !saved {
		t.Fatalf("release claim: saved=%v err=%v", saved, err)
	}
	claimed, err = repo.ClaimSending(ctx, &loaded)
	if err != nil {
		t.Fatalf("claim after release: %v", err)
	}
	if !claimed {
		t.Fatal("expected claim to succeed after the previous attempt finished")
	}
}

func TestSessionRepositoryDeleteExpiredAndCountActive(t *testing.T) {
	repo := newSessionRepositoryForTest(t)
	ctx := context.Background()
	now := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

	for _, session := range []*models.DeckSession{
		newStoredSession("expired-1", now.Add(-2*time.Hour), time.Hour),
		newStoredSession("expired-2", now.Add(-3*time.Hour), time.Hour),
		newStoredSession("live", now, time.Hour),
	} {
		if err := repo.Create(ctx, session); err != nil {
			t.Fatalf("create %s: %v", session.ID, err)
		}
	}

	active, err := repo.CountActive(ctx, now)
	if err != nil {
		t.Fatalf("count active: %v", err)
	}
	if active != 1 {
		t.Fatalf("expected 1 active session, got %d", active)
	}

	deleted, err := repo.DeleteExpired(ctx, now)
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("expected 2 deleted sessions, got %d", deleted)
	}

	if _, err := repo.FindActive(ctx, "live", now); err != nil {
		t.Fatalf("expected live session to survive purge: %v", err)
	}
}

func TestOpenSQLiteSharedMemoryDatabase(t *testing.T) {
	database, err := OpenSQLite("file:travelgc-memory-test?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open in-memory sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	assertDeckSessionsSchemaReconciled(t, database)
	assertAllEmbeddedMigrationsApplied(t, database)
}

func TestIsMemoryDSN(t *testing.T) {
	cases := map[string]bool{
		":memory:":   true,
		MemoryDSN:    true,
		"data/x.db":  false,
		" :memory: ": true,
	}
	for dsn, expected := range cases {
		if got := isMemoryDSN(dsn); got != expected {
			t.Fatalf("isMemoryDSN(%q) = %v, want %v", dsn, got, expected)
		}
	}
}
