package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type expiringRepository struct {
	removed int64
	err     error
	calls   chan time.Time
}

func (repo *expiringRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	if repo.calls != nil {
		repo.calls <- now
	}
	return repo.removed, repo.err
}

func TestSessionJanitorSweep(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := &expiringRepository{removed: 3, calls: make(chan time.Time, 1)}
	janitor := NewSessionJanitor(repo, 0)
	janitor.now = func() time.Time { return fixed }

	assert.Equal(t, int64(3), janitor.Sweep(context.Background()))
	assert.Equal(t, fixed, <-repo.calls)
	assert.Equal(t, 10*time.Minute, janitor.interval)

	repo.err = errors.New("database is locked")
	repo.calls = nil
	assert.Zero(t, janitor.Sweep(context.Background()))
}

func TestSessionJanitorStartSweepsImmediately(t *testing.T) {
	t.Parallel()

	repo := &expiringRepository{calls: make(chan time.Time, 4)}
	janitor := NewSessionJanitor(repo, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	janitor.Start(ctx)

	select {
	case <-repo.calls:
	case <-time.After(2 * time.Second):
		t.Fatal("expected an initial sweep")
	}
}
