package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

type ExpiredSessionRepository interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type SessionJanitor struct {
	sessions ExpiredSessionRepository
	interval time.Duration
	now      func() time.Time
}

func NewSessionJanitor(sessions ExpiredSessionRepository, interval time.Duration) *SessionJanitor {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &SessionJanitor{
		sessions: sessions,
		interval: interval,
		now:      time.Now,
	}
}

func (janitor *SessionJanitor) Start(ctx context.Context) {
	ticker := time.NewTicker(janitor.interval)
	go func() {
		defer ticker.Stop()

		janitor.Sweep(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				janitor.Sweep(ctx)
			}
		}
	}()
}

func (janitor *SessionJanitor) Sweep(ctx context.Context) int64 {
	removed, err := janitor.sessions.DeleteExpired(ctx, janitor.now())
	if err != nil {
		log.Error().Err(err).Msg("sessions: purge expired failed")
		return 0
	}
	if removed > 0 {
		log.Debug().Int64("removed", removed).Msg("sessions: purged expired")
	}
	return removed
}
