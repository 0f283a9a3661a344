package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/terraincognita07/travelgc/internal/content"
	"github.com/terraincognita07/travelgc/internal/db"
	"github.com/terraincognita07/travelgc/internal/security"
	"gorm.io/gorm"
)

const defaultSecretLength = 48

// RunPurgeSessionsCommand removes expired deck sessions from a file-backed store.
func RunPurgeSessionsCommand(ctx context.Context, out io.Writer, dbPath string, now time.Time) error {
	return purgeSessions(ctx, out, dbPath, now, db.OpenSQLite)
}

func purgeSessions(ctx context.Context, out io.Writer, dbPath string, now time.Time, open func(string) (*gorm.DB, error)) error {
	trimmedPath := strings.TrimSpace(dbPath)
	if trimmedPath == "" {
		return errors.New("database path is required")
	}

	database, err := open(trimmedPath)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		return fmt.Errorf("database handle failed: %w", err)
	}
	defer sqlDB.Close()

	repositories := db.NewRepositories(database)
	removed, err := repositories.Sessions.DeleteExpired(ctx, now)
	if err != nil {
		return fmt.Errorf("purge sessions: %w", err)
	}
	active, err := repositories.Sessions.CountActive(ctx, now)
	if err != nil {
		return fmt.Errorf("count sessions: %w", err)
	}

	fmt.Fprintf(out, "✅ Removed %d expired session(s), %d still active\n", removed, active)
	return nil
}

func RunSlidesCommand(out io.Writer, deckPath string) error {
	deck, err := content.Load(deckPath)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s | %s\n", deck.Brand, deck.Tagline)
	for index, slide := range deck.Slides {
		title := slide.Headline
		if title == "" {
			title = slide.Title
		}
		fmt.Fprintf(out, "%2d. %-12s %-10s %s\n", index+1, slide.Key, slide.Kind, title)
	}
	for _, city := range deck.Cities() {
		fmt.Fprintf(out, "    %s %s\n", city.Flag, city.Name)
	}
	return nil
}

func RunGenerateSecretCommand(out io.Writer, length int) error {
	if length <= 0 {
		length = defaultSecretLength
	}
	secret, err := security.GenerateSecretKey(length)
	if err != nil {
		return fmt.Errorf("generate secret: %w", err)
	}
	fmt.Fprintln(out, secret)
	return nil
}
