package db

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// MemoryDSN keeps sessions in a process-local shared in-memory database.
const MemoryDSN = "file:travelgc-sessions?mode=memory&cache=shared"

func OpenSQLite(dbPath string) (*gorm.DB, error) {
	inMemory := isMemoryDSN(dbPath)
	if !inMemory {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	gormLog := log.With().Str("component", "gorm").Logger()
	database, err := gorm.Open(sqlite.Open(buildDSN(dbPath)), &gorm.Config{
		Logger: gormlogger.New(
			&gormLog,
			gormlogger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  gormlogger.Warn,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if inMemory {
		sqlDB, err := database.DB()
		if err != nil {
			return nil, fmt.Errorf("open sql db: %w", err)
		}
		// the shared in-memory database disappears with its last connection
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxIdleTime(0)
		sqlDB.SetConnMaxLifetime(0)
	}

	if err := applyEmbeddedMigrations(database); err != nil {
		return nil, fmt.Errorf("apply embedded migrations: %w", err)
	}

	return database, nil
}

func isMemoryDSN(dbPath string) bool {
	trimmed := strings.TrimSpace(dbPath)
	return trimmed == ":memory:" || strings.Contains(trimmed, "mode=memory")
}

func buildDSN(dbPath string) string {
	separator := "?"
	if strings.Contains(dbPath, "?") {
		separator = "&"
	}
	return dbPath + separator + "_foreign_keys=on&_busy_timeout=5000"
}
