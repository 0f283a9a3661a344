package db

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	embeddedmigrations "github.com/terraincognita07/travelgc/migrations"
	"gorm.io/gorm"
)

// addColumnPattern matches ALTER TABLE ... ADD COLUMN, which sqlite cannot
// guard with IF NOT EXISTS.
var addColumnPattern = regexp.MustCompile(`(?i)^ALTER\s+TABLE\s+(\S+)\s+ADD\s+COLUMN\s+(\S+)`)

type embeddedMigration struct {
	Version string
	Order   int
	Name    string
	SQL     string
}

type schemaMigration struct {
	Version   string `gorm:"column:version"`
	Name      string `gorm:"column:name"`
	AppliedAt string `gorm:"column:applied_at"`
}

type migrator struct {
	database *gorm.DB
	source   fs.FS
}

func applyEmbeddedMigrations(database *gorm.DB) error {
	_, err := migrator{database: database, source: embeddedmigrations.Files}.run()
	return err
}

func loadEmbeddedMigrations() ([]embeddedMigration, error) {
	return readMigrations(embeddedmigrations.Files)
}

// run applies every pending migration in version order and returns how many
// were applied.
func (m migrator) run() (int, error) {
	const createLedger = `CREATE TABLE IF NOT EXISTS schema_migrations (
  version TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`
	if err := m.database.Exec(createLedger).Error; err != nil {
		return 0, fmt.Errorf("create schema_migrations table: %w", err)
	}

	pending, err := readMigrations(m.source)
	if err != nil {
		return 0, err
	}

	var recorded []schemaMigration
	if err := m.database.Raw(`SELECT version, name, applied_at FROM schema_migrations`).Scan(&recorded).Error; err != nil {
		return 0, fmt.Errorf("load applied migration versions: %w", err)
	}
	done := make(map[string]bool, len(recorded))
	for _, row := range recorded {
		done[row.Version] = true
	}

	applied := 0
	for _, migration := range pending {
		if done[migration.Version] {
			continue
		}
		if err := m.apply(migration); err != nil {
			return applied, err
		}
		log.Info().Str("migration", migration.Name).Msg("applied schema migration")
		applied++
	}
	return applied, nil
}

func (m migrator) apply(migration embeddedMigration) error {
	statements := splitSQLStatements(migration.SQL)
	if len(statements) == 0 {
		return fmt.Errorf("migration %s: %w", migration.Name, errEmptyMigration)
	}

	return m.database.Transaction(func(tx *gorm.DB) error {
		for _, statement := range statements {
			present, err := columnAlreadyPresent(tx, statement)
			if err != nil {
				return fmt.Errorf("inspect migration %s: %w", migration.Name, err)
			}
			if present {
				continue
			}
			if err := tx.Exec(statement).Error; err != nil {
				return fmt.Errorf("execute migration %s statement %q: %w", migration.Name, statement, err)
			}
		}

		record := tx.Exec(`INSERT INTO schema_migrations(version, name) VALUES (?, ?)`, migration.Version, migration.Name)
		if record.Error != nil {
			return fmt.Errorf("record migration %s: %w", migration.Name, record.Error)
		}
		return nil
	})
}

var errEmptyMigration = errors.New("migration has no SQL statements")

// readMigrations lists NNNN_name.sql files in source, ordered by their
// numeric prefix. Other files are ignored; a repeated prefix is an error.
func readMigrations(source fs.FS) ([]embeddedMigration, error) {
	names, err := fs.Glob(source, "*.sql")
	if err != nil {
		return nil, fmt.Errorf("read embedded migrations: %w", err)
	}

	byVersion := make(map[string]string, len(names))
	migrations := make([]embeddedMigration, 0, len(names))
	for _, name := range names {
		prefix, _, found := strings.Cut(path.Base(name), "_")
		if !found {
			continue
		}
		order, err := strconv.Atoi(prefix)
		if err != nil {
			continue
		}
		if previous, taken := byVersion[prefix]; taken {
			return nil, fmt.Errorf("duplicate migration version %s in %s and %s", prefix, previous, name)
		}
		byVersion[prefix] = name

		raw, err := fs.ReadFile(source, name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		migrations = append(migrations, embeddedMigration{
			Version: prefix,
			Order:   order,
			Name:    name,
			SQL:     string(raw),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Order < migrations[j].Order
	})
	return migrations, nil
}

func splitSQLStatements(sqlText string) []string {
	var statements []string
	for _, part := range strings.Split(sqlText, ";") {
		if statement := strings.TrimSpace(part); statement != "" {
			statements = append(statements, statement)
		}
	}
	return statements
}

// columnAlreadyPresent reports whether statement adds a column the table
// already has, so an upgraded database can replay the migration safely.
func columnAlreadyPresent(database *gorm.DB, statement string) (bool, error) {
	matches := addColumnPattern.FindStringSubmatch(statement)
	if matches == nil {
		return false, nil
	}
	table := unquoteIdentifier(matches[1])
	column := unquoteIdentifier(matches[2])

	columns, err := database.Migrator().ColumnTypes(table)
	if err != nil {
		return false, fmt.Errorf("load columns for %s: %w", table, err)
	}
	for _, existing := range columns {
		if strings.EqualFold(existing.Name(), column) {
			return true, nil
		}
	}
	return false, nil
}

func unquoteIdentifier(identifier string) string {
	return strings.Trim(strings.TrimSpace(identifier), "\"`[]")
}
