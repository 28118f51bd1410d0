package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// Schema is a named, ordered set of migrations owned by one service.
type Schema struct {
	Name       string
	Migrations []Migration
}

// Migration is a single versioned schema change
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// Migrate applies every migration of the database's schema newer than the
// recorded version.
func (db *DB) Migrate(ctx context.Context) error {
	log.Info().Str("schema", db.schema.Name).Msg("Running database migrations")

	_, err := db.exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	var currentVersion int
	err = db.queryRow(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}

	log.Debug().Int("current_version", currentVersion).Msg("Current schema version")

	for _, migration := range db.schema.Migrations {
		if migration.Version <= currentVersion {
			continue
		}

		log.Info().Int("version", migration.Version).Str("name", migration.Name).Msg("Applying migration")

		if err := db.Transaction(ctx, func(tx *sql.Tx) error {
			for i, stmt := range splitSQLStatements(migration.SQL) {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return fmt.Errorf("migration %d statement %d failed: %w", migration.Version, i+1, err)
				}
			}

			if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", migration.Version); err != nil {
				return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
			}

			return nil
		}); err != nil {
			return err
		}
	}

	log.Info().Msg("Database migrations complete")
	return nil
}

// splitSQLStatements splits a SQL string into individual statements.
// Comment lines and empty statements are dropped.
func splitSQLStatements(sql string) []string {
	var statements []string
	var current strings.Builder

	for line := range strings.SplitSeq(sql, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")

		if strings.HasSuffix(trimmed, ";") {
			stmt := strings.TrimSpace(current.String())
			if stmt != "" && stmt != ";" {
				statements = append(statements, stmt)
			}
			current.Reset()
		}
	}

	if remaining := strings.TrimSpace(current.String()); remaining != "" {
		statements = append(statements, remaining)
	}

	return statements
}

const settingsTableSQL = `
	-- Runtime-tunable settings
	CREATE TABLE settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
`

// AuthSchema holds the credential registry tables
var AuthSchema = Schema{
	Name: "auth",
	Migrations: []Migration{
		{
			Version: 1,
			Name:    "initial_schema",
			SQL: `
				CREATE TABLE users (
					id INTEGER PRIMARY KEY,
					username TEXT NOT NULL UNIQUE,
					password_hash TEXT NOT NULL,
					created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
				);
			` + settingsTableSQL,
		},
	},
}

// ScheduleSchema holds the task/schedule store tables
var ScheduleSchema = Schema{
	Name: "schedules",
	Migrations: []Migration{
		{
			Version: 1,
			Name:    "initial_schema",
			SQL: `
				CREATE TABLE schedules (
					id INTEGER PRIMARY KEY,
					user_id TEXT NOT NULL,
					title TEXT NOT NULL,
					description TEXT,
					due_date TEXT,
					category TEXT,
					completed BOOLEAN NOT NULL DEFAULT 0,
					priority TEXT DEFAULT 'medium',
					reminder_time TEXT,
					recurring TEXT DEFAULT 'none'
				);

				CREATE INDEX idx_schedules_user_id ON schedules(user_id);
			` + settingsTableSQL,
		},
	},
}
