package journal

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
)

// schemaVersion is the current expected schema version.
const schemaVersion = 2

// migration represents a single schema migration step.
type migration struct {
	Version     int
	Description string
	SQL         string
}

// migrations is the ordered list of schema migrations.
// Each migration is applied exactly once, tracked in the schema_version table.
var migrations = []migration{
	{
		Version:     1,
		Description: "base schema: deliveries",
		SQL: `
		CREATE TABLE IF NOT EXISTS deliveries (
			id          TEXT PRIMARY KEY,
			transport   TEXT NOT NULL,
			channel     TEXT DEFAULT '',
			username    TEXT DEFAULT '',
			text        TEXT DEFAULT '',
			attachments INTEGER DEFAULT 0,
			status      TEXT NOT NULL,
			error       TEXT DEFAULT '',
			created_at  DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_deliveries_time ON deliveries(created_at);
		`,
	},
	{
		Version:     2,
		Description: "v2: dispatch duration, status index",
		SQL: `
		ALTER TABLE deliveries ADD COLUMN duration_ms INTEGER DEFAULT 0;
		CREATE INDEX IF NOT EXISTS idx_deliveries_status ON deliveries(status);
		`,
	},
}

// RunMigrations applies all pending schema migrations.
// It uses a schema_version table to track which migrations have been applied.
func RunMigrations(db *sql.DB, logger *slog.Logger) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version     INTEGER PRIMARY KEY,
			description TEXT,
			applied_at  DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	currentVersion, err := GetSchemaVersion(db)
	if err != nil {
		return fmt.Errorf("query schema version: %w", err)
	}

	for _, m := range migrations {
		if m.Version <= currentVersion {
			continue
		}

		logger.Debug("applying journal migration",
			"version", m.Version,
			"description", m.Description,
		)

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration v%d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			// ALTER TABLE ADD COLUMN fails when a column already exists.
			logger.Warn("migration SQL partially failed, retrying statement by statement",
				"version", m.Version,
				"err", err,
			)
			if err := applyMigrationStatements(db, m, logger); err != nil {
				return err
			}
			continue
		}

		if _, err := tx.Exec(
			"INSERT OR REPLACE INTO schema_version (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration v%d: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration v%d: %w", m.Version, err)
		}
	}

	return nil
}

// applyMigrationStatements applies each SQL statement individually, ignoring
// "duplicate column" or "already exists" errors.
func applyMigrationStatements(db *sql.DB, m migration, logger *slog.Logger) error {
	for _, stmt := range splitSQL(m.SQL) {
		if _, err := db.Exec(stmt); err != nil {
			errStr := strings.ToLower(err.Error())
			if strings.Contains(errStr, "duplicate column") || strings.Contains(errStr, "already exists") {
				logger.Debug("migration statement skipped (already applied)", "stmt_prefix", truncate(stmt, 60))
				continue
			}
			return fmt.Errorf("migration v%d statement failed: %w\nSQL: %s", m.Version, err, truncate(stmt, 200))
		}
	}

	if _, err := db.Exec(
		"INSERT OR REPLACE INTO schema_version (version, description) VALUES (?, ?)",
		m.Version, m.Description,
	); err != nil {
		return fmt.Errorf("record migration v%d: %w", m.Version, err)
	}
	return nil
}

// splitSQL splits a multi-statement SQL string on semicolons.
func splitSQL(sql string) []string {
	var result []string
	for _, s := range strings.Split(sql, ";") {
		if s = strings.TrimSpace(s); s != "" {
			result = append(result, s)
		}
	}
	return result
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// GetSchemaVersion returns the current schema version from the database.
func GetSchemaVersion(db *sql.DB) (int, error) {
	var tableName string
	err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableName)
	if err != nil {
		return 0, nil // Table doesn't exist => version 0
	}

	var version int
	err = db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}
