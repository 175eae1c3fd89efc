package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// migration is one versioned schema step.
type migration struct {
	version     int
	description string
	up          func(*sql.Tx) error
}

var migrations = []migration{
	{
		version:     1,
		description: "notifications table",
		up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS notifications (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					type TEXT NOT NULL,
					priority TEXT NOT NULL,
					category TEXT NOT NULL,
					title TEXT NOT NULL,
					message TEXT NOT NULL,
					action_label TEXT,
					action_url TEXT,
					metadata TEXT,
					created_at DATETIME NOT NULL,
					read INTEGER NOT NULL DEFAULT 0,
					read_at DATETIME,
					dismissed INTEGER NOT NULL DEFAULT 0,
					dismissed_at DATETIME
				)`,
				`CREATE INDEX idx_notifications_user ON notifications(user_id)`,
				`CREATE INDEX idx_notifications_user_unread ON notifications(user_id, read, dismissed)`,
			}
			for _, q := range queries {
				if _, err := tx.Exec(q); err != nil {
					return fmt.Errorf("migration 1: %w", err)
				}
			}
			return nil
		},
	},
}

// migrate brings the schema up to the latest version, one transaction per
// step.
func (s *SQLiteStore) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	var current int
	if err := s.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.version, err)
		}
		if err := m.up(tx); err != nil {
			tx.Rollback()
			return err
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations (version) VALUES (?)`, m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.version, err)
		}
		slog.Info("applied migration", "version", m.version, "description", m.description)
	}
	return nil
}
