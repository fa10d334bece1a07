package catalog

import (
	"context"
	"fmt"
)

const schemaV1 = `
CREATE TABLE IF NOT EXISTS speeches (
	id             TEXT PRIMARY KEY,
	title          TEXT NOT NULL,
	date           TEXT,
	source         TEXT NOT NULL,
	rally_location TEXT,
	video_url      TEXT,
	audio_url      TEXT,
	transcript_url TEXT,
	transcript     TEXT,
	duration       TEXT,
	thumbnail_url  TEXT,
	status         TEXT NOT NULL DEFAULT 'active',
	created_at     TEXT NOT NULL,
	updated_at     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_speeches_status_date ON speeches (status, date DESC);
CREATE INDEX IF NOT EXISTS idx_speeches_source ON speeches (source);

CREATE TABLE IF NOT EXISTS workflows (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	speech_ids TEXT NOT NULL, -- JSON array
	script     TEXT,
	audio_url  TEXT,
	rss_url    TEXT,
	status     TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS curated_models (
	id                TEXT PRIMARY KEY,
	name              TEXT NOT NULL,
	provider          TEXT NOT NULL,
	description       TEXT,
	category          TEXT NOT NULL,
	performance_score REAL NOT NULL DEFAULT 0,
	usage_count       INTEGER NOT NULL DEFAULT 0,
	avg_response_time REAL NOT NULL DEFAULT 0,
	success_rate      REAL NOT NULL DEFAULT 0,
	last_used         TEXT,
	created_at        TEXT NOT NULL,
	updated_at        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS key_validations (
	key_hash     TEXT PRIMARY KEY,
	is_valid     INTEGER NOT NULL,
	model_count  INTEGER NOT NULL DEFAULT 0,
	error_code   TEXT,
	validated_at TEXT NOT NULL,
	expires_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS events (
	id         TEXT PRIMARY KEY,
	event_type TEXT NOT NULL,
	data       TEXT,
	ip         TEXT,
	user_agent TEXT,
	timestamp  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_type_created ON events (event_type, timestamp);

CREATE TABLE IF NOT EXISTS feedback (
	id             TEXT PRIMARY KEY,
	overall_rating INTEGER NOT NULL,
	script_rating  INTEGER NOT NULL,
	audio_rating   INTEGER NOT NULL,
	comments       TEXT,
	recommend      INTEGER NOT NULL,
	session_id     TEXT,
	created_at     TEXT NOT NULL
);
`

// migrate applies the schema idempotently; a fresh database and a
// restart over an existing one both succeed.
func (s *Store) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version    INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, schemaV1); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version < 1 {
		if _, err := s.db.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (1)"); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
	}
	return nil
}
