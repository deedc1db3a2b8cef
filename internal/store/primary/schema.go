package primary

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS folders (
		id         BIGSERIAL PRIMARY KEY,
		path       TEXT NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS mails (
		id            TEXT PRIMARY KEY,
		subject       TEXT NOT NULL DEFAULT '',
		sender        TEXT NOT NULL DEFAULT '',
		snippet       TEXT NOT NULL DEFAULT '',
		folder_id     BIGINT REFERENCES folders(id) ON DELETE SET NULL,
		is_new_folder BOOLEAN NOT NULL DEFAULT FALSE,
		confidence    DOUBLE PRECISION,
		reason        TEXT,
		classified_at TIMESTAMPTZ,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_mails_unclassified ON mails (created_at) WHERE folder_id IS NULL`,
	`CREATE TABLE IF NOT EXISTS sync_jobs (
		id          UUID PRIMARY KEY,
		status      TEXT NOT NULL,
		total       INT NOT NULL DEFAULT 0,
		processed   INT NOT NULL DEFAULT 0,
		error       TEXT,
		started_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		finished_at TIMESTAMPTZ
	)`,
}

// EnsureSchema creates the tables if they do not exist yet. Idempotent;
// called on startup.
func (s *StoreImpl) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
