package migration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_submission_attempts",
		SQL: `CREATE TABLE IF NOT EXISTS submission_attempts (
  id               UUID        PRIMARY KEY,
  account          TEXT        NOT NULL,
  file_name        TEXT        NOT NULL DEFAULT '',
  mime_type        TEXT        NOT NULL DEFAULT '',
  size             BIGINT      NOT NULL CHECK (size >= 0),
  document_type    TEXT        NOT NULL,
  phase            TEXT        NOT NULL,
  content_id       TEXT        NOT NULL DEFAULT '',
  transaction_hash TEXT        NOT NULL DEFAULT '',
  failure_reason   TEXT        NOT NULL DEFAULT '',
  ledger_attempts  INTEGER     NOT NULL DEFAULT 0,
  created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_submission_attempts_account",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_submission_attempts_account ON submission_attempts (account, created_at DESC);`,
	},
	{
		Name: "create_index_submission_attempts_phase",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_submission_attempts_phase ON submission_attempts (phase);`,
	},
	{
		Name: "create_index_submission_attempts_content_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_submission_attempts_content_id ON submission_attempts (content_id) WHERE content_id <> '';`,
	},
}

// EnsureMigrated checks if the 'submission_attempts' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *slog.Logger, dbHost string) error {
	start := time.Now()
	log = log.With("component", "database", "db_host", dbHost)

	log.InfoContext(ctx, "db_migration_check", "status", "starting")

	var exists bool
	query := "SELECT to_regclass('public.submission_attempts') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		log.ErrorContext(ctx, "db_migration_failed",
			"status", "error",
			"error_message", fmt.Sprintf("failed to check sentinel table: %v", err),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.InfoContext(ctx, "db_migration_skip",
			"status", "success",
			"detail", "schema already exists, skipping migration",
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil
	}

	log.InfoContext(ctx, "db_migration_start", "status", "in_progress")

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.ErrorContext(ctx, "db_migration_failed",
				"status", "error",
				"migration_step", step.Name,
				"error_message", err.Error(),
				"duration_ms", time.Since(start).Milliseconds(),
				"step_duration_ms", time.Since(stepStart).Milliseconds(),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}
		log.InfoContext(ctx, "db_migration_step",
			"status", "success",
			"migration_step", step.Name,
			"step_duration_ms", time.Since(stepStart).Milliseconds(),
		)
	}

	log.InfoContext(ctx, "db_migration_success",
		"status", "success",
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
