package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

var Migrations = migrate.NewMigrations()

var createSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		name          TEXT NOT NULL,
		role          TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL,
		updated_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS quizzes (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		description TEXT NOT NULL,
		category    TEXT NOT NULL,
		created_by  TEXT NOT NULL,
		questions   JSONB NOT NULL,
		time_limit  INTEGER,
		is_public   BOOLEAN NOT NULL DEFAULT TRUE,
		source      TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS quizzes_public_created_idx ON quizzes (is_public, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS quiz_results (
		id               TEXT PRIMARY KEY,
		user_id          TEXT NOT NULL,
		quiz_id          TEXT NOT NULL,
		answers          JSONB NOT NULL,
		score            INTEGER NOT NULL CHECK (score >= 0),
		total_questions  INTEGER NOT NULL CHECK (total_questions > 0 AND score <= total_questions),
		percentage_score DOUBLE PRECISION NOT NULL,
		time_taken       DOUBLE PRECISION NOT NULL,
		completed_at     TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS quiz_results_quiz_score_idx ON quiz_results (quiz_id, score DESC)`,
	`CREATE INDEX IF NOT EXISTS quiz_results_user_completed_idx ON quiz_results (user_id, completed_at DESC)`,
}

var dropSchema = []string{
	`DROP TABLE IF EXISTS quiz_results`,
	`DROP TABLE IF EXISTS quizzes`,
	`DROP TABLE IF EXISTS users`,
}

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			return execAll(ctx, db, createSchema)
		},
		func(ctx context.Context, db *bun.DB) error {
			return execAll(ctx, db, dropSchema)
		},
	)
}

func execAll(ctx context.Context, db *bun.DB, statements []string) error {
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, stmt := range statements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("exec %q: %w", stmt, err)
			}
		}
		return nil
	})
}
