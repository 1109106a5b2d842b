package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema is the canonical DDL for the review subsystem. All statements are
// idempotent so db-init can run repeatedly.
const Schema = `
CREATE TABLE IF NOT EXISTS words (
	id             BIGSERIAL PRIMARY KEY,
	term           TEXT NOT NULL,
	language       TEXT NOT NULL DEFAULT 'en',
	translation    TEXT NOT NULL DEFAULT '',
	definition     TEXT NOT NULL DEFAULT '',
	examples       JSONB NOT NULL DEFAULT '[]',
	level          TEXT NOT NULL DEFAULT 'unknown',
	difficulty     TEXT NOT NULL DEFAULT 'medium',
	status         TEXT NOT NULL DEFAULT 'draft',
	category       TEXT NOT NULL DEFAULT '',
	tags           JSONB NOT NULL DEFAULT '[]',
	times_reviewed BIGINT NOT NULL DEFAULT 0,
	success_count  BIGINT NOT NULL DEFAULT 0,
	failure_count  BIGINT NOT NULL DEFAULT 0,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS words_term_language_uniq ON words (lower(term), language);
CREATE INDEX IF NOT EXISTS words_category_idx ON words (category) WHERE category <> '';

CREATE TABLE IF NOT EXISTS users (
	id         BIGSERIAL PRIMARY KEY,
	name       TEXT NOT NULL DEFAULT '',
	email      TEXT NOT NULL DEFAULT '',
	settings   JSONB NOT NULL DEFAULT '{}',
	stats      JSONB NOT NULL DEFAULT '{}',
	version    BIGINT NOT NULL DEFAULT 1,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS users_email_uniq ON users (email) WHERE email <> '';

CREATE TABLE IF NOT EXISTS word_progress (
	id               BIGSERIAL PRIMARY KEY,
	user_id          BIGINT NOT NULL REFERENCES users (id),
	word_id          BIGINT NOT NULL REFERENCES words (id),
	status           TEXT NOT NULL DEFAULT 'new',
	ease_factor      DOUBLE PRECISION NOT NULL DEFAULT 2.5,
	interval_days    INTEGER NOT NULL DEFAULT 0,
	repetition       INTEGER NOT NULL DEFAULT 0,
	category         TEXT NOT NULL DEFAULT '',
	last_reviewed_at TIMESTAMPTZ,
	next_review_at   TIMESTAMPTZ,
	history          JSONB NOT NULL DEFAULT '[]',
	version          BIGINT NOT NULL DEFAULT 1,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS word_progress_user_word_uniq ON word_progress (user_id, word_id);
CREATE INDEX IF NOT EXISTS word_progress_due_idx ON word_progress (user_id, next_review_at);

CREATE TABLE IF NOT EXISTS review_logs (
	id            UUID PRIMARY KEY,
	user_id       BIGINT NOT NULL,
	word_id       BIGINT NOT NULL,
	action        TEXT NOT NULL,
	before_status TEXT NOT NULL,
	after_status  TEXT NOT NULL,
	interval_days INTEGER NOT NULL DEFAULT 0,
	ease_factor   DOUBLE PRECISION NOT NULL DEFAULT 2.5,
	result        TEXT NOT NULL,
	duration_ms   BIGINT NOT NULL DEFAULT 0,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS review_logs_user_created_idx ON review_logs (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS daily_user_stats (
	id             BIGSERIAL PRIMARY KEY,
	user_id        BIGINT NOT NULL,
	date           TEXT NOT NULL,
	quizzes_played BIGINT NOT NULL DEFAULT 0,
	words_reviewed BIGINT NOT NULL DEFAULT 0,
	words_mastered BIGINT NOT NULL DEFAULT 0,
	xp             BIGINT NOT NULL DEFAULT 0,
	streak_active  BOOLEAN NOT NULL DEFAULT false,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS daily_user_stats_user_date_uniq ON daily_user_stats (user_id, date);
`

// Migrate applies the embedded schema.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
