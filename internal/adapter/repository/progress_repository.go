package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eslsoft/lexdrill/internal/entity"
	"github.com/eslsoft/lexdrill/internal/infrastructure/database/types"
	repo "github.com/eslsoft/lexdrill/internal/repository"
)

const progressColumns = "id, user_id, word_id, status, ease_factor, interval_days, repetition, category, last_reviewed_at, next_review_at, history, version, created_at, updated_at"

type progressRepository struct {
	pool *pgxpool.Pool
}

// NewProgressRepository constructs a Postgres-backed progress repository.
func NewProgressRepository(pool *pgxpool.Pool) repo.ProgressRepository {
	return &progressRepository{pool: pool}
}

func (r *progressRepository) Create(ctx context.Context, progress *entity.WordProgress) (*entity.WordProgress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO word_progress (user_id, word_id, status, ease_factor, interval_days, repetition, category, last_reviewed_at, next_review_at, history, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 1, $11, $12)
		RETURNING `+progressColumns,
		progress.UserID, progress.WordID, string(progress.Status), progress.EaseFactor,
		progress.IntervalDays, progress.Repetition, progress.Category,
		toPgTimestamp(progress.LastReviewedAt), toPgTimestamp(progress.NextReviewAt),
		toHistoryDoc(progress.History),
		toPgTimestamp(ptrTime(progress.CreatedAt)), toPgTimestamp(ptrTime(progress.UpdatedAt)),
	)
	created, err := scanProgress(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, entity.ErrDuplicateProgress
		}
		return nil, fmt.Errorf("create progress: %w", err)
	}
	return created, nil
}

// Update applies a compare-and-swap on the stored version. A vanished row
// maps to ErrProgressNotFound, a moved version to ErrConflict.
func (r *progressRepository) Update(ctx context.Context, progress *entity.WordProgress) (*entity.WordProgress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE word_progress
		SET status = $3, ease_factor = $4, interval_days = $5, repetition = $6, category = $7,
		    last_reviewed_at = $8, next_review_at = $9, history = $10, version = version + 1, updated_at = $11
		WHERE id = $1 AND user_id = $2 AND version = $12
		RETURNING `+progressColumns,
		progress.ID, progress.UserID, string(progress.Status), progress.EaseFactor,
		progress.IntervalDays, progress.Repetition, progress.Category,
		toPgTimestamp(progress.LastReviewedAt), toPgTimestamp(progress.NextReviewAt),
		toHistoryDoc(progress.History),
		toPgTimestamp(ptrTime(progress.UpdatedAt)), progress.Version,
	)
	updated, err := scanProgress(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.classifyMissedUpdate(ctx, progress.UserID, progress.ID)
		}
		return nil, fmt.Errorf("update progress: %w", err)
	}
	return updated, nil
}

func (r *progressRepository) classifyMissedUpdate(ctx context.Context, userID, id int64) error {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM word_progress WHERE id = $1 AND user_id = $2)`, id, userID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	if exists {
		return entity.ErrConflict
	}
	return entity.ErrProgressNotFound
}

func (r *progressRepository) GetByID(ctx context.Context, userID, id int64) (*entity.WordProgress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx,
		`SELECT `+progressColumns+` FROM word_progress WHERE id = $1 AND user_id = $2`, id, userID)
	progress, err := scanProgress(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrProgressNotFound
		}
		return nil, fmt.Errorf("get progress: %w", err)
	}
	return progress, nil
}

func (r *progressRepository) FindByWord(ctx context.Context, userID, wordID int64) (*entity.WordProgress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx,
		`SELECT `+progressColumns+` FROM word_progress WHERE user_id = $1 AND word_id = $2`, userID, wordID)
	progress, err := scanProgress(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find progress: %w", err)
	}
	return progress, nil
}

func (r *progressRepository) ListDue(ctx context.Context, userID int64, due time.Time, category string, limit int32) ([]*entity.WordProgress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+progressColumns+`
		FROM word_progress
		WHERE user_id = $1
		  AND next_review_at IS NOT NULL
		  AND next_review_at <= $2
		  AND ($3 = '' OR category = $3)
		ORDER BY next_review_at
		LIMIT $4`,
		userID, due, category, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list due progress: %w", err)
	}
	defer rows.Close()

	var out []*entity.WordProgress
	for rows.Next() {
		progress, err := scanProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("list due progress: %w", err)
		}
		out = append(out, progress)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list due progress: %w", err)
	}
	return out, nil
}

func (r *progressRepository) CountByStatus(ctx context.Context, userID int64, status entity.ProgressStatus) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM word_progress WHERE user_id = $1 AND status = $2`,
		userID, string(status),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count progress: %w", err)
	}
	return count, nil
}

func (r *progressRepository) DeleteByWord(ctx context.Context, wordID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := r.pool.Exec(ctx, `DELETE FROM word_progress WHERE word_id = $1`, wordID); err != nil {
		return fmt.Errorf("delete progress by word: %w", err)
	}
	return nil
}

func scanProgress(row pgx.Row) (*entity.WordProgress, error) {
	var (
		p                        entity.WordProgress
		status                   string
		lastReviewed, nextReview pgtype.Timestamptz
		history                  types.ReviewHistory
		createdAt, updatedAt     pgtype.Timestamptz
	)
	if err := row.Scan(
		&p.ID, &p.UserID, &p.WordID, &status, &p.EaseFactor, &p.IntervalDays, &p.Repetition,
		&p.Category, &lastReviewed, &nextReview, &history, &p.Version, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}
	p.Status = entity.ProgressStatus(status)
	p.LastReviewedAt = fromPgTimestamp(lastReviewed)
	p.NextReviewAt = fromPgTimestamp(nextReview)
	p.History = fromHistoryDoc(history)
	if createdAt.Valid {
		p.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		p.UpdatedAt = updatedAt.Time
	}
	return &p, nil
}

func toHistoryDoc(entries []entity.ReviewHistoryEntry) types.ReviewHistory {
	if len(entries) == 0 {
		return nil
	}
	doc := make(types.ReviewHistory, 0, len(entries))
	for _, e := range entries {
		doc = append(doc, types.ReviewHistoryEntry{
			ReviewedAt: e.ReviewedAt,
			Result:     string(e.Result),
			EaseFactor: e.EaseFactor,
			Interval:   e.Interval,
			DurationMs: e.DurationMs,
		})
	}
	return doc
}

func fromHistoryDoc(doc types.ReviewHistory) []entity.ReviewHistoryEntry {
	if len(doc) == 0 {
		return []entity.ReviewHistoryEntry{}
	}
	entries := make([]entity.ReviewHistoryEntry, 0, len(doc))
	for _, e := range doc {
		entries = append(entries, entity.ReviewHistoryEntry{
			ReviewedAt: e.ReviewedAt,
			Result:     entity.ReviewResult(e.Result),
			EaseFactor: e.EaseFactor,
			Interval:   e.Interval,
			DurationMs: e.DurationMs,
		})
	}
	return entries
}
