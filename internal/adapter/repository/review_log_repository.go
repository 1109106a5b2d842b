package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eslsoft/lexdrill/internal/entity"
	repo "github.com/eslsoft/lexdrill/internal/repository"
)

type reviewLogRepository struct {
	pool *pgxpool.Pool
}

// NewReviewLogRepository constructs a Postgres-backed audit log repository.
func NewReviewLogRepository(pool *pgxpool.Pool) repo.ReviewLogRepository {
	return &reviewLogRepository{pool: pool}
}

func (r *reviewLogRepository) Append(ctx context.Context, log *entity.ReviewLog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO review_logs (id, user_id, word_id, action, before_status, after_status, interval_days, ease_factor, result, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		log.ID, log.UserID, log.WordID, string(log.Action),
		string(log.BeforeStatus), string(log.AfterStatus),
		log.IntervalDays, log.EaseFactor, string(log.Result), log.DurationMs,
		toPgTimestamp(ptrTime(log.CreatedAt)),
	)
	if err != nil {
		return fmt.Errorf("append review log: %w", err)
	}
	return nil
}

func (r *reviewLogRepository) List(ctx context.Context, query *repo.ListReviewLogQuery) ([]*entity.ReviewLog, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	pageNo := query.PageNo
	if pageNo <= 0 {
		pageNo = 1
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, word_id, action, before_status, after_status, interval_days, ease_factor, result, duration_ms, created_at,
		       count(*) OVER() AS total_count
		FROM review_logs
		WHERE ($1 = 0 OR user_id = $1)
		  AND ($2 = 0 OR word_id = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`,
		query.UserID, query.WordID, pageSize, (pageNo-1)*pageSize,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list review logs: %w", err)
	}
	defer rows.Close()

	var (
		logs  []*entity.ReviewLog
		total int64
	)
	for rows.Next() {
		var (
			log                                 entity.ReviewLog
			action, before, after, result       string
			createdAt                           pgtype.Timestamptz
		)
		if err := rows.Scan(
			&log.ID, &log.UserID, &log.WordID, &action, &before, &after,
			&log.IntervalDays, &log.EaseFactor, &result, &log.DurationMs, &createdAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("list review logs: %w", err)
		}
		log.Action = entity.ReviewAction(action)
		log.BeforeStatus = entity.ProgressStatus(before)
		log.AfterStatus = entity.ProgressStatus(after)
		log.Result = entity.ReviewResult(result)
		if createdAt.Valid {
			log.CreatedAt = createdAt.Time
		}
		logs = append(logs, &log)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list review logs: %w", err)
	}
	return logs, total, nil
}
