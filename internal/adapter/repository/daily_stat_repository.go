package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eslsoft/lexdrill/internal/entity"
	repo "github.com/eslsoft/lexdrill/internal/repository"
)

const dailyStatColumns = "id, user_id, date, quizzes_played, words_reviewed, words_mastered, xp, streak_active, created_at, updated_at"

type dailyStatRepository struct {
	pool *pgxpool.Pool
}

// NewDailyStatRepository constructs a Postgres-backed daily stat repository.
func NewDailyStatRepository(pool *pgxpool.Pool) repo.DailyStatRepository {
	return &dailyStatRepository{pool: pool}
}

// Upsert creates the (user, date) row on first touch and increments the
// counters afterwards. StreakActive reflects the latest event, not a sum.
func (r *dailyStatRepository) Upsert(ctx context.Context, delta *entity.DailyUserStatDelta) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO daily_user_stats (user_id, date, quizzes_played, words_reviewed, words_mastered, xp, streak_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		ON CONFLICT (user_id, date) DO UPDATE SET
			quizzes_played = daily_user_stats.quizzes_played + EXCLUDED.quizzes_played,
			words_reviewed = daily_user_stats.words_reviewed + EXCLUDED.words_reviewed,
			words_mastered = daily_user_stats.words_mastered + EXCLUDED.words_mastered,
			xp = daily_user_stats.xp + EXCLUDED.xp,
			streak_active = EXCLUDED.streak_active,
			updated_at = now()`,
		delta.UserID, delta.Date, delta.QuizzesPlayed, delta.WordsReviewed, delta.WordsMastered, delta.XP, delta.StreakActive,
	)
	if err != nil {
		return fmt.Errorf("upsert daily stat: %w", err)
	}
	return nil
}

func (r *dailyStatRepository) Get(ctx context.Context, userID int64, date string) (*entity.DailyUserStat, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx,
		`SELECT `+dailyStatColumns+` FROM daily_user_stats WHERE user_id = $1 AND date = $2`, userID, date)
	stat, err := scanDailyStat(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get daily stat: %w", err)
	}
	return stat, nil
}

func (r *dailyStatRepository) ListRange(ctx context.Context, userID int64, from, to string) ([]*entity.DailyUserStat, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+dailyStatColumns+`
		FROM daily_user_stats
		WHERE user_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date`,
		userID, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("list daily stats: %w", err)
	}
	defer rows.Close()

	var out []*entity.DailyUserStat
	for rows.Next() {
		stat, err := scanDailyStat(rows)
		if err != nil {
			return nil, fmt.Errorf("list daily stats: %w", err)
		}
		out = append(out, stat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list daily stats: %w", err)
	}
	return out, nil
}

func (r *dailyStatRepository) Leaderboard(ctx context.Context, from, to string, limit int32) ([]*entity.LeaderboardEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT s.user_id, coalesce(u.name, ''), sum(s.xp), sum(s.words_reviewed)
		FROM daily_user_stats s
		LEFT JOIN users u ON u.id = s.user_id
		WHERE s.date >= $1 AND s.date <= $2
		GROUP BY s.user_id, u.name
		ORDER BY sum(s.xp) DESC, s.user_id
		LIMIT $3`,
		from, to, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	defer rows.Close()

	var out []*entity.LeaderboardEntry
	for rows.Next() {
		var e entity.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.UserName, &e.XP, &e.Reviews); err != nil {
			return nil, fmt.Errorf("leaderboard: %w", err)
		}
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	return out, nil
}

func scanDailyStat(row pgx.Row) (*entity.DailyUserStat, error) {
	var (
		s                    entity.DailyUserStat
		createdAt, updatedAt pgtype.Timestamptz
	)
	if err := row.Scan(
		&s.ID, &s.UserID, &s.Date, &s.QuizzesPlayed, &s.WordsReviewed, &s.WordsMastered,
		&s.XP, &s.StreakActive, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}
	if createdAt.Valid {
		s.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		s.UpdatedAt = updatedAt.Time
	}
	return &s, nil
}
