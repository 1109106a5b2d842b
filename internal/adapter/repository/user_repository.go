package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eslsoft/lexdrill/internal/entity"
	"github.com/eslsoft/lexdrill/internal/infrastructure/database/types"
	repo "github.com/eslsoft/lexdrill/internal/repository"
)

const userColumns = "id, name, email, settings, stats, version, created_at, updated_at"

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository constructs a Postgres-backed user repository.
func NewUserRepository(pool *pgxpool.Pool) repo.UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// UpdateStats applies a compare-and-swap on the stored version. Settings and
// identity fields are left untouched; only the stats document moves here.
func (r *userRepository) UpdateStats(ctx context.Context, user *entity.User) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE users
		SET stats = $2, version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $3
		RETURNING `+userColumns,
		user.ID, types.UserStats(user.Stats), user.Version,
	)
	updated, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.classifyMissedUpdate(ctx, user.ID)
		}
		return nil, fmt.Errorf("update user stats: %w", err)
	}
	return updated, nil
}

func (r *userRepository) classifyMissedUpdate(ctx context.Context, id int64) error {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("update user stats: %w", err)
	}
	if exists {
		return entity.ErrConflict
	}
	return entity.ErrUserNotFound
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var (
		u                    entity.User
		settings             types.UserSettings
		stats                types.UserStats
		createdAt, updatedAt pgtype.Timestamptz
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &settings, &stats, &u.Version, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	u.Settings = entity.UserSettings(settings)
	u.Stats = entity.VocabularyStats(stats)
	if createdAt.Valid {
		u.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		u.UpdatedAt = updatedAt.Time
	}
	return &u, nil
}
