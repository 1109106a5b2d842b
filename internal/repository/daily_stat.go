package repository

import (
	"context"

	"github.com/eslsoft/lexdrill/internal/entity"
)

// DailyStatRepository abstracts the per-(user, date) statistics rows. Get
// returns (nil, nil) when no row exists for the date.
type DailyStatRepository interface {
	Upsert(ctx context.Context, delta *entity.DailyUserStatDelta) error
	Get(ctx context.Context, userID int64, date string) (*entity.DailyUserStat, error)
	ListRange(ctx context.Context, userID int64, from, to string) ([]*entity.DailyUserStat, error)
	Leaderboard(ctx context.Context, from, to string, limit int32) ([]*entity.LeaderboardEntry, error)
}
