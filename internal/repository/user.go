package repository

import (
	"context"

	"github.com/eslsoft/lexdrill/internal/entity"
)

// UserRepository abstracts persistence for user records. UpdateStats
// performs a compare-and-swap on the user's version and returns
// entity.ErrConflict when the stored version moved.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	UpdateStats(ctx context.Context, user *entity.User) (*entity.User, error)
}
