package repository

import (
	"context"
	"time"

	"github.com/eslsoft/lexdrill/internal/entity"
)

// ProgressRepository abstracts persistence for per-(user, word) progress
// records. Update performs a compare-and-swap on the record's version and
// returns entity.ErrConflict when the stored version moved.
type ProgressRepository interface {
	Create(ctx context.Context, progress *entity.WordProgress) (*entity.WordProgress, error)
	Update(ctx context.Context, progress *entity.WordProgress) (*entity.WordProgress, error)
	GetByID(ctx context.Context, userID, id int64) (*entity.WordProgress, error)
	FindByWord(ctx context.Context, userID, wordID int64) (*entity.WordProgress, error)
	ListDue(ctx context.Context, userID int64, due time.Time, category string, limit int32) ([]*entity.WordProgress, error)
	CountByStatus(ctx context.Context, userID int64, status entity.ProgressStatus) (int64, error)
	DeleteByWord(ctx context.Context, wordID int64) error
}
