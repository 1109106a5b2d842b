package repository

import (
	"context"

	"github.com/eslsoft/lexdrill/internal/entity"
)

// ListWordQuery holds parameters for listing catalog words.
type ListWordQuery struct {
	Pagination
	FilterOrder

	Language entity.Language
	Category string
}

// WordCounterDelta is the best-effort aggregate increment applied after a
// review; it never gates the review itself.
type WordCounterDelta struct {
	TimesReviewed int64
	SuccessCount  int64
	FailureCount  int64
}

// WordRepository abstracts persistence for the word catalog. Lookup returns
// (nil, nil) when no entry matches the (term, language) pair.
type WordRepository interface {
	Create(ctx context.Context, word *entity.Word) (*entity.Word, error)
	Update(ctx context.Context, word *entity.Word) (*entity.Word, error)
	GetByID(ctx context.Context, id int64) (*entity.Word, error)
	Lookup(ctx context.Context, term string, language entity.Language) (*entity.Word, error)
	List(ctx context.Context, query *ListWordQuery) ([]*entity.Word, int64, error)
	ListUnstudied(ctx context.Context, userID int64, category string, limit int32) ([]*entity.Word, error)
	IncrementCounters(ctx context.Context, id int64, delta WordCounterDelta) error
	Delete(ctx context.Context, id int64) error
}
