package repository

import (
	"context"

	"github.com/eslsoft/lexdrill/internal/entity"
)

// ListReviewLogQuery holds parameters for listing audit entries.
type ListReviewLogQuery struct {
	Pagination

	UserID int64
	WordID int64
}

// ReviewLogRepository abstracts the append-only review audit log.
type ReviewLogRepository interface {
	Append(ctx context.Context, log *entity.ReviewLog) error
	List(ctx context.Context, query *ListReviewLogQuery) ([]*entity.ReviewLog, int64, error)
}
