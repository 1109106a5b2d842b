package entity

import "time"

// ReviewAction labels what a review submission did to the progress record.
type ReviewAction string

const (
	ReviewActionReview  ReviewAction = "review"
	ReviewActionPromote ReviewAction = "promote"
	ReviewActionDemote  ReviewAction = "demote"
	ReviewActionMaster  ReviewAction = "master"
)

// ReviewLog is one append-only audit entry per review submission. Entries
// are never mutated or deleted; writing one is best-effort and must not
// fail the review itself.
type ReviewLog struct {
	ID           string
	UserID       int64
	WordID       int64
	Action       ReviewAction
	BeforeStatus ProgressStatus
	AfterStatus  ProgressStatus
	IntervalDays int32
	EaseFactor   float64
	Result       ReviewResult
	DurationMs   int64
	CreatedAt    time.Time
}

// ClassifyReviewAction derives the audit action from a status transition.
func ClassifyReviewAction(before, after ProgressStatus) ReviewAction {
	switch {
	case after == ProgressStatusMastered && before != ProgressStatusMastered:
		return ReviewActionMaster
	case statusRank(after) > statusRank(before):
		return ReviewActionPromote
	case statusRank(after) < statusRank(before):
		return ReviewActionDemote
	default:
		return ReviewActionReview
	}
}

func statusRank(s ProgressStatus) int {
	switch s {
	case ProgressStatusNew:
		return 0
	case ProgressStatusLearning:
		return 1
	case ProgressStatusReview:
		return 2
	case ProgressStatusMastered:
		return 3
	default:
		return 0
	}
}
