package entity

import "time"

// Spaced-repetition bounds shared by scheduler and storage.
const (
	DefaultEaseFactor = 2.5
	MinEaseFactor     = 1.3
	MaxEaseFactor     = 3.0
)

// ReviewHistoryEntry is one element of the append-only per-progress log.
type ReviewHistoryEntry struct {
	ReviewedAt time.Time
	Result     ReviewResult
	EaseFactor float64
	Interval   int32
	DurationMs int64
}

// WordProgress holds the spaced-repetition state for one (user, word) pair.
// It is created lazily on first review and mutated only through the review
// orchestrator; Version guards read-modify-write cycles.
type WordProgress struct {
	ID             int64
	UserID         int64
	WordID         int64
	Status         ProgressStatus
	EaseFactor     float64
	IntervalDays   int32
	Repetition     int32
	Category       string
	LastReviewedAt *time.Time
	NextReviewAt   *time.Time
	History        []ReviewHistoryEntry
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewWordProgress returns the default state for a never-reviewed pair.
func NewWordProgress(userID, wordID int64, category string, now time.Time) *WordProgress {
	return &WordProgress{
		UserID:     userID,
		WordID:     wordID,
		Status:     ProgressStatusNew,
		EaseFactor: DefaultEaseFactor,
		Category:   category,
		History:    []ReviewHistoryEntry{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Normalize clamps stored values back into their invariant ranges. Old rows
// written before bounds were enforced may carry out-of-range numbers.
func (p *WordProgress) Normalize(now time.Time) {
	if p.EaseFactor < MinEaseFactor {
		p.EaseFactor = MinEaseFactor
	}
	if p.EaseFactor > MaxEaseFactor {
		p.EaseFactor = MaxEaseFactor
	}
	if p.IntervalDays < 0 {
		p.IntervalDays = 0
	}
	if p.Repetition < 0 {
		p.Repetition = 0
	}
	if p.Status == "" {
		p.Status = ProgressStatusNew
	}
	if p.History == nil {
		p.History = []ReviewHistoryEntry{}
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
}

// Due reports whether the progress record is due for review at ref time.
func (p *WordProgress) Due(ref time.Time) bool {
	return p.NextReviewAt != nil && !p.NextReviewAt.After(ref)
}
