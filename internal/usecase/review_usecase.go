package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/lexdrill/internal/entity"
	"github.com/eslsoft/lexdrill/internal/repository"
	"github.com/eslsoft/lexdrill/internal/srs"
)

// Batch size bounds for review/learn queues.
const (
	defaultBatchLimit = int32(10)
	maxBatchLimit     = int32(40)
)

// SubmitReviewInput carries one review outcome from the transport layer.
type SubmitReviewInput struct {
	WordID     int64
	Result     entity.ReviewResult
	ProgressID int64
	DurationMs int64
	Category   string
}

// ReviewOutcome is the full response of a review submission.
type ReviewOutcome struct {
	Progress *entity.WordProgress
	Reward   ReviewReward
	Session  SessionMeta
}

// ListDueInput selects a batch of items to study.
type ListDueInput struct {
	Mode         entity.ReviewMode
	Limit        int32
	Category     string
	ResetSession bool
}

// BatchItem pairs a due progress record with its catalog word. Word-only
// items (learn mode) leave Progress nil.
type BatchItem struct {
	Word     *entity.Word
	Progress *entity.WordProgress
}

// ReviewBatch is the response of a batch request.
type ReviewBatch struct {
	Mode    entity.ReviewMode
	Items   []BatchItem
	Session SessionMeta
}

// ReviewUsecase binds catalog, scheduler and stats aggregation into one
// operation per request.
type ReviewUsecase interface {
	SubmitReview(ctx context.Context, userID int64, in SubmitReviewInput) (*ReviewOutcome, error)
	ListDue(ctx context.Context, userID int64, in ListDueInput) (*ReviewBatch, error)
}

type reviewUsecase struct {
	words    repository.WordRepository
	progress repository.ProgressRepository
	users    repository.UserRepository
	logs     repository.ReviewLogRepository
	daily    repository.DailyStatRepository
	agg      StatsAggregator
	logger   *logrus.Logger
	clock    func() time.Time
}

// NewReviewUsecase wires the repositories with default behaviour.
func NewReviewUsecase(
	words repository.WordRepository,
	progress repository.ProgressRepository,
	users repository.UserRepository,
	logs repository.ReviewLogRepository,
	daily repository.DailyStatRepository,
	logger *logrus.Logger,
) ReviewUsecase {
	return &reviewUsecase{
		words:    words,
		progress: progress,
		users:    users,
		logs:     logs,
		daily:    daily,
		logger:   logger,
		clock:    time.Now,
	}
}

func (u *reviewUsecase) SubmitReview(ctx context.Context, userID int64, in SubmitReviewInput) (*ReviewOutcome, error) {
	if userID <= 0 {
		return nil, entity.ErrInvalidUserID
	}
	if in.WordID <= 0 {
		return nil, entity.ErrInvalidWordID
	}
	if !in.Result.Valid() {
		return nil, entity.ErrInvalidReviewResult
	}

	word, err := u.words.GetByID(ctx, in.WordID)
	if err != nil {
		return nil, err
	}
	user, err := u.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := u.clock()
	progress, err := u.resolveProgress(ctx, userID, word, in, now)
	if err != nil {
		return nil, err
	}

	beforeStatus := progress.Status
	outcome := srs.Next(srs.State{
		EaseFactor:   progress.EaseFactor,
		IntervalDays: progress.IntervalDays,
		Repetition:   progress.Repetition,
		Status:       progress.Status,
	}, in.Result, now)

	progress.EaseFactor = outcome.EaseFactor
	progress.IntervalDays = outcome.IntervalDays
	progress.Repetition = outcome.Repetition
	progress.Status = outcome.Status
	last := outcome.LastReviewedAt
	next := outcome.NextReviewAt
	progress.LastReviewedAt = &last
	progress.NextReviewAt = &next
	progress.History = append(progress.History, entity.ReviewHistoryEntry{
		ReviewedAt: now,
		Result:     in.Result,
		EaseFactor: progress.EaseFactor,
		Interval:   progress.IntervalDays,
		DurationMs: in.DurationMs,
	})
	progress.UpdatedAt = now

	progress, err = u.progress.Update(ctx, progress)
	if err != nil {
		return nil, err
	}

	// Catalog counters are advisory; a failed increment never fails the review.
	if err := u.words.IncrementCounters(ctx, word.ID, counterDelta(in.Result)); err != nil {
		u.logger.WithError(err).WithField("word_id", word.ID).Warn("increment word counters")
	}

	loc := user.ResolvedLocation()
	goal := user.ResolvedDailyGoal()
	reward := u.agg.ApplyReview(&user.Stats, in.Result, now, loc, goal)
	user, err = u.users.UpdateStats(ctx, user)
	if err != nil {
		return nil, err
	}

	mastered := int64(0)
	if progress.Status == entity.ProgressStatusMastered && beforeStatus != entity.ProgressStatusMastered {
		mastered = 1
	}
	if err := u.daily.Upsert(ctx, &entity.DailyUserStatDelta{
		UserID:        userID,
		Date:          entity.DayKey(now, loc),
		WordsReviewed: 1,
		WordsMastered: mastered,
		XP:            reward.XP,
		StreakActive:  user.Stats.Streak > 0,
	}); err != nil {
		return nil, err
	}

	// Audit logging is best-effort: the state change is already committed,
	// so a failed append is logged and swallowed.
	if err := u.logs.Append(ctx, &entity.ReviewLog{
		ID:           uuid.NewString(),
		UserID:       userID,
		WordID:       word.ID,
		Action:       entity.ClassifyReviewAction(beforeStatus, progress.Status),
		BeforeStatus: beforeStatus,
		AfterStatus:  progress.Status,
		IntervalDays: progress.IntervalDays,
		EaseFactor:   progress.EaseFactor,
		Result:       in.Result,
		DurationMs:   in.DurationMs,
		CreatedAt:    now,
	}); err != nil {
		u.logger.WithError(err).WithFields(logrus.Fields{
			"user_id": userID,
			"word_id": word.ID,
		}).Error("append review log")
	}

	return &ReviewOutcome{
		Progress: progress,
		Reward:   reward,
		Session:  u.agg.SessionMeta(&user.Stats, reward.XP),
	}, nil
}

func (u *reviewUsecase) resolveProgress(ctx context.Context, userID int64, word *entity.Word, in SubmitReviewInput, now time.Time) (*entity.WordProgress, error) {
	if in.ProgressID > 0 {
		progress, err := u.progress.GetByID(ctx, userID, in.ProgressID)
		if err != nil {
			return nil, err
		}
		progress.Normalize(now)
		return progress, nil
	}

	existing, err := u.progress.FindByWord(ctx, userID, word.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		existing.Normalize(now)
		return existing, nil
	}

	category := in.Category
	if category == "" {
		category = word.Category
	}
	return u.progress.Create(ctx, entity.NewWordProgress(userID, word.ID, category, now))
}

func (u *reviewUsecase) ListDue(ctx context.Context, userID int64, in ListDueInput) (*ReviewBatch, error) {
	if userID <= 0 {
		return nil, entity.ErrInvalidUserID
	}
	if !in.Mode.Valid() {
		return nil, entity.ErrInvalidReviewMode
	}
	limit := in.Limit
	if limit <= 0 {
		limit = defaultBatchLimit
	}
	if limit > maxBatchLimit {
		limit = maxBatchLimit
	}

	user, err := u.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := u.clock()
	loc := user.ResolvedLocation()
	u.agg.Touch(&user.Stats, now, loc, user.ResolvedDailyGoal(), in.ResetSession)
	user, err = u.users.UpdateStats(ctx, user)
	if err != nil {
		return nil, err
	}

	var items []BatchItem
	switch in.Mode {
	case entity.ReviewModeLearn:
		words, err := u.words.ListUnstudied(ctx, userID, in.Category, limit)
		if err != nil {
			return nil, err
		}
		items = make([]BatchItem, 0, len(words))
		for _, w := range words {
			items = append(items, BatchItem{Word: w})
		}
	case entity.ReviewModeReview:
		due, err := u.progress.ListDue(ctx, userID, now, in.Category, limit)
		if err != nil {
			return nil, err
		}
		items = make([]BatchItem, 0, len(due))
		for _, p := range due {
			word, err := u.words.GetByID(ctx, p.WordID)
			if err != nil {
				if errors.Is(err, entity.ErrWordNotFound) {
					continue
				}
				return nil, err
			}
			items = append(items, BatchItem{Word: word, Progress: p})
		}
	}

	return &ReviewBatch{
		Mode:    in.Mode,
		Items:   items,
		Session: u.agg.SessionMeta(&user.Stats, 0),
	}, nil
}

func counterDelta(result entity.ReviewResult) repository.WordCounterDelta {
	delta := repository.WordCounterDelta{TimesReviewed: 1}
	switch result {
	case entity.ReviewResultSuccess:
		delta.SuccessCount = 1
	case entity.ReviewResultFailure:
		delta.FailureCount = 1
	}
	return delta
}
