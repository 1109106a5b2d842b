package usecase

import (
	"context"
	"time"

	"github.com/eslsoft/lexdrill/internal/entity"
	"github.com/eslsoft/lexdrill/internal/repository"
)

const (
	defaultLeaderboardDays  = 7
	defaultLeaderboardLimit = int32(20)
	maxLeaderboardLimit     = int32(100)
)

// StatsSnapshot is the read-side view of a user's gamification state.
type StatsSnapshot struct {
	Stats    entity.VocabularyStats
	Today    *entity.DailyUserStat
	Progress ProgressBreakdown
	Session  SessionMeta
}

// ProgressBreakdown counts the user's progress records per learning stage.
type ProgressBreakdown struct {
	New      int64 `json:"new"`
	Learning int64 `json:"learning"`
	Review   int64 `json:"review"`
	Mastered int64 `json:"mastered"`
}

// GameResult reports what a mini-game round earned.
type GameResult struct {
	XP      int64
	Session SessionMeta
}

// StatsUsecase exposes the aggregate read paths and the mini-game reward
// path.
type StatsUsecase interface {
	Snapshot(ctx context.Context, userID int64) (*StatsSnapshot, error)
	History(ctx context.Context, userID int64, days int) ([]*entity.DailyUserStat, error)
	Leaderboard(ctx context.Context, days int, limit int32) ([]*entity.LeaderboardEntry, error)
	RecordGameResult(ctx context.Context, userID int64, kind entity.GameKind) (*GameResult, error)
}

type statsUsecase struct {
	users    repository.UserRepository
	daily    repository.DailyStatRepository
	progress repository.ProgressRepository
	agg      StatsAggregator
	clock    func() time.Time
}

// NewStatsUsecase wires the repositories with default behaviour.
func NewStatsUsecase(users repository.UserRepository, daily repository.DailyStatRepository, progress repository.ProgressRepository) StatsUsecase {
	return &statsUsecase{users: users, daily: daily, progress: progress, clock: time.Now}
}

func (u *statsUsecase) Snapshot(ctx context.Context, userID int64) (*StatsSnapshot, error) {
	if userID <= 0 {
		return nil, entity.ErrInvalidUserID
	}
	user, err := u.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := u.clock()
	loc := user.ResolvedLocation()
	u.agg.Touch(&user.Stats, now, loc, user.ResolvedDailyGoal(), false)

	today, err := u.daily.Get(ctx, userID, entity.DayKey(now, loc))
	if err != nil {
		return nil, err
	}

	breakdown, err := u.progressBreakdown(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &StatsSnapshot{
		Stats:    user.Stats,
		Today:    today,
		Progress: breakdown,
		Session:  u.agg.SessionMeta(&user.Stats, 0),
	}, nil
}

func (u *statsUsecase) progressBreakdown(ctx context.Context, userID int64) (ProgressBreakdown, error) {
	var out ProgressBreakdown
	for status, target := range map[entity.ProgressStatus]*int64{
		entity.ProgressStatusNew:      &out.New,
		entity.ProgressStatusLearning: &out.Learning,
		entity.ProgressStatusReview:   &out.Review,
		entity.ProgressStatusMastered: &out.Mastered,
	} {
		n, err := u.progress.CountByStatus(ctx, userID, status)
		if err != nil {
			return ProgressBreakdown{}, err
		}
		*target = n
	}
	return out, nil
}

func (u *statsUsecase) History(ctx context.Context, userID int64, days int) ([]*entity.DailyUserStat, error) {
	if userID <= 0 {
		return nil, entity.ErrInvalidUserID
	}
	if days <= 0 {
		days = defaultLeaderboardDays
	}
	user, err := u.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := u.clock()
	loc := user.ResolvedLocation()
	from := entity.DayKey(now.AddDate(0, 0, -(days-1)), loc)
	to := entity.DayKey(now, loc)
	return u.daily.ListRange(ctx, userID, from, to)
}

func (u *statsUsecase) Leaderboard(ctx context.Context, days int, limit int32) ([]*entity.LeaderboardEntry, error) {
	if days <= 0 {
		days = defaultLeaderboardDays
	}
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}

	now := u.clock()
	from := entity.DayKey(now.AddDate(0, 0, -(days-1)), time.Local)
	to := entity.DayKey(now, time.Local)
	return u.daily.Leaderboard(ctx, from, to, limit)
}

func (u *statsUsecase) RecordGameResult(ctx context.Context, userID int64, kind entity.GameKind) (*GameResult, error) {
	if userID <= 0 {
		return nil, entity.ErrInvalidUserID
	}
	if !kind.Valid() {
		return nil, entity.ErrInvalidGameKind
	}
	user, err := u.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := u.clock()
	loc := user.ResolvedLocation()
	award := u.agg.ApplyGame(&user.Stats, kind, now, loc, user.ResolvedDailyGoal())
	user, err = u.users.UpdateStats(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := u.daily.Upsert(ctx, &entity.DailyUserStatDelta{
		UserID:        userID,
		Date:          entity.DayKey(now, loc),
		QuizzesPlayed: 1,
		XP:            award,
		StreakActive:  user.Stats.Streak > 0,
	}); err != nil {
		return nil, err
	}

	return &GameResult{
		XP:      award,
		Session: u.agg.SessionMeta(&user.Stats, award),
	}, nil
}
