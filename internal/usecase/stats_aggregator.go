package usecase

import (
	"time"

	"github.com/samber/lo"

	"github.com/eslsoft/lexdrill/internal/entity"
)

// XP rewards per review outcome. Mini-games carry their own fixed rewards
// on entity.GameKind.
const (
	xpSuccess = 10
	xpFailure = 2
	xpSkipped = 0
)

// Combo milestones that grant a session achievement when first reached.
var comboAchievements = map[int64]string{
	5:  "combo_5",
	10: "combo_10",
	25: "combo_25",
}

type deckUnlock struct {
	XP   int64
	Deck string
}

// Lifetime XP thresholds that unlock named decks.
var deckUnlocks = []deckUnlock{
	{0, "starter"},
	{250, "traveller"},
	{1000, "scholar"},
	{5000, "polyglot"},
}

// ReviewReward summarizes what one action earned.
type ReviewReward struct {
	XP            int64 `json:"xp"`
	Streak        int64 `json:"streak"`
	Combo         int64 `json:"combo"`
	DailyProgress int64 `json:"dailyProgress"`
}

// SessionMeta is the transient gamification snapshot returned with every
// review response.
type SessionMeta struct {
	XPEarned      int64      `json:"xpEarned"`
	Streak        int64      `json:"streak"`
	Combo         int64      `json:"combo"`
	MaxCombo      int64      `json:"maxCombo"`
	DailyProgress int64      `json:"dailyProgress"`
	DailyGoal     int64      `json:"dailyGoal"`
	UnlockedDecks []string   `json:"unlockedDecks"`
	Achievements  []string   `json:"achievements"`
	CooldownUntil *time.Time `json:"cooldownUntil"`
	LastAward     int64      `json:"lastAward"`
}

// StatsAggregator maintains the per-user gamification counters. All methods
// mutate the passed stats in place; they never fail on valid input, and
// malformed stored state is repaired rather than rejected.
type StatsAggregator struct{}

// Touch normalizes stored counters, rolls the daily sub-record over on a
// date change and recreates the session sub-record when it expired (or when
// the caller forces a reset). Safe to call before any read or mutation.
func (StatsAggregator) Touch(stats *entity.VocabularyStats, now time.Time, loc *time.Location, goal int64, resetSession bool) {
	stats.Normalize()

	today := entity.DayKey(now, loc)
	if stats.Daily.Date != today {
		stats.Daily = entity.DailyStats{Date: today}
	}
	stats.Daily.Goal = goal

	if resetSession || stats.Session.Expired(now, loc) {
		stats.Session = entity.SessionStats{
			StartedAt:      now,
			LastActivityAt: now,
			Achievements:   []string{},
		}
	} else {
		stats.Session.LastActivityAt = now
	}
}

// ApplyReview folds one review outcome into the counters and returns the
// reward summary. XP only ever accumulates; streak and combo increment on
// success, reset on failure and are untouched by a skip.
func (a StatsAggregator) ApplyReview(stats *entity.VocabularyStats, result entity.ReviewResult, now time.Time, loc *time.Location, goal int64) ReviewReward {
	a.Touch(stats, now, loc, goal, false)

	var award int64
	switch result {
	case entity.ReviewResultSuccess:
		award = xpSuccess
		stats.SuccessCount++
		stats.Streak++
		stats.Combo++
		stats.Session.Combo++
		stats.Daily.Successes++
	case entity.ReviewResultFailure:
		award = xpFailure
		stats.FailureCount++
		stats.Streak = 0
		stats.Combo = 0
		stats.Session.Combo = 0
	case entity.ReviewResultSkipped:
		award = xpSkipped
		stats.SkipCount++
	}

	stats.TotalReviews++
	stats.Daily.Reviews++
	a.grant(stats, award)

	if stats.Streak > stats.LongestStreak {
		stats.LongestStreak = stats.Streak
	}
	if stats.Combo > stats.MaxCombo {
		stats.MaxCombo = stats.Combo
	}
	if stats.Session.Combo > stats.Session.MaxCombo {
		stats.Session.MaxCombo = stats.Session.Combo
	}
	if name, ok := comboAchievements[stats.Session.Combo]; ok && !lo.Contains(stats.Session.Achievements, name) {
		stats.Session.Achievements = append(stats.Session.Achievements, name)
	}

	return ReviewReward{
		XP:            award,
		Streak:        stats.Streak,
		Combo:         stats.Combo,
		DailyProgress: stats.Daily.Reviews,
	}
}

// ApplyGame folds one mini-game completion into the counters and returns
// the XP granted. Games award fixed XP and count toward the daily goal but
// do not touch the review streak.
func (a StatsAggregator) ApplyGame(stats *entity.VocabularyStats, kind entity.GameKind, now time.Time, loc *time.Location, goal int64) int64 {
	a.Touch(stats, now, loc, goal, false)

	award := kind.Reward()
	a.grant(stats, award)
	return award
}

func (StatsAggregator) grant(stats *entity.VocabularyStats, award int64) {
	stats.XP += award
	stats.Daily.XP += award
	stats.Session.XP += award
}

// SessionMeta builds the response snapshot from the current counters.
func (StatsAggregator) SessionMeta(stats *entity.VocabularyStats, lastAward int64) SessionMeta {
	decks := lo.FilterMap(deckUnlocks, func(u deckUnlock, _ int) (string, bool) {
		return u.Deck, stats.XP >= u.XP
	})

	return SessionMeta{
		XPEarned:      stats.Session.XP,
		Streak:        stats.Streak,
		Combo:         stats.Combo,
		MaxCombo:      stats.Session.MaxCombo,
		DailyProgress: stats.Daily.Reviews,
		DailyGoal:     stats.Daily.Goal,
		UnlockedDecks: decks,
		Achievements:  append([]string{}, stats.Session.Achievements...),
		LastAward:     lastAward,
	}
}
