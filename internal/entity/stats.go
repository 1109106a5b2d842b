package entity

import (
	"math"
	"time"
)

// DefaultDailyGoal is the reviews-per-day target applied when a user has not
// configured one.
const DefaultDailyGoal = 10

// SessionIdleTimeout is how long a gamification session survives without
// activity before it is discarded and recreated.
const SessionIdleTimeout = 45 * time.Minute

// DailyStats is the per-calendar-day sub-record of VocabularyStats. Date is
// a "2006-01-02" key in the user's resolved timezone.
type DailyStats struct {
	Date      string `json:"date"`
	Reviews   int64  `json:"reviews"`
	Successes int64  `json:"successes"`
	XP        int64  `json:"xp"`
	Goal      int64  `json:"goal"`
}

// SessionStats is the transient activity-window sub-record. It is discarded
// and recreated whole on expiry, never partially reset.
type SessionStats struct {
	StartedAt      time.Time `json:"started_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
	XP             int64     `json:"xp"`
	Combo          int64     `json:"combo"`
	MaxCombo       int64     `json:"max_combo"`
	Achievements   []string  `json:"achievements"`
}

// Expired reports whether the session must be recreated: idle past the
// timeout, or started on a different calendar day in loc.
func (s *SessionStats) Expired(now time.Time, loc *time.Location) bool {
	if s.StartedAt.IsZero() {
		return true
	}
	if now.Sub(s.LastActivityAt) > SessionIdleTimeout {
		return true
	}
	return dayKey(s.StartedAt, loc) != dayKey(now, loc)
}

// VocabularyStats is the per-user gamification aggregate embedded in the
// user record. It is advisory data, not a correctness-critical ledger:
// malformed stored values are repaired by Normalize rather than rejected.
type VocabularyStats struct {
	XP            int64 `json:"xp"`
	Streak        int64 `json:"streak"`
	LongestStreak int64 `json:"longest_streak"`
	Combo         int64 `json:"combo"`
	MaxCombo      int64 `json:"max_combo"`
	TotalReviews  int64 `json:"total_reviews"`
	SuccessCount  int64 `json:"success_count"`
	FailureCount  int64 `json:"failure_count"`
	SkipCount     int64 `json:"skip_count"`

	Daily   DailyStats   `json:"daily"`
	Session SessionStats `json:"session"`
}

// Normalize coerces missing or out-of-range counters to zero so downstream
// arithmetic never sees negative or non-finite values.
func (v *VocabularyStats) Normalize() {
	v.XP = repairCounter(v.XP)
	v.Streak = repairCounter(v.Streak)
	v.LongestStreak = repairCounter(v.LongestStreak)
	v.Combo = repairCounter(v.Combo)
	v.MaxCombo = repairCounter(v.MaxCombo)
	v.TotalReviews = repairCounter(v.TotalReviews)
	v.SuccessCount = repairCounter(v.SuccessCount)
	v.FailureCount = repairCounter(v.FailureCount)
	v.SkipCount = repairCounter(v.SkipCount)

	v.Daily.Reviews = repairCounter(v.Daily.Reviews)
	v.Daily.Successes = repairCounter(v.Daily.Successes)
	v.Daily.XP = repairCounter(v.Daily.XP)
	v.Daily.Goal = repairCounter(v.Daily.Goal)

	v.Session.XP = repairCounter(v.Session.XP)
	v.Session.Combo = repairCounter(v.Session.Combo)
	v.Session.MaxCombo = repairCounter(v.Session.MaxCombo)
	if v.Session.Achievements == nil {
		v.Session.Achievements = []string{}
	}
}

func repairCounter(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}

// RepairFloat maps NaN, infinities and negatives to zero. Used when loosely
// typed numeric fields cross the deserialization boundary.
func RepairFloat(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}

// DayKey formats t as the calendar-day key used by daily stats.
func DayKey(t time.Time, loc *time.Location) string {
	return dayKey(t, loc)
}

func dayKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format("2006-01-02")
}
