package entity

import "time"

// DailyUserStat is the one-row-per-(user, date) statistics record, upserted
// with create-or-increment semantics once per qualifying event.
type DailyUserStat struct {
	ID            int64
	UserID        int64
	Date          string
	QuizzesPlayed int64
	WordsReviewed int64
	WordsMastered int64
	XP            int64
	StreakActive  bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DailyUserStatDelta is the per-event increment applied via upsert.
type DailyUserStatDelta struct {
	UserID        int64
	Date          string
	QuizzesPlayed int64
	WordsReviewed int64
	WordsMastered int64
	XP            int64
	StreakActive  bool
}

// LeaderboardEntry is one aggregated row of the XP leaderboard.
type LeaderboardEntry struct {
	UserID   int64
	UserName string
	XP       int64
	Reviews  int64
}

// GameKind identifies a mini-game with a fixed XP reward.
type GameKind string

const (
	GameKindQuiz   GameKind = "quiz"
	GameKindMatch  GameKind = "match"
	GameKindSprint GameKind = "sprint"
)

// Valid reports whether the game kind is known.
func (g GameKind) Valid() bool {
	switch g {
	case GameKindQuiz, GameKindMatch, GameKindSprint:
		return true
	}
	return false
}

// Reward is the fixed XP granted for completing one round of the game.
func (g GameKind) Reward() int64 {
	switch g {
	case GameKindQuiz:
		return 15
	case GameKindSprint:
		return 12
	case GameKindMatch:
		return 8
	default:
		return 0
	}
}
