package httpapi

import (
	"time"

	"github.com/eslsoft/lexdrill/internal/entity"
	"github.com/eslsoft/lexdrill/internal/usecase"
)

type submitReviewRequest struct {
	WordID     int64  `json:"word_id"`
	Result     string `json:"result"`
	ProgressID int64  `json:"progress_id,omitempty"`
	DurationMs int64  `json:"duration_ms,omitempty"`
	Category   string `json:"category,omitempty"`
}

type progressResponse struct {
	ID             int64      `json:"id"`
	WordID         int64      `json:"word_id"`
	Status         string     `json:"status"`
	EaseFactor     float64    `json:"ease_factor"`
	IntervalDays   int32      `json:"interval_days"`
	Repetition     int32      `json:"repetition"`
	Category       string     `json:"category,omitempty"`
	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty"`
	NextReviewAt   *time.Time `json:"next_review_at,omitempty"`
	Version        int64      `json:"version"`
}

type reviewOutcomeResponse struct {
	Success  bool                 `json:"success"`
	Progress progressResponse     `json:"progress"`
	Reward   usecase.ReviewReward `json:"reward"`
	Session  usecase.SessionMeta  `json:"session"`
	// Meta repeats the session snapshot under the key older clients read.
	Meta usecase.SessionMeta `json:"meta"`
}

type wordResponse struct {
	ID            int64     `json:"id"`
	Term          string    `json:"term"`
	Language      string    `json:"language"`
	Translation   string    `json:"translation,omitempty"`
	Definition    string    `json:"definition,omitempty"`
	Examples      []string  `json:"examples"`
	Level         string    `json:"level"`
	Difficulty    string    `json:"difficulty"`
	Status        string    `json:"status"`
	Category      string    `json:"category,omitempty"`
	Tags          []string  `json:"tags"`
	TimesReviewed int64     `json:"times_reviewed"`
	SuccessCount  int64     `json:"success_count"`
	FailureCount  int64     `json:"failure_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type wordRequest struct {
	Term        string   `json:"term"`
	Language    string   `json:"language,omitempty"`
	Translation string   `json:"translation,omitempty"`
	Definition  string   `json:"definition,omitempty"`
	Examples    []string `json:"examples,omitempty"`
	Level       string   `json:"level,omitempty"`
	Difficulty  string   `json:"difficulty,omitempty"`
	Status      string   `json:"status,omitempty"`
	Category    string   `json:"category,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

type wordListResponse struct {
	Words []wordResponse `json:"words"`
	Total int64          `json:"total"`
}

type importWordsRequest struct {
	Words []wordRequest `json:"words"`
}

type importWordsResponse struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

type batchItemResponse struct {
	Word     wordResponse      `json:"word"`
	Progress *progressResponse `json:"progress,omitempty"`
}

type reviewBatchResponse struct {
	Mode    string              `json:"mode"`
	Items   []batchItemResponse `json:"items"`
	Session usecase.SessionMeta `json:"session"`
}

type gameResultRequest struct {
	Kind string `json:"kind"`
}

type gameResultResponse struct {
	XP      int64               `json:"xp"`
	Session usecase.SessionMeta `json:"session"`
}

type dailyStatResponse struct {
	Date          string `json:"date"`
	QuizzesPlayed int64  `json:"quizzes_played"`
	WordsReviewed int64  `json:"words_reviewed"`
	WordsMastered int64  `json:"words_mastered"`
	XP            int64  `json:"xp"`
	StreakActive  bool   `json:"streak_active"`
}

type statsResponse struct {
	Stats    entity.VocabularyStats    `json:"stats"`
	Today    *dailyStatResponse        `json:"today,omitempty"`
	Progress usecase.ProgressBreakdown `json:"progress"`
	Session  usecase.SessionMeta       `json:"session"`
}

type leaderboardEntryResponse struct {
	UserID   int64  `json:"user_id"`
	UserName string `json:"user_name,omitempty"`
	XP       int64  `json:"xp"`
	Reviews  int64  `json:"reviews"`
}

func toWordResponse(w *entity.Word) wordResponse {
	return wordResponse{
		ID:            w.ID,
		Term:          w.Term,
		Language:      string(w.Language),
		Translation:   w.Translation,
		Definition:    w.Definition,
		Examples:      w.Examples,
		Level:         string(w.Level),
		Difficulty:    string(w.Difficulty),
		Status:        string(w.Status),
		Category:      w.Category,
		Tags:          w.Tags,
		TimesReviewed: w.TimesReviewed,
		SuccessCount:  w.SuccessCount,
		FailureCount:  w.FailureCount,
		CreatedAt:     w.CreatedAt,
		UpdatedAt:     w.UpdatedAt,
	}
}

func toWordEntity(req *wordRequest) *entity.Word {
	return &entity.Word{
		Term:        req.Term,
		Language:    entity.Language(req.Language),
		Translation: req.Translation,
		Definition:  req.Definition,
		Examples:    req.Examples,
		Level:       entity.Level(req.Level),
		Difficulty:  entity.Difficulty(req.Difficulty),
		Status:      entity.WordStatus(req.Status),
		Category:    req.Category,
		Tags:        req.Tags,
	}
}

func toProgressResponse(p *entity.WordProgress) progressResponse {
	return progressResponse{
		ID:             p.ID,
		WordID:         p.WordID,
		Status:         string(p.Status),
		EaseFactor:     p.EaseFactor,
		IntervalDays:   p.IntervalDays,
		Repetition:     p.Repetition,
		Category:       p.Category,
		LastReviewedAt: p.LastReviewedAt,
		NextReviewAt:   p.NextReviewAt,
		Version:        p.Version,
	}
}

func toDailyStatResponse(s *entity.DailyUserStat) *dailyStatResponse {
	if s == nil {
		return nil
	}
	return &dailyStatResponse{
		Date:          s.Date,
		QuizzesPlayed: s.QuizzesPlayed,
		WordsReviewed: s.WordsReviewed,
		WordsMastered: s.WordsMastered,
		XP:            s.XP,
		StreakActive:  s.StreakActive,
	}
}
