package entity

// Language is an ISO-639-1 language code such as "en" or "de".
type Language string

const (
	LanguageUnspecified Language = ""
	LanguageEnglish     Language = "en"
)

// Level follows the CEFR scale for vocabulary difficulty grading.
type Level string

const (
	LevelUnknown Level = "unknown"
	LevelA1      Level = "a1"
	LevelA2      Level = "a2"
	LevelB1      Level = "b1"
	LevelB2      Level = "b2"
	LevelC1      Level = "c1"
	LevelC2      Level = "c2"
)

// Difficulty is the editorial difficulty assigned to a catalog word.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// WordStatus is the catalog publication state of a word.
type WordStatus string

const (
	WordStatusDraft     WordStatus = "draft"
	WordStatusPublished WordStatus = "published"
	WordStatusArchived  WordStatus = "archived"
)

// ProgressStatus is the spaced-repetition learning state of a (user, word) pair.
type ProgressStatus string

const (
	ProgressStatusNew      ProgressStatus = "new"
	ProgressStatusLearning ProgressStatus = "learning"
	ProgressStatusReview   ProgressStatus = "review"
	ProgressStatusMastered ProgressStatus = "mastered"
)

// ReviewResult is the outcome a client reports for a single review.
type ReviewResult string

const (
	ReviewResultSuccess ReviewResult = "success"
	ReviewResultFailure ReviewResult = "failure"
	ReviewResultSkipped ReviewResult = "skipped"
)

// Valid reports whether the result is one of the three accepted outcomes.
func (r ReviewResult) Valid() bool {
	switch r {
	case ReviewResultSuccess, ReviewResultFailure, ReviewResultSkipped:
		return true
	}
	return false
}

// ReviewMode selects which queue a review batch is drawn from.
type ReviewMode string

const (
	ReviewModeLearn  ReviewMode = "learn"
	ReviewModeReview ReviewMode = "review"
)

// Valid reports whether the mode is a known queue name.
func (m ReviewMode) Valid() bool {
	return m == ReviewModeLearn || m == ReviewModeReview
}
