package entity

import (
	"strings"
	"time"
)

// Word is a catalog vocabulary item. The review subsystem treats it as
// read-only apart from the best-effort aggregate counters.
type Word struct {
	ID          int64
	Term        string
	Language    Language
	Translation string
	Definition  string
	Examples    []string
	Level       Level
	Difficulty  Difficulty
	Status      WordStatus
	Category    string
	Tags        []string

	// Catalog-level counters, advisory only.
	TimesReviewed int64
	SuccessCount  int64
	FailureCount  int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Normalize applies defaults and trims user-supplied text before persistence.
func (w *Word) Normalize(now time.Time) {
	w.Term = strings.TrimSpace(w.Term)
	if w.Language == LanguageUnspecified {
		w.Language = LanguageEnglish
	}
	if w.Level == "" {
		w.Level = LevelUnknown
	}
	if w.Difficulty == "" {
		w.Difficulty = DifficultyMedium
	}
	if w.Status == "" {
		w.Status = WordStatusDraft
	}
	w.Examples = trimStrings(w.Examples)
	w.Tags = dedupeTags(w.Tags)
	if w.CreatedAt.IsZero() {
		w.CreatedAt = now
	}
	w.UpdatedAt = now
}

// Validate reports whether the word satisfies catalog invariants.
func (w *Word) Validate() error {
	if strings.TrimSpace(w.Term) == "" {
		return ErrInvalidWordTerm
	}
	return nil
}

// NormalizedTerm is the uniqueness key per (normalized term, language).
func (w *Word) NormalizedTerm() string {
	return strings.ToLower(strings.TrimSpace(w.Term))
}

func trimStrings(in []string) []string {
	if len(in) == 0 {
		return []string{}
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func dedupeTags(in []string) []string {
	if len(in) == 0 {
		return []string{}
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, tag := range in {
		t := strings.TrimSpace(tag)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}
