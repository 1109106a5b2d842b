// Package srs implements the spaced-repetition interval engine. It is a
// pure transformation over progress state; persistence and validation live
// with the callers.
package srs

import (
	"math"
	"time"

	"github.com/eslsoft/lexdrill/internal/entity"
)

// Interval thresholds that derive the learning status from the schedule.
const (
	masteredIntervalDays = 30
	reviewIntervalDays   = 7

	easeBonus   = 0.05
	easePenalty = 0.2
)

// State is the scheduler's view of a progress record.
type State struct {
	EaseFactor   float64
	IntervalDays int32
	Repetition   int32
	Status       entity.ProgressStatus
}

// Outcome is the computed next state. NextReviewAt is now plus the new
// interval; LastReviewedAt echoes now.
type Outcome struct {
	State
	LastReviewedAt time.Time
	NextReviewAt   time.Time
}

// InitialState is the schedule for a never-reviewed pair.
func InitialState() State {
	return State{
		EaseFactor: entity.DefaultEaseFactor,
		Status:     entity.ProgressStatusNew,
	}
}

// Next computes the schedule following one review outcome. It is total over
// the declared domain; callers reject out-of-domain results beforehand.
// A skipped review leaves the schedule untouched apart from the refreshed
// timestamps: skipping neither advances nor penalizes.
func Next(cur State, result entity.ReviewResult, now time.Time) Outcome {
	next := cur

	switch result {
	case entity.ReviewResultSuccess:
		switch cur.Repetition {
		case 0:
			next.IntervalDays = 1
		case 1:
			next.IntervalDays = 6
		default:
			next.IntervalDays = int32(math.Round(float64(cur.IntervalDays) * cur.EaseFactor))
		}
		next.Repetition = cur.Repetition + 1
		next.EaseFactor = roundEase(math.Min(entity.MaxEaseFactor, cur.EaseFactor+easeBonus))
		next.Status = statusForInterval(next.IntervalDays)

	case entity.ReviewResultFailure:
		next.Repetition = cur.Repetition - 1
		if next.Repetition < 0 {
			next.Repetition = 0
		}
		next.IntervalDays = 1
		next.EaseFactor = roundEase(math.Max(entity.MinEaseFactor, cur.EaseFactor-easePenalty))
		next.Status = entity.ProgressStatusLearning

	case entity.ReviewResultSkipped:
		// No scheduling change.
	}

	return Outcome{
		State:          next,
		LastReviewedAt: now,
		NextReviewAt:   now.AddDate(0, 0, int(next.IntervalDays)),
	}
}

func statusForInterval(days int32) entity.ProgressStatus {
	switch {
	case days >= masteredIntervalDays:
		return entity.ProgressStatusMastered
	case days >= reviewIntervalDays:
		return entity.ProgressStatusReview
	default:
		return entity.ProgressStatusLearning
	}
}

// Ease factors are stored with two decimal places.
func roundEase(f float64) float64 {
	return math.Round(f*100) / 100
}
