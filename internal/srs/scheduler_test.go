package srs

import (
	"testing"
	"time"

	"github.com/eslsoft/lexdrill/internal/entity"
)

var reviewTime = time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

func TestFirstSuccessfulReview(t *testing.T) {
	got := Next(InitialState(), entity.ReviewResultSuccess, reviewTime)

	if got.IntervalDays != 1 {
		t.Errorf("expected interval 1, got %d", got.IntervalDays)
	}
	if got.Repetition != 1 {
		t.Errorf("expected repetition 1, got %d", got.Repetition)
	}
	if got.EaseFactor != 2.55 {
		t.Errorf("expected ease 2.55, got %v", got.EaseFactor)
	}
	if got.Status != entity.ProgressStatusLearning {
		t.Errorf("expected status learning, got %s", got.Status)
	}
	if want := reviewTime.AddDate(0, 0, 1); !got.NextReviewAt.Equal(want) {
		t.Errorf("expected next review %v, got %v", want, got.NextReviewAt)
	}
}

func TestSecondSuccessfulReview(t *testing.T) {
	cur := State{EaseFactor: 2.55, IntervalDays: 1, Repetition: 1, Status: entity.ProgressStatusLearning}
	got := Next(cur, entity.ReviewResultSuccess, reviewTime)

	if got.IntervalDays != 6 {
		t.Errorf("expected interval 6, got %d", got.IntervalDays)
	}
	if got.Repetition != 2 {
		t.Errorf("expected repetition 2, got %d", got.Repetition)
	}
	if got.EaseFactor != 2.60 {
		t.Errorf("expected ease 2.60, got %v", got.EaseFactor)
	}
	if got.Status != entity.ProgressStatusLearning {
		t.Errorf("expected status learning, got %s", got.Status)
	}
}

func TestSuccessMultipliesIntervalByEase(t *testing.T) {
	cur := State{EaseFactor: 2.0, IntervalDays: 10, Repetition: 3, Status: entity.ProgressStatusReview}
	got := Next(cur, entity.ReviewResultSuccess, reviewTime)

	if got.IntervalDays != 20 {
		t.Errorf("expected interval 20, got %d", got.IntervalDays)
	}
	if got.Repetition != 4 {
		t.Errorf("expected repetition 4, got %d", got.Repetition)
	}
	if got.EaseFactor != 2.05 {
		t.Errorf("expected ease 2.05, got %v", got.EaseFactor)
	}
}

func TestLongIntervalReachesMastered(t *testing.T) {
	cur := State{EaseFactor: 2.5, IntervalDays: 40, Repetition: 5, Status: entity.ProgressStatusReview}
	got := Next(cur, entity.ReviewResultSuccess, reviewTime)

	if got.Status != entity.ProgressStatusMastered {
		t.Errorf("expected status mastered, got %s", got.Status)
	}
	if got.IntervalDays != 100 {
		t.Errorf("expected interval 100, got %d", got.IntervalDays)
	}
}

func TestSevenDayIntervalReachesReview(t *testing.T) {
	cur := State{EaseFactor: 1.3, IntervalDays: 6, Repetition: 2, Status: entity.ProgressStatusLearning}
	got := Next(cur, entity.ReviewResultSuccess, reviewTime)

	// round(6 * 1.3) = 8 >= 7
	if got.IntervalDays != 8 {
		t.Errorf("expected interval 8, got %d", got.IntervalDays)
	}
	if got.Status != entity.ProgressStatusReview {
		t.Errorf("expected status review, got %s", got.Status)
	}
}

func TestEaseFactorCappedAtMax(t *testing.T) {
	cur := State{EaseFactor: 2.98, IntervalDays: 12, Repetition: 4, Status: entity.ProgressStatusReview}
	got := Next(cur, entity.ReviewResultSuccess, reviewTime)

	if got.EaseFactor != entity.MaxEaseFactor {
		t.Errorf("expected ease capped at %v, got %v", entity.MaxEaseFactor, got.EaseFactor)
	}
}

func TestFailureResetsSchedule(t *testing.T) {
	cur := State{EaseFactor: 2.5, IntervalDays: 40, Repetition: 5, Status: entity.ProgressStatusMastered}
	got := Next(cur, entity.ReviewResultFailure, reviewTime)

	if got.IntervalDays != 1 {
		t.Errorf("expected interval 1, got %d", got.IntervalDays)
	}
	if got.Repetition != 4 {
		t.Errorf("expected repetition 4, got %d", got.Repetition)
	}
	if got.EaseFactor != 2.3 {
		t.Errorf("expected ease 2.3, got %v", got.EaseFactor)
	}
	if got.Status != entity.ProgressStatusLearning {
		t.Errorf("expected status learning, got %s", got.Status)
	}
}

func TestFailureRepetitionFloorsAtZero(t *testing.T) {
	got := Next(InitialState(), entity.ReviewResultFailure, reviewTime)

	if got.Repetition != 0 {
		t.Errorf("expected repetition 0, got %d", got.Repetition)
	}
}

func TestFailureEaseFlooredAtMin(t *testing.T) {
	cur := State{EaseFactor: 1.4, IntervalDays: 3, Repetition: 2, Status: entity.ProgressStatusLearning}
	got := Next(cur, entity.ReviewResultFailure, reviewTime)

	if got.EaseFactor != entity.MinEaseFactor {
		t.Errorf("expected ease floored at %v, got %v", entity.MinEaseFactor, got.EaseFactor)
	}
}

func TestSkipLeavesScheduleUntouched(t *testing.T) {
	cur := State{EaseFactor: 2.2, IntervalDays: 9, Repetition: 3, Status: entity.ProgressStatusReview}
	got := Next(cur, entity.ReviewResultSkipped, reviewTime)

	if got.State != cur {
		t.Errorf("expected state unchanged, got %+v", got.State)
	}
	if !got.LastReviewedAt.Equal(reviewTime) {
		t.Errorf("expected last reviewed %v, got %v", reviewTime, got.LastReviewedAt)
	}
	if want := reviewTime.AddDate(0, 0, 9); !got.NextReviewAt.Equal(want) {
		t.Errorf("expected next review %v, got %v", want, got.NextReviewAt)
	}
}

func TestSuccessKeepsInvariants(t *testing.T) {
	states := []State{
		{EaseFactor: 1.3, IntervalDays: 0, Repetition: 0},
		{EaseFactor: 1.3, IntervalDays: 1, Repetition: 1},
		{EaseFactor: 2.5, IntervalDays: 6, Repetition: 2},
		{EaseFactor: 3.0, IntervalDays: 15, Repetition: 7},
		{EaseFactor: 2.0, IntervalDays: 365, Repetition: 12},
	}
	for _, cur := range states {
		got := Next(cur, entity.ReviewResultSuccess, reviewTime)
		if got.EaseFactor < entity.MinEaseFactor || got.EaseFactor > entity.MaxEaseFactor {
			t.Errorf("state %+v: ease %v out of range", cur, got.EaseFactor)
		}
		if got.Repetition != cur.Repetition+1 {
			t.Errorf("state %+v: expected repetition %d, got %d", cur, cur.Repetition+1, got.Repetition)
		}
		if got.IntervalDays < 1 {
			t.Errorf("state %+v: interval %d below policy minimum", cur, got.IntervalDays)
		}
	}
}
