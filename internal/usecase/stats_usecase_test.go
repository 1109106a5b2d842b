package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eslsoft/lexdrill/internal/entity"
)

func newStatsFixture(t *testing.T) (*fakeUserRepo, *fakeDailyStatRepo, *fakeProgressRepo, StatsUsecase) {
	t.Helper()
	users := newFakeUserRepo(&entity.User{ID: 3, Name: "mira"})
	daily := newFakeDailyStatRepo()
	progress := newFakeProgressRepo(newFakeWordRepo())
	uc := NewStatsUsecase(users, daily, progress)
	uc.(*statsUsecase).clock = func() time.Time { return statsNow }
	return users, daily, progress, uc
}

func TestSnapshotIncludesTodayRow(t *testing.T) {
	_, daily, _, uc := newStatsFixture(t)
	today := entity.DayKey(statsNow, time.Local)
	if err := daily.Upsert(context.Background(), &entity.DailyUserStatDelta{UserID: 3, Date: today, WordsReviewed: 4, XP: 40}); err != nil {
		t.Fatalf("seed daily: %v", err)
	}

	snap, err := uc.Snapshot(context.Background(), 3)
	if err != nil {
		t.Fatalf("Snapshot returned error: %v", err)
	}
	if snap.Today == nil || snap.Today.WordsReviewed != 4 {
		t.Errorf("expected today's row with 4 reviews, got %+v", snap.Today)
	}
	if snap.Session.DailyGoal != entity.DefaultDailyGoal {
		t.Errorf("expected default goal %d, got %d", entity.DefaultDailyGoal, snap.Session.DailyGoal)
	}
}

func TestSnapshotCountsProgressByStatus(t *testing.T) {
	_, _, progress, uc := newStatsFixture(t)
	seed := []entity.ProgressStatus{
		entity.ProgressStatusLearning,
		entity.ProgressStatusLearning,
		entity.ProgressStatusReview,
		entity.ProgressStatusMastered,
	}
	for i, status := range seed {
		_, err := progress.Create(context.Background(), &entity.WordProgress{
			UserID: 3, WordID: int64(i + 1), Status: status,
		})
		if err != nil {
			t.Fatalf("seed progress: %v", err)
		}
	}
	if _, err := progress.Create(context.Background(), &entity.WordProgress{
		UserID: 9, WordID: 1, Status: entity.ProgressStatusReview,
	}); err != nil {
		t.Fatalf("seed other user: %v", err)
	}

	snap, err := uc.Snapshot(context.Background(), 3)
	if err != nil {
		t.Fatalf("Snapshot returned error: %v", err)
	}
	want := ProgressBreakdown{Learning: 2, Review: 1, Mastered: 1}
	if snap.Progress != want {
		t.Errorf("expected breakdown %+v, got %+v", want, snap.Progress)
	}
}

func TestSnapshotUnknownUser(t *testing.T) {
	_, _, _, uc := newStatsFixture(t)

	_, err := uc.Snapshot(context.Background(), 99)
	if !errors.Is(err, entity.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestHistoryReturnsWindowSorted(t *testing.T) {
	_, daily, _, uc := newStatsFixture(t)
	loc := time.Local
	for i := 0; i < 5; i++ {
		date := entity.DayKey(statsNow.AddDate(0, 0, -i), loc)
		if err := daily.Upsert(context.Background(), &entity.DailyUserStatDelta{UserID: 3, Date: date, XP: int64(10 * (i + 1))}); err != nil {
			t.Fatalf("seed daily: %v", err)
		}
	}

	rows, err := uc.History(context.Background(), 3, 3)
	if err != nil {
		t.Fatalf("History returned error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	for i := 1; i < len(rows); i++ {
		if rows[i-1].Date > rows[i].Date {
			t.Errorf("expected ascending dates, got %s before %s", rows[i-1].Date, rows[i].Date)
		}
	}
}

func TestLeaderboardOrdersByXP(t *testing.T) {
	users, daily, _, uc := newStatsFixture(t)
	users.users[4] = &entity.User{ID: 4, Name: "tomás"}
	today := entity.DayKey(statsNow, time.Local)
	if err := daily.Upsert(context.Background(), &entity.DailyUserStatDelta{UserID: 3, Date: today, XP: 50, WordsReviewed: 5}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := daily.Upsert(context.Background(), &entity.DailyUserStatDelta{UserID: 4, Date: today, XP: 90, WordsReviewed: 9}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	rows, err := uc.Leaderboard(context.Background(), 7, 10)
	if err != nil {
		t.Fatalf("Leaderboard returned error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(rows))
	}
	if rows[0].UserID != 4 || rows[0].XP != 90 {
		t.Errorf("expected user 4 with 90 XP first, got %+v", rows[0])
	}
}

func TestRecordGameResult(t *testing.T) {
	_, daily, _, uc := newStatsFixture(t)

	res, err := uc.RecordGameResult(context.Background(), 3, entity.GameKindSprint)
	if err != nil {
		t.Fatalf("RecordGameResult returned error: %v", err)
	}
	if res.XP != 12 {
		t.Errorf("expected sprint reward 12, got %d", res.XP)
	}

	row, err := daily.Get(context.Background(), 3, entity.DayKey(statsNow, time.Local))
	if err != nil {
		t.Fatalf("get daily: %v", err)
	}
	if row == nil || row.QuizzesPlayed != 1 || row.XP != 12 {
		t.Errorf("expected daily row with one game and 12 XP, got %+v", row)
	}
}

func TestRecordGameResultInvalidKind(t *testing.T) {
	_, _, _, uc := newStatsFixture(t)

	_, err := uc.RecordGameResult(context.Background(), 3, "chess")
	if !errors.Is(err, entity.ErrInvalidGameKind) {
		t.Fatalf("expected ErrInvalidGameKind, got %v", err)
	}
}
