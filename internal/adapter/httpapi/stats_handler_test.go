package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/eslsoft/lexdrill/internal/entity"
	"github.com/eslsoft/lexdrill/internal/usecase"
)

type stubStatsUsecase struct {
	snapshotFn    func(ctx context.Context, userID int64) (*usecase.StatsSnapshot, error)
	historyFn     func(ctx context.Context, userID int64, days int) ([]*entity.DailyUserStat, error)
	leaderboardFn func(ctx context.Context, days int, limit int32) ([]*entity.LeaderboardEntry, error)
	gameFn        func(ctx context.Context, userID int64, kind entity.GameKind) (*usecase.GameResult, error)
}

func (s *stubStatsUsecase) Snapshot(ctx context.Context, userID int64) (*usecase.StatsSnapshot, error) {
	return s.snapshotFn(ctx, userID)
}

func (s *stubStatsUsecase) History(ctx context.Context, userID int64, days int) ([]*entity.DailyUserStat, error) {
	return s.historyFn(ctx, userID, days)
}

func (s *stubStatsUsecase) Leaderboard(ctx context.Context, days int, limit int32) ([]*entity.LeaderboardEntry, error) {
	return s.leaderboardFn(ctx, days, limit)
}

func (s *stubStatsUsecase) RecordGameResult(ctx context.Context, userID int64, kind entity.GameKind) (*usecase.GameResult, error) {
	return s.gameFn(ctx, userID, kind)
}

func newStatsServer(stub usecase.StatsUsecase) *echo.Echo {
	e := echo.New()
	g := e.Group("/api/v1", NewAuthenticator("", 7).Middleware())
	NewStatsHandler(stub).Register(g)
	return e
}

func TestSnapshotIncludesTodayAndSession(t *testing.T) {
	stub := &stubStatsUsecase{
		snapshotFn: func(_ context.Context, userID int64) (*usecase.StatsSnapshot, error) {
			if userID != 7 {
				t.Fatalf("expected user 7, got %d", userID)
			}
			return &usecase.StatsSnapshot{
				Stats:    entity.VocabularyStats{XP: 640, Streak: 4},
				Today:    &entity.DailyUserStat{Date: "2024-01-02", XP: 40, StreakActive: true},
				Progress: usecase.ProgressBreakdown{Learning: 3, Review: 5, Mastered: 2},
				Session: usecase.SessionMeta{
					DailyGoal:     20,
					UnlockedDecks: []string{"starter", "traveller"},
				},
			}, nil
		},
	}
	e := newStatsServer(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp statsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Stats.XP != 640 || resp.Today == nil || resp.Today.Date != "2024-01-02" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Progress.Review != 5 || resp.Progress.Mastered != 2 {
		t.Fatalf("unexpected progress breakdown: %+v", resp.Progress)
	}
	if len(resp.Session.UnlockedDecks) != 2 {
		t.Fatalf("unexpected session: %+v", resp.Session)
	}
}

func TestHistoryParsesDays(t *testing.T) {
	var gotDays int
	stub := &stubStatsUsecase{
		historyFn: func(_ context.Context, _ int64, days int) ([]*entity.DailyUserStat, error) {
			gotDays = days
			return []*entity.DailyUserStat{
				{Date: "2024-01-01", XP: 30},
				{Date: "2024-01-02", XP: 40},
			}, nil
		},
	}
	e := newStatsServer(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats/history?days=14", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotDays != 14 {
		t.Fatalf("expected days=14, got %d", gotDays)
	}
	var resp []*dailyStatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp) != 2 || resp[0].Date != "2024-01-01" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestLeaderboardPassesLimit(t *testing.T) {
	var gotDays int
	var gotLimit int32
	stub := &stubStatsUsecase{
		leaderboardFn: func(_ context.Context, days int, limit int32) ([]*entity.LeaderboardEntry, error) {
			gotDays = days
			gotLimit = limit
			return []*entity.LeaderboardEntry{
				{UserID: 4, UserName: "bea", XP: 90, Reviews: 12},
				{UserID: 7, UserName: "alice", XP: 40, Reviews: 6},
			}, nil
		},
	}
	e := newStatsServer(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats/leaderboard?days=7&limit=10", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotDays != 7 || gotLimit != 10 {
		t.Fatalf("unexpected params: days=%d limit=%d", gotDays, gotLimit)
	}
	var resp []leaderboardEntryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp) != 2 || resp[0].UserID != 4 || resp[0].XP != 90 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestGameResultRewardsXP(t *testing.T) {
	var gotKind entity.GameKind
	stub := &stubStatsUsecase{
		gameFn: func(_ context.Context, _ int64, kind entity.GameKind) (*usecase.GameResult, error) {
			gotKind = kind
			return &usecase.GameResult{XP: 12, Session: usecase.SessionMeta{XPEarned: 12}}, nil
		},
	}
	e := newStatsServer(stub)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/games/result", strings.NewReader(`{"kind":"sprint"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotKind != entity.GameKindSprint {
		t.Fatalf("expected sprint, got %q", gotKind)
	}
	var resp gameResultResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.XP != 12 {
		t.Fatalf("unexpected xp: %d", resp.XP)
	}
}

func TestGameResultInvalidKind(t *testing.T) {
	stub := &stubStatsUsecase{
		gameFn: func(context.Context, int64, entity.GameKind) (*usecase.GameResult, error) {
			return nil, entity.ErrInvalidGameKind
		},
	}
	e := newStatsServer(stub)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/games/result", strings.NewReader(`{"kind":"chess"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
