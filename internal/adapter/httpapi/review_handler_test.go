package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eslsoft/lexdrill/internal/entity"
	"github.com/eslsoft/lexdrill/internal/usecase"
)

type stubReviewUsecase struct {
	submitFn func(ctx context.Context, userID int64, in usecase.SubmitReviewInput) (*usecase.ReviewOutcome, error)
	listFn   func(ctx context.Context, userID int64, in usecase.ListDueInput) (*usecase.ReviewBatch, error)
}

func (s *stubReviewUsecase) SubmitReview(ctx context.Context, userID int64, in usecase.SubmitReviewInput) (*usecase.ReviewOutcome, error) {
	return s.submitFn(ctx, userID, in)
}

func (s *stubReviewUsecase) ListDue(ctx context.Context, userID int64, in usecase.ListDueInput) (*usecase.ReviewBatch, error) {
	return s.listFn(ctx, userID, in)
}

func newReviewServer(stub usecase.ReviewUsecase) *echo.Echo {
	e := echo.New()
	g := e.Group("/api/v1", NewAuthenticator("", 7).Middleware())
	NewReviewHandler(stub).Register(g)
	return e
}

func TestSubmitReviewReturnsOutcome(t *testing.T) {
	next := time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC)
	var gotUserID int64
	var gotInput usecase.SubmitReviewInput
	stub := &stubReviewUsecase{
		submitFn: func(_ context.Context, userID int64, in usecase.SubmitReviewInput) (*usecase.ReviewOutcome, error) {
			gotUserID = userID
			gotInput = in
			return &usecase.ReviewOutcome{
				Progress: &entity.WordProgress{
					ID:           3,
					WordID:       in.WordID,
					Status:       entity.ProgressStatusReview,
					EaseFactor:   2.6,
					IntervalDays: 6,
					Repetition:   2,
					NextReviewAt: &next,
					Version:      2,
				},
				Reward:  usecase.ReviewReward{XP: 10, Streak: 4, Combo: 2, DailyProgress: 5},
				Session: usecase.SessionMeta{XPEarned: 10, Streak: 4, Combo: 2},
			}, nil
		},
	}
	e := newReviewServer(stub)

	body := `{"word_id":11,"result":"success","duration_ms":4200,"category":"travel"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/review", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotUserID != 7 {
		t.Fatalf("expected user 7, got %d", gotUserID)
	}
	if gotInput.WordID != 11 || gotInput.Result != entity.ReviewResultSuccess || gotInput.DurationMs != 4200 || gotInput.Category != "travel" {
		t.Fatalf("unexpected input: %+v", gotInput)
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	for _, key := range []string{"success", "progress", "reward", "session", "meta"} {
		if _, ok := envelope[key]; !ok {
			t.Errorf("response missing %q key", key)
		}
	}

	var resp reviewOutcomeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success {
		t.Error("expected success true")
	}
	if resp.Progress.Status != "review" || resp.Progress.IntervalDays != 6 {
		t.Fatalf("unexpected progress: %+v", resp.Progress)
	}
	if resp.Reward.XP != 10 || resp.Session.Streak != 4 {
		t.Fatalf("unexpected reward/session: %+v %+v", resp.Reward, resp.Session)
	}
	if resp.Meta.Streak != resp.Session.Streak || resp.Meta.XPEarned != resp.Session.XPEarned {
		t.Fatalf("expected meta to mirror session: %+v %+v", resp.Meta, resp.Session)
	}
}

func TestSubmitReviewMapsDomainErrors(t *testing.T) {
	stub := &stubReviewUsecase{
		submitFn: func(context.Context, int64, usecase.SubmitReviewInput) (*usecase.ReviewOutcome, error) {
			return nil, entity.ErrWordNotFound
		},
	}
	e := newReviewServer(stub)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/review", strings.NewReader(`{"word_id":99,"result":"success"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestSubmitReviewRejectsMalformedBody(t *testing.T) {
	stub := &stubReviewUsecase{
		submitFn: func(context.Context, int64, usecase.SubmitReviewInput) (*usecase.ReviewOutcome, error) {
			t.Fatal("usecase should not be called")
			return nil, nil
		},
	}
	e := newReviewServer(stub)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/review", strings.NewReader(`{"word_id":`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestBatchParsesQueryParams(t *testing.T) {
	var gotInput usecase.ListDueInput
	stub := &stubReviewUsecase{
		listFn: func(_ context.Context, _ int64, in usecase.ListDueInput) (*usecase.ReviewBatch, error) {
			gotInput = in
			return &usecase.ReviewBatch{
				Mode: in.Mode,
				Items: []usecase.BatchItem{
					{Word: &entity.Word{ID: 1, Term: "cat", Language: entity.LanguageEnglish}},
				},
				Session: usecase.SessionMeta{DailyGoal: 20},
			}, nil
		},
	}
	e := newReviewServer(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/review/batch?mode=learn&limit=5&category=travel&reset_session=true", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotInput.Mode != entity.ReviewModeLearn || gotInput.Limit != 5 || gotInput.Category != "travel" || !gotInput.ResetSession {
		t.Fatalf("unexpected input: %+v", gotInput)
	}

	var resp reviewBatchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Mode != "learn" || len(resp.Items) != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Items[0].Progress != nil {
		t.Fatal("learn items should not carry progress")
	}
}

func TestBatchDefaultsToReviewMode(t *testing.T) {
	var gotMode entity.ReviewMode
	stub := &stubReviewUsecase{
		listFn: func(_ context.Context, _ int64, in usecase.ListDueInput) (*usecase.ReviewBatch, error) {
			gotMode = in.Mode
			return &usecase.ReviewBatch{Mode: in.Mode}, nil
		},
	}
	e := newReviewServer(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/review/batch", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotMode != entity.ReviewModeReview {
		t.Fatalf("expected default review mode, got %q", gotMode)
	}
}
