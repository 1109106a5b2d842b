package httpapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/eslsoft/lexdrill/internal/entity"
	"github.com/eslsoft/lexdrill/internal/usecase"
)

// ReviewHandler exposes the review submission and batch endpoints.
type ReviewHandler struct {
	reviews usecase.ReviewUsecase
}

func NewReviewHandler(reviews usecase.ReviewUsecase) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

func (h *ReviewHandler) Register(g *echo.Group) {
	g.POST("/review", h.submit)
	g.GET("/review/batch", h.batch)
}

func (h *ReviewHandler) submit(c echo.Context) error {
	var req submitReviewRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Code: "INVALID_ARGUMENT", Message: "malformed request body"})
	}

	outcome, err := h.reviews.SubmitReview(c.Request().Context(), authUserID(c), usecase.SubmitReviewInput{
		WordID:     req.WordID,
		Result:     entity.ReviewResult(req.Result),
		ProgressID: req.ProgressID,
		DurationMs: req.DurationMs,
		Category:   req.Category,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, reviewOutcomeResponse{
		Success:  true,
		Progress: toProgressResponse(outcome.Progress),
		Reward:   outcome.Reward,
		Session:  outcome.Session,
		Meta:     outcome.Session,
	})
}

func (h *ReviewHandler) batch(c echo.Context) error {
	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 32)
	reset, _ := strconv.ParseBool(c.QueryParam("reset_session"))

	mode := c.QueryParam("mode")
	if mode == "" {
		mode = string(entity.ReviewModeReview)
	}

	batch, err := h.reviews.ListDue(c.Request().Context(), authUserID(c), usecase.ListDueInput{
		Mode:         entity.ReviewMode(mode),
		Limit:        int32(limit),
		Category:     c.QueryParam("category"),
		ResetSession: reset,
	})
	if err != nil {
		return writeError(c, err)
	}

	items := make([]batchItemResponse, 0, len(batch.Items))
	for _, item := range batch.Items {
		out := batchItemResponse{Word: toWordResponse(item.Word)}
		if item.Progress != nil {
			progress := toProgressResponse(item.Progress)
			out.Progress = &progress
		}
		items = append(items, out)
	}

	return c.JSON(http.StatusOK, reviewBatchResponse{
		Mode:    string(batch.Mode),
		Items:   items,
		Session: batch.Session,
	})
}
