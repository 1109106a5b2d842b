package httpapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/eslsoft/lexdrill/internal/entity"
	"github.com/eslsoft/lexdrill/internal/usecase"
)

// StatsHandler exposes the gamification read paths and the mini-game
// reward endpoint.
type StatsHandler struct {
	stats usecase.StatsUsecase
}

func NewStatsHandler(stats usecase.StatsUsecase) *StatsHandler {
	return &StatsHandler{stats: stats}
}

func (h *StatsHandler) Register(g *echo.Group) {
	g.GET("/stats", h.snapshot)
	g.GET("/stats/history", h.history)
	g.GET("/stats/leaderboard", h.leaderboard)
	g.POST("/games/result", h.gameResult)
}

func (h *StatsHandler) snapshot(c echo.Context) error {
	snap, err := h.stats.Snapshot(c.Request().Context(), authUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, statsResponse{
		Stats:    snap.Stats,
		Today:    toDailyStatResponse(snap.Today),
		Progress: snap.Progress,
		Session:  snap.Session,
	})
}

func (h *StatsHandler) history(c echo.Context) error {
	days, _ := strconv.Atoi(c.QueryParam("days"))

	rows, err := h.stats.History(c.Request().Context(), authUserID(c), days)
	if err != nil {
		return writeError(c, err)
	}

	out := make([]*dailyStatResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDailyStatResponse(row))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *StatsHandler) leaderboard(c echo.Context) error {
	days, _ := strconv.Atoi(c.QueryParam("days"))
	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 32)

	rows, err := h.stats.Leaderboard(c.Request().Context(), days, int32(limit))
	if err != nil {
		return writeError(c, err)
	}

	out := make([]leaderboardEntryResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, leaderboardEntryResponse{
			UserID:   row.UserID,
			UserName: row.UserName,
			XP:       row.XP,
			Reviews:  row.Reviews,
		})
	}
	return c.JSON(http.StatusOK, out)
}

func (h *StatsHandler) gameResult(c echo.Context) error {
	var req gameResultRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Code: "INVALID_ARGUMENT", Message: "malformed request body"})
	}

	result, err := h.stats.RecordGameResult(c.Request().Context(), authUserID(c), entity.GameKind(req.Kind))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, gameResultResponse{XP: result.XP, Session: result.Session})
}
