package httpapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/eslsoft/lexdrill/internal/entity"
	"github.com/eslsoft/lexdrill/internal/repository"
	"github.com/eslsoft/lexdrill/internal/usecase"
)

// WordHandler exposes the catalog management endpoints.
type WordHandler struct {
	words usecase.WordUsecase
}

func NewWordHandler(words usecase.WordUsecase) *WordHandler {
	return &WordHandler{words: words}
}

func (h *WordHandler) Register(g *echo.Group) {
	g.POST("/words", h.create)
	g.GET("/words", h.list)
	g.GET("/words/lookup", h.lookup)
	g.GET("/words/:id", h.get)
	g.PUT("/words/:id", h.update)
	g.DELETE("/words/:id", h.delete)
	g.POST("/words/import", h.importBatch)
}

func (h *WordHandler) create(c echo.Context) error {
	var req wordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Code: "INVALID_ARGUMENT", Message: "malformed request body"})
	}

	word, err := h.words.Create(c.Request().Context(), toWordEntity(&req))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toWordResponse(word))
}

func (h *WordHandler) update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return writeError(c, entity.ErrInvalidWordID)
	}

	var req wordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Code: "INVALID_ARGUMENT", Message: "malformed request body"})
	}

	word := toWordEntity(&req)
	word.ID = id
	updated, err := h.words.Update(c.Request().Context(), word)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toWordResponse(updated))
}

func (h *WordHandler) get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return writeError(c, entity.ErrInvalidWordID)
	}

	word, err := h.words.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toWordResponse(word))
}

func (h *WordHandler) lookup(c echo.Context) error {
	word, err := h.words.Lookup(c.Request().Context(), c.QueryParam("term"), entity.Language(c.QueryParam("language")))
	if err != nil {
		return writeError(c, err)
	}
	if word == nil {
		return writeError(c, entity.ErrWordNotFound)
	}
	return c.JSON(http.StatusOK, toWordResponse(word))
}

func (h *WordHandler) list(c echo.Context) error {
	pageNo, _ := strconv.ParseInt(c.QueryParam("page_no"), 10, 32)
	pageSize, _ := strconv.ParseInt(c.QueryParam("page_size"), 10, 32)

	words, total, err := h.words.List(c.Request().Context(), &repository.ListWordQuery{
		Pagination: repository.Pagination{PageNo: int32(pageNo), PageSize: int32(pageSize)},
		FilterOrder: repository.FilterOrder{
			Filter:  c.QueryParam("filter"),
			OrderBy: c.QueryParam("order_by"),
		},
		Language: entity.Language(c.QueryParam("language")),
		Category: c.QueryParam("category"),
	})
	if err != nil {
		return writeError(c, err)
	}

	out := make([]wordResponse, 0, len(words))
	for _, w := range words {
		out = append(out, toWordResponse(w))
	}
	return c.JSON(http.StatusOK, wordListResponse{Words: out, Total: total})
}

func (h *WordHandler) importBatch(c echo.Context) error {
	var req importWordsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Code: "INVALID_ARGUMENT", Message: "malformed request body"})
	}

	words := make([]*entity.Word, 0, len(req.Words))
	for i := range req.Words {
		words = append(words, toWordEntity(&req.Words[i]))
	}

	created, updated, err := h.words.Import(c.Request().Context(), words)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, importWordsResponse{Created: created, Updated: updated})
}

func (h *WordHandler) delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return writeError(c, entity.ErrInvalidWordID)
	}
	if err := h.words.Delete(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func pathID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
