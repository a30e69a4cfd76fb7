package book

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"bookreviews/internal/httpx"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// Search handles GET /books
// @Summary Search books
// @Description Case-insensitive substring search on isbn, title, author, or all three
// @Tags books
// @Produce json
// @Security BearerAuth
// @Param q query string true "Search text"
// @Param type query string false "isbn, title, author or all"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size (max 100)"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /books [get]
func (h *HTTPHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	q := strings.TrimSpace(query.Get("q"))
	if q == "" {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", []httpx.ErrorDetail{
			{Field: "q", Message: "q is required"},
		})
		return
	}

	page, _ := strconv.Atoi(query.Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(query.Get("page_size"))
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}

	searchType := ParseSearchType(query.Get("type"))
	books, total, err := h.service.Search(r.Context(), Query{
		Q:      q,
		Type:   searchType,
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	})
	if err != nil {
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, r, books, map[string]any{
		"query":       q,
		"type":        searchType,
		"page":        page,
		"page_size":   pageSize,
		"total":       total,
		"total_pages": (total + pageSize - 1) / pageSize,
	})
}

// Metadata handles GET /books/{isbn}/metadata
// @Summary Third-party metadata for a book
// @Description Google Books data for the ISBN plus a short summary of its description. available is false when the lookup found nothing.
// @Tags books
// @Produce json
// @Security BearerAuth
// @Param isbn path string true "ISBN"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /books/{isbn}/metadata [get]
func (h *HTTPHandler) Metadata(w http.ResponseWriter, r *http.Request) {
	isbn := strings.TrimSpace(r.PathValue("isbn"))
	if isbn == "" {
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "ISBN not found", nil)
		return
	}

	view, err := h.service.Metadata(r.Context(), isbn)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "ISBN not found", nil)
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	httpx.JSONSuccess(w, r, view, nil)
}
