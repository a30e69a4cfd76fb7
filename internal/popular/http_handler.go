package popular

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"bookreviews/internal/httpx"
	"bookreviews/internal/logging"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// Popular handles GET /books/popular
// @Summary Popular books
// @Description Recently imported books ranked by their Google Books average rating. Books without metadata rank last with rating 0.
// @Tags books
// @Produce json
// @Param limit query int false "Number of candidate books (default 10, max 50)"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /books/popular [get]
func (h *HTTPHandler) Popular(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", []httpx.ErrorDetail{
				{Field: "limit", Message: "limit must be a positive integer"},
			})
			return
		}
		limit = n
	}

	ranked, err := h.service.Popular(r.Context(), limit)
	if err != nil {
		if errors.Is(err, ErrInvalidLimit) {
			httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", []httpx.ErrorDetail{
				{Field: "limit", Message: fmt.Sprintf("limit must be at most %d", MaxResults)},
			})
			return
		}
		logging.Error().Err(err).Str("request_id", httpx.RequestIDFrom(r)).Msg("popular books failed")
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, r, ranked, map[string]any{"count": len(ranked)})
}
