package review

import (
	"errors"
	"net/http"
	"strings"

	"bookreviews/internal/book"
	"bookreviews/internal/httpx"
	"bookreviews/internal/logging"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

type createReviewReq struct {
	Rating int    `json:"rating" validate:"required,gte=1,lte=5"`
	Review string `json:"review" validate:"required,max=5000"`
}

// GetBookPage handles GET /books/{isbn}
// @Summary Book details with reviews
// @Description Book record, all of its reviews (newest first) and the caller's own review when present
// @Tags books
// @Produce json
// @Security BearerAuth
// @Param isbn path string true "Book ISBN"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /books/{isbn} [get]
func (h *HTTPHandler) GetBookPage(w http.ResponseWriter, r *http.Request) {
	isbn := strings.TrimSpace(r.PathValue("isbn"))

	page, err := h.service.BookPage(r.Context(), httpx.UserIDFrom(r), isbn)
	if err != nil {
		if errors.Is(err, book.ErrNotFound) {
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
			return
		}
		logging.Error().Err(err).Str("isbn", isbn).Str("request_id", httpx.RequestIDFrom(r)).Msg("load book page")
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "An error occurred while loading the book details", nil)
		return
	}
	httpx.JSONSuccess(w, r, page, nil)
}

// Create handles POST /books/{isbn}/reviews
// @Summary Submit a review
// @Description Rate (1-5) and review a book. Each user may review a book once.
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param isbn path string true "Book ISBN"
// @Param request body createReviewReq true "Review"
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /books/{isbn}/reviews [post]
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Please log in to access this page", nil)
		return
	}

	isbn := strings.TrimSpace(r.PathValue("isbn"))
	if isbn == "" {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid ISBN", nil)
		return
	}

	var req createReviewReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}
	req.Review = strings.TrimSpace(req.Review)

	if validationErrors := httpx.ValidateStruct(req); len(validationErrors) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "All fields are required", validationErrors)
		return
	}

	created, err := h.service.Create(r.Context(), userID, isbn, req.Rating, req.Review)
	if err != nil {
		switch {
		case errors.Is(err, book.ErrNotFound):
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
		case errors.Is(err, ErrAlreadyReviewed):
			httpx.JSONError(w, r, http.StatusConflict, "ALREADY_REVIEWED", "You've already submitted a review for this book", nil)
		case errors.Is(err, ErrInvalidRating), errors.Is(err, ErrEmptyReview):
			httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		default:
			logging.Error().Err(err).Str("isbn", isbn).Str("request_id", httpx.RequestIDFrom(r)).Msg("review submission failed")
			httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Error submitting review. Please try again.", nil)
		}
		return
	}
	httpx.JSONCreated(w, r, created)
}
