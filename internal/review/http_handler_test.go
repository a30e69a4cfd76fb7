package review

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"bookreviews/internal/book"
	"bookreviews/internal/testutil"
)

func newReviewRequest(isbn string, body any, userID string) *http.Request {
	r := testutil.NewRequest(http.MethodPost, "/books/"+isbn+"/reviews", body)
	r.SetPathValue("isbn", isbn)
	if userID != "" {
		r = testutil.WithUser(r, userID)
	}
	return r
}

func TestHTTPHandler_Create(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		repo := new(MockRepository)
		books := new(MockBookFinder)
		books.On("GetByISBN", mock.Anything, testBook.ISBN).Return(testBook, nil)
		repo.On("GetByUserAndBook", mock.Anything, "u1", testBook.ID).Return(Review{}, ErrNotFound)
		repo.On("Create", mock.Anything, mock.Anything).Return(nil)

		w := httptest.NewRecorder()
		NewHTTPHandler(NewService(repo, books)).Create(w, newReviewRequest(testBook.ISBN, map[string]any{"rating": 5, "review": "Loved it"}, "u1"))

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("duplicate", func(t *testing.T) {
		repo := new(MockRepository)
		books := new(MockBookFinder)
		books.On("GetByISBN", mock.Anything, testBook.ISBN).Return(testBook, nil)
		repo.On("GetByUserAndBook", mock.Anything, "u1", testBook.ID).Return(Review{ID: "old"}, nil)

		w := httptest.NewRecorder()
		NewHTTPHandler(NewService(repo, books)).Create(w, newReviewRequest(testBook.ISBN, map[string]any{"rating": 5, "review": "Again"}, "u1"))

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "ALREADY_REVIEWED", testutil.ErrorCode(testutil.DecodeBody(t, w)))
	})

	t.Run("unknown book", func(t *testing.T) {
		books := new(MockBookFinder)
		books.On("GetByISBN", mock.Anything, "nope").Return(book.Book{}, book.ErrNotFound)

		w := httptest.NewRecorder()
		NewHTTPHandler(NewService(new(MockRepository), books)).Create(w, newReviewRequest("nope", map[string]any{"rating": 3, "review": "x"}, "u1"))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	invalid := []map[string]any{
		{"rating": 0, "review": "text"},
		{"rating": 6, "review": "text"},
		{"rating": 3, "review": "   "},
		{"rating": 3},
	}
	for _, body := range invalid {
		w := httptest.NewRecorder()
		NewHTTPHandler(NewService(new(MockRepository), new(MockBookFinder))).Create(w, newReviewRequest(testBook.ISBN, body, "u1"))
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %v", body)
	}

	t.Run("unauthenticated", func(t *testing.T) {
		w := httptest.NewRecorder()
		NewHTTPHandler(NewService(new(MockRepository), new(MockBookFinder))).Create(w, newReviewRequest(testBook.ISBN, map[string]any{"rating": 3, "review": "x"}, ""))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestHTTPHandler_GetBookPage(t *testing.T) {
	repo := new(MockRepository)
	books := new(MockBookFinder)
	books.On("GetByISBN", mock.Anything, testBook.ISBN).Return(testBook, nil)
	books.On("GetByISBN", mock.Anything, "missing").Return(book.Book{}, book.ErrNotFound)
	repo.On("ListByBook", mock.Anything, testBook.ID).Return([]Review{{ID: "r1", UserID: "u9", Username: "carol", Rating: 4, Text: "Good"}}, nil)
	handler := NewHTTPHandler(NewService(repo, books))

	r := testutil.WithUser(httptest.NewRequest(http.MethodGet, "/books/"+testBook.ISBN, nil), "u1")
	r.SetPathValue("isbn", testBook.ISBN)
	w := httptest.NewRecorder()
	handler.GetBookPage(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	body := testutil.DecodeBody(t, w)
	data := body["data"].(map[string]any)
	assert.Len(t, data["reviews"], 1)
	assert.Nil(t, data["user_review"])

	r = httptest.NewRequest(http.MethodGet, "/books/missing", nil)
	r.SetPathValue("isbn", "missing")
	w = httptest.NewRecorder()
	handler.GetBookPage(w, r)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
