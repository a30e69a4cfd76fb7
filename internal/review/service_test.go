package review

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bookreviews/internal/book"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, r *Review) error {
	args := m.Called(ctx, r)
	if args.Error(0) == nil {
		r.ID = "rev-1"
		r.CreatedAt = time.Now()
	}
	return args.Error(0)
}

func (m *MockRepository) ListByBook(ctx context.Context, bookID string) ([]Review, error) {
	args := m.Called(ctx, bookID)
	res, _ := args.Get(0).([]Review)
	return res, args.Error(1)
}

func (m *MockRepository) GetByUserAndBook(ctx context.Context, userID, bookID string) (Review, error) {
	args := m.Called(ctx, userID, bookID)
	return args.Get(0).(Review), args.Error(1)
}

type MockBookFinder struct {
	mock.Mock
}

func (m *MockBookFinder) GetByISBN(ctx context.Context, isbn string) (book.Book, error) {
	args := m.Called(ctx, isbn)
	return args.Get(0).(book.Book), args.Error(1)
}

var testBook = book.Book{ID: "book-1", ISBN: "0380795272", Title: "Krondor: The Betrayal", Author: "Raymond E. Feist", Year: 1998}

func TestService_BookPage(t *testing.T) {
	repo := new(MockRepository)
	books := new(MockBookFinder)
	svc := NewService(repo, books)

	reviews := []Review{
		{ID: "r2", UserID: "u2", Username: "bob", Rating: 5, Text: "Great"},
		{ID: "r1", UserID: "u1", Username: "alice", Rating: 2, Text: "Meh"},
	}
	books.On("GetByISBN", mock.Anything, testBook.ISBN).Return(testBook, nil)
	repo.On("ListByBook", mock.Anything, testBook.ID).Return(reviews, nil)

	page, err := svc.BookPage(context.Background(), "u1", testBook.ISBN)
	require.NoError(t, err)

	assert.Equal(t, testBook, page.Book)
	assert.Len(t, page.Reviews, 2)
	require.NotNil(t, page.UserReview)
	assert.Equal(t, "r1", page.UserReview.ID)
	assert.Equal(t, Stats{Count: 2, Average: 3.5}, page.Stats)
}

func TestService_BookPage_NoReviews(t *testing.T) {
	repo := new(MockRepository)
	books := new(MockBookFinder)
	books.On("GetByISBN", mock.Anything, testBook.ISBN).Return(testBook, nil)
	repo.On("ListByBook", mock.Anything, testBook.ID).Return(nil, nil)

	page, err := NewService(repo, books).BookPage(context.Background(), "u1", testBook.ISBN)
	require.NoError(t, err)

	assert.NotNil(t, page.Reviews)
	assert.Empty(t, page.Reviews)
	assert.Nil(t, page.UserReview)
	assert.Zero(t, page.Stats.Average)
}

func TestService_BookPage_UnknownBook(t *testing.T) {
	books := new(MockBookFinder)
	books.On("GetByISBN", mock.Anything, "nope").Return(book.Book{}, book.ErrNotFound)

	_, err := NewService(new(MockRepository), books).BookPage(context.Background(), "u1", "nope")
	assert.ErrorIs(t, err, book.ErrNotFound)
}

func TestService_Create(t *testing.T) {
	repo := new(MockRepository)
	books := new(MockBookFinder)
	books.On("GetByISBN", mock.Anything, testBook.ISBN).Return(testBook, nil)
	repo.On("GetByUserAndBook", mock.Anything, "u1", testBook.ID).Return(Review{}, ErrNotFound)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(r *Review) bool {
		return r.UserID == "u1" && r.BookID == testBook.ID && r.Rating == 4 && r.Text == "Solid read"
	})).Return(nil)

	created, err := NewService(repo, books).Create(context.Background(), "u1", testBook.ISBN, 4, "  Solid read \n")
	require.NoError(t, err)

	assert.Equal(t, "rev-1", created.ID)
	assert.Equal(t, "Solid read", created.Text)
	repo.AssertExpectations(t)
}

func TestService_Create_Rejections(t *testing.T) {
	t.Run("rating out of range", func(t *testing.T) {
		svc := NewService(new(MockRepository), new(MockBookFinder))
		_, err := svc.Create(context.Background(), "u1", testBook.ISBN, 6, "text")
		assert.ErrorIs(t, err, ErrInvalidRating)
		_, err = svc.Create(context.Background(), "u1", testBook.ISBN, 0, "text")
		assert.ErrorIs(t, err, ErrInvalidRating)
	})

	t.Run("blank text", func(t *testing.T) {
		_, err := NewService(new(MockRepository), new(MockBookFinder)).Create(context.Background(), "u1", testBook.ISBN, 3, "   ")
		assert.ErrorIs(t, err, ErrEmptyReview)
	})

	t.Run("unknown book", func(t *testing.T) {
		books := new(MockBookFinder)
		books.On("GetByISBN", mock.Anything, "nope").Return(book.Book{}, book.ErrNotFound)
		_, err := NewService(new(MockRepository), books).Create(context.Background(), "u1", "nope", 3, "text")
		assert.ErrorIs(t, err, book.ErrNotFound)
	})

	t.Run("already reviewed", func(t *testing.T) {
		repo := new(MockRepository)
		books := new(MockBookFinder)
		books.On("GetByISBN", mock.Anything, testBook.ISBN).Return(testBook, nil)
		repo.On("GetByUserAndBook", mock.Anything, "u1", testBook.ID).Return(Review{ID: "old"}, nil)

		_, err := NewService(repo, books).Create(context.Background(), "u1", testBook.ISBN, 3, "text")
		assert.ErrorIs(t, err, ErrAlreadyReviewed)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("lookup failure", func(t *testing.T) {
		repo := new(MockRepository)
		books := new(MockBookFinder)
		books.On("GetByISBN", mock.Anything, testBook.ISBN).Return(testBook, nil)
		repo.On("GetByUserAndBook", mock.Anything, "u1", testBook.ID).Return(Review{}, errors.New("db down"))

		_, err := NewService(repo, books).Create(context.Background(), "u1", testBook.ISBN, 3, "text")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrAlreadyReviewed)
	})
}
