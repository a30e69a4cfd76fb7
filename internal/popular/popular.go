// Package popular ranks books by their third-party average rating.
package popular

import (
	"context"

	"bookreviews/internal/book"
	"bookreviews/internal/metadata"
)

const (
	// MaxResults caps every ranking, whatever the input size.
	MaxResults = 50
	// DefaultWorkers is the number of concurrent metadata lookups.
	DefaultWorkers = 5
)

// RankedBook is a book with the rating it was ranked by. Rating is 0 when metadata was
// unavailable or unparseable; RatingsCount is nil when metadata was unavailable.
type RankedBook struct {
	book.Book
	Rating       float64 `json:"rating"`
	RatingsCount *int    `json:"ratings_count"`
}

// MetadataFetcher is the best-effort lookup the pipeline fans out to.
type MetadataFetcher interface {
	FetchMetadata(ctx context.Context, isbn string) (*metadata.Metadata, bool)
}

// BookLister supplies the candidate books.
type BookLister interface {
	ListRecent(ctx context.Context, limit int) ([]book.Book, error)
}
