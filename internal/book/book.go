package book

import (
	"errors"
	"strings"
	"time"

	"bookreviews/internal/metadata"
)

// ErrNotFound is returned when a book is not found.
var ErrNotFound = errors.New("book not found")

// Book is an imported catalog entry. Books are never edited after import.
type Book struct {
	ID        string    `json:"id"`
	ISBN      string    `json:"isbn"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Year      int       `json:"year"`
	CreatedAt time.Time `json:"created_at"`
}

// SearchType selects which column a search matches against.
type SearchType string

const (
	SearchAll    SearchType = "all"
	SearchISBN   SearchType = "isbn"
	SearchTitle  SearchType = "title"
	SearchAuthor SearchType = "author"
)

// ParseSearchType falls back to SearchAll for anything unrecognised.
func ParseSearchType(s string) SearchType {
	switch t := SearchType(strings.ToLower(strings.TrimSpace(s))); t {
	case SearchISBN, SearchTitle, SearchAuthor:
		return t
	default:
		return SearchAll
	}
}

// Query defines a search and its page.
type Query struct {
	Q      string
	Type   SearchType
	Limit  int
	Offset int
}

// MetadataView is what GET /books/{isbn}/metadata returns.
type MetadataView struct {
	Book      Book               `json:"book"`
	Available bool               `json:"available"`
	Metadata  *metadata.Metadata `json:"metadata,omitempty"`
	Summary   *string            `json:"summary,omitempty"`
}
