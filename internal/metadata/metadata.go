// Package metadata enriches books with third-party data. Every lookup is best effort:
// failures are logged and counted, and callers only ever see "absent".
package metadata

import (
	"context"

	"bookreviews/internal/platform/googlebooks"
)

// Metadata is one lookup result. Nil fields were not provided by the source.
// AverageRating keeps the source's raw text; consumers parse it.
type Metadata struct {
	Title         *string `json:"title,omitempty"`
	Author        *string `json:"author,omitempty"`
	AverageRating *string `json:"average_rating,omitempty"`
	RatingsCount  *int    `json:"ratings_count,omitempty"`
	PublishedDate *string `json:"published_date,omitempty"`
	ISBN10        *string `json:"isbn_10,omitempty"`
	ISBN13        *string `json:"isbn_13,omitempty"`
	Description   *string `json:"description,omitempty"`
}

// VolumeSearcher looks volumes up by ISBN.
type VolumeSearcher interface {
	SearchByISBN(ctx context.Context, isbn string) (*googlebooks.VolumesResponse, error)
}

// TextGenerator produces text from a prompt.
type TextGenerator interface {
	Enabled() bool
	GenerateText(ctx context.Context, prompt string) (string, error)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// fromVolumes maps the first volume of a response. ok is false when nothing matched.
func fromVolumes(res *googlebooks.VolumesResponse) (*Metadata, bool) {
	if res == nil || res.TotalItems == 0 || len(res.Items) == 0 {
		return nil, false
	}

	info := res.Items[0].VolumeInfo
	md := &Metadata{
		Title:         optional(info.Title),
		PublishedDate: optional(info.PublishedDate),
		Description:   optional(info.Description),
	}
	if len(info.Authors) > 0 {
		md.Author = optional(info.Authors[0])
	}
	if info.AverageRating != nil {
		md.AverageRating = optional(string(*info.AverageRating))
	}
	if info.RatingsCount != nil && *info.RatingsCount >= 0 {
		n := *info.RatingsCount
		md.RatingsCount = &n
	}

	// first identifier of each type wins
	for _, id := range info.IndustryIdentifiers {
		switch id.Type {
		case "ISBN_10":
			if md.ISBN10 == nil {
				md.ISBN10 = optional(id.Identifier)
			}
		case "ISBN_13":
			if md.ISBN13 == nil {
				md.ISBN13 = optional(id.Identifier)
			}
		}
	}
	return md, true
}
