package popular

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookreviews/internal/book"
	"bookreviews/internal/metadata"
	"bookreviews/internal/platform/googlebooks"
)

type fakeFetcher struct {
	mu       sync.Mutex
	results  map[string]*metadata.Metadata
	delay    func(isbn string) time.Duration
	inFlight atomic.Int32
	peak     atomic.Int32
	calls    atomic.Int32
	ctxErrs  atomic.Int32
}

func (f *fakeFetcher) FetchMetadata(ctx context.Context, isbn string) (*metadata.Metadata, bool) {
	f.calls.Add(1)
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}

	if f.delay != nil {
		time.Sleep(f.delay(isbn))
	}
	if ctx.Err() != nil {
		f.ctxErrs.Add(1)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	md, ok := f.results[isbn]
	return md, ok
}

func withRating(rating string, count int) *metadata.Metadata {
	return &metadata.Metadata{AverageRating: &rating, RatingsCount: &count}
}

func books(isbns ...string) []book.Book {
	out := make([]book.Book, len(isbns))
	for i, isbn := range isbns {
		out[i] = book.Book{ID: fmt.Sprint(i), ISBN: isbn, Title: "Title " + isbn}
	}
	return out
}

func isbnsOf(ranked []RankedBook) []string {
	out := make([]string, len(ranked))
	for i, rb := range ranked {
		out[i] = rb.ISBN
	}
	return out
}

func TestRank_SingleBookWithRating(t *testing.T) {
	f := &fakeFetcher{results: map[string]*metadata.Metadata{"A": withRating("4.2", 10)}}

	ranked := NewPipeline(f).Rank(context.Background(), books("A"))

	require.Len(t, ranked, 1)
	assert.Equal(t, "A", ranked[0].ISBN)
	assert.Equal(t, 4.2, ranked[0].Rating)
	require.NotNil(t, ranked[0].RatingsCount)
	assert.Equal(t, 10, *ranked[0].RatingsCount)
}

func TestRank_AbsentMetadata(t *testing.T) {
	f := &fakeFetcher{results: map[string]*metadata.Metadata{}}

	ranked := NewPipeline(f).Rank(context.Background(), books("B"))

	require.Len(t, ranked, 1)
	assert.Equal(t, "B", ranked[0].ISBN)
	assert.Zero(t, ranked[0].Rating)
	assert.Nil(t, ranked[0].RatingsCount)
}

func TestRank_HigherRatingFirstRegardlessOfTiming(t *testing.T) {
	f := &fakeFetcher{
		results: map[string]*metadata.Metadata{
			"low":  withRating("3.2", 1),
			"high": withRating("4.5", 1),
		},
		delay: func(isbn string) time.Duration {
			if isbn == "high" {
				return 20 * time.Millisecond
			}
			return 0
		},
	}

	ranked := NewPipeline(f).Rank(context.Background(), books("low", "high"))

	assert.Equal(t, []string{"high", "low"}, isbnsOf(ranked))
}

func TestRank_TiesKeepInputOrder(t *testing.T) {
	f := &fakeFetcher{
		results: map[string]*metadata.Metadata{
			"a": withRating("4.0", 1),
			"b": withRating("4.0", 1),
			"c": withRating("5", 1),
		},
		delay: func(isbn string) time.Duration {
			if isbn == "a" {
				return 15 * time.Millisecond
			}
			return 0
		},
	}

	for i := 0; i < 5; i++ {
		ranked := NewPipeline(f).Rank(context.Background(), books("a", "x", "b", "c", "y"))
		assert.Equal(t, []string{"c", "a", "b", "x", "y"}, isbnsOf(ranked))
	}
}

func TestRank_UnparseableRatingsAreZero(t *testing.T) {
	f := &fakeFetcher{results: map[string]*metadata.Metadata{
		"garbage":  withRating("four", 3),
		"nan":      withRating("NaN", 3),
		"inf":      withRating("+Inf", 3),
		"negative": withRating("-1", 3),
		"good":     withRating(" 2.5 ", 3),
		"norating": {RatingsCount: new(int)},
	}}

	ranked := NewPipeline(f).Rank(context.Background(), books("garbage", "nan", "inf", "negative", "norating", "good"))

	require.Len(t, ranked, 6)
	assert.Equal(t, "good", ranked[0].ISBN)
	assert.Equal(t, 2.5, ranked[0].Rating)
	for _, rb := range ranked[1:] {
		assert.Zero(t, rb.Rating, rb.ISBN)
	}
	// metadata was present, so the count survives even though the rating did not parse
	assert.NotNil(t, ranked[1].RatingsCount)
	for _, rb := range ranked {
		if rb.ISBN == "norating" {
			assert.Nil(t, rb.RatingsCount)
		}
	}
}

func TestRank_CapsAtFifty(t *testing.T) {
	f := &fakeFetcher{results: map[string]*metadata.Metadata{}}
	isbns := make([]string, 60)
	for i := range isbns {
		isbns[i] = fmt.Sprintf("isbn-%02d", i)
		f.results[isbns[i]] = withRating(fmt.Sprintf("%d.0", i), i)
	}

	ranked := NewPipeline(f).Rank(context.Background(), books(isbns...))

	require.Len(t, ranked, MaxResults)
	for i, rb := range ranked {
		assert.Equal(t, float64(59-i), rb.Rating)
	}
	assert.Equal(t, int32(60), f.calls.Load())
}

func TestRank_OutputLengthMatchesSmallInputs(t *testing.T) {
	f := &fakeFetcher{results: map[string]*metadata.Metadata{}}
	p := NewPipeline(f)

	for k := 0; k <= 10; k++ {
		isbns := make([]string, k)
		for i := range isbns {
			isbns[i] = fmt.Sprint(i)
		}
		assert.Len(t, p.Rank(context.Background(), books(isbns...)), k)
	}
}

func TestRank_BoundsConcurrency(t *testing.T) {
	f := &fakeFetcher{
		results: map[string]*metadata.Metadata{},
		delay:   func(string) time.Duration { return 10 * time.Millisecond },
	}
	isbns := make([]string, 10)
	for i := range isbns {
		isbns[i] = fmt.Sprint(i)
	}

	ranked := NewPipeline(f, WithWorkers(5)).Rank(context.Background(), books(isbns...))

	assert.Len(t, ranked, 10)
	assert.LessOrEqual(t, f.peak.Load(), int32(5))
	assert.Greater(t, f.peak.Load(), int32(1))
}

func TestRank_CallerCancellationDoesNotAbortLookups(t *testing.T) {
	f := &fakeFetcher{
		results: map[string]*metadata.Metadata{"a": withRating("4", 1)},
		delay:   func(string) time.Duration { return 5 * time.Millisecond },
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ranked := NewPipeline(f).Rank(ctx, books("a", "b"))

	require.Len(t, ranked, 2)
	assert.Equal(t, 4.0, ranked[0].Rating)
	assert.Zero(t, f.ctxErrs.Load())
}

func TestPipelineOptions(t *testing.T) {
	assert.Equal(t, DefaultWorkers, NewPipeline(nil, WithWorkers(0)).numWorkers)
	assert.Equal(t, 2, NewPipeline(nil, WithWorkers(2)).numWorkers)
}

// flakySearcher fails every ISBN it has no rating for.
type flakySearcher struct {
	ratings map[string]string
	calls   atomic.Int32
}

func (s *flakySearcher) SearchByISBN(_ context.Context, isbn string) (*googlebooks.VolumesResponse, error) {
	s.calls.Add(1)
	r, ok := s.ratings[isbn]
	if !ok {
		return nil, &googlebooks.StatusError{StatusCode: 503}
	}
	n := googlebooks.Number(r)
	count := 7
	return &googlebooks.VolumesResponse{
		TotalItems: 1,
		Items: []googlebooks.Volume{{VolumeInfo: googlebooks.VolumeInfo{
			Title:         "Book " + isbn,
			AverageRating: &n,
			RatingsCount:  &count,
		}}},
	}, nil
}

func TestRank_LookupFailuresStayPerBook(t *testing.T) {
	searcher := &flakySearcher{ratings: map[string]string{"b10": "4.5", "b11": "4.5"}}
	svc := metadata.NewService(searcher, nil, metadata.DefaultBreakerSettings)

	isbns := make([]string, 12)
	for i := range isbns {
		isbns[i] = fmt.Sprintf("b%d", i)
	}

	ranked := NewPipeline(svc, WithWorkers(1)).Rank(context.Background(), books(isbns...))

	require.Len(t, ranked, 12)
	assert.Equal(t, []string{"b10", "b11"}, isbnsOf(ranked[:2]))
	assert.Equal(t, 4.5, ranked[0].Rating)
	assert.Equal(t, 4.5, ranked[1].Rating)
	for _, rb := range ranked[2:] {
		assert.Zero(t, rb.Rating, rb.ISBN)
	}
	assert.Equal(t, int32(12), searcher.calls.Load())
}
