package popular

import (
	"context"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"bookreviews/internal/book"
	"bookreviews/internal/metadata"
	"bookreviews/internal/metrics"
)

// Pipeline fetches metadata for a batch of books through a fixed pool of workers and ranks them.
type Pipeline struct {
	fetcher    MetadataFetcher
	numWorkers int
}

type PipelineOption func(*Pipeline)

// WithWorkers sets the pool size. Values below 1 are ignored.
func WithWorkers(n int) PipelineOption {
	return func(p *Pipeline) {
		if n > 0 {
			p.numWorkers = n
		}
	}
}

func NewPipeline(fetcher MetadataFetcher, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		fetcher:    fetcher,
		numWorkers: DefaultWorkers,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type rankJob struct {
	slot int
	book book.Book
}

// Rank returns one entry per input book, highest rating first, truncated to MaxResults.
// Books with equal ratings keep their input order. It blocks until every lookup has finished
// and never fails: a failed lookup only drops that book's rating to 0.
//
// Lookups run on a context detached from ctx's cancellation, so a caller that gives up does not
// abort in-flight requests; the HTTP client's own timeout still bounds each one.
func (p *Pipeline) Rank(ctx context.Context, books []book.Book) []RankedBook {
	start := time.Now()
	defer func() {
		metrics.PopularDuration.Observe(time.Since(start).Seconds())
		metrics.PopularBatchSize.Observe(float64(len(books)))
	}()

	if len(books) == 0 {
		return []RankedBook{}
	}

	fetchCtx := context.WithoutCancel(ctx)
	slots := make([]RankedBook, len(books))

	jobs := make(chan rankJob, len(books))
	for i, b := range books {
		jobs <- rankJob{slot: i, book: b}
	}
	close(jobs)

	workers := min(p.numWorkers, len(books))
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				md, ok := p.fetcher.FetchMetadata(fetchCtx, job.book.ISBN)
				slots[job.slot] = reduce(job.book, md, ok)
			}
		}()
	}
	wg.Wait()

	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].Rating > slots[j].Rating
	})

	if len(slots) > MaxResults {
		slots = slots[:MaxResults]
	}
	return slots
}

func reduce(b book.Book, md *metadata.Metadata, ok bool) RankedBook {
	rb := RankedBook{Book: b}
	if !ok || md == nil {
		return rb
	}
	// No average rating means rating 0 and no count.
	if md.AverageRating == nil {
		return rb
	}
	rb.Rating = parseRating(*md.AverageRating)
	if md.RatingsCount != nil {
		n := *md.RatingsCount
		rb.RatingsCount = &n
	}
	return rb
}

// parseRating returns 0 for anything that is not a finite, non-negative number.
func parseRating(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
