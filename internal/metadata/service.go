package metadata

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"bookreviews/internal/logging"
	"bookreviews/internal/metrics"
)

const summaryPrompt = "Summarize the following book description in fewer than 50 words. Reply with the summary only.\n\n%s"

const summaryBreakerName = "gemini"

// BreakerSettings tunes the summarization circuit breaker. Metadata lookups are not
// breaker-guarded: each ISBN always gets its own request so one book's failures never
// cost another book its rating.
type BreakerSettings struct {
	MinRequests  uint32
	FailureRatio float64
	Interval     time.Duration
	OpenTimeout  time.Duration
}

var DefaultBreakerSettings = BreakerSettings{
	MinRequests:  10,
	FailureRatio: 0.6,
	Interval:     time.Minute,
	OpenTimeout:  30 * time.Second,
}

type Service struct {
	books     VolumeSearcher
	generator TextGenerator
	summaryCB *gobreaker.CircuitBreaker[string]
}

func NewService(books VolumeSearcher, generator TextGenerator, bs BreakerSettings) *Service {
	return &Service{
		books:     books,
		generator: generator,
		summaryCB: gobreaker.NewCircuitBreaker[string](breakerSettings(summaryBreakerName, bs)),
	}
}

func breakerSettings(name string, bs BreakerSettings) gobreaker.Settings {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	return gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    bs.Interval,
		Timeout:     bs.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < bs.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= bs.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	}
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

func rejected(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func outcomeFor(err error) string {
	if rejected(err) {
		return metrics.OutcomeRejected
	}
	return metrics.OutcomeError
}

// FetchMetadata looks one ISBN up. It never fails: ok is false when the source had nothing
// or could not be reached.
func (s *Service) FetchMetadata(ctx context.Context, isbn string) (*Metadata, bool) {
	metrics.MetadataInFlight.Inc()
	defer metrics.MetadataInFlight.Dec()

	res, err := s.books.SearchByISBN(ctx, isbn)
	if err != nil {
		metrics.MetadataFetches.WithLabelValues(metrics.OutcomeError).Inc()
		logging.Warn().Err(err).Str("isbn", isbn).Msg("metadata lookup failed")
		return nil, false
	}

	md, ok := fromVolumes(res)
	if !ok {
		metrics.MetadataFetches.WithLabelValues(metrics.OutcomeAbsent).Inc()
		logging.Debug().Str("isbn", isbn).Msg("no metadata for isbn")
		return nil, false
	}

	metrics.MetadataFetches.WithLabelValues(metrics.OutcomeOK).Inc()
	return md, true
}

// SummaryEnabled reports whether Summarize can ever succeed.
func (s *Service) SummaryEnabled() bool {
	return s.generator != nil && s.generator.Enabled()
}

// Summarize condenses text to fewer than 50 words. ok is false when summaries are disabled,
// the input is blank, or the service failed.
func (s *Service) Summarize(ctx context.Context, text string) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" || !s.SummaryEnabled() {
		metrics.Summaries.WithLabelValues(metrics.OutcomeAbsent).Inc()
		return "", false
	}

	summary, err := s.summaryCB.Execute(func() (string, error) {
		return s.generator.GenerateText(ctx, fmt.Sprintf(summaryPrompt, text))
	})
	if err != nil {
		metrics.Summaries.WithLabelValues(outcomeFor(err)).Inc()
		logging.Warn().Err(err).Msg("summarization failed")
		return "", false
	}

	summary = strings.TrimSpace(summary)
	if summary == "" {
		metrics.Summaries.WithLabelValues(metrics.OutcomeAbsent).Inc()
		return "", false
	}
	metrics.Summaries.WithLabelValues(metrics.OutcomeOK).Inc()
	return summary, true
}
