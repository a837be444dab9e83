package location

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/cabgo/rider-web/internal/common/domain"
	"github.com/cabgo/rider-web/internal/domain/booking"
)

var (
	// ErrSuperseded is delivered to a Suggest caller whose input was replaced by newer input.
	ErrSuperseded = errors.New("search superseded by newer input")
	// ErrSuggesterClosed is delivered after Close, when the rider's session has expired.
	ErrSuggesterClosed error = &domain.AppError{
		Code:    domain.CodeInvalidState,
		Message: "your search session has expired, please search again",
	}
)

var placeSearches = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "rider_web_place_searches_total",
		Help: "Autocomplete inputs by outcome",
	},
	[]string{"outcome"},
)

// Searcher is the autocomplete backend.
type Searcher interface {
	SearchPlaces(ctx context.Context, input string) ([]booking.PlaceSuggestion, error)
}

// SuggestResult is the outcome of one Suggest call.
type SuggestResult struct {
	Query       string                    `json:"query"`
	Suggestions []booking.PlaceSuggestion `json:"suggestions"`
	Err         error                     `json:"-"`
}

// Suggester debounces autocomplete input. Only the latest input is ever searched:
// each Suggest stops the previous timer, cancels the previous request and answers the
// previous caller with ErrSuperseded. Replies are matched against a sequence number so
// a slow earlier reply can never be delivered for newer input.
type Suggester struct {
	api      Searcher
	clock    Clock
	debounce time.Duration
	minChars int
	logger   *zap.Logger

	mu     sync.Mutex
	seq    uint64
	timer  Timer
	cancel context.CancelFunc
	waiter chan SuggestResult
	// query the waiter is waiting on, echoed back when it is superseded
	waiterQuery string
	closed      bool
}

// NewSuggester creates a Suggester. A nil clock uses SystemClock.
func NewSuggester(api Searcher, clock Clock, debounce time.Duration, minChars int, logger *zap.Logger) *Suggester {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Suggester{
		api:      api,
		clock:    clock,
		debounce: debounce,
		minChars: minChars,
		logger:   logger,
	}
}

// Suggest registers new input. The returned channel receives exactly one result and
// is then closed. Input shorter than the minimum yields an empty result with no search.
func (s *Suggester) Suggest(ctx context.Context, text string) <-chan SuggestResult {
	out := make(chan SuggestResult, 1)
	query := strings.TrimSpace(text)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.supersedeLocked()
	s.seq++
	seq := s.seq

	if s.closed {
		out <- SuggestResult{Query: query, Err: ErrSuggesterClosed}
		close(out)
		return out
	}
	if utf8.RuneCountInString(query) < s.minChars {
		placeSearches.WithLabelValues("too_short").Inc()
		out <- SuggestResult{Query: query, Suggestions: []booking.PlaceSuggestion{}}
		close(out)
		return out
	}

	reqCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.waiter = out
	s.waiterQuery = query
	s.timer = s.clock.AfterFunc(s.debounce, func() {
		s.fire(reqCtx, seq, query, out)
	})
	return out
}

// Close answers any pending caller and rejects further input.
func (s *Suggester) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.supersedeLocked()
	s.seq++
	s.closed = true
}

func (s *Suggester) fire(ctx context.Context, seq uint64, query string, out chan SuggestResult) {
	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.mu.Unlock()

	placeSearches.WithLabelValues("issued").Inc()
	suggestions, err := s.api.SearchPlaces(ctx, query)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		// Already answered with ErrSuperseded.
		s.logger.Debug("discarding stale suggestions", zap.String("query", query))
		return
	}

	if err != nil {
		placeSearches.WithLabelValues("failed").Inc()
		s.logger.Warn("place search failed", zap.String("query", query), zap.Error(err))
	}
	if suggestions == nil {
		suggestions = []booking.PlaceSuggestion{}
	}
	s.cancel()
	s.cancel = nil
	s.waiter = nil
	s.waiterQuery = ""
	out <- SuggestResult{Query: query, Suggestions: suggestions, Err: err}
	close(out)
}

func (s *Suggester) supersedeLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.waiter != nil {
		placeSearches.WithLabelValues("superseded").Inc()
		s.waiter <- SuggestResult{Query: s.waiterQuery, Err: ErrSuperseded}
		close(s.waiter)
		s.waiter = nil
		s.waiterQuery = ""
	}
}
