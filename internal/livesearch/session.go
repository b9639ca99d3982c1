package livesearch

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/hyperjump/taberu/internal/models"
	"go.uber.org/zap"
)

const inputKey = "query"

// Searcher runs one free-text search. Implementations return an empty list on
// failure rather than an error.
type Searcher interface {
	Search(ctx context.Context, query string) []*models.Food
}

// ApplyFunc receives the results of the latest settled search. It runs while
// the session holds its lock, so it must not call back into the Session.
type ApplyFunc func(query string, results []*models.Food)

// Session is one search field. Each Input supersedes everything before it.
type Session struct {
	searcher Searcher
	apply    ApplyFunc
	debounce *Debouncer
	seq      Sequencer
	logger   *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	closed bool
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithWindow overrides the debounce window.
func WithWindow(d time.Duration) SessionOption {
	return func(s *Session) { s.debounce = NewDebouncer(d) }
}

// WithLogger sets a logger for debug output (superseded and applied searches).
func WithLogger(l *zap.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSession creates a session that searches with searcher and delivers results to apply.
func NewSession(searcher Searcher, apply ApplyFunc, opts ...SessionOption) *Session {
	s := &Session{
		searcher: searcher,
		apply:    apply,
		debounce: NewDebouncer(DefaultWindow),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Input records a keystroke. Any pending or in-flight search is superseded and
// its result will be discarded. Queries too short to search never reach apply;
// the view clears its remote results when the query changes.
func (s *Session) Input(query string) {
	query = strings.TrimSpace(query)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	ticket := s.seq.Next()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if !models.QueryActive(query) {
		s.debounce.Cancel(inputKey)
		return
	}
	s.debounce.Trigger(inputKey, func() { s.run(query, ticket) })
}

func (s *Session) run(query string, ticket uint64) {
	s.mu.Lock()
	if s.closed || !s.seq.Current(ticket) {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	results := s.searcher.Search(ctx, query)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.seq.Current(ticket) {
		s.logger.Debug("discarding superseded search", zap.String("query", query), zap.Uint64("ticket", ticket))
		return
	}
	s.cancel = nil
	if results == nil {
		results = []*models.Food{}
	}
	s.logger.Debug("applying search results", zap.String("query", query), zap.Int("results", len(results)))
	s.apply(query, results)
}

// Close cancels pending and in-flight searches; no result is applied afterwards.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.seq.Next()
	s.debounce.Stop()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
