// Package session keeps per-rider state: wizard, map picker, search and sign-in.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/cabgo/rider-web/internal/application"
	"github.com/cabgo/rider-web/internal/location"
	"github.com/cabgo/rider-web/internal/mapselect"
)

// HeaderName carries the session id between browser and service.
const HeaderName = "X-Session-ID"

var activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "rider_web_active_sessions",
	Help: "Rider sessions currently held in memory",
})

// Session is one rider's browser tab.
type Session struct {
	ID        string
	Wizard    *application.WizardService
	Modal     *mapselect.Modal
	Suggester *location.Suggester

	mu       sync.Mutex
	identity *application.Identity
	lastSeen time.Time
}

// Identity returns a copy of the signed-in identity, or nil.
func (s *Session) Identity() *application.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return nil
	}
	id := *s.identity
	return &id
}

func (s *Session) SignIn(identity *application.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = identity
}

func (s *Session) SignOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = nil
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen.Before(cutoff)
}

// Factory builds the components of a new session.
type Factory func(id string) *Session

// Store holds sessions in memory and expires idle ones.
type Store struct {
	factory Factory
	idleTTL time.Duration
	now     func() time.Time
	logger  *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewStore(factory Factory, idleTTL time.Duration, logger *zap.Logger) *Store {
	return &Store{
		factory:  factory,
		idleTTL:  idleTTL,
		now:      time.Now,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// GetOrCreate returns the session for id, creating a fresh one under a new id when id is
// empty or unknown. created reports whether a new session was made.
func (st *Store) GetOrCreate(id string) (sess *Session, created bool) {
	now := st.now()

	st.mu.Lock()
	defer st.mu.Unlock()

	if s, ok := st.sessions[id]; ok && id != "" {
		s.touch(now)
		return s, false
	}

	newID := uuid.NewString()
	s := st.factory(newID)
	s.ID = newID
	s.touch(now)
	st.sessions[newID] = s
	activeSessions.Set(float64(len(st.sessions)))
	st.logger.Debug("session created", zap.String("session_id", newID))
	return s, true
}

// Get returns an existing session without creating one.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if ok {
		s.touch(st.now())
	}
	return s, ok
}

func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Sweep removes sessions idle longer than the TTL and returns how many were removed.
func (st *Store) Sweep() int {
	cutoff := st.now().Add(-st.idleTTL)

	st.mu.Lock()
	var expired []*Session
	for id, s := range st.sessions {
		if s.idleSince(cutoff) {
			expired = append(expired, s)
			delete(st.sessions, id)
		}
	}
	activeSessions.Set(float64(len(st.sessions)))
	st.mu.Unlock()

	for _, s := range expired {
		if s.Suggester != nil {
			s.Suggester.Close()
		}
	}
	if len(expired) > 0 {
		st.logger.Info("expired idle sessions", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// RunJanitor sweeps every interval until ctx is done. Extra hooks run after each sweep.
func (st *Store) RunJanitor(ctx context.Context, interval time.Duration, hooks ...func(now time.Time)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st.Sweep()
			now := st.now()
			for _, hook := range hooks {
				hook(now)
			}
		}
	}
}
