package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cabgo/rider-web/internal/application"
	"github.com/cabgo/rider-web/internal/domain/booking"
	"github.com/cabgo/rider-web/internal/location"
)

type nopSearcher struct{}

func (nopSearcher) SearchPlaces(context.Context, string) ([]booking.PlaceSuggestion, error) {
	return nil, nil
}

func newTestStore(now *time.Time) *Store {
	factory := func(id string) *Session {
		return &Session{
			Suggester: location.NewSuggester(nopSearcher{}, nil, time.Hour, 3, zap.NewNop()),
		}
	}
	st := NewStore(factory, 30*time.Minute, zap.NewNop())
	st.now = func() time.Time { return *now }
	return st
}

func TestStore_GetOrCreate(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	st := newTestStore(&now)

	s, created := st.GetOrCreate("")
	require.True(t, created)
	assert.NotEmpty(t, s.ID)

	again, created := st.GetOrCreate(s.ID)
	assert.False(t, created)
	assert.Same(t, s, again)

	other, created := st.GetOrCreate("forged-id")
	assert.True(t, created)
	assert.NotEqual(t, "forged-id", other.ID)
	assert.Equal(t, 2, st.Len())

	_, ok := st.Get("forged-id")
	assert.False(t, ok)
}

func TestStore_SweepExpiresIdleSessions(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	st := newTestStore(&now)

	idle, _ := st.GetOrCreate("")
	pending := idle.Suggester.Suggest(context.Background(), "Connaught")

	now = now.Add(20 * time.Minute)
	active, _ := st.GetOrCreate("")

	now = now.Add(15 * time.Minute)
	assert.Equal(t, 1, st.Sweep())
	assert.Equal(t, 1, st.Len())

	_, ok := st.Get(active.ID)
	assert.True(t, ok)
	_, ok = st.Get(idle.ID)
	assert.False(t, ok)

	res := <-pending
	assert.ErrorIs(t, res.Err, location.ErrSuperseded)
}

func TestSession_Identity(t *testing.T) {
	s := &Session{}
	assert.Nil(t, s.Identity())

	s.SignIn(&application.Identity{UserID: "rider-7", Token: "tok"})
	id := s.Identity()
	require.NotNil(t, id)
	id.UserID = "changed"
	assert.Equal(t, "rider-7", s.Identity().UserID, "Identity returns a copy")

	s.SignOut()
	assert.Nil(t, s.Identity())
}

func TestStore_RunJanitorStopsOnCancel(t *testing.T) {
	st := NewStore(func(string) *Session { return &Session{} }, time.Minute, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())

	ticks := make(chan time.Time, 10)
	done := make(chan struct{})
	go func() {
		st.RunJanitor(ctx, 5*time.Millisecond, func(now time.Time) {
			select {
			case ticks <- now:
			default:
			}
		})
		close(done)
	}()

	select {
	case <-ticks:
	case <-time.After(time.Second):
		t.Fatal("janitor hook never ran")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}
