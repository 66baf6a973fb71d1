package cooldown

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fanflow-app/fanflow/internal/store"
)

func TestCheckWindowLaw(t *testing.T) {
	st := store.NewInMemoryStore()
	g := NewStoreGateway(st)

	now := time.Unix(1_700_000_000, 0)
	g.now = func() time.Time { return now }

	window := 60 * time.Second
	ctx := context.Background()

	res := g.Check(ctx, "u1", ActionProfileSave, window)
	require.True(t, res.Allowed, "first attempt is always allowed")
	require.Empty(t, res.Message)

	now = now.Add(window - time.Second)
	res = g.Check(ctx, "u1", ActionProfileSave, window)
	require.False(t, res.Allowed, "attempt inside the window is denied")
	require.Equal(t, RetryLaterMessage, res.Message)

	// The denied attempt must not have moved the window.
	now = now.Add(time.Second)
	res = g.Check(ctx, "u1", ActionProfileSave, window)
	require.True(t, res.Allowed, "attempt at exactly the window boundary is allowed")
}

func TestCheckIndependentKeys(t *testing.T) {
	st := store.NewInMemoryStore()
	g := NewStoreGateway(st)
	ctx := context.Background()
	window := time.Minute

	require.True(t, g.Check(ctx, "u1", ActionClipSubmit, window).Allowed)
	require.True(t, g.Check(ctx, "u2", ActionClipSubmit, window).Allowed, "different actor, same action")
	require.True(t, g.Check(ctx, "u1", ActionContactSave, window).Allowed, "same actor, different action")
	require.False(t, g.Check(ctx, "u1", ActionClipSubmit, window).Allowed)
}

type failingStore struct {
	store.Store
}

func (f *failingStore) AcquireCooldown(string, string, time.Time, time.Duration) (bool, error) {
	return false, errors.New("connection refused")
}

func TestCheckStoreErrorDegradesToDenied(t *testing.T) {
	g := NewStoreGateway(&failingStore{Store: store.NewInMemoryStore()})
	res := g.Check(context.Background(), "u1", ActionProfileSave, time.Minute)
	require.False(t, res.Allowed)
	require.Equal(t, RetryLaterMessage, res.Message, "internal error must not leak to the caller")
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		forwarded  string
		realIP     string
		remoteAddr string
		want       string
	}{
		{"forwarded header wins", "203.0.113.7, 10.0.0.1", "198.51.100.2", "192.0.2.1:4321", "203.0.113.7"},
		{"real ip fallback", "", "198.51.100.2", "192.0.2.1:4321", "198.51.100.2"},
		{"remote addr fallback", "", "", "192.0.2.1:4321", "192.0.2.1"},
		{"loopback fallback", "", "", "", LoopbackIP},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if tt.realIP != "" {
				r.Header.Set("X-Real-IP", tt.realIP)
			}
			require.Equal(t, tt.want, ClientIP(r))
		})
	}
}

func TestIPActorKey(t *testing.T) {
	require.Equal(t, "ip:203.0.113.7", IPActorKey("203.0.113.7"))
}
