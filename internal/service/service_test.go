package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fanflow-app/fanflow/internal/cooldown"
	"github.com/fanflow-app/fanflow/internal/store"
)

func newServices(t *testing.T, windows Windows) (*Accounts, *Clips, store.Store) {
	t.Helper()
	st := store.NewInMemoryStore()
	gate := cooldown.NewStoreGateway(st)
	return NewAccounts(st, gate, windows), NewClips(st, gate, windows), st
}

func TestSaveProfileCooldown(t *testing.T) {
	accounts, _, st := newServices(t, Windows{ProfileSave: time.Hour})
	ctx := context.Background()

	out := accounts.SaveProfile(ctx, "u1", "Ayşe", "ayse@example.com", "")
	require.True(t, out.OK)
	require.False(t, out.Throttled)

	// Second save inside the window is throttled and performs no write.
	out = accounts.SaveProfile(ctx, "u1", "Changed", "other@example.com", "")
	require.False(t, out.OK)
	require.True(t, out.Throttled)
	require.NotEmpty(t, out.Message)

	p, err := st.GetProfile("u1")
	require.NoError(t, err)
	require.Equal(t, "Ayşe", p.DisplayName, "throttled save must not write")
}

func TestSaveContactChannelRequiresProfile(t *testing.T) {
	accounts, _, _ := newServices(t, Windows{ProfileSave: time.Hour, ContactSave: time.Hour})
	ctx := context.Background()

	out := accounts.SaveContactChannel(ctx, "u1", "telegram", "@ayse", []string{"gs"})
	require.False(t, out.OK)
	require.True(t, out.NotFound)

	require.True(t, accounts.SaveProfile(ctx, "u1", "Ayşe", "a@b.co", "").OK)
	out = accounts.SaveContactChannel(ctx, "u1", "telegram", "@ayse", []string{"gs"})
	require.True(t, out.OK)
}

func TestSubmitClipCooldownScenario(t *testing.T) {
	_, clips, _ := newServices(t, Windows{ClipSubmit: time.Hour})
	ctx := context.Background()

	out := clips.SubmitClip(ctx, "u1", "https://youtu.be/abc")
	require.True(t, out.OK)

	out = clips.SubmitClip(ctx, "u1", "https://youtu.be/def")
	require.False(t, out.OK)
	require.True(t, out.Throttled)

	// Another actor is unaffected.
	out = clips.SubmitClip(ctx, "u2", "https://youtu.be/ghi")
	require.True(t, out.OK)

	list, err := clips.ListClips(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1, "throttled submission must not be recorded")
}

func TestSubmitClipRejectsBadLink(t *testing.T) {
	_, clips, _ := newServices(t, DefaultWindows())
	out := clips.SubmitClip(context.Background(), "u1", "ftp://nope")
	require.False(t, out.OK)
	require.False(t, out.Throttled)
	require.NotEmpty(t, out.Message)
}

func TestCheckLoginRate(t *testing.T) {
	accounts, _, _ := newServices(t, Windows{LoginAttempt: time.Hour})
	ctx := context.Background()

	res := accounts.CheckLoginRate(ctx, "203.0.113.7")
	require.True(t, res.Allowed)
	res = accounts.CheckLoginRate(ctx, "203.0.113.7")
	require.False(t, res.Allowed)
	// Different IP has its own record.
	require.True(t, accounts.CheckLoginRate(ctx, "203.0.113.8").Allowed)
}
