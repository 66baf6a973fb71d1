package dialog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fanflow-app/fanflow/internal/cooldown"
	"github.com/fanflow-app/fanflow/internal/graph"
	"github.com/fanflow-app/fanflow/internal/models"
	"github.com/fanflow-app/fanflow/internal/service"
	"github.com/fanflow-app/fanflow/internal/store"
)

// newTestStack wires a session against the real services over the
// in-memory store. Zero windows disable throttling unless a test sets one.
func newTestStack(t *testing.T, cfg Config, windows service.Windows) (*Session, store.Store) {
	t.Helper()
	st := store.NewInMemoryStore()
	gate := cooldown.NewStoreGateway(st)
	cfg.Profiles = service.NewAccounts(st, gate, windows)
	cfg.Clips = service.NewClips(st, gate, windows)
	if cfg.ActorID == "" {
		cfg.ActorID = "actor-1"
	}
	s := NewSession("sess-1", cfg)
	t.Cleanup(s.Close)
	return s, st
}

// activeMessage returns the single active message, failing the test when
// zero or more than one message is active.
func activeMessage(t *testing.T, s *Session) models.ChatMessage {
	t.Helper()
	var found []models.ChatMessage
	for _, m := range s.Snapshot() {
		if m.Active {
			found = append(found, m)
		}
	}
	require.Len(t, found, 1, "expected exactly one active message")
	return found[0]
}

// click selects the option with the given stable id on the active message.
func click(t *testing.T, s *Session, optionID string) Result {
	t.Helper()
	msg := activeMessage(t, s)
	for _, opt := range msg.Options {
		if opt.ID == optionID {
			return s.SelectOption(context.Background(), msg.InstanceID, opt.InstanceID)
		}
	}
	t.Fatalf("option %q not present on active message %q", optionID, msg.NodeID)
	return Result{}
}

// submit sends a free-text value to the active input message.
func submit(t *testing.T, s *Session, value string) Result {
	t.Helper()
	msg := activeMessage(t, s)
	require.Equal(t, models.NodeInput, msg.Kind, "active message is not an input prompt")
	return s.SubmitInput(context.Background(), msg.InstanceID, value)
}

func nodeIDs(msgs []models.ChatMessage) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.NodeID
	}
	return out
}

func TestHappyPathOnboarding(t *testing.T) {
	s, _ := newTestStack(t, Config{
		DisplayName: "Ayşe",
		Email:       "ayse@example.com",
	}, service.Windows{})
	s.Start(context.Background())

	click(t, s, "terms-accept")
	click(t, s, "name-keep")
	click(t, s, "email-keep")
	click(t, s, "id-decline")
	click(t, s, graph.OptSummaryConfirm)
	s.Flush()

	msgs := s.Snapshot()
	require.Equal(t, []string{
		graph.NodeWelcome,
		graph.NodeTerms,
		graph.NodeAskName,
		graph.NodeAskEmail,
		graph.NodeAskNationalID,
		graph.NodeSummary,
		graph.NodeMainMenu,
	}, nodeIDs(msgs))

	// Only the menu is left interactive.
	require.Equal(t, graph.NodeMainMenu, activeMessage(t, s).NodeID)
	for _, m := range msgs[:len(msgs)-1] {
		require.False(t, m.Active, "node %s should be frozen", m.NodeID)
	}
	require.Contains(t, msgs[len(msgs)-1].Text, "Ayşe")
}

func TestInvalidEmailRetriesInline(t *testing.T) {
	s, _ := newTestStack(t, Config{DisplayName: "Ayşe"}, service.Windows{})
	s.Start(context.Background())

	click(t, s, "terms-accept")
	click(t, s, "name-keep")
	click(t, s, "email-new")

	before := len(s.Snapshot())
	res := submit(t, s, "not-an-email")
	require.NotEmpty(t, res.Message)

	msg := activeMessage(t, s)
	require.Equal(t, graph.NodeEmailInput, msg.NodeID, "dialog must not advance")
	require.Contains(t, msg.Text, "⚠️")
	require.Len(t, s.Snapshot(), before, "inline error must not append")

	res = submit(t, s, "ayse@example.com")
	require.Empty(t, res.Message)
	msgs := s.Snapshot()
	require.Equal(t, graph.NodeAskNationalID, msgs[len(msgs)-1].NodeID)
	require.NotContains(t, activeMessage(t, s).Text, "⚠️", "error must clear on success")

	// The accepted value is echoed as a user message before the next prompt.
	echo := msgs[len(msgs)-2]
	require.Equal(t, models.SenderUser, echo.Sender)
	require.Equal(t, "ayse@example.com", echo.Text)
}

func TestNationalIDMaskedEcho(t *testing.T) {
	s, _ := newTestStack(t, Config{DisplayName: "Ayşe", Email: "a@b.co"}, service.Windows{})
	s.Start(context.Background())

	click(t, s, "terms-accept")
	click(t, s, "name-keep")
	click(t, s, "email-keep")
	click(t, s, "id-provide")

	require.NotEmpty(t, submit(t, s, "123").Message, "short id must be rejected")
	require.Empty(t, submit(t, s, "12345678901").Message)

	msgs := s.Snapshot()
	summary := msgs[len(msgs)-1]
	require.Equal(t, graph.NodeSummary, summary.NodeID)
	require.NotContains(t, summary.Text, "12345678901", "summary must mask the id")

	echo := msgs[len(msgs)-2]
	require.Equal(t, models.SenderUser, echo.Sender)
	require.NotContains(t, echo.Text, "12345678901", "echo must mask the id")
	require.Contains(t, echo.Text, "01", "masked id keeps the last two digits")
}

func TestRevealEmailToggle(t *testing.T) {
	s, _ := newTestStack(t, Config{DisplayName: "Ayşe", Email: "ayse@example.com"}, service.Windows{})
	s.Start(context.Background())

	click(t, s, "terms-accept")
	click(t, s, "name-keep")

	masked := activeMessage(t, s)
	require.Equal(t, graph.NodeAskEmail, masked.NodeID)
	require.NotContains(t, optionLabel(t, masked, "email-keep"), "ayse@example.com")

	click(t, s, graph.OptRevealEmail)
	require.Contains(t, optionLabel(t, activeMessage(t, s), "email-keep"), "ayse@example.com")

	click(t, s, graph.OptRevealEmail)
	require.NotContains(t, optionLabel(t, activeMessage(t, s), "email-keep"), "ayse@example.com")
}

func optionLabel(t *testing.T, msg models.ChatMessage, optionID string) string {
	t.Helper()
	for _, opt := range msg.Options {
		if opt.ID == optionID {
			return opt.Label
		}
	}
	t.Fatalf("option %q not on message %q", optionID, msg.NodeID)
	return ""
}

// walkToMenu drives a fresh session through onboarding to the main menu.
func walkToMenu(t *testing.T, s *Session) {
	t.Helper()
	s.Start(context.Background())
	click(t, s, "terms-accept")
	click(t, s, "name-keep")
	click(t, s, "email-keep")
	click(t, s, "id-decline")
	click(t, s, graph.OptSummaryConfirm)
	s.Flush()
	require.Equal(t, graph.NodeMainMenu, activeMessage(t, s).NodeID)
}

func TestTeamSelectToggles(t *testing.T) {
	s, _ := newTestStack(t, Config{DisplayName: "Ayşe", Email: "a@b.co"}, service.Windows{})
	walkToMenu(t, s)

	click(t, s, "menu-live")
	click(t, s, graph.ChannelPrefix+"telegram")
	submit(t, s, "@ayse")

	sel := activeMessage(t, s)
	require.Equal(t, graph.NodeTeamSelect, sel.NodeID)
	before := len(s.Snapshot())

	// Confirming with nothing selected is an inline error.
	res := click(t, s, graph.OptConfirmTeams)
	require.NotEmpty(t, res.Message)
	require.Len(t, s.Snapshot(), before)

	// Toggle on: label gains the marker, nothing is appended.
	click(t, s, graph.TogglePrefix+"gs")
	sel = activeMessage(t, s)
	require.Contains(t, optionLabel(t, sel, graph.TogglePrefix+"gs"), "✓")
	require.Contains(t, sel.Text, "Galatasaray")
	require.Len(t, s.Snapshot(), before)

	// Toggle off restores the original state.
	click(t, s, graph.TogglePrefix+"gs")
	sel = activeMessage(t, s)
	require.NotContains(t, optionLabel(t, sel, graph.TogglePrefix+"gs"), "✓")
	require.NotContains(t, sel.Text, "Galatasaray")

	// Select two teams and confirm.
	click(t, s, graph.TogglePrefix+"gs")
	click(t, s, graph.TogglePrefix+"nat")
	click(t, s, graph.OptConfirmTeams)
	s.Flush()

	msgs := s.Snapshot()
	require.Equal(t, graph.NodeMainMenu, msgs[len(msgs)-1].NodeID)
	saved := msgs[len(msgs)-2]
	require.Equal(t, graph.NodeNotifySaved, saved.NodeID)
	require.Contains(t, saved.Text, "Telegram")
	require.Contains(t, saved.Text, "Galatasaray")
	require.Contains(t, saved.Text, "National Team")
}

func TestContactChannelPersisted(t *testing.T) {
	s, st := newTestStack(t, Config{DisplayName: "Ayşe", Email: "a@b.co"}, service.Windows{})
	walkToMenu(t, s)

	click(t, s, "menu-live")
	click(t, s, graph.ChannelPrefix+"sms")

	// SMS prompt demands a numeric contact.
	prompt := activeMessage(t, s)
	require.Equal(t, graph.NodeContactInput, prompt.NodeID)
	require.Equal(t, models.InputModeNumeric, prompt.Input.Mode)

	require.NotEmpty(t, submit(t, s, "@ayse").Message, "handle is not a phone number")
	require.Empty(t, submit(t, s, "05321234567").Message)
	click(t, s, graph.TogglePrefix+"fb")
	click(t, s, graph.OptConfirmTeams)
	s.Flush()

	p, err := st.GetProfile("actor-1")
	require.NoError(t, err)
	require.Equal(t, "sms", p.Channel)
	require.Equal(t, "05321234567", p.ChannelContact)
	require.Equal(t, []string{"fb"}, p.Teams)
}

func TestClipSubmitCooldown(t *testing.T) {
	s, st := newTestStack(t, Config{DisplayName: "Ayşe", Email: "a@b.co"},
		service.Windows{ClipSubmit: time.Hour})
	walkToMenu(t, s)

	click(t, s, "menu-clip")
	require.Empty(t, submit(t, s, "https://youtu.be/abc").Message)
	s.Flush()

	msgs := s.Snapshot()
	require.Equal(t, graph.NodeMainMenu, msgs[len(msgs)-1].NodeID)
	require.Equal(t, graph.NodeClipSaved, msgs[len(msgs)-2].NodeID)

	// Second submission inside the window lands on the cooldown notice and
	// returns to the menu; the clip is not recorded.
	click(t, s, "menu-clip")
	require.Empty(t, submit(t, s, "https://youtu.be/def").Message)
	s.Flush()

	msgs = s.Snapshot()
	require.Equal(t, graph.NodeMainMenu, msgs[len(msgs)-1].NodeID)
	notice := msgs[len(msgs)-2]
	require.Equal(t, graph.NodeCooldownNotice, notice.NodeID)
	require.NotEmpty(t, notice.Text)
	require.Equal(t, graph.NodeMainMenu, activeMessage(t, s).NodeID)

	clips, err := st.ListClips("actor-1")
	require.NoError(t, err)
	require.Len(t, clips, 1)
}

func TestMyClipsListing(t *testing.T) {
	s, st := newTestStack(t, Config{DisplayName: "Ayşe", Email: "a@b.co"}, service.Windows{})
	walkToMenu(t, s)

	// Empty state first.
	click(t, s, graph.OptMyClips)
	s.Flush()
	msgs := s.Snapshot()
	listing := msgs[len(msgs)-2]
	require.Equal(t, graph.NodeMyClips, listing.NodeID)
	require.Contains(t, listing.Text, "haven't submitted")

	require.NoError(t, st.AddClip(models.Clip{
		ID: "c_1", ActorID: "actor-1", URL: "https://youtu.be/abc", CreatedAt: time.Now(),
	}))
	click(t, s, graph.OptMyClips)
	s.Flush()
	msgs = s.Snapshot()
	listing = msgs[len(msgs)-2]
	require.Contains(t, listing.Text, "https://youtu.be/abc")
}

func TestInactiveMessageAsksForRestart(t *testing.T) {
	s, _ := newTestStack(t, Config{DisplayName: "Ayşe", Email: "a@b.co"}, service.Windows{})
	s.Start(context.Background())

	terms := activeMessage(t, s)
	click(t, s, "terms-accept")

	before := s.Snapshot()
	res := s.SelectOption(context.Background(), terms.InstanceID, terms.Options[0].InstanceID)
	require.True(t, res.ConfirmRestart)
	require.NotEmpty(t, res.Message)
	require.Equal(t, nodeIDs(before), nodeIDs(s.Snapshot()), "inactive click must not mutate the timeline")
}

func TestHelpLinkOpensWithoutTransition(t *testing.T) {
	s, _ := newTestStack(t, Config{DisplayName: "Ayşe", Email: "a@b.co"}, service.Windows{})
	walkToMenu(t, s)

	before := len(s.Snapshot())
	res := click(t, s, graph.OpenPrefix+graph.HelpURL)
	require.Equal(t, graph.HelpURL, res.OpenURL)
	require.Len(t, s.Snapshot(), before)
	require.Equal(t, graph.NodeMainMenu, activeMessage(t, s).NodeID, "menu stays active")
}

func TestRestartClearsState(t *testing.T) {
	s, _ := newTestStack(t, Config{DisplayName: "Ayşe", Email: "a@b.co"}, service.Windows{})
	s.Start(context.Background())

	click(t, s, "terms-accept")
	click(t, s, "name-new")
	submit(t, s, "Zeynep")
	click(t, s, "email-new")
	submit(t, s, "zeynep@example.com")
	click(t, s, "id-decline")

	click(t, s, graph.OptRestart)

	// The timeline is reseeded from the top with the pre-filled name again.
	msgs := s.Snapshot()
	require.Equal(t, []string{graph.NodeWelcome, graph.NodeTerms}, nodeIDs(msgs))
	click(t, s, "terms-accept")
	require.Contains(t, optionLabel(t, activeMessage(t, s), "name-keep"), "Ayşe",
		"typed name from the discarded run must not leak")
}

func TestStartSkipsOnboardingForSavedProfile(t *testing.T) {
	st := store.NewInMemoryStore()
	gate := cooldown.NewStoreGateway(st)
	accounts := service.NewAccounts(st, gate, service.Windows{})
	require.True(t, accounts.SaveProfile(context.Background(), "actor-1", "Ayşe", "a@b.co", "").OK)

	s := NewSession("sess-2", Config{
		ActorID:       "actor-1",
		Authenticated: true,
		Profiles:      accounts,
		Clips:         service.NewClips(st, gate, service.Windows{}),
	})
	t.Cleanup(s.Close)
	s.Start(context.Background())

	msgs := s.Snapshot()
	require.Equal(t, []string{graph.NodeMainMenu}, nodeIDs(msgs))
	require.Contains(t, msgs[0].Text, "Ayşe")
}

func TestTurkishLocaleGraphSelected(t *testing.T) {
	s, _ := newTestStack(t, Config{Locale: graph.LocaleTurkish, DisplayName: "Ayşe"}, service.Windows{})
	s.Start(context.Background())

	require.Equal(t, graph.LocaleTurkish, s.Locale())
	msgs := s.Snapshot()
	require.Contains(t, msgs[0].Text, "Vola")
	require.Contains(t, msgs[0].Text, "asistanın")
}

func TestTypingDelayDefersAppend(t *testing.T) {
	s, _ := newTestStack(t, Config{DisplayName: "Ayşe", TypingDelay: 20 * time.Millisecond}, service.Windows{})
	s.Start(context.Background())

	require.Empty(t, s.Snapshot(), "nothing visible before the typing delay elapses")
	require.Eventually(t, func() bool {
		return len(s.Snapshot()) == 2
	}, 2*time.Second, 10*time.Millisecond, "welcome and terms appear after the delay")
}

func TestRestartDiscardsPendingTimers(t *testing.T) {
	s, _ := newTestStack(t, Config{DisplayName: "Ayşe", TypingDelay: 20 * time.Millisecond}, service.Windows{})
	s.Start(context.Background())
	s.Restart(context.Background())

	require.Eventually(t, func() bool {
		return len(s.Snapshot()) == 2
	}, 2*time.Second, 10*time.Millisecond)
	// Stale timers from before the restart must not double-append.
	time.Sleep(100 * time.Millisecond)
	require.Equal(t, []string{graph.NodeWelcome, graph.NodeTerms}, nodeIDs(s.Snapshot()))
}
