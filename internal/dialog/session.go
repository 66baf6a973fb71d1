// Package dialog implements the conversation core: per-session mutable
// state and the controller state machine that drives transitions through
// the message graph.
package dialog

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fanflow-app/fanflow/internal/graph"
	"github.com/fanflow-app/fanflow/internal/models"
	"github.com/fanflow-app/fanflow/internal/render"
)

// UserEchoNodeID marks timeline messages that echo a free-text submission;
// they are synthesized by the controller, not authored in the graph.
const UserEchoNodeID = "user-input"

// ProfileService is the profile collaborator contract the dialog consumes.
type ProfileService interface {
	GetProfile(ctx context.Context, actorID string) (*models.Profile, error)
	SaveProfile(ctx context.Context, actorID, name, email, nationalID string) models.SaveOutcome
	SaveContactChannel(ctx context.Context, actorID, channel, contact string, teams []string) models.SaveOutcome
}

// ClipService is the clip collaborator contract the dialog consumes.
type ClipService interface {
	SubmitClip(ctx context.Context, actorID, url string) models.SaveOutcome
	ListClips(ctx context.Context, actorID string) ([]models.Clip, error)
}

// EventType classifies session events pushed to subscribers.
type EventType string

const (
	// EventAppend signals a message appended to the timeline.
	EventAppend EventType = "append"
	// EventUpdate signals an in-place mutation of the active message.
	EventUpdate EventType = "update"
	// EventReset signals the timeline was replaced wholesale.
	EventReset EventType = "reset"
)

// Event is one session change pushed to subscribers.
type Event struct {
	Type    EventType          `json:"type"`
	Message models.ChatMessage `json:"message,omitempty"`
}

// Result reports the outcome of one user action back to the transport
// layer. A zero Result means the action was applied without anything the
// client must handle out-of-band.
type Result struct {
	// ConfirmRestart is set when the action hit an inactive message; the
	// client should show a restart confirmation instead of progressing.
	ConfirmRestart bool `json:"confirm_restart,omitempty"`
	// OpenURL asks the client to open an external link.
	OpenURL string `json:"open_url,omitempty"`
	// Message carries the localized inline validation error, if any.
	Message string `json:"message,omitempty"`
	// Ignored is set when the action could not be resolved (unknown
	// option, no pending input, duplicate in-flight submission).
	Ignored bool `json:"ignored,omitempty"`
}

// Config carries everything needed to create a session.
type Config struct {
	ActorID       string
	Authenticated bool
	Locale        string
	// DisplayName and Email pre-fill the onboarding suggestions from the
	// surrounding web account, when known.
	DisplayName string
	Email       string
	// TypingDelay is the simulated typing suspension before an assistant
	// message appears. Zero renders immediately (tests, snapshots).
	TypingDelay time.Duration

	Profiles ProfileService
	Clips    ClipService
	// Timer defaults to a SimpleTimer when nil.
	Timer Timer
}

// Session is the mutable conversation state for one active client. All
// mutations run under one mutex so dialog transitions apply strictly in
// request order; the typing delay is a cancellable timer whose callback
// re-checks the session epoch, so a reset discards in-flight effects.
type Session struct {
	id    string
	cfg   Config
	graph *graph.Graph
	timer Timer

	mu      sync.Mutex
	epoch   int
	started bool

	messages       []models.ChatMessage
	pendingAction  models.ActionID
	pendingNodeID  string
	inFlight       bool
	profile        models.Profile
	selection      []string
	channel        models.Channel
	channelContact string

	pending sync.WaitGroup

	subsMu  sync.Mutex
	subs    map[int]chan Event
	nextSub int
}

// NewSession creates a session for the configured actor and locale. The
// conversation does not start until Start is called.
func NewSession(id string, cfg Config) *Session {
	timer := cfg.Timer
	if timer == nil {
		timer = NewSimpleTimer()
	}
	return &Session{
		id:    id,
		cfg:   cfg,
		graph: graph.ForLocale(cfg.Locale),
		timer: timer,
		subs:  make(map[int]chan Event),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Locale returns the locale the session's graph was resolved to.
func (s *Session) Locale() string { return s.graph.Locale() }

// ActorID returns the actor the session belongs to.
func (s *Session) ActorID() string { return s.cfg.ActorID }

// Start seeds the conversation. Authenticated actors with a previously
// saved profile skip onboarding and land on the main menu; everyone else
// starts at the welcome node. Calling Start twice is a no-op.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	s.seedLocked(ctx)
}

// Restart replaces the entire session state with a fresh conversation.
// Outstanding typing timers and in-flight collaborator completions are
// discarded via the epoch bump.
func (s *Session) Restart(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restartLocked(ctx)
}

func (s *Session) restartLocked(ctx context.Context) {
	slog.Info("Session.Restart", "sessionID", s.id, "actorID", s.cfg.ActorID)
	s.epoch++
	s.timer.Stop()
	s.messages = nil
	s.pendingAction = ""
	s.pendingNodeID = ""
	s.inFlight = false
	s.profile = models.Profile{}
	s.selection = nil
	s.channel = ""
	s.channelContact = ""
	s.emit(Event{Type: EventReset})
	s.seedLocked(ctx)
}

// seedLocked checks for a previously saved profile once per session start
// and picks the entry node accordingly.
func (s *Session) seedLocked(ctx context.Context) {
	if s.cfg.Authenticated && s.cfg.Profiles != nil {
		saved, err := s.cfg.Profiles.GetProfile(ctx, s.cfg.ActorID)
		if err != nil {
			slog.Warn("Session.seed: profile lookup failed, starting onboarding", "error", err, "sessionID", s.id)
		} else if saved != nil {
			s.profile = *saved
			s.profile.RevealEmail = false
			s.profile.RevealID = false
			slog.Debug("Session.seed: saved profile found, skipping onboarding", "sessionID", s.id)
			s.scheduleAppend(graph.NodeMainMenu)
			return
		}
	}
	s.profile = models.Profile{
		ActorID:     s.cfg.ActorID,
		DisplayName: s.cfg.DisplayName,
		Email:       s.cfg.Email,
	}
	s.scheduleAppend(graph.NodeWelcome)
}

// Snapshot returns a copy of the rendered timeline in append order.
func (s *Session) Snapshot() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ChatMessage, len(s.messages))
	for i, m := range s.messages {
		out[i] = copyMessage(m)
	}
	return out
}

// Flush blocks until in-flight collaborator calls have completed. Used by
// tests and graceful shutdown.
func (s *Session) Flush() {
	s.pending.Wait()
}

// Close stops outstanding timers and detaches subscribers.
func (s *Session) Close() {
	s.mu.Lock()
	s.epoch++
	s.timer.Stop()
	s.mu.Unlock()

	s.subsMu.Lock()
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
	s.subsMu.Unlock()
}

// Subscribe registers an event listener. The returned cancel function
// must be called when the listener goes away. Slow listeners drop events
// rather than blocking dialog transitions.
func (s *Session) Subscribe() (<-chan Event, func()) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan Event, 32)
	s.subs[id] = ch
	return ch, func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		if c, ok := s.subs[id]; ok {
			close(c)
			delete(s.subs, id)
		}
	}
}

func (s *Session) emit(ev Event) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			slog.Debug("Session.emit: subscriber queue full, dropping event", "sessionID", s.id, "type", ev.Type)
		}
	}
}

// scheduleAppend appends nodeID after the typing delay. The callback
// captures the current epoch; a reset in between makes it a no-op.
func (s *Session) scheduleAppend(nodeID string) {
	s.scheduleAppendData(nodeID, nil)
}

// scheduleAppendData is scheduleAppend with extra render data overlaid on
// the session's injected values.
func (s *Session) scheduleAppendData(nodeID string, extra map[string]string) {
	if s.cfg.TypingDelay <= 0 {
		s.appendNodeLocked(nodeID, extra)
		return
	}
	ep := s.epoch
	if _, err := s.timer.ScheduleAfter(s.cfg.TypingDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.epoch != ep {
			slog.Debug("Session: stale typing timer ignored", "sessionID", s.id, "node", nodeID)
			return
		}
		s.appendNodeLocked(nodeID, extra)
	}); err != nil {
		slog.Error("Session: failed to schedule typing delay, appending now", "error", err, "sessionID", s.id)
		s.appendNodeLocked(nodeID, extra)
	}
}

// appendNodeLocked renders nodeID with the session's injected data and
// appends it. Unknown node ids are a no-op, never a failure. Appending an
// interactive node deactivates every earlier message; statements keep the
// current activity untouched. Statement chains schedule their follow-up.
func (s *Session) appendNodeLocked(nodeID string, extra map[string]string) {
	node, ok := s.graph.Get(nodeID)
	if !ok {
		slog.Warn("Session.append: unknown node id, ignoring", "sessionID", s.id, "node", nodeID)
		return
	}

	data := s.injectDataLocked(node)
	for k, v := range extra {
		data[k] = v
	}
	msg := models.ChatMessage{
		InstanceID: uuid.NewString(),
		NodeID:     node.ID,
		Text:       render.Render(node.Text, data),
		Sender:     node.Sender,
		Kind:       node.Kind,
		Data:       data,
		Timestamp:  time.Now(),
	}

	interactive := node.Kind == models.NodeChoice || node.Kind == models.NodeInput
	if interactive {
		s.deactivateAllLocked()
		msg.Active = true
	}

	switch node.Kind {
	case models.NodeChoice:
		msg.Options = s.renderOptionsLocked(node, data)
		s.pendingAction = ""
		s.pendingNodeID = ""
	case models.NodeInput:
		spec := *node.Input
		if node.ID == graph.NodeContactInput && s.channel.IsValid() {
			spec.Mode = s.channel.InputMode()
		}
		msg.Input = &spec
		s.pendingAction = spec.ActionID
		s.pendingNodeID = node.ID
	}

	s.messages = append(s.messages, msg)
	s.emit(Event{Type: EventAppend, Message: copyMessage(msg)})
	slog.Debug("Session.append", "sessionID", s.id, "node", node.ID, "active", msg.Active)

	if node.Kind == models.NodeStatement && node.Next != "" {
		s.scheduleAppend(node.Next)
	}
}

// appendUserEchoLocked appends a frozen user-sender message echoing a
// submitted input value.
func (s *Session) appendUserEchoLocked(text string) {
	msg := models.ChatMessage{
		InstanceID: uuid.NewString(),
		NodeID:     UserEchoNodeID,
		Text:       text,
		Sender:     models.SenderUser,
		Kind:       models.NodeStatement,
		Timestamp:  time.Now(),
	}
	s.messages = append(s.messages, msg)
	s.emit(Event{Type: EventAppend, Message: copyMessage(msg)})
}

func (s *Session) deactivateAllLocked() {
	for i := range s.messages {
		if s.messages[i].Active {
			s.messages[i].Active = false
			s.emit(Event{Type: EventUpdate, Message: copyMessage(s.messages[i])})
		}
	}
}

// renderOptionsLocked builds the rendered option list for a node. Every
// render, including in-place re-renders, assigns fresh option instance
// ids so stale clicks from before a mutation resolve to nothing.
func (s *Session) renderOptionsLocked(node models.MessageNode, data map[string]string) []models.RenderedOption {
	opts := make([]models.RenderedOption, 0, len(node.Options))
	for _, opt := range node.Options {
		label := render.Render(opt.Label, data)
		if teamID, isToggle := strings.CutPrefix(opt.ID, graph.TogglePrefix); isToggle && s.isSelectedLocked(teamID) {
			label += s.graph.Strings().SelectedSuffix
		}
		opts = append(opts, models.RenderedOption{
			InstanceID: uuid.NewString(),
			ID:         opt.ID,
			Label:      label,
			NextNodeID: opt.NextNodeID,
		})
	}
	return opts
}

// injectDataLocked builds the data map for rendering a node: the node's
// authored defaults overlaid with the session's runtime values.
func (s *Session) injectDataLocked(node models.MessageNode) map[string]string {
	text := s.graph.Strings()

	data := make(map[string]string, len(node.DefaultData)+6)
	for k, v := range node.DefaultData {
		data[k] = v
	}

	name := s.profile.DisplayName
	if name == "" {
		name = text.DefaultName
	}
	data["displayName"] = name

	if s.profile.Email != "" {
		if s.profile.RevealEmail {
			data["emailDisplay"] = s.profile.Email
		} else {
			data["emailDisplay"] = render.MaskEmail(s.profile.Email)
		}
	}

	if s.profile.NationalID == "" {
		data["idDisplay"] = text.NotProvided
	} else if s.profile.RevealID {
		data["idDisplay"] = render.FormatID(s.profile.NationalID)
	} else {
		data["idDisplay"] = render.MaskID(s.profile.NationalID)
	}

	if s.channel.IsValid() {
		data["channelName"] = s.channel.DisplayName()
	}

	if names := s.selectedTeamNamesLocked(); names != "" {
		data["selectedTeams"] = names
	}

	return data
}

func (s *Session) isSelectedLocked(teamID string) bool {
	for _, id := range s.selection {
		if id == teamID {
			return true
		}
	}
	return false
}

// selectedTeamNamesLocked joins the selected team display names in the
// graph's authored team order.
func (s *Session) selectedTeamNamesLocked() string {
	if len(s.selection) == 0 {
		return ""
	}
	var names []string
	for _, team := range s.graph.Teams() {
		if s.isSelectedLocked(team.ID) {
			names = append(names, team.Name)
		}
	}
	return strings.Join(names, ", ")
}

func (s *Session) findMessageLocked(instanceID string) *models.ChatMessage {
	for i := range s.messages {
		if s.messages[i].InstanceID == instanceID {
			return &s.messages[i]
		}
	}
	return nil
}

func copyMessage(m models.ChatMessage) models.ChatMessage {
	out := m
	if m.Data != nil {
		out.Data = make(map[string]string, len(m.Data))
		for k, v := range m.Data {
			out.Data[k] = v
		}
	}
	if m.Options != nil {
		out.Options = append([]models.RenderedOption(nil), m.Options...)
	}
	if m.Input != nil {
		spec := *m.Input
		out.Input = &spec
	}
	return out
}
