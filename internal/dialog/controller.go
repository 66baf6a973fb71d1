package dialog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fanflow-app/fanflow/internal/graph"
	"github.com/fanflow-app/fanflow/internal/models"
	"github.com/fanflow-app/fanflow/internal/render"
)

// errorMarker prefixes inline validation errors spliced into the
// {{error}} slot of a re-rendered message.
const errorMarker = "\n⚠️ "

// SelectOption applies a click on one option of one timeline message.
// Clicks on inactive messages never mutate state; the caller gets a
// restart-confirmation result instead. Unknown instance ids are ignored.
func (s *Session) SelectOption(ctx context.Context, messageInstanceID, optionInstanceID string) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := s.findMessageLocked(messageInstanceID)
	if msg == nil {
		slog.Debug("Session.SelectOption: unknown message instance", "sessionID", s.id, "instanceID", messageInstanceID)
		return Result{Ignored: true}
	}
	if !msg.Active {
		return Result{ConfirmRestart: true, Message: s.graph.Strings().RestartConfirm}
	}

	var opt *models.RenderedOption
	for i := range msg.Options {
		if msg.Options[i].InstanceID == optionInstanceID {
			opt = &msg.Options[i]
			break
		}
	}
	if opt == nil {
		slog.Debug("Session.SelectOption: unknown option instance", "sessionID", s.id, "instanceID", optionInstanceID)
		return Result{Ignored: true}
	}

	slog.Debug("Session.SelectOption", "sessionID", s.id, "node", msg.NodeID, "option", opt.ID)

	switch {
	case opt.ID == graph.OptRestart:
		s.restartLocked(ctx)
		return Result{}

	case strings.HasPrefix(opt.ID, graph.TogglePrefix):
		s.toggleTeamLocked(msg, strings.TrimPrefix(opt.ID, graph.TogglePrefix))
		return Result{}

	case opt.ID == graph.OptConfirmTeams:
		return s.confirmTeamsLocked(ctx, msg)

	case opt.ID == graph.OptSummaryConfirm:
		return s.confirmSummaryLocked(ctx, msg)

	case opt.ID == graph.OptRevealEmail:
		s.profile.RevealEmail = !s.profile.RevealEmail
		s.rerenderLocked(msg, "")
		return Result{}

	case opt.ID == graph.OptRevealID:
		s.profile.RevealID = !s.profile.RevealID
		s.rerenderLocked(msg, "")
		return Result{}

	case opt.ID == graph.OptMyClips:
		s.listClipsLocked(ctx)
		return Result{}

	case strings.HasPrefix(opt.ID, graph.OpenPrefix):
		// External link: no dialog transition, the message stays active.
		return Result{OpenURL: strings.TrimPrefix(opt.ID, graph.OpenPrefix)}

	case strings.HasPrefix(opt.ID, graph.ChannelPrefix):
		ch, err := models.ParseChannel(strings.TrimPrefix(opt.ID, graph.ChannelPrefix))
		if err != nil {
			slog.Warn("Session.SelectOption: unparseable channel option", "sessionID", s.id, "option", opt.ID)
			return Result{Ignored: true}
		}
		s.channel = ch
		s.channelContact = ""
		s.scheduleAppend(opt.NextNodeID)
		return Result{}

	case opt.NextNodeID != "":
		// Entering the notification flow starts a fresh channel/team pick.
		if msg.NodeID == graph.NodeMainMenu && opt.NextNodeID == graph.NodeChannelSelect {
			s.selection = nil
			s.channel = ""
			s.channelContact = ""
		}
		s.scheduleAppend(opt.NextNodeID)
		return Result{}

	default:
		slog.Warn("Session.SelectOption: option with no route", "sessionID", s.id, "option", opt.ID)
		return Result{Ignored: true}
	}
}

// SubmitInput applies a free-text submission against the timeline message
// carrying the input prompt. Validation failures re-render the prompt in
// place with a localized inline error; the dialog does not advance.
func (s *Session) SubmitInput(ctx context.Context, messageInstanceID, value string) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := s.findMessageLocked(messageInstanceID)
	if msg == nil {
		slog.Debug("Session.SubmitInput: unknown message instance", "sessionID", s.id, "instanceID", messageInstanceID)
		return Result{Ignored: true}
	}
	if !msg.Active {
		return Result{ConfirmRestart: true, Message: s.graph.Strings().RestartConfirm}
	}
	if msg.Kind != models.NodeInput || msg.Input == nil {
		return Result{Ignored: true}
	}
	if s.inFlight {
		slog.Debug("Session.SubmitInput: submission already in flight", "sessionID", s.id)
		return Result{Ignored: true}
	}

	value = strings.TrimSpace(value)
	slog.Debug("Session.SubmitInput", "sessionID", s.id, "node", msg.NodeID, "action", msg.Input.ActionID)

	switch msg.Input.ActionID {
	case models.ActionSetName:
		if value == "" {
			// Empty names re-prompt silently; any non-empty name is fine.
			return Result{}
		}
		s.profile.DisplayName = value
		s.completeInputLocked(msg, value, graph.NodeAskEmail)
		return Result{}

	case models.ActionSetEmail:
		if err := models.ValidateEmail(value); err != nil {
			return s.inlineErrorLocked(msg, err)
		}
		s.profile.Email = value
		s.profile.RevealEmail = false
		s.completeInputLocked(msg, value, graph.NodeAskNationalID)
		return Result{}

	case models.ActionSetNationalID:
		digits := render.StripDigits(value)
		if len(digits) != models.NationalIDLength {
			return s.inlineErrorLocked(msg, models.ErrInvalidID)
		}
		s.profile.NationalID = digits
		s.profile.RevealID = false
		s.completeInputLocked(msg, render.MaskID(digits), graph.NodeSummary)
		return Result{}

	case models.ActionSetContact:
		if err := s.channel.ValidateContact(value); err != nil {
			return s.inlineErrorLocked(msg, err)
		}
		s.channelContact = value
		s.completeInputLocked(msg, value, graph.NodeTeamSelect)
		return Result{}

	case models.ActionSubmitClip:
		if err := models.ValidateLink(value); err != nil {
			return s.inlineErrorLocked(msg, err)
		}
		s.completeInputLocked(msg, value, "")
		s.submitClipLocked(ctx, value)
		return Result{}

	default:
		slog.Warn("Session.SubmitInput: unknown input action", "sessionID", s.id, "action", msg.Input.ActionID)
		return Result{Ignored: true}
	}
}

// inlineErrorLocked re-renders an interactive message in place with the
// localized message for err in its {{error}} slot.
func (s *Session) inlineErrorLocked(msg *models.ChatMessage, err error) Result {
	localized := s.graph.Strings().ForError(err)
	s.rerenderLocked(msg, localized)
	return Result{Message: localized}
}

// completeInputLocked finishes a successful free-input step: clears any
// inline error, freezes the prompt, echoes the accepted value as a user
// message and advances to next (empty next means the caller takes over).
func (s *Session) completeInputLocked(msg *models.ChatMessage, echo, next string) {
	msg.Active = false
	s.rerenderLocked(msg, "")
	s.pendingAction = ""
	s.pendingNodeID = ""
	s.appendUserEchoLocked(echo)
	if next != "" {
		s.scheduleAppend(next)
	}
}

// rerenderLocked re-renders a timeline message from its graph node with
// the session's current data. The message instance id stays stable so
// subscribers reconcile it as an update; option instance ids refresh.
func (s *Session) rerenderLocked(msg *models.ChatMessage, inlineError string) {
	node, ok := s.graph.Get(msg.NodeID)
	if !ok {
		return
	}
	data := s.injectDataLocked(node)
	if inlineError != "" {
		data["error"] = errorMarker + inlineError
	}
	msg.Text = render.Render(node.Text, data)
	msg.Data = data
	if node.Kind == models.NodeChoice {
		msg.Options = s.renderOptionsLocked(node, data)
	}
	s.emit(Event{Type: EventUpdate, Message: copyMessage(*msg)})
}

// toggleTeamLocked flips one team in the selection set and re-renders the
// carrying message in place. Toggling never appends to the timeline.
func (s *Session) toggleTeamLocked(msg *models.ChatMessage, teamID string) {
	if s.isSelectedLocked(teamID) {
		next := s.selection[:0]
		for _, id := range s.selection {
			if id != teamID {
				next = append(next, id)
			}
		}
		s.selection = next
	} else {
		s.selection = append(s.selection, teamID)
	}
	s.rerenderLocked(msg, "")
}

// confirmTeamsLocked validates the selection and hands the channel, the
// contact and the team set to the account service off the dialog lock.
func (s *Session) confirmTeamsLocked(ctx context.Context, msg *models.ChatMessage) Result {
	if len(s.selection) == 0 {
		return s.inlineErrorLocked(msg, models.ErrNothingSelected)
	}
	if s.cfg.Profiles == nil {
		s.scheduleAppend(graph.NodeErrorNotice)
		return Result{}
	}

	msg.Active = false
	s.rerenderLocked(msg, "")
	s.inFlight = true
	actorID := s.cfg.ActorID
	channel := string(s.channel)
	contact := s.channelContact
	teams := append([]string(nil), s.selection...)

	ep := s.epoch
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		outcome := s.cfg.Profiles.SaveContactChannel(ctx, actorID, channel, contact, teams)

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.epoch != ep {
			return
		}
		s.inFlight = false
		switch {
		case outcome.OK:
			s.scheduleAppend(graph.NodeNotifySaved)
		case outcome.Throttled:
			s.appendCooldownNoticeLocked()
		default:
			slog.Warn("Session.confirmTeams: save failed", "sessionID", s.id, "message", outcome.Message)
			s.scheduleAppend(graph.NodeErrorNotice)
		}
	}()
	return Result{}
}

// confirmSummaryLocked hands the gathered identity fields to the account
// service off the dialog lock. A throttled save keeps the conversation
// moving with a cooldown notice instead of blocking on the summary.
func (s *Session) confirmSummaryLocked(ctx context.Context, msg *models.ChatMessage) Result {
	if s.cfg.Profiles == nil {
		s.scheduleAppend(graph.NodeErrorNotice)
		return Result{}
	}

	msg.Active = false
	s.rerenderLocked(msg, "")
	s.inFlight = true
	actorID := s.cfg.ActorID
	name := s.profile.DisplayName
	email := s.profile.Email
	nationalID := s.profile.NationalID

	ep := s.epoch
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		outcome := s.cfg.Profiles.SaveProfile(ctx, actorID, name, email, nationalID)

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.epoch != ep {
			return
		}
		s.inFlight = false
		switch {
		case outcome.OK:
			s.scheduleAppend(graph.NodeMainMenu)
		case outcome.Throttled:
			s.appendCooldownNoticeLocked()
		default:
			slog.Warn("Session.confirmSummary: save failed", "sessionID", s.id, "message", outcome.Message)
			s.scheduleAppend(graph.NodeErrorNotice)
		}
	}()
	return Result{}
}

// submitClipLocked records a validated clip link through the clip service
// off the dialog lock.
func (s *Session) submitClipLocked(ctx context.Context, url string) {
	if s.cfg.Clips == nil {
		s.scheduleAppend(graph.NodeErrorNotice)
		return
	}

	s.inFlight = true
	actorID := s.cfg.ActorID

	ep := s.epoch
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		outcome := s.cfg.Clips.SubmitClip(ctx, actorID, url)

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.epoch != ep {
			return
		}
		s.inFlight = false
		switch {
		case outcome.OK:
			s.scheduleAppend(graph.NodeClipSaved)
		case outcome.Throttled:
			s.appendCooldownNoticeLocked()
		default:
			slog.Warn("Session.submitClip: save failed", "sessionID", s.id, "message", outcome.Message)
			s.scheduleAppend(graph.NodeErrorNotice)
		}
	}()
}

// listClipsLocked fetches the actor's clips off the dialog lock and
// appends the localized listing.
func (s *Session) listClipsLocked(ctx context.Context) {
	if s.cfg.Clips == nil {
		s.scheduleAppend(graph.NodeErrorNotice)
		return
	}

	actorID := s.cfg.ActorID
	ep := s.epoch
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		clips, err := s.cfg.Clips.ListClips(ctx, actorID)

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.epoch != ep {
			return
		}
		if err != nil {
			slog.Error("Session.listClips: list failed", "error", err, "sessionID", s.id)
			s.scheduleAppend(graph.NodeErrorNotice)
			return
		}
		s.scheduleAppendData(graph.NodeMyClips, map[string]string{
			"clipList": s.formatClipList(clips),
		})
	}()
}

// formatClipList renders the clip listing body, newest first.
func (s *Session) formatClipList(clips []models.Clip) string {
	if len(clips) == 0 {
		return s.graph.Strings().NoClips
	}
	lines := make([]string, 0, len(clips))
	for _, clip := range clips {
		lines = append(lines, fmt.Sprintf("• %s (%s)", clip.URL, clip.CreatedAt.Format("2006-01-02")))
	}
	return strings.Join(lines, "\n")
}

// appendCooldownNoticeLocked appends the localized throttle notice; the
// notice node chains back to the main menu on its own.
func (s *Session) appendCooldownNoticeLocked() {
	s.scheduleAppendData(graph.NodeCooldownNotice, map[string]string{
		"cooldownMessage": s.graph.Strings().CooldownMessage,
	})
}
