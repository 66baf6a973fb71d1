// Package service implements the collaborator contracts the dialog core
// consumes: profile reads/saves, notification-channel saves and clip
// submission, each cooldown-gated through the gateway before any write.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/fanflow-app/fanflow/internal/cooldown"
	"github.com/fanflow-app/fanflow/internal/models"
	"github.com/fanflow-app/fanflow/internal/store"
	"github.com/fanflow-app/fanflow/internal/util"
)

// Windows holds the cooldown window per gated action.
type Windows struct {
	ProfileSave  time.Duration
	ContactSave  time.Duration
	ClipSubmit   time.Duration
	LoginAttempt time.Duration
}

// DefaultWindows returns the production default cooldown windows.
func DefaultWindows() Windows {
	return Windows{
		ProfileSave:  60 * time.Second,
		ContactSave:  300 * time.Second,
		ClipSubmit:   120 * time.Second,
		LoginAttempt: 30 * time.Second,
	}
}

// Accounts provides profile and notification-channel persistence.
type Accounts struct {
	store   store.Store
	gate    cooldown.Gateway
	windows Windows
}

// NewAccounts creates the account service.
func NewAccounts(st store.Store, gate cooldown.Gateway, windows Windows) *Accounts {
	return &Accounts{store: st, gate: gate, windows: windows}
}

// GetProfile reads a previously saved profile; nil when none exists.
func (a *Accounts) GetProfile(ctx context.Context, actorID string) (*models.Profile, error) {
	return a.store.GetProfile(actorID)
}

// SaveProfile upserts the identity fields of a profile, subject to the
// profile-save cooldown window. A throttled attempt performs no write.
func (a *Accounts) SaveProfile(ctx context.Context, actorID, name, email, nationalID string) models.SaveOutcome {
	slog.Debug("Accounts.SaveProfile: saving", "actorID", actorID)
	if res := a.gate.Check(ctx, actorID, cooldown.ActionProfileSave, a.windows.ProfileSave); !res.Allowed {
		return models.SaveOutcome{Throttled: true, Message: res.Message}
	}
	err := a.store.SaveProfile(models.Profile{
		ActorID:     actorID,
		DisplayName: name,
		Email:       email,
		NationalID:  nationalID,
	})
	if err != nil {
		slog.Error("Accounts.SaveProfile: store error", "error", err, "actorID", actorID)
		return models.SaveOutcome{Message: "Failed to save profile"}
	}
	slog.Info("Accounts.SaveProfile: saved", "actorID", actorID)
	return models.SaveOutcome{OK: true}
}

// SaveContactChannel upserts the notification channel for an existing
// profile, subject to the (longer) contact-save cooldown window.
func (a *Accounts) SaveContactChannel(ctx context.Context, actorID, channel, contact string, teams []string) models.SaveOutcome {
	slog.Debug("Accounts.SaveContactChannel: saving", "actorID", actorID, "channel", channel)
	if res := a.gate.Check(ctx, actorID, cooldown.ActionContactSave, a.windows.ContactSave); !res.Allowed {
		return models.SaveOutcome{Throttled: true, Message: res.Message}
	}
	err := a.store.SaveContactChannel(actorID, channel, contact, teams)
	if err == models.ErrProfileNotFound {
		slog.Warn("Accounts.SaveContactChannel: no profile", "actorID", actorID)
		return models.SaveOutcome{NotFound: true, Message: "Profile not found"}
	}
	if err != nil {
		slog.Error("Accounts.SaveContactChannel: store error", "error", err, "actorID", actorID)
		return models.SaveOutcome{Message: "Failed to save notification channel"}
	}
	slog.Info("Accounts.SaveContactChannel: saved", "actorID", actorID, "channel", channel)
	return models.SaveOutcome{OK: true}
}

// CheckLoginRate throttles pre-authentication attempts per client IP.
// Same contract as the gateway, keyed by IP instead of user id.
func (a *Accounts) CheckLoginRate(ctx context.Context, ip string) models.CooldownResult {
	return a.gate.Check(ctx, cooldown.IPActorKey(ip), cooldown.ActionLoginAttempt, a.windows.LoginAttempt)
}

// Clips records and lists user-submitted clip links.
type Clips struct {
	store   store.Store
	gate    cooldown.Gateway
	windows Windows
}

// NewClips creates the clip service.
func NewClips(st store.Store, gate cooldown.Gateway, windows Windows) *Clips {
	return &Clips{store: st, gate: gate, windows: windows}
}

// SubmitClip records a clip link, subject to the clip-submit cooldown.
func (c *Clips) SubmitClip(ctx context.Context, actorID, url string) models.SaveOutcome {
	if err := models.ValidateLink(url); err != nil {
		return models.SaveOutcome{Message: "Link must start with http:// or https://"}
	}
	if res := c.gate.Check(ctx, actorID, cooldown.ActionClipSubmit, c.windows.ClipSubmit); !res.Allowed {
		return models.SaveOutcome{Throttled: true, Message: res.Message}
	}
	err := c.store.AddClip(models.Clip{
		ID:        util.GenerateClipID(),
		ActorID:   actorID,
		URL:       url,
		CreatedAt: time.Now(),
	})
	if err != nil {
		slog.Error("Clips.SubmitClip: store error", "error", err, "actorID", actorID)
		return models.SaveOutcome{Message: "Failed to record clip"}
	}
	slog.Info("Clips.SubmitClip: recorded", "actorID", actorID)
	return models.SaveOutcome{OK: true}
}

// ListClips returns an actor's clips, newest first.
func (c *Clips) ListClips(ctx context.Context, actorID string) ([]models.Clip, error) {
	return c.store.ListClips(actorID)
}
