// Package cooldown implements the rate-limiting gateway that gates every
// state-changing action the dialog triggers. Records are keyed per
// (actor, action type) so concurrent sessions for different actors never
// interfere. The window check is a single atomic conditional write in the
// backing store; callers treat "allowed" as advisory throttling, not a
// mutual-exclusion lock.
package cooldown

import (
	"context"
	"log/slog"
	"time"

	"github.com/fanflow-app/fanflow/internal/models"
	"github.com/fanflow-app/fanflow/internal/store"
)

// Action identifies the throttled action type of a cooldown record.
type Action string

const (
	ActionProfileSave  Action = "profile-save"
	ActionContactSave  Action = "contact-save"
	ActionClipSubmit   Action = "clip-submit"
	ActionLoginAttempt Action = "login-attempt"
)

// RetryLaterMessage is the generic user-facing rejection text. Callers
// with localized copy substitute their own.
const RetryLaterMessage = "Too many attempts. Please try again later."

// Gateway is the rate-limiting contract consumed before any gated write.
type Gateway interface {
	// Check records an attempt for (actorKey, action). The first attempt
	// for a pair is always allowed; later attempts are allowed only when
	// at least window has elapsed since the last permitted one. A denied
	// attempt never mutates the record.
	Check(ctx context.Context, actorKey string, action Action, window time.Duration) models.CooldownResult
}

// StoreGateway implements Gateway on a store.Store.
type StoreGateway struct {
	store store.Store
	now   func() time.Time
}

// NewStoreGateway creates a gateway backed by the given store.
func NewStoreGateway(st store.Store) *StoreGateway {
	return &StoreGateway{store: st, now: time.Now}
}

// Check implements Gateway. Any unexpected store error degrades to
// "denied": gated actions are destructive, so failing open is worse than
// asking the user to retry. The internal error is logged, never surfaced.
func (g *StoreGateway) Check(ctx context.Context, actorKey string, action Action, window time.Duration) models.CooldownResult {
	allowed, err := g.store.AcquireCooldown(actorKey, string(action), g.now(), window)
	if err != nil {
		slog.Error("StoreGateway.Check: store error, treating as denied", "error", err, "actorKey", actorKey, "action", action)
		return models.CooldownResult{Allowed: false, Message: RetryLaterMessage}
	}
	if !allowed {
		slog.Debug("StoreGateway.Check: throttled", "actorKey", actorKey, "action", action, "window", window)
		return models.CooldownResult{Allowed: false, Message: RetryLaterMessage}
	}
	slog.Debug("StoreGateway.Check: allowed", "actorKey", actorKey, "action", action)
	return models.CooldownResult{Allowed: true}
}
