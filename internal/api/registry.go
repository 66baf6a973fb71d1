package api

import (
	"log/slog"
	"sync"

	"github.com/fanflow-app/fanflow/internal/dialog"
	"github.com/fanflow-app/fanflow/internal/models"
	"github.com/fanflow-app/fanflow/internal/util"
)

// MaxSessionsPerActor bounds live sessions per actor; opening one more
// evicts the actor's oldest session.
const MaxSessionsPerActor = 4

// Registry tracks live dialog sessions by id and enforces the per-actor
// session cap.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*dialog.Session
	byActor  map[string][]string // session ids in creation order
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*dialog.Session),
		byActor:  make(map[string][]string),
	}
}

// Create builds and registers a new session for cfg. The caller starts it.
func (r *Registry) Create(cfg dialog.Config) *dialog.Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ids := r.byActor[cfg.ActorID]; len(ids) >= MaxSessionsPerActor {
		oldest := ids[0]
		r.byActor[cfg.ActorID] = ids[1:]
		if old, ok := r.sessions[oldest]; ok {
			delete(r.sessions, oldest)
			go old.Close()
			slog.Debug("Registry.Create: evicted oldest session", "actorID", cfg.ActorID, "sessionID", oldest)
		}
	}

	sess := dialog.NewSession(util.GenerateSessionID(), cfg)
	r.sessions[sess.ID()] = sess
	r.byActor[cfg.ActorID] = append(r.byActor[cfg.ActorID], sess.ID())
	slog.Info("Registry.Create: session created", "sessionID", sess.ID(), "actorID", cfg.ActorID, "locale", sess.Locale())
	return sess
}

// Get returns the session for id.
func (r *Registry) Get(id string) (*dialog.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[id]
	if !ok {
		return nil, models.ErrSessionNotFound
	}
	return sess, nil
}

// Remove drops and closes the session for id. Unknown ids are a no-op.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	sess, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
		ids := r.byActor[sess.ActorID()]
		for i, sid := range ids {
			if sid == id {
				r.byActor[sess.ActorID()] = append(ids[:i], ids[i+1:]...)
				break
			}
		}
	}
	r.mu.Unlock()
	if ok {
		sess.Close()
	}
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// CloseAll flushes and closes every live session. Used on shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	sessions := make([]*dialog.Session, 0, len(r.sessions))
	for _, sess := range r.sessions {
		sessions = append(sessions, sess)
	}
	r.sessions = make(map[string]*dialog.Session)
	r.byActor = make(map[string][]string)
	r.mu.Unlock()

	for _, sess := range sessions {
		sess.Flush()
		sess.Close()
	}
	slog.Info("Registry.CloseAll: all sessions closed", "count", len(sessions))
}
