// Package store provides storage backends for FanFlow.
//
// It persists saved profiles, notification channels, submitted clips and
// cooldown records, with SQLite and PostgreSQL implementations plus an
// in-memory store for tests and development.
package store

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fanflow-app/fanflow/internal/models"
)

// Store is the persistence contract consumed by the collaborator services
// and the cooldown gateway.
type Store interface {
	// GetProfile returns the saved profile for an actor, or nil if none exists.
	GetProfile(actorID string) (*models.Profile, error)
	// SaveProfile upserts the identity fields of a profile.
	SaveProfile(p models.Profile) error
	// SaveContactChannel updates the notification channel of an existing
	// profile. Returns models.ErrProfileNotFound when no profile exists.
	SaveContactChannel(actorID, channel, contact string, teams []string) error
	// AddClip records a submitted clip.
	AddClip(c models.Clip) error
	// ListClips returns an actor's clips, newest first.
	ListClips(actorID string) ([]models.Clip, error)
	// AcquireCooldown atomically claims the cooldown window for one
	// (actorKey, actionType) pair. It returns true and arms the window when
	// the last permitted attempt is at least window old (or absent); it
	// returns false without mutating the record otherwise. The window
	// check happens inside the write, never as a separate read.
	AcquireCooldown(actorKey, actionType string, now time.Time, window time.Duration) (bool, error)
	// GetCooldown returns the cooldown record for a pair, or nil if none.
	GetCooldown(actorKey, actionType string) (*models.CooldownRecord, error)
	// Close releases the backing resources.
	Close() error
}

// Opts holds configuration options for store implementations.
type Opts struct {
	// DSN is the database connection string: a file path for SQLite, a
	// connection URL for Postgres.
	DSN string
}

// Option configures store construction.
type Option func(*Opts)

// WithDSN sets the database DSN.
// DetectDSNType classifies a DSN as "postgres" or "sqlite". Postgres is
// recognized by URL scheme or key=value connection strings; anything else
// is treated as a SQLite file path.
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite"
}

func WithDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

type cooldownKey struct {
	actorKey   string
	actionType string
}

// InMemoryStore is a mutex-guarded in-memory Store used in tests and
// development mode.
type InMemoryStore struct {
	mu        sync.Mutex
	profiles  map[string]models.Profile
	clips     []models.Clip
	cooldowns map[cooldownKey]models.CooldownRecord
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		profiles:  make(map[string]models.Profile),
		cooldowns: make(map[cooldownKey]models.CooldownRecord),
	}
}

// GetProfile returns the saved profile for an actor, or nil if none exists.
func (s *InMemoryStore) GetProfile(actorID string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[actorID]
	if !ok {
		return nil, nil
	}
	copied := p
	copied.Teams = append([]string(nil), p.Teams...)
	return &copied, nil
}

// SaveProfile upserts the identity fields of a profile.
func (s *InMemoryStore) SaveProfile(p models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	if existing, ok := s.profiles[p.ActorID]; ok {
		p.CreatedAt = existing.CreatedAt
		// Channel fields are owned by SaveContactChannel.
		p.Channel = existing.Channel
		p.ChannelContact = existing.ChannelContact
		p.Teams = existing.Teams
	} else {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	s.profiles[p.ActorID] = p
	return nil
}

// SaveContactChannel updates the notification channel of an existing profile.
func (s *InMemoryStore) SaveContactChannel(actorID, channel, contact string, teams []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[actorID]
	if !ok {
		return models.ErrProfileNotFound
	}
	p.Channel = channel
	p.ChannelContact = contact
	p.Teams = append([]string(nil), teams...)
	p.UpdatedAt = time.Now()
	s.profiles[actorID] = p
	return nil
}

// AddClip records a submitted clip.
func (s *InMemoryStore) AddClip(c models.Clip) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clips = append(s.clips, c)
	return nil
}

// ListClips returns an actor's clips, newest first.
func (s *InMemoryStore) ListClips(actorID string) ([]models.Clip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Clip
	for _, c := range s.clips {
		if c.ActorID == actorID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// AcquireCooldown atomically claims the cooldown window for a pair. The
// mutex makes check and write a single step, matching the conditional
// update the SQL stores perform.
func (s *InMemoryStore) AcquireCooldown(actorKey, actionType string, now time.Time, window time.Duration) (bool, error) {
	if actorKey == "" {
		return false, models.ErrEmptyActorKey
	}
	if actionType == "" {
		return false, models.ErrEmptyActionType
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := cooldownKey{actorKey: actorKey, actionType: actionType}
	rec, ok := s.cooldowns[key]
	if ok && now.Sub(rec.LastActivityAt) < window {
		return false, nil
	}
	rec.ActorKey = actorKey
	rec.ActionType = actionType
	rec.LastActivityAt = now
	rec.Counter++
	s.cooldowns[key] = rec
	return true, nil
}

// GetCooldown returns the cooldown record for a pair, or nil if none.
func (s *InMemoryStore) GetCooldown(actorKey, actionType string) (*models.CooldownRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.cooldowns[cooldownKey{actorKey: actorKey, actionType: actionType}]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error { return nil }
