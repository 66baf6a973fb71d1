// Package store provides storage backends for FanFlow.
//
// This file implements the PostgreSQL-backed store.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/fanflow-app/fanflow/internal/models"
	_ "github.com/lib/pq"
)

// Database connection pool configuration constants.
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresStore implements Store on a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("PostgresStore.NewPostgresStore: creating Postgres store", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}

	slog.Debug("Running Postgres migrations")
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Info("Postgres store ready")
	return &PostgresStore{db: db}, nil
}

// GetProfile retrieves the saved profile for an actor, or nil if none exists.
func (s *PostgresStore) GetProfile(actorID string) (*models.Profile, error) {
	query := `SELECT actor_id, display_name, email, national_id, channel, channel_contact, teams, created_at, updated_at
			  FROM profiles WHERE actor_id = $1`

	p, err := scanProfile(s.db.QueryRow(query, actorID))
	if err == sql.ErrNoRows {
		slog.Debug("PostgresStore GetProfile not found", "actorID", actorID)
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetProfile failed", "error", err, "actorID", actorID)
		return nil, err
	}
	return p, nil
}

// SaveProfile upserts the identity fields of a profile, preserving
// created_at and the channel fields owned by SaveContactChannel.
func (s *PostgresStore) SaveProfile(p models.Profile) error {
	now := time.Now()
	query := `
		INSERT INTO profiles (actor_id, display_name, email, national_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (actor_id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			email = EXCLUDED.email,
			national_id = EXCLUDED.national_id,
			updated_at = EXCLUDED.updated_at`

	_, err := s.db.Exec(query, p.ActorID, p.DisplayName, p.Email, nilIfEmpty(p.NationalID), now, now)
	if err != nil {
		slog.Error("PostgresStore SaveProfile failed", "error", err, "actorID", p.ActorID)
		return err
	}
	slog.Debug("PostgresStore SaveProfile succeeded", "actorID", p.ActorID)
	return nil
}

// SaveContactChannel updates the notification channel of an existing profile.
func (s *PostgresStore) SaveContactChannel(actorID, channel, contact string, teams []string) error {
	teamsJSON, err := marshalTeams(teams)
	if err != nil {
		slog.Error("PostgresStore SaveContactChannel teams marshal failed", "error", err, "actorID", actorID)
		return err
	}

	query := `UPDATE profiles SET channel = $1, channel_contact = $2, teams = $3, updated_at = $4 WHERE actor_id = $5`
	res, err := s.db.Exec(query, channel, contact, teamsJSON, time.Now(), actorID)
	if err != nil {
		slog.Error("PostgresStore SaveContactChannel failed", "error", err, "actorID", actorID)
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		slog.Debug("PostgresStore SaveContactChannel no profile", "actorID", actorID)
		return models.ErrProfileNotFound
	}
	slog.Debug("PostgresStore SaveContactChannel succeeded", "actorID", actorID, "channel", channel)
	return nil
}

// AddClip records a submitted clip.
func (s *PostgresStore) AddClip(c models.Clip) error {
	query := `INSERT INTO clips (id, actor_id, url, created_at) VALUES ($1, $2, $3, $4)`
	_, err := s.db.Exec(query, c.ID, c.ActorID, c.URL, c.CreatedAt)
	if err != nil {
		slog.Error("PostgresStore AddClip failed", "error", err, "actorID", c.ActorID)
		return err
	}
	slog.Debug("PostgresStore AddClip succeeded", "actorID", c.ActorID, "clipID", c.ID)
	return nil
}

// ListClips returns an actor's clips, newest first.
func (s *PostgresStore) ListClips(actorID string) ([]models.Clip, error) {
	query := `SELECT id, actor_id, url, created_at FROM clips WHERE actor_id = $1 ORDER BY created_at DESC`
	rows, err := s.db.Query(query, actorID)
	if err != nil {
		slog.Error("PostgresStore ListClips failed", "error", err, "actorID", actorID)
		return nil, err
	}
	defer rows.Close()

	var clips []models.Clip
	for rows.Next() {
		var c models.Clip
		if err := rows.Scan(&c.ID, &c.ActorID, &c.URL, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan clip failed: %w", err)
		}
		clips = append(clips, c)
	}
	return clips, rows.Err()
}

// AcquireCooldown performs the window check inside a single conditional
// upsert; see SQLiteStore.AcquireCooldown.
func (s *PostgresStore) AcquireCooldown(actorKey, actionType string, now time.Time, window time.Duration) (bool, error) {
	if actorKey == "" {
		return false, models.ErrEmptyActorKey
	}
	if actionType == "" {
		return false, models.ErrEmptyActionType
	}

	query := `
		INSERT INTO cooldowns (actor_key, action_type, last_activity_at, counter)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (actor_key, action_type) DO UPDATE SET
			last_activity_at = EXCLUDED.last_activity_at,
			counter = cooldowns.counter + 1
		WHERE EXCLUDED.last_activity_at - cooldowns.last_activity_at >= $4`

	res, err := s.db.Exec(query, actorKey, actionType, now.Unix(), int64(window.Seconds()))
	if err != nil {
		slog.Error("PostgresStore AcquireCooldown failed", "error", err, "actorKey", actorKey, "actionType", actionType)
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	allowed := affected > 0
	slog.Debug("PostgresStore AcquireCooldown", "actorKey", actorKey, "actionType", actionType, "allowed", allowed)
	return allowed, nil
}

// GetCooldown returns the cooldown record for a pair, or nil if none.
func (s *PostgresStore) GetCooldown(actorKey, actionType string) (*models.CooldownRecord, error) {
	query := `SELECT actor_key, action_type, last_activity_at, counter FROM cooldowns
			  WHERE actor_key = $1 AND action_type = $2`

	var rec models.CooldownRecord
	var lastUnix int64
	err := s.db.QueryRow(query, actorKey, actionType).Scan(&rec.ActorKey, &rec.ActionType, &lastUnix, &rec.Counter)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetCooldown failed", "error", err, "actorKey", actorKey, "actionType", actionType)
		return nil, err
	}
	rec.LastActivityAt = time.Unix(lastUnix, 0)
	return &rec, nil
}

// Close closes the Postgres database connection.
func (s *PostgresStore) Close() error {
	slog.Debug("Closing Postgres database connection")
	return s.db.Close()
}
