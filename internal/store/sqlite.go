// Package store provides storage backends for FanFlow.
//
// This file implements the SQLite-backed store.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "embed"

	"github.com/fanflow-app/fanflow/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirPermissions defines the default permissions for database directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore implements Store on a local SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN (a file
// path). The parent directory is created if it does not exist.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	slog.Debug("Running SQLite migrations")
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Info("SQLite store ready", "path", dsn)
	return &SQLiteStore{db: db}, nil
}

// GetProfile retrieves the saved profile for an actor, or nil if none exists.
func (s *SQLiteStore) GetProfile(actorID string) (*models.Profile, error) {
	query := `SELECT actor_id, display_name, email, national_id, channel, channel_contact, teams, created_at, updated_at
			  FROM profiles WHERE actor_id = ?`

	p, err := scanProfile(s.db.QueryRow(query, actorID))
	if err == sql.ErrNoRows {
		slog.Debug("SQLiteStore GetProfile not found", "actorID", actorID)
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetProfile failed", "error", err, "actorID", actorID)
		return nil, err
	}
	return p, nil
}

// SaveProfile upserts the identity fields of a profile, preserving
// created_at and the channel fields owned by SaveContactChannel.
func (s *SQLiteStore) SaveProfile(p models.Profile) error {
	now := time.Now()
	query := `
		INSERT INTO profiles (actor_id, display_name, email, national_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(actor_id) DO UPDATE SET
			display_name = excluded.display_name,
			email = excluded.email,
			national_id = excluded.national_id,
			updated_at = excluded.updated_at`

	_, err := s.db.Exec(query, p.ActorID, p.DisplayName, p.Email, nilIfEmpty(p.NationalID), now, now)
	if err != nil {
		slog.Error("SQLiteStore SaveProfile failed", "error", err, "actorID", p.ActorID)
		return err
	}
	slog.Debug("SQLiteStore SaveProfile succeeded", "actorID", p.ActorID)
	return nil
}

// SaveContactChannel updates the notification channel of an existing profile.
func (s *SQLiteStore) SaveContactChannel(actorID, channel, contact string, teams []string) error {
	teamsJSON, err := marshalTeams(teams)
	if err != nil {
		slog.Error("SQLiteStore SaveContactChannel teams marshal failed", "error", err, "actorID", actorID)
		return err
	}

	query := `UPDATE profiles SET channel = ?, channel_contact = ?, teams = ?, updated_at = ? WHERE actor_id = ?`
	res, err := s.db.Exec(query, channel, contact, teamsJSON, time.Now(), actorID)
	if err != nil {
		slog.Error("SQLiteStore SaveContactChannel failed", "error", err, "actorID", actorID)
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		slog.Debug("SQLiteStore SaveContactChannel no profile", "actorID", actorID)
		return models.ErrProfileNotFound
	}
	slog.Debug("SQLiteStore SaveContactChannel succeeded", "actorID", actorID, "channel", channel)
	return nil
}

// AddClip records a submitted clip.
func (s *SQLiteStore) AddClip(c models.Clip) error {
	query := `INSERT INTO clips (id, actor_id, url, created_at) VALUES (?, ?, ?, ?)`
	_, err := s.db.Exec(query, c.ID, c.ActorID, c.URL, c.CreatedAt)
	if err != nil {
		slog.Error("SQLiteStore AddClip failed", "error", err, "actorID", c.ActorID)
		return err
	}
	slog.Debug("SQLiteStore AddClip succeeded", "actorID", c.ActorID, "clipID", c.ID)
	return nil
}

// ListClips returns an actor's clips, newest first.
func (s *SQLiteStore) ListClips(actorID string) ([]models.Clip, error) {
	query := `SELECT id, actor_id, url, created_at FROM clips WHERE actor_id = ? ORDER BY created_at DESC`
	rows, err := s.db.Query(query, actorID)
	if err != nil {
		slog.Error("SQLiteStore ListClips failed", "error", err, "actorID", actorID)
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
// upsert: the first attempt inserts the record, later attempts update it
// only when the stored timestamp is at least window old. Rows affected
// tells whether the attempt was permitted.
func (s *SQLiteStore) AcquireCooldown(actorKey, actionType string, now time.Time, window time.Duration) (bool, error) {
	if actorKey == "" {
		return false, models.ErrEmptyActorKey
	}
	if actionType == "" {
		return false, models.ErrEmptyActionType
	}

	query := `
		INSERT INTO cooldowns (actor_key, action_type, last_activity_at, counter)
		VALUES (?, ?, ?, 1)
		ON CONFLICT(actor_key, action_type) DO UPDATE SET
			last_activity_at = excluded.last_activity_at,
			counter = cooldowns.counter + 1
		WHERE excluded.last_activity_at - cooldowns.last_activity_at >= ?`

	res, err := s.db.Exec(query, actorKey, actionType, now.Unix(), int64(window.Seconds()))
	if err != nil {
		slog.Error("SQLiteStore AcquireCooldown failed", "error", err, "actorKey", actorKey, "actionType", actionType)
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	allowed := affected > 0
	slog.Debug("SQLiteStore AcquireCooldown", "actorKey", actorKey, "actionType", actionType, "allowed", allowed)
	return allowed, nil
}

// GetCooldown returns the cooldown record for a pair, or nil if none.
func (s *SQLiteStore) GetCooldown(actorKey, actionType string) (*models.CooldownRecord, error) {
	query := `SELECT actor_key, action_type, last_activity_at, counter FROM cooldowns
			  WHERE actor_key = ? AND action_type = ?`

	var rec models.CooldownRecord
	var lastUnix int64
	err := s.db.QueryRow(query, actorKey, actionType).Scan(&rec.ActorKey, &rec.ActionType, &lastUnix, &rec.Counter)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetCooldown failed", "error", err, "actorKey", actorKey, "actionType", actionType)
		return nil, err
	}
	rec.LastActivityAt = time.Unix(lastUnix, 0)
	return &rec, nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	slog.Debug("Closing SQLite database connection")
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close SQLite database", "error", err)
	}
	return err
}

// marshalTeams encodes a team id list as JSON for the teams column.
func marshalTeams(teams []string) (string, error) {
	if len(teams) == 0 {
		return "", nil
	}
	b, err := json.Marshal(teams)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// unmarshalTeams decodes the teams column; malformed data yields an empty
// list rather than a failure.
func unmarshalTeams(raw string) []string {
	if raw == "" {
		return nil
	}
	var teams []string
	if err := json.Unmarshal([]byte(raw), &teams); err != nil {
		slog.Warn("store: malformed teams column, ignoring", "error", err)
		return nil
	}
	return teams
}
