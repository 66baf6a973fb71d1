package store

import (
	"database/sql"

	"github.com/fanflow-app/fanflow/internal/models"
)

// nilIfEmpty returns nil if s is empty, otherwise returns s.
// Used for nullable database columns.
func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// scanProfile scans a Profile from a single sql.Row shared by the SQLite
// and Postgres stores (identical column order).
func scanProfile(row *sql.Row) (*models.Profile, error) {
	var p models.Profile
	var nationalID, channel, contact, teams sql.NullString
	err := row.Scan(
		&p.ActorID, &p.DisplayName, &p.Email, &nationalID,
		&channel, &contact, &teams, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.NationalID = nationalID.String
	p.Channel = channel.String
	p.ChannelContact = contact.String
	p.Teams = unmarshalTeams(teams.String)
	return &p, nil
}
