package db

import (
	"database/sql"
	"fmt"
)

const Schema = `
-- Durable session entries (token, user profile)
CREATE TABLE IF NOT EXISTS session_entries (
    key VARCHAR(64) PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL
);
`

// InitSchema creates the session tables. Safe to call on every start.
func InitSchema(db *sql.DB) error {
	if _, err := db.Exec(Schema); err != nil {
		return fmt.Errorf("error creating session schema: %w", err)
	}
	return nil
}
