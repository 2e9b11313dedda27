package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Credentials is the signed-in account of a session. A token is only
// valid for the API it was issued by.
type Credentials struct {
	APIURL   string
	Token    string
	UserID   string
	Username string
	Email    string
	SavedAt  time.Time
}

// SaveCredentials stores c, replacing any previous sign-in.
func (db *DB) SaveCredentials(c Credentials) error {
	if c.Token == "" {
		return errors.New("save credentials: empty token")
	}
	if c.SavedAt.IsZero() {
		c.SavedAt = time.Now()
	}
	_, err := db.Exec(`
		INSERT INTO credentials (id, api_url, token, user_id, username, email, saved_at)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			api_url = excluded.api_url,
			token = excluded.token,
			user_id = excluded.user_id,
			username = excluded.username,
			email = excluded.email,
			saved_at = excluded.saved_at`,
		c.APIURL, c.Token, c.UserID, c.Username, c.Email, c.SavedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}

// LoadCredentials returns the stored sign-in, or nil if there is none.
func (db *DB) LoadCredentials() (*Credentials, error) {
	var (
		c       Credentials
		savedAt int64
	)
	err := db.QueryRow(`
		SELECT api_url, token, user_id, username, email, saved_at
		FROM credentials WHERE id = 1`,
	).Scan(&c.APIURL, &c.Token, &c.UserID, &c.Username, &c.Email, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	c.SavedAt = time.UnixMilli(savedAt)
	return &c, nil
}

// ClearCredentials forgets the stored sign-in.
func (db *DB) ClearCredentials() error {
	if _, err := db.Exec(`DELETE FROM credentials`); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}
