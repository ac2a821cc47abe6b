// Package session persists the operator's login (token and profile) so a
// console restart keeps the session, the way a browser keeps local storage.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"attendly_console/db"
	"attendly_console/logger"
	"attendly_console/models"
)

const (
	tokenKey = "access_token"
	userKey  = "user"
)

// ErrNoToken is returned by Claims when nobody is logged in.
var ErrNoToken = errors.New("no session token")

type Store struct {
	db      *sql.DB
	dialect string
	log     *logrus.Entry

	getQuery    string
	upsertQuery string
	deleteQuery string
}

func NewStore(conn *sql.DB, dialect string) *Store {
	return &Store{
		db:      conn,
		dialect: dialect,
		log:     logger.For("session"),
		getQuery: db.Rebind(dialect,
			`SELECT value FROM session_entries WHERE key = ?`),
		upsertQuery: db.Rebind(dialect,
			`INSERT INTO session_entries (key, value, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`),
		deleteQuery: db.Rebind(dialect,
			`DELETE FROM session_entries WHERE key = ?`),
	}
}

func (s *Store) get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, s.getQuery, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("error reading %s: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) set(ctx context.Context, key, value string) error {
	if _, err := s.db.ExecContext(ctx, s.upsertQuery, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("error writing %s: %w", key, err)
	}
	return nil
}

func (s *Store) remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, s.deleteQuery, key); err != nil {
		return fmt.Errorf("error removing %s: %w", key, err)
	}
	return nil
}

// GetToken returns the stored token, or "" when there is none.
func (s *Store) GetToken(ctx context.Context) (string, error) {
	token, _, err := s.get(ctx, tokenKey)
	return token, err
}

func (s *Store) SetToken(ctx context.Context, token string) error {
	return s.set(ctx, tokenKey, token)
}

func (s *Store) RemoveToken(ctx context.Context) error {
	return s.remove(ctx, tokenKey)
}

// GetUser returns the stored profile. A missing or unreadable profile is
// reported as nil without an error.
func (s *Store) GetUser(ctx context.Context) (*models.User, error) {
	raw, ok, err := s.get(ctx, userKey)
	if err != nil || !ok {
		return nil, err
	}

	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.log.WithError(err).Warn("Discarding malformed stored user")
		return nil, nil
	}
	return &user, nil
}

func (s *Store) SetUser(ctx context.Context, user models.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("error encoding user: %w", err)
	}
	return s.set(ctx, userKey, string(raw))
}

func (s *Store) RemoveUser(ctx context.Context) error {
	return s.remove(ctx, userKey)
}

// Login stores a fresh session, replacing any previous one.
func (s *Store) Login(ctx context.Context, token string, user models.User) error {
	if err := s.SetToken(ctx, token); err != nil {
		return err
	}
	if err := s.SetUser(ctx, user); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"email": user.Email, "role": user.Role}).Info("Session started")
	return nil
}

func (s *Store) Logout(ctx context.Context) error {
	if err := s.RemoveToken(ctx); err != nil {
		return err
	}
	if err := s.RemoveUser(ctx); err != nil {
		return err
	}
	s.log.Info("Session cleared")
	return nil
}

// Claims decodes the stored token without checking its signature. The
// console cannot verify tokens; it only reads who is logged in and when the
// token expires.
func (s *Store) Claims(ctx context.Context) (*models.Claims, error) {
	token, err := s.GetToken(ctx)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, ErrNoToken
	}
	return ParseClaims(token)
}

func ParseClaims(token string) (*models.Claims, error) {
	claims := &models.Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("error decoding token: %w", err)
	}
	return claims, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
