// Package testutil holds shared fixtures: a fake backend, an in-memory
// session store, and request helpers.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"attendly_console/db"
	"attendly_console/models"
	"attendly_console/session"
)

// NewSessionStore returns a store over a fresh in-memory sqlite database.
func NewSessionStore(t *testing.T) *session.Store {
	t.Helper()

	conn, err := db.Initialize(db.Config{Type: db.DialectSQLite, URL: ":memory:"})
	if err != nil {
		t.Fatalf("Failed to open session database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.InitSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return session.NewStore(conn, db.DialectSQLite)
}

// MakeToken signs a token shaped like the backend's.
func MakeToken(t *testing.T, user models.User) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, models.Claims{
		UserID: user.ID,
		Name:   user.Name,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return signed
}

// LoginAs stores a session for user and returns its token.
func LoginAs(t *testing.T, store *session.Store, user models.User) string {
	t.Helper()

	token := MakeToken(t, user)
	if err := store.Login(context.Background(), token, user); err != nil {
		t.Fatalf("Failed to store session: %v", err)
	}
	return token
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}) *http.Request {
	if body == nil {
		return httptest.NewRequest(method, path, nil)
	}
	jsonBody, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// Serve runs req through h and returns the recorder.
func Serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(bytes.NewReader(w.Body.Bytes())).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
