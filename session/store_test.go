package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"attendly_console/db"
	"attendly_console/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	conn, err := db.Initialize(db.Config{Type: db.DialectSQLite, URL: ":memory:"})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := db.InitSchema(conn); err != nil {
		t.Fatal(err)
	}
	return NewStore(conn, db.DialectSQLite)
}

func TestStore_TokenRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if token, err := s.GetToken(ctx); err != nil || token != "" {
		t.Fatalf("expected empty token, got %q (%v)", token, err)
	}
	if err := s.SetToken(ctx, "first"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetToken(ctx, "second"); err != nil {
		t.Fatal(err)
	}
	if token, _ := s.GetToken(ctx); token != "second" {
		t.Errorf("expected overwritten token, got %q", token)
	}
	if err := s.RemoveToken(ctx); err != nil {
		t.Fatal(err)
	}
	if token, _ := s.GetToken(ctx); token != "" {
		t.Errorf("expected token removed, got %q", token)
	}
}

func TestStore_UserRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	want := models.User{ID: 7, Name: "Jane", Email: "jane@example.com", Role: models.RoleEmployee}
	if err := s.Login(ctx, "tok", want); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetUser(ctx)
	if err != nil || got == nil {
		t.Fatalf("expected user, got %v (%v)", got, err)
	}
	if *got != want {
		t.Errorf("got %+v, want %+v", *got, want)
	}

	if err := s.Logout(ctx); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.GetUser(ctx); got != nil {
		t.Errorf("expected no user after logout, got %+v", got)
	}
	if token, _ := s.GetToken(ctx); token != "" {
		t.Errorf("expected no token after logout, got %q", token)
	}
}

func TestStore_MalformedUserReadsAsAbsent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.set(ctx, userKey, "{not json"); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetUser(ctx)
	if err != nil {
		t.Fatalf("malformed user should not be an error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil user, got %+v", got)
	}
}

func TestStore_Claims(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.Claims(ctx); !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}

	exp := time.Now().Add(-time.Hour).Truncate(time.Second)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, models.Claims{
		UserID: 12,
		Name:   "Jane",
		Role:   models.RoleManager,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "jane@example.com",
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := token.SignedString([]byte("backend-secret"))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetToken(ctx, signed); err != nil {
		t.Fatal(err)
	}

	claims, err := s.Claims(ctx)
	if err != nil {
		t.Fatalf("expired tokens still decode: %v", err)
	}
	if claims.UserID != 12 || claims.Role != models.RoleManager || claims.Subject != "jane@example.com" {
		t.Errorf("unexpected claims %+v", claims)
	}
	if !claims.ExpiresAt.Time.Equal(exp) {
		t.Errorf("expected expiry %v, got %v", exp, claims.ExpiresAt.Time)
	}
}
