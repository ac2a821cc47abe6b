package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

type staticToken string

func (s staticToken) GetToken(context.Context) (string, error) {
	return string(s), nil
}

type result struct {
	Name string `json:"name"`
}

func (r *result) Validate() error {
	if r.Name == "" {
		return errors.New("name is missing")
	}
	return nil
}

func TestDo_AttachesHeaders(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Write([]byte(`{"name":"Jane"}`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/", staticToken("abc"), time.Second)
	var out result
	err := c.Do(context.Background(), Request{
		Path:  "/auth/me",
		Query: url.Values{"x": {"1"}},
	}, &out)
	if err != nil {
		t.Fatal(err)
	}
	if out.Name != "Jane" {
		t.Errorf("unexpected body %+v", out)
	}
	if got.Header.Get("Authorization") != "Bearer abc" {
		t.Errorf("missing bearer header, got %q", got.Header.Get("Authorization"))
	}
	if got.Header.Get("Content-Type") != "application/json" {
		t.Errorf("missing content type")
	}
	if got.Header.Get("X-Request-ID") == "" {
		t.Errorf("missing request id")
	}
	if got.URL.Path != "/auth/me" || got.URL.Query().Get("x") != "1" {
		t.Errorf("unexpected url %s", got.URL)
	}
}

func TestDo_PublicAndEmptyToken(t *testing.T) {
	var auth []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = append(auth, r.Header.Get("Authorization"))
	}))
	defer srv.Close()

	ctx := context.Background()
	New(srv.URL, staticToken("abc"), time.Second).Do(ctx, Request{Path: "/auth/login", Public: true}, nil)
	New(srv.URL, staticToken(""), time.Second).Do(ctx, Request{Path: "/tasks"}, nil)

	for i, h := range auth {
		if h != "" {
			t.Errorf("request %d should not be authenticated, got %q", i, h)
		}
	}
}

func TestDo_ErrorBodies(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		req        Request
		wantDetail string
	}{
		{"string detail", 401, `{"detail":"Token expired"}`, Request{}, "Token expired"},
		{"object detail", 400, `{"detail":{"message":"Face too blurry","issues":["blur"]}}`, Request{}, "Face too blurry"},
		{"validation list", 422, `{"detail":[{"msg":"field required"},{"msg":"bad email"}]}`, Request{}, "field required; bad email"},
		{"error field", 400, `{"error":"No face found"}`, Request{}, "No face found"},
		{"unparseable default", 500, `<html>oops</html>`, Request{}, "An error occurred"},
		{"unparseable call site", 500, `oops`, Request{Fallback: "Login failed"}, "Login failed"},
		{"no detail default", 404, `{}`, Request{}, "request failed with status 404"},
		{"no detail call site", 401, `{}`, Request{DetailFallback: "Invalid credentials"}, "Invalid credentials"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := New(srv.URL, nil, time.Second).Do(context.Background(), tt.req, nil)
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %v", err)
			}
			if apiErr.Status != tt.status || apiErr.Detail != tt.wantDetail {
				t.Errorf("got %d %q, want %d %q", apiErr.Status, apiErr.Detail, tt.status, tt.wantDetail)
			}
		})
	}
}

func TestDo_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"other":1}`))
	}))
	defer srv.Close()

	var out result
	err := New(srv.URL, nil, time.Second).Do(context.Background(), Request{Path: "/x"}, &out)
	var malformed *MalformedResponseError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected *MalformedResponseError, got %v", err)
	}
	if code, _ := StatusOf(err); code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", code)
	}
}

func TestDo_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	err := New(srv.URL, nil, time.Second).Do(context.Background(), Request{Path: "/x"}, nil)
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected *NetworkError, got %v", err)
	}
	if err.Error() != "unable to reach the server" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if netErr.Unwrap() == nil {
		t.Error("cause should be kept")
	}
}

func TestRaw(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("format") == "csv" {
			w.Header().Set("Content-Type", "text/csv")
			w.Write([]byte("id,name\n1,Jane\n"))
			return
		}
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"detail":"Admins only"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, nil, time.Second)
	resp, err := c.Raw(context.Background(), Request{Path: "/attendance/export", Query: url.Values{"format": {"csv"}}})
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "id,name\n1,Jane\n" {
		t.Errorf("unexpected body %q", body)
	}

	_, err = c.Raw(context.Background(), Request{Path: "/attendance/export"})
	if code, ok := StatusOf(err); !ok || code != http.StatusForbidden || err.Error() != "Admins only" {
		t.Errorf("expected 403 Admins only, got %d %v", code, err)
	}
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		ok     bool
	}{
		{"client error passes through", &APIError{Status: 404, Detail: "Task not found"}, http.StatusNotFound, true},
		{"server error", &APIError{Status: 503, Detail: "busy"}, http.StatusBadGateway, true},
		{"odd status", &APIError{Status: 302, Detail: "moved"}, http.StatusBadGateway, true},
		{"network", &NetworkError{Err: errors.New("refused")}, http.StatusBadGateway, true},
		{"other", errors.New("boom"), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, ok := StatusOf(tt.err)
			if status != tt.status || ok != tt.ok {
				t.Errorf("StatusOf() = %d, %v; want %d, %v", status, ok, tt.status, tt.ok)
			}
		})
	}

	if !(&APIError{Status: 500}).Retryable() || (&APIError{Status: 409}).Retryable() {
		t.Error("only server-side failures are retryable")
	}
}
