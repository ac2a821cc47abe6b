package testutil

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
)

// Call is one request the fake backend received.
type Call struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   []byte
}

// Backend is a fake of the REST API. Handlers can be registered or replaced
// at any time; every request is recorded before it is dispatched.
type Backend struct {
	Server *httptest.Server

	mu       sync.Mutex
	handlers map[string]gin.HandlerFunc
	calls    []Call
}

func NewBackend(t *testing.T) *Backend {
	t.Helper()
	gin.SetMode(gin.TestMode)

	b := &Backend{handlers: make(map[string]gin.HandlerFunc)}
	r := gin.New()
	r.NoRoute(b.dispatch)

	b.Server = httptest.NewServer(r)
	t.Cleanup(b.Server.Close)
	return b
}

func (b *Backend) URL() string {
	return b.Server.URL
}

func (b *Backend) dispatch(c *gin.Context) {
	body, _ := io.ReadAll(c.Request.Body)
	c.Request.Body = io.NopCloser(bytes.NewReader(body))

	key := c.Request.Method + " " + c.Request.URL.Path

	b.mu.Lock()
	b.calls = append(b.calls, Call{
		Method: c.Request.Method,
		Path:   c.Request.URL.Path,
		Query:  c.Request.URL.RawQuery,
		Auth:   c.GetHeader("Authorization"),
		Body:   body,
	})
	h, ok := b.handlers[key]
	b.mu.Unlock()

	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not Found"})
		return
	}
	h(c)
}

// Handle registers h for method and exact path.
func (b *Backend) Handle(method, path string, h gin.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[method+" "+path] = h
}

// JSON registers a fixed JSON answer.
func (b *Backend) JSON(method, path string, status int, body any) {
	b.Handle(method, path, func(c *gin.Context) {
		c.JSON(status, body)
	})
}

// Calls returns the recorded requests for method and path.
func (b *Backend) Calls(method, path string) []Call {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []Call
	for _, call := range b.calls {
		if call.Method == method && call.Path == path {
			out = append(out, call)
		}
	}
	return out
}

func (b *Backend) Count(method, path string) int {
	return len(b.Calls(method, path))
}
