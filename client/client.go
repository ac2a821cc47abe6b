// Package client is the single path from the console to the backend REST
// API. It attaches the session token, decodes JSON, and turns failures into
// typed errors.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"attendly_console/logger"
)

const defaultFallback = "An error occurred"

// TokenSource supplies the bearer token for each call. An empty token means
// the request goes out unauthenticated.
type TokenSource interface {
	GetToken(ctx context.Context) (string, error)
}

type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	log     *logrus.Entry
}

func New(baseURL string, tokens TokenSource, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		log:     logger.For("client"),
	}
}

type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	// Accept overrides the default application/json.
	Accept string
	// Fallback is the error message when an error body cannot be parsed.
	Fallback string
	// DetailFallback is the error message when an error body parses but
	// carries no detail. Defaults to a message with the status code.
	DetailFallback string
	// Public requests never carry the bearer token.
	Public bool
}

type validator interface {
	Validate() error
}

// Do sends req and decodes a 2xx JSON body into out. A nil out discards the
// body. If out has a Validate method it is run on the decoded value.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	resp, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Method: req.Method, Path: req.Path, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, body, req)
	}

	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return &MalformedResponseError{Path: req.Path, Err: errors.New("empty body")}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &MalformedResponseError{Path: req.Path, Err: err}
	}
	if v, ok := out.(validator); ok {
		if err := v.Validate(); err != nil {
			return &MalformedResponseError{Path: req.Path, Err: err}
		}
	}
	return nil
}

// Raw sends req and hands back the 2xx response for bodies that are not
// JSON. The caller closes the body. Non-2xx answers are decoded as in Do.
func (c *Client) Raw(ctx context.Context, req Request) (*http.Response, error) {
	resp, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Method: req.Method, Path: req.Path, Err: err}
	}
	return nil, decodeError(resp.StatusCode, body, req)
}

func (c *Client) send(ctx context.Context, req Request) (*http.Response, error) {
	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		raw, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("error encoding request body: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("error building request: %w", err)
	}

	accept := req.Accept
	if accept == "" {
		accept = "application/json"
	}
	requestID := uuid.New().String()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", accept)
	httpReq.Header.Set("X-Request-ID", requestID)

	if !req.Public && c.tokens != nil {
		token, err := c.tokens.GetToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("error reading session token: %w", err)
		}
		if token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	entry := c.log.WithFields(logrus.Fields{
		"method":     method,
		"path":       req.Path,
		"request_id": requestID,
		"duration":   time.Since(start),
	})
	if err != nil {
		entry.WithError(err).Warn("Backend request failed")
		return nil, &NetworkError{Method: method, Path: req.Path, Err: err}
	}
	entry.WithField("status", resp.StatusCode).Debug("Backend request")
	return resp, nil
}

type errorBody struct {
	Detail json.RawMessage `json:"detail"`
	Error  json.RawMessage `json:"error"`
}

// detail shapes: "text", {"message": "text", "issues": [...]}, or a list of
// {"msg": "text"} validation entries.
type detailObject struct {
	Message string   `json:"message"`
	Issues  []string `json:"issues"`
}

type validationEntry struct {
	Msg string `json:"msg"`
}

func decodeError(status int, body []byte, req Request) *APIError {
	fallback := req.Fallback
	if fallback == "" {
		fallback = defaultFallback
	}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return &APIError{Status: status, Detail: fallback}
	}

	for _, raw := range []json.RawMessage{eb.Detail, eb.Error} {
		if msg, issues := parseDetail(raw); msg != "" {
			return &APIError{Status: status, Detail: msg, Issues: issues}
		}
	}

	detail := req.DetailFallback
	if detail == "" {
		detail = fmt.Sprintf("request failed with status %d", status)
	}
	return &APIError{Status: status, Detail: detail}
}

func parseDetail(raw json.RawMessage) (string, []string) {
	if len(raw) == 0 {
		return "", nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}

	var obj detailObject
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Message != "" {
		return obj.Message, obj.Issues
	}

	var entries []validationEntry
	if err := json.Unmarshal(raw, &entries); err == nil {
		msgs := make([]string, 0, len(entries))
		for _, e := range entries {
			if e.Msg != "" {
				msgs = append(msgs, e.Msg)
			}
		}
		return strings.Join(msgs, "; "), nil
	}
	return "", nil
}

// StatusOf maps an error from Do onto the HTTP status the console should
// answer with: backend 4xx pass through, everything upstream else is 502.
func StatusOf(err error) (int, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Retryable() || apiErr.Status < 400 {
			return http.StatusBadGateway, true
		}
		return apiErr.Status, true
	}
	var netErr *NetworkError
	var malformed *MalformedResponseError
	if errors.As(err, &netErr) || errors.As(err, &malformed) {
		return http.StatusBadGateway, true
	}
	return 0, false
}
