// Package api is the HTTP access layer: a thin request/response pipeline over
// the external marketplace API. It attaches the bearer token from the
// persisted store, persists tokens arriving on auth responses before
// returning, and converts any 401 into a local purge plus ErrUnauthorized.
// No retries, no backoff; a fixed timeout bounds every request.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"farmgate/internal/logging"
	"farmgate/internal/store"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// tokenExempt lists endpoints reachable without a token.
var tokenExempt = map[string]bool{
	"/login":    true,
	"/register": true,
}

// Client talks to the marketplace API.
type Client struct {
	baseURL string
	http    *http.Client
	store   *store.LocalStore

	// onUnauthorized runs after a 401 purge so the session manager can drop
	// its in-memory state too.
	onUnauthorized func()

	userFlight singleflight.Group
}

// NewClient creates a client for the API at baseURL. timeout is the fixed
// request bound; requests that exceed it fail with ErrTimeout.
func NewClient(baseURL string, timeout time.Duration, st *store.LocalStore) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		store:   st,
	}
}

// OnUnauthorized registers a hook invoked whenever a 401 purges local auth
// state.
func (c *Client) OnUnauthorized(fn func()) {
	c.onUnauthorized = fn
}

// do performs a request and decodes the JSON response into out (if non-nil).
func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if !tokenExempt[path] {
		if token, ok := c.store.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	logging.APIDebug("%s %s", method, path)

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			logging.Get(logging.CategoryAPI).Warn("%s %s timed out", method, path)
			return fmt.Errorf("%s %s: %w", method, path, ErrTimeout)
		}
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		logging.API("%s %s returned 401, purging local auth state", method, path)
		if err := c.store.PurgeAuth(); err != nil {
			logging.Get(logging.CategoryAPI).Error("Auth purge after 401 failed: %v", err)
		}
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return ErrUnauthorized
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := readErrorMessage(resp.Body)
		return &StatusError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}

// isTimeout reports whether err is a client-side timeout rather than a
// server failure.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// readErrorMessage extracts a message from an error body, tolerating both
// {"error": "..."} and {"message": "..."} shapes.
func readErrorMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}
	var parsed struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if json.Unmarshal(data, &parsed) == nil {
		for _, m := range []string{parsed.Error, parsed.Message, parsed.Detail} {
			if m != "" {
				return m
			}
		}
	}
	return ""
}
