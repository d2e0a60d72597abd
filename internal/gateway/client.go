// Package gateway is the REST client for the job hunter backend. Every
// backend operation is one method; failures surface immediately with no
// retry, backoff or client-side timeout.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/yourusername/jobhunter-dashboard/internal/model"
	"github.com/yourusername/jobhunter-dashboard/internal/store"
)

// APIError is a non-2xx response from the backend
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// StatusOf returns the HTTP status carried by err, or 0 for transport
// failures and other errors
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Client wraps the backend REST API and owns the current user identity
type Client struct {
	baseURL string
	client  *http.Client
	store   store.SessionStore

	mu          sync.RWMutex
	currentUser *model.UserProfile
}

// NewClient builds a client and restores any persisted user from st.
// A store read failure is logged and treated as "no user".
func NewClient(ctx context.Context, baseURL string, st store.SessionStore) *Client {
	c := &Client{
		baseURL: baseURL,
		// No Timeout: requests fail only when the transport or ctx does
		client: &http.Client{},
		store:  st,
	}

	user, err := st.Load(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to restore stored user")
	}
	c.currentUser = user

	return c
}

// WithHTTPClient swaps the underlying HTTP client (tests, custom transports)
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.client = hc
	return c
}

// ── Core request ─────────────────────────────────────

// do sends a request and decodes a JSON response into out (if non-nil)
func (c *Client) do(ctx context.Context, method, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding %s %s body: %w", method, endpoint, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("creating %s %s request: %w", method, endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("method", method).Str("path", endpoint).Msg("Backend request failed")
		return fmt.Errorf("calling %s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s %s response: %w", method, endpoint, err)
	}

	log.Debug().
		Str("method", method).
		Str("path", endpoint).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("Backend request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errorFromResponse(resp.StatusCode, respBody)
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("parsing %s %s response: %w", method, endpoint, err)
	}
	return nil
}

// errorFromResponse prefers the backend's {error} message, falling back to
// "HTTP <status>" when the body is missing or unparseable
func errorFromResponse(status int, body []byte) error {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return &APIError{Status: status, Message: payload.Error}
	}
	return &APIError{Status: status, Message: fmt.Sprintf("HTTP %d", status)}
}

// ── Authentication ───────────────────────────────────

// Login authenticates and persists the returned user
func (c *Client) Login(ctx context.Context, username, password string) (*model.UserProfile, error) {
	var resp struct {
		User *model.UserProfile `json:"user"`
	}
	err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, fmt.Errorf("login response carried no user")
	}

	c.mu.Lock()
	c.currentUser = resp.User
	c.mu.Unlock()

	if err := c.store.Save(ctx, resp.User); err != nil {
		// The session still works for this process
		log.Error().Err(err).Msg("Failed to persist signed-in user")
	}

	log.Info().Str("user", resp.User.Username).Msg("Signed in")
	return resp.User, nil
}

// Logout ends the backend session, then forgets the user
func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil); err != nil {
		return err
	}

	c.mu.Lock()
	c.currentUser = nil
	c.mu.Unlock()

	if err := c.store.Clear(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to clear stored user")
	}
	return nil
}

// CurrentUser is a pure read of the in-memory identity
func (c *Client) CurrentUser() *model.UserProfile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentUser
}
