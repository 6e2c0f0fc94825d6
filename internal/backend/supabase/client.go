// Package supabase implements the service.Service interface against a
// Supabase-hosted backend: GoTrue for auth, PostgREST for task rows.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"taskpad/internal/config"
	"taskpad/internal/service"
)

const (
	// APITimeout is the timeout for backend calls.
	APITimeout = 5 * time.Second

	authPath = "/auth/v1"
	restPath = "/rest/v1"
)

// Client implements service.Service against a Supabase project.
// A single Client is constructed at startup and injected into the
// session gate and task synchronizer.
type Client struct {
	cfg        *config.Config
	httpClient *http.Client

	mu        sync.Mutex
	source    oauth2.TokenSource // nil when signed out
	identity  service.Identity
	listeners map[int]func(service.Identity, bool)
	nextID    int
}

// New creates a new backend client. No network call is made until the
// first auth or row operation.
func New(cfg *config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: http.DefaultClient,
		listeners:  make(map[int]func(service.Identity, bool)),
	}
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(cfg *config.Config, httpClient *http.Client) *Client {
	c := New(cfg)
	c.httpClient = httpClient
	return c
}

// OnAuthStateChange implements service.Service.
func (c *Client) OnAuthStateChange(fn func(service.Identity, bool)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.listeners, id)
			c.mu.Unlock()
		})
	}
}

// notify delivers an auth transition to all registered listeners.
// Listeners are invoked outside the lock.
func (c *Client) notify(id service.Identity, ok bool) {
	c.mu.Lock()
	fns := make([]func(service.Identity, bool), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(id, ok)
	}
}

// bearer returns a live access token, refreshing through the token source
// if needed. A refresh that yields a new token is persisted and announced
// as an auth transition.
func (c *Client) bearer(ctx context.Context) (string, error) {
	c.mu.Lock()
	source := c.source
	prev := c.identity.AccessToken
	c.mu.Unlock()

	if source == nil {
		return "", service.NewAuthError("not signed in")
	}

	tok, err := source.Token()
	if err != nil {
		return "", service.NewAuthError("session expired: %v", err)
	}

	if tok.AccessToken != prev {
		id, err := identityFromToken(tok)
		if err != nil {
			return "", service.NewAuthError("invalid refreshed token: %v", err)
		}
		c.mu.Lock()
		c.identity = id
		c.mu.Unlock()
		// Persist best-effort; a failed write only costs the next startup.
		_ = saveSession(c.cfg, tok)
		c.notify(id, true)
	}

	return tok.AccessToken, nil
}

// doJSON issues a request with the standard headers and decodes the
// response body into out (when out is non-nil and the body is non-empty).
func (c *Client) doJSON(ctx context.Context, method, url string, body any, token string, extraHeaders map[string]string, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.cfg.AnonKey)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range extraHeaders {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &statusError{Code: resp.StatusCode, Body: data}
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("invalid response body: %w", err)
		}
	}
	return nil
}

// statusError carries a non-2xx response for the callers to classify.
type statusError struct {
	Code int
	Body []byte
}

func (e *statusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.Code, errorMessage(e.Body))
}

// errorMessage extracts the human-readable message from a GoTrue or
// PostgREST error body.
func errorMessage(body []byte) string {
	var payload struct {
		ErrorDescription string `json:"error_description"`
		Msg              string `json:"msg"`
		Message          string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.ErrorDescription != "":
			return payload.ErrorDescription
		case payload.Msg != "":
			return payload.Msg
		case payload.Message != "":
			return payload.Message
		}
	}
	if len(body) > 0 {
		return string(body)
	}
	return "request failed"
}

// saveSession saves the session token to the config dir with mode 0600.
func saveSession(cfg *config.Config, tok *oauth2.Token) error {
	if err := cfg.EnsureDir(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(cfg.SessionPath(), data, 0600)
}

// loadSession reads a previously saved session token.
func loadSession(cfg *config.Config) (*oauth2.Token, error) {
	data, err := os.ReadFile(cfg.SessionPath())
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("invalid session file: %w", err)
	}
	return &tok, nil
}
