// Package client is the API client the site front end builds on: it owns
// the persisted session mirror, attaches the access token to every call,
// and recovers from expiry by exchanging the refresh token transparently.
package client

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

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// State is the session lifecycle as the client sees it.
type State int32

const (
	StateUnauthenticated State = iota
	StateAuthenticated
	StateRefreshing
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateRefreshing:
		return "refreshing"
	case StateExpired:
		return "expired"
	default:
		return "unauthenticated"
	}
}

var (
	// ErrSessionExpired is terminal: the refresh token itself was rejected,
	// local state has been purged, and the user must log in again.
	ErrSessionExpired = errors.New("session expired")

	// ErrToggleSelf is raised locally, before any request is sent, when an
	// admin tries to flip their own admin flag.
	ErrToggleSelf = errors.New("cannot toggle own admin flag")
)

// APIError is a non-2xx response the client could not recover from.
type APIError struct {
	Status int
	Code   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status %d (%s)", e.Status, e.Code)
}

type Client struct {
	baseURL string
	httpc   *http.Client
	store   Store
	log     zerolog.Logger

	mu      sync.RWMutex
	sess    Session
	state   State
	loading bool

	// All callers that hit a 401 while a refresh is already in flight
	// share its outcome instead of racing separate exchanges.
	refreshGroup singleflight.Group
}

type Option func(*Client)

func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) { c.httpc = httpc }
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

func New(baseURL string, store Store, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: 15 * time.Second},
		store:   store,
		log:     zerolog.Nop(),
		state:   StateUnauthenticated,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Loading reports whether a restored session is still being verified.
// Route guards render a waiting state while this is true.
func (c *Client) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

func (c *Client) CurrentUser() (User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sess.User, c.state == StateAuthenticated || c.state == StateRefreshing
}

type authPayload struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         User   `json:"user"`
}

type profilePayload struct {
	User User `json:"user"`
}

// Login authenticates and persists the session mirror.
func (c *Client) Login(ctx context.Context, email, password string) (User, error) {
	var payload authPayload
	status, err := c.send(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, "", &payload)
	if err != nil {
		return User{}, err
	}
	if status != http.StatusOK {
		return User{}, &APIError{Status: status, Code: "login_failed"}
	}

	c.adoptSession(payload)
	return payload.User, nil
}

func (c *Client) RegisterAccount(ctx context.Context, username, email, password string) (User, error) {
	var payload authPayload
	status, err := c.send(ctx, http.MethodPost, "/api/auth/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, "", &payload)
	if err != nil {
		return User{}, err
	}
	if status != http.StatusOK {
		return User{}, &APIError{Status: status, Code: "registration_failed"}
	}

	c.adoptSession(payload)
	return payload.User, nil
}

// Logout clears local state immediately, then notifies the server
// best-effort; a failed notification never un-does the local logout.
// Calling it repeatedly is safe.
func (c *Client) Logout(ctx context.Context) {
	c.mu.Lock()
	refreshToken := c.sess.RefreshToken
	c.mu.Unlock()

	c.purge()

	if refreshToken == "" {
		return
	}
	if _, err := c.send(ctx, http.MethodPost, "/api/auth/logout", map[string]string{
		"refreshToken": refreshToken,
	}, "", nil); err != nil {
		c.log.Debug().Err(err).Msg("server logout notification failed")
	}
}

// Restore loads a persisted session optimistically, then verifies it
// against the server, allowing one refresh before giving up.
func (c *Client) Restore(ctx context.Context) error {
	sess, err := c.store.Load()
	if err != nil {
		c.purge()
		return nil
	}

	c.mu.Lock()
	c.sess = sess
	c.state = StateAuthenticated
	c.loading = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.loading = false
		c.mu.Unlock()
	}()

	var payload profilePayload
	status, err := c.send(ctx, http.MethodGet, "/api/auth/profile", nil, sess.AccessToken, &payload)
	if err != nil {
		// Network trouble, not a rejection: keep the optimistic session.
		return err
	}

	switch {
	case status == http.StatusOK:
		c.mu.Lock()
		c.sess.User = payload.User
		c.mu.Unlock()
		return nil
	case status == http.StatusUnauthorized:
		if _, err := c.refreshSession(ctx); err != nil {
			if errors.Is(err, ErrSessionExpired) {
				return ErrSessionExpired
			}
			// Transport trouble mid-exchange: keep the optimistic session.
			return err
		}
		return nil
	default:
		c.purge()
		return &APIError{Status: status, Code: "restore_failed"}
	}
}

// Profile fetches the current principal, going through the transparent
// refresh path like any other authenticated call.
func (c *Client) Profile(ctx context.Context) (User, error) {
	var payload profilePayload
	if err := c.do(ctx, http.MethodGet, "/api/auth/profile", nil, &payload); err != nil {
		return User{}, err
	}
	return payload.User, nil
}

func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var payload struct {
		Users []User `json:"users"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/users", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Users, nil
}

// ToggleAdmin flips another user's admin flag. Flipping your own is
// rejected locally before any request goes out.
func (c *Client) ToggleAdmin(ctx context.Context, userID int64) (bool, error) {
	if current, ok := c.CurrentUser(); ok && current.ID == userID {
		return false, ErrToggleSelf
	}

	var payload struct {
		IsAdmin bool `json:"isAdmin"`
	}
	path := fmt.Sprintf("/api/auth/users/%d/toggle-admin", userID)
	if err := c.do(ctx, http.MethodPut, path, nil, &payload); err != nil {
		return false, err
	}
	return payload.IsAdmin, nil
}

// do performs an authenticated request. On a 401 it runs (or joins) one
// refresh exchange and retries the original request exactly once; a second
// 401 is surfaced to the caller rather than retried again.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	c.mu.RLock()
	token := c.sess.AccessToken
	c.mu.RUnlock()

	status, err := c.send(ctx, method, path, body, token, out)
	if err != nil {
		return err
	}
	if status != http.StatusUnauthorized {
		return statusError(status)
	}

	newToken, err := c.refreshSession(ctx)
	if err != nil {
		return err
	}

	status, err = c.send(ctx, method, path, body, newToken, out)
	if err != nil {
		return err
	}
	return statusError(status)
}

func statusError(status int) error {
	if status >= 200 && status < 300 {
		return nil
	}
	return &APIError{Status: status, Code: http.StatusText(status)}
}

// refreshExchangeTimeout bounds the shared exchange once it is detached
// from the caller contexts.
const refreshExchangeTimeout = 15 * time.Second

// refreshSession exchanges the refresh token for a new credential pair.
// Concurrent callers share a single in-flight exchange. Only a definitive
// server rejection is terminal (local state purged, ErrSessionExpired);
// transport trouble leaves the session intact so a later call can retry.
func (c *Client) refreshSession(ctx context.Context) (string, error) {
	token, err, _ := c.refreshGroup.Do("refresh", func() (any, error) {
		c.mu.Lock()
		refreshToken := c.sess.RefreshToken
		if c.state == StateAuthenticated {
			c.state = StateRefreshing
		}
		c.mu.Unlock()

		if refreshToken == "" {
			c.expire()
			return nil, ErrSessionExpired
		}

		// The outcome is shared by every waiting caller, so the exchange
		// must not die with whichever caller happened to start it.
		exchangeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshExchangeTimeout)
		defer cancel()

		var payload authPayload
		status, err := c.send(exchangeCtx, http.MethodPost, "/api/auth/refresh-token", map[string]string{
			"refreshToken": refreshToken,
		}, "", &payload)
		if err != nil {
			// Network trouble, not a rejection: the refresh token may
			// still be good.
			c.mu.Lock()
			if c.state == StateRefreshing {
				c.state = StateAuthenticated
			}
			c.mu.Unlock()
			return nil, err
		}
		if status != http.StatusOK {
			c.expire()
			return nil, ErrSessionExpired
		}

		c.adoptSession(payload)
		return payload.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	return token.(string), nil
}

func (c *Client) adoptSession(payload authPayload) {
	sess := Session{
		User:         payload.User,
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
	}

	c.mu.Lock()
	c.sess = sess
	c.state = StateAuthenticated
	c.mu.Unlock()

	if err := c.store.Save(sess); err != nil {
		c.log.Warn().Err(err).Msg("persist session failed")
	}
}

// expire marks the terminal refresh failure and purges local state. The
// route guards then send the visitor back to the login page.
func (c *Client) expire() {
	c.mu.Lock()
	c.state = StateExpired
	c.mu.Unlock()
	c.purge()
}

func (c *Client) purge() {
	c.mu.Lock()
	c.sess = Session{}
	c.state = StateUnauthenticated
	c.loading = false
	c.mu.Unlock()

	if err := c.store.Clear(); err != nil {
		c.log.Warn().Err(err).Msg("clear session store failed")
	}
}

// send issues one HTTP request and decodes the JSON body into out when
// provided. It never mutates session state; callers own that.
func (c *Client) send(ctx context.Context, method, path string, body any, token string, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
			return resp.StatusCode, err
		}
	} else {
		_, _ = io.Copy(io.Discard, resp.Body)
	}

	return resp.StatusCode, nil
}
