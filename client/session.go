// Package client is the Go client for the Speak Up admin API and the
// reusable list-management core behind the dashboard's grids: a Controller
// that owns the current query (filters, search text, sort, page), a Fetcher
// that executes it and discards stale responses, an Editor that runs the
// record form's save lifecycle, and an Expansion set for row expansion.
// Each feature (API keys, Speak Up) instantiates the core with its own
// filter and record types.
package client

import (
	"sync"
	"time"
)

// Session is the process-wide auth session: the bearer token and its expiry.
// It is populated by Login and cleared on Logout, expiry, or any 401 from
// the API. OnExpired fires once per clearing so the UI can return to login.
type Session struct {
	mu        sync.Mutex
	token     string
	expiresAt time.Time
	onExpired func()

	// now is replaceable in tests.
	now func() time.Time
}

// NewSession creates an empty session.
func NewSession() *Session {
	return &Session{now: time.Now}
}

// SetOnExpired registers the callback invoked when the session is cleared
// by expiry or a 401 response.
func (s *Session) SetOnExpired(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onExpired = fn
}

// Set stores a freshly issued token and its expiry.
func (s *Session) Set(token string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.expiresAt = expiresAt
}

// Token returns the current token. ok is false when no token is stored or
// the stored token has passed its expiry; a just-expired token is cleared
// and the expiry callback fires, the same as a server-side 401.
func (s *Session) Token() (token string, ok bool) {
	s.mu.Lock()
	if s.token == "" {
		s.mu.Unlock()
		return "", false
	}
	if !s.expiresAt.IsZero() && !s.now().Before(s.expiresAt) {
		cb := s.clearLocked()
		s.mu.Unlock()
		if cb != nil {
			cb()
		}
		return "", false
	}
	token = s.token
	s.mu.Unlock()
	return token, true
}

// Active reports whether a non-expired token is stored.
func (s *Session) Active() bool {
	_, ok := s.Token()
	return ok
}

// Clear drops the stored token without firing the expiry callback. Used by
// explicit logout.
func (s *Session) Clear() {
	s.mu.Lock()
	s.token = ""
	s.expiresAt = time.Time{}
	s.mu.Unlock()
}

// Expire drops the stored token and fires the expiry callback. Called by
// the API client when the server answers 401.
func (s *Session) Expire() {
	s.mu.Lock()
	cb := s.clearLocked()
	s.mu.Unlock()
	if cb != nil {
		cb()
	}
}

func (s *Session) clearLocked() func() {
	hadToken := s.token != ""
	s.token = ""
	s.expiresAt = time.Time{}
	if hadToken {
		return s.onExpired
	}
	return nil
}
