// Package session owns the bearer-token lifecycle: creation on login,
// destruction on logout or auth failure, and the single-redirect teardown
// that keeps concurrent failing requests from stacking navigations.
package session

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Navigator is the navigation target the session redirects to on teardown.
// The UI layer supplies the implementation.
type Navigator interface {
	// GotoLogin navigates the UI to the login view.
	GotoLogin()
	// AtLogin reports whether the login view is already current.
	AtLogin() bool
}

// AdminProfile is the admin identity returned by a successful login,
// cached alongside the token and wiped on teardown.
type AdminProfile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
}

// Session holds the process-wide bearer token and the redirect guard. All
// components that need the token receive the same *Session; none of them
// touch the store or the navigator directly.
type Session struct {
	store TokenStore
	nav   Navigator
	log   *zap.Logger

	mu      sync.RWMutex
	token   string
	loaded  bool
	profile *AdminProfile

	// redirecting guards the teardown: one redirect per invalidation
	// episode, regardless of how many in-flight requests fail.
	redirecting atomic.Bool
}

func New(store TokenStore, nav Navigator, log *zap.Logger) *Session {
	return &Session{
		store: store,
		nav:   nav,
		log:   log,
	}
}

// Token returns the current bearer token, or "" when unauthenticated. An
// absent token is not an error; requests simply go out without the header.
func (s *Session) Token() string {
	s.mu.RLock()
	if s.loaded {
		tok := s.token
		s.mu.RUnlock()
		return tok
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		tok, err := s.store.Load()
		if err != nil {
			s.log.Warn("failed to load persisted token", zap.Error(err))
		}
		s.token = tok
		s.loaded = true
	}
	return s.token
}

// SetToken installs a freshly issued token, persists it, and opens a new
// invalidation episode by resetting the redirect guard.
func (s *Session) SetToken(token string, profile *AdminProfile) error {
	s.mu.Lock()
	s.token = token
	s.loaded = true
	s.profile = profile
	s.mu.Unlock()

	s.redirecting.Store(false)

	if err := s.store.Save(token); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}
	return nil
}

// Profile returns the cached admin profile, if a login stored one.
func (s *Session) Profile() *AdminProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// Clear destroys the session on explicit logout.
func (s *Session) Clear() error {
	s.clearLocal()
	if err := s.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear token slot: %w", err)
	}
	return nil
}

func (s *Session) clearLocal() {
	s.mu.Lock()
	s.token = ""
	s.loaded = true
	s.profile = nil
	s.mu.Unlock()
}

// OnAuthFailure performs the hard session teardown after an authentication
// failure: clear the persisted token and cached metadata, then navigate to
// the login view. At most one teardown runs per invalidation episode; the
// guard is an atomic swap, not a read-then-write, because concurrent
// in-flight requests fail together. When the login view is already
// current the redirect is suppressed to avoid a self-redirect loop.
func (s *Session) OnAuthFailure(reason string) {
	if s.nav != nil && s.nav.AtLogin() {
		return
	}
	if !s.redirecting.CompareAndSwap(false, true) {
		return
	}

	s.log.Info("authentication failed, tearing down session", zap.String("reason", reason))

	s.clearLocal()
	if err := s.store.Clear(); err != nil {
		s.log.Warn("failed to clear token slot during teardown", zap.Error(err))
	}
	if s.nav != nil {
		s.nav.GotoLogin()
	}
}

// ExpiresAt reads the exp claim from the stored token without verifying
// the signature. Display and precheck only; the backend remains the
// authority on token validity.
func (s *Session) ExpiresAt() (time.Time, bool) {
	tok := s.Token()
	if tok == "" {
		return time.Time{}, false
	}

	parser := jwt.NewParser()
	claims := jwt.RegisteredClaims{}
	if _, _, err := parser.ParseUnverified(tok, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// ExpiredAt reports whether the stored token's exp claim has passed at the
// given instant. A token without a readable exp claim reads as not expired.
func (s *Session) ExpiredAt(now time.Time) bool {
	exp, ok := s.ExpiresAt()
	if !ok {
		return false
	}
	return now.After(exp)
}
