// Package session holds the authenticated principal for one client run.
// Components receive the session explicitly; there is no process-wide
// ambient token lookup.
package session

import (
	"sync"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/trackify/internal/domain"
)

// Principal is the authenticated caller.
type Principal struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Role     domain.Role `json:"role"`
	Verified bool        `json:"verified"`
}

// Session carries the bearer token and principal with an explicit
// start-on-login / clear-on-logout lifecycle.
type Session struct {
	mu        sync.Mutex
	token     string
	principal Principal
	active    bool
}

// New returns an empty, inactive session.
func New() *Session {
	return &Session{}
}

// Start activates the session after a successful login.
func (s *Session) Start(token string, principal Principal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.principal = principal
	s.active = true
}

// Clear wipes all credentials on logout.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.principal = Principal{}
	s.active = false
}

// Token returns the bearer token, if the session is active.
func (s *Session) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return "", false
	}
	return s.token, true
}

// Principal returns the authenticated caller, if the session is active.
func (s *Session) Principal() (Principal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return Principal{}, false
	}
	return s.principal, true
}

// Active reports whether the session holds a token that has not expired.
// The signature is the backend's to verify; the client only reads the
// expiry claim to avoid sending requests it knows will be rejected.
func (s *Session) Active() bool {
	s.mu.Lock()
	token := s.token
	active := s.active
	s.mu.Unlock()
	if !active || token == "" {
		return false
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return true
	}
	return claims.ExpiresAt.After(time.Now())
}
