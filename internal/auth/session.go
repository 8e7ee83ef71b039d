package auth

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Static errors for err113 compliance.
var (
	ErrNoToken      = errors.New("no token in session")
	ErrTokenExpired = errors.New("session token expired")
)

// TokenManager supplies the bearer token for outgoing requests.
type TokenManager interface {
	GetToken(ctx context.Context) (string, error)
	SetToken(token string, expiresAt time.Time)
}

// Persister saves a token after login so later processes can reuse it.
type Persister interface {
	SaveToken(token string, expiresAt time.Time) error
}

// Session is the authenticated state of one client. It is never shared
// between clients; the token only changes on Set, Login or Clear.
type Session struct {
	store     *TokenStore
	persister Persister
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithPersister saves every token set on the session.
func WithPersister(persister Persister) SessionOption {
	return func(s *Session) {
		s.persister = persister
	}
}

// NewSession creates a session, optionally seeded with a token.
func NewSession(token string, opts ...SessionOption) *Session {
	session := &Session{store: NewTokenStore()}
	for _, opt := range opts {
		opt(session)
	}

	if token != "" {
		session.store.Set(ParseToken(token))
	}

	return session
}

// GetToken returns the bearer token, or an empty string when the session is
// anonymous. An expired token is still returned so the server can reject it
// with a 401 the caller can see.
func (s *Session) GetToken(ctx context.Context) (string, error) {
	token := s.store.Get()
	if token == nil {
		return "", nil
	}

	return token.AccessToken, nil
}

// SetToken replaces the session token. A zero expiresAt keeps the expiry read from the token claims.
func (s *Session) SetToken(raw string, expiresAt time.Time) {
	token := ParseToken(raw)
	if !expiresAt.IsZero() {
		token.ExpiresAt = expiresAt
	}

	s.store.Set(token)
}

// Login stores a freshly issued token and persists it when a persister is configured.
func (s *Session) Login(raw string) error {
	s.SetToken(raw, time.Time{})

	if s.persister == nil {
		return nil
	}

	token := s.store.Get()

	err := s.persister.SaveToken(token.AccessToken, token.ExpiresAt)
	if err != nil {
		return fmt.Errorf("persisting session token: %w", err)
	}

	return nil
}

// Clear drops the token.
func (s *Session) Clear() {
	s.store.Clear()
}

// Token returns the current token, or nil.
func (s *Session) Token() *Token {
	return s.store.Get()
}

// Check returns an error when the session has no usable token.
func (s *Session) Check() error {
	token := s.store.Get()
	if token == nil || token.AccessToken == "" {
		return ErrNoToken
	}

	if !token.Valid() {
		return fmt.Errorf("%w at %s", ErrTokenExpired, token.ExpiresAt.Format(time.RFC3339))
	}

	return nil
}
