package auth

import (
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// expiryBuffer treats a token as expired slightly before its real expiry.
const expiryBuffer = 30 * time.Second

// Token is a bearer token plus what could be read from its claims.
type Token struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	UserID      int       `json:"user_id,omitempty"`
	Username    string    `json:"username,omitempty"`
	Role        string    `json:"role,omitempty"`
}

// Valid checks if the token is present and not about to expire. A token
// without a known expiry is considered valid.
func (t *Token) Valid() bool {
	if t == nil || t.AccessToken == "" {
		return false
	}

	if t.ExpiresAt.IsZero() {
		return true
	}

	return time.Now().Add(expiryBuffer).Before(t.ExpiresAt)
}

// IsAdmin reports whether the token carries the admin role.
func (t *Token) IsAdmin() bool {
	return t != nil && t.Role == "admin"
}

// Claims are the fields the server puts in its login tokens.
type Claims struct {
	jwt.RegisteredClaims

	UserID   json.Number `json:"user_id"`
	Username string      `json:"username"`
	Role     string      `json:"role"`
}

// ParseToken builds a Token from a raw bearer string. The signature is not
// verified: the client only needs the claims for display and expiry checks,
// and the server remains the authority. Opaque tokens yield a Token without claims.
func ParseToken(raw string) *Token {
	token := &Token{AccessToken: raw}
	if raw == "" {
		return token
	}

	claims := &Claims{}

	_, _, err := jwt.NewParser().ParseUnverified(raw, claims)
	if err != nil {
		return token
	}

	if claims.ExpiresAt != nil {
		token.ExpiresAt = claims.ExpiresAt.Time
	}

	if id, err := strconv.Atoi(claims.UserID.String()); err == nil {
		token.UserID = id
	}

	token.Username = claims.Username
	token.Role = claims.Role

	return token
}

// TokenStore holds the current token behind a lock.
type TokenStore struct {
	mu    sync.RWMutex
	token *Token
}

// NewTokenStore creates an empty store.
func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// Get returns the current token or nil.
func (s *TokenStore) Get() *Token {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token
}

// Set replaces the current token.
func (s *TokenStore) Set(token *Token) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
}

// Clear removes the current token.
func (s *TokenStore) Clear() {
	s.Set(nil)
}
