package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/central-storage/csclient/internal/auth"
)

var errDiskFull = errors.New("disk full")

type recordingPersister struct {
	token     string
	expiresAt time.Time
	err       error
}

func (p *recordingPersister) SaveToken(token string, expiresAt time.Time) error {
	p.token = token
	p.expiresAt = expiresAt

	return p.err
}

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("server-secret"))
	require.NoError(t, err)

	return raw
}

func TestParseToken(t *testing.T) {
	t.Parallel()

	t.Run("reads claims without verifying", func(t *testing.T) {
		t.Parallel()

		exp := time.Now().Add(2 * time.Hour).Truncate(time.Second)
		raw := signedToken(t, jwt.MapClaims{
			"user_id":  7,
			"username": "admin",
			"role":     "admin",
			"exp":      exp.Unix(),
		})

		token := auth.ParseToken(raw)
		assert.Equal(t, raw, token.AccessToken)
		assert.Equal(t, 7, token.UserID)
		assert.Equal(t, "admin", token.Username)
		assert.True(t, token.IsAdmin())
		assert.True(t, token.ExpiresAt.Equal(exp))
		assert.True(t, token.Valid())
	})

	t.Run("opaque token has no claims", func(t *testing.T) {
		t.Parallel()

		token := auth.ParseToken("not-a-jwt")
		assert.Equal(t, "not-a-jwt", token.AccessToken)
		assert.Zero(t, token.UserID)
		assert.True(t, token.ExpiresAt.IsZero())
		assert.True(t, token.Valid())
	})

	t.Run("expired token is invalid", func(t *testing.T) {
		t.Parallel()

		raw := signedToken(t, jwt.MapClaims{"exp": time.Now().Add(-time.Minute).Unix()})

		assert.False(t, auth.ParseToken(raw).Valid())
	})
}

func TestSession(t *testing.T) {
	t.Parallel()

	t.Run("anonymous session sends no token", func(t *testing.T) {
		t.Parallel()

		session := auth.NewSession("")

		token, err := session.GetToken(context.Background())
		require.NoError(t, err)
		assert.Empty(t, token)
		require.ErrorIs(t, session.Check(), auth.ErrNoToken)
	})

	t.Run("seeded token is returned", func(t *testing.T) {
		t.Parallel()

		session := auth.NewSession("seed")

		token, err := session.GetToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "seed", token)
		require.NoError(t, session.Check())
	})

	t.Run("login persists the token", func(t *testing.T) {
		t.Parallel()

		persister := &recordingPersister{}
		session := auth.NewSession("", auth.WithPersister(persister))

		exp := time.Now().Add(time.Hour).Truncate(time.Second)
		raw := signedToken(t, jwt.MapClaims{"exp": exp.Unix()})

		require.NoError(t, session.Login(raw))
		assert.Equal(t, raw, persister.token)
		assert.True(t, persister.expiresAt.Equal(exp))
	})

	t.Run("persist failure is reported but token is kept", func(t *testing.T) {
		t.Parallel()

		session := auth.NewSession("", auth.WithPersister(&recordingPersister{err: errDiskFull}))

		err := session.Login("fresh")
		require.ErrorIs(t, err, errDiskFull)
		assert.Equal(t, "fresh", session.Token().AccessToken)
	})

	t.Run("expired token fails check", func(t *testing.T) {
		t.Parallel()

		session := auth.NewSession("")
		session.SetToken("old", time.Now().Add(-time.Hour))

		require.ErrorIs(t, session.Check(), auth.ErrTokenExpired)
	})

	t.Run("clear drops the token", func(t *testing.T) {
		t.Parallel()

		session := auth.NewSession("seed")
		session.Clear()

		assert.Nil(t, session.Token())
	})
}
