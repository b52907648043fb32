package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackit-qa/stackit/backend/internal/models"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	user := &models.User{ID: "u1", Email: "ada@example.com", Name: "Ada", Username: "ada"}

	token, err := m.Issue(user)
	require.NoError(t, err)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, models.Identity{UserID: "u1", Email: "ada@example.com", Name: "Ada", Username: "ada"}, claims.Identity())
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestTokenManager_Rejects(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	user := &models.User{ID: "u1", Username: "ada"}

	t.Run("wrong secret", func(t *testing.T) {
		token, err := NewTokenManager("other", time.Hour).Issue(user)
		require.NoError(t, err)
		_, err = m.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		old := NewTokenManager("secret", time.Hour)
		old.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, err := old.Issue(user)
		require.NoError(t, err)
		_, err = m.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other algorithm", func(t *testing.T) {
		claims := Claims{UserID: "u1", RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
		require.NoError(t, err)
		_, err = m.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.Parse("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	assert.NoError(t, ComparePassword(hash, "hunter22"))
	assert.ErrorIs(t, ComparePassword(hash, "wrong"), ErrPasswordMismatch)
}
