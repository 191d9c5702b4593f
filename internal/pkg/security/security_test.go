package security

import (
	"IdeaVault/internal/api/config"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHashing(t *testing.T) {
	_, err := HashPassword("")
	assert.ErrorIs(t, err, ErrEmptyPassword)

	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NoError(t, CheckPasswordHash("s3cret", hash))
	assert.ErrorIs(t, CheckPasswordHash("wrong", hash), ErrInvalidCredentials)
	assert.False(t, NeedsRehash(hash))

	old := bcryptCost
	t.Cleanup(func() { bcryptCost = old })
	setBcryptCost(bcrypt.MinCost)
	assert.True(t, NeedsRehash(hash))
	setBcryptCost(99)
	assert.Equal(t, bcrypt.MinCost, bcryptCost)
}

func TestTokenRoundTrip(t *testing.T) {
	Init(config.SecurityConfig{JWTSecret: "test-secret", JWTTTLHours: 1})
	assert.Equal(t, time.Hour, Expiration())

	token, err := GenerateToken(42, []string{"USER"})
	require.NoError(t, err)
	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.EqualValues(t, 42, claims.UserID)
	assert.Equal(t, []string{"USER"}, claims.Roles)

	sig, err := ExtractSignature(token)
	require.NoError(t, err)
	assert.NotEmpty(t, sig)

	_, err = ValidateToken(token + "x")
	assert.Error(t, err)
}
