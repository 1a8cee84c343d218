package auth

import (
	"crypto/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookhaven/bookhaven/internal/domain"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func TestNewTokenService_RejectsBadKeyLength(t *testing.T) {
	_, err := NewTokenService([]byte("short"), time.Hour, 30*24*time.Hour)
	assert.Error(t, err)
}

func TestAccessToken_RoundTrip(t *testing.T) {
	svc, err := NewTokenService(testKey(t), time.Hour, 30*24*time.Hour)
	require.NoError(t, err)

	user := &domain.User{ID: "user-abc", Email: "reader@example.com", DisplayName: "Reader"}

	token, expiresAt, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := svc.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, user.DisplayName, claims.DisplayName)
	assert.Equal(t, user.ID, claims.Subject)
	assert.NotEmpty(t, claims.TokenID)
}

func TestVerifyAccessToken_Expired(t *testing.T) {
	svc, err := NewTokenService(testKey(t), time.Hour, 30*24*time.Hour)
	require.NoError(t, err)

	issued := time.Now().Add(-2 * time.Hour)
	svc.now = func() time.Time { return issued }

	token, _, err := svc.GenerateAccessToken(&domain.User{ID: "user-abc", Email: "reader@example.com"})
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.VerifyAccessToken(token)
	assert.Error(t, err)
}

func TestVerifyAccessToken_WrongKey(t *testing.T) {
	svc, err := NewTokenService(testKey(t), time.Hour, 30*24*time.Hour)
	require.NoError(t, err)
	other, err := NewTokenService(testKey(t), time.Hour, 30*24*time.Hour)
	require.NoError(t, err)

	token, _, err := svc.GenerateAccessToken(&domain.User{ID: "user-abc", Email: "reader@example.com"})
	require.NoError(t, err)

	_, err = other.VerifyAccessToken(token)
	assert.Error(t, err)
}

func TestRefreshToken_UniqueAndHashable(t *testing.T) {
	svc, err := NewTokenService(testKey(t), time.Hour, 30*24*time.Hour)
	require.NoError(t, err)

	first, err := svc.GenerateRefreshToken()
	require.NoError(t, err)
	second, err := svc.GenerateRefreshToken()
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.NotEqual(t, HashRefreshToken(first), HashRefreshToken(second))
	assert.Equal(t, HashRefreshToken(first), HashRefreshToken(first))
}

func TestGenerateCSRFToken_Unique(t *testing.T) {
	svc, err := NewTokenService(testKey(t), time.Hour, 30*24*time.Hour)
	require.NoError(t, err)

	assert.NotEqual(t, svc.GenerateCSRFToken(), svc.GenerateCSRFToken())
}

func TestPasswordHash_RoundTrip(t *testing.T) {
	hash, err := HashPassword("Sup3rSecret")
	require.NoError(t, err)

	ok, err := VerifyPassword(hash, "Sup3rSecret")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword(hash, "wrong-password")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = VerifyPassword("not-an-encoded-hash", "Sup3rSecret")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoadOrGenerateKey_Persists(t *testing.T) {
	dir := t.TempDir()

	first, err := LoadOrGenerateKey(dir, "auth")
	require.NoError(t, err)
	assert.Len(t, first, 32)

	second, err := LoadOrGenerateKey(dir, "auth")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
