package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/bookhaven/bookhaven/internal/errors"
)

const (
	demoEmail    = "demo@bookhaven.dev"
	demoPassword = "Passw0rd"
)

func TestSession_LoginSuccess(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	assert.Equal(t, StateAnonymous, env.session.State())
	assert.False(t, env.session.IsAuthenticated())

	session, err := env.session.Login(ctx, LoginRequest{Email: demoEmail, Password: demoPassword})
	require.NoError(t, err)

	assert.Equal(t, StateAuthenticated, env.session.State())
	assert.True(t, env.session.IsAuthenticated())
	assert.Equal(t, demoEmail, env.session.CurrentUser().Email)
	assert.NotEmpty(t, env.session.CSRFToken())
	require.NotNil(t, session.ExpiresAt)

	// The session survives on disk.
	persisted, found, err := env.store.LoadSession()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, session.AccessToken, persisted.AccessToken)
}

func TestSession_LoginValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.session.Login(ctx, LoginRequest{Email: "not-an-email", Password: "x"})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))

	_, err = env.session.Login(ctx, LoginRequest{Email: demoEmail})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))

	assert.Equal(t, StateAnonymous, env.session.State())
}

func TestSession_LoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.session.Login(ctx, LoginRequest{Email: demoEmail, Password: "wrong-pass"})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrInvalidCredentials))
	assert.Equal(t, StateAnonymous, env.session.State())
	assert.False(t, env.session.IsAuthenticated())
}

func TestSession_RateLimitAfterFiveFailures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for range 4 {
		_, err := env.session.Login(ctx, LoginRequest{Email: demoEmail, Password: "wrong-pass"})
		assert.True(t, domainerrors.Is(err, domainerrors.ErrInvalidCredentials))
		assert.Contains(t, err.Error(), "attempts remaining")
	}

	// The fifth failure announces the lockout.
	_, err := env.session.Login(ctx, LoginRequest{Email: demoEmail, Password: "wrong-pass"})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrRateLimited))

	// The sixth attempt is blocked before reaching the backend, even with
	// the right password.
	_, err = env.session.Login(ctx, LoginRequest{Email: demoEmail, Password: demoPassword})
	require.True(t, domainerrors.Is(err, domainerrors.ErrRateLimited))

	// The lockout message carries the cooldown, not just the detail payload.
	assert.Contains(t, err.Error(), "try again in")

	var domainErr *domainerrors.Error
	require.True(t, domainerrors.As(err, &domainErr))
	details, ok := domainErr.Details.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, details, "retry_after_seconds")
}

func TestSession_RateLimitIsPerEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for range 5 {
		_, _ = env.session.Login(ctx, LoginRequest{Email: "other@example.com", Password: "wrong-pass"})
	}

	// The demo account is unaffected.
	_, err := env.session.Login(ctx, LoginRequest{Email: demoEmail, Password: demoPassword})
	assert.NoError(t, err)
}

func TestSession_SuccessResetsFailureCount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for range 4 {
		_, _ = env.session.Login(ctx, LoginRequest{Email: demoEmail, Password: "wrong-pass"})
	}

	_, err := env.session.Login(ctx, LoginRequest{Email: demoEmail, Password: demoPassword})
	require.NoError(t, err)

	// The counter started over; four more failures do not block.
	env.session.Logout(ctx)
	for range 4 {
		_, _ = env.session.Login(ctx, LoginRequest{Email: demoEmail, Password: "wrong-pass"})
	}
	_, err = env.session.Login(ctx, LoginRequest{Email: demoEmail, Password: demoPassword})
	assert.NoError(t, err)
}

func TestSession_Register(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	session, err := env.session.Register(ctx, RegisterRequest{
		DisplayName: "New Reader",
		Email:       "new@example.com",
		Password:    "Sup3rSecret",
	})
	require.NoError(t, err)
	assert.Equal(t, "New Reader", session.User.DisplayName)
	assert.True(t, env.session.IsAuthenticated())
}

func TestSession_RegisterWeakPassword(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.session.Register(context.Background(), RegisterRequest{
		DisplayName: "New Reader",
		Email:       "new@example.com",
		Password:    "weakpass",
	})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
}

func TestSession_LogoutNeverFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Logging out while anonymous is fine.
	env.session.Logout(ctx)
	assert.Equal(t, StateAnonymous, env.session.State())

	_, err := env.session.Login(ctx, LoginRequest{Email: demoEmail, Password: demoPassword})
	require.NoError(t, err)

	env.session.Logout(ctx)
	assert.Equal(t, StateAnonymous, env.session.State())
	assert.Nil(t, env.session.CurrentUser())

	_, found, err := env.store.LoadSession()
	require.NoError(t, err)
	assert.False(t, found)

	// And again, idempotently.
	env.session.Logout(ctx)
}

func TestSession_RefreshRotatesTokens(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	session, err := env.session.Login(ctx, LoginRequest{Email: demoEmail, Password: demoPassword})
	require.NoError(t, err)
	oldAccess := session.AccessToken
	oldCSRF := env.session.CSRFToken()

	require.NoError(t, env.session.Refresh(ctx))

	persisted, found, err := env.store.LoadSession()
	require.NoError(t, err)
	require.True(t, found)
	assert.NotEqual(t, oldAccess, persisted.AccessToken)
	assert.NotEqual(t, oldCSRF, env.session.CSRFToken())
	assert.Equal(t, StateAuthenticated, env.session.State())
}

func TestSession_RefreshNeverShortensExpiry(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.session.Login(ctx, LoginRequest{Email: demoEmail, Password: demoPassword})
	require.NoError(t, err)

	farFuture := time.Now().Add(48 * time.Hour)
	env.session.mu.Lock()
	env.session.session.ExpiresAt = &farFuture
	env.session.mu.Unlock()

	require.NoError(t, env.session.Refresh(ctx))

	got := env.session.ExpiresAt()
	require.NotNil(t, got)
	assert.False(t, got.Before(farFuture), "expiry moved backwards across refresh")
}

func TestSession_RefreshWithoutSession(t *testing.T) {
	env := newTestEnv(t)

	err := env.session.Refresh(context.Background())
	assert.True(t, domainerrors.Is(err, domainerrors.ErrTokenExpired))
}

func TestSession_InvalidRefreshTokenForcesLogout(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.session.Login(ctx, LoginRequest{Email: demoEmail, Password: demoPassword})
	require.NoError(t, err)

	env.session.mu.Lock()
	env.session.session.RefreshToken = "forged-token"
	env.session.mu.Unlock()

	err = env.session.Refresh(ctx)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrTokenExpired))
	assert.Equal(t, StateAnonymous, env.session.State())
	assert.False(t, env.session.IsAuthenticated())
}

func TestSession_RefreshIfNeeded(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	session, err := env.session.Login(ctx, LoginRequest{Email: demoEmail, Password: demoPassword})
	require.NoError(t, err)
	originalAccess := session.AccessToken

	// Plenty of lifetime left: no refresh happens.
	require.NoError(t, env.session.RefreshIfNeeded(ctx))
	persisted, _, err := env.store.LoadSession()
	require.NoError(t, err)
	assert.Equal(t, originalAccess, persisted.AccessToken)

	// Pretend more than half the lifetime has passed.
	env.session.now = func() time.Time { return time.Now().Add(testAccessTTL/2 + time.Minute) }

	require.NoError(t, env.session.RefreshIfNeeded(ctx))
	persisted, _, err = env.store.LoadSession()
	require.NoError(t, err)
	assert.NotEqual(t, originalAccess, persisted.AccessToken)
}

func TestSession_RefreshIfNeeded_Anonymous(t *testing.T) {
	env := newTestEnv(t)
	assert.NoError(t, env.session.RefreshIfNeeded(context.Background()))
}

func TestSession_HydrateRestoresSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	session, err := env.session.Login(ctx, LoginRequest{Email: demoEmail, Password: demoPassword})
	require.NoError(t, err)

	// A fresh service instance over the same store picks the session up.
	restored := NewSessionService(env.backend, env.store, env.limiter, env.validator, testAccessTTL, nil)
	restored.Hydrate(ctx)

	assert.True(t, restored.IsAuthenticated())
	assert.Equal(t, session.User.ID, restored.CurrentUser().ID)
}

func TestSession_HydrateExpiredSessionRefreshes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	session, err := env.session.Login(ctx, LoginRequest{Email: demoEmail, Password: demoPassword})
	require.NoError(t, err)

	// Rewrite the stored session with a past expiry but a live refresh token.
	past := time.Now().Add(-time.Hour)
	session.ExpiresAt = &past
	require.NoError(t, env.store.SaveSession(session))

	restored := NewSessionService(env.backend, env.store, env.limiter, env.validator, testAccessTTL, nil)
	restored.Hydrate(ctx)

	assert.True(t, restored.IsAuthenticated())
	got := restored.ExpiresAt()
	require.NotNil(t, got)
	assert.True(t, got.After(time.Now()))
}

func TestSession_HydrateClearsOnRefreshFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	session, err := env.session.Login(ctx, LoginRequest{Email: demoEmail, Password: demoPassword})
	require.NoError(t, err)

	past := time.Now().Add(-time.Hour)
	session.ExpiresAt = &past
	require.NoError(t, env.store.SaveSession(session))

	// The refresh cannot reach the backend; the restored session is expired
	// and must not be kept.
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	restored := NewSessionService(env.backend, env.store, env.limiter, env.validator, testAccessTTL, nil)
	restored.Hydrate(cancelled)

	assert.Equal(t, StateAnonymous, restored.State())
	assert.False(t, restored.IsAuthenticated())

	_, found, err := env.store.LoadSession()
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSession_LoginSucceedsWhenPersistFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// A broken store must not turn a successful authentication into an
	// error: the in-memory session is the authority.
	require.NoError(t, env.store.Close())

	session, err := env.session.Login(ctx, LoginRequest{Email: demoEmail, Password: demoPassword})
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.True(t, env.session.IsAuthenticated())
	assert.Equal(t, demoEmail, env.session.CurrentUser().Email)
}

func TestSession_HydrateNothingPersisted(t *testing.T) {
	env := newTestEnv(t)

	env.session.Hydrate(context.Background())
	assert.Equal(t, StateAnonymous, env.session.State())
}

func TestSession_UpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Not logged in.
	_, err := env.session.UpdateProfile(ctx, UpdateProfileRequest{DisplayName: "Nobody"})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrInvalidCredentials))

	_, err = env.session.Login(ctx, LoginRequest{Email: demoEmail, Password: demoPassword})
	require.NoError(t, err)

	user, err := env.session.UpdateProfile(ctx, UpdateProfileRequest{DisplayName: "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", user.DisplayName)
	assert.Equal(t, "Renamed", env.session.CurrentUser().DisplayName)

	persisted, _, err := env.store.LoadSession()
	require.NoError(t, err)
	assert.Equal(t, "Renamed", persisted.User.DisplayName)
}

func TestSession_ForgotPassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	assert.NoError(t, env.session.ForgotPassword(ctx, ForgotPasswordRequest{Email: demoEmail}))
	assert.NoError(t, env.session.ForgotPassword(ctx, ForgotPasswordRequest{Email: "unknown@example.com"}))

	err := env.session.ForgotPassword(ctx, ForgotPasswordRequest{Email: "not-an-email"})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
}
