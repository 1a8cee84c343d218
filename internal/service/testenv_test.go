package service

import (
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bookhaven/bookhaven/internal/auth"
	"github.com/bookhaven/bookhaven/internal/backend"
	"github.com/bookhaven/bookhaven/internal/ratelimit"
	"github.com/bookhaven/bookhaven/internal/store"
	"github.com/bookhaven/bookhaven/internal/validation"
)

const testAccessTTL = time.Hour

// testEnv wires real services over a temporary database and a zero-latency
// backend. Each test gets an isolated environment.
type testEnv struct {
	store     *store.Store
	backend   *backend.Client
	limiter   *ratelimit.Limiter
	validator *validation.Validator

	session   *SessionService
	catalog   *CatalogService
	currency  *CurrencyService
	favorites *FavoritesService
	comments  *CommentsService
	settings  *SettingsService
	app       *App
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "service-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(tmpDir) })

	sealKey := make([]byte, 32)
	_, err = rand.Read(sealKey)
	require.NoError(t, err)

	st, err := store.New(filepath.Join(tmpDir, "state.db"), sealKey, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	tokenKey := make([]byte, 32)
	_, err = rand.Read(tokenKey)
	require.NoError(t, err)

	tokens, err := auth.NewTokenService(tokenKey, testAccessTTL, 30*24*time.Hour)
	require.NoError(t, err)

	backendClient, err := backend.New(backend.Config{ItemsPerPage: 12, MaxPages: 5}, tokens, nil)
	require.NoError(t, err)

	limiter := ratelimit.New(5, 15*time.Minute)
	validator := validation.New()

	env := &testEnv{
		store:     st,
		backend:   backendClient,
		limiter:   limiter,
		validator: validator,
	}

	env.session = NewSessionService(backendClient, st, limiter, validator, testAccessTTL, nil)
	env.favorites = NewFavoritesService(st, nil)
	env.catalog = NewCatalogService(backendClient, env.favorites, validator, 5, nil)
	env.currency = NewCurrencyService(backendClient, st, 30*time.Minute, "TRY", "TRY", nil)
	env.comments = NewCommentsService(st, validator, nil)
	env.settings = NewSettingsService(st, nil)
	env.app = NewApp(env.session, env.catalog, env.currency, env.favorites, env.comments, env.settings, nil)

	return env
}
