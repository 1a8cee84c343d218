// Package backend simulates the remote bookstore API. It answers with
// realistic latency, issues real tokens, and serves a deterministic
// catalog, so the layers above behave exactly as they would against a
// live server.
package backend

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/bookhaven/bookhaven/internal/auth"
	"github.com/bookhaven/bookhaven/internal/domain"
	"github.com/bookhaven/bookhaven/internal/errors"
	"github.com/bookhaven/bookhaven/internal/id"
)

// Config controls the simulated API behaviour.
type Config struct {
	// Latency added to every call. Zero disables the delay, which keeps
	// tests fast.
	Latency time.Duration

	ItemsPerPage int
	MaxPages     int

	BaseCurrency string
}

type account struct {
	user         domain.User
	passwordHash string
}

type refreshRecord struct {
	userID    string
	expiresAt time.Time
}

// Client is the in-process stand-in for the bookstore's remote API.
type Client struct {
	cfg    Config
	tokens *auth.TokenService
	logger *slog.Logger

	// Outbound pacing. A real client would never hammer the API in a
	// tight loop; neither do we.
	limiter *rate.Limiter

	mu       sync.Mutex
	accounts map[string]*account       // keyed by email
	refresh  map[string]*refreshRecord // keyed by refresh token hash

	// rateErr, when set, makes FetchRates fail. Used to exercise the
	// offline fallback path.
	rateErr error

	now func() time.Time
}

// New creates a backend client seeded with a demo account.
func New(cfg Config, tokens *auth.TokenService, logger *slog.Logger) (*Client, error) {
	if cfg.ItemsPerPage <= 0 {
		cfg.ItemsPerPage = 12
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 5
	}
	if cfg.BaseCurrency == "" {
		cfg.BaseCurrency = "TRY"
	}

	c := &Client{
		cfg:      cfg,
		tokens:   tokens,
		logger:   logger,
		limiter:  rate.NewLimiter(rate.Every(50*time.Millisecond), 10),
		accounts: make(map[string]*account),
		refresh:  make(map[string]*refreshRecord),
		now:      time.Now,
	}

	if err := c.seedAccounts(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Client) seedAccounts() error {
	hash, err := auth.HashPassword("Passw0rd")
	if err != nil {
		return errors.Internal("failed to seed demo account").WithCause(err)
	}
	now := c.now()
	c.accounts["demo@bookhaven.dev"] = &account{
		user: domain.User{
			ID:          "user-demo",
			DisplayName: "Demo Reader",
			Email:       "demo@bookhaven.dev",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		passwordHash: hash,
	}
	return nil
}

// call applies pacing and latency. All public methods go through it.
func (c *Client) call(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return errors.TransientIO("request cancelled").WithCause(err)
	}
	if c.cfg.Latency <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(c.cfg.Latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return errors.TransientIO("request cancelled").WithCause(ctx.Err())
	case <-timer.C:
		return nil
	}
}

// Login verifies credentials and issues a fresh session.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	if err := c.call(ctx); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	acct, ok := c.accounts[email]
	if !ok {
		return nil, errors.InvalidCredentials("invalid email or password")
	}

	match, err := auth.VerifyPassword(acct.passwordHash, password)
	if err != nil {
		return nil, errors.Internal("password verification failed").WithCause(err)
	}
	if !match {
		return nil, errors.InvalidCredentials("invalid email or password")
	}

	return c.issueSessionLocked(&acct.user)
}

// Register creates an account and logs it in.
func (c *Client) Register(ctx context.Context, displayName, email, password string) (*domain.Session, error) {
	if err := c.call(ctx); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.accounts[email]; exists {
		return nil, errors.AlreadyExists("an account with this email already exists")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, errors.Internal("failed to hash password").WithCause(err)
	}

	userID, err := id.Generate("user")
	if err != nil {
		return nil, errors.Internal("failed to generate user ID").WithCause(err)
	}

	now := c.now()
	acct := &account{
		user: domain.User{
			ID:          userID,
			DisplayName: displayName,
			Email:       email,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		passwordHash: hash,
	}
	c.accounts[email] = acct

	return c.issueSessionLocked(&acct.user)
}

// Refresh rotates a refresh token. The presented token is invalidated and a
// new session is issued; an unknown or expired token fails.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*domain.Session, error) {
	if err := c.call(ctx); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	hash := auth.HashRefreshToken(refreshToken)
	record, ok := c.refresh[hash]
	if !ok {
		return nil, errors.TokenExpired("refresh token is not valid")
	}
	if c.now().After(record.expiresAt) {
		delete(c.refresh, hash)
		return nil, errors.TokenExpired("refresh token has expired")
	}

	acct := c.accountByIDLocked(record.userID)
	if acct == nil {
		delete(c.refresh, hash)
		return nil, errors.TokenExpired("refresh token is not valid")
	}

	// Single use. The old token dies with this rotation.
	delete(c.refresh, hash)

	return c.issueSessionLocked(&acct.user)
}

// Logout invalidates a refresh token. Unknown tokens are ignored; logout
// never fails from the caller's point of view.
func (c *Client) Logout(ctx context.Context, refreshToken string) {
	if err := c.call(ctx); err != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.refresh, auth.HashRefreshToken(refreshToken))
}

// UpdateProfile changes the display name on the account behind the token.
func (c *Client) UpdateProfile(ctx context.Context, accessToken, displayName string) (*domain.User, error) {
	if err := c.call(ctx); err != nil {
		return nil, err
	}

	claims, err := c.tokens.VerifyAccessToken(accessToken)
	if err != nil {
		return nil, errors.TokenExpired("access token is not valid").WithCause(err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	acct := c.accountByIDLocked(claims.UserID)
	if acct == nil {
		return nil, errors.NotFound("account no longer exists")
	}

	acct.user.DisplayName = displayName
	acct.user.Touch()

	user := acct.user
	return &user, nil
}

// ForgotPassword acknowledges a reset request. It deliberately gives the
// same answer whether or not the email is known.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	if err := c.call(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	_, known := c.accounts[email]
	c.mu.Unlock()

	if c.logger != nil {
		c.logger.Debug("password reset requested", "email", email, "known", known)
	}
	return nil
}

// issueSessionLocked creates tokens for a user. Callers hold c.mu.
func (c *Client) issueSessionLocked(user *domain.User) (*domain.Session, error) {
	accessToken, expiresAt, err := c.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, errors.Internal("failed to issue access token").WithCause(err)
	}

	refreshToken, err := c.tokens.GenerateRefreshToken()
	if err != nil {
		return nil, errors.Internal("failed to issue refresh token").WithCause(err)
	}

	c.refresh[auth.HashRefreshToken(refreshToken)] = &refreshRecord{
		userID:    user.ID,
		expiresAt: c.now().Add(c.tokens.RefreshTokenDuration()),
	}

	u := *user
	return &domain.Session{
		User:         &u,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    &expiresAt,
		CSRFToken:    c.tokens.GenerateCSRFToken(),
	}, nil
}

func (c *Client) accountByIDLocked(userID string) *account {
	for _, acct := range c.accounts {
		if acct.user.ID == userID {
			return acct
		}
	}
	return nil
}
