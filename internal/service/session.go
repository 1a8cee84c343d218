package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/bookhaven/bookhaven/internal/backend"
	"github.com/bookhaven/bookhaven/internal/domain"
	domainerrors "github.com/bookhaven/bookhaven/internal/errors"
	"github.com/bookhaven/bookhaven/internal/ratelimit"
	"github.com/bookhaven/bookhaven/internal/store"
	"github.com/bookhaven/bookhaven/internal/validation"
)

// SessionState describes where the session lifecycle currently stands.
type SessionState string

const (
	StateAnonymous      SessionState = "anonymous"
	StateAuthenticating SessionState = "authenticating"
	StateAuthenticated  SessionState = "authenticated"
	StateRefreshing     SessionState = "refreshing"
)

// SessionService owns the authentication lifecycle: login, registration,
// token refresh, hydration from disk, and logout. All state transitions
// happen under its lock; readers always see a consistent session.
type SessionService struct {
	backend   *backend.Client
	store     *store.Store
	limiter   *ratelimit.Limiter
	validator *validation.Validator
	logger    *slog.Logger

	// Refresh preemptively once less than half the access token's
	// lifetime remains.
	accessTokenTTL time.Duration

	mu      sync.Mutex
	state   SessionState
	session *domain.Session

	now func() time.Time
}

// NewSessionService creates a session service in the anonymous state.
func NewSessionService(
	backendClient *backend.Client,
	st *store.Store,
	limiter *ratelimit.Limiter,
	validator *validation.Validator,
	accessTokenTTL time.Duration,
	logger *slog.Logger,
) *SessionService {
	return &SessionService{
		backend:        backendClient,
		store:          st,
		limiter:        limiter,
		validator:      validator,
		accessTokenTTL: accessTokenTTL,
		logger:         logger,
		state:          StateAnonymous,
		now:            time.Now,
	}
}

// LoginRequest contains user credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest contains new account data.
type RegisterRequest struct {
	DisplayName string `json:"display_name" validate:"required,max=100"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,password"`
}

// Login authenticates with the backend. Repeated failures for the same
// email trip the rate limiter; a blocked email fails fast without touching
// the backend at all.
func (s *SessionService) Login(ctx context.Context, req LoginRequest) (*domain.Session, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if s.limiter.IsBlocked(req.Email) {
		remaining := s.limiter.BlockTimeRemaining(req.Email)
		return nil, domainerrors.RateLimited("too many failed login attempts", remaining)
	}

	s.setState(StateAuthenticating)

	session, err := s.backend.Login(ctx, req.Email, req.Password)
	if err != nil {
		s.setState(StateAnonymous)
		if domainerrors.Is(err, domainerrors.ErrInvalidCredentials) {
			s.limiter.RecordFailure(req.Email)
			if remaining := s.limiter.RemainingAttempts(req.Email); remaining > 0 {
				return nil, domainerrors.InvalidCredentialsf("invalid email or password, %d attempts remaining", remaining)
			}
			return nil, domainerrors.RateLimited("too many failed login attempts", s.limiter.BlockTimeRemaining(req.Email))
		}
		return nil, err
	}

	s.limiter.Reset(req.Email)
	s.adopt(session)

	if s.logger != nil {
		s.logger.Info("user logged in", "user_id", session.User.ID)
	}
	return session, nil
}

// Register creates an account and immediately authenticates it.
func (s *SessionService) Register(ctx context.Context, req RegisterRequest) (*domain.Session, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	s.setState(StateAuthenticating)

	session, err := s.backend.Register(ctx, req.DisplayName, req.Email, req.Password)
	if err != nil {
		s.setState(StateAnonymous)
		return nil, err
	}

	s.adopt(session)

	if s.logger != nil {
		s.logger.Info("user registered", "user_id", session.User.ID)
	}
	return session, nil
}

// Logout drops the session everywhere. It never fails: backend and storage
// problems are logged and swallowed, the in-memory state is always cleared.
func (s *SessionService) Logout(ctx context.Context) {
	s.mu.Lock()
	session := s.session
	s.session = nil
	s.state = StateAnonymous
	s.mu.Unlock()

	if session != nil && session.RefreshToken != "" {
		s.backend.Logout(ctx, session.RefreshToken)
	}

	if err := s.store.ClearSession(); err != nil && s.logger != nil {
		s.logger.Warn("failed to clear persisted session", "error", err)
	}

	if s.logger != nil {
		s.logger.Info("user logged out")
	}
}

// Refresh rotates the current session's tokens. The expiry never moves
// backwards: a refresh that would shorten the session keeps the old expiry.
// An invalid refresh token forces a logout; transient failures keep the
// current session so a later attempt can succeed.
func (s *SessionService) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.session == nil || s.session.RefreshToken == "" {
		s.mu.Unlock()
		return domainerrors.TokenExpired("no session to refresh")
	}
	if s.state == StateRefreshing {
		s.mu.Unlock()
		return nil
	}
	refreshToken := s.session.RefreshToken
	s.state = StateRefreshing
	s.mu.Unlock()

	rotated, err := s.backend.Refresh(ctx, refreshToken)
	if err != nil {
		if domainerrors.Is(err, domainerrors.ErrTokenExpired) {
			if s.logger != nil {
				s.logger.Warn("refresh token rejected, logging out")
			}
			s.Logout(ctx)
			return err
		}
		// Transient failure. Keep the session; the next tick retries.
		s.setState(StateAuthenticated)
		return err
	}

	s.mu.Lock()
	if s.session != nil && s.session.ExpiresAt != nil && rotated.ExpiresAt != nil &&
		rotated.ExpiresAt.Before(*s.session.ExpiresAt) {
		rotated.ExpiresAt = s.session.ExpiresAt
	}
	s.mu.Unlock()

	s.adopt(rotated)
	return nil
}

// RefreshIfNeeded refreshes when less than half the access token lifetime
// remains. Sessions without an expiry are treated as already expired.
func (s *SessionService) RefreshIfNeeded(ctx context.Context) error {
	s.mu.Lock()
	session := s.session
	s.mu.Unlock()

	if session == nil {
		return nil
	}

	if session.ExpiresAt != nil && session.RemainingValidity(s.now()) >= s.accessTokenTTL/2 {
		return nil
	}

	return s.Refresh(ctx)
}

// Hydrate restores a persisted session at startup. An expired session with
// a refresh token is refreshed in place; when that refresh fails for any
// reason the service starts anonymous rather than holding a token it knows
// is expired. Hydration problems are not fatal.
func (s *SessionService) Hydrate(ctx context.Context) {
	session, found, err := s.store.LoadSession()
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("failed to load persisted session", "error", err)
		}
		return
	}
	if !found {
		return
	}

	if !session.Expired(s.now()) {
		s.mu.Lock()
		s.session = session
		s.state = StateAuthenticated
		s.mu.Unlock()
		if s.logger != nil {
			s.logger.Info("session restored", "user_id", session.User.ID)
		}
		return
	}

	if session.RefreshToken == "" {
		if err := s.store.ClearSession(); err != nil && s.logger != nil {
			s.logger.Warn("failed to clear stale session", "error", err)
		}
		return
	}

	s.mu.Lock()
	s.session = session
	s.state = StateAuthenticated
	s.mu.Unlock()

	if err := s.Refresh(ctx); err != nil {
		if s.logger != nil {
			s.logger.Warn("failed to refresh restored session, starting anonymous", "error", err)
		}
		s.mu.Lock()
		s.session = nil
		s.state = StateAnonymous
		s.mu.Unlock()
		if cerr := s.store.ClearSession(); cerr != nil && s.logger != nil {
			s.logger.Warn("failed to clear stale session", "error", cerr)
		}
	}
}

// UpdateProfileRequest changes account details.
type UpdateProfileRequest struct {
	DisplayName string `json:"display_name" validate:"required,max=100"`
}

// UpdateProfile renames the current account.
func (s *SessionService) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*domain.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	s.mu.Lock()
	session := s.session
	s.mu.Unlock()
	if session == nil || !session.Authenticated() {
		return nil, domainerrors.InvalidCredentials("not logged in")
	}

	user, err := s.backend.UpdateProfile(ctx, session.AccessToken, req.DisplayName)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.session != nil {
		s.session.User = user
	}
	updated := s.session
	s.mu.Unlock()

	if updated != nil {
		if err := s.store.SaveSession(updated); err != nil && s.logger != nil {
			s.logger.Warn("failed to persist updated profile", "error", err)
		}
	}
	return user, nil
}

// ForgotPasswordRequest asks for a reset email.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ForgotPassword requests a password reset. The answer does not reveal
// whether the email exists.
func (s *SessionService) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}
	return s.backend.ForgotPassword(ctx, req.Email)
}

// State returns the current lifecycle state.
func (s *SessionService) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsAuthenticated reports whether a usable session is held.
func (s *SessionService) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session != nil && s.session.Authenticated() &&
		(s.state == StateAuthenticated || s.state == StateRefreshing)
}

// CurrentUser returns the logged-in user, or nil.
func (s *SessionService) CurrentUser() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	return s.session.User
}

// CSRFToken returns the session's CSRF token, or empty when anonymous.
func (s *SessionService) CSRFToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return ""
	}
	return s.session.CSRFToken
}

// ExpiresAt returns the session expiry, or nil.
func (s *SessionService) ExpiresAt() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	return s.session.ExpiresAt
}

// adopt installs a session in memory and persists it. Storage failures are
// logged and never surfaced: the in-memory session is the authority, and a
// write problem must not turn a successful authentication into an error.
func (s *SessionService) adopt(session *domain.Session) {
	s.mu.Lock()
	s.session = session
	s.state = StateAuthenticated
	s.mu.Unlock()

	if err := s.store.SaveSession(session); err != nil && s.logger != nil {
		s.logger.Warn("failed to persist session", "error", err)
	}
}

func (s *SessionService) setState(state SessionState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}
