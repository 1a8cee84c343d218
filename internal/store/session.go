package store

import (
	"fmt"
	"time"

	"github.com/bookhaven/bookhaven/internal/domain"
)

// SaveSession persists every part of a session under its own sealed key.
// A nil expiry clears the expiry key rather than writing a zero time.
func (s *Store) SaveSession(session *domain.Session) error {
	if err := s.setSealed(keySessionAccessToken, session.AccessToken); err != nil {
		return fmt.Errorf("save access token: %w", err)
	}
	if err := s.setSealed(keySessionRefreshToken, session.RefreshToken); err != nil {
		return fmt.Errorf("save refresh token: %w", err)
	}
	if err := s.setSealed(keySessionCSRFToken, session.CSRFToken); err != nil {
		return fmt.Errorf("save csrf token: %w", err)
	}
	if err := s.setSealed(keySessionUser, session.User); err != nil {
		return fmt.Errorf("save session user: %w", err)
	}

	if session.ExpiresAt == nil {
		if err := s.delete(keySessionExpiresAt); err != nil {
			return fmt.Errorf("clear session expiry: %w", err)
		}
		return nil
	}
	if err := s.setSealed(keySessionExpiresAt, session.ExpiresAt.Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("save session expiry: %w", err)
	}
	return nil
}

// LoadSession reassembles a persisted session. Returns false when no
// session has been saved. A session without an access token does not count.
func (s *Store) LoadSession() (*domain.Session, bool, error) {
	session := &domain.Session{}

	found, err := s.getSealed(keySessionAccessToken, &session.AccessToken)
	if err != nil {
		return nil, false, fmt.Errorf("load access token: %w", err)
	}
	if !found || session.AccessToken == "" {
		return nil, false, nil
	}

	if _, err := s.getSealed(keySessionRefreshToken, &session.RefreshToken); err != nil {
		return nil, false, fmt.Errorf("load refresh token: %w", err)
	}
	if _, err := s.getSealed(keySessionCSRFToken, &session.CSRFToken); err != nil {
		return nil, false, fmt.Errorf("load csrf token: %w", err)
	}
	if _, err := s.getSealed(keySessionUser, &session.User); err != nil {
		return nil, false, fmt.Errorf("load session user: %w", err)
	}

	var expiry string
	hasExpiry, err := s.getSealed(keySessionExpiresAt, &expiry)
	if err != nil {
		return nil, false, fmt.Errorf("load session expiry: %w", err)
	}
	if hasExpiry {
		t, err := time.Parse(time.RFC3339Nano, expiry)
		if err != nil {
			return nil, false, fmt.Errorf("parse session expiry: %w", err)
		}
		session.ExpiresAt = &t
	}

	return session, true, nil
}

// ClearSession removes every session key. Clearing an absent session is fine.
func (s *Store) ClearSession() error {
	return s.delete(
		keySessionAccessToken,
		keySessionRefreshToken,
		keySessionExpiresAt,
		keySessionUser,
		keySessionCSRFToken,
	)
}
