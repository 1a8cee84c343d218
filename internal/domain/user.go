package domain

import "time"

// User is the public identity of an account. Password material never lives
// here; the mock backend keeps its own credential records.
type User struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Touch updates the UpdatedAt timestamp to the current time.
func (u *User) Touch() {
	u.UpdatedAt = time.Now()
}

// Session is the authenticated-identity state held client-side.
// AccessToken is non-empty iff the session is authenticated. ExpiresAt is nil
// for a session that never received a token; across refreshes of the same
// session it is monotonically non-decreasing.
type Session struct {
	User         *User      `json:"user"`
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	ExpiresAt    *time.Time `json:"expires_at"`
	CSRFToken    string     `json:"csrf_token"`
}

// Authenticated reports whether the session holds an access token.
func (s *Session) Authenticated() bool {
	return s != nil && s.AccessToken != ""
}

// Expired reports whether the session's access token has passed its expiry.
// A session without an expiry is treated as expired.
func (s *Session) Expired(now time.Time) bool {
	if s == nil || s.ExpiresAt == nil {
		return true
	}
	return !now.Before(*s.ExpiresAt)
}

// RemainingValidity returns how long the access token is still valid.
// Zero for expired or tokenless sessions.
func (s *Session) RemainingValidity(now time.Time) time.Duration {
	if s == nil || s.ExpiresAt == nil {
		return 0
	}
	if remaining := s.ExpiresAt.Sub(now); remaining > 0 {
		return remaining
	}
	return 0
}
