package domain

import "time"

// DefaultSessionTTL is the absolute lifetime of a session.
const DefaultSessionTTL = 24 * time.Hour

// Session is the server-held record behind the session cookie.
// A session with an empty UserID is anonymous: it only carries a CSRF token.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id,omitempty"`
	Role      string    `json:"role,omitempty"`
	Name      string    `json:"name,omitempty"`
	CSRFToken string    `json:"csrf_token"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Authenticated reports whether the session is bound to a user.
func (s *Session) Authenticated() bool {
	return s != nil && s.UserID != ""
}

// ExpiredAt reports whether the session is no longer valid at t.
// Expiry is absolute: the session dies exactly at ExpiresAt.
func (s *Session) ExpiredAt(t time.Time) bool {
	return !t.Before(s.ExpiresAt)
}
