package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/oblivions/storefront/internal/core/domain"
	"github.com/oblivions/storefront/internal/core/ports"
)

const (
	sessionIDBytes = 32
	csrfTokenBytes = 32
)

// SessionService is the session authority: it issues anonymous and
// authenticated sessions, binds one CSRF token to each, and enforces the
// absolute expiry.
type SessionService struct {
	store ports.SessionStore
	ttl   time.Duration
	now   func() time.Time
	log   zerolog.Logger
}

func NewSessionService(store ports.SessionStore, ttl time.Duration, log zerolog.Logger) *SessionService {
	if ttl <= 0 {
		ttl = domain.DefaultSessionTTL
	}
	return &SessionService{store: store, ttl: ttl, now: time.Now, log: log}
}

// WithClock replaces the time source. Intended for tests.
func (s *SessionService) WithClock(now func() time.Time) *SessionService {
	s.now = now
	return s
}

func (s *SessionService) Begin(ctx context.Context, id string) (*domain.Session, error) {
	if id != "" {
		sess, err := s.Resolve(ctx, id)
		if err == nil {
			return sess, nil
		}
		if !isGone(err) {
			return nil, err
		}
	}

	csrf, err := newCSRFToken()
	if err != nil {
		return nil, err
	}
	sess, err := s.issue(ctx, nil, csrf)
	if err != nil {
		return nil, fmt.Errorf("begin session: %w", err)
	}
	return sess, nil
}

// Authenticate issues a session for user. A user whose stored role is not
// one of the known roles gets no session.
func (s *SessionService) Authenticate(ctx context.Context, prevID string, user *domain.User) (*domain.Session, error) {
	if !domain.ValidRole(user.Role) {
		s.log.Warn().Str("user_id", user.ID).Str("role", user.Role).Msg("refusing session for unknown role")
		return nil, domain.ErrForbidden
	}
	var csrf string
	if prevID != "" {
		prev, err := s.Resolve(ctx, prevID)
		switch {
		case err == nil:
			csrf = prev.CSRFToken
		case !isGone(err):
			return nil, err
		}
	}
	if csrf == "" {
		var err error
		if csrf, err = newCSRFToken(); err != nil {
			return nil, err
		}
	}

	sess, err := s.issue(ctx, user, csrf)
	if err != nil {
		return nil, fmt.Errorf("authenticate session: %w", err)
	}

	// The pre-login id must not survive the privilege change.
	if prevID != "" {
		if err := s.store.Delete(ctx, prevID); err != nil {
			s.log.Warn().Err(err).Msg("failed to drop pre-login session")
		}
	}

	s.log.Debug().Str("user_id", user.ID).Str("role", user.Role).Msg("session authenticated")
	return sess, nil
}

func (s *SessionService) Resolve(ctx context.Context, id string) (*domain.Session, error) {
	if id == "" {
		return nil, domain.ErrSessionNotFound
	}
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.ExpiredAt(s.now()) {
		if err := s.store.Delete(ctx, id); err != nil {
			s.log.Warn().Err(err).Msg("failed to drop expired session")
		}
		return nil, domain.ErrSessionExpired
	}
	return sess, nil
}

func (s *SessionService) Destroy(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}

func (s *SessionService) issue(ctx context.Context, user *domain.User, csrf string) (*domain.Session, error) {
	id, err := newSessionID()
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	sess := &domain.Session{
		ID:        id,
		CSRFToken: csrf,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if user != nil {
		sess.UserID = user.ID
		sess.Role = user.Role
		sess.Name = user.Name
	}

	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func isGone(err error) bool {
	return errors.Is(err, domain.ErrSessionNotFound) || errors.Is(err, domain.ErrSessionExpired)
}

func newSessionID() (string, error) {
	b := make([]byte, sessionIDBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func newCSRFToken() (string, error) {
	b := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate csrf token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
