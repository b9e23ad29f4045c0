package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/oblivions/storefront/internal/core/domain"
	"github.com/oblivions/storefront/internal/core/ports"
)

const minPasswordLength = 8

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// AuthService implements registration, login and logout on top of the
// credential store and the session authority.
type AuthService struct {
	users    ports.UserRepository
	sessions ports.SessionAuthority
	cost     int
	log      zerolog.Logger

	dummyOnce sync.Once
	dummyHash []byte
}

func NewAuthService(users ports.UserRepository, sessions ports.SessionAuthority, log zerolog.Logger) *AuthService {
	return &AuthService{users: users, sessions: sessions, cost: bcrypt.DefaultCost, log: log}
}

// WithHashCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func (s *AuthService) WithHashCost(cost int) *AuthService {
	s.cost = cost
	return s
}

func (s *AuthService) Register(ctx context.Context, sessionID string, in ports.RegisterInput) (*ports.AuthResult, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	if name == "" || email == "" || strings.TrimSpace(in.Password) == "" {
		return nil, domain.NewValidationError("All fields are required")
	}
	if !emailPattern.MatchString(email) {
		return nil, domain.NewValidationError("Invalid email format")
	}
	if err := ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	user, err := s.createUser(ctx, name, email, in.Password, domain.RoleUser)
	if err != nil {
		return nil, err
	}

	// The account stays when the session cannot be issued; the caller can
	// sign in with the same credentials.
	sess, err := s.sessions.Authenticate(ctx, sessionID, user)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("user registered without a session")
		return nil, fmt.Errorf("register: account created, sign-in failed: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("user registered")
	return &ports.AuthResult{User: user, Session: sess}, nil
}

func (s *AuthService) Login(ctx context.Context, sessionID, email, password string) (*ports.AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, domain.NewValidationError("Email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Spend the same bcrypt work as a real comparison.
			_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	sess, err := s.sessions.Authenticate(ctx, sessionID, user)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Str("role", user.Role).Msg("user logged in")
	return &ports.AuthResult{User: user, Session: sess}, nil
}

func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Destroy(ctx, sessionID)
}

// EnsureAdmin creates the admin account unless a user with that email
// already exists. The boolean reports whether a user was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, name, email, password string) (*domain.User, bool, error) {
	email = strings.TrimSpace(email)
	if !emailPattern.MatchString(email) {
		return nil, false, domain.NewValidationError("Invalid admin email")
	}
	if err := ValidatePassword(password); err != nil {
		return nil, false, err
	}
	if strings.TrimSpace(name) == "" {
		name = "Admin"
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, false, fmt.Errorf("ensure admin: %w", err)
	}

	user, err := s.createUser(ctx, strings.TrimSpace(name), email, password, domain.RoleAdmin)
	if errors.Is(err, domain.ErrUserExists) {
		// Lost a race with another seeder.
		existing, err := s.users.FindByEmail(ctx, email)
		return existing, false, err
	}
	if err != nil {
		return nil, false, err
	}

	s.log.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("admin user created")
	return user, true, nil
}

// createUser runs the advisory duplicate check, hashes the password and
// inserts the user. The store's unique constraint is what actually closes
// the check-then-insert race.
func (s *AuthService) createUser(ctx context.Context, name, email, password, role string) (*domain.User, error) {
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.users.Create(ctx, &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *AuthService) dummy() []byte {
	s.dummyOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte("storefront-placeholder"), s.cost)
		if err != nil {
			s.log.Warn().Err(err).Msg("failed to build placeholder hash")
			return
		}
		s.dummyHash = h
	})
	return s.dummyHash
}

// ValidatePassword applies the single password policy used everywhere:
// at least 8 characters with one uppercase letter and one digit.
func ValidatePassword(password string) error {
	if len([]rune(password)) < minPasswordLength {
		return domain.NewValidationError(fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	}
	var upper, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper {
		return domain.NewValidationError("Password must contain at least one uppercase letter")
	}
	if !digit {
		return domain.NewValidationError("Password must contain at least one number")
	}
	return nil
}
