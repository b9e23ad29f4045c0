package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/oblivions/storefront/internal/core/domain"
	"github.com/oblivions/storefront/internal/core/ports"
)

func newTestAuth(t *testing.T) (*AuthService, *stubUserRepo, *SessionService) {
	t.Helper()
	repo := newStubUserRepo()
	sessions := NewSessionService(newStubSessionStore(), time.Hour, zerolog.Nop())
	svc := NewAuthService(repo, sessions, zerolog.Nop()).WithHashCost(bcrypt.MinCost)
	return svc, repo, sessions
}

func TestAuthService_Register_Success(t *testing.T) {
	svc, repo, _ := newTestAuth(t)

	res, err := svc.Register(context.Background(), "", ports.RegisterInput{
		Name:     "  Alice  ",
		Email:    " alice@example.com ",
		Password: "Password1",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if res.User.Name != "Alice" || res.User.Email != "alice@example.com" {
		t.Fatalf("expected trimmed fields, got %q %q", res.User.Name, res.User.Email)
	}
	if res.User.Role != domain.RoleUser {
		t.Fatalf("unexpected role: %s", res.User.Role)
	}
	if res.User.ID == "" {
		t.Fatalf("expected generated id")
	}
	stored, err := repo.FindByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("user not stored: %v", err)
	}
	if stored.PasswordHash == "Password1" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("Password1")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if !res.Session.Authenticated() || res.Session.UserID != res.User.ID {
		t.Fatalf("expected session bound to new user")
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc, _, _ := newTestAuth(t)

	cases := []struct {
		name string
		in   ports.RegisterInput
		msg  string
	}{
		{"missing name", ports.RegisterInput{Name: " ", Email: "a@b.co", Password: "Password1"}, "All fields are required"},
		{"missing password", ports.RegisterInput{Name: "A", Email: "a@b.co"}, "All fields are required"},
		{"bad email", ports.RegisterInput{Name: "A", Email: "not-an-email", Password: "Password1"}, "Invalid email format"},
		{"short password", ports.RegisterInput{Name: "A", Email: "a@b.co", Password: "Pass1"}, "Password must be at least 8 characters"},
		{"no uppercase", ports.RegisterInput{Name: "A", Email: "a@b.co", Password: "password1"}, "Password must contain at least one uppercase letter"},
		{"no digit", ports.RegisterInput{Name: "A", Email: "a@b.co", Password: "Passwordx"}, "Password must contain at least one number"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), "", tc.in)
			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Message != tc.msg {
				t.Fatalf("expected %q, got %q", tc.msg, ve.Message)
			}
		})
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	svc, _, _ := newTestAuth(t)
	ctx := context.Background()
	in := ports.RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "Password1"}

	if _, err := svc.Register(ctx, "", in); err != nil {
		t.Fatalf("first Register returned error: %v", err)
	}
	if _, err := svc.Register(ctx, "", in); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Register_StorageFailure(t *testing.T) {
	svc, repo, _ := newTestAuth(t)
	repo.findErr = domain.ErrStorage

	_, err := svc.Register(context.Background(), "", ports.RegisterInput{Name: "A", Email: "a@b.co", Password: "Password1"})
	if !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
}

func TestAuthService_Register_SessionFailureKeepsAccount(t *testing.T) {
	repo := newStubUserRepo()
	store := newStubSessionStore()
	store.saveErr = domain.ErrStorage
	var logs bytes.Buffer
	svc := NewAuthService(repo, NewSessionService(store, time.Hour, zerolog.Nop()), zerolog.New(&logs)).
		WithHashCost(bcrypt.MinCost)
	ctx := context.Background()

	_, err := svc.Register(ctx, "", ports.RegisterInput{Name: "A", Email: "a@b.co", Password: "Password1"})
	if !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
	stored, err := repo.FindByEmail(ctx, "a@b.co")
	if err != nil {
		t.Fatalf("expected account to be kept: %v", err)
	}
	if !strings.Contains(logs.String(), "user registered without a session") || !strings.Contains(logs.String(), stored.ID) {
		t.Fatalf("expected error log naming the user, got %s", logs.String())
	}

	store.saveErr = nil
	if _, err := svc.Login(ctx, "", "a@b.co", "Password1"); err != nil {
		t.Fatalf("expected login to recover the account, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, _, sessions := newTestAuth(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "", ports.RegisterInput{Name: "Bob", Email: "bob@example.com", Password: "Password1"}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	anon, err := sessions.Begin(ctx, "")
	if err != nil {
		t.Fatalf("Begin returned error: %v", err)
	}

	res, err := svc.Login(ctx, anon.ID, "bob@example.com", "Password1")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if res.User.Name != "Bob" || res.Session.Role != domain.RoleUser {
		t.Fatalf("unexpected login result: %+v", res.Session)
	}
	if res.Session.ID == anon.ID {
		t.Fatalf("expected session id rotation on login")
	}
	if res.Session.CSRFToken != anon.CSRFToken {
		t.Fatalf("expected csrf token to survive login")
	}
}

func TestAuthService_Login_IndistinguishableFailures(t *testing.T) {
	svc, _, _ := newTestAuth(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "", ports.RegisterInput{Name: "Bob", Email: "bob@example.com", Password: "Password1"}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	_, wrongPassword := svc.Login(ctx, "", "bob@example.com", "Wrong1234")
	_, unknownEmail := svc.Login(ctx, "", "nobody@example.com", "Password1")

	if !errors.Is(wrongPassword, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", wrongPassword)
	}
	if !errors.Is(unknownEmail, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", unknownEmail)
	}
	if wrongPassword.Error() != unknownEmail.Error() {
		t.Fatalf("failure messages differ: %q vs %q", wrongPassword, unknownEmail)
	}
}

func TestAuthService_Login_MissingFields(t *testing.T) {
	svc, _, _ := newTestAuth(t)
	if _, err := svc.Login(context.Background(), "", "", "x"); !domain.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestAuthService_Logout(t *testing.T) {
	svc, _, sessions := newTestAuth(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, "", ports.RegisterInput{Name: "C", Email: "c@example.com", Password: "Password1"})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if err := svc.Logout(ctx, res.Session.ID); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if _, err := sessions.Resolve(ctx, res.Session.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session to be destroyed, got %v", err)
	}
	if err := svc.Logout(ctx, res.Session.ID); err != nil {
		t.Fatalf("repeated Logout returned error: %v", err)
	}
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	svc, _, _ := newTestAuth(t)
	ctx := context.Background()

	user, created, err := svc.EnsureAdmin(ctx, "", "admin@example.com", "Admin1234")
	if err != nil {
		t.Fatalf("EnsureAdmin returned error: %v", err)
	}
	if !created || user.Role != domain.RoleAdmin || user.Name != "Admin" {
		t.Fatalf("unexpected admin: created=%v %+v", created, user)
	}

	again, created, err := svc.EnsureAdmin(ctx, "Other", "admin@example.com", "Admin1234")
	if err != nil {
		t.Fatalf("second EnsureAdmin returned error: %v", err)
	}
	if created || again.ID != user.ID {
		t.Fatalf("expected existing admin to be returned")
	}
}

func TestAuthService_EnsureAdmin_WeakPassword(t *testing.T) {
	svc, _, _ := newTestAuth(t)
	if _, _, err := svc.EnsureAdmin(context.Background(), "Admin", "admin@example.com", "weak"); !domain.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}
