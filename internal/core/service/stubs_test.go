package service

import (
	"context"
	"strings"
	"sync"

	"github.com/oblivions/storefront/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu        sync.Mutex
	users     map[string]*domain.User
	findErr   error
	createErr error
	listErr   error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	if u, ok := r.users[strings.ToLower(email)]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	key := strings.ToLower(user.Email)
	if _, exists := r.users[key]; exists {
		return nil, domain.ErrUserExists
	}
	r.users[key] = cloneUser(user)
	return cloneUser(user), nil
}

func (r *stubUserRepo) List(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

type stubSessionStore struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
	saveErr  error
	deleted  []string
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{sessions: make(map[string]domain.Session)}
}

func (s *stubSessionStore) Save(_ context.Context, sess *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.sessions[sess.ID] = *sess
	return nil
}

func (s *stubSessionStore) Get(_ context.Context, id string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &sess, nil
}

func (s *stubSessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubSessionStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

type stubOrderRepo struct {
	orders  []domain.Order
	items   map[string][]domain.OrderItem
	listErr error
}

func (r *stubOrderRepo) Create(_ context.Context, order *domain.Order, items []domain.OrderItem) (*domain.Order, error) {
	r.orders = append(r.orders, *order)
	if r.items == nil {
		r.items = make(map[string][]domain.OrderItem)
	}
	r.items[order.ID] = append(r.items[order.ID], items...)
	return order, nil
}

func (r *stubOrderRepo) List(_ context.Context) ([]domain.Order, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.orders, nil
}

func (r *stubOrderRepo) ListItems(_ context.Context, orderID string) ([]domain.OrderItem, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.items[orderID], nil
}
