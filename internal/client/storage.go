package client

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/oblivions/storefront/internal/core/cart"
)

// Keys used in client storage.
const (
	CartKey    = "storefront_cart"
	SessionKey = "storefront_session"
)

// Storage is the client-side key/value area the cart and the session
// mirror persist into.
type Storage interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte) error
	Delete(key string) error
}

// MemoryStorage is a Storage held in process memory.
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string][]byte)}
}

func (m *MemoryStorage) Get(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), v...), true
}

func (m *MemoryStorage) Set(key string, value []byte) error {
	m.mu.Lock()
	m.data[key] = append([]byte(nil), value...)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStorage) Delete(key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}

// cartStorage persists cart items as JSON under CartKey.
type cartStorage struct {
	kv Storage
}

func (s cartStorage) LoadCart() ([]cart.Item, error) {
	raw, ok := s.kv.Get(CartKey)
	if !ok || len(raw) == 0 {
		return nil, nil
	}
	var items []cart.Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return items, nil
}

func (s cartStorage) SaveCart(items []cart.Item) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	return s.kv.Set(CartKey, raw)
}
