package cart

import (
	"errors"
	"fmt"
)

var ErrProductNotFound = errors.New("product not found")

// Item is one cart entry. Quantity is always at least 1.
type Item struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

// Line is an Item resolved against the catalog.
type Line struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
	Subtotal int64   `json:"subtotal"`
}

// Snapshot is the cart state published after every mutation.
type Snapshot struct {
	Items []Item `json:"items"`
	Count int    `json:"count"`
	Total int64  `json:"total"`
}

type Option func(*Store)

// WithCatalog replaces the fixed catalog.
func WithCatalog(products []Product) Option {
	return func(s *Store) { s.catalog = indexCatalog(products) }
}

// WithListener registers fn to receive the new snapshot after each
// persisted mutation.
func WithListener(fn func(Snapshot)) Option {
	return func(s *Store) { s.onChange = fn }
}

// Store is an ordered cart keyed by product. It is not safe for
// concurrent use.
type Store struct {
	catalog  map[int]Product
	items    []Item
	storage  Storage
	onChange func(Snapshot)
}

// NewStore loads the persisted cart from storage. Entries for unknown
// products and entries with a quantity below 1 are dropped.
func NewStore(storage Storage, opts ...Option) (*Store, error) {
	if storage == nil {
		storage = NopStorage{}
	}
	s := &Store{catalog: indexCatalog(defaultCatalog), storage: storage}
	for _, opt := range opts {
		opt(s)
	}

	loaded, err := storage.LoadCart()
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	s.items = s.sanitize(loaded)
	return s, nil
}

// Add puts one unit of the product in the cart.
func (s *Store) Add(productID int) error {
	if _, ok := s.catalog[productID]; !ok {
		return ErrProductNotFound
	}
	next := s.clone()
	if i := indexOf(next, productID); i >= 0 {
		next[i].Quantity++
	} else {
		next = append(next, Item{ProductID: productID, Quantity: 1})
	}
	return s.commit(next)
}

// Remove deletes the product's entry. Removing an absent product is a no-op.
func (s *Store) Remove(productID int) error {
	next := s.clone()
	if i := indexOf(next, productID); i >= 0 {
		next = append(next[:i], next[i+1:]...)
	}
	return s.commit(next)
}

// SetQuantity sets the product's quantity; n <= 0 removes the entry.
// Absent products are left absent.
func (s *Store) SetQuantity(productID, n int) error {
	if n <= 0 {
		return s.Remove(productID)
	}
	next := s.clone()
	if i := indexOf(next, productID); i >= 0 {
		next[i].Quantity = n
	}
	return s.commit(next)
}

func (s *Store) Clear() error {
	return s.commit(nil)
}

// Total is the sum of price times quantity.
func (s *Store) Total() int64 {
	var total int64
	for _, it := range s.items {
		total += s.catalog[it.ProductID].Price * int64(it.Quantity)
	}
	return total
}

// Count is the sum of quantities.
func (s *Store) Count() int {
	var n int
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

func (s *Store) Items() []Item {
	return s.clone()
}

// Lines resolves every entry against the catalog, in cart order.
func (s *Store) Lines() []Line {
	lines := make([]Line, 0, len(s.items))
	for _, it := range s.items {
		p := s.catalog[it.ProductID]
		lines = append(lines, Line{Product: p, Quantity: it.Quantity, Subtotal: p.Price * int64(it.Quantity)})
	}
	return lines
}

func (s *Store) Snapshot() Snapshot {
	return Snapshot{Items: s.clone(), Count: s.Count(), Total: s.Total()}
}

// commit persists next and only then makes it the current state.
func (s *Store) commit(next []Item) error {
	if next == nil {
		next = []Item{}
	}
	if err := s.storage.SaveCart(next); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	s.items = next
	if s.onChange != nil {
		s.onChange(s.Snapshot())
	}
	return nil
}

func (s *Store) clone() []Item {
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) sanitize(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.Quantity < 1 {
			continue
		}
		if _, ok := s.catalog[it.ProductID]; !ok {
			continue
		}
		if i := indexOf(out, it.ProductID); i >= 0 {
			out[i].Quantity += it.Quantity
			continue
		}
		out = append(out, it)
	}
	return out
}

func indexOf(items []Item, productID int) int {
	for i, it := range items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}
