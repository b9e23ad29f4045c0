package cart

// Storage persists the cart between visits. Save must complete before a
// mutation is reported as applied.
type Storage interface {
	LoadCart() ([]Item, error)
	SaveCart(items []Item) error
}

// NopStorage keeps nothing. Useful for server-side carts built only to
// compute totals.
type NopStorage struct{}

func (NopStorage) LoadCart() ([]Item, error) { return nil, nil }
func (NopStorage) SaveCart([]Item) error     { return nil }
