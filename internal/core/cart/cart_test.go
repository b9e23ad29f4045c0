package cart

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStorage struct {
	items   []Item
	saves   int
	saveErr error
}

func (m *memStorage) LoadCart() ([]Item, error) { return m.items, nil }

func (m *memStorage) SaveCart(items []Item) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.items = append([]Item(nil), items...)
	return nil
}

func newTestStore(t *testing.T, opts ...Option) (*Store, *memStorage) {
	t.Helper()
	st := &memStorage{}
	s, err := NewStore(st, opts...)
	require.NoError(t, err)
	return s, st
}

func TestStore_CountAndTotal(t *testing.T) {
	s, st := newTestStore(t)

	require.NoError(t, s.Add(1))
	require.NoError(t, s.Add(1))
	require.NoError(t, s.Add(2))

	assert.Equal(t, 3, s.Count())
	assert.Equal(t, int64(3297), s.Total())
	assert.Equal(t, []Item{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 1}}, s.Items())
	assert.Equal(t, s.Items(), st.items, "every mutation is persisted")
}

func TestStore_AddAccumulates(t *testing.T) {
	s, _ := newTestStore(t)

	require.ErrorIs(t, s.Add(99), ErrProductNotFound)
	require.NoError(t, s.Add(3))
	require.NoError(t, s.Add(3))

	require.Len(t, s.Items(), 1)
	assert.Equal(t, 2, s.Items()[0].Quantity)
}

func TestStore_AddUnknownLeavesStateUnchanged(t *testing.T) {
	s, st := newTestStore(t)
	require.NoError(t, s.Add(1))
	saves := st.saves

	err := s.Add(42)

	require.ErrorIs(t, err, ErrProductNotFound)
	assert.Equal(t, 1, s.Count())
	assert.Equal(t, saves, st.saves)
}

func TestStore_SetQuantityZeroEqualsRemove(t *testing.T) {
	a, _ := newTestStore(t)
	b, _ := newTestStore(t)
	for _, s := range []*Store{a, b} {
		require.NoError(t, s.Add(1))
		require.NoError(t, s.Add(2))
		require.NoError(t, s.Add(2))
	}

	require.NoError(t, a.SetQuantity(2, 0))
	require.NoError(t, b.Remove(2))

	assert.Equal(t, a.Snapshot(), b.Snapshot())
	assert.Equal(t, []Item{{ProductID: 1, Quantity: 1}}, a.Items())
}

func TestStore_SetQuantityAbsentIsNoop(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.SetQuantity(4, 3))
	assert.Empty(t, s.Items())

	require.NoError(t, s.Add(4))
	require.NoError(t, s.SetQuantity(4, 5))
	assert.Equal(t, 5, s.Count())
	assert.Equal(t, int64(5*1599), s.Total())
}

func TestStore_RemoveIsIdempotent(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Add(1))

	require.NoError(t, s.Remove(1))
	require.NoError(t, s.Remove(1))
	assert.Zero(t, s.Count())
}

func TestStore_TotalIsExact(t *testing.T) {
	prices := map[int]int64{1: 1299, 2: 699, 3: 2499, 4: 1599}

	for q := 1; q <= 5; q++ {
		s, _ := newTestStore(t)
		var want int64
		for id := 1; id <= 4; id++ {
			require.NoError(t, s.Add(id))
			require.NoError(t, s.SetQuantity(id, q))
			want += prices[id] * int64(q)
		}
		assert.Equal(t, want, s.Total(), "quantity %d", q)
		assert.Equal(t, 4*q, s.Count())
	}
}

func TestStore_Clear(t *testing.T) {
	s, st := newTestStore(t)
	require.NoError(t, s.Add(1))
	require.NoError(t, s.Add(2))

	require.NoError(t, s.Clear())

	assert.Zero(t, s.Count())
	assert.Zero(t, s.Total())
	assert.Empty(t, st.items)
}

func TestStore_ListenerSeesPersistedState(t *testing.T) {
	var seen []Snapshot
	st := &memStorage{}
	s, err := NewStore(st, WithListener(func(snap Snapshot) {
		assert.Equal(t, snap.Items, st.items)
		seen = append(seen, snap)
	}))
	require.NoError(t, err)

	require.NoError(t, s.Add(1))
	require.NoError(t, s.Add(2))

	require.Len(t, seen, 2)
	assert.Equal(t, 2, seen[1].Count)
	assert.Equal(t, int64(1998), seen[1].Total)
}

func TestStore_SaveFailureKeepsPreviousState(t *testing.T) {
	s, st := newTestStore(t)
	require.NoError(t, s.Add(1))

	st.saveErr = errors.New("quota exceeded")
	err := s.Add(1)

	require.Error(t, err)
	assert.Equal(t, 1, s.Count())
}

func TestNewStore_DropsInvalidEntries(t *testing.T) {
	st := &memStorage{items: []Item{
		{ProductID: 1, Quantity: 2},
		{ProductID: 77, Quantity: 1},
		{ProductID: 2, Quantity: 0},
		{ProductID: 3, Quantity: -4},
		{ProductID: 1, Quantity: 1},
	}}

	s, err := NewStore(st)
	require.NoError(t, err)

	assert.Equal(t, []Item{{ProductID: 1, Quantity: 3}}, s.Items())
}

func TestStore_Lines(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Add(3))
	require.NoError(t, s.SetQuantity(3, 2))

	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "Abyss Jacket", lines[0].Product.Name)
	assert.Equal(t, int64(4998), lines[0].Subtotal)
}

func TestStore_WithCatalog(t *testing.T) {
	s, _ := newTestStore(t, WithCatalog([]Product{{ID: 9, Name: "Gift Card", Price: 500}}))

	require.ErrorIs(t, s.Add(1), ErrProductNotFound)
	require.NoError(t, s.Add(9))
	assert.Equal(t, int64(500), s.Total())
}

func TestCatalog_IsACopy(t *testing.T) {
	c := Catalog()
	c[0].Price = 1

	p, ok := Lookup(1)
	require.True(t, ok)
	assert.Equal(t, int64(1299), p.Price)
}
