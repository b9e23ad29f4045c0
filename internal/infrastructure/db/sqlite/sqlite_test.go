package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oblivions/storefront/internal/core/domain"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "shop.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newUser(id, email string, created time.Time) *domain.User {
	return &domain.User{
		ID:           id,
		Email:        email,
		PasswordHash: "hash",
		Name:         "User " + id,
		Role:         domain.RoleUser,
		CreatedAt:    created,
	}
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	repo := NewUserRepository(openTestDB(t))
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	_, err := repo.Create(ctx, newUser("u1", "alice@example.com", now))
	require.NoError(t, err)

	got, err := repo.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)
	assert.Equal(t, "hash", got.PasswordHash)
	assert.True(t, got.CreatedAt.Equal(now))

	_, err = repo.FindByEmail(ctx, "ALICE@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound, "lookup is case-sensitive")
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	repo := NewUserRepository(openTestDB(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, newUser("u1", "dup@example.com", time.Now()))
	require.NoError(t, err)

	_, err = repo.Create(ctx, newUser("u2", "dup@example.com", time.Now()))
	assert.ErrorIs(t, err, domain.ErrUserExists)
}

func TestUserRepository_ConcurrentDuplicateInsert(t *testing.T) {
	repo := NewUserRepository(openTestDB(t))
	ctx := context.Background()

	const workers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.Create(ctx, newUser(string(rune('a'+i)), "race@example.com", time.Now()))
			if err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, success)
}

func TestUserRepository_ListNewestFirst(t *testing.T) {
	repo := NewUserRepository(openTestDB(t))
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	_, err := repo.Create(ctx, newUser("old", "old@example.com", base))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newUser("new", "new@example.com", base.Add(time.Hour)))
	require.NoError(t, err)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "new", users[0].ID)
	assert.Equal(t, "old", users[1].ID)
}

func TestUserRepository_ListNewestFirstSubSecond(t *testing.T) {
	repo := NewUserRepository(openTestDB(t))
	ctx := context.Background()
	whole := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	_, err := repo.Create(ctx, newUser("a", "a@example.com", whole))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newUser("b", "b@example.com", whole.Add(100*time.Millisecond)))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newUser("c", "c@example.com", whole.Add(time.Second)))
	require.NoError(t, err)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{users[0].ID, users[1].ID, users[2].ID})
	assert.True(t, users[2].CreatedAt.Equal(whole))
	assert.True(t, users[1].CreatedAt.Equal(whole.Add(100*time.Millisecond)))
}

func TestOrderRepository_ListNewestFirstSubSecond(t *testing.T) {
	orders := NewOrderRepository(openTestDB(t))
	ctx := context.Background()
	whole := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	first, err := orders.Create(ctx, &domain.Order{TotalPrice: 100, CreatedAt: whole}, nil)
	require.NoError(t, err)
	second, err := orders.Create(ctx, &domain.Order{TotalPrice: 200, CreatedAt: whole.Add(250 * time.Millisecond)}, nil)
	require.NoError(t, err)

	list, err := orders.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}

func TestOrderRepository_CreateListAndItems(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepository(db)
	orders := NewOrderRepository(db)
	ctx := context.Background()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	_, err := users.Create(ctx, newUser("u1", "buyer@example.com", now))
	require.NoError(t, err)

	placed, err := orders.Create(ctx, &domain.Order{
		UserID:          "u1",
		TotalPrice:      3297,
		CreatedAt:       now,
		ShippingAddress: domain.Address{"city": "Prague"},
		ContactEmail:    "buyer@example.com",
	}, []domain.OrderItem{
		{ProductName: "Void Hoodie", Quantity: 2, Price: 1299},
		{ProductName: "Shadow Tee", Quantity: 1, Price: 699},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, placed.ID)
	assert.Equal(t, domain.OrderStatusPending, placed.Status)

	guest, err := orders.Create(ctx, &domain.Order{TotalPrice: 699, CreatedAt: now.Add(time.Minute)}, nil)
	require.NoError(t, err)

	list, err := orders.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, guest.ID, list[0].ID)
	assert.Empty(t, list[0].CustomerEmail)
	assert.Equal(t, "buyer@example.com", list[1].CustomerEmail)
	assert.Equal(t, "User u1", list[1].CustomerName)
	assert.Equal(t, "Prague", list[1].ShippingAddress["city"])

	items, err := orders.ListItems(ctx, placed.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Void Hoodie", items[0].ProductName)
	assert.Equal(t, int64(1299), items[0].Price)

	empty, err := orders.ListItems(ctx, guest.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestOrderRepository_CreateDefaultsCreatedAt(t *testing.T) {
	orders := NewOrderRepository(openTestDB(t))
	before := time.Now().Add(-time.Second)

	placed, err := orders.Create(context.Background(), &domain.Order{TotalPrice: 100}, nil)
	require.NoError(t, err)
	assert.True(t, placed.CreatedAt.After(before), "got %v", placed.CreatedAt)
}

func TestOrderRepository_ListItemsUnknownOrder(t *testing.T) {
	orders := NewOrderRepository(openTestDB(t))

	_, err := orders.ListItems(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}
