package postgres

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/YelzhanWeb/fooddelivery/internal/config"
	"github.com/YelzhanWeb/fooddelivery/internal/domain"
	"github.com/YelzhanWeb/fooddelivery/internal/interfaces"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOrder() *domain.Order {
	restaurant := &domain.Restaurant{ID: uuid.New(), Name: "Pasta Place"}
	menu := []domain.MenuItem{
		{ID: uuid.New(), RestaurantID: restaurant.ID, Price: decimal.RequireFromString("10.50"), IsAvailable: true},
		{ID: uuid.New(), RestaurantID: restaurant.ID, Price: decimal.RequireFromString("3.25"), IsAvailable: true},
	}
	order, err := domain.NewOrder(uuid.New(), restaurant, "12 Main Street", []domain.OrderLine{
		{ItemID: menu[0].ID, Quantity: 2},
		{ItemID: menu[1].ID, Quantity: 1},
	}, menu)
	if err != nil {
		panic(err)
	}
	return order
}

func TestOrderRepository_CreateCommitsAllRows(t *testing.T) {
	db := &fakeDB{}
	repo := NewOrderRepository(db)

	err := repo.Create(context.Background(), testOrder())
	require.NoError(t, err)

	assert.Len(t, db.execs, 3)
	assert.True(t, db.committed)
}

func TestOrderRepository_CreateRollsBackOnItemFailure(t *testing.T) {
	db := &fakeDB{
		failExecAt: 3,
		execErr:    &pgconn.PgError{Code: pgForeignKeyViolation, ConstraintName: "order_items_item_id_fkey"},
	}
	repo := NewOrderRepository(db)

	err := repo.Create(context.Background(), testOrder())
	require.Error(t, err)

	assert.True(t, errors.Is(err, domain.ErrConflict))
	assert.False(t, db.committed)
	assert.True(t, db.rolledBack)
}

func TestOrderRepository_CreateRollsBackOnOrderFailure(t *testing.T) {
	db := &fakeDB{failExecAt: 1, execErr: errors.New("connection reset")}
	repo := NewOrderRepository(db)

	err := repo.Create(context.Background(), testOrder())
	require.Error(t, err)

	assert.Len(t, db.execs, 1)
	assert.False(t, db.committed)
	assert.True(t, db.rolledBack)
}

func TestOrderRepository_UpdateStatusMissing(t *testing.T) {
	repo := NewOrderRepository(&fakeDB{})

	err := repo.UpdateStatus(context.Background(), &domain.Order{ID: uuid.New(), Status: domain.StatusConfirmed})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

// connectTestDB returns a migrated database or skips when none is configured.
func connectTestDB(t *testing.T) DB {
	t.Helper()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := Connect(ctx, config.DatabaseConfig{URL: dsn, MaxConns: 4})
	if err != nil {
		t.Skipf("Postgres not available: %v", err)
	}
	t.Cleanup(db.Close)

	require.NoError(t, Migrate(ctx, db))
	return db
}

func seedRestaurant(t *testing.T, db DB, prices ...string) (*domain.Restaurant, []domain.MenuItem) {
	t.Helper()
	ctx := context.Background()
	restaurants := NewRestaurantRepository(db)

	restaurant, err := domain.NewRestaurant("Test Kitchen "+uuid.NewString(), "1 Test Avenue")
	require.NoError(t, err)
	require.NoError(t, restaurants.Create(ctx, restaurant))

	items := make([]domain.MenuItem, 0, len(prices))
	for i, p := range prices {
		item, err := domain.NewMenuItem(restaurant.ID, "Dish "+string(rune('A'+i)), decimal.RequireFromString(p))
		require.NoError(t, err)
		require.NoError(t, restaurants.CreateMenuItem(ctx, item))
		items = append(items, *item)
	}
	return restaurant, items
}

func TestOrderRepository_Integration(t *testing.T) {
	db := connectTestDB(t)
	ctx := context.Background()

	restaurant, items := seedRestaurant(t, db, "10.50", "3.25")
	orders := NewOrderRepository(db)
	restaurants := NewRestaurantRepository(db)

	got, err := restaurants.FindByID(ctx, restaurant.ID, false)
	require.NoError(t, err)
	assert.True(t, got.IsActive, "first menu item activates the restaurant")

	order, err := domain.NewOrder(uuid.New(), restaurant, "12 Main Street", []domain.OrderLine{
		{ItemID: items[1].ID, Quantity: 1},
		{ItemID: items[0].ID, Quantity: 2},
		{ItemID: items[1].ID, Quantity: 3},
	}, items)
	require.NoError(t, err)
	require.NoError(t, orders.Create(ctx, order))

	t.Run("snapshot price survives menu change", func(t *testing.T) {
		changed := items[0]
		changed.Price = decimal.RequireFromString("99.99")
		require.NoError(t, restaurants.UpdateMenuItem(ctx, &changed))

		loaded, err := orders.FindByIDForUser(ctx, order.ID, order.UserID)
		require.NoError(t, err)
		require.Len(t, loaded.Items, 3)
		assert.Equal(t, items[1].ID, loaded.Items[0].ItemID)
		assert.Equal(t, items[0].ID, loaded.Items[1].ItemID)
		assert.True(t, loaded.Items[1].PricePerItem.Equal(decimal.RequireFromString("10.50")))
		assert.True(t, loaded.TotalAmount.Equal(decimal.RequireFromString("34.00")))
		assert.Equal(t, restaurant.Name, loaded.Restaurant.Name)
	})

	t.Run("other users cannot see the order", func(t *testing.T) {
		_, err := orders.FindByIDForUser(ctx, order.ID, uuid.New())
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})

	t.Run("list by user", func(t *testing.T) {
		list, err := orders.ListByUser(ctx, order.UserID, interfaces.Page{Limit: 10})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Len(t, list[0].Items, 3)
	})

	t.Run("failed item insert leaves nothing behind", func(t *testing.T) {
		bad, err := domain.NewOrder(uuid.New(), restaurant, "12 Main Street", []domain.OrderLine{
			{ItemID: items[0].ID, Quantity: 1},
		}, items)
		require.NoError(t, err)
		bad.Items[0].ItemID = uuid.New()

		err = orders.Create(ctx, bad)
		require.Error(t, err)

		_, err = orders.FindByID(ctx, bad.ID)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})

	t.Run("restaurant delete removes its orders", func(t *testing.T) {
		require.NoError(t, restaurants.Delete(ctx, restaurant.ID))

		_, err := orders.FindByID(ctx, order.ID)
		assert.True(t, errors.Is(err, domain.ErrNotFound))

		_, err = restaurants.FindMenuItem(ctx, items[0].ID)
		assert.True(t, errors.Is(err, domain.ErrNotFound))

		err = restaurants.Delete(ctx, restaurant.ID)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})
}

func TestUserRepository_Integration(t *testing.T) {
	db := connectTestDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)

	user, err := domain.NewUser("user-"+uuid.NewString(), "hash", domain.RoleUser, "")
	require.NoError(t, err)
	require.NoError(t, users.Create(ctx, user))

	got, err := users.FindByUsername(ctx, user.Username)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Nil(t, got.PhoneNumber)

	err = users.Create(ctx, user)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}
