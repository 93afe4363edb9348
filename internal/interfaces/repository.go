package interfaces

import (
	"context"

	"github.com/YelzhanWeb/fooddelivery/internal/domain"
	"github.com/google/uuid"
)

// Page is an offset/limit window over a list.
type Page struct {
	Skip  int
	Limit int
}

// Интерфейсы Репозиториев (Adapter/Postgres)
type RestaurantRepository interface {
	FindByID(ctx context.Context, id uuid.UUID, withMenu bool) (*domain.Restaurant, error)
	FindByName(ctx context.Context, name string) (*domain.Restaurant, error)
	ListActive(ctx context.Context, page Page) ([]*domain.Restaurant, error)
	ListAll(ctx context.Context, page Page) ([]*domain.Restaurant, error)
	Create(ctx context.Context, restaurant *domain.Restaurant) error
	// Delete removes the restaurant, its menu and every order placed against it.
	Delete(ctx context.Context, id uuid.UUID) error

	ListMenuItems(ctx context.Context, restaurantID uuid.UUID, onlyAvailable bool) ([]domain.MenuItem, error)
	// FindAvailableMenuItems returns the subset of ids that belong to the
	// restaurant and are currently available.
	FindAvailableMenuItems(ctx context.Context, restaurantID uuid.UUID, ids []uuid.UUID) ([]domain.MenuItem, error)
	FindMenuItem(ctx context.Context, id uuid.UUID) (*domain.MenuItem, error)
	// CreateMenuItem inserts the item and activates its restaurant.
	CreateMenuItem(ctx context.Context, item *domain.MenuItem) error
	UpdateMenuItem(ctx context.Context, item *domain.MenuItem) error
	// DeleteMenuItem returns the id of the restaurant that owned the item.
	DeleteMenuItem(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

type OrderRepository interface {
	// Create persists the order and all its items in one transaction.
	Create(ctx context.Context, order *domain.Order) error
	FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, page Page) ([]*domain.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListAll(ctx context.Context, page Page) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, order *domain.Order) error
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByPhoneNumber(ctx context.Context, phone string) (*domain.User, error)
	ListAll(ctx context.Context, page Page) ([]*domain.User, error)
}
