package interfaces

import (
	"context"

	"github.com/YelzhanWeb/fooddelivery/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Команды для сервисов
type CreateOrderCommand struct {
	UserID          uuid.UUID
	RestaurantID    uuid.UUID
	DeliveryAddress string
	Items           []domain.OrderLine
}

type CreateRestaurantCommand struct {
	Name        string
	Description *string
	Address     string
	PhoneNumber *string
	Email       *string
	Latitude    *float64
	Longitude   *float64
}

type CreateMenuItemCommand struct {
	RestaurantID uuid.UUID
	Name         string
	Description  *string
	Price        decimal.Decimal
	Category     *string
	IsAvailable  *bool
}

type UpdateMenuItemCommand struct {
	ItemID      uuid.UUID
	Price       *decimal.Decimal
	IsAvailable *bool
}

type RegisterCommand struct {
	Username    string
	Password    string
	Role        string
	PhoneNumber string
}

// Token is the bearer credential handed out on login.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Интерфейсы Сервисов (Business Logic)
type OrderService interface {
	CreateOrder(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error)
	GetOrder(ctx context.Context, id, userID uuid.UUID) (*domain.Order, error)
	ListOrders(ctx context.Context, userID uuid.UUID, page Page) ([]*domain.Order, error)
	AdminGetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	AdminListOrders(ctx context.Context, page Page) ([]*domain.Order, error)
	AdminSetStatus(ctx context.Context, id uuid.UUID, status domain.Status) (*domain.Order, error)
	AdminCancelOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
}

type CatalogService interface {
	ListRestaurants(ctx context.Context, page Page) ([]*domain.Restaurant, error)
	GetRestaurant(ctx context.Context, id uuid.UUID) (*domain.Restaurant, error)
	GetMenu(ctx context.Context, restaurantID uuid.UUID) ([]domain.MenuItem, error)

	AdminListRestaurants(ctx context.Context, page Page) ([]*domain.Restaurant, error)
	AdminGetMenu(ctx context.Context, restaurantID uuid.UUID) ([]domain.MenuItem, error)
	CreateRestaurant(ctx context.Context, cmd CreateRestaurantCommand) (*domain.Restaurant, error)
	DeleteRestaurant(ctx context.Context, id uuid.UUID) error
	CreateMenuItem(ctx context.Context, cmd CreateMenuItemCommand) (*domain.MenuItem, error)
	UpdateMenuItem(ctx context.Context, cmd UpdateMenuItemCommand) (*domain.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id uuid.UUID) error
}

type AuthService interface {
	Register(ctx context.Context, cmd RegisterCommand) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*Token, error)
	Authenticate(ctx context.Context, token string) (*domain.User, error)
	ListUsers(ctx context.Context, page Page) ([]*domain.User, error)
}
