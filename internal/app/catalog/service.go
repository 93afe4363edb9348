package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/YelzhanWeb/fooddelivery/internal/adapter/logger"
	"github.com/YelzhanWeb/fooddelivery/internal/domain"
	"github.com/YelzhanWeb/fooddelivery/internal/interfaces"
	"github.com/google/uuid"
)

type Service struct {
	restaurants interfaces.RestaurantRepository
	cache       interfaces.Cache
	logger      logger.Logger
	cacheTTL    time.Duration
}

func NewService(
	restaurants interfaces.RestaurantRepository,
	cache interfaces.Cache,
	logger logger.Logger,
	cacheTTL time.Duration,
) *Service {
	return &Service{
		restaurants: restaurants,
		cache:       cache,
		logger:      logger,
		cacheTTL:    cacheTTL,
	}
}

func (s *Service) ListRestaurants(ctx context.Context, page interfaces.Page) ([]*domain.Restaurant, error) {
	return s.restaurants.ListActive(ctx, page)
}

// GetRestaurant returns an active restaurant with its available menu.
// Inactive restaurants are reported as not found.
func (s *Service) GetRestaurant(ctx context.Context, id uuid.UUID) (*domain.Restaurant, error) {
	key := interfaces.RestaurantCacheKey(id)

	var cached domain.Restaurant
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	restaurant, err := s.restaurants.FindByID(ctx, id, true)
	if err != nil {
		return nil, err
	}
	if !restaurant.IsActive {
		return nil, fmt.Errorf("restaurant %s is not active: %w", id, domain.ErrNotFound)
	}
	restaurant.MenuItems = availableOnly(restaurant.MenuItems)

	s.store(ctx, key, restaurant)
	return restaurant, nil
}

func (s *Service) GetMenu(ctx context.Context, restaurantID uuid.UUID) ([]domain.MenuItem, error) {
	key := interfaces.RestaurantMenuCacheKey(restaurantID)

	var cached []domain.MenuItem
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	restaurant, err := s.restaurants.FindByID(ctx, restaurantID, false)
	if err != nil {
		return nil, err
	}
	if !restaurant.IsActive {
		return nil, fmt.Errorf("restaurant %s is not active: %w", restaurantID, domain.ErrNotFound)
	}

	items, err := s.restaurants.ListMenuItems(ctx, restaurantID, true)
	if err != nil {
		return nil, err
	}

	s.store(ctx, key, items)
	return items, nil
}

func (s *Service) AdminListRestaurants(ctx context.Context, page interfaces.Page) ([]*domain.Restaurant, error) {
	return s.restaurants.ListAll(ctx, page)
}

// AdminGetMenu lists every item including unavailable ones. Never cached.
func (s *Service) AdminGetMenu(ctx context.Context, restaurantID uuid.UUID) ([]domain.MenuItem, error) {
	if _, err := s.restaurants.FindByID(ctx, restaurantID, false); err != nil {
		return nil, err
	}
	return s.restaurants.ListMenuItems(ctx, restaurantID, false)
}

func (s *Service) CreateRestaurant(ctx context.Context, cmd interfaces.CreateRestaurantCommand) (*domain.Restaurant, error) {
	restaurant, err := domain.NewRestaurant(cmd.Name, cmd.Address)
	if err != nil {
		return nil, err
	}
	restaurant.Description = cmd.Description
	restaurant.PhoneNumber = cmd.PhoneNumber
	restaurant.Email = cmd.Email
	restaurant.Latitude = cmd.Latitude
	restaurant.Longitude = cmd.Longitude
	if err := restaurant.Validate(); err != nil {
		return nil, err
	}

	// the unique index still guards against a concurrent insert
	_, err = s.restaurants.FindByName(ctx, restaurant.Name)
	switch {
	case err == nil:
		return nil, fmt.Errorf("restaurant %q already exists: %w", restaurant.Name, domain.ErrConflict)
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	if err := s.restaurants.Create(ctx, restaurant); err != nil {
		return nil, err
	}

	s.logger.Info("restaurant_created", "Restaurant created", logger.RequestID(ctx), map[string]interface{}{
		"restaurant_id": restaurant.ID.String(),
		"name":          restaurant.Name,
	})
	return restaurant, nil
}

// DeleteRestaurant removes the restaurant together with its menu and every
// order placed against it. There is no way to undo this.
func (s *Service) DeleteRestaurant(ctx context.Context, id uuid.UUID) error {
	if err := s.restaurants.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Warn("restaurant_deleted", "Restaurant deleted with its menu and orders", logger.RequestID(ctx),
		map[string]interface{}{"restaurant_id": id.String()}, nil)

	s.invalidate(ctx, id)
	return nil
}

func (s *Service) CreateMenuItem(ctx context.Context, cmd interfaces.CreateMenuItemCommand) (*domain.MenuItem, error) {
	item, err := domain.NewMenuItem(cmd.RestaurantID, cmd.Name, cmd.Price)
	if err != nil {
		return nil, err
	}
	item.Description = cmd.Description
	item.Category = cmd.Category
	if cmd.IsAvailable != nil {
		item.IsAvailable = *cmd.IsAvailable
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}

	if err := s.restaurants.CreateMenuItem(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info("menu_item_created", "Menu item created", logger.RequestID(ctx), map[string]interface{}{
		"item_id":       item.ID.String(),
		"restaurant_id": item.RestaurantID.String(),
		"price":         item.Price.StringFixed(2),
	})

	s.invalidate(ctx, item.RestaurantID)
	return item, nil
}

// UpdateMenuItem changes price and availability. Orders already placed keep
// the price they were created with.
func (s *Service) UpdateMenuItem(ctx context.Context, cmd interfaces.UpdateMenuItemCommand) (*domain.MenuItem, error) {
	item, err := s.restaurants.FindMenuItem(ctx, cmd.ItemID)
	if err != nil {
		return nil, err
	}

	if cmd.Price != nil {
		item.Price = *cmd.Price
	}
	if cmd.IsAvailable != nil {
		item.IsAvailable = *cmd.IsAvailable
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	item.UpdatedAt = time.Now().UTC()

	if err := s.restaurants.UpdateMenuItem(ctx, item); err != nil {
		return nil, err
	}

	s.invalidate(ctx, item.RestaurantID)
	return item, nil
}

func (s *Service) DeleteMenuItem(ctx context.Context, id uuid.UUID) error {
	restaurantID, err := s.restaurants.DeleteMenuItem(ctx, id)
	if err != nil {
		return err
	}

	s.invalidate(ctx, restaurantID)
	return nil
}

// invalidate drops cached views after a committed catalog change. The cache
// logs its own failures; a stale entry expires with its TTL.
func (s *Service) store(ctx context.Context, key string, value any) {
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		s.logger.Warn("cache_set_failed", "Failed to cache catalog entry", logger.RequestID(ctx),
			map[string]interface{}{"key": key}, err)
	}
}

func (s *Service) invalidate(ctx context.Context, restaurantID uuid.UUID) {
	if err := s.cache.InvalidateRestaurant(ctx, restaurantID); err != nil {
		s.logger.Warn("cache_invalidate_failed", "Failed to invalidate restaurant cache", logger.RequestID(ctx),
			map[string]interface{}{"restaurant_id": restaurantID.String()}, err)
	}
}

func availableOnly(items []domain.MenuItem) []domain.MenuItem {
	out := make([]domain.MenuItem, 0, len(items))
	for _, m := range items {
		if m.IsAvailable {
			out = append(out, m)
		}
	}
	return out
}
