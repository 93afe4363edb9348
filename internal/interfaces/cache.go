package interfaces

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Cache is a best-effort store. Implementations never fail reads: an
// unreachable backend or an undecodable value is reported as a miss.
type Cache interface {
	// Get decodes the cached value into dest and reports whether it was found.
	Get(ctx context.Context, key string, dest any) bool
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	InvalidateRestaurant(ctx context.Context, restaurantID uuid.UUID) error
}

func RestaurantCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("restaurant:%s", id)
}

func RestaurantMenuCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("restaurant:%s:menu", id)
}

// RestaurantCacheKeys lists every derived key for one restaurant.
func RestaurantCacheKeys(id uuid.UUID) []string {
	return []string{RestaurantCacheKey(id), RestaurantMenuCacheKey(id)}
}
