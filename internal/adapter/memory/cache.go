package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/YelzhanWeb/fooddelivery/internal/interfaces"
	"github.com/google/uuid"
)

// Cache is a map-backed interfaces.Cache. Entries never expire.
type Cache struct {
	mu      sync.Mutex
	entries map[string][]byte

	// DeleteErr is returned by Delete and InvalidateRestaurant when set.
	DeleteErr error
	Deleted   []string

	// SetErr is returned by Set when set; nothing is stored.
	SetErr error
}

func NewCache() *Cache {
	return &Cache{entries: map[string][]byte{}}
}

func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	c.mu.Lock()
	data, ok := c.entries[key]
	c.mu.Unlock()
	if !ok {
		return false
	}
	return json.Unmarshal(data, dest) == nil
}

func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if c.SetErr != nil {
		return c.SetErr
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.entries[key] = data
	c.mu.Unlock()
	return nil
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.DeleteErr != nil {
		return c.DeleteErr
	}
	for _, k := range keys {
		delete(c.entries, k)
		c.Deleted = append(c.Deleted, k)
	}
	return nil
}

func (c *Cache) InvalidateRestaurant(ctx context.Context, restaurantID uuid.UUID) error {
	return c.Delete(ctx, interfaces.RestaurantCacheKeys(restaurantID)...)
}

// Has reports whether key is currently cached.
func (c *Cache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}
