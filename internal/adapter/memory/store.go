// Package memory keeps the catalog, orders and users in process memory. It
// follows the same constraints as the Postgres schema and backs service and
// handler tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/YelzhanWeb/fooddelivery/internal/domain"
	"github.com/YelzhanWeb/fooddelivery/internal/interfaces"
	"github.com/google/uuid"
)

type Store struct {
	mu          sync.RWMutex
	restaurants map[uuid.UUID]domain.Restaurant
	menu        map[uuid.UUID]domain.MenuItem
	orders      map[uuid.UUID]domain.Order
	users       map[uuid.UUID]domain.User

	// FailOrderItems makes Create fail after the order row was staged.
	FailOrderItems error
}

func NewStore() *Store {
	return &Store{
		restaurants: map[uuid.UUID]domain.Restaurant{},
		menu:        map[uuid.UUID]domain.MenuItem{},
		orders:      map[uuid.UUID]domain.Order{},
		users:       map[uuid.UUID]domain.User{},
	}
}

func (s *Store) Restaurants() interfaces.RestaurantRepository { return restaurantRepo{s} }
func (s *Store) Orders() interfaces.OrderRepository           { return orderRepo{s} }
func (s *Store) Users() interfaces.UserRepository             { return userRepo{s} }

// Counts reports how many menu items and orders exist. Used by tests.
func (s *Store) Counts() (menuItems, orders int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.menu), len(s.orders)
}

func window[T any](items []T, page interfaces.Page) []T {
	if page.Skip >= len(items) {
		return []T{}
	}
	items = items[page.Skip:]
	if page.Limit > 0 && page.Limit < len(items) {
		items = items[:page.Limit]
	}
	return items
}

func notFound(what string, id any) error {
	return fmt.Errorf("%s %v: %w", what, id, domain.ErrNotFound)
}

type restaurantRepo struct{ s *Store }

func (r restaurantRepo) FindByID(ctx context.Context, id uuid.UUID, withMenu bool) (*domain.Restaurant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rest, ok := r.s.restaurants[id]
	if !ok {
		return nil, notFound("restaurant", id)
	}
	if withMenu {
		rest.MenuItems = r.menuOf(id, false)
	}
	return &rest, nil
}

func (r restaurantRepo) FindByName(ctx context.Context, name string) (*domain.Restaurant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, rest := range r.s.restaurants {
		if rest.Name == name {
			return &rest, nil
		}
	}
	return nil, notFound("restaurant", name)
}

func (r restaurantRepo) ListActive(ctx context.Context, page interfaces.Page) ([]*domain.Restaurant, error) {
	return r.list(page, true), nil
}

func (r restaurantRepo) ListAll(ctx context.Context, page interfaces.Page) ([]*domain.Restaurant, error) {
	return r.list(page, false), nil
}

func (r restaurantRepo) list(page interfaces.Page, onlyActive bool) []*domain.Restaurant {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.Restaurant, 0, len(r.s.restaurants))
	for _, rest := range r.s.restaurants {
		if onlyActive && !rest.IsActive {
			continue
		}
		rest := rest
		out = append(out, &rest)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return window(out, page)
}

func (r restaurantRepo) Create(ctx context.Context, restaurant *domain.Restaurant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, rest := range r.s.restaurants {
		if rest.Name == restaurant.Name {
			return fmt.Errorf("restaurant %q: %w", rest.Name, domain.ErrConflict)
		}
	}
	stored := *restaurant
	stored.MenuItems = nil
	r.s.restaurants[restaurant.ID] = stored
	return nil
}

func (r restaurantRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.restaurants[id]; !ok {
		return notFound("restaurant", id)
	}
	for oid, o := range r.s.orders {
		if o.RestaurantID == id {
			delete(r.s.orders, oid)
		}
	}
	for mid, m := range r.s.menu {
		if m.RestaurantID == id {
			delete(r.s.menu, mid)
		}
	}
	delete(r.s.restaurants, id)
	return nil
}

// menuOf must be called with the lock held.
func (r restaurantRepo) menuOf(restaurantID uuid.UUID, onlyAvailable bool) []domain.MenuItem {
	out := make([]domain.MenuItem, 0)
	for _, m := range r.s.menu {
		if m.RestaurantID != restaurantID || (onlyAvailable && !m.IsAvailable) {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r restaurantRepo) ListMenuItems(ctx context.Context, restaurantID uuid.UUID, onlyAvailable bool) ([]domain.MenuItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.menuOf(restaurantID, onlyAvailable), nil
}

func (r restaurantRepo) FindAvailableMenuItems(ctx context.Context, restaurantID uuid.UUID, ids []uuid.UUID) ([]domain.MenuItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.MenuItem, 0, len(ids))
	for _, id := range ids {
		m, ok := r.s.menu[id]
		if ok && m.RestaurantID == restaurantID && m.IsAvailable {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r restaurantRepo) FindMenuItem(ctx context.Context, id uuid.UUID) (*domain.MenuItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	m, ok := r.s.menu[id]
	if !ok {
		return nil, notFound("menu item", id)
	}
	return &m, nil
}

func (r restaurantRepo) CreateMenuItem(ctx context.Context, item *domain.MenuItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rest, ok := r.s.restaurants[item.RestaurantID]
	if !ok {
		return notFound("restaurant", item.RestaurantID)
	}
	r.s.menu[item.ID] = *item
	if !rest.IsActive {
		rest.IsActive = true
		r.s.restaurants[rest.ID] = rest
	}
	return nil
}

func (r restaurantRepo) UpdateMenuItem(ctx context.Context, item *domain.MenuItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.menu[item.ID]; !ok {
		return notFound("menu item", item.ID)
	}
	r.s.menu[item.ID] = *item
	return nil
}

func (r restaurantRepo) DeleteMenuItem(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m, ok := r.s.menu[id]
	if !ok {
		return uuid.Nil, notFound("menu item", id)
	}
	for _, o := range r.s.orders {
		for _, it := range o.Items {
			if it.ItemID == id {
				return uuid.Nil, fmt.Errorf("menu item %s is referenced by orders: %w", id, domain.ErrConflict)
			}
		}
	}
	delete(r.s.menu, id)
	return m.RestaurantID, nil
}

type orderRepo struct{ s *Store }

func (r orderRepo) Create(ctx context.Context, order *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.restaurants[order.RestaurantID]; !ok {
		return fmt.Errorf("restaurant %s: %w", order.RestaurantID, domain.ErrConflict)
	}

	// staged rows are only published once every item was accepted
	staged := *order
	staged.Items = make([]domain.OrderItem, 0, len(order.Items))
	if r.s.FailOrderItems != nil {
		return r.s.FailOrderItems
	}
	for _, it := range order.Items {
		if _, ok := r.s.menu[it.ItemID]; !ok {
			return fmt.Errorf("menu item %s: %w", it.ItemID, domain.ErrConflict)
		}
		it.OrderID = order.ID
		it.MenuItem = nil
		staged.Items = append(staged.Items, it)
	}
	r.s.orders[order.ID] = staged
	return nil
}

// load must be called with the lock held.
func (r orderRepo) load(o domain.Order, withMenu bool) *domain.Order {
	items := make([]domain.OrderItem, len(o.Items))
	copy(items, o.Items)
	if withMenu {
		for i := range items {
			if m, ok := r.s.menu[items[i].ItemID]; ok {
				items[i].MenuItem = &m
			}
		}
	}
	o.Items = items
	if rest, ok := r.s.restaurants[o.RestaurantID]; ok {
		o.Restaurant = rest.Ref()
	}
	return &o
}

func (r orderRepo) FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	o, ok := r.s.orders[id]
	if !ok || o.UserID != userID {
		return nil, notFound("order", id)
	}
	return r.load(o, true), nil
}

func (r orderRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	o, ok := r.s.orders[id]
	if !ok {
		return nil, notFound("order", id)
	}
	return r.load(o, true), nil
}

func (r orderRepo) ListByUser(ctx context.Context, userID uuid.UUID, page interfaces.Page) ([]*domain.Order, error) {
	return r.list(page, func(o domain.Order) bool { return o.UserID == userID }), nil
}

func (r orderRepo) ListAll(ctx context.Context, page interfaces.Page) ([]*domain.Order, error) {
	return r.list(page, func(domain.Order) bool { return true }), nil
}

func (r orderRepo) list(page interfaces.Page, keep func(domain.Order) bool) []*domain.Order {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.Order, 0)
	for _, o := range r.s.orders {
		if keep(o) {
			out = append(out, r.load(o, false))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return window(out, page)
}

func (r orderRepo) UpdateStatus(ctx context.Context, order *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[order.ID]
	if !ok {
		return notFound("order", order.ID)
	}
	o.Status = order.Status
	o.UpdatedAt = order.UpdatedAt
	r.s.orders[order.ID] = o
	return nil
}

type userRepo struct{ s *Store }

func (r userRepo) Create(ctx context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Username == user.Username {
			return fmt.Errorf("username %q: %w", u.Username, domain.ErrConflict)
		}
		if u.PhoneNumber != nil && user.PhoneNumber != nil && *u.PhoneNumber == *user.PhoneNumber {
			return fmt.Errorf("phone number: %w", domain.ErrConflict)
		}
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r userRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, notFound("user", username)
}

func (r userRepo) FindByPhoneNumber(ctx context.Context, phone string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.PhoneNumber != nil && *u.PhoneNumber == phone {
			return &u, nil
		}
	}
	return nil, notFound("user with phone", phone)
}

func (r userRepo) ListAll(ctx context.Context, page interfaces.Page) ([]*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		u := u
		out = append(out, &u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return window(out, page), nil
}
