package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/YelzhanWeb/fooddelivery/internal/domain"
	"github.com/YelzhanWeb/fooddelivery/internal/interfaces"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const restaurantColumns = `restaurant_id, name, description, address, phone_number, email,
	is_active, latitude, longitude, created_at, updated_at`

const menuItemColumns = `item_id, restaurant_id, name, description, price, category,
	is_available, created_at, updated_at`

type restaurantRepository struct {
	db DB
}

func NewRestaurantRepository(db DB) interfaces.RestaurantRepository {
	return &restaurantRepository{db: db}
}

func scanRestaurant(row Row) (*domain.Restaurant, error) {
	var r domain.Restaurant
	err := row.Scan(
		&r.ID, &r.Name, &r.Description, &r.Address, &r.PhoneNumber, &r.Email,
		&r.IsActive, &r.Latitude, &r.Longitude, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func scanMenuItem(row Row) (domain.MenuItem, error) {
	var (
		m     domain.MenuItem
		price pgtype.Numeric
	)
	err := row.Scan(
		&m.ID, &m.RestaurantID, &m.Name, &m.Description, &price, &m.Category,
		&m.IsAvailable, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return domain.MenuItem{}, err
	}
	m.Price = toDecimal(price)
	return m, nil
}

func (r *restaurantRepository) FindByID(ctx context.Context, id uuid.UUID, withMenu bool) (*domain.Restaurant, error) {
	query := `SELECT ` + restaurantColumns + ` FROM restaurants WHERE restaurant_id = $1`

	restaurant, err := scanRestaurant(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, wrapError(err, "restaurant "+id.String())
	}

	if withMenu {
		restaurant.MenuItems, err = r.ListMenuItems(ctx, id, false)
		if err != nil {
			return nil, err
		}
	}

	return restaurant, nil
}

func (r *restaurantRepository) FindByName(ctx context.Context, name string) (*domain.Restaurant, error) {
	query := `SELECT ` + restaurantColumns + ` FROM restaurants WHERE name = $1`

	restaurant, err := scanRestaurant(r.db.QueryRow(ctx, query, name))
	if err != nil {
		return nil, wrapError(err, "restaurant "+name)
	}
	return restaurant, nil
}

func (r *restaurantRepository) ListActive(ctx context.Context, page interfaces.Page) ([]*domain.Restaurant, error) {
	query := `
		SELECT ` + restaurantColumns + `
		FROM restaurants
		WHERE is_active
		ORDER BY created_at, restaurant_id
		OFFSET $1 LIMIT $2
	`
	return r.list(ctx, query, page)
}

func (r *restaurantRepository) ListAll(ctx context.Context, page interfaces.Page) ([]*domain.Restaurant, error) {
	query := `
		SELECT ` + restaurantColumns + `
		FROM restaurants
		ORDER BY created_at, restaurant_id
		OFFSET $1 LIMIT $2
	`
	return r.list(ctx, query, page)
}

func (r *restaurantRepository) list(ctx context.Context, query string, page interfaces.Page) ([]*domain.Restaurant, error) {
	rows, err := r.db.Query(ctx, query, page.Skip, page.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query restaurants: %w", err)
	}
	defer rows.Close()

	restaurants := make([]*domain.Restaurant, 0)
	for rows.Next() {
		restaurant, err := scanRestaurant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan restaurant: %w", err)
		}
		restaurants = append(restaurants, restaurant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read restaurants: %w", err)
	}

	return restaurants, nil
}

func (r *restaurantRepository) Create(ctx context.Context, restaurant *domain.Restaurant) error {
	query := `
		INSERT INTO restaurants (` + restaurantColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.Exec(ctx, query,
		restaurant.ID, restaurant.Name, restaurant.Description, restaurant.Address,
		restaurant.PhoneNumber, restaurant.Email, restaurant.IsActive,
		restaurant.Latitude, restaurant.Longitude, restaurant.CreatedAt, restaurant.UpdatedAt,
	)
	if err != nil {
		return wrapError(err, "failed to insert restaurant")
	}
	return nil
}

// Delete removes every order placed against the restaurant before the
// restaurant itself; menu items go with it through ON DELETE CASCADE.
func (r *restaurantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM orders WHERE restaurant_id = $1`, id); err != nil {
		return wrapError(err, "failed to delete restaurant orders")
	}

	tag, err := tx.Exec(ctx, `DELETE FROM restaurants WHERE restaurant_id = $1`, id)
	if err != nil {
		return wrapError(err, "failed to delete restaurant")
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("restaurant %s: %w", id, domain.ErrNotFound)
	}

	return tx.Commit(ctx)
}

func (r *restaurantRepository) ListMenuItems(ctx context.Context, restaurantID uuid.UUID, onlyAvailable bool) ([]domain.MenuItem, error) {
	query := `
		SELECT ` + menuItemColumns + `
		FROM menu_items
		WHERE restaurant_id = $1 AND (NOT $2::boolean OR is_available)
		ORDER BY created_at, item_id
	`
	return r.listMenuItems(ctx, query, restaurantID, onlyAvailable)
}

func (r *restaurantRepository) FindAvailableMenuItems(ctx context.Context, restaurantID uuid.UUID, ids []uuid.UUID) ([]domain.MenuItem, error) {
	query := `
		SELECT ` + menuItemColumns + `
		FROM menu_items
		WHERE item_id = ANY($1::uuid[]) AND restaurant_id = $2 AND is_available
	`
	return r.listMenuItems(ctx, query, uuidStrings(ids), restaurantID)
}

func (r *restaurantRepository) listMenuItems(ctx context.Context, query string, args ...any) ([]domain.MenuItem, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query menu items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.MenuItem, 0)
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read menu items: %w", err)
	}

	return items, nil
}

func (r *restaurantRepository) FindMenuItem(ctx context.Context, id uuid.UUID) (*domain.MenuItem, error) {
	query := `SELECT ` + menuItemColumns + ` FROM menu_items WHERE item_id = $1`

	item, err := scanMenuItem(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, wrapError(err, "menu item "+id.String())
	}
	return &item, nil
}

func (r *restaurantRepository) CreateMenuItem(ctx context.Context, item *domain.MenuItem) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var active bool
	err = tx.QueryRow(ctx,
		`SELECT is_active FROM restaurants WHERE restaurant_id = $1 FOR UPDATE`,
		item.RestaurantID,
	).Scan(&active)
	if err != nil {
		return wrapError(err, "restaurant "+item.RestaurantID.String())
	}

	query := `
		INSERT INTO menu_items (` + menuItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = tx.Exec(ctx, query,
		item.ID, item.RestaurantID, item.Name, item.Description, numeric(item.Price),
		item.Category, item.IsAvailable, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return wrapError(err, "failed to insert menu item")
	}

	if !active {
		_, err = tx.Exec(ctx,
			`UPDATE restaurants SET is_active = TRUE, updated_at = $2 WHERE restaurant_id = $1`,
			item.RestaurantID, time.Now().UTC(),
		)
		if err != nil {
			return fmt.Errorf("failed to activate restaurant: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *restaurantRepository) UpdateMenuItem(ctx context.Context, item *domain.MenuItem) error {
	query := `
		UPDATE menu_items
		SET price = $1, is_available = $2, updated_at = $3
		WHERE item_id = $4
	`
	tag, err := r.db.Exec(ctx, query, numeric(item.Price), item.IsAvailable, item.UpdatedAt, item.ID)
	if err != nil {
		return wrapError(err, "failed to update menu item")
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("menu item %s: %w", item.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *restaurantRepository) DeleteMenuItem(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var restaurantID uuid.UUID
	err := r.db.QueryRow(ctx,
		`DELETE FROM menu_items WHERE item_id = $1 RETURNING restaurant_id`, id,
	).Scan(&restaurantID)
	if err != nil {
		return uuid.Nil, wrapError(err, "menu item "+id.String())
	}
	return restaurantID, nil
}
