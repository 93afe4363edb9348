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

const orderSelect = `
	SELECT o.order_id, o.user_id, o.restaurant_id, o.status, o.total_amount,
	       o.delivery_address, o.created_at, o.updated_at, r.name
	FROM orders o
	JOIN restaurants r ON r.restaurant_id = o.restaurant_id
`

type orderRepository struct {
	db DB
}

func NewOrderRepository(db DB) interfaces.OrderRepository {
	return &orderRepository{db: db}
}

// Create writes the order row and all of its items in one transaction.
func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO orders (order_id, user_id, restaurant_id, status, total_amount,
		                    delivery_address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = tx.Exec(ctx, query,
		order.ID, order.UserID, order.RestaurantID, order.Status, numeric(order.TotalAmount),
		order.DeliveryAddress, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return wrapError(err, "failed to insert order")
	}

	itemQuery := `
		INSERT INTO order_items (order_item_id, order_id, item_id, line_no, quantity, price_per_item)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID
		_, err = tx.Exec(ctx, itemQuery,
			item.ID, order.ID, item.ItemID, i, item.Quantity, numeric(item.PricePerItem),
		)
		if err != nil {
			return wrapError(err, "failed to insert order item")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}
	return nil
}

func scanOrder(row Row) (*domain.Order, error) {
	var (
		o     domain.Order
		total pgtype.Numeric
		name  string
	)
	err := row.Scan(
		&o.ID, &o.UserID, &o.RestaurantID, &o.Status, &total,
		&o.DeliveryAddress, &o.CreatedAt, &o.UpdatedAt, &name,
	)
	if err != nil {
		return nil, err
	}
	o.TotalAmount = toDecimal(total)
	o.Restaurant = &domain.RestaurantRef{ID: o.RestaurantID, Name: name}
	o.Items = []domain.OrderItem{}
	return &o, nil
}

func (r *orderRepository) FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Order, error) {
	order, err := scanOrder(r.db.QueryRow(ctx, orderSelect+` WHERE o.order_id = $1 AND o.user_id = $2`, id, userID))
	if err != nil {
		return nil, wrapError(err, "order "+id.String())
	}
	if err := r.loadItems(ctx, []*domain.Order{order}, true); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, err := scanOrder(r.db.QueryRow(ctx, orderSelect+` WHERE o.order_id = $1`, id))
	if err != nil {
		return nil, wrapError(err, "order "+id.String())
	}
	if err := r.loadItems(ctx, []*domain.Order{order}, true); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID uuid.UUID, page interfaces.Page) ([]*domain.Order, error) {
	query := orderSelect + `
		WHERE o.user_id = $1
		ORDER BY o.created_at DESC, o.order_id
		OFFSET $2 LIMIT $3
	`
	return r.list(ctx, query, userID, page.Skip, page.Limit)
}

func (r *orderRepository) ListAll(ctx context.Context, page interfaces.Page) ([]*domain.Order, error) {
	query := orderSelect + `
		ORDER BY o.created_at DESC, o.order_id
		OFFSET $1 LIMIT $2
	`
	return r.list(ctx, query, page.Skip, page.Limit)
}

func (r *orderRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Order, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]*domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read orders: %w", err)
	}

	if err := r.loadItems(ctx, orders, false); err != nil {
		return nil, err
	}
	return orders, nil
}

// loadItems attaches items to the given orders with one query. withMenu also
// attaches each line's current menu item.
func (r *orderRepository) loadItems(ctx context.Context, orders []*domain.Order, withMenu bool) error {
	if len(orders) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*domain.Order, len(orders))
	ids := make([]uuid.UUID, 0, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}

	query := `
		SELECT oi.order_item_id, oi.order_id, oi.item_id, oi.quantity, oi.price_per_item,
		       m.item_id, m.restaurant_id, m.name, m.description, m.price, m.category,
		       m.is_available, m.created_at, m.updated_at
		FROM order_items oi
		JOIN menu_items m ON m.item_id = oi.item_id
		WHERE oi.order_id = ANY($1::uuid[])
		ORDER BY oi.order_id, oi.line_no
	`
	rows, err := r.db.Query(ctx, query, uuidStrings(ids))
	if err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item      domain.OrderItem
			menu      domain.MenuItem
			price     pgtype.Numeric
			menuPrice pgtype.Numeric
		)
		err := rows.Scan(
			&item.ID, &item.OrderID, &item.ItemID, &item.Quantity, &price,
			&menu.ID, &menu.RestaurantID, &menu.Name, &menu.Description, &menuPrice, &menu.Category,
			&menu.IsAvailable, &menu.CreatedAt, &menu.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		item.PricePerItem = toDecimal(price)
		if withMenu {
			menu.Price = toDecimal(menuPrice)
			item.MenuItem = &menu
		}

		if o, ok := byID[item.OrderID]; ok {
			o.Items = append(o.Items, item)
		}
	}

	return rows.Err()
}

// UpdateStatus overwrites the stored status without checking the previous one.
func (r *orderRepository) UpdateStatus(ctx context.Context, order *domain.Order) error {
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = time.Now().UTC()
	}

	tag, err := r.db.Exec(ctx,
		`UPDATE orders SET status = $1, updated_at = $2 WHERE order_id = $3`,
		order.Status, order.UpdatedAt, order.ID,
	)
	if err != nil {
		return wrapError(err, "failed to update order")
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %s: %w", order.ID, domain.ErrNotFound)
	}
	return nil
}
