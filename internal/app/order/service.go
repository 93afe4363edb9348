package order

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
	orders      interfaces.OrderRepository
	restaurants interfaces.RestaurantRepository
	cache       interfaces.Cache
	publisher   interfaces.EventPublisher
	logger      logger.Logger
	now         func() time.Time
}

func NewService(
	orders interfaces.OrderRepository,
	restaurants interfaces.RestaurantRepository,
	cache interfaces.Cache,
	publisher interfaces.EventPublisher,
	logger logger.Logger,
) *Service {
	return &Service{
		orders:      orders,
		restaurants: restaurants,
		cache:       cache,
		publisher:   publisher,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// postCommitAction runs after the order is durable. Its failure never undoes
// the order.
type postCommitAction struct {
	name string
	run  func(ctx context.Context, order *domain.Order) error
}

func (s *Service) postCommitActions() []postCommitAction {
	return []postCommitAction{
		{name: "cache_invalidate", run: func(ctx context.Context, order *domain.Order) error {
			return s.cache.InvalidateRestaurant(ctx, order.RestaurantID)
		}},
		{name: "event_publish", run: func(ctx context.Context, order *domain.Order) error {
			return s.publisher.Publish(ctx, interfaces.EventOrderCreated, interfaces.OrderEvent{
				EventType:  interfaces.EventOrderCreated,
				OccurredAt: s.now(),
				Order:      order,
			})
		}},
	}
}

func (s *Service) CreateOrder(ctx context.Context, cmd interfaces.CreateOrderCommand) (*domain.Order, error) {
	requestID := logger.RequestID(ctx)

	// 1. Проверка формы запроса до любых обращений к БД
	if err := domain.ValidateOrderRequest(cmd.DeliveryAddress, cmd.Items); err != nil {
		s.logger.Debug("validation_failed", "Order request rejected", requestID, map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	// 2. Ресторан должен существовать и быть активным
	restaurant, err := s.restaurants.FindByID(ctx, cmd.RestaurantID, false)
	if err != nil {
		return nil, err
	}
	if !restaurant.IsActive {
		return nil, fmt.Errorf("restaurant %s: %w", restaurant.ID, domain.ErrRestaurantInactive)
	}

	// 3. Одним запросом получаем доступные позиции меню
	resolved, err := s.restaurants.FindAvailableMenuItems(ctx, restaurant.ID, domain.DistinctItemIDs(cmd.Items))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve menu items: %w", err)
	}

	// 4. Создание доменной сущности (проверка позиций и расчет суммы)
	order, err := domain.NewOrder(cmd.UserID, restaurant, cmd.DeliveryAddress, cmd.Items, resolved)
	if err != nil {
		s.logger.Debug("validation_failed", "Order items rejected", requestID, map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	// 5. Сохранение заказа и позиций в одной транзакции
	if err := s.orders.Create(ctx, order); err != nil {
		s.logger.Error("db_transaction_failed", "Failed to create order", requestID,
			map[string]interface{}{"restaurant_id": restaurant.ID.String()}, err)
		return nil, err
	}
	s.logger.Info("order_created", "Order created", requestID, map[string]interface{}{
		"order_id":      order.ID.String(),
		"restaurant_id": order.RestaurantID.String(),
		"total_amount":  order.TotalAmount.StringFixed(2),
	})

	// 6. Побочные эффекты после коммита: кэш, затем событие
	var failures []error
	for _, action := range s.postCommitActions() {
		if err := action.run(ctx, order); err != nil {
			s.logger.Warn(action.name+"_failed", "Post-commit action failed", requestID,
				map[string]interface{}{"order_id": order.ID.String()}, err)
			failures = append(failures, fmt.Errorf("%s: %w", action.name, err))
		}
	}
	if len(failures) > 0 {
		return order, &domain.SideEffectError{Order: order, Errors: failures}
	}

	return order, nil
}

func (s *Service) GetOrder(ctx context.Context, id, userID uuid.UUID) (*domain.Order, error) {
	return s.orders.FindByIDForUser(ctx, id, userID)
}

func (s *Service) ListOrders(ctx context.Context, userID uuid.UUID, page interfaces.Page) ([]*domain.Order, error) {
	return s.orders.ListByUser(ctx, userID, page)
}

func (s *Service) AdminGetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return s.orders.FindByID(ctx, id)
}

func (s *Service) AdminListOrders(ctx context.Context, page interfaces.Page) ([]*domain.Order, error) {
	return s.orders.ListAll(ctx, page)
}

// AdminSetStatus overwrites the status whatever the current one is. Moves off
// the usual lifecycle are allowed and logged as overrides.
func (s *Service) AdminSetStatus(ctx context.Context, id uuid.UUID, status domain.Status) (*domain.Order, error) {
	if !status.Valid() {
		return nil, domain.NewValidationError(domain.FieldError{Field: "status", Message: fmt.Sprintf("unknown status %q", status)})
	}

	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := order.Status
	if recommended := order.SetStatus(status); !recommended {
		s.logger.Warn("status_override", "Order status changed outside the usual lifecycle", logger.RequestID(ctx),
			map[string]interface{}{
				"order_id":   order.ID.String(),
				"old_status": previous,
				"new_status": status,
			}, nil)
	}

	if err := s.orders.UpdateStatus(ctx, order); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("db_update_failed", "Failed to update order status", logger.RequestID(ctx),
				map[string]interface{}{"order_id": order.ID.String()}, err)
		}
		return nil, err
	}

	s.logger.Info("order_status_updated", "Order status updated", logger.RequestID(ctx), map[string]interface{}{
		"order_id":   order.ID.String(),
		"old_status": previous,
		"new_status": status,
	})
	return order, nil
}

func (s *Service) AdminCancelOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return s.AdminSetStatus(ctx, id, domain.StatusCancelled)
}
