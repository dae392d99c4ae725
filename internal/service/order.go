package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shopsphere/shopsphere-backend/internal/apperrors"
	"github.com/shopsphere/shopsphere-backend/internal/config"
	"github.com/shopsphere/shopsphere-backend/internal/events"
	"github.com/shopsphere/shopsphere-backend/internal/logging"
	"github.com/shopsphere/shopsphere-backend/internal/models"
	"github.com/shopsphere/shopsphere-backend/internal/repository"
)

// OrderService turns invoice projections into persisted orders and drives the
// order status lifecycle. Orders enter at PENDING and leave it exactly once.
type OrderService struct {
	orders    repository.OrderRepository
	users     repository.UserRepository
	invoices  *InvoiceService
	cache     repository.CartCache
	publisher events.OrderEventPublisher
	features  config.FeatureFlags
	logger    *slog.Logger
}

func NewOrderService(
	orders repository.OrderRepository,
	users repository.UserRepository,
	invoices *InvoiceService,
	cache repository.CartCache,
	publisher events.OrderEventPublisher,
	features config.FeatureFlags,
) *OrderService {
	return &OrderService{
		orders:    orders,
		users:     users,
		invoices:  invoices,
		cache:     cache,
		publisher: publisher,
		features:  features,
		logger:    logging.New("order-service"),
	}
}

// Create checks out the user's current cart: projects the invoice, persists
// the order with its line items, and clears the cart, all atomically. A cart
// that changes mid-checkout restarts the projection rather than charging for
// stale contents.
func (s *OrderService) Create(ctx context.Context, email string) (*models.CreateOrderResult, error) {
	for attempt := 0; attempt < maxCartRetries; attempt++ {
		user, err := s.users.GetByEmail(ctx, email)
		if err == repository.ErrNotFound {
			return nil, apperrors.NewNotFound("User")
		}
		if err != nil {
			return nil, apperrors.NewInternal(err)
		}

		if len(user.Cart) == 0 && s.features.RejectEmptyOrder {
			return nil, apperrors.NewValidation("cart", "cart is empty")
		}

		invoice, err := s.invoices.Project(ctx, user.Cart)
		if err != nil {
			return nil, err
		}

		order := buildOrder(email, invoice)

		err = s.orders.CreateWithItems(ctx, order, user.CartVersion)
		if err == repository.ErrVersionConflict {
			s.logger.Debug("cart changed during checkout, retrying", "email", email, "attempt", attempt+1)
			continue
		}
		if err != nil {
			return nil, apperrors.NewInternal(err)
		}

		if err := s.cache.Invalidate(ctx, email); err != nil {
			s.logger.Warn("failed to invalidate cart cache", "email", email, "error", err)
		}

		if err := s.publisher.PublishOrderCreated(ctx, order); err != nil {
			s.logger.Warn("failed to publish order created event", "order_id", order.ID, "error", err)
		}

		return &models.CreateOrderResult{
			OrderID: order.ID,
			Invoice: invoice,
			Status:  order.Status,
		}, nil
	}

	return nil, apperrors.NewConflict("Cart was modified concurrently, please retry")
}

func buildOrder(email string, invoice *models.Invoice) *models.Order {
	now := time.Now()
	order := &models.Order{
		ID:          uuid.NewString(),
		UserEmail:   email,
		Items:       make([]models.OrderLineItem, 0, len(invoice.Items)),
		TotalAmount: invoice.TotalAmount,
		TotalTax:    invoice.TotalTax,
		Status:      models.OrderStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	for _, line := range invoice.Items {
		qty := float64(line.Quantity)
		lineTotal := qty * line.Item.Price

		item := models.OrderLineItem{
			ID:                    uuid.NewString(),
			ItemType:              line.ItemType,
			Quantity:              line.Quantity,
			Tax:                   line.Tax,
			TotalAmount:           lineTotal,
			TotalAmountWithoutTax: lineTotal - line.Tax*qty,
			TaxCategories:         line.TaxCategories,
			TaxBreakdown:          line.TaxBreakdown,
			CreatedAt:             now,
		}

		id := line.ItemID
		if line.ItemType == models.ItemTypeProduct {
			item.ProductID = &id
		} else {
			item.ServiceID = &id
		}

		order.Items = append(order.Items, item)
	}

	return order
}

// Process moves a PENDING order into a terminal status. Admin-only at the
// routing layer; here only the state machine is enforced.
func (s *OrderService) Process(ctx context.Context, req *models.ProcessOrderRequest) (*models.Order, error) {
	if _, err := uuid.Parse(req.OrderID); err != nil {
		return nil, apperrors.NewValidation("orderId", "must be a valid UUID")
	}
	switch req.Status {
	case models.OrderStatusCompleted, models.OrderStatusFailed, models.OrderStatusCancelled:
	default:
		return nil, apperrors.NewValidation("status", "must be COMPLETED, FAILED or CANCELLED")
	}

	return s.transition(ctx, req.OrderID, req.Status, "")
}

// Cancel moves the caller's own PENDING order to CANCELLED.
func (s *OrderService) Cancel(ctx context.Context, email, orderID string) (*models.Order, error) {
	if _, err := uuid.Parse(orderID); err != nil {
		return nil, apperrors.NewValidation("orderId", "must be a valid UUID")
	}

	return s.transition(ctx, orderID, models.OrderStatusCancelled, email)
}

// transition performs the guarded status update. When ownerEmail is set the
// order must belong to that user; a foreign order is a Forbidden, not a
// NotFound.
func (s *OrderService) transition(ctx context.Context, orderID string, status models.OrderStatus, ownerEmail string) (*models.Order, error) {
	order, err := s.getOrder(ctx, orderID, ownerEmail)
	if err != nil {
		return nil, err
	}
	if order.Status.Terminal() {
		return nil, terminalStateError(order.Status)
	}

	previous := order.Status
	err = s.orders.UpdateStatus(ctx, orderID, status)
	if err == repository.ErrNotPending {
		// Lost the race to another transition; re-read for the exact error.
		if order, err = s.getOrder(ctx, orderID, ownerEmail); err != nil {
			return nil, err
		}
		return nil, terminalStateError(order.Status)
	}
	if err == repository.ErrNotFound {
		return nil, apperrors.NewNotFound("Order")
	}
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}

	order.Status = status
	order.UpdatedAt = time.Now()

	if err := s.publisher.PublishOrderStatusChanged(ctx, order, previous); err != nil {
		s.logger.Warn("failed to publish status change event", "order_id", order.ID, "error", err)
	}

	return order, nil
}

func (s *OrderService) getOrder(ctx context.Context, orderID, ownerEmail string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err == repository.ErrNotFound {
		return nil, apperrors.NewNotFound("Order")
	}
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	if ownerEmail != "" && order.UserEmail != ownerEmail {
		return nil, apperrors.NewForbidden()
	}
	return order, nil
}

func terminalStateError(status models.OrderStatus) error {
	if status == models.OrderStatusCancelled {
		return apperrors.NewAlreadyCancelled()
	}
	return apperrors.NewAlreadyProcessed()
}

// GetOrders returns the caller's orders, newest first.
func (s *OrderService) GetOrders(ctx context.Context, email string, limit, offset int) ([]models.Order, int, error) {
	limit, offset = clampPage(limit, offset)

	orders, total, err := s.orders.ListByUser(ctx, email, limit, offset)
	if err != nil {
		return nil, 0, apperrors.NewInternal(err)
	}
	return orders, total, nil
}

// AdminGetOrders returns all orders across users, newest first.
func (s *OrderService) AdminGetOrders(ctx context.Context, limit, offset int) ([]models.Order, int, error) {
	limit, offset = clampPage(limit, offset)

	orders, total, err := s.orders.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, apperrors.NewInternal(err)
	}
	return orders, total, nil
}
