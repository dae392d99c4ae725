package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopsphere/shopsphere-backend/internal/apperrors"
	"github.com/shopsphere/shopsphere-backend/internal/config"
	"github.com/shopsphere/shopsphere-backend/internal/events"
	"github.com/shopsphere/shopsphere-backend/internal/events/eventtest"
	"github.com/shopsphere/shopsphere-backend/internal/models"
	"github.com/shopsphere/shopsphere-backend/internal/repository"
)

type orderFixture struct {
	svc       *OrderService
	users     *mockUserRepo
	orders    *mockOrderRepo
	publisher *eventtest.Publisher
}

func newOrderFixture(t *testing.T, flags config.FeatureFlags, cart models.Cart) *orderFixture {
	t.Helper()

	catalogRepo := newMockCatalogRepo()
	catalogRepo.addProduct(models.CatalogItem{ID: productA, Name: "Keyboard", Price: 3000})
	catalogRepo.addService(models.CatalogItem{ID: serviceA, Name: "Setup", Price: 5000})

	users := newMockUserRepo(&models.User{Email: userEmail, Cart: cart})
	orders := newMockOrderRepo(users)
	publisher := eventtest.New()

	catalog := NewCatalogService(catalogRepo)
	invoices := NewInvoiceService(catalog, NewTaxCalculator())
	svc := NewOrderService(orders, users, invoices, repository.NoopCartCache{}, publisher, flags)

	return &orderFixture{svc: svc, users: users, orders: orders, publisher: publisher}
}

func TestOrderCreateClearsCart(t *testing.T) {
	f := newOrderFixture(t, config.FeatureFlags{}, models.Cart{
		line(productA, models.ItemTypeProduct, 2),
	})

	result, err := f.svc.Create(context.Background(), userEmail)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, result.Status)
	assert.Empty(t, f.users.users[userEmail].Cart)
}

func TestOrderCreateTotalsReconcile(t *testing.T) {
	f := newOrderFixture(t, config.FeatureFlags{}, models.Cart{
		line(productA, models.ItemTypeProduct, 2), // tax 560/unit
		line(serviceA, models.ItemTypeService, 3), // tax 600/unit
	})

	result, err := f.svc.Create(context.Background(), userEmail)
	require.NoError(t, err)

	order, err := f.orders.GetByID(context.Background(), result.OrderID)
	require.NoError(t, err)

	var sumTax float64
	for _, item := range order.Items {
		sumTax += item.Tax * float64(item.Quantity)
		assert.InDelta(t, item.TotalAmount-item.Tax*float64(item.Quantity), item.TotalAmountWithoutTax, 1e-9)
	}
	assert.InDelta(t, sumTax, order.TotalTax, 1e-9)
	assert.InDelta(t, order.TotalAmount+order.TotalTax, result.Invoice.TotalAmountWithTax, 1e-9)
}

func TestOrderCreateLineItemsReferenceOneKind(t *testing.T) {
	f := newOrderFixture(t, config.FeatureFlags{}, models.Cart{
		line(productA, models.ItemTypeProduct, 1),
		line(serviceA, models.ItemTypeService, 1),
	})

	result, err := f.svc.Create(context.Background(), userEmail)
	require.NoError(t, err)

	order, err := f.orders.GetByID(context.Background(), result.OrderID)
	require.NoError(t, err)
	require.Len(t, order.Items, 2)

	for _, item := range order.Items {
		set := 0
		if item.ProductID != nil {
			set++
		}
		if item.ServiceID != nil {
			set++
		}
		assert.Equal(t, 1, set)
	}
}

func TestOrderCreatePreservesCartLineOrder(t *testing.T) {
	f := newOrderFixture(t, config.FeatureFlags{}, models.Cart{
		line(productA, models.ItemTypeProduct, 2),
		line(serviceA, models.ItemTypeService, 1),
	})

	result, err := f.svc.Create(context.Background(), userEmail)
	require.NoError(t, err)

	order, err := f.orders.GetByID(context.Background(), result.OrderID)
	require.NoError(t, err)
	require.Len(t, order.Items, 2)

	require.NotNil(t, order.Items[0].ProductID)
	assert.Equal(t, productA, *order.Items[0].ProductID)
	require.NotNil(t, order.Items[1].ServiceID)
	assert.Equal(t, serviceA, *order.Items[1].ServiceID)
}

func TestOrderCreateEmptyCartProducesZeroOrderByDefault(t *testing.T) {
	f := newOrderFixture(t, config.FeatureFlags{}, models.Cart{})

	result, err := f.svc.Create(context.Background(), userEmail)
	require.NoError(t, err)
	assert.Empty(t, result.Invoice.Items)
	assert.Zero(t, result.Invoice.TotalAmountWithTax)
}

func TestOrderCreateEmptyCartRejectedWhenFlagged(t *testing.T) {
	f := newOrderFixture(t, config.FeatureFlags{RejectEmptyOrder: true}, models.Cart{})

	_, err := f.svc.Create(context.Background(), userEmail)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestOrderCreateRetriesWhenCartChangesMidCheckout(t *testing.T) {
	f := newOrderFixture(t, config.FeatureFlags{}, models.Cart{
		line(productA, models.ItemTypeProduct, 1),
	})
	f.users.conflictsToInject = 1

	result, err := f.svc.Create(context.Background(), userEmail)
	require.NoError(t, err)
	assert.NotEmpty(t, result.OrderID)
}

func TestOrderCreatePublishesEvent(t *testing.T) {
	f := newOrderFixture(t, config.FeatureFlags{}, models.Cart{
		line(productA, models.ItemTypeProduct, 1),
	})

	_, err := f.svc.Create(context.Background(), userEmail)
	require.NoError(t, err)
	require.Len(t, f.publisher.Events, 1)
	assert.Equal(t, events.EventTypeOrderCreated, f.publisher.Events[0].Type)
}

func TestOrderProcessTransitions(t *testing.T) {
	tests := []struct {
		name   string
		status models.OrderStatus
	}{
		{"complete", models.OrderStatusCompleted},
		{"fail", models.OrderStatusFailed},
		{"cancel", models.OrderStatusCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOrderFixture(t, config.FeatureFlags{}, models.Cart{
				line(productA, models.ItemTypeProduct, 1),
			})
			result, err := f.svc.Create(context.Background(), userEmail)
			require.NoError(t, err)

			order, err := f.svc.Process(context.Background(), &models.ProcessOrderRequest{
				OrderID: result.OrderID,
				Status:  tt.status,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.status, order.Status)
		})
	}
}

func TestOrderProcessRejectsPendingTarget(t *testing.T) {
	f := newOrderFixture(t, config.FeatureFlags{}, models.Cart{
		line(productA, models.ItemTypeProduct, 1),
	})
	result, err := f.svc.Create(context.Background(), userEmail)
	require.NoError(t, err)

	_, err = f.svc.Process(context.Background(), &models.ProcessOrderRequest{
		OrderID: result.OrderID,
		Status:  models.OrderStatusPending,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestOrderProcessTerminalStateErrors(t *testing.T) {
	tests := []struct {
		name     string
		terminal models.OrderStatus
		wantKind apperrors.Kind
	}{
		{"completed", models.OrderStatusCompleted, apperrors.KindAlreadyProcessed},
		{"failed", models.OrderStatusFailed, apperrors.KindAlreadyProcessed},
		{"cancelled", models.OrderStatusCancelled, apperrors.KindAlreadyCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOrderFixture(t, config.FeatureFlags{}, models.Cart{
				line(productA, models.ItemTypeProduct, 1),
			})
			result, err := f.svc.Create(context.Background(), userEmail)
			require.NoError(t, err)

			_, err = f.svc.Process(context.Background(), &models.ProcessOrderRequest{
				OrderID: result.OrderID,
				Status:  tt.terminal,
			})
			require.NoError(t, err)

			_, err = f.svc.Process(context.Background(), &models.ProcessOrderRequest{
				OrderID: result.OrderID,
				Status:  models.OrderStatusCompleted,
			})
			require.Error(t, err)
			assert.True(t, apperrors.IsKind(err, tt.wantKind))

			order, err := f.orders.GetByID(context.Background(), result.OrderID)
			require.NoError(t, err)
			assert.Equal(t, tt.terminal, order.Status, "failed transition must not mutate status")
		})
	}
}

func TestOrderCancelByOwner(t *testing.T) {
	f := newOrderFixture(t, config.FeatureFlags{}, models.Cart{
		line(productA, models.ItemTypeProduct, 1),
	})
	result, err := f.svc.Create(context.Background(), userEmail)
	require.NoError(t, err)

	order, err := f.svc.Cancel(context.Background(), userEmail, result.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, order.Status)
}

func TestOrderCancelByNonOwnerForbidden(t *testing.T) {
	f := newOrderFixture(t, config.FeatureFlags{}, models.Cart{
		line(productA, models.ItemTypeProduct, 1),
	})
	result, err := f.svc.Create(context.Background(), userEmail)
	require.NoError(t, err)

	_, err = f.svc.Cancel(context.Background(), "other@example.com", result.OrderID)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
	assert.EqualError(t, apperrors.As(err), "Forbidden")

	order, err := f.orders.GetByID(context.Background(), result.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, order.Status, "foreign cancel must not mutate status")
}

func TestOrderGetOrdersScopedToOwner(t *testing.T) {
	f := newOrderFixture(t, config.FeatureFlags{}, models.Cart{
		line(productA, models.ItemTypeProduct, 1),
	})
	_, err := f.svc.Create(context.Background(), userEmail)
	require.NoError(t, err)

	orders, total, err := f.svc.GetOrders(context.Background(), userEmail, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, orders, 1)

	orders, total, err = f.svc.GetOrders(context.Background(), "other@example.com", 0, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, orders)
}

func TestOrderAdminGetOrdersSeesAll(t *testing.T) {
	f := newOrderFixture(t, config.FeatureFlags{}, models.Cart{
		line(productA, models.ItemTypeProduct, 1),
	})
	_, err := f.svc.Create(context.Background(), userEmail)
	require.NoError(t, err)

	orders, total, err := f.svc.AdminGetOrders(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, orders, 1)
}
