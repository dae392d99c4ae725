package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopsphere/shopsphere-backend/internal/apperrors"
	"github.com/shopsphere/shopsphere-backend/internal/config"
	"github.com/shopsphere/shopsphere-backend/internal/models"
	"github.com/shopsphere/shopsphere-backend/internal/repository"
)

const (
	productA  = "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"
	productB  = "bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb"
	serviceA  = "cccccccc-cccc-cccc-cccc-cccccccccccc"
	unknownID = "dddddddd-dddd-dddd-dddd-dddddddddddd"
	userEmail = "user@example.com"
)

func newCartFixture(t *testing.T, flags config.FeatureFlags, cart models.Cart) (*CartService, *mockUserRepo) {
	t.Helper()

	catalogRepo := newMockCatalogRepo()
	catalogRepo.addProduct(models.CatalogItem{ID: productA, Name: "Keyboard", Price: 3000})
	catalogRepo.addProduct(models.CatalogItem{ID: productB, Name: "Mouse", Price: 500})
	catalogRepo.addService(models.CatalogItem{ID: serviceA, Name: "Setup", Price: 5000})

	users := newMockUserRepo(&models.User{Email: userEmail, Cart: cart})
	catalog := NewCatalogService(catalogRepo)
	svc := NewCartService(users, catalog, repository.NoopCartCache{}, flags)
	return svc, users
}

func line(id string, kind models.ItemType, qty int) models.CartLineItem {
	return models.CartLineItem{ItemID: id, ItemType: kind, Quantity: qty}
}

func TestCartAddMergesQuantities(t *testing.T) {
	svc, _ := newCartFixture(t, config.FeatureFlags{}, models.Cart{
		line(productA, models.ItemTypeProduct, 2),
	})

	cart, err := svc.Add(context.Background(), userEmail, []models.CartLineItem{
		line(productA, models.ItemTypeProduct, 3),
	})
	require.NoError(t, err)
	require.Len(t, cart, 1)
	assert.Equal(t, 5, cart[0].Quantity)
}

func TestCartAddCollapsesRequestDuplicates(t *testing.T) {
	svc, _ := newCartFixture(t, config.FeatureFlags{}, models.Cart{})

	cart, err := svc.Add(context.Background(), userEmail, []models.CartLineItem{
		line(productA, models.ItemTypeProduct, 2),
		line(productA, models.ItemTypeProduct, 3),
	})
	require.NoError(t, err)
	require.Len(t, cart, 1)
	assert.Equal(t, 5, cart[0].Quantity)
}

func TestCartAddDropsZeroQuantity(t *testing.T) {
	svc, _ := newCartFixture(t, config.FeatureFlags{}, models.Cart{})

	cart, err := svc.Add(context.Background(), userEmail, []models.CartLineItem{
		line(productA, models.ItemTypeProduct, 0),
	})
	require.NoError(t, err)
	assert.Empty(t, cart)
}

func TestCartAddSameIDDifferentKindsAreDistinctLines(t *testing.T) {
	svc, _ := newCartFixture(t, config.FeatureFlags{}, models.Cart{})
	catalogID := serviceA

	// serviceA only exists as a service; use two genuinely distinct entries.
	cart, err := svc.Add(context.Background(), userEmail, []models.CartLineItem{
		line(productA, models.ItemTypeProduct, 1),
		line(catalogID, models.ItemTypeService, 1),
	})
	require.NoError(t, err)
	assert.Len(t, cart, 2)
}

func TestCartAddUnknownProductFailsBeforeMutation(t *testing.T) {
	svc, users := newCartFixture(t, config.FeatureFlags{}, models.Cart{
		line(productA, models.ItemTypeProduct, 1),
	})

	_, err := svc.Add(context.Background(), userEmail, []models.CartLineItem{
		line(unknownID, models.ItemTypeProduct, 2),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	assert.EqualError(t, apperrors.As(err), "One or More Product not found")

	stored := users.users[userEmail]
	assert.Len(t, stored.Cart, 1, "failed add must not mutate the cart")
}

func TestCartAddRetriesOnVersionConflict(t *testing.T) {
	svc, users := newCartFixture(t, config.FeatureFlags{}, models.Cart{})
	users.conflictsToInject = 2

	cart, err := svc.Add(context.Background(), userEmail, []models.CartLineItem{
		line(productA, models.ItemTypeProduct, 1),
	})
	require.NoError(t, err)
	assert.Len(t, cart, 1)
}

func TestCartAddGivesUpAfterRepeatedConflicts(t *testing.T) {
	svc, users := newCartFixture(t, config.FeatureFlags{}, models.Cart{})
	users.conflictsToInject = maxCartRetries

	_, err := svc.Add(context.Background(), userEmail, []models.CartLineItem{
		line(productA, models.ItemTypeProduct, 1),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
}

func TestCartUpdateRejectsDuplicateKeys(t *testing.T) {
	svc, _ := newCartFixture(t, config.FeatureFlags{}, models.Cart{})

	_, err := svc.Update(context.Background(), userEmail, []models.CartLineItem{
		line(productA, models.ItemTypeProduct, 1),
		line(productA, models.ItemTypeProduct, 2),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
}

func TestCartUpdateOverwritesQuantity(t *testing.T) {
	svc, _ := newCartFixture(t, config.FeatureFlags{}, models.Cart{
		line(productA, models.ItemTypeProduct, 2),
	})

	cart, err := svc.Update(context.Background(), userEmail, []models.CartLineItem{
		line(productA, models.ItemTypeProduct, 7),
	})
	require.NoError(t, err)
	require.Len(t, cart, 1)
	assert.Equal(t, 7, cart[0].Quantity)
}

func TestCartUpdateZeroQuantityRemovesLine(t *testing.T) {
	svc, _ := newCartFixture(t, config.FeatureFlags{}, models.Cart{
		line(productA, models.ItemTypeProduct, 2),
		line(productB, models.ItemTypeProduct, 1),
	})

	cart, err := svc.Update(context.Background(), userEmail, []models.CartLineItem{
		line(productA, models.ItemTypeProduct, 0),
	})
	require.NoError(t, err)
	require.Len(t, cart, 1)
	assert.Equal(t, productB, cart[0].ItemID)
}

func TestCartUpdateUnknownKeyAppends(t *testing.T) {
	svc, _ := newCartFixture(t, config.FeatureFlags{}, models.Cart{})

	cart, err := svc.Update(context.Background(), userEmail, []models.CartLineItem{
		line(productA, models.ItemTypeProduct, 4),
	})
	require.NoError(t, err)
	require.Len(t, cart, 1)
	assert.Equal(t, 4, cart[0].Quantity)
}

func TestCartUpdateUnknownZeroQuantityInsertsByDefault(t *testing.T) {
	svc, _ := newCartFixture(t, config.FeatureFlags{}, models.Cart{})

	cart, err := svc.Update(context.Background(), userEmail, []models.CartLineItem{
		line(productA, models.ItemTypeProduct, 0),
	})
	require.NoError(t, err)
	require.Len(t, cart, 1)
	assert.Equal(t, 0, cart[0].Quantity)
}

func TestCartUpdateUnknownZeroQuantityDroppedWhenFlagged(t *testing.T) {
	svc, _ := newCartFixture(t, config.FeatureFlags{DropUnknownZeroQuantity: true}, models.Cart{})

	cart, err := svc.Update(context.Background(), userEmail, []models.CartLineItem{
		line(productA, models.ItemTypeProduct, 0),
	})
	require.NoError(t, err)
	assert.Empty(t, cart)
}

func TestCartRemoveIsIdempotent(t *testing.T) {
	svc, _ := newCartFixture(t, config.FeatureFlags{}, models.Cart{
		line(productA, models.ItemTypeProduct, 2),
	})
	ref := models.CartItemRef{ItemID: unknownID, ItemType: models.ItemTypeProduct}

	cart, err := svc.Remove(context.Background(), userEmail, []models.CartItemRef{ref, ref})
	require.NoError(t, err)
	assert.Len(t, cart, 1)
}

func TestCartRemoveDeletesMatchingLine(t *testing.T) {
	svc, _ := newCartFixture(t, config.FeatureFlags{}, models.Cart{
		line(productA, models.ItemTypeProduct, 2),
		line(serviceA, models.ItemTypeService, 1),
	})

	cart, err := svc.Remove(context.Background(), userEmail, []models.CartItemRef{
		{ItemID: productA, ItemType: models.ItemTypeProduct},
	})
	require.NoError(t, err)
	require.Len(t, cart, 1)
	assert.Equal(t, models.ItemTypeService, cart[0].ItemType)
}

func TestCartClear(t *testing.T) {
	svc, users := newCartFixture(t, config.FeatureFlags{}, models.Cart{
		line(productA, models.ItemTypeProduct, 2),
	})

	cart, err := svc.Clear(context.Background(), userEmail)
	require.NoError(t, err)
	assert.Empty(t, cart)
	assert.Empty(t, users.users[userEmail].Cart)
}

func TestCartGetHydratesLines(t *testing.T) {
	svc, _ := newCartFixture(t, config.FeatureFlags{}, models.Cart{
		line(productA, models.ItemTypeProduct, 2),
	})

	lines, err := svc.Get(context.Background(), userEmail)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	require.NotNil(t, lines[0].Item)
	assert.Equal(t, "Keyboard", lines[0].Item.Name)
	assert.InDelta(t, 3000, lines[0].Item.Price, 1e-9)
}

func TestCartValidationRejectsBadInput(t *testing.T) {
	svc, _ := newCartFixture(t, config.FeatureFlags{}, models.Cart{})

	tests := []struct {
		name string
		item models.CartLineItem
	}{
		{"invalid item type", line(productA, "GADGET", 1)},
		{"malformed uuid", line("not-a-uuid", models.ItemTypeProduct, 1)},
		{"negative quantity", line(productA, models.ItemTypeProduct, -1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Add(context.Background(), userEmail, []models.CartLineItem{tt.item})
			require.Error(t, err)
			assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
		})
	}
}
