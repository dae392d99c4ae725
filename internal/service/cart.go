package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/shopsphere/shopsphere-backend/internal/apperrors"
	"github.com/shopsphere/shopsphere-backend/internal/config"
	"github.com/shopsphere/shopsphere-backend/internal/logging"
	"github.com/shopsphere/shopsphere-backend/internal/models"
	"github.com/shopsphere/shopsphere-backend/internal/repository"
)

// maxCartRetries bounds the optimistic-concurrency retry loop on cart writes.
const maxCartRetries = 3

// CartService owns the mutation semantics of a user's cart. Every mutation is
// validated and catalog-resolved before anything is written, then applied as a
// compare-and-swap on the stored cart so concurrent writers never lose updates.
type CartService struct {
	users    repository.UserRepository
	catalog  *CatalogService
	cache    repository.CartCache
	features config.FeatureFlags
	group    singleflight.Group
	logger   *slog.Logger
}

func NewCartService(users repository.UserRepository, catalog *CatalogService, cache repository.CartCache, features config.FeatureFlags) *CartService {
	return &CartService{
		users:    users,
		catalog:  catalog,
		cache:    cache,
		features: features,
		logger:   logging.New("cart-service"),
	}
}

// Get returns the user's cart hydrated with catalog entries. Concurrent reads
// for the same user are collapsed into one lookup.
func (s *CartService) Get(ctx context.Context, email string) ([]models.HydratedCartLine, error) {
	v, err, _ := s.group.Do("cart:"+email, func() (interface{}, error) {
		if lines, err := s.cache.Get(ctx, email); err == nil {
			return lines, nil
		}

		user, err := s.fetchUser(ctx, email)
		if err != nil {
			return nil, err
		}

		resolved, err := s.catalog.Hydrate(ctx, user.Cart)
		if err != nil {
			return nil, err
		}

		lines := make([]models.HydratedCartLine, 0, len(user.Cart))
		for _, line := range user.Cart {
			lines = append(lines, models.HydratedCartLine{
				CartLineItem: line,
				Item:         resolved[line.Key()],
			})
		}

		if err := s.cache.Set(ctx, email, lines); err != nil {
			s.logger.Warn("failed to cache cart", "email", email, "error", err)
		}
		return lines, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.HydratedCartLine), nil
}

// Add merges the requested items into the cart. Duplicate keys within the
// request are collapsed by summing; zero quantities are dropped, not rejected;
// quantities for keys already in the cart are incremented, never overwritten.
func (s *CartService) Add(ctx context.Context, email string, items []models.CartLineItem) (models.Cart, error) {
	if err := validateCartItems(items); err != nil {
		return nil, err
	}

	collapsed := collapseByKey(items)

	// Drop zero-quantity requests after collapsing, so a pair that sums to a
	// positive quantity still lands.
	requested := make([]models.CartLineItem, 0, len(collapsed))
	for _, item := range collapsed {
		if item.Quantity > 0 {
			requested = append(requested, item)
		}
	}

	if _, err := s.catalog.ResolveCart(ctx, models.Cart(requested)); err != nil {
		return nil, err
	}

	return s.mutate(ctx, email, func(cart models.Cart) (models.Cart, error) {
		for _, item := range requested {
			if idx := cart.IndexOf(item.Key()); idx >= 0 {
				cart[idx].Quantity += item.Quantity
			} else {
				cart = append(cart, item)
			}
		}
		return cart, nil
	})
}

// Update overwrites quantities for the requested keys. A zero quantity removes
// an existing line; an unknown key is appended. Requests carrying the same key
// twice are rejected outright.
func (s *CartService) Update(ctx context.Context, email string, items []models.CartLineItem) (models.Cart, error) {
	if err := validateCartItems(items); err != nil {
		return nil, err
	}

	seen := make(map[models.CartKey]struct{}, len(items))
	for _, item := range items {
		if _, dup := seen[item.Key()]; dup {
			return nil, apperrors.NewConflict("Duplicate items in request")
		}
		seen[item.Key()] = struct{}{}
	}

	if _, err := s.catalog.ResolveCart(ctx, models.Cart(items)); err != nil {
		return nil, err
	}

	return s.mutate(ctx, email, func(cart models.Cart) (models.Cart, error) {
		for _, item := range items {
			idx := cart.IndexOf(item.Key())
			switch {
			case idx >= 0 && item.Quantity == 0:
				cart = append(cart[:idx], cart[idx+1:]...)
			case idx >= 0:
				cart[idx].Quantity = item.Quantity
			case item.Quantity == 0 && s.features.DropUnknownZeroQuantity:
				// skip
			default:
				cart = append(cart, item)
			}
		}
		return cart, nil
	})
}

// Remove deletes the referenced lines. Absent keys are a no-op, and duplicate
// references in the request are harmless.
func (s *CartService) Remove(ctx context.Context, email string, refs []models.CartItemRef) (models.Cart, error) {
	for _, ref := range refs {
		if !ref.ItemType.Valid() {
			return nil, apperrors.NewValidation("itemType", "must be PRODUCT or SERVICE")
		}
		if _, err := uuid.Parse(ref.ItemID); err != nil {
			return nil, apperrors.NewValidation("itemId", "must be a valid UUID")
		}
	}

	drop := make(map[models.CartKey]struct{}, len(refs))
	for _, ref := range refs {
		drop[ref.Key()] = struct{}{}
	}

	return s.mutate(ctx, email, func(cart models.Cart) (models.Cart, error) {
		kept := make(models.Cart, 0, len(cart))
		for _, line := range cart {
			if _, ok := drop[line.Key()]; !ok {
				kept = append(kept, line)
			}
		}
		return kept, nil
	})
}

// Clear unconditionally empties the cart.
func (s *CartService) Clear(ctx context.Context, email string) (models.Cart, error) {
	return s.mutate(ctx, email, func(models.Cart) (models.Cart, error) {
		return models.Cart{}, nil
	})
}

// mutate runs the read-transform-write loop under optimistic concurrency.
// On a lost compare-and-swap the cart is re-read and the transform re-applied.
func (s *CartService) mutate(ctx context.Context, email string, transform func(models.Cart) (models.Cart, error)) (models.Cart, error) {
	for attempt := 0; attempt < maxCartRetries; attempt++ {
		user, err := s.fetchUser(ctx, email)
		if err != nil {
			return nil, err
		}

		// Copy before transforming; a lost CAS must not leak a half-applied
		// transform into the next attempt.
		working := make(models.Cart, len(user.Cart))
		copy(working, user.Cart)

		updated, err := transform(working)
		if err != nil {
			return nil, err
		}

		_, err = s.users.UpdateCart(ctx, email, updated, user.CartVersion)
		if err == repository.ErrVersionConflict {
			s.logger.Debug("retrying cart write after version conflict", "email", email, "attempt", attempt+1)
			continue
		}
		if err == repository.ErrNotFound {
			return nil, apperrors.NewNotFound("User")
		}
		if err != nil {
			return nil, apperrors.NewInternal(err)
		}

		if err := s.cache.Invalidate(ctx, email); err != nil {
			s.logger.Warn("failed to invalidate cart cache", "email", email, "error", err)
		}
		return updated, nil
	}

	return nil, apperrors.NewConflict("Cart was modified concurrently, please retry")
}

func (s *CartService) fetchUser(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err == repository.ErrNotFound {
		return nil, apperrors.NewNotFound("User")
	}
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	return user, nil
}

// validateCartItems checks field shape only; catalog existence is a separate
// resolution step.
func validateCartItems(items []models.CartLineItem) error {
	for _, item := range items {
		if !item.ItemType.Valid() {
			return apperrors.NewValidation("itemType", "must be PRODUCT or SERVICE")
		}
		if _, err := uuid.Parse(item.ItemID); err != nil {
			return apperrors.NewValidation("itemId", "must be a valid UUID")
		}
		if item.Quantity < 0 {
			return apperrors.NewValidation("quantity", "must be zero or greater")
		}
	}
	return nil
}

// collapseByKey sums quantities for repeated keys, preserving first-seen order.
func collapseByKey(items []models.CartLineItem) []models.CartLineItem {
	index := make(map[models.CartKey]int, len(items))
	out := make([]models.CartLineItem, 0, len(items))
	for _, item := range items {
		if idx, ok := index[item.Key()]; ok {
			out[idx].Quantity += item.Quantity
			continue
		}
		index[item.Key()] = len(out)
		out = append(out, item)
	}
	return out
}
