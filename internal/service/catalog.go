package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/shopsphere/shopsphere-backend/internal/apperrors"
	"github.com/shopsphere/shopsphere-backend/internal/logging"
	"github.com/shopsphere/shopsphere-backend/internal/models"
	"github.com/shopsphere/shopsphere-backend/internal/repository"
)

// CatalogService administers products and services and resolves cart
// references for the cart and order pipeline.
type CatalogService struct {
	repo   repository.CatalogRepository
	logger *slog.Logger
}

func NewCatalogService(repo repository.CatalogRepository) *CatalogService {
	return &CatalogService{
		repo:   repo,
		logger: logging.New("catalog-service"),
	}
}

// ResolveCart hydrates every cart line's catalog reference. Products are
// checked before services; if any distinct id of a kind fails to resolve the
// whole call fails naming that kind, and nothing downstream mutates.
func (s *CatalogService) ResolveCart(ctx context.Context, cart models.Cart) (map[models.CartKey]*models.CatalogItem, error) {
	productIDs, serviceIDs := cart.Partition()

	resolved := make(map[models.CartKey]*models.CatalogItem, len(cart))

	products, err := s.resolveKind(ctx, models.ItemTypeProduct, productIDs)
	if err != nil {
		return nil, err
	}
	for id, item := range products {
		resolved[models.CartKey{ItemID: id, ItemType: models.ItemTypeProduct}] = item
	}

	services, err := s.resolveKind(ctx, models.ItemTypeService, serviceIDs)
	if err != nil {
		return nil, err
	}
	for id, item := range services {
		resolved[models.CartKey{ItemID: id, ItemType: models.ItemTypeService}] = item
	}

	return resolved, nil
}

// Hydrate resolves cart references like ResolveCart but tolerates missing
// entries, leaving them absent from the result. Used for the cart read path,
// where an item deleted from the catalog must not make the cart unreadable.
func (s *CatalogService) Hydrate(ctx context.Context, cart models.Cart) (map[models.CartKey]*models.CatalogItem, error) {
	productIDs, serviceIDs := cart.Partition()

	resolved := make(map[models.CartKey]*models.CatalogItem, len(cart))

	for _, part := range []struct {
		kind models.ItemType
		ids  []string
	}{
		{models.ItemTypeProduct, productIDs},
		{models.ItemTypeService, serviceIDs},
	} {
		if len(part.ids) == 0 {
			continue
		}
		items, err := s.repo.GetByIDs(ctx, part.kind, dedupe(part.ids))
		if err != nil {
			return nil, apperrors.NewInternal(err)
		}
		for i := range items {
			resolved[models.CartKey{ItemID: items[i].ID, ItemType: part.kind}] = &items[i]
		}
	}

	return resolved, nil
}

func (s *CatalogService) resolveKind(ctx context.Context, kind models.ItemType, ids []string) (map[string]*models.CatalogItem, error) {
	distinct := dedupe(ids)
	if len(distinct) == 0 {
		return map[string]*models.CatalogItem{}, nil
	}

	items, err := s.repo.GetByIDs(ctx, kind, distinct)
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	if len(items) != len(distinct) {
		s.logger.Warn("unresolved catalog references",
			"kind", kind, "requested", len(distinct), "resolved", len(items))
		return nil, apperrors.NewItemsNotFound(kind.DisplayName())
	}

	byID := make(map[string]*models.CatalogItem, len(items))
	for i := range items {
		byID[items[i].ID] = &items[i]
	}
	return byID, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (s *CatalogService) Get(ctx context.Context, kind models.ItemType, id string) (*models.CatalogItem, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NewValidation("id", "must be a valid UUID")
	}

	item, err := s.repo.GetByID(ctx, kind, id)
	if err == repository.ErrNotFound {
		return nil, apperrors.NewNotFound(kind.DisplayName())
	}
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	return item, nil
}

func (s *CatalogService) List(ctx context.Context, kind models.ItemType, limit, offset int) ([]models.CatalogItem, error) {
	limit, offset = clampPage(limit, offset)

	items, err := s.repo.List(ctx, kind, limit, offset)
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	return items, nil
}

func (s *CatalogService) Create(ctx context.Context, kind models.ItemType, req *models.CreateCatalogItemRequest) (*models.CatalogItem, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperrors.NewValidation("name", "must not be empty")
	}
	if req.Price <= 0 {
		return nil, apperrors.NewValidation("price", "must be greater than zero")
	}

	item, err := s.repo.Create(ctx, kind, req)
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	return item, nil
}

func (s *CatalogService) Update(ctx context.Context, kind models.ItemType, id string, req *models.CreateCatalogItemRequest) (*models.CatalogItem, error) {
	item, err := s.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.Name) != "" {
		item.Name = req.Name
	}
	if req.Description != "" {
		item.Description = req.Description
	}
	if req.Price != 0 {
		if req.Price < 0 {
			return nil, apperrors.NewValidation("price", "must be greater than zero")
		}
		item.Price = req.Price
	}
	if req.Image != "" {
		item.Image = req.Image
	}

	if err := s.repo.Update(ctx, kind, item); err != nil {
		if err == repository.ErrNotFound {
			return nil, apperrors.NewNotFound(kind.DisplayName())
		}
		return nil, apperrors.NewInternal(err)
	}
	return item, nil
}

func (s *CatalogService) Delete(ctx context.Context, kind models.ItemType, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.NewValidation("id", "must be a valid UUID")
	}

	err := s.repo.Delete(ctx, kind, id)
	if err == repository.ErrNotFound {
		return apperrors.NewNotFound(kind.DisplayName())
	}
	if err != nil {
		return apperrors.NewInternal(err)
	}
	return nil
}

// clampPage applies the default page size and caps oversized requests.
func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
