package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/shopsphere/shopsphere-backend/internal/logging"
	"github.com/shopsphere/shopsphere-backend/internal/models"
)

// CatalogRepository resolves and administers priced catalog entries. The cart
// and order pipeline only ever calls GetByIDs; the CRUD surface serves catalog
// administration.
type CatalogRepository interface {
	// GetByIDs resolves a set of ids of one kind. Absent ids are simply not
	// returned; callers compare counts to detect unresolved references.
	GetByIDs(ctx context.Context, kind models.ItemType, ids []string) ([]models.CatalogItem, error)
	GetByID(ctx context.Context, kind models.ItemType, id string) (*models.CatalogItem, error)
	List(ctx context.Context, kind models.ItemType, limit, offset int) ([]models.CatalogItem, error)
	Create(ctx context.Context, kind models.ItemType, req *models.CreateCatalogItemRequest) (*models.CatalogItem, error)
	Update(ctx context.Context, kind models.ItemType, item *models.CatalogItem) error
	Delete(ctx context.Context, kind models.ItemType, id string) error
}

type PostgresCatalogRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ CatalogRepository = (*PostgresCatalogRepository)(nil)

func NewPostgresCatalogRepository(db *sql.DB) *PostgresCatalogRepository {
	return &PostgresCatalogRepository{
		db:     db,
		logger: logging.New("catalog-repository"),
	}
}

// tableFor maps the item kind to its table. Kinds are validated at the edge;
// this is a closed switch, not string interpolation of caller input.
func tableFor(kind models.ItemType) (string, error) {
	switch kind {
	case models.ItemTypeProduct:
		return "products", nil
	case models.ItemTypeService:
		return "services", nil
	default:
		return "", fmt.Errorf("unknown item type %q", kind)
	}
}

func (r *PostgresCatalogRepository) GetByIDs(ctx context.Context, kind models.ItemType, ids []string) ([]models.CatalogItem, error) {
	if len(ids) == 0 {
		return []models.CatalogItem{}, nil
	}

	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, name, COALESCE(description, ''), price, COALESCE(image, ''),
		       created_at, updated_at
		FROM ` + table + `
		WHERE id = ANY($1::uuid[])
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		r.logger.Error("failed to resolve catalog items", "kind", kind, "error", err)
		return nil, err
	}
	defer rows.Close()

	items := make([]models.CatalogItem, 0, len(ids))
	for rows.Next() {
		var item models.CatalogItem
		if err := rows.Scan(
			&item.ID, &item.Name, &item.Description, &item.Price, &item.Image,
			&item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func (r *PostgresCatalogRepository) GetByID(ctx context.Context, kind models.ItemType, id string) (*models.CatalogItem, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, name, COALESCE(description, ''), price, COALESCE(image, ''),
		       created_at, updated_at
		FROM ` + table + `
		WHERE id = $1
	`

	var item models.CatalogItem
	err = r.db.QueryRowContext(ctx, query, id).Scan(
		&item.ID, &item.Name, &item.Description, &item.Price, &item.Image,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &item, nil
}

func (r *PostgresCatalogRepository) List(ctx context.Context, kind models.ItemType, limit, offset int) ([]models.CatalogItem, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, name, COALESCE(description, ''), price, COALESCE(image, ''),
		       created_at, updated_at
		FROM ` + table + `
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]models.CatalogItem, 0)
	for rows.Next() {
		var item models.CatalogItem
		if err := rows.Scan(
			&item.ID, &item.Name, &item.Description, &item.Price, &item.Image,
			&item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func (r *PostgresCatalogRepository) Create(ctx context.Context, kind models.ItemType, req *models.CreateCatalogItemRequest) (*models.CatalogItem, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	item := &models.CatalogItem{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Image:       req.Image,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	query := `
		INSERT INTO ` + table + ` (id, name, description, price, image, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = r.db.ExecContext(ctx, query,
		item.ID, item.Name, item.Description, item.Price, item.Image,
		item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("failed to create catalog item", "kind", kind, "error", err)
		return nil, err
	}

	r.logger.Info("catalog item created", "kind", kind, "id", item.ID)
	return item, nil
}

func (r *PostgresCatalogRepository) Update(ctx context.Context, kind models.ItemType, item *models.CatalogItem) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}

	query := `
		UPDATE ` + table + `
		SET name = $2, description = $3, price = $4, image = $5, updated_at = $6
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		item.ID, item.Name, item.Description, item.Price, item.Image, time.Now(),
	)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *PostgresCatalogRepository) Delete(ctx context.Context, kind models.ItemType, id string) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}

	r.logger.Info("catalog item deleted", "kind", kind, "id", id)
	return nil
}
