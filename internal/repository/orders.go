package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/shopsphere/shopsphere-backend/internal/logging"
	"github.com/shopsphere/shopsphere-backend/internal/models"
)

// OrderRepository persists checkout aggregates. Creation is atomic with the
// cart clear so a crash can never leave a charged order next to a full cart.
type OrderRepository interface {
	// CreateWithItems inserts the order and its line items, then clears the
	// owner's cart under the same compare-and-swap rules as UserRepository.
	// Everything runs in one transaction; a lost CAS rolls the order back and
	// returns ErrVersionConflict.
	CreateWithItems(ctx context.Context, order *models.Order, cartVersion int64) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	// UpdateStatus moves a PENDING order to the given status. Returns
	// ErrNotPending when the order exists but already left PENDING.
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error
	ListByUser(ctx context.Context, email string, limit, offset int) ([]models.Order, int, error)
	List(ctx context.Context, limit, offset int) ([]models.Order, int, error)
}

type PostgresOrderRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ OrderRepository = (*PostgresOrderRepository)(nil)

func NewPostgresOrderRepository(db *sql.DB) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		db:     db,
		logger: logging.New("order-repository"),
	}
}

func (r *PostgresOrderRepository) CreateWithItems(ctx context.Context, order *models.Order, cartVersion int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, user_email, total_amount, total_tax, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		order.ID, order.UserEmail, order.TotalAmount, order.TotalTax,
		order.Status, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("failed to insert order", "order_id", order.ID, "error", err)
		return err
	}

	for pos, item := range order.Items {
		categories, err := json.Marshal(item.TaxCategories)
		if err != nil {
			return err
		}
		breakdown, err := json.Marshal(item.TaxBreakdown)
		if err != nil {
			return err
		}

		// position preserves the invoice line order; created_at is shared by
		// every item of one order and cannot order them.
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, position, product_id, service_id, quantity,
			                         tax, total_amount, total_amount_without_tax,
			                         tax_categories, tax_breakdown, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`,
			item.ID, order.ID, pos, item.ProductID, item.ServiceID, item.Quantity,
			item.Tax, item.TotalAmount, item.TotalAmountWithoutTax,
			string(categories), string(breakdown), item.CreatedAt,
		)
		if err != nil {
			r.logger.Error("failed to insert order item", "order_id", order.ID, "error", err)
			return err
		}
	}

	// Clear the cart under the version observed when the invoice was built. If
	// the cart changed since, the whole checkout rolls back.
	result, err := tx.ExecContext(ctx, `
		UPDATE users
		SET cart = '[]', cart_version = cart_version + 1, updated_at = $2
		WHERE email = $1 AND cart_version = $3
	`, order.UserEmail, time.Now(), cartVersion)
	if err != nil {
		return err
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		r.logger.Warn("cart changed during checkout", "email", order.UserEmail, "order_id", order.ID)
		return ErrVersionConflict
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	r.logger.Info("order created",
		"order_id", order.ID,
		"email", order.UserEmail,
		"items", len(order.Items),
		"total_amount", order.TotalAmount,
	)
	return nil
}

func (r *PostgresOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_email, total_amount, total_tax, status, created_at, updated_at
		FROM orders
		WHERE id = $1
	`, id).Scan(
		&order.ID, &order.UserEmail, &order.TotalAmount, &order.TotalTax,
		&order.Status, &order.CreatedAt, &order.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	items, err := r.loadItems(ctx, []string{order.ID})
	if err != nil {
		return nil, err
	}
	order.Items = items[order.ID]
	if order.Items == nil {
		order.Items = []models.OrderLineItem{}
	}

	return &order, nil
}

func (r *PostgresOrderRepository) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $2, updated_at = $3
		WHERE id = $1 AND status = 'PENDING'
	`, id, status, time.Now())
	if err != nil {
		r.logger.Error("failed to update order status", "order_id", id, "error", err)
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		var exists bool
		if checkErr := r.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id,
		).Scan(&exists); checkErr != nil {
			return checkErr
		}
		if !exists {
			return ErrNotFound
		}
		return ErrNotPending
	}

	r.logger.Info("order status updated", "order_id", id, "status", status)
	return nil
}

func (r *PostgresOrderRepository) ListByUser(ctx context.Context, email string, limit, offset int) ([]models.Order, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM orders WHERE user_email = $1`, email,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_email, total_amount, total_tax, status, created_at, updated_at
		FROM orders
		WHERE user_email = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, email, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	orders, err := r.collectOrders(ctx, rows)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *PostgresOrderRepository) List(ctx context.Context, limit, offset int) ([]models.Order, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_email, total_amount, total_tax, status, created_at, updated_at
		FROM orders
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	orders, err := r.collectOrders(ctx, rows)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *PostgresOrderRepository) collectOrders(ctx context.Context, rows *sql.Rows) ([]models.Order, error) {
	defer rows.Close()

	orders := make([]models.Order, 0)
	ids := make([]string, 0)
	for rows.Next() {
		var order models.Order
		if err := rows.Scan(
			&order.ID, &order.UserEmail, &order.TotalAmount, &order.TotalTax,
			&order.Status, &order.CreatedAt, &order.UpdatedAt,
		); err != nil {
			return nil, err
		}
		order.Items = []models.OrderLineItem{}
		orders = append(orders, order)
		ids = append(ids, order.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	itemsByOrder, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if items, ok := itemsByOrder[orders[i].ID]; ok {
			orders[i].Items = items
		}
	}

	return orders, nil
}

func (r *PostgresOrderRepository) loadItems(ctx context.Context, orderIDs []string) (map[string][]models.OrderLineItem, error) {
	itemsByOrder := make(map[string][]models.OrderLineItem)
	if len(orderIDs) == 0 {
		return itemsByOrder, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, service_id, quantity,
		       tax, total_amount, total_amount_without_tax,
		       tax_categories, tax_breakdown, created_at
		FROM order_items
		WHERE order_id = ANY($1::uuid[])
		ORDER BY position
	`, pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderLineItem
		var orderID string
		var categories, breakdown string
		if err := rows.Scan(
			&item.ID, &orderID, &item.ProductID, &item.ServiceID, &item.Quantity,
			&item.Tax, &item.TotalAmount, &item.TotalAmountWithoutTax,
			&categories, &breakdown, &item.CreatedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(categories), &item.TaxCategories); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(breakdown), &item.TaxBreakdown); err != nil {
			return nil, err
		}
		if item.ProductID != nil {
			item.ItemType = models.ItemTypeProduct
		} else {
			item.ItemType = models.ItemTypeService
		}
		itemsByOrder[orderID] = append(itemsByOrder[orderID], item)
	}

	return itemsByOrder, rows.Err()
}
