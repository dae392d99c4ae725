package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/shopsphere/shopsphere-backend/internal/logging"
	"github.com/shopsphere/shopsphere-backend/internal/models"
)

// UserRepository stores local accounts and their cart snapshots.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	// UpdateCart overwrites the cart snapshot if and only if the stored
	// cart_version still equals expectedVersion. Returns ErrVersionConflict
	// when another writer got there first.
	UpdateCart(ctx context.Context, email string, cart models.Cart, expectedVersion int64) (int64, error)
}

type PostgresUserRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ UserRepository = (*PostgresUserRepository)(nil)

func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{
		db:     db,
		logger: logging.New("user-repository"),
	}
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT email, first_name, last_name, provider_uid, is_admin,
		       cart, cart_version, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	var user models.User
	var cartJSON []byte

	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.ProviderUID,
		&user.IsAdmin,
		&cartJSON,
		&user.CartVersion,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to fetch user", "email", email, "error", err)
		return nil, err
	}

	if err := json.Unmarshal(cartJSON, &user.Cart); err != nil {
		return nil, err
	}
	if user.Cart == nil {
		user.Cart = models.Cart{}
	}

	return &user, nil
}

func (r *PostgresUserRepository) Create(ctx context.Context, user *models.User) error {
	cartJSON, err := json.Marshal(user.Cart)
	if err != nil {
		return err
	}

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
		INSERT INTO users (email, first_name, last_name, provider_uid, is_admin,
		                   cart, cart_version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 0, $7, $8)
	`

	_, err = r.db.ExecContext(ctx, query,
		user.Email,
		user.FirstName,
		user.LastName,
		user.ProviderUID,
		user.IsAdmin,
		string(cartJSON),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("failed to create user", "email", user.Email, "error", err)
		return err
	}

	r.logger.Info("user created", "email", user.Email, "is_admin", user.IsAdmin)
	return nil
}

func (r *PostgresUserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET first_name = $2, last_name = $3, is_admin = $4, updated_at = $5
		WHERE email = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		user.Email,
		user.FirstName,
		user.LastName,
		user.IsAdmin,
		time.Now(),
	)
	if err != nil {
		r.logger.Error("failed to update user", "email", user.Email, "error", err)
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *PostgresUserRepository) UpdateCart(ctx context.Context, email string, cart models.Cart, expectedVersion int64) (int64, error) {
	if cart == nil {
		cart = models.Cart{}
	}
	cartJSON, err := json.Marshal(cart)
	if err != nil {
		return 0, err
	}

	query := `
		UPDATE users
		SET cart = $2, cart_version = cart_version + 1, updated_at = $3
		WHERE email = $1 AND cart_version = $4
		RETURNING cart_version
	`

	var newVersion int64
	err = r.db.QueryRowContext(ctx, query, email, string(cartJSON), time.Now(), expectedVersion).Scan(&newVersion)
	if err == sql.ErrNoRows {
		// Either the user vanished or the version moved; disambiguate so the
		// caller can retry only the latter.
		var exists bool
		if checkErr := r.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email,
		).Scan(&exists); checkErr != nil {
			return 0, checkErr
		}
		if !exists {
			return 0, ErrNotFound
		}
		r.logger.Warn("cart version conflict", "email", email, "expected_version", expectedVersion)
		return 0, ErrVersionConflict
	}
	if err != nil {
		r.logger.Error("failed to update cart", "email", email, "error", err)
		return 0, err
	}

	return newVersion, nil
}
