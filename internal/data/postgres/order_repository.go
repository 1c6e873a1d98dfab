package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gamekey-storefront/internal/domain/order"
	"github.com/gamekey-storefront/internal/platform/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Constraint names from the orders table migration. Create relies on them to
// tell a key collision apart from a repeat purchase.
const (
	ordersKeyConstraint     = "orders_key_unique"
	ordersUserAppConstraint = "orders_user_app_unique"
)

// OrderRepository implements the order.Repository interface for PostgreSQL
type OrderRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewOrderRepository creates a new PostgreSQL order repository
func NewOrderRepository(logger *slog.Logger, db *persistence.PostgresDB) order.Repository {
	return &OrderRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction so a checkout's orders are
// persisted atomically.
func (r *OrderRepository) WithTx(tx pgx.Tx) order.Repository {
	return &OrderRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create inserts a single write-once order row. Uniqueness violations are
// mapped to ErrKeyCollision (global key index) or ErrAlreadyPurchased
// ((user, game) index).
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	query := `
		INSERT INTO orders (id, user_id, app_id, key, price_paid, purchased_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.querier.Exec(ctx, query,
		o.ID,
		o.UserID,
		o.AppID,
		o.Key,
		o.PricePaid,
		o.PurchasedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			switch pgErr.ConstraintName {
			case ordersKeyConstraint:
				return order.ErrKeyCollision{Key: o.Key}
			case ordersUserAppConstraint:
				return order.ErrAlreadyPurchased{AppID: o.AppID}
			}
		}
		r.logger.Error("Failed to create order", "order_id", o.ID.String(), "error", err)
		return fmt.Errorf("failed to create order: %w", err)
	}

	return nil
}

// ListByUser retrieves paginated orders for a user, most recent first
func (r *OrderRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*order.Order, error) {
	query := `
		SELECT id, user_id, app_id, key, price_paid, purchased_at
		FROM orders
		WHERE user_id = $1
		ORDER BY purchased_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.querier.Query(ctx, query, userID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list orders", "user_id", userID.String(), "error", err)
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []*order.Order
	for rows.Next() {
		var o order.Order
		err := rows.Scan(
			&o.ID,
			&o.UserID,
			&o.AppID,
			&o.Key,
			&o.PricePaid,
			&o.PurchasedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}

	return orders, nil
}

// CountByUser returns the total number of orders for a user
func (r *OrderRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM orders WHERE user_id = $1`

	var count int64
	if err := r.querier.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		r.logger.Error("Failed to count orders", "user_id", userID.String(), "error", err)
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}

	return count, nil
}

// Exists reports whether the user already ordered the game
func (r *OrderRepository) Exists(ctx context.Context, userID uuid.UUID, appID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM orders WHERE user_id = $1 AND app_id = $2)`

	var exists bool
	if err := r.querier.QueryRow(ctx, query, userID, appID).Scan(&exists); err != nil {
		r.logger.Error("Failed to check order existence", "user_id", userID.String(), "app_id", appID, "error", err)
		return false, fmt.Errorf("failed to check order existence: %w", err)
	}

	return exists, nil
}
