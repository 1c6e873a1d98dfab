package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gamekey-storefront/internal/domain/cart"
	"github.com/gamekey-storefront/internal/platform/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// CartRepository implements the cart.Repository interface for PostgreSQL
type CartRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewCartRepository creates a new PostgreSQL cart repository
func NewCartRepository(logger *slog.Logger, db *persistence.PostgresDB) cart.Repository {
	return &CartRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction for atomic operations
func (r *CartRepository) WithTx(tx pgx.Tx) cart.Repository {
	return &CartRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Add inserts a cart item. The (user_id, app_id) primary key turns a
// duplicate add into ErrAlreadyInCart.
func (r *CartRepository) Add(ctx context.Context, item *cart.Item) error {
	query := `
		INSERT INTO cart_items (user_id, app_id, added_at)
		VALUES ($1, $2, $3)
	`

	_, err := r.querier.Exec(ctx, query, item.UserID, item.AppID, item.AddedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return cart.ErrAlreadyInCart{AppID: item.AppID}
		}
		r.logger.Error("Failed to add cart item", "user_id", item.UserID.String(), "app_id", item.AppID, "error", err)
		return fmt.Errorf("failed to add cart item: %w", err)
	}

	return nil
}

// Remove deletes a cart item. Removing an absent item is a no-op success.
func (r *CartRepository) Remove(ctx context.Context, userID uuid.UUID, appID int64) error {
	query := `DELETE FROM cart_items WHERE user_id = $1 AND app_id = $2`

	_, err := r.querier.Exec(ctx, query, userID, appID)
	if err != nil {
		r.logger.Error("Failed to remove cart item", "user_id", userID.String(), "app_id", appID, "error", err)
		return fmt.Errorf("failed to remove cart item: %w", err)
	}

	return nil
}

// ListByUser retrieves the user's cart items, newest first
func (r *CartRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*cart.Item, error) {
	query := `
		SELECT user_id, app_id, added_at
		FROM cart_items
		WHERE user_id = $1
		ORDER BY added_at DESC
	`

	rows, err := r.querier.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to list cart items", "user_id", userID.String(), "error", err)
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	defer rows.Close()

	var items []*cart.Item
	for rows.Next() {
		var item cart.Item
		if err := rows.Scan(&item.UserID, &item.AppID, &item.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cart items: %w", err)
	}

	return items, nil
}

// CountByUser returns the number of items in the user's cart
func (r *CartRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM cart_items WHERE user_id = $1`

	var count int64
	if err := r.querier.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		r.logger.Error("Failed to count cart items", "user_id", userID.String(), "error", err)
		return 0, fmt.Errorf("failed to count cart items: %w", err)
	}

	return count, nil
}

// Clear removes every cart item for the user
func (r *CartRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	query := `DELETE FROM cart_items WHERE user_id = $1`

	_, err := r.querier.Exec(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to clear cart", "user_id", userID.String(), "error", err)
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	return nil
}
