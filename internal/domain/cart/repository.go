package cart

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines cart item persistence operations.
// Ownership checks against the order history belong to the service layer;
// the repository only enforces the one-item-per-(user, game) constraint.
type Repository interface {
	// Add inserts a cart item, failing with ErrAlreadyInCart on a duplicate
	Add(ctx context.Context, item *Item) error

	// Remove deletes a cart item; removing an absent item is a no-op success
	Remove(ctx context.Context, userID uuid.UUID, appID int64) error

	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Item, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)

	// Clear removes every item for the user; used by a successful checkout
	Clear(ctx context.Context, userID uuid.UUID) error
	WithTx(tx pgx.Tx) Repository
}
