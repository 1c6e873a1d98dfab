package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository manages write-once order persistence. It exposes no update or
// delete operations and enforces both the global key uniqueness and the
// one-purchase-per-(user, game) invariant at the insertion boundary.
type Repository interface {
	// Create inserts a single order, mapping uniqueness violations to
	// ErrKeyCollision or ErrAlreadyPurchased
	Create(ctx context.Context, o *Order) error

	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Order, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)

	// Exists reports whether the user already ordered the game
	Exists(ctx context.Context, userID uuid.UUID, appID int64) (bool, error)
	WithTx(tx pgx.Tx) Repository
}
