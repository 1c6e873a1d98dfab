package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/gamekey-storefront/internal/domain/cart"
	"github.com/gamekey-storefront/internal/domain/ledger"
	"github.com/gamekey-storefront/internal/domain/order"
)

// WalletLedger performs atomic balance mutations. Every mutation appends a
// ledger entry in the same database transaction as the balance change, and
// mutations for one user are serialized by a row lock.
type WalletLedger interface {
	// Balance returns the user's current balance; a missing wallet reads as 0
	Balance(ctx context.Context, userID uuid.UUID) (int64, error)

	// Debit withdraws amount, failing with wallet.ErrInsufficientFunds when
	// the balance cannot cover it and wallet.ErrWalletFrozen while the wallet
	// awaits reconciliation
	Debit(ctx context.Context, userID uuid.UUID, amount int64, description string) (*ledger.Entry, error)

	// Credit deposits amount, rejecting amount <= 0 with wallet.ErrInvalidAmount
	Credit(ctx context.Context, userID uuid.UUID, amount int64, description string) (*ledger.Entry, error)

	// MarkForReconciliation freezes the wallet after a failed compensating credit
	MarkForReconciliation(ctx context.Context, userID uuid.UUID) error
}

// PurchasePersister writes a checkout's orders and its receipt outbox message
// in one database transaction, regenerating redemption keys on the rare
// collision with an already-issued key.
type PurchasePersister interface {
	PersistPurchase(ctx context.Context, checkoutID uuid.UUID, orders []*order.Order, total int64, entryID uuid.UUID) error
}

// WalletService exposes the wallet surface consumed by request handlers
type WalletService interface {
	// Deposit adds funds to the user's wallet, creating it on first use
	Deposit(ctx context.Context, userID uuid.UUID, amount int64) (*ledger.Entry, int64, error)

	// Balance returns the user's current balance
	Balance(ctx context.Context, userID uuid.UUID) (int64, error)

	// Transactions returns the paginated ledger history, newest first,
	// along with the total entry count
	Transactions(ctx context.Context, userID uuid.UUID, page, perPage int) ([]*ledger.Entry, int64, error)
}

// CartService exposes cart operations with re-purchase prevention
type CartService interface {
	// Add puts a game in the cart, failing with cart.ErrAlreadyOwned when the
	// user purchased it before and cart.ErrAlreadyInCart on a duplicate add
	Add(ctx context.Context, userID uuid.UUID, appID int64) error

	// Remove is idempotent; removing an absent item succeeds
	Remove(ctx context.Context, userID uuid.UUID, appID int64) error

	// List returns the cart items newest first and the payable total
	List(ctx context.Context, userID uuid.UUID) ([]*cart.Item, int64, error)

	// Count returns the number of items in the cart
	Count(ctx context.Context, userID uuid.UUID) (int64, error)
}

// OrderService exposes the read-only order history
type OrderService interface {
	// List returns paginated orders with their keys, most recent first,
	// along with the total order count
	List(ctx context.Context, userID uuid.UUID, page, perPage int) ([]*order.Order, int64, error)
}

// CheckoutService converts a cart into paid orders as one logical transaction
type CheckoutService interface {
	// Checkout debits the wallet for the cart total, mints one keyed order per
	// cart item, and clears the cart. Failures before the debit leave no trace;
	// failures after it are compensated with a reversing credit before the
	// error is returned.
	Checkout(ctx context.Context, userID uuid.UUID) ([]*order.Order, error)
}
