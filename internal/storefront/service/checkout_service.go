package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gamekey-storefront/internal/config"
	"github.com/gamekey-storefront/internal/domain/cart"
	"github.com/gamekey-storefront/internal/domain/catalog"
	"github.com/gamekey-storefront/internal/domain/order"
	"github.com/gamekey-storefront/internal/keygen"
)

type checkoutService struct {
	cartRepo      cart.Repository
	orderRepo     order.Repository
	priceResolver catalog.PriceResolver
	walletLedger  WalletLedger
	persister     PurchasePersister
	keyGenerator  keygen.Generator
	cfg           *config.CheckoutConfig
	logger        *slog.Logger
}

// NewCheckoutService creates the checkout coordinator
func NewCheckoutService(
	logger *slog.Logger,
	cfg *config.CheckoutConfig,
	cartRepo cart.Repository,
	orderRepo order.Repository,
	priceResolver catalog.PriceResolver,
	walletLedger WalletLedger,
	persister PurchasePersister,
	keyGenerator keygen.Generator,
) CheckoutService {
	return &checkoutService{
		cartRepo:      cartRepo,
		orderRepo:     orderRepo,
		priceResolver: priceResolver,
		walletLedger:  walletLedger,
		persister:     persister,
		keyGenerator:  keyGenerator,
		cfg:           cfg,
		logger:        logger,
	}
}

// Checkout turns the user's cart into paid orders.
//
// The flow has one point of no return: the debit. Everything before it
// (ownership checks, price resolution, key generation) fails cleanly with no
// state change. Once the debit commits, a persistence failure triggers a
// compensating credit so the wallet never silently loses funds; if the credit
// itself keeps failing, the wallet is frozen for manual reconciliation.
func (s *checkoutService) Checkout(ctx context.Context, userID uuid.UUID) ([]*order.Order, error) {
	items, err := s.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	// Cheap pre-debit ownership check. The orders table's (user, game)
	// constraint still backstops the race with a concurrent checkout.
	for _, item := range items {
		owned, err := s.orderRepo.Exists(ctx, userID, item.AppID)
		if err != nil {
			return nil, err
		}
		if owned {
			return nil, order.ErrAlreadyPurchased{AppID: item.AppID}
		}
	}

	appIDs := make([]int64, 0, len(items))
	for _, item := range items {
		appIDs = append(appIDs, item.AppID)
	}

	prices, err := s.priceResolver.PricesOf(ctx, appIDs)
	if err != nil {
		return nil, err
	}

	var total int64
	orders := make([]*order.Order, 0, len(items))
	for _, item := range items {
		key, err := s.keyGenerator.Generate()
		if err != nil {
			return nil, err
		}
		price := prices[item.AppID]
		total += price
		orders = append(orders, order.NewOrder(userID, item.AppID, key, price))
	}

	checkoutID := uuid.New()

	// A cart of only free games charges nothing: the debit is skipped, the
	// receipt carries no ledger entry, and there is nothing to compensate.
	var entryID uuid.UUID
	if total > 0 {
		entry, err := s.walletLedger.Debit(ctx, userID, total, fmt.Sprintf("checkout %s", checkoutID))
		if err != nil {
			return nil, err
		}
		entryID = entry.ID
	}

	if err := s.persister.PersistPurchase(ctx, checkoutID, orders, total, entryID); err != nil {
		if total == 0 {
			s.logger.Error("Failed to persist free checkout",
				"checkout_id", checkoutID.String(),
				"user_id", userID.String(),
				"error", err)
			return nil, err
		}
		s.logger.Error("Failed to persist purchase, reversing debit",
			"checkout_id", checkoutID.String(),
			"user_id", userID.String(),
			"amount", total,
			"error", err)
		return nil, s.rollbackDebit(userID, checkoutID, total, err)
	}

	s.clearCart(ctx, userID, checkoutID)

	s.logger.Info("Checkout completed",
		"checkout_id", checkoutID.String(),
		"user_id", userID.String(),
		"orders", len(orders),
		"total", total)

	return orders, nil
}

// rollbackDebit credits the charged amount back with exponential backoff. It
// runs on a detached context so a cancelled request cannot abandon the
// reversal halfway. When every attempt fails the wallet is frozen and the
// caller gets ErrRollbackFailed instead of the original persistence error.
func (s *checkoutService) rollbackDebit(userID, checkoutID uuid.UUID, amount int64, persistErr error) error {
	ctx := context.Background()
	description := fmt.Sprintf("reversal of checkout %s", checkoutID)

	backoff := s.cfg.RollbackBackoff
	for attempt := 1; attempt <= s.cfg.RollbackAttempts; attempt++ {
		if _, err := s.walletLedger.Credit(ctx, userID, amount, description); err != nil {
			s.logger.Error("Compensating credit failed",
				"checkout_id", checkoutID.String(),
				"user_id", userID.String(),
				"attempt", attempt,
				"error", err)
			time.Sleep(backoff)
			backoff *= 2
			continue
		}

		s.logger.Info("Debit reversed after failed checkout",
			"checkout_id", checkoutID.String(),
			"user_id", userID.String(),
			"amount", amount)
		return fmt.Errorf("checkout %s failed, debit reversed: %w", checkoutID, persistErr)
	}

	if err := s.walletLedger.MarkForReconciliation(ctx, userID); err != nil {
		s.logger.Error("Failed to freeze wallet after exhausted rollback",
			"user_id", userID.String(),
			"error", err)
	}

	return ErrRollbackFailed{UserID: userID, Amount: amount}
}

// clearCart empties the cart after a successful checkout. The purchase is
// already committed, so a stubborn cart is logged and left behind rather than
// failing the checkout; re-purchase prevention keeps the stale items harmless.
func (s *checkoutService) clearCart(ctx context.Context, userID, checkoutID uuid.UUID) {
	for attempt := 1; attempt <= s.cfg.CartClearAttempts; attempt++ {
		if err := s.cartRepo.Clear(ctx, userID); err != nil {
			s.logger.Warn("Failed to clear cart after checkout",
				"checkout_id", checkoutID.String(),
				"user_id", userID.String(),
				"attempt", attempt,
				"error", err)
			continue
		}
		return
	}

	s.logger.Warn("Cart left uncleared after checkout",
		"checkout_id", checkoutID.String(),
		"user_id", userID.String())
}
