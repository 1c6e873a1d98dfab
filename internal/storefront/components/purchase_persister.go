package components

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gamekey-storefront/internal/domain/order"
	"github.com/gamekey-storefront/internal/domain/outbox"
	"github.com/gamekey-storefront/internal/keygen"
	"github.com/gamekey-storefront/internal/platform/persistence"
	"github.com/gamekey-storefront/internal/storefront/service"
)

// PurchasePersister writes a checkout's orders and its purchase receipt in a
// single transaction. Redemption keys are random, so an insert can hit the
// global key constraint; the persister swaps in a fresh key for the colliding
// order and retries the whole transaction, up to maxKeyAttempts per order.
type PurchasePersister struct {
	db             *persistence.PostgresDB
	orderRepo      order.Repository
	outboxRepo     outbox.Repository
	keyGenerator   keygen.Generator
	maxKeyAttempts int
	logger         *slog.Logger
}

// NewPurchasePersister creates a purchase persister backed by PostgreSQL
func NewPurchasePersister(
	logger *slog.Logger,
	db *persistence.PostgresDB,
	orderRepo order.Repository,
	outboxRepo outbox.Repository,
	keyGenerator keygen.Generator,
	maxKeyAttempts int,
) *PurchasePersister {
	return &PurchasePersister{
		db:             db,
		orderRepo:      orderRepo,
		outboxRepo:     outboxRepo,
		keyGenerator:   keyGenerator,
		maxKeyAttempts: maxKeyAttempts,
		logger:         logger,
	}
}

// PersistPurchase commits the orders and the receipt outbox message
// atomically. Either every order row and the receipt exist, or none do.
func (p *PurchasePersister) PersistPurchase(ctx context.Context, checkoutID uuid.UUID, orders []*order.Order, total int64, entryID uuid.UUID) error {
	attemptsPerOrder := make(map[uuid.UUID]int, len(orders))

	for {
		err := p.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
			txOrders := p.orderRepo.WithTx(tx)
			for _, o := range orders {
				if err := txOrders.Create(ctx, o); err != nil {
					return err
				}
			}

			message, err := outbox.NewMessage(p.buildReceipt(checkoutID, orders, total, entryID))
			if err != nil {
				return err
			}
			return p.outboxRepo.WithTx(tx).Create(ctx, message)
		})
		if err == nil {
			return nil
		}

		var collision order.ErrKeyCollision
		if !errors.As(err, &collision) {
			return err
		}

		collided := findOrderByKey(orders, collision.Key)
		if collided == nil {
			// Collision against a key outside this batch's orders cannot happen;
			// treat it as a hard failure rather than loop forever.
			return err
		}

		attemptsPerOrder[collided.ID]++
		if attemptsPerOrder[collided.ID] >= p.maxKeyAttempts {
			p.logger.Error("Key generation exhausted",
				"checkout_id", checkoutID.String(),
				"app_id", collided.AppID,
				"attempts", p.maxKeyAttempts)
			return service.ErrKeyCollisionExhausted{AppID: collided.AppID, Attempts: p.maxKeyAttempts}
		}

		key, genErr := p.keyGenerator.Generate()
		if genErr != nil {
			return genErr
		}
		collided.Key = key

		p.logger.Warn("Redemption key collided, retrying with a fresh key",
			"checkout_id", checkoutID.String(),
			"app_id", collided.AppID,
			"attempt", attemptsPerOrder[collided.ID])
	}
}

func (p *PurchasePersister) buildReceipt(checkoutID uuid.UUID, orders []*order.Order, total int64, entryID uuid.UUID) *outbox.Receipt {
	lines := make([]outbox.ReceiptLine, 0, len(orders))
	for _, o := range orders {
		lines = append(lines, outbox.ReceiptLine{
			AppID:     o.AppID,
			Key:       o.Key,
			PricePaid: o.PricePaid,
		})
	}

	return &outbox.Receipt{
		CheckoutID:    checkoutID,
		UserID:        orders[0].UserID,
		Kind:          outbox.ReceiptKindPurchase,
		Total:         total,
		LedgerEntryID: entryID,
		Lines:         lines,
		CreatedAt:     orders[0].PurchasedAt,
	}
}

func findOrderByKey(orders []*order.Order, key string) *order.Order {
	for _, o := range orders {
		if o.Key == key {
			return o
		}
	}
	return nil
}
