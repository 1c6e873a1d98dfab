package mongo

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gamekey-storefront/internal/domain/outbox"
)

const (
	// ReceiptCollectionName is the name of the receipt archive collection in MongoDB
	ReceiptCollectionName = "purchase_receipts"
)

// ReceiptRepository stores the read-optimized receipt archive in MongoDB.
// The archive is a projection of committed wallet events; the Postgres
// stores remain authoritative for balances, orders, and ledger entries.
type ReceiptRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewReceiptRepository creates a new MongoDB receipt archive repository
func NewReceiptRepository(logger *slog.Logger, db *mongo.Database) *ReceiptRepository {
	return &ReceiptRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert stores a receipt, replacing any prior document for the same
// checkout. Kafka delivers at-least-once, so archiving must be idempotent.
func (r *ReceiptRepository) Upsert(ctx context.Context, receipt *outbox.Receipt) error {
	collection := r.db.Collection(ReceiptCollectionName)

	filter := bson.M{"checkout_id": receipt.CheckoutID}
	opts := options.Replace().SetUpsert(true)

	_, err := collection.ReplaceOne(ctx, filter, receipt, opts)
	if err != nil {
		r.logger.Error("Failed to archive receipt",
			"checkout_id", receipt.CheckoutID.String(),
			"error", err)
		return fmt.Errorf("failed to archive receipt: %w", err)
	}

	return nil
}
