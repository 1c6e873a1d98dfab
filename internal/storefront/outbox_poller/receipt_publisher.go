package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gamekey-storefront/internal/domain/outbox"
	"github.com/gamekey-storefront/internal/platform/messaging/producers"
)

// ReceiptPublisher publishes outbox messages to the receipt topic
type ReceiptPublisher interface {
	PublishReceipt(ctx context.Context, message *outbox.Message) error
}

// ReceiptPublisherImpl implements ReceiptPublisher
type ReceiptPublisherImpl struct {
	outboxRepo outbox.Repository
	producer   producers.MessagePublisher
	logger     *slog.Logger
}

// NewReceiptPublisher creates a new publisher
func NewReceiptPublisher(
	outboxRepo outbox.Repository,
	producer producers.MessagePublisher,
	logger *slog.Logger,
) ReceiptPublisher {
	return &ReceiptPublisherImpl{
		outboxRepo: outboxRepo,
		producer:   producer,
		logger:     logger,
	}
}

// PublishReceipt pushes one outbox message onto the receipt topic and marks it
// PROCESSED. A payload that no longer unmarshals is marked FAILED_TO_PUBLISH
// immediately; retrying cannot fix it.
func (p *ReceiptPublisherImpl) PublishReceipt(ctx context.Context, message *outbox.Message) error {
	receipt, err := message.GetReceipt()
	if err != nil {
		p.logger.Error("Failed to unmarshal receipt from outbox payload",
			"outbox_id", message.ID, "checkout_id", message.CheckoutID.String(), "error", err,
		)
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, outbox.StatusFailedToPublish); updateErr != nil {
			p.logger.Error("Also failed to update outbox status to FAILED_TO_PUBLISH after unmarshal error", "outbox_id", message.ID, "update_error", updateErr)
		}
		return fmt.Errorf("unmarshal payload for outbox %d failed: %w", message.ID, err)
	}

	// Key by user so one user's receipts stay ordered on a single partition
	if err := p.producer.Publish(ctx, receipt.UserID.String(), receipt); err != nil {
		return fmt.Errorf("failed to publish receipt for checkout %s: %w", receipt.CheckoutID, err)
	}

	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, outbox.StatusProcessed); err != nil {
		p.logger.Error("Failed to update outbox message status to PROCESSED",
			"outbox_id", message.ID, "checkout_id", message.CheckoutID.String(), "error", err,
		)
		return fmt.Errorf("receipt for %s published, but failed to mark outbox %d as PROCESSED: %w", receipt.CheckoutID, message.ID, err)
	}

	p.logger.Info("Outbox message successfully published and marked as PROCESSED",
		"outbox_id", message.ID, "checkout_id", message.CheckoutID.String())
	return nil
}
