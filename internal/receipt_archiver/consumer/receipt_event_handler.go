package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/gamekey-storefront/internal/domain/outbox"
	"github.com/gamekey-storefront/internal/platform/messaging/producers"
	"github.com/gamekey-storefront/internal/receipt_archiver/service"
)

// ReceiptEventHandler handles incoming receipt messages from Kafka
type ReceiptEventHandler struct {
	archiveService service.ArchiveService
	producer       producers.DeadLetterPublisher
	logger         *slog.Logger
}

// NewReceiptEventHandler creates a new handler
func NewReceiptEventHandler(
	logger *slog.Logger,
	archiveService service.ArchiveService,
	producer producers.DeadLetterPublisher,
) *ReceiptEventHandler {
	return &ReceiptEventHandler{
		archiveService: archiveService,
		producer:       producer,
		logger:         logger,
	}
}

// HandleMessage processes Kafka messages
func (h *ReceiptEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var receipt outbox.Receipt
	if err := json.Unmarshal(value, &receipt); err != nil {
		unmarshalErrorMsg := "Failed to unmarshal receipt from Kafka message"
		h.logger.Error(unmarshalErrorMsg,
			"error", err,
			"message_key", string(key),
		)

		// Send to DLQ if available
		if h.producer != nil {
			dlqReason := fmt.Sprintf("%s: %s", unmarshalErrorMsg, err.Error())
			if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, dlqReason); dlqErr != nil {
				h.logger.Error("Failed to publish message to DLQ after unmarshal error",
					"dlq_error", dlqErr,
					"original_error", err,
					"message_key", string(key),
				)
				// Return original error if DLQ fails
			} else {
				h.logger.Info("Successfully published unprocessable message to DLQ", "message_key", string(key), "reason", dlqReason)
				// Message handled, commit offset
				return nil
			}
		}
		// Allow Kafka retries
		return fmt.Errorf("failed to unmarshal message value: %w", err)
	}

	h.logger.Info("Received receipt for archiving",
		"checkout_id", receipt.CheckoutID.String(),
		"user_id", receipt.UserID.String(),
		"kind", string(receipt.Kind),
		"total", receipt.Total,
	)

	if err := h.archiveService.ArchiveReceipt(ctx, &receipt); err != nil {
		h.logger.Error("Failed to archive receipt",
			"checkout_id", receipt.CheckoutID.String(),
			"error", err,
		)
		return fmt.Errorf("archiving receipt %s failed: %w", receipt.CheckoutID.String(), err)
	}

	h.logger.Info("Successfully archived receipt", "checkout_id", receipt.CheckoutID.String())
	return nil // Success, commit offset
}
