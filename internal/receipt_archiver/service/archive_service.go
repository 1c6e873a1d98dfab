package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/gamekey-storefront/internal/domain/outbox"
)

// ReceiptArchive stores receipts for read-optimized access
type ReceiptArchive interface {
	Upsert(ctx context.Context, receipt *outbox.Receipt) error
}

type archiveService struct {
	archive ReceiptArchive
	logger  *slog.Logger
}

// NewArchiveService creates the service that writes receipts to the archive
func NewArchiveService(logger *slog.Logger, archive ReceiptArchive) ArchiveService {
	return &archiveService{
		archive: archive,
		logger:  logger,
	}
}

// ArchiveReceipt validates and stores one receipt. Upserts keyed by checkout
// ID make redelivered receipts harmless.
func (s *archiveService) ArchiveReceipt(ctx context.Context, receipt *outbox.Receipt) error {
	if receipt.CheckoutID == uuid.Nil {
		return fmt.Errorf("receipt is missing a checkout id")
	}
	if receipt.UserID == uuid.Nil {
		return fmt.Errorf("receipt %s is missing a user id", receipt.CheckoutID)
	}

	if err := s.archive.Upsert(ctx, receipt); err != nil {
		return fmt.Errorf("failed to archive receipt %s: %w", receipt.CheckoutID, err)
	}

	s.logger.Info("Archived receipt",
		"checkout_id", receipt.CheckoutID.String(),
		"user_id", receipt.UserID.String(),
		"kind", string(receipt.Kind),
		"total", receipt.Total,
	)
	return nil
}
