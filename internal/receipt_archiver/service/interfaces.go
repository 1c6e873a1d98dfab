package service

import (
	"context"

	"github.com/gamekey-storefront/internal/domain/outbox"
)

// ArchiveService defines the interface for archiving published receipts
type ArchiveService interface {
	ArchiveReceipt(ctx context.Context, receipt *outbox.Receipt) error
}
