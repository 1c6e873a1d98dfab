package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/gamekey-storefront/internal/domain/ledger"
)

type walletService struct {
	walletLedger WalletLedger
	entryRepo    ledger.Repository
	logger       *slog.Logger
}

// NewWalletService creates the wallet service used by the HTTP handlers
func NewWalletService(logger *slog.Logger, walletLedger WalletLedger, entryRepo ledger.Repository) WalletService {
	return &walletService{
		walletLedger: walletLedger,
		entryRepo:    entryRepo,
		logger:       logger,
	}
}

// Deposit credits the user's wallet and returns the new balance
func (s *walletService) Deposit(ctx context.Context, userID uuid.UUID, amount int64) (*ledger.Entry, int64, error) {
	entry, err := s.walletLedger.Credit(ctx, userID, amount, "wallet deposit")
	if err != nil {
		return nil, 0, err
	}

	balance, err := s.walletLedger.Balance(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	return entry, balance, nil
}

// Balance returns the user's current balance
func (s *walletService) Balance(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.walletLedger.Balance(ctx, userID)
}

// Transactions returns the user's ledger history, newest first
func (s *walletService) Transactions(ctx context.Context, userID uuid.UUID, page, perPage int) ([]*ledger.Entry, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	offset := (page - 1) * perPage

	entries, err := s.entryRepo.ListByUser(ctx, userID, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.entryRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
