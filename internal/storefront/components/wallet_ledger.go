// Package components implements the transactional building blocks the
// checkout services are assembled from.
package components

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gamekey-storefront/internal/domain/ledger"
	"github.com/gamekey-storefront/internal/domain/outbox"
	"github.com/gamekey-storefront/internal/domain/wallet"
	"github.com/gamekey-storefront/internal/platform/persistence"
)

// WalletLedger mutates wallet balances atomically with their audit entries.
// Per-user serialization comes from the SELECT ... FOR UPDATE row lock: two
// concurrent mutations for one user queue behind each other, while mutations
// for different users proceed in parallel.
type WalletLedger struct {
	db         *persistence.PostgresDB
	walletRepo wallet.Repository
	entryRepo  ledger.Repository
	outboxRepo outbox.Repository
	logger     *slog.Logger
}

// NewWalletLedger creates a wallet ledger backed by PostgreSQL
func NewWalletLedger(
	logger *slog.Logger,
	db *persistence.PostgresDB,
	walletRepo wallet.Repository,
	entryRepo ledger.Repository,
	outboxRepo outbox.Repository,
) *WalletLedger {
	return &WalletLedger{
		db:         db,
		walletRepo: walletRepo,
		entryRepo:  entryRepo,
		outboxRepo: outboxRepo,
		logger:     logger,
	}
}

// Balance returns the user's current balance. A wallet that was never
// credited reads as zero.
func (l *WalletLedger) Balance(ctx context.Context, userID uuid.UUID) (int64, error) {
	w, err := l.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, wallet.ErrWalletNotFound{}) {
			return 0, nil
		}
		return 0, err
	}
	return w.Balance, nil
}

// Debit withdraws amount from the wallet and records a purchase entry in the
// same transaction. A wallet pending reconciliation rejects the debit with
// ErrWalletFrozen; a missing wallet reads as a zero balance.
func (l *WalletLedger) Debit(ctx context.Context, userID uuid.UUID, amount int64, description string) (*ledger.Entry, error) {
	if amount <= 0 {
		return nil, wallet.ErrInvalidAmount
	}

	var entry *ledger.Entry
	err := l.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		w, err := l.walletRepo.WithTx(tx).LockForUpdate(ctx, userID)
		if err != nil {
			if errors.Is(err, wallet.ErrWalletNotFound{}) {
				return wallet.ErrInsufficientFunds{Required: amount, Available: 0}
			}
			return err
		}

		if w.NeedsReconciliation {
			return wallet.ErrWalletFrozen{UserID: userID}
		}

		if err := w.Debit(amount); err != nil {
			return err
		}

		if err := l.walletRepo.WithTx(tx).Update(ctx, w); err != nil {
			return err
		}

		entry = ledger.NewPurchaseEntry(userID, amount, description)
		return l.entryRepo.WithTx(tx).Create(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("Debited wallet",
		"user_id", userID.String(),
		"amount", amount,
		"entry_id", entry.ID.String())

	return entry, nil
}

// Credit deposits amount into the wallet, creating it on first use, and
// records a deposit entry plus a deposit receipt in the same transaction.
// Credits are accepted even on a frozen wallet so compensations and operator
// reconciliation can still restore funds.
func (l *WalletLedger) Credit(ctx context.Context, userID uuid.UUID, amount int64, description string) (*ledger.Entry, error) {
	if amount <= 0 {
		return nil, wallet.ErrInvalidAmount
	}

	var entry *ledger.Entry
	err := l.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		txWallets := l.walletRepo.WithTx(tx)

		if err := txWallets.CreateIfAbsent(ctx, userID); err != nil {
			return err
		}

		w, err := txWallets.LockForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		if err := w.Credit(amount); err != nil {
			return err
		}

		if err := txWallets.Update(ctx, w); err != nil {
			return err
		}

		entry = ledger.NewDepositEntry(userID, amount, description)
		if err := l.entryRepo.WithTx(tx).Create(ctx, entry); err != nil {
			return err
		}

		receipt := &outbox.Receipt{
			CheckoutID:    uuid.New(),
			UserID:        userID,
			Kind:          outbox.ReceiptKindDeposit,
			Total:         amount,
			LedgerEntryID: entry.ID,
			CreatedAt:     entry.CreatedAt,
		}
		message, err := outbox.NewMessage(receipt)
		if err != nil {
			return err
		}
		return l.outboxRepo.WithTx(tx).Create(ctx, message)
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("Credited wallet",
		"user_id", userID.String(),
		"amount", amount,
		"entry_id", entry.ID.String())

	return entry, nil
}

// MarkForReconciliation freezes the wallet so no further checkouts run until
// an operator restores the balance. It logs the recorded balance against the
// ledger sum to give the operator the discrepancy up front; a failure reading
// either number degrades the log but never unfreezes the wallet.
func (l *WalletLedger) MarkForReconciliation(ctx context.Context, userID uuid.UUID) error {
	if err := l.walletRepo.MarkForReconciliation(ctx, userID); err != nil {
		return err
	}

	w, walletErr := l.walletRepo.GetByUserID(ctx, userID)
	ledgerSum, sumErr := l.entryRepo.SumByUser(ctx, userID)
	if walletErr != nil || sumErr != nil {
		l.logger.Warn("Wallet marked for reconciliation",
			"user_id", userID.String(),
			"wallet_read_error", walletErr,
			"ledger_sum_error", sumErr)
		return nil
	}

	l.logger.Warn("Wallet marked for reconciliation",
		"user_id", userID.String(),
		"recorded_balance", w.Balance,
		"ledger_sum", ledgerSum,
		"discrepancy", w.Balance-ledgerSum)
	return nil
}
