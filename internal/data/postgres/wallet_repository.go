// Package postgres provides PostgreSQL implementations of the domain repositories.
// It handles all database operations while maintaining transaction safety and
// proper error handling for the storefront's checkout and wallet engine.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gamekey-storefront/internal/domain/wallet"
	"github.com/gamekey-storefront/internal/platform/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WalletRepository implements the wallet.Repository interface for PostgreSQL
type WalletRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewWalletRepository creates a new PostgreSQL wallet repository.
// It expects db.Pool() to satisfy persistence.Querier.
func NewWalletRepository(logger *slog.Logger, db *persistence.PostgresDB) wallet.Repository {
	return &WalletRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction, allowing for atomic operations
// across multiple repository calls.
func (r *WalletRepository) WithTx(tx pgx.Tx) wallet.Repository {
	return &WalletRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// CreateIfAbsent inserts an empty wallet row for the user unless one exists
func (r *WalletRepository) CreateIfAbsent(ctx context.Context, userID uuid.UUID) error {
	query := `
		INSERT INTO wallets (user_id, balance, version, needs_reconciliation, created_at, updated_at)
		VALUES ($1, 0, 1, FALSE, NOW(), NOW())
		ON CONFLICT (user_id) DO NOTHING
	`

	_, err := r.querier.Exec(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to create wallet", "user_id", userID.String(), "error", err)
		return fmt.Errorf("failed to create wallet: %w", err)
	}

	return nil
}

// GetByUserID retrieves a wallet by its owning user
func (r *WalletRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*wallet.Wallet, error) {
	query := `
		SELECT user_id, balance, version, needs_reconciliation, created_at, updated_at
		FROM wallets
		WHERE user_id = $1
	`

	var w wallet.Wallet
	err := r.querier.QueryRow(ctx, query, userID).Scan(
		&w.UserID,
		&w.Balance,
		&w.Version,
		&w.NeedsReconciliation,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, wallet.ErrWalletNotFound{UserID: userID}
		}
		r.logger.Error("Failed to get wallet", "user_id", userID.String(), "error", err)
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	return &w, nil
}

// Update persists wallet changes using optimistic locking
func (r *WalletRepository) Update(ctx context.Context, w *wallet.Wallet) error {
	query := `
		UPDATE wallets
		SET balance = $1, version = $2, needs_reconciliation = $3, updated_at = $4
		WHERE user_id = $5 AND version = $6
	`

	result, err := r.querier.Exec(ctx, query,
		w.Balance,
		w.Version,
		w.NeedsReconciliation,
		w.UpdatedAt,
		w.UserID,
		w.Version-1, // Check previous version for optimistic locking
	)
	if err != nil {
		r.logger.Error("Failed to update wallet", "user_id", w.UserID.String(), "error", err)
		return fmt.Errorf("failed to update wallet: %w", err)
	}

	if result.RowsAffected() == 0 {
		return wallet.ErrConcurrentModification{UserID: w.UserID}
	}

	return nil
}

// LockForUpdate obtains a pessimistic lock on the wallet and returns its current state.
// This must be used within a transaction; it is what serializes concurrent balance
// mutations for the same user.
func (r *WalletRepository) LockForUpdate(ctx context.Context, userID uuid.UUID) (*wallet.Wallet, error) {
	query := `
		SELECT user_id, balance, version, needs_reconciliation, created_at, updated_at
		FROM wallets
		WHERE user_id = $1
		FOR UPDATE
	`

	var w wallet.Wallet
	err := r.querier.QueryRow(ctx, query, userID).Scan(
		&w.UserID,
		&w.Balance,
		&w.Version,
		&w.NeedsReconciliation,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, wallet.ErrWalletNotFound{UserID: userID}
		}
		r.logger.Error("Failed to lock wallet for update", "user_id", userID.String(), "error", err)
		return nil, fmt.Errorf("failed to lock wallet for update: %w", err)
	}

	return &w, nil
}

// MarkForReconciliation freezes the wallet after a failed compensating credit
func (r *WalletRepository) MarkForReconciliation(ctx context.Context, userID uuid.UUID) error {
	query := `
		UPDATE wallets
		SET needs_reconciliation = TRUE, updated_at = NOW()
		WHERE user_id = $1
	`

	result, err := r.querier.Exec(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to mark wallet for reconciliation", "user_id", userID.String(), "error", err)
		return fmt.Errorf("failed to mark wallet for reconciliation: %w", err)
	}

	if result.RowsAffected() == 0 {
		return wallet.ErrWalletNotFound{UserID: userID}
	}

	return nil
}
