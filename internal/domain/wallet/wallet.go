package wallet

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrInvalidAmount = errors.New("amount must be positive")
)

// Wallet holds a user's spendable funds. Balances are stored in the
// ledger-internal minor unit and are never negative.
type Wallet struct {
	UserID              uuid.UUID `json:"user_id"`
	Balance             int64     `json:"balance"` // Stored in minor units
	Version             int       `json:"version"` // For optimistic locking
	NeedsReconciliation bool      `json:"needs_reconciliation"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// NewWallet creates an empty wallet for the given user
func NewWallet(userID uuid.UUID) *Wallet {
	return &Wallet{
		UserID:    userID,
		Balance:   0,
		Version:   1,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// Credit adds the specified amount to the wallet balance
func (w *Wallet) Credit(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	w.Balance += amount
	w.UpdatedAt = time.Now()
	w.Version++
	return nil
}

// Debit subtracts the specified amount from the wallet balance
func (w *Wallet) Debit(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	if w.Balance < amount {
		return ErrInsufficientFunds{Required: amount, Available: w.Balance}
	}

	w.Balance -= amount
	w.UpdatedAt = time.Now()
	w.Version++
	return nil
}

// CanDebit checks if the wallet has sufficient funds for a debit
func (w *Wallet) CanDebit(amount int64) bool {
	return w.Balance >= amount
}

// ErrInsufficientFunds indicates the wallet balance cannot cover the requested debit
type ErrInsufficientFunds struct {
	Required  int64
	Available int64
}

func (e ErrInsufficientFunds) Error() string {
	return fmt.Sprintf("insufficient funds: required %d, available %d", e.Required, e.Available)
}

// Is implements the errors.Is interface for ErrInsufficientFunds
func (e ErrInsufficientFunds) Is(target error) bool {
	_, ok := target.(ErrInsufficientFunds)
	return ok
}

// ErrWalletFrozen indicates the wallet is blocked pending manual reconciliation
// after a failed compensating credit
type ErrWalletFrozen struct {
	UserID uuid.UUID
}

func (e ErrWalletFrozen) Error() string {
	return "wallet frozen pending reconciliation: " + e.UserID.String()
}

// Is implements the errors.Is interface for ErrWalletFrozen
func (e ErrWalletFrozen) Is(target error) bool {
	t, ok := target.(ErrWalletFrozen)
	if !ok {
		return false
	}
	if t.UserID == uuid.Nil {
		return true
	}
	return e.UserID == t.UserID
}
