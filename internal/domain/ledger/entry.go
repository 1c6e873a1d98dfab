package ledger

import (
	"time"

	"github.com/google/uuid"
)

// EntryKind defines the balance-changing event categories
type EntryKind string

const (
	KindDeposit  EntryKind = "DEPOSIT"
	KindPurchase EntryKind = "PURCHASE"
)

// Entry is an immutable audit record of a single balance-changing event.
// Deposits carry a positive amount, purchases a negative one, so the sum of
// a user's entries always equals the wallet balance.
type Entry struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Amount      int64     `json:"amount"` // Signed, stored in minor units
	Kind        EntryKind `json:"kind"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewDepositEntry builds a positive deposit entry
func NewDepositEntry(userID uuid.UUID, amount int64, description string) *Entry {
	return &Entry{
		ID:          uuid.New(),
		UserID:      userID,
		Amount:      amount,
		Kind:        KindDeposit,
		Description: description,
		CreatedAt:   time.Now(),
	}
}

// NewPurchaseEntry builds a negative purchase entry for the given charge
func NewPurchaseEntry(userID uuid.UUID, charge int64, description string) *Entry {
	return &Entry{
		ID:          uuid.New(),
		UserID:      userID,
		Amount:      -charge,
		Kind:        KindPurchase,
		Description: description,
		CreatedAt:   time.Now(),
	}
}
