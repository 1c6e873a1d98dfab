package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Status defines message publishing states
type Status string

const (
	StatusPending         Status = "PENDING"
	StatusProcessed       Status = "PROCESSED"
	StatusFailedToPublish Status = "FAILED_TO_PUBLISH"
)

// ReceiptKind distinguishes the wallet event a receipt documents
type ReceiptKind string

const (
	ReceiptKindDeposit  ReceiptKind = "DEPOSIT"
	ReceiptKindPurchase ReceiptKind = "PURCHASE"
)

// ReceiptLine is one purchased game inside a purchase receipt
type ReceiptLine struct {
	AppID     int64  `json:"app_id" bson:"app_id"`
	Key       string `json:"key" bson:"key"`
	PricePaid int64  `json:"price_paid" bson:"price_paid"`
}

// Receipt is the event payload carried through the outbox and onto the
// receipt topic. It documents a committed wallet event; the Postgres stores
// remain the source of truth.
type Receipt struct {
	CheckoutID    uuid.UUID     `json:"checkout_id" bson:"checkout_id"`
	UserID        uuid.UUID     `json:"user_id" bson:"user_id"`
	Kind          ReceiptKind   `json:"kind" bson:"kind"`
	Total         int64         `json:"total" bson:"total"`
	LedgerEntryID uuid.UUID     `json:"ledger_entry_id" bson:"ledger_entry_id"`
	Lines         []ReceiptLine `json:"lines,omitempty" bson:"lines,omitempty"`
	CreatedAt     time.Time     `json:"created_at" bson:"created_at"`
}

// Message stores a receipt for reliable publishing to the receipt topic
type Message struct {
	ID            int64           `json:"id"`
	CheckoutID    uuid.UUID       `json:"checkout_id"`
	UserID        uuid.UUID       `json:"user_id"`
	Payload       json.RawMessage `json:"payload"`
	Status        Status          `json:"status"`
	Attempts      int             `json:"attempts"`
	CreatedAt     time.Time       `json:"created_at"`
	LastAttemptAt *time.Time      `json:"last_attempt_at,omitempty"`
}

// NewMessage wraps a receipt into a pending outbox message
func NewMessage(receipt *Receipt) (*Message, error) {
	payload, err := json.Marshal(receipt)
	if err != nil {
		return nil, err
	}

	return &Message{
		CheckoutID: receipt.CheckoutID,
		UserID:     receipt.UserID,
		Payload:    payload,
		Status:     StatusPending,
		Attempts:   0,
		CreatedAt:  time.Now(),
	}, nil
}

func (m *Message) IncrementAttempts() {
	m.Attempts++
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsProcessed() {
	m.Status = StatusProcessed
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsFailed() {
	m.Status = StatusFailedToPublish
	now := time.Now()
	m.LastAttemptAt = &now
}

// GetReceipt extracts the receipt from the payload
func (m *Message) GetReceipt() (*Receipt, error) {
	var receipt Receipt
	if err := json.Unmarshal(m.Payload, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}
