package order

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Order records a completed purchase of a single game. Orders are written
// once and never updated or deleted; refunds are modeled as reversing ledger
// entries, not order mutations.
type Order struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	AppID       int64     `json:"app_id"`
	Key         string    `json:"key"`        // Redemption key, globally unique
	PricePaid   int64     `json:"price_paid"` // Price snapshot at purchase time, minor units
	PurchasedAt time.Time `json:"purchased_at"`
}

// NewOrder creates an order with the given redemption key and price snapshot
func NewOrder(userID uuid.UUID, appID int64, key string, pricePaid int64) *Order {
	return &Order{
		ID:          uuid.New(),
		UserID:      userID,
		AppID:       appID,
		Key:         key,
		PricePaid:   pricePaid,
		PurchasedAt: time.Now(),
	}
}

// ErrKeyCollision indicates the generated redemption key is already issued
type ErrKeyCollision struct {
	Key string
}

func (e ErrKeyCollision) Error() string {
	return "redemption key already issued: " + e.Key
}

// Is implements the errors.Is interface for ErrKeyCollision
func (e ErrKeyCollision) Is(target error) bool {
	_, ok := target.(ErrKeyCollision)
	return ok
}

// ErrAlreadyPurchased indicates an order already exists for the (user, game) pair
type ErrAlreadyPurchased struct {
	AppID int64
}

func (e ErrAlreadyPurchased) Error() string {
	return "game already purchased: " + strconv.FormatInt(e.AppID, 10)
}

// Is implements the errors.Is interface for ErrAlreadyPurchased
func (e ErrAlreadyPurchased) Is(target error) bool {
	_, ok := target.(ErrAlreadyPurchased)
	return ok
}
