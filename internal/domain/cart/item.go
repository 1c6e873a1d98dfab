package cart

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Item is a single game pending purchase. At most one item exists per
// (user, game) pair, and it disappears on removal or a successful checkout.
type Item struct {
	UserID  uuid.UUID `json:"user_id"`
	AppID   int64     `json:"app_id"`
	AddedAt time.Time `json:"added_at"`
}

// NewItem creates a cart item for the given user and game
func NewItem(userID uuid.UUID, appID int64) *Item {
	return &Item{
		UserID:  userID,
		AppID:   appID,
		AddedAt: time.Now(),
	}
}

// ErrAlreadyInCart indicates the game is already in the user's cart
type ErrAlreadyInCart struct {
	AppID int64
}

func (e ErrAlreadyInCart) Error() string {
	return "game already in cart: " + strconv.FormatInt(e.AppID, 10)
}

// Is implements the errors.Is interface for ErrAlreadyInCart
func (e ErrAlreadyInCart) Is(target error) bool {
	_, ok := target.(ErrAlreadyInCart)
	return ok
}

// ErrAlreadyOwned indicates the user has already purchased the game
type ErrAlreadyOwned struct {
	AppID int64
}

func (e ErrAlreadyOwned) Error() string {
	return "game already owned: " + strconv.FormatInt(e.AppID, 10)
}

// Is implements the errors.Is interface for ErrAlreadyOwned
func (e ErrAlreadyOwned) Is(target error) bool {
	_, ok := target.(ErrAlreadyOwned)
	return ok
}
