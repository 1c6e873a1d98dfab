package catalog

import (
	"context"
	"strconv"
	"time"
)

// Game is a catalog row. The checkout engine only reads prices from it;
// catalog management lives elsewhere.
type Game struct {
	AppID         int64     `json:"app_id"`
	Title         string    `json:"title"`
	ListPrice     int64     `json:"list_price"`     // Minor units
	DiscountPrice int64     `json:"discount_price"` // Minor units, 0 when no discount runs
	CreatedAt     time.Time `json:"created_at"`
}

// PayablePrice returns the amount a buyer is charged right now:
// the discount price when a discount runs, the list price otherwise.
func (g *Game) PayablePrice() int64 {
	if g.DiscountPrice > 0 {
		return g.DiscountPrice
	}
	return g.ListPrice
}

// PriceResolver resolves the current payable price of catalog items.
// Implementations are read-only collaborators of the checkout engine.
type PriceResolver interface {
	// PricesOf returns the payable price for every requested game, failing
	// with ErrGameNotFound when any id is missing from the catalog
	PricesOf(ctx context.Context, appIDs []int64) (map[int64]int64, error)
}

// ErrGameNotFound indicates a game id absent from the catalog
type ErrGameNotFound struct {
	AppID int64
}

func (e ErrGameNotFound) Error() string {
	return "game not found in catalog: " + strconv.FormatInt(e.AppID, 10)
}

// Is implements the errors.Is interface for ErrGameNotFound
func (e ErrGameNotFound) Is(target error) bool {
	t, ok := target.(ErrGameNotFound)
	if !ok {
		return false
	}
	if t.AppID == 0 {
		return true
	}
	return e.AppID == t.AppID
}
