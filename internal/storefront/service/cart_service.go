package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/gamekey-storefront/internal/domain/cart"
	"github.com/gamekey-storefront/internal/domain/catalog"
	"github.com/gamekey-storefront/internal/domain/order"
)

type cartService struct {
	cartRepo      cart.Repository
	orderRepo     order.Repository
	priceResolver catalog.PriceResolver
	logger        *slog.Logger
}

// NewCartService creates the cart service used by the HTTP handlers
func NewCartService(
	logger *slog.Logger,
	cartRepo cart.Repository,
	orderRepo order.Repository,
	priceResolver catalog.PriceResolver,
) CartService {
	return &cartService{
		cartRepo:      cartRepo,
		orderRepo:     orderRepo,
		priceResolver: priceResolver,
		logger:        logger,
	}
}

// Add puts a game in the user's cart. Games the user already owns are
// rejected before touching the cart, and the game must exist in the catalog.
func (s *cartService) Add(ctx context.Context, userID uuid.UUID, appID int64) error {
	owned, err := s.orderRepo.Exists(ctx, userID, appID)
	if err != nil {
		return err
	}
	if owned {
		return cart.ErrAlreadyOwned{AppID: appID}
	}

	if _, err := s.priceResolver.PricesOf(ctx, []int64{appID}); err != nil {
		return err
	}

	return s.cartRepo.Add(ctx, cart.NewItem(userID, appID))
}

// Remove deletes a game from the cart. Removing an absent item succeeds.
func (s *cartService) Remove(ctx context.Context, userID uuid.UUID, appID int64) error {
	return s.cartRepo.Remove(ctx, userID, appID)
}

// List returns the cart items newest first along with the payable total at
// current catalog prices
func (s *cartService) List(ctx context.Context, userID uuid.UUID) ([]*cart.Item, int64, error) {
	items, err := s.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	if len(items) == 0 {
		return items, 0, nil
	}

	appIDs := make([]int64, 0, len(items))
	for _, item := range items {
		appIDs = append(appIDs, item.AppID)
	}

	prices, err := s.priceResolver.PricesOf(ctx, appIDs)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	for _, item := range items {
		total += prices[item.AppID]
	}

	return items, total, nil
}

// Count returns the number of items in the user's cart
func (s *cartService) Count(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.cartRepo.CountByUser(ctx, userID)
}
