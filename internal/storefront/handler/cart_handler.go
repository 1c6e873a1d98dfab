package handler

import (
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gamekey-storefront/internal/domain/cart"
	"github.com/gamekey-storefront/internal/domain/catalog"
	"github.com/gamekey-storefront/internal/storefront/middleware"
	"github.com/gamekey-storefront/internal/storefront/service"
)

// CartHandler handles HTTP requests for cart operations
type CartHandler struct {
	cartService service.CartService
	logger      *slog.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(logger *slog.Logger, cartService service.CartService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		logger:      logger,
	}
}

// Add puts a game in the caller's cart
func (h *CartHandler) Add(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	err := h.cartService.Add(c.Request.Context(), userID, req.AppID)
	if err != nil {
		switch {
		case errors.Is(err, cart.ErrAlreadyInCart{}):
			RespondConflict(c, "Game is already in the cart")
		case errors.Is(err, cart.ErrAlreadyOwned{}):
			RespondConflict(c, "Game is already owned")
		case errors.Is(err, catalog.ErrGameNotFound{}):
			RespondNotFound(c, "Game not found")
		default:
			h.logger.Error("Failed to add cart item", "user_id", userID.String(), "app_id", req.AppID, "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondCreated(c, CartItemResponse{
		AppID:   req.AppID,
		AddedAt: time.Now().Format(time.RFC3339),
	})
}

// Remove deletes a game from the caller's cart. Removing an absent item
// succeeds, so Remove always returns 204.
func (h *CartHandler) Remove(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	appID, err := strconv.ParseInt(c.Param("app_id"), 10, 64)
	if err != nil || appID <= 0 {
		RespondBadRequest(c, "Invalid game ID")
		return
	}

	if err := h.cartService.Remove(c.Request.Context(), userID, appID); err != nil {
		h.logger.Error("Failed to remove cart item", "user_id", userID.String(), "app_id", appID, "error", err)
		RespondInternalError(c)
		return
	}

	RespondNoContent(c)
}

// Count returns the number of items in the caller's cart, for the cart badge
func (h *CartHandler) Count(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	count, err := h.cartService.Count(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to count cart items", "user_id", userID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, CartCountResponse{Count: count})
}

// List returns the caller's cart items with the payable total
func (h *CartHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	items, total, err := h.cartService.List(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, catalog.ErrGameNotFound{}) {
			h.logger.Error("Cart references a game missing from the catalog", "user_id", userID.String(), "error", err)
			RespondInternalError(c)
			return
		}
		h.logger.Error("Failed to list cart", "user_id", userID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]CartItemResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, CartItemResponse{
			AppID:   item.AppID,
			AddedAt: item.AddedAt.Format(time.RFC3339),
		})
	}

	RespondOK(c, CartResponse{Items: responses, Total: total})
}
