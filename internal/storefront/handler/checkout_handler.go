package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gamekey-storefront/internal/domain/catalog"
	"github.com/gamekey-storefront/internal/domain/order"
	"github.com/gamekey-storefront/internal/domain/wallet"
	"github.com/gamekey-storefront/internal/storefront/middleware"
	"github.com/gamekey-storefront/internal/storefront/service"
)

// CheckoutHandler handles the checkout endpoint
type CheckoutHandler struct {
	checkoutService service.CheckoutService
	logger          *slog.Logger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(logger *slog.Logger, checkoutService service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		logger:          logger,
	}
}

// Checkout purchases every game in the caller's cart
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	orders, err := h.checkoutService.Checkout(c.Request.Context(), userID)
	if err != nil {
		h.respondCheckoutError(c, userID.String(), err)
		return
	}

	var total int64
	responses := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		total += o.PricePaid
		responses = append(responses, mapOrderToResponse(o))
	}

	RespondCreated(c, CheckoutResponse{Orders: responses, Total: total})
}

func (h *CheckoutHandler) respondCheckoutError(c *gin.Context, userID string, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyCart):
		RespondBadRequest(c, "Cart is empty")
	case errors.Is(err, wallet.ErrInsufficientFunds{}):
		RespondPaymentRequired(c, "Wallet balance cannot cover the cart total")
	case errors.Is(err, wallet.ErrWalletFrozen{}):
		RespondConflict(c, "Wallet is frozen pending reconciliation")
	case errors.Is(err, order.ErrAlreadyPurchased{}):
		RespondConflict(c, "Cart contains a game that is already owned")
	case errors.Is(err, catalog.ErrGameNotFound{}):
		RespondConflict(c, "Cart contains a game missing from the catalog")
	case errors.Is(err, service.ErrRollbackFailed{}):
		h.logger.Error("Checkout left wallet frozen", "user_id", userID, "error", err)
		RespondWithError(c, http.StatusInternalServerError, "RECONCILIATION_REQUIRED",
			"Checkout failed and the refund could not be applied; the wallet is frozen pending reconciliation")
	default:
		h.logger.Error("Checkout failed", "user_id", userID, "error", err)
		RespondInternalError(c)
	}
}

// mapOrderToResponse maps an order entity to its response DTO
func mapOrderToResponse(o *order.Order) OrderResponse {
	return OrderResponse{
		ID:          o.ID.String(),
		AppID:       o.AppID,
		Key:         o.Key,
		PricePaid:   o.PricePaid,
		PurchasedAt: o.PurchasedAt.Format(time.RFC3339),
	}
}
