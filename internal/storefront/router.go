package storefront

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gamekey-storefront/internal/config"
	"github.com/gamekey-storefront/internal/storefront/handler"
	"github.com/gamekey-storefront/internal/storefront/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	cfg *config.Config,
	r *gin.Engine,
	walletHandler *handler.WalletHandler,
	cartHandler *handler.CartHandler,
	orderHandler *handler.OrderHandler,
	checkoutHandler *handler.CheckoutHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// API v1 endpoints, all scoped to the authenticated caller
	v1 := r.Group("/api/v1")
	v1.Use(middleware.Authenticated(logger, cfg.Auth.JWTSecret))
	{
		// Wallet operations
		wallet := v1.Group("/wallet")
		{
			wallet.POST("/deposits", walletHandler.Deposit)
			wallet.GET("/balance", walletHandler.Balance)
			wallet.GET("/transactions", walletHandler.Transactions)
		}

		// Cart operations
		cart := v1.Group("/cart")
		{
			cart.POST("/items", cartHandler.Add)
			cart.DELETE("/items/:app_id", cartHandler.Remove)
			cart.GET("", cartHandler.List)
			cart.GET("/count", cartHandler.Count)
		}

		// Checkout and order history
		v1.POST("/checkout", checkoutHandler.Checkout)
		v1.GET("/orders", orderHandler.List)
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
