package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/gamekey-storefront/internal/domain/order"
)

type orderService struct {
	orderRepo order.Repository
	logger    *slog.Logger
}

// NewOrderService creates the order history service used by the HTTP handlers
func NewOrderService(logger *slog.Logger, orderRepo order.Repository) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		logger:    logger,
	}
}

// List returns the user's orders, most recent first
func (s *orderService) List(ctx context.Context, userID uuid.UUID, page, perPage int) ([]*order.Order, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	offset := (page - 1) * perPage

	orders, err := s.orderRepo.ListByUser(ctx, userID, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.orderRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}
