package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/gamekey-storefront/internal/domain/outbox"
)

// WorkerPoolArchiveService implements the ArchiveService interface on top of
// a bounded worker pool
type WorkerPoolArchiveService struct {
	baseService ArchiveService
	pool        *ants.Pool
	logger      *slog.Logger
	// Use a mutex to protect access to the results map
	mu      sync.Mutex
	results map[string]chan error
}

type WorkerPoolConfig struct {
	Size int
}

func NewWorkerPoolArchiveService(
	baseService ArchiveService,
	config WorkerPoolConfig,
	logger *slog.Logger,
) (*WorkerPoolArchiveService, error) {
	// Create a new worker pool with the specified size
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}

	return &WorkerPoolArchiveService{
		baseService: baseService,
		pool:        pool,
		logger:      logger,
		results:     make(map[string]chan error),
	}, nil
}

// ArchiveReceipt submits a receipt to the worker pool for archiving
func (s *WorkerPoolArchiveService) ArchiveReceipt(ctx context.Context, receipt *outbox.Receipt) error {
	s.logger.Info("Submitting receipt to worker pool",
		"checkout_id", receipt.CheckoutID.String(),
		"user_id", receipt.UserID.String(),
	)

	// Create a channel to receive the result of the archive write
	resultChan := make(chan error, 1)

	// Store the result channel in the result map
	checkoutID := receipt.CheckoutID.String()
	s.mu.Lock()
	s.results[checkoutID] = resultChan
	s.mu.Unlock()

	// Create a copy of the receipt to avoid data races
	receiptCopy := *receipt

	// Submit the task to the worker pool
	err := s.pool.Submit(func() {
		// Archive the receipt using the base service
		err := s.baseService.ArchiveReceipt(ctx, &receiptCopy)

		// Send the result to the channel
		resultChan <- err

		// Remove the result channel from the map
		s.mu.Lock()
		delete(s.results, checkoutID)
		close(resultChan)
		s.mu.Unlock()
	})

	if err != nil {
		// If we couldn't submit the task to the pool, remove the result channel
		s.mu.Lock()
		delete(s.results, checkoutID)
		close(resultChan)
		s.mu.Unlock()

		s.logger.Error("Failed to submit receipt to worker pool",
			"checkout_id", receipt.CheckoutID.String(),
			"error", err,
		)
		return err
	}

	// Wait for the result from the worker
	return <-resultChan
}

// Shutdown gracefully shuts down the worker pool.
func (s *WorkerPoolArchiveService) Shutdown() {
	s.logger.Info("Shutting down worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

// Running returns the number of running workers in the pool.
func (s *WorkerPoolArchiveService) Running() int {
	return s.pool.Running()
}

// Capacity returns the capacity of the worker pool.
func (s *WorkerPoolArchiveService) Capacity() int {
	return s.pool.Cap()
}
