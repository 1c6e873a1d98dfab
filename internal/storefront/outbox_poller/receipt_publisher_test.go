package outbox_poller

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gamekey-storefront/internal/domain/outbox"
)

// MockOutboxRepo for testing
type MockOutboxRepo struct {
	mock.Mock
}

func (m *MockOutboxRepo) Create(ctx context.Context, message *outbox.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockOutboxRepo) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepo) UpdateStatus(ctx context.Context, id int64, status outbox.Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockOutboxRepo) IncrementAttempts(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepo) GetByCheckoutID(ctx context.Context, checkoutID uuid.UUID) (*outbox.Message, error) {
	args := m.Called(ctx, checkoutID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepo) WithTx(tx pgx.Tx) outbox.Repository {
	args := m.Called(tx)
	return args.Get(0).(outbox.Repository)
}

// MockMessagePublisher for testing
type MockMessagePublisher struct {
	mock.Mock
}

func (m *MockMessagePublisher) Publish(ctx context.Context, key string, value interface{}) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockMessagePublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

func pendingMessage(t *testing.T, id int64) *outbox.Message {
	t.Helper()

	receipt := &outbox.Receipt{
		CheckoutID:    uuid.New(),
		UserID:        uuid.New(),
		Kind:          outbox.ReceiptKindPurchase,
		Total:         1499,
		LedgerEntryID: uuid.New(),
		Lines: []outbox.ReceiptLine{
			{AppID: 730, Key: "8351-0274-9962-1408", PricePaid: 1499},
		},
		CreatedAt: time.Now(),
	}

	msg, err := outbox.NewMessage(receipt)
	require.NoError(t, err)
	msg.ID = id
	return msg
}

func TestReceiptPublisher_PublishReceipt(t *testing.T) {
	logger := slog.Default()
	ctx := context.Background()

	t.Run("successful publish", func(t *testing.T) {
		mockOutboxRepo := &MockOutboxRepo{}
		mockProducer := &MockMessagePublisher{}
		publisher := NewReceiptPublisher(mockOutboxRepo, mockProducer, logger)

		msg := pendingMessage(t, 1)

		mockProducer.On("Publish", mock.Anything, msg.UserID.String(), mock.MatchedBy(func(r *outbox.Receipt) bool {
			return r.CheckoutID == msg.CheckoutID
		})).Return(nil).Once()
		mockOutboxRepo.On("UpdateStatus", mock.Anything, int64(1), outbox.StatusProcessed).Return(nil).Once()

		err := publisher.PublishReceipt(ctx, msg)
		assert.NoError(t, err)
		mockOutboxRepo.AssertExpectations(t)
		mockProducer.AssertExpectations(t)
	})

	t.Run("corrupt payload is failed immediately", func(t *testing.T) {
		mockOutboxRepo := &MockOutboxRepo{}
		mockProducer := &MockMessagePublisher{}
		publisher := NewReceiptPublisher(mockOutboxRepo, mockProducer, logger)

		msg := &outbox.Message{
			ID:         2,
			CheckoutID: uuid.New(),
			UserID:     uuid.New(),
			Payload:    []byte("invalid json"),
			Status:     outbox.StatusPending,
		}

		mockOutboxRepo.On("UpdateStatus", mock.Anything, int64(2), outbox.StatusFailedToPublish).Return(nil).Once()

		err := publisher.PublishReceipt(ctx, msg)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unmarshal payload")
		mockProducer.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
		mockOutboxRepo.AssertExpectations(t)
	})

	t.Run("broker error leaves message pending", func(t *testing.T) {
		mockOutboxRepo := &MockOutboxRepo{}
		mockProducer := &MockMessagePublisher{}
		publisher := NewReceiptPublisher(mockOutboxRepo, mockProducer, logger)

		msg := pendingMessage(t, 3)

		mockProducer.On("Publish", mock.Anything, msg.UserID.String(), mock.Anything).
			Return(errors.New("broker unavailable")).Once()

		err := publisher.PublishReceipt(ctx, msg)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to publish receipt")
		mockOutboxRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
		mockProducer.AssertExpectations(t)
	})

	t.Run("error marking processed", func(t *testing.T) {
		mockOutboxRepo := &MockOutboxRepo{}
		mockProducer := &MockMessagePublisher{}
		publisher := NewReceiptPublisher(mockOutboxRepo, mockProducer, logger)

		msg := pendingMessage(t, 4)

		mockProducer.On("Publish", mock.Anything, msg.UserID.String(), mock.Anything).Return(nil).Once()
		mockOutboxRepo.On("UpdateStatus", mock.Anything, int64(4), outbox.StatusProcessed).
			Return(errors.New("db error")).Once()

		err := publisher.PublishReceipt(ctx, msg)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to mark outbox")
		mockOutboxRepo.AssertExpectations(t)
	})
}
