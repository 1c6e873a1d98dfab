package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/gamekey-storefront/internal/domain/outbox"
)

// MockArchiveService for testing
type MockArchiveService struct {
	mock.Mock
}

func (m *MockArchiveService) ArchiveReceipt(ctx context.Context, receipt *outbox.Receipt) error {
	args := m.Called(ctx, receipt)
	return args.Error(0)
}

// MockDeadLetterPublisher for testing
type MockDeadLetterPublisher struct {
	mock.Mock
}

func (m *MockDeadLetterPublisher) PublishToDLQ(ctx context.Context, key string, value []byte, reason string) error {
	args := m.Called(ctx, key, value, reason)
	return args.Error(0)
}

func (m *MockDeadLetterPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

func TestHandleMessage(t *testing.T) {
	logger := slog.Default()

	validReceipt := &outbox.Receipt{
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

	validJSON, err := json.Marshal(validReceipt)
	assert.NoError(t, err)

	tests := []struct {
		name          string
		key           []byte
		value         []byte
		setupMocks    func(archive *MockArchiveService, dlq *MockDeadLetterPublisher)
		expectedError error
	}{
		{
			name:  "successful archiving",
			key:   []byte("test-key"),
			value: validJSON,
			setupMocks: func(archive *MockArchiveService, dlq *MockDeadLetterPublisher) {
				archive.On("ArchiveReceipt", mock.Anything, mock.MatchedBy(func(r *outbox.Receipt) bool {
					return r.CheckoutID == validReceipt.CheckoutID
				})).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:  "archiving error",
			key:   []byte("test-key"),
			value: validJSON,
			setupMocks: func(archive *MockArchiveService, dlq *MockDeadLetterPublisher) {
				archive.On("ArchiveReceipt", mock.Anything, mock.Anything).Return(errors.New("archiving error"))
			},
			expectedError: errors.New("archiving receipt"),
		},
		{
			name:  "unmarshal error with successful DLQ publish",
			key:   []byte("test-key"),
			value: []byte("invalid json"),
			setupMocks: func(archive *MockArchiveService, dlq *MockDeadLetterPublisher) {
				dlq.On("PublishToDLQ", mock.Anything, "test-key", []byte("invalid json"), mock.Anything).Return(nil)
			},
			expectedError: nil, // No error because message was successfully sent to DLQ
		},
		{
			name:  "unmarshal error with DLQ publish failure",
			key:   []byte("test-key"),
			value: []byte("invalid json"),
			setupMocks: func(archive *MockArchiveService, dlq *MockDeadLetterPublisher) {
				dlq.On("PublishToDLQ", mock.Anything, "test-key", []byte("invalid json"), mock.Anything).Return(errors.New("dlq error"))
			},
			expectedError: errors.New("failed to unmarshal"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockArchiveService := &MockArchiveService{}
			mockDLQPublisher := &MockDeadLetterPublisher{}
			mockDLQPublisher.On("Close").Return(nil).Maybe()

			handler := NewReceiptEventHandler(logger, mockArchiveService, mockDLQPublisher)

			tt.setupMocks(mockArchiveService, mockDLQPublisher)
			ctx := context.Background()

			err := handler.HandleMessage(ctx, tt.key, tt.value)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError.Error())
			} else {
				assert.NoError(t, err)
			}

			mockArchiveService.AssertExpectations(t)
			mockDLQPublisher.AssertExpectations(t)
		})
	}
}
