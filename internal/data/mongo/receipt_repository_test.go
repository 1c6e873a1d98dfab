package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/gamekey-storefront/internal/domain/outbox"
)

type MockReceiptRepository struct {
	mock.Mock
}

func (m *MockReceiptRepository) Upsert(ctx context.Context, receipt *outbox.Receipt) error {
	args := m.Called(ctx, receipt)
	return args.Error(0)
}

func sampleReceipt(checkoutID, userID uuid.UUID) *outbox.Receipt {
	return &outbox.Receipt{
		CheckoutID:    checkoutID,
		UserID:        userID,
		Kind:          outbox.ReceiptKindPurchase,
		Total:         4498,
		LedgerEntryID: uuid.New(),
		Lines: []outbox.ReceiptLine{
			{AppID: 730, Key: "8351-0274-9962-1408", PricePaid: 1499},
			{AppID: 570, Key: "2207-5583-1964-0341", PricePaid: 2999},
		},
		CreatedAt: time.Now(),
	}
}

func TestNewReceiptRepository(t *testing.T) {
	db := &mongo.Database{}
	logger := slog.Default()

	repo := NewReceiptRepository(logger, db)

	assert.NotNil(t, repo)
	assert.IsType(t, &ReceiptRepository{}, repo)
}

func TestReceiptRepository_Upsert(t *testing.T) {
	mockRepo := &MockReceiptRepository{}

	checkoutID := uuid.New()
	userID := uuid.New()
	receipt := sampleReceipt(checkoutID, userID)

	tests := []struct {
		name          string
		setupMocks    func()
		expectedError error
	}{
		{
			name: "successful upsert",
			setupMocks: func() {
				mockRepo.On("Upsert", mock.Anything, receipt).Return(nil)
			},
			expectedError: nil,
		},
		{
			name: "database error",
			setupMocks: func() {
				mockRepo.On("Upsert", mock.Anything, receipt).Return(errors.New("db error"))
			},
			expectedError: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo = &MockReceiptRepository{}
			tt.setupMocks()

			ctx := context.Background()
			err := mockRepo.Upsert(ctx, receipt)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError.Error())
			} else {
				assert.NoError(t, err)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}
