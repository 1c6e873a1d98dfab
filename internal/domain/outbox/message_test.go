package outbox

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReceipt() *Receipt {
	return &Receipt{
		CheckoutID:    uuid.New(),
		UserID:        uuid.New(),
		Kind:          ReceiptKindPurchase,
		Total:         2998,
		LedgerEntryID: uuid.New(),
		Lines: []ReceiptLine{
			{AppID: 730, Key: "8351-0274-9962-1408", PricePaid: 1499},
			{AppID: 570, Key: "2207-5583-1964-0341", PricePaid: 1499},
		},
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
}

func TestNewMessage(t *testing.T) {
	receipt := sampleReceipt()

	msg, err := NewMessage(receipt)
	require.NoError(t, err)

	assert.Equal(t, receipt.CheckoutID, msg.CheckoutID)
	assert.Equal(t, receipt.UserID, msg.UserID)
	assert.Equal(t, StatusPending, msg.Status)
	assert.Equal(t, 0, msg.Attempts)
	assert.Nil(t, msg.LastAttemptAt)
	assert.False(t, msg.CreatedAt.IsZero())
	assert.NotEmpty(t, msg.Payload)
}

func TestMessage_GetReceipt(t *testing.T) {
	receipt := sampleReceipt()

	msg, err := NewMessage(receipt)
	require.NoError(t, err)

	extracted, err := msg.GetReceipt()
	require.NoError(t, err)
	assert.Equal(t, receipt, extracted)
}

func TestMessage_GetReceipt_InvalidPayload(t *testing.T) {
	msg := &Message{Payload: []byte("not json")}

	receipt, err := msg.GetReceipt()
	assert.Error(t, err)
	assert.Nil(t, receipt)
}

func TestMessage_StatusTransitions(t *testing.T) {
	t.Run("mark as processed", func(t *testing.T) {
		msg, err := NewMessage(sampleReceipt())
		require.NoError(t, err)

		msg.MarkAsProcessed()

		assert.Equal(t, StatusProcessed, msg.Status)
		require.NotNil(t, msg.LastAttemptAt)
	})

	t.Run("mark as failed", func(t *testing.T) {
		msg, err := NewMessage(sampleReceipt())
		require.NoError(t, err)

		msg.MarkAsFailed()

		assert.Equal(t, StatusFailedToPublish, msg.Status)
		require.NotNil(t, msg.LastAttemptAt)
	})

	t.Run("increment attempts", func(t *testing.T) {
		msg, err := NewMessage(sampleReceipt())
		require.NoError(t, err)

		msg.IncrementAttempts()
		msg.IncrementAttempts()

		assert.Equal(t, 2, msg.Attempts)
		require.NotNil(t, msg.LastAttemptAt)
	})
}
