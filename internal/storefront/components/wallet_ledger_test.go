package components

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gamekey-storefront/internal/domain/ledger"
	"github.com/gamekey-storefront/internal/domain/wallet"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) CreateIfAbsent(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockWalletRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*wallet.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Wallet), args.Error(1)
}

func (m *MockWalletRepository) Update(ctx context.Context, w *wallet.Wallet) error {
	args := m.Called(ctx, w)
	return args.Error(0)
}

func (m *MockWalletRepository) LockForUpdate(ctx context.Context, userID uuid.UUID) (*wallet.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Wallet), args.Error(1)
}

func (m *MockWalletRepository) MarkForReconciliation(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockWalletRepository) WithTx(tx pgx.Tx) wallet.Repository {
	return m
}

type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Create(ctx context.Context, entry *ledger.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerRepository) GetByID(ctx context.Context, id uuid.UUID) (*ledger.Entry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Entry), args.Error(1)
}

func (m *MockLedgerRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*ledger.Entry, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Entry), args.Error(1)
}

func (m *MockLedgerRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerRepository) SumByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerRepository) WithTx(tx pgx.Tx) ledger.Repository {
	return m
}

func TestWalletLedger_MarkForReconciliation(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("FreezesAndReportsDiscrepancy", func(t *testing.T) {
		walletRepo := new(MockWalletRepository)
		entryRepo := new(MockLedgerRepository)
		wl := NewWalletLedger(newTestLogger(), nil, walletRepo, entryRepo, nil)

		walletRepo.On("MarkForReconciliation", ctx, userID).Return(nil)
		walletRepo.On("GetByUserID", ctx, userID).Return(&wallet.Wallet{UserID: userID, Balance: 4498}, nil)
		entryRepo.On("SumByUser", ctx, userID).Return(int64(2999), nil)

		err := wl.MarkForReconciliation(ctx, userID)

		require.NoError(t, err)
		walletRepo.AssertExpectations(t)
		entryRepo.AssertExpectations(t)
	})

	t.Run("FreezeFailurePropagates", func(t *testing.T) {
		walletRepo := new(MockWalletRepository)
		entryRepo := new(MockLedgerRepository)
		wl := NewWalletLedger(newTestLogger(), nil, walletRepo, entryRepo, nil)

		freezeErr := errors.New("wallets table unavailable")
		walletRepo.On("MarkForReconciliation", ctx, userID).Return(freezeErr)

		err := wl.MarkForReconciliation(ctx, userID)

		assert.ErrorIs(t, err, freezeErr)
		entryRepo.AssertNotCalled(t, "SumByUser", mock.Anything, mock.Anything)
		walletRepo.AssertExpectations(t)
	})

	t.Run("SumFailureDoesNotUndoFreeze", func(t *testing.T) {
		walletRepo := new(MockWalletRepository)
		entryRepo := new(MockLedgerRepository)
		wl := NewWalletLedger(newTestLogger(), nil, walletRepo, entryRepo, nil)

		walletRepo.On("MarkForReconciliation", ctx, userID).Return(nil)
		walletRepo.On("GetByUserID", ctx, userID).Return(&wallet.Wallet{UserID: userID, Balance: 4498}, nil)
		entryRepo.On("SumByUser", ctx, userID).Return(int64(0), errors.New("ledger read failed"))

		err := wl.MarkForReconciliation(ctx, userID)

		require.NoError(t, err)
		walletRepo.AssertExpectations(t)
		entryRepo.AssertExpectations(t)
	})
}

var _ wallet.Repository = (*MockWalletRepository)(nil)
var _ ledger.Repository = (*MockLedgerRepository)(nil)
