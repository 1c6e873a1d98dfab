package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gamekey-storefront/internal/domain/cart"
	"github.com/gamekey-storefront/internal/domain/catalog"
	"github.com/gamekey-storefront/internal/storefront/service"
)

type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) Add(ctx context.Context, userID uuid.UUID, appID int64) error {
	args := m.Called(ctx, userID, appID)
	return args.Error(0)
}

func (m *MockCartService) Remove(ctx context.Context, userID uuid.UUID, appID int64) error {
	args := m.Called(ctx, userID, appID)
	return args.Error(0)
}

func (m *MockCartService) List(ctx context.Context, userID uuid.UUID) ([]*cart.Item, int64, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*cart.Item), args.Get(1).(int64), args.Error(2)
}

func (m *MockCartService) Count(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func TestCartHandler_Add(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	userID := uuid.New()

	postAdd := func(handler *CartHandler, body string) *httptest.ResponseRecorder {
		router := setupTestRouter()
		router.POST("/cart/items", asUser(userID), handler.Add)

		req, _ := http.NewRequest(http.MethodPost, "/cart/items", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr
	}

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockCartService)
		handler := NewCartHandler(logger, mockService)

		mockService.On("Add", mock.Anything, userID, int64(730)).Return(nil)

		rr := postAdd(handler, `{"app_id": 730}`)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var topLevelResponse Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &topLevelResponse))
		require.NotNil(t, topLevelResponse.Data)

		var responseBody CartItemResponse
		dataBytes, _ := json.Marshal(topLevelResponse.Data)
		require.NoError(t, json.Unmarshal(dataBytes, &responseBody))
		assert.Equal(t, int64(730), responseBody.AppID)

		mockService.AssertExpectations(t)
	})

	t.Run("InvalidRequestBody", func(t *testing.T) {
		mockService := new(MockCartService)
		handler := NewCartHandler(logger, mockService)

		rr := postAdd(handler, `{"invalid`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("NonPositiveAppID", func(t *testing.T) {
		mockService := new(MockCartService)
		handler := NewCartHandler(logger, mockService)

		rr := postAdd(handler, `{"app_id": -5}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("AlreadyInCart", func(t *testing.T) {
		mockService := new(MockCartService)
		handler := NewCartHandler(logger, mockService)

		mockService.On("Add", mock.Anything, userID, int64(730)).Return(cart.ErrAlreadyInCart{AppID: 730})

		rr := postAdd(handler, `{"app_id": 730}`)

		assert.Equal(t, http.StatusConflict, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("AlreadyOwned", func(t *testing.T) {
		mockService := new(MockCartService)
		handler := NewCartHandler(logger, mockService)

		mockService.On("Add", mock.Anything, userID, int64(730)).Return(cart.ErrAlreadyOwned{AppID: 730})

		rr := postAdd(handler, `{"app_id": 730}`)

		assert.Equal(t, http.StatusConflict, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("GameNotFound", func(t *testing.T) {
		mockService := new(MockCartService)
		handler := NewCartHandler(logger, mockService)

		mockService.On("Add", mock.Anything, userID, int64(99999)).Return(catalog.ErrGameNotFound{AppID: 99999})

		rr := postAdd(handler, `{"app_id": 99999}`)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("ServiceError", func(t *testing.T) {
		mockService := new(MockCartService)
		handler := NewCartHandler(logger, mockService)

		mockService.On("Add", mock.Anything, userID, int64(730)).Return(errors.New("db down"))

		rr := postAdd(handler, `{"app_id": 730}`)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		mockService.AssertExpectations(t)
	})
}

func TestCartHandler_Remove(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	userID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockCartService)
		handler := NewCartHandler(logger, mockService)

		mockService.On("Remove", mock.Anything, userID, int64(730)).Return(nil)

		router := setupTestRouter()
		router.DELETE("/cart/items/:app_id", asUser(userID), handler.Remove)

		req, _ := http.NewRequest(http.MethodDelete, "/cart/items/730", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("InvalidAppID", func(t *testing.T) {
		mockService := new(MockCartService)
		handler := NewCartHandler(logger, mockService)

		router := setupTestRouter()
		router.DELETE("/cart/items/:app_id", asUser(userID), handler.Remove)

		req, _ := http.NewRequest(http.MethodDelete, "/cart/items/not-a-number", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertExpectations(t)
	})
}

func TestCartHandler_List(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	userID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockCartService)
		handler := NewCartHandler(logger, mockService)

		items := []*cart.Item{
			{UserID: userID, AppID: 730, AddedAt: time.Now()},
			{UserID: userID, AppID: 570, AddedAt: time.Now()},
		}
		mockService.On("List", mock.Anything, userID).Return(items, int64(4498), nil)

		router := setupTestRouter()
		router.GET("/cart", asUser(userID), handler.List)

		req, _ := http.NewRequest(http.MethodGet, "/cart", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var topLevelResponse Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &topLevelResponse))
		require.NotNil(t, topLevelResponse.Data)

		var responseBody CartResponse
		dataBytes, _ := json.Marshal(topLevelResponse.Data)
		require.NoError(t, json.Unmarshal(dataBytes, &responseBody))

		assert.Equal(t, int64(4498), responseBody.Total)
		require.Len(t, responseBody.Items, 2)
		assert.Equal(t, int64(730), responseBody.Items[0].AppID)

		mockService.AssertExpectations(t)
	})

	t.Run("EmptyCart", func(t *testing.T) {
		mockService := new(MockCartService)
		handler := NewCartHandler(logger, mockService)

		mockService.On("List", mock.Anything, userID).Return([]*cart.Item{}, int64(0), nil)

		router := setupTestRouter()
		router.GET("/cart", asUser(userID), handler.List)

		req, _ := http.NewRequest(http.MethodGet, "/cart", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var topLevelResponse Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &topLevelResponse))

		var responseBody CartResponse
		dataBytes, _ := json.Marshal(topLevelResponse.Data)
		require.NoError(t, json.Unmarshal(dataBytes, &responseBody))
		assert.Empty(t, responseBody.Items)
		assert.Equal(t, int64(0), responseBody.Total)

		mockService.AssertExpectations(t)
	})

	t.Run("ServiceError", func(t *testing.T) {
		mockService := new(MockCartService)
		handler := NewCartHandler(logger, mockService)

		mockService.On("List", mock.Anything, userID).Return(nil, int64(0), errors.New("db down"))

		router := setupTestRouter()
		router.GET("/cart", asUser(userID), handler.List)

		req, _ := http.NewRequest(http.MethodGet, "/cart", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		mockService.AssertExpectations(t)
	})
}

func TestCartHandler_Count(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	userID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockCartService)
		handler := NewCartHandler(logger, mockService)

		mockService.On("Count", mock.Anything, userID).Return(int64(3), nil)

		router := setupTestRouter()
		router.GET("/cart/count", asUser(userID), handler.Count)

		req, _ := http.NewRequest(http.MethodGet, "/cart/count", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var topLevelResponse Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &topLevelResponse))

		var responseBody CartCountResponse
		dataBytes, _ := json.Marshal(topLevelResponse.Data)
		require.NoError(t, json.Unmarshal(dataBytes, &responseBody))
		assert.Equal(t, int64(3), responseBody.Count)

		mockService.AssertExpectations(t)
	})

	t.Run("ServiceError", func(t *testing.T) {
		mockService := new(MockCartService)
		handler := NewCartHandler(logger, mockService)

		mockService.On("Count", mock.Anything, userID).Return(int64(0), errors.New("db down"))

		router := setupTestRouter()
		router.GET("/cart/count", asUser(userID), handler.Count)

		req, _ := http.NewRequest(http.MethodGet, "/cart/count", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		mockService.AssertExpectations(t)
	})
}

var _ service.CartService = (*MockCartService)(nil)
