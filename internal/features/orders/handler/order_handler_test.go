package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	catalog "lepatage-store/internal/features/catalog/domain"
	"lepatage-store/internal/features/orders/domain"
	"lepatage-store/internal/features/orders/ports"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderService is a mock implementation of ports.OrderService
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateOrder(ctx context.Context, input ports.CreateOrderInput) (*domain.Order, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderService) GetOrderByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderService) ListOrders(ctx context.Context, input ports.ListOrdersInput) ([]domain.Order, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderService) UpdateOrderStatus(ctx context.Context, input ports.UpdateStatusInput) (*domain.Order, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderService) ValidateAddress(address domain.Address) domain.AddressValidation {
	args := m.Called(address)
	return args.Get(0).(domain.AddressValidation)
}

func setupApp(service *MockOrderService) *fiber.App {
	app := fiber.New()
	app.Use(requestid.New(requestid.Config{Header: "X-Ray-ID"}))
	NewOrderHandler(service).Register(app, app.Group("/admin"))
	return app
}

func decodeError(t *testing.T, resp *http.Response) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func jsonRequest(method, target string, body interface{}) *http.Request {
	var reader io.Reader
	switch b := body.(type) {
	case string:
		reader = strings.NewReader(b)
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestOrderHandler_CreateOrder(t *testing.T) {
	input := ports.CreateOrderInput{
		Customer:        ports.CustomerInput{Email: "anna@example.com", FirstName: "Anna", LastName: "Ivanova", Phone: "+375291234567"},
		ShippingAddress: ports.AddressInput{Country: "Беларусь", City: "Минск", Address: "ул. Ленина 10"},
		Items:           []ports.LineItemInput{{ProductID: 1, Quantity: 2}},
	}

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockOrderService)
		app := setupApp(mockService)

		order := &domain.Order{ID: 1, OrderNumber: "LP-1-AAAAA", Total: decimal.NewFromInt(160)}
		mockService.On("CreateOrder", mock.Anything, input).Return(order, nil).Once()

		resp, err := app.Test(jsonRequest("POST", "/orders", input))
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "LP-1-AAAAA", body["order_number"])
		assert.Equal(t, "160", body["total"])
		mockService.AssertExpectations(t)
	})

	t.Run("InvalidBody", func(t *testing.T) {
		mockService := new(MockOrderService)
		app := setupApp(mockService)

		resp, err := app.Test(jsonRequest("POST", "/orders", "{broken"))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		mockService.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
	})

	t.Run("ValidationError", func(t *testing.T) {
		mockService := new(MockOrderService)
		app := setupApp(mockService)

		vErr := domain.NewValidationError("customer.email: must be a valid email address", "items: is required")
		mockService.On("CreateOrder", mock.Anything, mock.Anything).Return(nil, vErr).Once()

		req := jsonRequest("POST", "/orders", input)
		req.Header.Set("X-Ray-ID", "ray-123")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		body := decodeError(t, resp)
		assert.Equal(t, "Validation failed", body.Message)
		assert.Equal(t, "ray-123", body.RayID)
		assert.Equal(t, vErr.Problems, body.Details)
	})

	t.Run("ProductNotFound", func(t *testing.T) {
		mockService := new(MockOrderService)
		app := setupApp(mockService)

		err := fmt.Errorf("service: resolve product 9: %w", catalog.ErrProductNotFound)
		mockService.On("CreateOrder", mock.Anything, mock.Anything).Return(nil, err).Once()

		resp, testErr := app.Test(jsonRequest("POST", "/orders", input))
		require.NoError(t, testErr)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("InternalError", func(t *testing.T) {
		mockService := new(MockOrderService)
		app := setupApp(mockService)

		mockService.On("CreateOrder", mock.Anything, mock.Anything).Return(nil, errors.New("disk full")).Once()

		resp, err := app.Test(jsonRequest("POST", "/orders", input))
		require.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

		body := decodeError(t, resp)
		assert.Equal(t, "Internal Server Error", body.Message)
		assert.NotEmpty(t, body.RayID)
		assert.Empty(t, body.Details)
	})
}

func TestOrderHandler_GetOrder(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := new(MockOrderService)
		app := setupApp(mockService)

		order := &domain.Order{ID: 1, OrderNumber: "LP-1-AAAAA"}
		mockService.On("GetOrderByNumber", mock.Anything, "LP-1-AAAAA").Return(order, nil).Once()

		resp, err := app.Test(httptest.NewRequest("GET", "/orders/LP-1-AAAAA", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockService.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService := new(MockOrderService)
		app := setupApp(mockService)

		mockService.On("GetOrderByNumber", mock.Anything, "LP-0-NONE0").
			Return(nil, fmt.Errorf("service: failed to get order: %w", domain.ErrOrderNotFound)).Once()

		resp, err := app.Test(httptest.NewRequest("GET", "/orders/LP-0-NONE0", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "Order not found", decodeError(t, resp).Message)
	})
}

func TestOrderHandler_ValidateAddress(t *testing.T) {
	t.Run("Invalid", func(t *testing.T) {
		mockService := new(MockOrderService)
		app := setupApp(mockService)

		address := domain.Address{Country: "Germany", City: "Berlin", Address: "Hauptstr 1"}
		result := domain.AddressValidation{Valid: false, Errors: []string{domain.MsgUnsupportedCountry}}
		mockService.On("ValidateAddress", address).Return(result).Once()

		resp, err := app.Test(jsonRequest("POST", "/addresses/validate", address))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body domain.AddressValidation
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, result, body)
	})

	t.Run("ValidHasEmptyErrors", func(t *testing.T) {
		mockService := new(MockOrderService)
		app := setupApp(mockService)

		mockService.On("ValidateAddress", mock.Anything).Return(domain.AddressValidation{Valid: true, Errors: []string{}}).Once()

		resp, err := app.Test(jsonRequest("POST", "/addresses/validate", domain.Address{Country: "Беларусь", City: "Минск", Address: "ул. Ленина 10"}))
		require.NoError(t, err)

		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"valid":true,"errors":[]}`, string(raw))
	})
}

func TestOrderHandler_ListOrders(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := new(MockOrderService)
		app := setupApp(mockService)

		expected := ports.ListOrdersInput{Status: "shipped", Limit: 5, Offset: 10}
		mockService.On("ListOrders", mock.Anything, expected).Return([]domain.Order{{ID: 1}, {ID: 2}}, nil).Once()

		resp, err := app.Test(httptest.NewRequest("GET", "/admin/orders?status=shipped&limit=5&offset=10", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body []map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Len(t, body, 2)
		mockService.AssertExpectations(t)
	})

	t.Run("NonNumericLimit", func(t *testing.T) {
		mockService := new(MockOrderService)
		app := setupApp(mockService)

		resp, err := app.Test(httptest.NewRequest("GET", "/admin/orders?limit=ten", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		mockService.AssertNotCalled(t, "ListOrders", mock.Anything, mock.Anything)
	})

	t.Run("ValidationError", func(t *testing.T) {
		mockService := new(MockOrderService)
		app := setupApp(mockService)

		mockService.On("ListOrders", mock.Anything, ports.ListOrdersInput{Limit: 500}).
			Return(nil, domain.NewValidationError("limit: must be at most 100")).Once()

		resp, err := app.Test(httptest.NewRequest("GET", "/admin/orders?limit=500", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, []string{"limit: must be at most 100"}, decodeError(t, resp).Details)
	})
}

func TestOrderHandler_UpdateOrderStatus(t *testing.T) {
	paid := "paid"

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockOrderService)
		app := setupApp(mockService)

		expected := ports.UpdateStatusInput{OrderID: 7, Status: "confirmed", PaymentStatus: &paid}
		order := &domain.Order{ID: 7, Status: domain.StatusConfirmed, PaymentStatus: domain.PaymentPaid}
		mockService.On("UpdateOrderStatus", mock.Anything, expected).Return(order, nil).Once()

		resp, err := app.Test(jsonRequest("PATCH", "/admin/orders/7/status", `{"status":"confirmed","payment_status":"paid"}`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockService.AssertExpectations(t)
	})

	t.Run("BadID", func(t *testing.T) {
		mockService := new(MockOrderService)
		app := setupApp(mockService)

		resp, err := app.Test(jsonRequest("PATCH", "/admin/orders/abc/status", `{"status":"confirmed"}`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	errorCases := []struct {
		name   string
		err    error
		status int
	}{
		{"NotFound", fmt.Errorf("service: failed to load order: %w", domain.ErrOrderNotFound), http.StatusNotFound},
		{"InvalidTransition", &domain.InvalidTransitionError{Field: "status", From: "delivered", To: "pending"}, http.StatusConflict},
		{"ConcurrentModification", fmt.Errorf("service: failed to update order: %w", domain.ErrConcurrentModification), http.StatusConflict},
		{"UnknownStatus", domain.NewValidationError(`unknown status "lost"`), http.StatusBadRequest},
	}

	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			mockService := new(MockOrderService)
			app := setupApp(mockService)

			mockService.On("UpdateOrderStatus", mock.Anything, mock.Anything).Return(nil, tc.err).Once()

			resp, err := app.Test(jsonRequest("PATCH", "/admin/orders/7/status", `{"status":"pending","force":false}`))
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}
