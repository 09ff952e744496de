package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"partsflow/internal/features/checkout/service"
	orderdomain "partsflow/internal/features/orders/domain"
	orderports "partsflow/internal/features/orders/ports"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockPayments implements ports.PaymentProcessor for testing.
type mockPayments struct {
	ok  bool
	err error
}

func (m *mockPayments) ProcessPayment(_ context.Context, _ float64, _ string) (bool, error) {
	return m.ok, m.err
}

// memStore implements orderports.Store for testing.
type memStore struct {
	orders map[string]*orderdomain.Order
}

func newMemStore() *memStore {
	return &memStore{orders: make(map[string]*orderdomain.Order)}
}

func (s *memStore) Create(_ context.Context, order *orderdomain.Order) error {
	if _, exists := s.orders[order.ID]; exists {
		return orderports.ErrDuplicateID
	}
	s.orders[order.ID] = order
	return nil
}

func (s *memStore) Get(_ context.Context, id string) (*orderdomain.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, orderports.ErrNotFound
	}
	return order, nil
}

func (s *memStore) ListForParty(_ context.Context, _ string) ([]orderdomain.Order, error) {
	return nil, nil
}

func (s *memStore) ApplyTransition(_ context.Context, _ string, _ orderdomain.TrackingEvent, _ orderdomain.TransitionUpdates) (*orderdomain.Order, error) {
	return nil, orderports.ErrNotFound
}

func setupApp(payments *mockPayments, store *memStore) *fiber.App {
	svc := service.NewCheckoutService(payments, store, nil)
	h := NewCheckoutHandler(svc)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("requestid", "test-ray-id")
		return c.Next()
	})
	app.Post("/checkout", h.CompleteCheckout)
	return app
}

func checkoutBody() map[string]any {
	return map[string]any{
		"listing_id":     "LST-42",
		"title":          "BMW E46 alternator",
		"price":          45.0,
		"seller_id":      "USR-seller",
		"buyer_id":       "USR-buyer",
		"payment_method": "card",
		"locker": map[string]any{
			"id":      "OMN-0101",
			"name":    "Maxima Mindaugo",
			"city":    "Vilnius",
			"carrier": "Omniva",
		},
	}
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

// TestCompleteCheckout_Created verifies a confirmed payment returns the new
// order.
func TestCompleteCheckout_Created(t *testing.T) {
	store := newMemStore()
	app := setupApp(&mockPayments{ok: true}, store)

	resp := postJSON(t, app, "/checkout", checkoutBody())

	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var order orderdomain.Order
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&order))
	assert.NotEmpty(t, order.ID)
	assert.Equal(t, orderdomain.StatusAwaitingRegistration, order.Status)
	assert.Equal(t, "Vilnius", order.Destination.City)
	assert.Len(t, order.TrackingHistory, 1)
	assert.Len(t, store.orders, 1)
}

// TestCompleteCheckout_PaymentRequired verifies a decline maps to 402 with no
// order created.
func TestCompleteCheckout_PaymentRequired(t *testing.T) {
	store := newMemStore()
	app := setupApp(&mockPayments{ok: false}, store)

	resp := postJSON(t, app, "/checkout", checkoutBody())

	assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)

	var errResp ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
	assert.Equal(t, "Payment was not confirmed", errResp.Message)
	assert.Equal(t, "test-ray-id", errResp.RayID)
	assert.Empty(t, store.orders)
}

// TestCompleteCheckout_ValidationErrors verifies malformed bodies are rejected
// before any charge is attempted.
func TestCompleteCheckout_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(body map[string]any)
	}{
		{
			name:   "missing buyer",
			mutate: func(body map[string]any) { delete(body, "buyer_id") },
		},
		{
			name:   "zero price",
			mutate: func(body map[string]any) { body["price"] = 0 },
		},
		{
			name:   "missing locker city",
			mutate: func(body map[string]any) { delete(body["locker"].(map[string]any), "city") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			app := setupApp(&mockPayments{ok: true}, store)

			body := checkoutBody()
			tt.mutate(body)
			resp := postJSON(t, app, "/checkout", body)

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Empty(t, store.orders)
		})
	}
}

// TestCompleteCheckout_UnknownCarrier verifies a carrier outside the supported
// networks is a 400, not a created order.
func TestCompleteCheckout_UnknownCarrier(t *testing.T) {
	store := newMemStore()
	app := setupApp(&mockPayments{ok: true}, store)

	body := checkoutBody()
	body["locker"].(map[string]any)["carrier"] = "FedEx"
	resp := postJSON(t, app, "/checkout", body)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, store.orders)
}

// TestCompleteCheckout_GatewayFailure verifies a gateway outage maps to 402.
func TestCompleteCheckout_GatewayFailure(t *testing.T) {
	store := newMemStore()
	app := setupApp(&mockPayments{err: errors.New("connection refused")}, store)

	resp := postJSON(t, app, "/checkout", checkoutBody())

	assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
	assert.Empty(t, store.orders)
}
