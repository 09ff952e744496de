package service

import (
	"context"
	"errors"
	"testing"
	"time"

	lockers "partsflow/internal/features/lockers/domain"
	orderdomain "partsflow/internal/features/orders/domain"
	orderports "partsflow/internal/features/orders/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockPayments implements ports.PaymentProcessor for testing.
type mockPayments struct {
	ok    bool
	err   error
	calls int
}

func (m *mockPayments) ProcessPayment(_ context.Context, _ float64, _ string) (bool, error) {
	m.calls++
	return m.ok, m.err
}

// memStore implements orderports.Store for testing. Only Create matters here.
type memStore struct {
	orders    map[string]*orderdomain.Order
	createErr error
}

func newMemStore() *memStore {
	return &memStore{orders: make(map[string]*orderdomain.Order)}
}

func (s *memStore) Create(_ context.Context, order *orderdomain.Order) error {
	if s.createErr != nil {
		return s.createErr
	}
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

// mockPublisher implements orderports.EventPublisher for testing.
type mockPublisher struct {
	events []orderdomain.TrackingEvent
	err    error
}

func (m *mockPublisher) PublishTrackingEvent(_ context.Context, _ string, event orderdomain.TrackingEvent) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}

func validInput() CheckoutInput {
	return CheckoutInput{
		Listing: orderdomain.ListingSnapshot{
			ListingID: "LST-42",
			Title:     "BMW E46 alternator",
			Price:     45.00,
			SellerID:  "USR-seller",
		},
		BuyerID: "USR-buyer",
		Destination: orderdomain.Destination{
			LockerID: "OMN-0101",
			Name:     "Maxima Mindaugo",
			City:     "Vilnius",
			Carrier:  lockers.CarrierOmniva,
		},
		Amount:        45.00,
		PaymentMethod: "card",
	}
}

// TestCompleteCheckout_Success verifies the payment-then-order sequence and the
// shape of the seeded order.
func TestCompleteCheckout_Success(t *testing.T) {
	payments := &mockPayments{ok: true}
	store := newMemStore()
	publisher := &mockPublisher{}
	service := NewCheckoutService(payments, store, publisher)
	service.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

	order, err := service.CompleteCheckout(context.Background(), validInput())

	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, 1, payments.calls)
	assert.Equal(t, orderdomain.StatusAwaitingRegistration, order.Status)
	assert.Len(t, order.TrackingHistory, 1)
	assert.Equal(t, order.Status, order.LastEvent().Status)
	assert.Len(t, order.DropoffCode, 6)
	assert.Equal(t, "card", order.PaymentMethod)

	// The order is persisted, not just returned.
	stored, err := store.Get(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, stored.ID)

	// The confirmation event reaches downstream consumers.
	require.Len(t, publisher.events, 1)
	assert.Equal(t, orderdomain.StatusAwaitingRegistration, publisher.events[0].Status)
}

// TestCompleteCheckout_PaymentDeclined verifies no order exists after a decline.
func TestCompleteCheckout_PaymentDeclined(t *testing.T) {
	payments := &mockPayments{ok: false}
	store := newMemStore()
	service := NewCheckoutService(payments, store, &mockPublisher{})

	order, err := service.CompleteCheckout(context.Background(), validInput())

	assert.Nil(t, order)
	assert.ErrorIs(t, err, ErrPaymentNotConfirmed)
	assert.Empty(t, store.orders)
}

// TestCompleteCheckout_GatewayError verifies a gateway failure maps to the same
// caller-facing error as a decline.
func TestCompleteCheckout_GatewayError(t *testing.T) {
	payments := &mockPayments{err: errors.New("connection refused")}
	store := newMemStore()
	service := NewCheckoutService(payments, store, &mockPublisher{})

	order, err := service.CompleteCheckout(context.Background(), validInput())

	assert.Nil(t, order)
	assert.ErrorIs(t, err, ErrPaymentNotConfirmed)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Empty(t, store.orders)
}

// TestCompleteCheckout_InvalidListing verifies the charge is not attempted
// against a broken snapshot silently creating a half-order.
func TestCompleteCheckout_InvalidListing(t *testing.T) {
	payments := &mockPayments{ok: true}
	store := newMemStore()
	service := NewCheckoutService(payments, store, &mockPublisher{})

	input := validInput()
	input.Listing.SellerID = ""

	order, err := service.CompleteCheckout(context.Background(), input)

	assert.Nil(t, order)
	assert.ErrorIs(t, err, orderdomain.ErrInvalidListing)
	assert.Empty(t, store.orders)
}

// TestCompleteCheckout_StoreFailure verifies a persistence failure surfaces to
// the caller instead of returning an unsaved order.
func TestCompleteCheckout_StoreFailure(t *testing.T) {
	payments := &mockPayments{ok: true}
	store := newMemStore()
	store.createErr = errors.New("redis unavailable")
	service := NewCheckoutService(payments, store, &mockPublisher{})

	order, err := service.CompleteCheckout(context.Background(), validInput())

	assert.Nil(t, order)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create order")
}

// TestCompleteCheckout_PublisherFailureIsNonFatal verifies a broker outage does
// not fail the checkout.
func TestCompleteCheckout_PublisherFailureIsNonFatal(t *testing.T) {
	payments := &mockPayments{ok: true}
	store := newMemStore()
	publisher := &mockPublisher{err: errors.New("broker down")}
	service := NewCheckoutService(payments, store, publisher)

	order, err := service.CompleteCheckout(context.Background(), validInput())

	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Len(t, store.orders, 1)
}
