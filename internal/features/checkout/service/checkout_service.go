package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"partsflow/internal/core/logger"
	"partsflow/internal/core/metrics"
	"partsflow/internal/features/checkout/ports"
	orderdomain "partsflow/internal/features/orders/domain"
	orderports "partsflow/internal/features/orders/ports"

	"go.uber.org/zap"
)

// ErrPaymentNotConfirmed is returned when the payment gateway declined or
// could not confirm the charge. No order is created.
var ErrPaymentNotConfirmed = errors.New("payment not confirmed")

// CheckoutService bridges a completed payment into the order's initial state.
// Payment confirmation and order creation form one logical operation: no order
// without a confirmed payment, exactly one order per confirmed checkout.
type CheckoutService struct {
	payments  ports.PaymentProcessor
	orders    orderports.Store
	publisher orderports.EventPublisher
	now       func() time.Time
}

// NewCheckoutService creates a new CheckoutService.
func NewCheckoutService(payments ports.PaymentProcessor, orders orderports.Store, publisher orderports.EventPublisher) *CheckoutService {
	return &CheckoutService{
		payments:  payments,
		orders:    orders,
		publisher: publisher,
		now:       time.Now,
	}
}

// CheckoutInput is everything the bridge needs to seed an order.
type CheckoutInput struct {
	// Listing is the snapshot of the purchased listing.
	Listing orderdomain.ListingSnapshot
	// BuyerID identifies the buying party.
	BuyerID string
	// Destination is the drop-off locker chosen by the buyer.
	Destination orderdomain.Destination
	// Amount is the charge amount.
	Amount float64
	// PaymentMethod is the payment channel chosen by the buyer.
	PaymentMethod string
}

// CompleteCheckout charges the buyer and, on success, creates exactly one
// order in AwaitingRegistration with the first tracking event appended.
func (s *CheckoutService) CompleteCheckout(ctx context.Context, input CheckoutInput) (*orderdomain.Order, error) {
	ok, err := s.payments.ProcessPayment(ctx, input.Amount, input.PaymentMethod)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrPaymentNotConfirmed, err)
	}
	if !ok {
		metrics.PaymentsDeclinedTotal.Inc()
		return nil, ErrPaymentNotConfirmed
	}

	order, err := orderdomain.NewOrder(input.Listing, input.BuyerID, input.Destination, input.PaymentMethod, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.orders.Create(ctx, order); err != nil {
		if errors.Is(err, orderports.ErrDuplicateID) {
			// Should never happen with generated ids; abort loudly rather
			// than overwrite an existing order.
			logger.Get().Error("Order id collision on create",
				zap.String("order_id", order.ID),
				zap.Error(err),
			)
		}
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	metrics.OrdersCreatedTotal.Inc()
	metrics.TransitionsTotal.WithLabelValues(string(orderdomain.StatusAwaitingRegistration)).Inc()

	if s.publisher != nil {
		if pubErr := s.publisher.PublishTrackingEvent(ctx, order.ID, order.LastEvent()); pubErr != nil {
			logger.Get().Warn("Failed to publish order confirmation event",
				zap.String("order_id", order.ID),
				zap.Error(pubErr),
			)
		}
	}

	return order, nil
}
