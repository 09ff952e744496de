package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"partsflow/internal/core/logger"
	"partsflow/internal/core/metrics"
	"partsflow/internal/features/orders/domain"
	"partsflow/internal/features/orders/ports"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// ErrGeneratorFailure is returned when the label generator call failed or
// timed out. The order is left untouched and the caller may retry.
var ErrGeneratorFailure = errors.New("label generator failure")

// ShipmentService drives an order through its fulfillment states. It is the
// single writer of order records after creation.
type ShipmentService struct {
	store     ports.Store
	generator ports.LabelGenerator
	publisher ports.EventPublisher
	now       func() time.Time
}

// NewShipmentService creates a new ShipmentService.
func NewShipmentService(store ports.Store, generator ports.LabelGenerator, publisher ports.EventPublisher) *ShipmentService {
	return &ShipmentService{
		store:     store,
		generator: generator,
		publisher: publisher,
		now:       time.Now,
	}
}

// GetOrder returns an order by id.
func (s *ShipmentService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.store.Get(ctx, orderID)
}

// ListOrders returns the orders visible to a transacting party.
func (s *ShipmentService) ListOrders(ctx context.Context, partyID string) ([]domain.Order, error) {
	return s.store.ListForParty(ctx, partyID)
}

// GetTrackingHistory returns the append-only event log of an order.
func (s *ShipmentService) GetTrackingHistory(ctx context.Context, orderID string) ([]domain.TrackingEvent, error) {
	order, err := s.store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return order.TrackingHistory, nil
}

// RegisterShipment registers the shipment with the carrier and moves the
// order from AwaitingRegistration to LabelReady. The external call happens
// before any write: on generator failure the order stays untouched and the
// seller retries by calling again. Registering twice yields ErrAlreadyRegistered.
func (s *ShipmentService) RegisterShipment(ctx context.Context, orderID string, size domain.ParcelSize) (*domain.Order, error) {
	if !size.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidParcelSize, size)
	}

	order, err := s.store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.TrackingNumber != "" {
		return nil, domain.ErrAlreadyRegistered
	}

	timer := prometheus.NewTimer(metrics.LabelGeneratorDuration)
	label, err := s.generator.RegisterShipment(ctx, orderID, size)
	timer.ObserveDuration()
	if err != nil {
		metrics.LabelGeneratorFailuresTotal.Inc()
		return nil, fmt.Errorf("%w: %s", ErrGeneratorFailure, err)
	}

	event := domain.NewTrackingEvent(domain.StatusLabelReady, order.Destination, s.now())
	updated, err := s.store.ApplyTransition(ctx, orderID, event, domain.TransitionUpdates{
		ParcelSize:     size,
		TrackingNumber: label.TrackingNumber,
		LabelURL:       label.LabelURL,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) || errors.Is(err, domain.ErrAlreadyRegistered) {
			metrics.InvalidTransitionsTotal.Inc()
		}
		return nil, err
	}

	s.afterTransition(ctx, updated)
	return updated, nil
}

// MarkShipped records the seller's locker drop-off: LabelReady -> InTransit.
func (s *ShipmentService) MarkShipped(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.advance(ctx, orderID, domain.StatusInTransit)
}

// MarkReadyForPickup records the carrier's arrival signal:
// InTransit -> ReadyForPickup.
func (s *ShipmentService) MarkReadyForPickup(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.advance(ctx, orderID, domain.StatusReadyForPickup)
}

// MarkDelivered records the buyer's pickup confirmation:
// ReadyForPickup -> Delivered.
func (s *ShipmentService) MarkDelivered(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.advance(ctx, orderID, domain.StatusDelivered)
}

// advance applies a single status transition with no field updates.
func (s *ShipmentService) advance(ctx context.Context, orderID string, to domain.OrderStatus) (*domain.Order, error) {
	order, err := s.store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	event := domain.NewTrackingEvent(to, order.Destination, s.now())
	updated, err := s.store.ApplyTransition(ctx, orderID, event, domain.TransitionUpdates{})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			metrics.InvalidTransitionsTotal.Inc()
		}
		return nil, err
	}

	s.afterTransition(ctx, updated)
	return updated, nil
}

// afterTransition records metrics and publishes the appended event.
// Publishing is best effort: a broker failure is logged, never surfaced.
func (s *ShipmentService) afterTransition(ctx context.Context, order *domain.Order) {
	event := order.LastEvent()
	metrics.TransitionsTotal.WithLabelValues(string(event.Status)).Inc()

	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTrackingEvent(ctx, order.ID, event); err != nil {
		logger.Get().Warn("Failed to publish tracking event",
			zap.String("order_id", order.ID),
			zap.String("status", string(event.Status)),
			zap.Error(err),
		)
	}
}
