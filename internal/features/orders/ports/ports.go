package ports

import (
	"context"
	"errors"

	"partsflow/internal/features/orders/domain"
)

var (
	// ErrNotFound is returned when no order exists for the given id.
	ErrNotFound = errors.New("order not found")
	// ErrDuplicateID is returned when an order id already exists on create.
	// This indicates a bug in id generation and is never expected.
	ErrDuplicateID = errors.New("duplicate order id")
)

// Store defines the secondary port for order persistence. ApplyTransition is
// the only mutation entry point after creation and must be atomic and
// serialized per order id.
type Store interface {
	// Create inserts a new order. Fails with ErrDuplicateID if the id exists.
	Create(ctx context.Context, order *domain.Order) error
	// Get returns the order or ErrNotFound.
	Get(ctx context.Context, orderID string) (*domain.Order, error)
	// ListForParty returns every order the given party transacts in, as
	// buyer or as seller. An empty party id returns all orders.
	ListForParty(ctx context.Context, partyID string) ([]domain.Order, error)
	// ApplyTransition atomically appends the event, updates the status and
	// merges the field updates in one persisted write. Returns the updated order.
	ApplyTransition(ctx context.Context, orderID string, event domain.TrackingEvent, updates domain.TransitionUpdates) (*domain.Order, error)
}

// Label is the artifact pair produced by a successful shipment registration.
// Both fields are always set together.
type Label struct {
	// TrackingNumber is the carrier-assigned shipment identifier.
	TrackingNumber string
	// LabelURL references the printable label.
	LabelURL string
}

// LabelGenerator defines the contract of the external shipping label service.
// Calls may be slow and may fail; a failure leaves no partial state behind.
type LabelGenerator interface {
	// RegisterShipment registers a shipment of the given parcel size and
	// returns the tracking number and label reference.
	RegisterShipment(ctx context.Context, orderID string, size domain.ParcelSize) (*Label, error)
}

// EventPublisher defines the outbound notification port for tracking events.
// Publishing is best effort; failures never roll back a transition.
type EventPublisher interface {
	// PublishTrackingEvent announces one appended tracking event.
	PublishTrackingEvent(ctx context.Context, orderID string, event domain.TrackingEvent) error
}
