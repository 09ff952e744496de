package domain

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	lockers "partsflow/internal/features/lockers/domain"

	"github.com/google/uuid"
)

// OrderStatus represents the current fulfillment state of an order.
type OrderStatus string

const (
	// StatusAwaitingRegistration indicates payment succeeded and the seller
	// has not yet registered the shipment.
	StatusAwaitingRegistration OrderStatus = "AWAITING_REGISTRATION"
	// StatusLabelReady indicates the shipping label was generated and is
	// ready for printing.
	StatusLabelReady OrderStatus = "LABEL_READY"
	// StatusInTransit indicates the parcel was handed to the carrier.
	StatusInTransit OrderStatus = "IN_TRANSIT"
	// StatusReadyForPickup indicates the parcel arrived at the destination locker.
	StatusReadyForPickup OrderStatus = "READY_FOR_PICKUP"
	// StatusDelivered indicates the buyer collected the parcel.
	StatusDelivered OrderStatus = "DELIVERED"
)

// nextStatus is the linear fulfillment chain. Each state has exactly one
// legal successor; Delivered is terminal.
var nextStatus = map[OrderStatus]OrderStatus{
	StatusAwaitingRegistration: StatusLabelReady,
	StatusLabelReady:           StatusInTransit,
	StatusInTransit:            StatusReadyForPickup,
	StatusReadyForPickup:       StatusDelivered,
}

// Valid reports whether the status is part of the fulfillment chain.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusAwaitingRegistration, StatusLabelReady, StatusInTransit, StatusReadyForPickup, StatusDelivered:
		return true
	}
	return false
}

// CanTransitionTo reports whether next is the legal successor of s.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	return nextStatus[s] == next
}

// ParcelSize is the closed set of parcel sizes accepted by the carriers.
type ParcelSize string

const (
	ParcelSizeS  ParcelSize = "S"
	ParcelSizeM  ParcelSize = "M"
	ParcelSizeL  ParcelSize = "L"
	ParcelSizeXL ParcelSize = "XL"
)

// Valid reports whether the parcel size is one of the accepted values.
func (p ParcelSize) Valid() bool {
	switch p {
	case ParcelSizeS, ParcelSizeM, ParcelSizeL, ParcelSizeXL:
		return true
	}
	return false
}

var (
	// ErrInvalidTransition is returned when the requested status change is
	// not legal from the order's current state.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrAlreadyRegistered is returned when a shipment label is registered twice.
	ErrAlreadyRegistered = errors.New("shipment already registered")
	// ErrInvalidParcelSize is returned when the parcel size is not S, M, L or XL.
	ErrInvalidParcelSize = errors.New("invalid parcel size")
	// ErrInvalidStatus is returned when a status value is outside the fulfillment chain.
	ErrInvalidStatus = errors.New("invalid order status")
	// ErrIncompleteLabel is returned when a tracking number and label
	// reference are not supplied together.
	ErrIncompleteLabel = errors.New("tracking number and label reference must be set together")
	// ErrInvalidDestination is returned when the destination locker is incomplete.
	ErrInvalidDestination = errors.New("invalid destination")
	// ErrInvalidListing is returned when the listing snapshot is incomplete.
	ErrInvalidListing = errors.New("invalid listing snapshot")
)

// ListingSnapshot is an immutable copy of the purchased listing, taken at
// purchase time. The live listing may later change or be deleted; the order
// never reads it again.
type ListingSnapshot struct {
	// ListingID is the identifier of the purchased listing.
	ListingID string `json:"listing_id"`
	// Title is the listing title at purchase time.
	Title string `json:"title"`
	// Price is the agreed price at purchase time.
	Price float64 `json:"price"`
	// ImageURL is the primary listing image at purchase time.
	ImageURL string `json:"image_url,omitempty"`
	// SellerID identifies the selling party.
	SellerID string `json:"seller_id"`
	// SellerName is the seller display name at purchase time.
	SellerName string `json:"seller_name,omitempty"`
}

// Destination is the drop-off locker chosen at checkout. Immutable after
// order creation.
type Destination struct {
	// LockerID is the carrier-scoped locker identifier.
	LockerID string `json:"locker_id"`
	// Name is the locker display name.
	Name string `json:"name"`
	// Address is the locker street address.
	Address string `json:"address"`
	// City is the locker city.
	City string `json:"city"`
	// Carrier is the locker network operator.
	Carrier lockers.Carrier `json:"carrier"`
}

// TrackingEvent is one immutable fact in the shipment's audit trail.
type TrackingEvent struct {
	// Status is the order status this event announces.
	Status OrderStatus `json:"status"`
	// Location is a free-text description of where the event occurred.
	Location string `json:"location"`
	// Timestamp is the event time, non-decreasing within one order's history.
	Timestamp time.Time `json:"timestamp"`
	// Description is a human-readable explanation derived from (status, carrier).
	Description string `json:"description"`
}

// Order is one purchased listing moving through fulfillment.
type Order struct {
	// ID is the unique order identifier, immutable.
	ID string `json:"id"`
	// Listing is the immutable snapshot of the purchased listing.
	Listing ListingSnapshot `json:"listing"`
	// BuyerID identifies the buying party.
	BuyerID string `json:"buyer_id"`
	// Status is the current fulfillment state, always equal to the status of
	// the last tracking event.
	Status OrderStatus `json:"status"`
	// Destination is the drop-off locker chosen at checkout, immutable.
	Destination Destination `json:"destination"`
	// ParcelSize is set once, when the seller registers the shipment.
	ParcelSize ParcelSize `json:"parcel_size,omitempty"`
	// TrackingNumber is the carrier-assigned identifier, set with LabelURL.
	TrackingNumber string `json:"tracking_number,omitempty"`
	// LabelURL references the printable label artifact, set with TrackingNumber.
	LabelURL string `json:"label_url,omitempty"`
	// DropoffCode is the short numeric code entered at the locker terminal, immutable.
	DropoffCode string `json:"dropoff_code"`
	// PaymentMethod records which payment channel was used.
	PaymentMethod string `json:"payment_method"`
	// TrackingHistory is the append-only chronological event log.
	TrackingHistory []TrackingEvent `json:"tracking_history"`
	// CreatedAt is the immutable creation timestamp.
	CreatedAt time.Time `json:"created_at"`
}

// TransitionUpdates carries the optional field changes applied together with
// a status transition. Zero values mean no change.
type TransitionUpdates struct {
	// ParcelSize sets the parcel size chosen by the seller.
	ParcelSize ParcelSize
	// TrackingNumber sets the carrier tracking identifier.
	TrackingNumber string
	// LabelURL sets the printable label reference.
	LabelURL string
}

// NewOrder creates an order in AwaitingRegistration with the first tracking
// event already appended. It generates the order id and the locker drop-off code.
func NewOrder(listing ListingSnapshot, buyerID string, destination Destination, paymentMethod string, now time.Time) (*Order, error) {
	if listing.ListingID == "" || listing.Title == "" || listing.SellerID == "" {
		return nil, ErrInvalidListing
	}
	if destination.LockerID == "" || destination.City == "" || !destination.Carrier.Valid() {
		return nil, ErrInvalidDestination
	}

	order := &Order{
		ID:            "ORD-" + uuid.NewString(),
		Listing:       listing,
		BuyerID:       buyerID,
		Status:        StatusAwaitingRegistration,
		Destination:   destination,
		DropoffCode:   fmt.Sprintf("%06d", rand.IntN(900000)+100000),
		PaymentMethod: paymentMethod,
		CreatedAt:     now,
	}

	order.TrackingHistory = []TrackingEvent{
		NewTrackingEvent(StatusAwaitingRegistration, destination, now),
	}

	return order, nil
}

// NewTrackingEvent builds the event announcing a status, with its location
// and description derived from the destination.
func NewTrackingEvent(status OrderStatus, destination Destination, now time.Time) TrackingEvent {
	return TrackingEvent{
		Status:      status,
		Location:    EventLocation(status, destination),
		Timestamp:   now,
		Description: StatusDescription(status, destination.Carrier),
	}
}

// LastEvent returns the most recent tracking event.
func (o *Order) LastEvent() TrackingEvent {
	return o.TrackingHistory[len(o.TrackingHistory)-1]
}

// ApplyTransition validates and applies one status transition: it appends the
// event, updates the denormalized status and merges the field updates. The
// caller persists the order in one write, so either everything moves together
// or nothing does.
func (o *Order) ApplyTransition(event TrackingEvent, updates TransitionUpdates) error {
	if !event.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, event.Status)
	}
	if !o.Status.CanTransitionTo(event.Status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, event.Status)
	}

	if updates.TrackingNumber != "" || updates.LabelURL != "" {
		if updates.TrackingNumber == "" || updates.LabelURL == "" {
			return ErrIncompleteLabel
		}
		if o.TrackingNumber != "" {
			return ErrAlreadyRegistered
		}
	}
	if updates.ParcelSize != "" && !updates.ParcelSize.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidParcelSize, updates.ParcelSize)
	}

	// Timestamps within one history are non-decreasing.
	if last := o.LastEvent(); event.Timestamp.Before(last.Timestamp) {
		event.Timestamp = last.Timestamp
	}

	if updates.ParcelSize != "" {
		o.ParcelSize = updates.ParcelSize
	}
	if updates.TrackingNumber != "" {
		o.TrackingNumber = updates.TrackingNumber
		o.LabelURL = updates.LabelURL
	}

	o.Status = event.Status
	o.TrackingHistory = append(o.TrackingHistory, event)

	return nil
}

// StatusDescription returns the human-readable explanation for a status.
// It is a pure function of (status, carrier) and is never stored as input,
// so the wording can change without touching history semantics.
func StatusDescription(status OrderStatus, carrier lockers.Carrier) string {
	switch status {
	case StatusAwaitingRegistration:
		return "Payment confirmed. The seller is preparing the parcel."
	case StatusLabelReady:
		return "The seller paid for shipping. The label is ready for printing."
	case StatusInTransit:
		return fmt.Sprintf("The parcel entered the %s network. The journey has started!", carrier)
	case StatusReadyForPickup:
		return "The part arrived at the pickup locker. Happy wrenching!"
	case StatusDelivered:
		return "The parcel was collected by the buyer."
	default:
		return fmt.Sprintf("Status: %s", status)
	}
}

// EventLocation returns the reported location for a status event.
func EventLocation(status OrderStatus, destination Destination) string {
	switch status {
	case StatusAwaitingRegistration:
		return "Partsflow Marketplace"
	case StatusInTransit:
		return "Sorting Center"
	default:
		return destination.City
	}
}
