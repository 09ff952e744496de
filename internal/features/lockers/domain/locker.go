package domain

import "errors"

// Carrier identifies a parcel locker network operator.
type Carrier string

const (
	// CarrierOmniva is the Omniva parcel locker network.
	CarrierOmniva Carrier = "Omniva"
	// CarrierDPD is the DPD Pickup locker network.
	CarrierDPD Carrier = "DPD"
	// CarrierLPExpress is the LP Express locker network.
	CarrierLPExpress Carrier = "LP Express"
)

// ErrInvalidCarrier is returned when a carrier name is not recognized.
var ErrInvalidCarrier = errors.New("invalid carrier")

// Valid reports whether the carrier is one of the supported networks.
func (c Carrier) Valid() bool {
	switch c {
	case CarrierOmniva, CarrierDPD, CarrierLPExpress:
		return true
	}
	return false
}

// Locker represents a physical parcel drop-off point.
type Locker struct {
	// ID is the carrier-scoped identifier of the locker.
	ID string `json:"id"`
	// Name is the display name of the locker (usually the host location).
	Name string `json:"name"`
	// Address is the street address of the locker.
	Address string `json:"address"`
	// City is the city the locker is located in.
	City string `json:"city"`
	// Carrier is the network the locker belongs to.
	Carrier Carrier `json:"carrier"`
}
