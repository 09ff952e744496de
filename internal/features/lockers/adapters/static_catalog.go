package adapters

import (
	"context"

	"partsflow/internal/features/lockers/domain"
)

// StaticCatalog implements ports.Directory with a built-in locker list.
// Used as a fallback when no remote directory is configured.
type StaticCatalog struct {
	lockers []domain.Locker
}

// NewStaticCatalog creates a StaticCatalog with the default locker list.
func NewStaticCatalog() *StaticCatalog {
	return &StaticCatalog{
		lockers: []domain.Locker{
			{ID: "O1", Name: "MAXIMA XX parcel locker", Address: "Taikos pr. 141", City: "Kaunas", Carrier: domain.CarrierOmniva},
			{ID: "O2", Name: "PC MOLAS parcel locker", Address: "K. Baršausko g. 66A", City: "Kaunas", Carrier: domain.CarrierOmniva},
			{ID: "O3", Name: "MAXIMA XXX parcel locker", Address: "Mindaugo g. 11", City: "Vilnius", Carrier: domain.CarrierOmniva},
			{ID: "D1", Name: "IKI Girstupis parcel locker", Address: "Kovo 11-osios g. 22", City: "Kaunas", Carrier: domain.CarrierDPD},
			{ID: "D2", Name: "PC AKROPOLIS parcel locker", Address: "Karaliaus Mindaugo pr. 49", City: "Kaunas", Carrier: domain.CarrierDPD},
			{ID: "L1", Name: "PC PANORAMA parcel locker", Address: "Saltoniškių g. 9", City: "Vilnius", Carrier: domain.CarrierLPExpress},
		},
	}
}

// List returns the built-in locker list.
func (c *StaticCatalog) List(_ context.Context) ([]domain.Locker, error) {
	out := make([]domain.Locker, len(c.lockers))
	copy(out, c.lockers)
	return out, nil
}
