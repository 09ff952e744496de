package service

import (
	"context"
	"fmt"
	"strings"

	"partsflow/internal/features/lockers/domain"
	"partsflow/internal/features/lockers/ports"
)

// LockerService handles locker directory lookups.
type LockerService struct {
	directory ports.Directory
}

// NewLockerService creates a new LockerService.
func NewLockerService(directory ports.Directory) *LockerService {
	return &LockerService{
		directory: directory,
	}
}

// Search returns lockers matching the free-text query and carrier filter.
// The query matches name, address and city case-insensitively; an empty
// query matches everything. An empty carrier disables the carrier filter.
func (s *LockerService) Search(ctx context.Context, query string, carrier domain.Carrier) ([]domain.Locker, error) {
	if carrier != "" && !carrier.Valid() {
		return nil, domain.ErrInvalidCarrier
	}

	lockers, err := s.directory.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list lockers: %w", err)
	}

	q := strings.ToLower(strings.TrimSpace(query))

	matched := make([]domain.Locker, 0, len(lockers))
	for _, l := range lockers {
		if carrier != "" && l.Carrier != carrier {
			continue
		}
		if q != "" && !matchesQuery(l, q) {
			continue
		}
		matched = append(matched, l)
	}

	return matched, nil
}

// matchesQuery reports whether the lowercased query appears in any of the
// locker's searchable fields.
func matchesQuery(l domain.Locker, q string) bool {
	return strings.Contains(strings.ToLower(l.Name), q) ||
		strings.Contains(strings.ToLower(l.Address), q) ||
		strings.Contains(strings.ToLower(l.City), q)
}
