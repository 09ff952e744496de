package ports

import (
	"context"

	"partsflow/internal/features/lockers/domain"
)

// Directory defines the interface for locker catalog sources.
// This is a Secondary Port (Driven Port).
type Directory interface {
	// List returns every locker known to the source.
	List(ctx context.Context) ([]domain.Locker, error)
}
