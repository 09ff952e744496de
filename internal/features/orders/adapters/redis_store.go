package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"partsflow/internal/core/cache"
	"partsflow/internal/features/orders/domain"
	"partsflow/internal/features/orders/ports"
)

const (
	orderKeyPrefix = "order:"
	orderIndexKey  = "orders:index"
)

// RedisOrderStore implements ports.Store on top of the core cache port.
// Orders are stored as JSON documents keyed by id, plus an index key holding
// the id list for listing. Mutations go through per-order mutexes so that
// at most one transition per order is in flight; a compare-and-swap version
// field would replace the mutexes if the store ever becomes shared between
// processes.
type RedisOrderStore struct {
	cache cache.Cache
	// indexMu guards the id index document.
	indexMu sync.Mutex
	// orderLocks holds one *sync.Mutex per order id.
	orderLocks sync.Map
}

// NewRedisOrderStore creates a new RedisOrderStore.
func NewRedisOrderStore(c cache.Cache) *RedisOrderStore {
	return &RedisOrderStore{
		cache: c,
	}
}

// lockFor returns the mutex serializing writes for one order id.
func (s *RedisOrderStore) lockFor(orderID string) *sync.Mutex {
	v, _ := s.orderLocks.LoadOrStore(orderID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

func orderKey(orderID string) string {
	return orderKeyPrefix + orderID
}

// Create inserts a new order document and registers its id in the index.
func (s *RedisOrderStore) Create(ctx context.Context, order *domain.Order) error {
	mu := s.lockFor(order.ID)
	mu.Lock()
	defer mu.Unlock()

	_, err := s.cache.Get(ctx, orderKey(order.ID))
	if err == nil {
		return fmt.Errorf("%w: %s", ports.ErrDuplicateID, order.ID)
	}
	if !errors.Is(err, cache.ErrKeyNotFound) {
		return fmt.Errorf("failed to check order existence: %w", err)
	}

	if err := s.save(ctx, order); err != nil {
		return err
	}

	if err := s.addToIndex(ctx, order.ID); err != nil {
		return err
	}

	return nil
}

// Get returns the order or ports.ErrNotFound.
func (s *RedisOrderStore) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	data, err := s.cache.Get(ctx, orderKey(orderID))
	if err != nil {
		if errors.Is(err, cache.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: %s", ports.ErrNotFound, orderID)
		}
		return nil, fmt.Errorf("failed to load order %s: %w", orderID, err)
	}

	var order domain.Order
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order %s: %w", orderID, err)
	}

	return &order, nil
}

// ListForParty returns the orders the party transacts in, as buyer or seller.
// An empty party id returns every order.
func (s *RedisOrderStore) ListForParty(ctx context.Context, partyID string) ([]domain.Order, error) {
	ids, err := s.readIndex(ctx)
	if err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(ids))
	for _, id := range ids {
		order, err := s.Get(ctx, id)
		if err != nil {
			if errors.Is(err, ports.ErrNotFound) {
				// Index entry without a document; skip rather than fail the listing.
				continue
			}
			return nil, err
		}
		if partyID != "" && order.BuyerID != partyID && order.Listing.SellerID != partyID {
			continue
		}
		orders = append(orders, *order)
	}

	return orders, nil
}

// ApplyTransition atomically appends the event, updates the status and merges
// the field updates. Validation lives in the domain mutator; the write happens
// only when it succeeds, so status and history tail never diverge.
func (s *RedisOrderStore) ApplyTransition(ctx context.Context, orderID string, event domain.TrackingEvent, updates domain.TransitionUpdates) (*domain.Order, error) {
	mu := s.lockFor(orderID)
	mu.Lock()
	defer mu.Unlock()

	order, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := order.ApplyTransition(event, updates); err != nil {
		return nil, err
	}

	if err := s.save(ctx, order); err != nil {
		return nil, err
	}

	return order, nil
}

// save marshals and writes one order document. Orders never expire.
func (s *RedisOrderStore) save(ctx context.Context, order *domain.Order) error {
	data, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("failed to marshal order %s: %w", order.ID, err)
	}

	if err := s.cache.Set(ctx, orderKey(order.ID), data, 0); err != nil {
		return fmt.Errorf("failed to save order %s: %w", order.ID, err)
	}

	return nil
}

// readIndex loads the id index document.
func (s *RedisOrderStore) readIndex(ctx context.Context) ([]string, error) {
	data, err := s.cache.Get(ctx, orderIndexKey)
	if err != nil {
		if errors.Is(err, cache.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load order index: %w", err)
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order index: %w", err)
	}

	return ids, nil
}

// addToIndex registers a new order id in the index document.
func (s *RedisOrderStore) addToIndex(ctx context.Context, orderID string) error {
	s.indexMu.Lock()
	defer s.indexMu.Unlock()

	ids, err := s.readIndex(ctx)
	if err != nil {
		return err
	}

	ids = append(ids, orderID)

	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to marshal order index: %w", err)
	}

	if err := s.cache.Set(ctx, orderIndexKey, data, 0); err != nil {
		return fmt.Errorf("failed to save order index: %w", err)
	}

	return nil
}
