package geocode

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"triplog/internal/models"
)

// Store is the cache capability behind the resolver. Get returns nil with no
// error on a miss. Implementations: MemoryStore here, the sqlite-backed
// repository.PlaceRepository for persistence across runs.
type Store interface {
	Get(placeID string) (*models.Place, error)
	Put(place *models.Place) error
}

// Resolver memoizes place resolution. The same place ID is resolved through
// the external client at most once per cache lifetime; failures are cached
// as unresolved placeholders after bounded retries, never surfaced as fatal.
type Resolver struct {
	client     Client
	store      Store
	maxRetries int
	backoff    time.Duration
	politeness time.Duration

	// Distinct external calls made this run; exposed for logging and tests.
	externalCalls int
}

// NewResolver creates a resolver over the given client and cache store.
func NewResolver(client Client, store Store, maxRetries int, backoff time.Duration) *Resolver {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Resolver{
		client:     client,
		store:      store,
		maxRetries: maxRetries,
		backoff:    backoff,
		politeness: 100 * time.Millisecond,
	}
}

// ExternalCalls reports how many distinct external calls were made.
func (r *Resolver) ExternalCalls() int { return r.externalCalls }

// Resolve maps a place ID to its Place, hitting the external service only on
// a cache miss.
func (r *Resolver) Resolve(ctx context.Context, placeID string) (*models.Place, error) {
	if placeID == "" {
		return models.Unresolved(""), nil
	}

	cached, err := r.store.Get(placeID)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return cached, nil
	}

	place := r.fetch(ctx, placeID)
	if err := r.store.Put(place); err != nil {
		return nil, err
	}
	return place, nil
}

// fetch performs the external call with bounded retry and doubling backoff
// on transient failures. Exhausted retries yield the unresolved placeholder.
func (r *Resolver) fetch(ctx context.Context, placeID string) *models.Place {
	r.externalCalls++
	delay := r.backoff

	for attempt := 1; ; attempt++ {
		result, err := r.client.PlaceDetails(ctx, placeID)
		if err == nil {
			// Small pause between paid calls
			sleep(ctx, r.politeness)
			return &models.Place{
				PlaceID:    placeID,
				Address:    result.Address,
				Name:       result.Name,
				Resolved:   true,
				ResolvedAt: time.Now(),
			}
		}

		var statusErr *StatusError
		transient := errors.As(err, &statusErr) && statusErr.Transient
		if !transient || attempt >= r.maxRetries {
			log.Printf("[Resolver] Giving up on %s after %d attempt(s): %v", placeID, attempt, err)
			return models.Unresolved(placeID)
		}

		log.Printf("[Resolver] Transient failure for %s (attempt %d/%d): %v", placeID, attempt, r.maxRetries, err)
		if !sleep(ctx, delay) {
			return models.Unresolved(placeID)
		}
		delay *= 2
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// MemoryStore is an in-memory Store, used when no database is configured
// and in tests.
type MemoryStore struct {
	mu     sync.Mutex
	places map[string]*models.Place
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{places: make(map[string]*models.Place)}
}

func (s *MemoryStore) Get(placeID string) (*models.Place, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.places[placeID], nil
}

func (s *MemoryStore) Put(place *models.Place) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.places[place.PlaceID] = place
	return nil
}
