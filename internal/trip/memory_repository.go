package trip

import (
	"context"
	"sort"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository. This is
// intended for testing and local development. Production should use
// PostgresRepository.
type InMemoryRepository struct {
	mu    sync.RWMutex
	trips map[string]*MonitoredTrip
}

// NewInMemoryRepository creates a new in-memory trip repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{trips: make(map[string]*MonitoredTrip)}
}

// ListIDs returns the identifiers of all monitored trips.
func (r *InMemoryRepository) ListIDs(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.trips))
	for id := range r.trips {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Get retrieves a monitored trip by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*MonitoredTrip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.trips[id]
	if !ok {
		return nil, ErrTripNotFound
	}
	cpy := *t
	if t.Profile != nil {
		profile := *t.Profile
		cpy.Profile = &profile
	}
	return &cpy, nil
}

// Create registers a trip for monitoring.
func (r *InMemoryRepository) Create(_ context.Context, t *MonitoredTrip) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t.ID == "" {
		t.ID = NewID()
	}
	cpy := *t
	r.trips[t.ID] = &cpy
	return nil
}

// Delete removes a trip from monitoring.
func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.trips, id)
	return nil
}

// Ensure InMemoryRepository implements Repository.
var _ Repository = (*InMemoryRepository)(nil)
