package journey

import (
	"context"
	"sync"
	"time"
)

// InMemoryRepository is an in-memory implementation of Repository. This is
// intended for testing and local development. Production should use
// PostgresRepository.
type InMemoryRepository struct {
	mu       sync.RWMutex
	journeys map[string]*TrackedJourney
	byTrip   map[string]string
}

// NewInMemoryRepository creates a new in-memory journey repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		journeys: make(map[string]*TrackedJourney),
		byTrip:   make(map[string]string),
	}
}

// Get retrieves a journey by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*TrackedJourney, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	j, ok := r.journeys[id]
	if !ok {
		return nil, ErrJourneyNotFound
	}
	return copyJourney(j), nil
}

// GetByTripID retrieves the active journey for a monitored trip.
func (r *InMemoryRepository) GetByTripID(_ context.Context, tripID string) (*TrackedJourney, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byTrip[tripID]
	if !ok {
		return nil, ErrJourneyNotFound
	}
	return copyJourney(r.journeys[id]), nil
}

// Create starts tracking a new journey.
func (r *InMemoryRepository) Create(_ context.Context, j *TrackedJourney) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if j.ID == "" {
		j.ID = NewID()
	}
	r.journeys[j.ID] = copyJourney(j)
	r.byTrip[j.TripID] = j.ID
	return nil
}

// AppendLocations appends location samples to a journey.
func (r *InMemoryRepository) AppendLocations(_ context.Context, id string, locations []Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.journeys[id]
	if !ok {
		return ErrJourneyNotFound
	}
	if j.Ended() {
		return ErrJourneyEnded
	}
	j.Locations = append(j.Locations, locations...)
	return nil
}

// End terminates a journey at the given time.
func (r *InMemoryRepository) End(_ context.Context, id string, endedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.journeys[id]
	if !ok {
		return ErrJourneyNotFound
	}
	j.EndedAt = endedAt
	return nil
}

func copyJourney(j *TrackedJourney) *TrackedJourney {
	cpy := *j
	cpy.Locations = append([]Location(nil), j.Locations...)
	cpy.NotifiedAlerts = append([]string(nil), j.NotifiedAlerts...)
	return &cpy
}

// Ensure InMemoryRepository implements Repository.
var _ Repository = (*InMemoryRepository)(nil)
