package itinerary

import (
	"context"
	"errors"
	"sync"
)

// ErrItineraryNotFound indicates no itinerary exists for the given trip.
var ErrItineraryNotFound = errors.New("itinerary not found")

// Source provides read-only access to fully-populated itineraries keyed by
// trip identifier. Implementations must never return a partially populated
// itinerary; the tracker assumes legs, steps and geometry are complete.
type Source interface {
	GetItinerary(ctx context.Context, tripID string) (*Itinerary, error)
}

// StaticSource is an in-memory Source backed by a fixed map of itineraries.
// This is intended for testing and local development. Production should use
// the planner client.
type StaticSource struct {
	mu          sync.RWMutex
	itineraries map[string]*Itinerary
}

// NewStaticSource creates an empty static itinerary source.
func NewStaticSource() *StaticSource {
	return &StaticSource{itineraries: make(map[string]*Itinerary)}
}

// Put registers an itinerary for a trip identifier.
func (s *StaticSource) Put(tripID string, itin *Itinerary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.itineraries[tripID] = itin
}

// GetItinerary retrieves the itinerary for a trip.
func (s *StaticSource) GetItinerary(_ context.Context, tripID string) (*Itinerary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	itin, ok := s.itineraries[tripID]
	if !ok {
		return nil, ErrItineraryNotFound
	}
	return itin, nil
}

// Ensure StaticSource implements Source.
var _ Source = (*StaticSource)(nil)
