package journey

import (
	"context"
	"time"
)

// Repository defines the interface for tracked journey persistence. The
// analysis engine reads journeys; tracking ingestion appends locations.
type Repository interface {
	// Get retrieves a journey by ID.
	Get(ctx context.Context, id string) (*TrackedJourney, error)

	// GetByTripID retrieves the active journey for a monitored trip.
	// Returns ErrJourneyNotFound if no journey exists for the trip.
	GetByTripID(ctx context.Context, tripID string) (*TrackedJourney, error)

	// Create starts tracking a new journey.
	Create(ctx context.Context, journey *TrackedJourney) error

	// AppendLocations appends location samples to a journey, oldest first.
	// Returns ErrJourneyEnded if the journey has been terminated.
	AppendLocations(ctx context.Context, id string, locations []Location) error

	// End terminates a journey at the given time.
	End(ctx context.Context, id string, endedAt time.Time) error
}
