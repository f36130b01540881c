package trip

import "context"

// Repository defines the interface for monitored trip persistence.
type Repository interface {
	// ListIDs returns the identifiers of all currently monitored trips in one
	// bulk read. Identifiers only: full trip data is fetched lazily per trip
	// at analysis time to bound memory and avoid holding a live cursor across
	// a long-running cycle.
	ListIDs(ctx context.Context) ([]string, error)

	// Get retrieves a monitored trip by ID.
	Get(ctx context.Context, id string) (*MonitoredTrip, error)

	// Create registers a trip for monitoring.
	Create(ctx context.Context, trip *MonitoredTrip) error

	// Delete removes a trip from monitoring.
	Delete(ctx context.Context, id string) error
}
