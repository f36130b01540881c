// Package journey provides persistence of tracked journeys: the location
// samples recorded over the life of one actively monitored trip. Journeys are
// append-only while monitoring is active; the tracker only reads the latest
// sample(s).
package journey

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository errors.
var (
	ErrJourneyNotFound = errors.New("tracked journey not found")
	ErrJourneyEnded    = errors.New("tracked journey has ended")
)

// Location is a single tracked position sample.
type Location struct {
	Lat       float64
	Lon       float64
	Timestamp time.Time
}

// TrackedJourney records the location history of one actively monitored trip,
// plus the alert identifiers already sent to the traveler.
type TrackedJourney struct {
	ID     string
	TripID string

	// Locations is ordered by timestamp, oldest first.
	Locations []Location

	// NotifiedAlerts holds identifiers of alerts already delivered, so the
	// notification collaborator can deduplicate.
	NotifiedAlerts []string

	StartedAt time.Time

	// EndedAt is zero while monitoring is active.
	EndedAt time.Time
}

// LastLocation returns the most recent sample, if any.
func (j *TrackedJourney) LastLocation() (Location, bool) {
	if len(j.Locations) == 0 {
		return Location{}, false
	}
	return j.Locations[len(j.Locations)-1], true
}

// Ended reports whether the journey has been terminated.
func (j *TrackedJourney) Ended() bool {
	return !j.EndedAt.IsZero()
}

// NewID mints a tracked journey identifier.
func NewID() string {
	return "jny_" + uuid.New().String()[:22]
}
