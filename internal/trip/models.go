// Package trip provides persistence of monitored trips: the set of trips the
// fleet analysis engine checks on every cycle.
package trip

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository errors.
var (
	ErrTripNotFound = errors.New("monitored trip not found")
)

// RiderProfile carries traveler preferences that influence guidance.
type RiderProfile struct {
	// MobilityMode describes the traveler's mobility needs, passed through
	// to operators (e.g. "WCHAIR", "BLIND").
	MobilityMode string

	// Locale is the traveler's preferred language tag, e.g. "en-US".
	Locale string
}

// MonitoredTrip is one actively monitored trip. The full itinerary is owned
// by the planning collaborator and fetched separately by trip ID.
type MonitoredTrip struct {
	ID     string
	UserID string
	Label  string

	// Profile is the rider's profile, nil when the user has none.
	Profile *RiderProfile

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewID mints a monitored trip identifier.
func NewID() string {
	return "trp_" + uuid.New().String()[:22]
}
