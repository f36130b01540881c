package tracker

import (
	"errors"

	"time"

	"github.com/tripsentry/tripsentry/internal/itinerary"
	"github.com/tripsentry/tripsentry/internal/journey"
	"github.com/tripsentry/tripsentry/internal/trip"
	"github.com/tripsentry/tripsentry/pkg/geo"
)

// ErrEmptyJourney indicates a tracked journey with no location samples was
// passed in for analysis. This is a precondition violation by the caller, not
// a recoverable data condition.
var ErrEmptyJourney = errors.New("tracked journey has no locations")

// TravelerPosition is the ephemeral result of matching a traveler's latest
// tracked sample against their itinerary. It is recomputed on every analysis
// tick and never persisted.
type TravelerPosition struct {
	// ExpectedLeg is the leg the traveler is expected to be on, or nil when
	// no leg's time window plausibly contains the current time.
	ExpectedLeg *itinerary.Leg

	// NextLeg is the leg after the expected leg, or nil if last.
	NextLeg *itinerary.Leg

	// LegSegmentFromPosition is the expected leg's segment nearest to the
	// traveler by cross-track distance.
	LegSegmentFromPosition *LegSegment

	// LegSegmentFromTime is the expected leg's segment whose time window
	// contains the elapsed time since the leg's scheduled start.
	LegSegmentFromTime *LegSegment

	// CurrentPosition and CurrentTime come from the journey's latest sample.
	CurrentPosition geo.Coordinate
	CurrentTime     time.Time

	// MobilityMode and Locale come from the rider profile when present.
	MobilityMode string
	Locale       string
}

// Resolver computes traveler positions against itineraries, reusing
// interpolated leg segments across repeated ticks of the same itinerary.
type Resolver struct {
	cfg   Config
	cache *SegmentCache
}

// NewResolver creates a position resolver with the given thresholds.
func NewResolver(cfg Config) *Resolver {
	return &Resolver{cfg: cfg, cache: NewSegmentCache()}
}

// Resolve computes the traveler's position from the journey's most recent
// tracked sample and the itinerary. A journey with no locations returns
// ErrEmptyJourney.
func (r *Resolver) Resolve(
	jny *journey.TrackedJourney,
	itin *itinerary.Itinerary,
	profile *trip.RiderProfile,
) (*TravelerPosition, error) {
	if jny == nil || len(jny.Locations) == 0 {
		return nil, ErrEmptyJourney
	}

	last := jny.Locations[len(jny.Locations)-1]
	pos := &TravelerPosition{
		CurrentPosition: geo.Coordinate{Lat: last.Lat, Lon: last.Lon},
		CurrentTime:     last.Timestamp,
	}

	pos.ExpectedLeg = r.expectedLeg(pos.CurrentPosition, pos.CurrentTime, itin)
	if pos.ExpectedLeg != nil {
		pos.NextLeg = itin.NextLeg(pos.ExpectedLeg)
		segments := r.cache.Segments(pos.ExpectedLeg)
		pos.LegSegmentFromPosition = SegmentFromPosition(segments, pos.CurrentPosition)
		pos.LegSegmentFromTime = SegmentFromTime(segments, pos.ExpectedLeg.StartTime, pos.CurrentTime)
	}

	if profile != nil {
		pos.MobilityMode = profile.MobilityMode
		pos.Locale = profile.Locale
	}

	return pos, nil
}

// expectedLeg picks the leg whose scheduled time window contains the current
// time. When windows overlap at leg boundaries the leg with geometry nearest
// to the current position wins. Returns nil when no leg's window contains the
// current time.
func (r *Resolver) expectedLeg(position geo.Coordinate, now time.Time, itin *itinerary.Itinerary) *itinerary.Leg {
	var expected *itinerary.Leg
	nearest := 0.0

	for i := range itin.Legs {
		leg := &itin.Legs[i]
		if now.Before(leg.StartTime) || now.After(leg.EndTime) {
			continue
		}
		distance := r.distanceToLeg(position, leg)
		if expected == nil || distance < nearest {
			expected = leg
			nearest = distance
		}
	}
	return expected
}

// distanceToLeg returns the smallest cross-track distance from the position to
// any of the leg's segments.
func (r *Resolver) distanceToLeg(position geo.Coordinate, leg *itinerary.Leg) float64 {
	segments := r.cache.Segments(leg)
	nearest := 0.0
	for i, seg := range segments {
		d := geo.DistanceFromLine(seg.Start, seg.End, position)
		if i == 0 || d < nearest {
			nearest = d
		}
	}
	return nearest
}
