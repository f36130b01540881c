package tracker

import (
	"math"

	"github.com/tripsentry/tripsentry/internal/itinerary"
	"github.com/tripsentry/tripsentry/pkg/geo"
)

// StepSegment covers the geometry between two consecutive steps of a leg. Its
// ordinal is used only for relative ordering along the route, not timing.
type StepSegment struct {
	Start   geo.Coordinate
	End     geo.Coordinate
	Ordinal int
}

// Bearing returns the compass bearing of the step segment.
func (s StepSegment) Bearing() float64 {
	return geo.Bearing(s.Start, s.End)
}

// AlignedStep is the result of matching a position to the nearest step. A zero
// AlignedStep means no step qualified.
type AlignedStep struct {
	// Rank is a distance-based ordinal; lower means higher confidence.
	Rank int

	// Distance is the meters from the traveler's position to the step.
	Distance float64

	// Step is the matched step, or nil when no match was found.
	Step *itinerary.Step
}

// Matched reports whether a step was aligned.
func (a AlignedStep) Matched() bool {
	return a.Step != nil
}

// StepSegments returns one segment per inter-step span of the leg, in route
// order. Legs with fewer than two steps have no step segments.
func StepSegments(leg *itinerary.Leg) []StepSegment {
	if leg == nil || len(leg.Steps) < 2 {
		return nil
	}

	segments := make([]StepSegment, 0, len(leg.Steps)-1)
	for i := 0; i+1 < len(leg.Steps); i++ {
		segments = append(segments, StepSegment{
			Start:   leg.Steps[i].Coordinate(),
			End:     leg.Steps[i+1].Coordinate(),
			Ordinal: i,
		})
	}
	return segments
}

// AlignPositionToStep matches the traveler's position to the nearest step of
// the expected leg. Candidates whose route bearing disagrees with the
// direction of travel by more than the configured tolerance are discounted:
// this prevents falsely matching a nearby-but-wrong step where the route
// crosses itself. Candidates beyond the step search radius never match.
//
// Ties are broken by strictly smaller distance first, then by the lower step
// ordinal (earlier in the route).
func AlignPositionToStep(pos *TravelerPosition, cfg Config) AlignedStep {
	if pos == nil || pos.ExpectedLeg == nil || len(pos.ExpectedLeg.Steps) == 0 {
		return AlignedStep{}
	}

	// Direction of travel implied by the segment matched on elapsed time.
	travelBearing := 0.0
	haveBearing := false
	if seg := pos.LegSegmentFromTime; seg != nil && seg.Start != seg.End {
		travelBearing = geo.Bearing(seg.Start, seg.End)
		haveBearing = true
	}

	steps := pos.ExpectedLeg.Steps
	segments := StepSegments(pos.ExpectedLeg)

	best := AlignedStep{}
	bestDistance := math.MaxFloat64
	for i := range steps {
		distance := geo.Haversine(pos.CurrentPosition, steps[i].Coordinate())
		if distance > cfg.StepSearchRadius {
			continue
		}
		if haveBearing && !bearingAgrees(travelBearing, i, segments, cfg.BearingTolerance) {
			continue
		}
		if distance < bestDistance {
			bestDistance = distance
			best = AlignedStep{
				Rank:     int(math.Round(distance)),
				Distance: distance,
				Step:     &steps[i],
			}
		}
	}
	return best
}

// bearingAgrees checks the route's implied bearing at step i against the
// direction of travel. The bearing at a step is that of the step segment
// leaving it; the last step uses the segment arriving at it.
func bearingAgrees(travelBearing float64, step int, segments []StepSegment, tolerance float64) bool {
	if len(segments) == 0 {
		return true
	}
	idx := step
	if idx >= len(segments) {
		idx = len(segments) - 1
	}
	return angularDifference(travelBearing, segments[idx].Bearing()) <= tolerance
}

// angularDifference returns the absolute difference between two compass
// bearings, in [0, 180].
func angularDifference(a, b float64) float64 {
	return math.Abs(math.Mod(a-b+540, 360) - 180)
}
