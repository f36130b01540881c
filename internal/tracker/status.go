package tracker

import (
	"github.com/tripsentry/tripsentry/pkg/geo"
)

// TripStatus classifies where a traveler is relative to their planned trip.
// It is a pure function of the traveler's position, recomputed on every tick,
// never a persisted state machine. Callers may diff consecutive statuses to
// detect events such as a newly deviated trip.
type TripStatus string

const (
	// StatusNoStatus means the traveler's position cannot be attributed to
	// any leg of the trip.
	StatusNoStatus TripStatus = "NO_STATUS"

	// StatusOnSchedule means the traveler is within the expected position
	// boundary.
	StatusOnSchedule TripStatus = "ON_SCHEDULE"

	// StatusAheadOfSchedule means the traveler's position is ahead of expected.
	StatusAheadOfSchedule TripStatus = "AHEAD_OF_SCHEDULE"

	// StatusBehindSchedule means the traveler's position is behind expected.
	StatusBehindSchedule TripStatus = "BEHIND_SCHEDULE"

	// StatusDeviated means the traveler has left the trip route.
	StatusDeviated TripStatus = "DEVIATED"

	// StatusEnded means the traveler has completed their trip.
	StatusEnded TripStatus = "ENDED"
)

// GetTripStatus classifies the traveler's schedule status from their resolved
// position.
//
// The primary check compares the current time against the time window of the
// segment matched by position, provided the traveler is within that segment's
// mode boundary. When the positional match fails the boundary check, a
// position within the boundary of the segment matched by elapsed time still
// counts as on schedule: matching by time alone places the traveler correctly
// on the route even though the nearest-by-distance segment did not qualify.
// The time-match fallback deliberately never yields ahead/behind.
//
// Returns ErrUnsupportedMode (wrapped) when a leg carries a mode with no
// configured boundary.
func GetTripStatus(pos *TravelerPosition, cfg Config) (TripStatus, error) {
	if pos == nil || pos.ExpectedLeg == nil {
		return StatusNoStatus, nil
	}

	if pos.LegSegmentFromPosition != nil {
		within, err := isWithinModeBoundary(pos.CurrentPosition, *pos.LegSegmentFromPosition, cfg)
		if err != nil {
			return StatusNoStatus, err
		}
		if within {
			segmentStart, segmentEnd := pos.LegSegmentFromPosition.TimeWindow(pos.ExpectedLeg.StartTime)
			switch {
			case pos.CurrentTime.Before(segmentStart):
				return StatusAheadOfSchedule, nil
			case pos.CurrentTime.After(segmentEnd):
				return StatusBehindSchedule, nil
			default:
				return StatusOnSchedule, nil
			}
		}
	}

	if pos.LegSegmentFromTime != nil {
		within, err := isWithinModeBoundary(pos.CurrentPosition, *pos.LegSegmentFromTime, cfg)
		if err != nil {
			return StatusNoStatus, err
		}
		if within {
			return StatusOnSchedule, nil
		}
	}

	return StatusDeviated, nil
}

// isWithinModeBoundary checks whether the position is within an acceptable
// cross-track distance of the segment for the segment's transport mode.
func isWithinModeBoundary(position geo.Coordinate, segment LegSegment, cfg Config) (bool, error) {
	boundary, err := cfg.ModeBoundary(segment.Mode)
	if err != nil {
		return false, err
	}
	return geo.DistanceFromLine(segment.Start, segment.End, position) <= boundary, nil
}
