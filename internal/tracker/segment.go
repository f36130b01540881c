package tracker

import (
	"sync"
	"time"

	"github.com/tripsentry/tripsentry/internal/itinerary"
	"github.com/tripsentry/tripsentry/pkg/geo"
)

// LegSegment is a derived, non-persisted unit covering the span between two
// adjacent vertices of a leg's geometry. Segments partition the leg under a
// constant-speed assumption: segment duration is proportional to segment
// length over total leg length, scaled by leg duration.
type LegSegment struct {
	Start geo.Coordinate
	End   geo.Coordinate

	// TimeInSegment is the seconds needed to traverse this segment.
	TimeInSegment float64

	// CumulativeTime is the seconds from the leg's start to this segment's end.
	CumulativeTime float64

	// Mode is inherited from the leg.
	Mode itinerary.Mode
}

// StartOffset returns the seconds from the leg's start to this segment's start.
func (s LegSegment) StartOffset() float64 {
	return s.CumulativeTime - s.TimeInSegment
}

// TimeWindow returns the absolute time window of the segment given the leg's
// scheduled start time.
func (s LegSegment) TimeWindow(legStart time.Time) (start, end time.Time) {
	return legStart.Add(secondsToDuration(s.StartOffset())),
		legStart.Add(secondsToDuration(s.CumulativeTime))
}

// InterpolateLeg splits a leg's geometry into an ordered sequence of time and
// space segments. Traversal time is spread across segments assuming uniform
// speed over the whole leg; this is a documented approximation, not a measured
// speed profile. Adjacent segments share coordinates exactly:
// segment[i].End == segment[i+1].Start.
//
// Malformed or zero-length geometry degrades to a single zero-length,
// zero-time segment so a broken leg never aborts the analysis.
func InterpolateLeg(leg *itinerary.Leg) []LegSegment {
	coords, err := geo.DecodePolyline(leg.Geometry)
	if err != nil || len(coords) < 2 {
		return []LegSegment{degenerateSegment(leg, coords)}
	}

	total := geo.Length(coords)
	if total == 0 {
		return []LegSegment{degenerateSegment(leg, coords)}
	}

	segments := make([]LegSegment, 0, len(coords)-1)
	cumulative := 0.0
	for i := 1; i < len(coords); i++ {
		length := geo.Haversine(coords[i-1], coords[i])
		timeInSegment := leg.Duration * (length / total)
		cumulative += timeInSegment
		segments = append(segments, LegSegment{
			Start:          coords[i-1],
			End:            coords[i],
			TimeInSegment:  timeInSegment,
			CumulativeTime: cumulative,
			Mode:           leg.Mode,
		})
	}
	return segments
}

func degenerateSegment(leg *itinerary.Leg, coords []geo.Coordinate) LegSegment {
	point := leg.From.Coordinate()
	if len(coords) > 0 {
		point = coords[0]
	}
	return LegSegment{Start: point, End: point, Mode: leg.Mode}
}

// SegmentFromPosition returns the segment nearest to the given position by
// cross-track distance, or nil for an empty segment list.
func SegmentFromPosition(segments []LegSegment, position geo.Coordinate) *LegSegment {
	var nearest *LegSegment
	nearestDistance := 0.0
	for i := range segments {
		d := geo.DistanceFromLine(segments[i].Start, segments[i].End, position)
		if nearest == nil || d < nearestDistance {
			nearest = &segments[i]
			nearestDistance = d
		}
	}
	return nearest
}

// SegmentFromTime returns the segment whose time window contains the elapsed
// time since the leg's scheduled start, or nil if the elapsed time falls
// outside every segment.
func SegmentFromTime(segments []LegSegment, legStart time.Time, now time.Time) *LegSegment {
	elapsed := now.Sub(legStart).Seconds()
	for i := range segments {
		if elapsed >= segments[i].StartOffset() && elapsed <= segments[i].CumulativeTime {
			return &segments[i]
		}
	}
	return nil
}

// SegmentCache memoizes InterpolateLeg results. Legs are immutable once
// planned, so interpolation is a pure function of the leg and safe to reuse
// across repeated analysis ticks of the same itinerary.
type SegmentCache struct {
	mu       sync.RWMutex
	segments map[*itinerary.Leg][]LegSegment
}

// NewSegmentCache creates an empty segment cache.
func NewSegmentCache() *SegmentCache {
	return &SegmentCache{segments: make(map[*itinerary.Leg][]LegSegment)}
}

// Segments returns the interpolated segments for a leg, computing and caching
// them on first use.
func (c *SegmentCache) Segments(leg *itinerary.Leg) []LegSegment {
	c.mu.RLock()
	cached, ok := c.segments[leg]
	c.mu.RUnlock()
	if ok {
		return cached
	}

	computed := InterpolateLeg(leg)

	c.mu.Lock()
	defer c.mu.Unlock()
	if cached, ok := c.segments[leg]; ok {
		return cached
	}
	c.segments[leg] = computed
	return computed
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}
