// Package tracker implements the trip tracking analysis: leg segmentation,
// position and time matching, schedule status classification and turn-by-turn
// instruction generation.
package tracker

import (
	"errors"
	"fmt"

	"github.com/tripsentry/tripsentry/internal/itinerary"
)

// ErrUnsupportedMode indicates a transport mode with no configured on-route
// boundary. This is fatal for the trip's analysis tick.
var ErrUnsupportedMode = errors.New("unsupported transport mode")

// Config holds the numeric thresholds used by the tracking analysis. It is
// passed explicitly into the analysis entry points so tests can vary
// thresholds without mutating shared state.
type Config struct {
	// Per-mode on-route boundaries: the maximum acceptable cross-track
	// distance, in meters, to still count as "on route".
	WalkBoundary    float64
	BicycleBoundary float64
	BusBoundary     float64
	SubwayBoundary  float64
	TramBoundary    float64
	RailBoundary    float64

	// ImmediateRadius is the distance in meters under which an immediate
	// instruction is given. Default: 2.
	ImmediateRadius float64

	// UpcomingRadius is the distance in meters under which an upcoming
	// instruction is given. Default: 10.
	UpcomingRadius float64

	// StepSearchRadius is the maximum distance in meters at which a position
	// can be aligned to a step. Default: 50.
	StepSearchRadius float64

	// BearingTolerance is the maximum angular difference in degrees between
	// the direction of travel and a step segment's bearing for the step to
	// remain an alignment candidate. Default: 45.
	BearingTolerance float64

	// AlightWarningRadius is the distance in meters from a transit leg's
	// alighting stop at which the "get off soon" instruction triggers.
	// Default: 200.
	AlightWarningRadius float64
}

// DefaultConfig returns the default tracking thresholds.
func DefaultConfig() Config {
	return Config{
		WalkBoundary:        5,
		BicycleBoundary:     10,
		BusBoundary:         20,
		SubwayBoundary:      100,
		TramBoundary:        100,
		RailBoundary:        200,
		ImmediateRadius:     2,
		UpcomingRadius:      10,
		StepSearchRadius:    50,
		BearingTolerance:    45,
		AlightWarningRadius: 200,
	}
}

// ModeBoundary returns the acceptable on-route boundary in meters for the
// given mode. Unknown modes are a hard error.
func (c Config) ModeBoundary(mode itinerary.Mode) (float64, error) {
	switch mode {
	case itinerary.ModeWalk:
		return c.WalkBoundary, nil
	case itinerary.ModeBicycle:
		return c.BicycleBoundary, nil
	case itinerary.ModeBus:
		return c.BusBoundary, nil
	case itinerary.ModeSubway:
		return c.SubwayBoundary, nil
	case itinerary.ModeTram:
		return c.TramBoundary, nil
	case itinerary.ModeRail:
		return c.RailBoundary, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedMode, mode)
	}
}
