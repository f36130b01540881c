package monitor

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tripsentry/tripsentry/internal/itinerary"
	"github.com/tripsentry/tripsentry/internal/journey"
	"github.com/tripsentry/tripsentry/internal/notify"
	"github.com/tripsentry/tripsentry/internal/tracker"
	"github.com/tripsentry/tripsentry/internal/trip"
)

// TripAnalyzer analyzes a single monitored trip. Implementations must be safe
// for concurrent use: the fleet job invokes them from multiple workers.
type TripAnalyzer interface {
	AnalyzeTrip(ctx context.Context, tripID string) error
}

// AnalyzeFunc adapts a function to the TripAnalyzer interface.
type AnalyzeFunc func(ctx context.Context, tripID string) error

// AnalyzeTrip calls f.
func (f AnalyzeFunc) AnalyzeTrip(ctx context.Context, tripID string) error {
	return f(ctx, tripID)
}

// Analyzer runs the full per-trip analysis pipeline: load trip, itinerary and
// journey, resolve the traveler's position, classify the schedule status,
// build guidance, and hand the outcome to the notification sink.
type Analyzer struct {
	cfg         tracker.Config
	trips       trip.Repository
	journeys    journey.Repository
	itineraries itinerary.Source
	resolver    *tracker.Resolver
	notifier    notify.Notifier
	logger      zerolog.Logger

	// lastStatus remembers each trip's previous tick status so the
	// notification sink can detect changes. It is the only cross-tick state
	// the analyzer holds, and it is advisory: a restart simply reports the
	// first tick with no previous status.
	mu         sync.Mutex
	lastStatus map[string]tracker.TripStatus
}

// AnalyzerConfig holds dependencies for creating an Analyzer.
type AnalyzerConfig struct {
	Tracking    tracker.Config
	Trips       trip.Repository
	Journeys    journey.Repository
	Itineraries itinerary.Source
	Notifier    notify.Notifier
	Logger      zerolog.Logger
}

// NewAnalyzer creates a per-trip analyzer.
func NewAnalyzer(cfg AnalyzerConfig) *Analyzer {
	return &Analyzer{
		cfg:         cfg.Tracking,
		trips:       cfg.Trips,
		journeys:    cfg.Journeys,
		itineraries: cfg.Itineraries,
		resolver:    tracker.NewResolver(cfg.Tracking),
		notifier:    cfg.Notifier,
		logger:      cfg.Logger,
	}
}

// AnalyzeTrip runs one analysis tick for a trip. Errors are per-trip: the
// caller logs them and carries on with the rest of the fleet.
func (a *Analyzer) AnalyzeTrip(ctx context.Context, tripID string) error {
	t, err := a.trips.Get(ctx, tripID)
	if err != nil {
		return fmt.Errorf("loading trip %s: %w", tripID, err)
	}

	jny, err := a.journeys.GetByTripID(ctx, tripID)
	if err != nil {
		return fmt.Errorf("loading journey for trip %s: %w", tripID, err)
	}

	if jny.Ended() {
		return a.report(ctx, tripID, tracker.StatusEnded, tracker.Instruction{Kind: tracker.InstructionNone})
	}

	itin, err := a.itineraries.GetItinerary(ctx, tripID)
	if err != nil {
		return fmt.Errorf("loading itinerary for trip %s: %w", tripID, err)
	}

	pos, err := a.resolver.Resolve(jny, itin, t.Profile)
	if err != nil {
		return fmt.Errorf("resolving position for trip %s: %w", tripID, err)
	}

	status, err := tracker.GetTripStatus(pos, a.cfg)
	if err != nil {
		return fmt.Errorf("classifying trip %s: %w", tripID, err)
	}

	instruction := tracker.BuildInstruction(pos, status, a.cfg)
	return a.report(ctx, tripID, status, instruction)
}

func (a *Analyzer) report(ctx context.Context, tripID string, status tracker.TripStatus, instruction tracker.Instruction) error {
	previous := a.swapStatus(tripID, status)
	update := notify.Update{
		TripID:          tripID,
		Status:          status,
		PreviousStatus:  previous,
		Instruction:     instruction,
		InstructionText: instruction.Render(),
	}
	if err := a.notifier.Notify(ctx, update); err != nil {
		return fmt.Errorf("notifying for trip %s: %w", tripID, err)
	}
	return nil
}

// swapStatus records the new status and returns the previous one.
func (a *Analyzer) swapStatus(tripID string, status tracker.TripStatus) tracker.TripStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.lastStatus == nil {
		a.lastStatus = make(map[string]tracker.TripStatus)
	}
	previous, ok := a.lastStatus[tripID]
	if !ok {
		previous = tracker.StatusNoStatus
	}
	a.lastStatus[tripID] = status
	return previous
}

// Ensure Analyzer implements TripAnalyzer.
var _ TripAnalyzer = (*Analyzer)(nil)
