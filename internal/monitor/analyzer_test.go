package monitor_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripsentry/tripsentry/internal/itinerary"
	"github.com/tripsentry/tripsentry/internal/journey"
	"github.com/tripsentry/tripsentry/internal/monitor"
	"github.com/tripsentry/tripsentry/internal/notify"
	"github.com/tripsentry/tripsentry/internal/tracker"
	"github.com/tripsentry/tripsentry/internal/trip"
	"github.com/tripsentry/tripsentry/pkg/geo"
)

var fixtureStart = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

// collectNotifier records updates for assertions.
type collectNotifier struct {
	mu      sync.Mutex
	updates []notify.Update
}

func (c *collectNotifier) Notify(_ context.Context, update notify.Update) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updates = append(c.updates, update)
	return nil
}

func (c *collectNotifier) all() []notify.Update {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]notify.Update(nil), c.updates...)
}

// walkItinerary is a single 120s/150m northbound walk leg.
func walkItinerary(base geo.Coordinate) *itinerary.Itinerary {
	coords := make([]geo.Coordinate, 6)
	coords[0] = base
	for i := 1; i < len(coords); i++ {
		coords[i] = geo.DestinationPoint(coords[i-1], 30, 0)
	}

	end := fixtureStart.Add(2 * time.Minute)
	leg := itinerary.Leg{
		Mode:      itinerary.ModeWalk,
		StartTime: fixtureStart,
		EndTime:   end,
		Duration:  120,
		Distance:  150,
		Geometry:  geo.EncodePolyline(coords),
		From:      itinerary.Place{Name: "Home", Lat: coords[0].Lat, Lon: coords[0].Lon},
		To:        itinerary.Place{Name: "Office", Lat: coords[5].Lat, Lon: coords[5].Lon},
	}
	return &itinerary.Itinerary{StartTime: fixtureStart, EndTime: end, Legs: []itinerary.Leg{leg}}
}

type analyzerFixture struct {
	analyzer *monitor.Analyzer
	trips    *trip.InMemoryRepository
	journeys *journey.InMemoryRepository
	source   *itinerary.StaticSource
	notified *collectNotifier
}

func newAnalyzerFixture(t *testing.T) *analyzerFixture {
	t.Helper()
	f := &analyzerFixture{
		trips:    trip.NewInMemoryRepository(),
		journeys: journey.NewInMemoryRepository(),
		source:   itinerary.NewStaticSource(),
		notified: &collectNotifier{},
	}
	f.analyzer = monitor.NewAnalyzer(monitor.AnalyzerConfig{
		Tracking:    tracker.DefaultConfig(),
		Trips:       f.trips,
		Journeys:    f.journeys,
		Itineraries: f.source,
		Notifier:    f.notified,
		Logger:      zerolog.Nop(),
	})
	return f
}

func (f *analyzerFixture) seedTrip(t *testing.T, tripID string, at geo.Coordinate, when time.Time) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.trips.Create(ctx, &trip.MonitoredTrip{
		ID:      tripID,
		Profile: &trip.RiderProfile{Locale: "en-US"},
	}))
	require.NoError(t, f.journeys.Create(ctx, &journey.TrackedJourney{
		TripID:    tripID,
		StartedAt: fixtureStart,
		Locations: []journey.Location{{Lat: at.Lat, Lon: at.Lon, Timestamp: when}},
	}))
}

func TestAnalyzer_AnalyzeTrip_OnSchedule(t *testing.T) {
	f := newAnalyzerFixture(t)
	base := geo.Coordinate{Lat: 33.95684, Lon: -83.97971}
	f.source.Put("trp_1", walkItinerary(base))

	// 40m along the route 36s in: exactly where the plan expects.
	f.seedTrip(t, "trp_1", geo.DestinationPoint(base, 40, 0), fixtureStart.Add(36*time.Second))

	require.NoError(t, f.analyzer.AnalyzeTrip(context.Background(), "trp_1"))

	updates := f.notified.all()
	require.Len(t, updates, 1)
	assert.Equal(t, "trp_1", updates[0].TripID)
	assert.Equal(t, tracker.StatusOnSchedule, updates[0].Status)
	assert.Equal(t, tracker.StatusNoStatus, updates[0].PreviousStatus)
}

func TestAnalyzer_AnalyzeTrip_ReportsPreviousStatus(t *testing.T) {
	f := newAnalyzerFixture(t)
	base := geo.Coordinate{Lat: 33.95684, Lon: -83.97971}
	f.source.Put("trp_1", walkItinerary(base))
	f.seedTrip(t, "trp_1", geo.DestinationPoint(base, 40, 0), fixtureStart.Add(36*time.Second))

	ctx := context.Background()
	require.NoError(t, f.analyzer.AnalyzeTrip(ctx, "trp_1"))

	// The traveler wanders off the route before the next tick.
	jny, err := f.journeys.GetByTripID(ctx, "trp_1")
	require.NoError(t, err)
	offRoute := geo.DestinationPoint(geo.DestinationPoint(base, 40, 0), 80, 90)
	require.NoError(t, f.journeys.AppendLocations(ctx, jny.ID, []journey.Location{
		{Lat: offRoute.Lat, Lon: offRoute.Lon, Timestamp: fixtureStart.Add(50 * time.Second)},
	}))

	require.NoError(t, f.analyzer.AnalyzeTrip(ctx, "trp_1"))

	updates := f.notified.all()
	require.Len(t, updates, 2)
	assert.Equal(t, tracker.StatusDeviated, updates[1].Status)
	assert.Equal(t, tracker.StatusOnSchedule, updates[1].PreviousStatus)
	assert.Equal(t, "Head to Office", updates[1].InstructionText)
}

func TestAnalyzer_AnalyzeTrip_EndedJourney(t *testing.T) {
	f := newAnalyzerFixture(t)
	base := geo.Coordinate{Lat: 33.95684, Lon: -83.97971}
	f.source.Put("trp_1", walkItinerary(base))
	f.seedTrip(t, "trp_1", base, fixtureStart)

	ctx := context.Background()
	jny, err := f.journeys.GetByTripID(ctx, "trp_1")
	require.NoError(t, err)
	require.NoError(t, f.journeys.End(ctx, jny.ID, fixtureStart.Add(3*time.Minute)))

	require.NoError(t, f.analyzer.AnalyzeTrip(ctx, "trp_1"))

	updates := f.notified.all()
	require.Len(t, updates, 1)
	assert.Equal(t, tracker.StatusEnded, updates[0].Status)
	assert.Equal(t, "NO_INSTRUCTION", updates[0].InstructionText)
}

func TestAnalyzer_AnalyzeTrip_MissingTrip(t *testing.T) {
	f := newAnalyzerFixture(t)

	err := f.analyzer.AnalyzeTrip(context.Background(), "trp_missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, trip.ErrTripNotFound)
	assert.Empty(t, f.notified.all())
}

func TestAnalyzer_AnalyzeTrip_MissingItinerary(t *testing.T) {
	f := newAnalyzerFixture(t)
	base := geo.Coordinate{Lat: 33.95684, Lon: -83.97971}
	f.seedTrip(t, "trp_1", base, fixtureStart)

	err := f.analyzer.AnalyzeTrip(context.Background(), "trp_1")
	require.Error(t, err)
	assert.ErrorIs(t, err, itinerary.ErrItineraryNotFound)
}

func TestAnalyzer_AnalyzeTrip_EmptyJourney(t *testing.T) {
	f := newAnalyzerFixture(t)
	base := geo.Coordinate{Lat: 33.95684, Lon: -83.97971}
	f.source.Put("trp_1", walkItinerary(base))

	ctx := context.Background()
	require.NoError(t, f.trips.Create(ctx, &trip.MonitoredTrip{ID: "trp_1"}))
	require.NoError(t, f.journeys.Create(ctx, &journey.TrackedJourney{
		TripID:    "trp_1",
		StartedAt: fixtureStart,
	}))

	err := f.analyzer.AnalyzeTrip(ctx, "trp_1")
	require.Error(t, err)
	assert.ErrorIs(t, err, tracker.ErrEmptyJourney)
}

func TestAnalyzer_WithJob_EndToEnd(t *testing.T) {
	f := newAnalyzerFixture(t)
	base := geo.Coordinate{Lat: 33.95684, Lon: -83.97971}
	f.source.Put("trp_1", walkItinerary(base))
	f.seedTrip(t, "trp_1", geo.DestinationPoint(base, 40, 0), fixtureStart.Add(36*time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	job := monitor.NewJob(monitor.JobConfig{
		Config:   fastConfig(2),
		Logger:   zerolog.Nop(),
		Trips:    f.trips,
		Analyzer: f.analyzer,
	})
	job.Start(ctx)

	require.NoError(t, job.RunCycle(ctx))

	updates := f.notified.all()
	require.Len(t, updates, 1)
	assert.Equal(t, tracker.StatusOnSchedule, updates[0].Status)
	assert.Equal(t, int64(1), job.GetMetrics().TripsAnalyzed)
}
