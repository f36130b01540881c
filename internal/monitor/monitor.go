package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/metric"

	"github.com/tripsentry/tripsentry/internal/trip"
)

// Cycle errors.
var (
	// ErrQueueTimeout indicates the bounded queue could not accept more work
	// within the enqueue timeout. Fatal for the whole cycle.
	ErrQueueTimeout = errors.New("timed out enqueueing trip for analysis")

	// ErrDrainTimeout indicates workers failed to finish within the drain
	// ceiling.
	ErrDrainTimeout = errors.New("timed out waiting for analysis workers to drain")

	// ErrNotStarted indicates RunCycle was called before Start.
	ErrNotStarted = errors.New("fleet analysis job not started")
)

// Job fans the per-trip analysis out across all monitored trips. Workers are
// long-lived across cycles and carry no data between trips; each cycle uses
// the bounded queue as its only throttle.
type Job struct {
	cfg      Config
	logger   zerolog.Logger
	trips    trip.Repository
	analyzer TripAnalyzer

	queue   chan string
	workers []*workerState
	started atomic.Bool

	metrics *Metrics

	tripsAnalyzed metric.Int64Counter
	tripsFailed   metric.Int64Counter
	cyclesAborted metric.Int64Counter
}

// workerState holds a worker's idle flag. The flag has a single writer (the
// worker) and a single reader (the orchestrator), so an atomic boolean gives
// all the visibility required; no mutex is needed.
type workerState struct {
	idle atomic.Bool
}

// Metrics tracks fleet analysis statistics across cycles.
type Metrics struct {
	mu sync.RWMutex

	CyclesCompleted   int64
	CyclesAborted     int64
	TripsAnalyzed     int64
	TripsFailed       int64
	LastCycleAt       time.Time
	LastCycleDuration time.Duration
	LastCycleTrips    int
}

// JobConfig holds dependencies for creating a fleet analysis job.
type JobConfig struct {
	Config   Config
	Logger   zerolog.Logger
	Trips    trip.Repository
	Analyzer TripAnalyzer
	Meter    metric.Meter
}

// NewJob creates a fleet analysis job. Call Start before RunCycle.
func NewJob(cfg JobConfig) *Job {
	config := cfg.Config.withDefaults()

	j := &Job{
		cfg:      config,
		logger:   cfg.Logger,
		trips:    cfg.Trips,
		analyzer: cfg.Analyzer,
		queue:    make(chan string, config.QueueCapacity),
		metrics:  &Metrics{},
	}

	if cfg.Meter != nil {
		j.tripsAnalyzed, _ = cfg.Meter.Int64Counter("fleet.trips_analyzed")
		j.tripsFailed, _ = cfg.Meter.Int64Counter("fleet.trips_failed")
		j.cyclesAborted, _ = cfg.Meter.Int64Counter("fleet.cycles_aborted")
	}

	return j
}

// Start launches the worker pool. Workers live until the context is
// cancelled.
func (j *Job) Start(ctx context.Context) {
	if !j.started.CompareAndSwap(false, true) {
		return
	}
	j.workers = make([]*workerState, j.cfg.Workers)
	for i := range j.workers {
		ws := &workerState{}
		ws.idle.Store(true)
		j.workers[i] = ws
		go j.worker(ctx, ws)
	}
	j.logger.Info().
		Int("workers", j.cfg.Workers).
		Int("queue_capacity", j.cfg.QueueCapacity).
		Msg("fleet analysis workers started")
}

func (j *Job) worker(ctx context.Context, ws *workerState) {
	for {
		select {
		case <-ctx.Done():
			return
		case tripID, ok := <-j.queue:
			if !ok {
				return
			}
			ws.idle.Store(false)
			j.analyzeOne(ctx, tripID)
			ws.idle.Store(true)
		}
	}
}

// analyzeOne runs one trip's analysis with a per-trip timeout. Errors are
// isolated here so one malformed trip never blocks the fleet cycle.
func (j *Job) analyzeOne(ctx context.Context, tripID string) {
	tripCtx, cancel := context.WithTimeout(ctx, j.cfg.TripTimeout)
	defer cancel()

	if err := j.analyzer.AnalyzeTrip(tripCtx, tripID); err != nil {
		j.logger.Warn().Err(err).Str("trip_id", tripID).Msg("trip analysis failed, skipping for this cycle")
		j.addTripResult(false)
		if j.tripsFailed != nil {
			j.tripsFailed.Add(ctx, 1)
		}
		return
	}
	j.addTripResult(true)
	if j.tripsAnalyzed != nil {
		j.tripsAnalyzed.Add(ctx, 1)
	}
}

// RunCycle analyzes every monitored trip once. Trip identifiers are read in a
// single bulk query (ids only; full data is fetched lazily per worker) and
// pushed through the bounded queue. A cycle that cannot enqueue within the
// timeout, or drain within the ceiling, is abandoned as a whole: workers stay
// alive for the next scheduled cycle and no partial result is reported.
func (j *Job) RunCycle(ctx context.Context) error {
	if !j.started.Load() {
		return ErrNotStarted
	}

	start := time.Now()
	j.logger.Info().Msg("fleet analysis cycle started")

	ids, err := j.trips.ListIDs(ctx)
	if err != nil {
		return fmt.Errorf("listing monitored trips: %w", err)
	}

	for _, id := range ids {
		if err := j.enqueue(ctx, id); err != nil {
			j.abortCycle(ctx, err)
			return err
		}
	}

	if err := j.waitForDrain(ctx, start); err != nil {
		j.abortCycle(ctx, err)
		return err
	}

	duration := time.Since(start)
	j.completeCycle(len(ids), duration)
	j.logger.Info().
		Int("trips", len(ids)).
		Dur("duration", duration).
		Msg("fleet analysis cycle completed")
	return nil
}

func (j *Job) enqueue(ctx context.Context, tripID string) error {
	timer := time.NewTimer(j.cfg.EnqueueTimeout)
	defer timer.Stop()

	select {
	case j.queue <- tripID:
		return nil
	case <-timer.C:
		return fmt.Errorf("%w: trip %s after %s", ErrQueueTimeout, tripID, j.cfg.EnqueueTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// waitForDrain polls queue depth and worker idle flags until the queue is
// empty and every worker reports idle. Completion requires two consecutive
// clean observations: this closes the instant between a worker taking the
// last queue entry and clearing its idle flag.
func (j *Job) waitForDrain(ctx context.Context, cycleStart time.Time) error {
	ticker := time.NewTicker(j.cfg.PollInterval)
	defer ticker.Stop()

	lastReport := time.Now()
	consecutiveIdle := 0

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if len(j.queue) == 0 && j.allIdle() {
			consecutiveIdle++
			if consecutiveIdle >= 2 {
				return nil
			}
			continue
		}
		consecutiveIdle = 0

		if time.Since(cycleStart) >= j.cfg.DrainCeiling {
			return fmt.Errorf("%w: after %s", ErrDrainTimeout, j.cfg.DrainCeiling)
		}

		if time.Since(lastReport) >= j.cfg.ReportEvery {
			lastReport = time.Now()
			j.logger.Info().
				Int("queued", len(j.queue)).
				Int("busy_workers", j.busyWorkers()).
				Dur("elapsed", time.Since(cycleStart)).
				Msg("fleet analysis cycle in progress")
		}
	}
}

func (j *Job) allIdle() bool {
	for _, ws := range j.workers {
		if !ws.idle.Load() {
			return false
		}
	}
	return true
}

func (j *Job) busyWorkers() int {
	busy := 0
	for _, ws := range j.workers {
		if !ws.idle.Load() {
			busy++
		}
	}
	return busy
}

func (j *Job) abortCycle(ctx context.Context, err error) {
	j.logger.Error().Err(err).Msg("fleet analysis cycle aborted")
	j.metrics.mu.Lock()
	j.metrics.CyclesAborted++
	j.metrics.mu.Unlock()
	if j.cyclesAborted != nil {
		j.cyclesAborted.Add(ctx, 1)
	}
}

func (j *Job) completeCycle(trips int, duration time.Duration) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()
	j.metrics.CyclesCompleted++
	j.metrics.LastCycleAt = time.Now()
	j.metrics.LastCycleDuration = duration
	j.metrics.LastCycleTrips = trips
}

func (j *Job) addTripResult(success bool) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()
	if success {
		j.metrics.TripsAnalyzed++
	} else {
		j.metrics.TripsFailed++
	}
}

// GetMetrics returns a copy of the current metrics.
func (j *Job) GetMetrics() Metrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()
	return Metrics{
		CyclesCompleted:   j.metrics.CyclesCompleted,
		CyclesAborted:     j.metrics.CyclesAborted,
		TripsAnalyzed:     j.metrics.TripsAnalyzed,
		TripsFailed:       j.metrics.TripsFailed,
		LastCycleAt:       j.metrics.LastCycleAt,
		LastCycleDuration: j.metrics.LastCycleDuration,
		LastCycleTrips:    j.metrics.LastCycleTrips,
	}
}

// MetricsSnapshot returns the current metrics as a map for the ops surface.
func (j *Job) MetricsSnapshot() map[string]interface{} {
	m := j.GetMetrics()
	return map[string]interface{}{
		"cycles_completed":    m.CyclesCompleted,
		"cycles_aborted":      m.CyclesAborted,
		"trips_analyzed":      m.TripsAnalyzed,
		"trips_failed":        m.TripsFailed,
		"last_cycle_at":       m.LastCycleAt,
		"last_cycle_duration": m.LastCycleDuration.String(),
		"last_cycle_trips":    m.LastCycleTrips,
	}
}
