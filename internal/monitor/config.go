// Package monitor runs the fleet analysis job: per-trip tracking analysis
// fanned out across all monitored trips on each cycle, bounded by a fixed
// worker count and queue capacity.
package monitor

import (
	"runtime"
	"time"
)

// Config holds configuration for the fleet analysis job.
type Config struct {
	// Workers is the number of analysis workers. Default: available CPU
	// cores.
	Workers int

	// QueueCapacity is the capacity of the bounded trip queue. The queue is
	// the only throttle: producers block rather than growing memory.
	// Default: Workers.
	QueueCapacity int

	// EnqueueTimeout bounds how long a cycle waits for queue space before
	// aborting. Default: 30 seconds.
	EnqueueTimeout time.Duration

	// PollInterval is the cadence at which the orchestrator checks queue
	// depth and worker idle flags during drain. Default: 250ms.
	PollInterval time.Duration

	// ReportEvery is how often drain progress is logged. Default: 1 minute.
	ReportEvery time.Duration

	// DrainCeiling bounds how long a cycle waits for workers to finish.
	// Default: 30 minutes.
	DrainCeiling time.Duration

	// TripTimeout bounds a single trip's analysis. Default: 30 seconds.
	TripTimeout time.Duration
}

// DefaultConfig returns the default fleet analysis configuration.
func DefaultConfig() Config {
	workers := runtime.NumCPU()
	return Config{
		Workers:        workers,
		QueueCapacity:  workers,
		EnqueueTimeout: 30 * time.Second,
		PollInterval:   250 * time.Millisecond,
		ReportEvery:    time.Minute,
		DrainCeiling:   30 * time.Minute,
		TripTimeout:    30 * time.Second,
	}
}

// withDefaults fills zero fields with defaults.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	if c.QueueCapacity <= 0 {
		c.QueueCapacity = c.Workers
	}
	if c.EnqueueTimeout <= 0 {
		c.EnqueueTimeout = d.EnqueueTimeout
	}
	if c.PollInterval <= 0 {
		c.PollInterval = d.PollInterval
	}
	if c.ReportEvery <= 0 {
		c.ReportEvery = d.ReportEvery
	}
	if c.DrainCeiling <= 0 {
		c.DrainCeiling = d.DrainCeiling
	}
	if c.TripTimeout <= 0 {
		c.TripTimeout = d.TripTimeout
	}
	return c
}
