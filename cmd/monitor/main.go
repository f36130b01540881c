// Package main provides the entrypoint for the TripSentry monitor: the fleet
// analysis engine that tracks every monitored trip against its itinerary.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/tripsentry/tripsentry/internal/database"
	"github.com/tripsentry/tripsentry/internal/itinerary"
	"github.com/tripsentry/tripsentry/internal/itinerary/planner"
	"github.com/tripsentry/tripsentry/internal/journey"
	"github.com/tripsentry/tripsentry/internal/monitor"
	"github.com/tripsentry/tripsentry/internal/notify"
	"github.com/tripsentry/tripsentry/internal/ops"
	"github.com/tripsentry/tripsentry/internal/telemetry"
	"github.com/tripsentry/tripsentry/internal/tracker"
	"github.com/tripsentry/tripsentry/internal/trip"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "tripsentry-monitor"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting TripSentry monitor")

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"
	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Persistence: PostgreSQL when configured, in-memory otherwise. The
	// in-memory repositories keep local development self-contained.
	var (
		pool     *pgxpool.Pool
		trips    trip.Repository
		journeys journey.Repository
	)
	if os.Getenv("DB_ENABLED") == "true" {
		dbConfig := database.ConfigFromEnv()
		pool, err = database.Connect(ctx, dbConfig)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		log.Info().
			Str("host", dbConfig.Host).
			Int("port", dbConfig.Port).
			Str("database", dbConfig.Database).
			Msg("database connected")

		trips = trip.NewPostgresRepository(pool)
		journeys = journey.NewPostgresRepository(pool)
	} else {
		log.Warn().Msg("DB_ENABLED is not true, using in-memory repositories")
		trips = trip.NewInMemoryRepository()
		journeys = journey.NewInMemoryRepository()
	}

	// Itineraries come from the trip planning service when configured.
	var itineraries itinerary.Source
	if plannerURL := os.Getenv("PLANNER_BASE_URL"); plannerURL != "" {
		itineraries = planner.NewClient(planner.ClientConfig{
			BaseURL: plannerURL,
			APIKey:  os.Getenv("PLANNER_API_KEY"),
			Logger:  log,
		})
		log.Info().Str("base_url", plannerURL).Msg("planner client initialized")
	} else {
		log.Warn().Msg("PLANNER_BASE_URL not set, using static itinerary source")
		itineraries = itinerary.NewStaticSource()
	}

	// Notifications go to Pub/Sub when configured, the log otherwise.
	var notifier notify.Notifier
	projectID := os.Getenv("PUBSUB_PROJECT_ID")
	topicName := os.Getenv("PUBSUB_TOPIC")
	if projectID != "" && topicName != "" {
		psNotifier, psErr := notify.NewPubSubNotifier(ctx, notify.PubSubConfig{
			ProjectID: projectID,
			TopicName: topicName,
			Logger:    log,
		})
		if psErr != nil {
			log.Fatal().Err(psErr).Msg("failed to initialize pubsub notifier")
		}
		defer func() {
			if closeErr := psNotifier.Close(); closeErr != nil {
				log.Error().Err(closeErr).Msg("failed to close pubsub notifier")
			}
		}()
		notifier = psNotifier
		log.Info().Str("topic", topicName).Msg("pubsub notifier initialized")
	} else {
		log.Warn().Msg("PUBSUB_PROJECT_ID/PUBSUB_TOPIC not set, logging notifications")
		notifier = notify.NewLogNotifier(log)
	}

	analyzer := monitor.NewAnalyzer(monitor.AnalyzerConfig{
		Tracking:    tracker.DefaultConfig(),
		Trips:       trips,
		Journeys:    journeys,
		Itineraries: itineraries,
		Notifier:    notifier,
		Logger:      log,
	})

	jobConfig := monitor.DefaultConfig()
	if workers := os.Getenv("MONITOR_WORKERS"); workers != "" {
		if n, convErr := strconv.Atoi(workers); convErr == nil && n > 0 {
			jobConfig.Workers = n
			jobConfig.QueueCapacity = n
		}
	}

	job := monitor.NewJob(monitor.JobConfig{
		Config:   jobConfig,
		Logger:   log,
		Trips:    trips,
		Analyzer: analyzer,
		Meter:    tp.Meter,
	})
	job.Start(ctx)

	// Ops HTTP surface for Cloud Run health checks and metrics scraping.
	opsServer := ops.NewServer(ops.ServerConfig{
		Addr:      ":" + port,
		Version:   Version,
		BuildTime: BuildTime,
		Logger:    log,
		Metrics:   job,
		Ready: func(ctx context.Context) error {
			if pool != nil {
				return pool.Ping(ctx)
			}
			return nil
		},
	})
	go func() {
		log.Info().Str("addr", opsServer.Addr).Msg("ops server listening")
		if serveErr := opsServer.ListenAndServe(); serveErr != nil && serveErr != http.ErrServerClosed {
			log.Error().Err(serveErr).Msg("ops server error")
		}
	}()

	cycleInterval := 30 * time.Second
	if interval := os.Getenv("MONITOR_INTERVAL"); interval != "" {
		if d, parseErr := time.ParseDuration(interval); parseErr == nil && d > 0 {
			cycleInterval = d
		}
	}

	go func() {
		ticker := time.NewTicker(cycleInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if cycleErr := job.RunCycle(ctx); cycleErr != nil {
					log.Error().Err(cycleErr).Msg("fleet analysis cycle failed")
				}
			}
		}
	}()
	log.Info().Dur("interval", cycleInterval).Msg("fleet analysis scheduled")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down monitor")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := opsServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("ops server forced to shutdown")
	}

	log.Info().Msg("monitor stopped")
}
