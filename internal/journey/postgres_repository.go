package journey

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository. Journeys
// live in the tracked_journeys table; samples are rows in journey_locations,
// ordered by recorded_at.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL journey repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Get retrieves a journey by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*TrackedJourney, error) {
	query := `
		SELECT id, trip_id, notified_alerts, started_at, ended_at
		FROM tracked_journeys
		WHERE id = $1
	`
	return r.scanJourney(ctx, query, id)
}

// GetByTripID retrieves the active journey for a monitored trip.
func (r *PostgresRepository) GetByTripID(ctx context.Context, tripID string) (*TrackedJourney, error) {
	query := `
		SELECT id, trip_id, notified_alerts, started_at, ended_at
		FROM tracked_journeys
		WHERE trip_id = $1
		ORDER BY started_at DESC
		LIMIT 1
	`
	return r.scanJourney(ctx, query, tripID)
}

func (r *PostgresRepository) scanJourney(ctx context.Context, query string, args ...interface{}) (*TrackedJourney, error) {
	var j TrackedJourney
	var endedAt *time.Time

	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&j.ID,
		&j.TripID,
		&j.NotifiedAlerts,
		&j.StartedAt,
		&endedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrJourneyNotFound
		}
		return nil, err
	}
	if endedAt != nil {
		j.EndedAt = *endedAt
	}

	if err := r.loadLocations(ctx, &j); err != nil {
		return nil, err
	}
	return &j, nil
}

func (r *PostgresRepository) loadLocations(ctx context.Context, j *TrackedJourney) error {
	query := `
		SELECT lat, lon, recorded_at
		FROM journey_locations
		WHERE journey_id = $1
		ORDER BY recorded_at ASC
	`
	rows, err := r.pool.Query(ctx, query, j.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var loc Location
		if err := rows.Scan(&loc.Lat, &loc.Lon, &loc.Timestamp); err != nil {
			return err
		}
		j.Locations = append(j.Locations, loc)
	}
	return rows.Err()
}

// Create starts tracking a new journey.
func (r *PostgresRepository) Create(ctx context.Context, j *TrackedJourney) error {
	if j.ID == "" {
		j.ID = NewID()
	}
	query := `
		INSERT INTO tracked_journeys (id, trip_id, notified_alerts, started_at, ended_at)
		VALUES ($1, $2, $3, $4, NULL)
	`
	_, err := r.pool.Exec(ctx, query, j.ID, j.TripID, j.NotifiedAlerts, j.StartedAt)
	if err != nil {
		return fmt.Errorf("inserting tracked journey: %w", err)
	}
	if len(j.Locations) > 0 {
		return r.AppendLocations(ctx, j.ID, j.Locations)
	}
	return nil
}

// AppendLocations appends location samples to a journey.
func (r *PostgresRepository) AppendLocations(ctx context.Context, id string, locations []Location) error {
	var endedAt *time.Time
	err := r.pool.QueryRow(ctx, `SELECT ended_at FROM tracked_journeys WHERE id = $1`, id).Scan(&endedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrJourneyNotFound
		}
		return err
	}
	if endedAt != nil {
		return ErrJourneyEnded
	}

	batch := &pgx.Batch{}
	for _, loc := range locations {
		batch.Queue(
			`INSERT INTO journey_locations (journey_id, lat, lon, recorded_at) VALUES ($1, $2, $3, $4)`,
			id, loc.Lat, loc.Lon, loc.Timestamp,
		)
	}
	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range locations {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("appending journey location: %w", err)
		}
	}
	return nil
}

// End terminates a journey at the given time.
func (r *PostgresRepository) End(ctx context.Context, id string, endedAt time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE tracked_journeys SET ended_at = $2 WHERE id = $1`,
		id, endedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrJourneyNotFound
	}
	return nil
}

// Ensure PostgresRepository implements Repository.
var _ Repository = (*PostgresRepository)(nil)
