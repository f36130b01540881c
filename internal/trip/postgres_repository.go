package trip

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL trip repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// ListIDs returns the identifiers of all monitored trips in one bulk read.
func (r *PostgresRepository) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM monitored_trips ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Get retrieves a monitored trip by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*MonitoredTrip, error) {
	query := `
		SELECT id, user_id, label, mobility_mode, locale, created_at, updated_at
		FROM monitored_trips
		WHERE id = $1
	`

	var t MonitoredTrip
	var mobilityMode, locale *string

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&t.ID,
		&t.UserID,
		&t.Label,
		&mobilityMode,
		&locale,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}

	if mobilityMode != nil || locale != nil {
		t.Profile = &RiderProfile{}
		if mobilityMode != nil {
			t.Profile.MobilityMode = *mobilityMode
		}
		if locale != nil {
			t.Profile.Locale = *locale
		}
	}
	return &t, nil
}

// Create registers a trip for monitoring.
func (r *PostgresRepository) Create(ctx context.Context, t *MonitoredTrip) error {
	query := `
		INSERT INTO monitored_trips (id, user_id, label, mobility_mode, locale, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	if t.ID == "" {
		t.ID = NewID()
	}

	var mobilityMode, locale *string
	if t.Profile != nil {
		mobilityMode = &t.Profile.MobilityMode
		locale = &t.Profile.Locale
	}

	_, err := r.pool.Exec(ctx, query,
		t.ID, t.UserID, t.Label, mobilityMode, locale, t.CreatedAt, t.UpdatedAt,
	)
	return err
}

// Delete removes a trip from monitoring.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM monitored_trips WHERE id = $1`, id)
	return err
}

// Ensure PostgresRepository implements Repository.
var _ Repository = (*PostgresRepository)(nil)
