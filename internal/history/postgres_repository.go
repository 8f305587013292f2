package history

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL history repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Upsert writes records in one transaction. Same-key records are replaced,
// so re-running a day's ingest is idempotent.
func (r *PostgresRepository) Upsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback error is not critical

	query := `
		INSERT INTO pollution_history (station_uid, pollutant, date, value, location, lat, lon, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (station_uid, pollutant, date) DO UPDATE SET
			value = EXCLUDED.value,
			location = EXCLUDED.location,
			lat = EXCLUDED.lat,
			lon = EXCLUDED.lon,
			updated_at = EXCLUDED.updated_at
	`

	now := time.Now()
	for _, rec := range records {
		_, err := tx.Exec(ctx, query,
			rec.StationUID,
			rec.Pollutant,
			rec.Date,
			rec.Value,
			rec.Location,
			rec.Lat,
			rec.Lon,
			now,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// ByStation retrieves one station's records, oldest first.
func (r *PostgresRepository) ByStation(ctx context.Context, stationUID, pollutant string, limit int) ([]Record, error) {
	query := `
		SELECT station_uid, pollutant, date, value, location, lat, lon, updated_at
		FROM (
			SELECT station_uid, pollutant, date, value, location, lat, lon, updated_at
			FROM pollution_history
			WHERE station_uid = $1 AND pollutant = $2
			ORDER BY date DESC
			LIMIT $3
		) recent
		ORDER BY date ASC
	`

	lim := limit
	if lim <= 0 {
		lim = -1 // pgx translates to LIMIT ALL
	}

	rows, err := r.pool.Query(ctx, query, stationUID, pollutant, lim)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecords(rows)
}

// ByLocation retrieves records whose location matches the query, oldest
// first.
func (r *PostgresRepository) ByLocation(ctx context.Context, location, pollutant string, limit int) ([]Record, error) {
	query := `
		SELECT station_uid, pollutant, date, value, location, lat, lon, updated_at
		FROM (
			SELECT station_uid, pollutant, date, value, location, lat, lon, updated_at
			FROM pollution_history
			WHERE location ILIKE '%' || $1 || '%' AND pollutant = $2
			ORDER BY date DESC
			LIMIT $3
		) recent
		ORDER BY date ASC
	`

	lim := limit
	if lim <= 0 {
		lim = -1
	}

	rows, err := r.pool.Query(ctx, query, location, pollutant, lim)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Since retrieves all records of one pollutant on or after a date.
func (r *PostgresRepository) Since(ctx context.Context, pollutant string, since time.Time) ([]Record, error) {
	query := `
		SELECT station_uid, pollutant, date, value, location, lat, lon, updated_at
		FROM pollution_history
		WHERE pollutant = $1 AND date >= $2
		ORDER BY date ASC
	`

	rows, err := r.pool.Query(ctx, query, pollutant, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Count returns the total number of stored records.
func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM pollution_history`).Scan(&count)
	return count, err
}

type pgxRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanRecords(rows pgxRows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var rec Record
		err := rows.Scan(
			&rec.StationUID,
			&rec.Pollutant,
			&rec.Date,
			&rec.Value,
			&rec.Location,
			&rec.Lat,
			&rec.Lon,
			&rec.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
