// Package postgres archives parsed observations so dashboards can chart
// history without refetching provider reports.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/couchcryptid/rainfall-forecast/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is the subset of *pgxpool.Pool the store uses.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Store reads and writes the observations table.
type Store struct {
	db   querier
	pool *pgxpool.Pool
}

// New connects to databaseURL and makes sure the schema exists.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect archive: %w", err)
	}
	s := &Store{db: pool, pool: pool}
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the pool resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if s.pool == nil {
		return nil
	}
	return s.pool.Ping(ctx)
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS observations (
    location        TEXT NOT NULL,
    date            DATE NOT NULL,
    min_temp        DOUBLE PRECISION,
    max_temp        DOUBLE PRECISION,
    rainfall        DOUBLE PRECISION,
    evaporation     DOUBLE PRECISION,
    sunshine        DOUBLE PRECISION,
    wind_gust_dir   TEXT,
    wind_gust_speed DOUBLE PRECISION,
    wind_dir_9am    TEXT,
    wind_dir_3pm    TEXT,
    wind_speed_9am  DOUBLE PRECISION,
    wind_speed_3pm  DOUBLE PRECISION,
    humidity_9am    DOUBLE PRECISION,
    humidity_3pm    DOUBLE PRECISION,
    pressure_9am    DOUBLE PRECISION,
    pressure_3pm    DOUBLE PRECISION,
    cloud_9am       DOUBLE PRECISION,
    cloud_3pm       DOUBLE PRECISION,
    temp_9am        DOUBLE PRECISION,
    temp_3pm        DOUBLE PRECISION,
    ingested_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (location, date)
)`

// EnsureSchema creates the observations table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create observations table: %w", err)
	}
	return nil
}

const upsertSQL = `INSERT INTO observations (
    location, date, min_temp, max_temp, rainfall, evaporation, sunshine,
    wind_gust_dir, wind_gust_speed, wind_dir_9am, wind_dir_3pm,
    wind_speed_9am, wind_speed_3pm, humidity_9am, humidity_3pm,
    pressure_9am, pressure_3pm, cloud_9am, cloud_3pm, temp_9am, temp_3pm, ingested_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,NOW())
ON CONFLICT (location, date) DO UPDATE
SET min_temp = EXCLUDED.min_temp,
    max_temp = EXCLUDED.max_temp,
    rainfall = EXCLUDED.rainfall,
    evaporation = EXCLUDED.evaporation,
    sunshine = EXCLUDED.sunshine,
    wind_gust_dir = EXCLUDED.wind_gust_dir,
    wind_gust_speed = EXCLUDED.wind_gust_speed,
    wind_dir_9am = EXCLUDED.wind_dir_9am,
    wind_dir_3pm = EXCLUDED.wind_dir_3pm,
    wind_speed_9am = EXCLUDED.wind_speed_9am,
    wind_speed_3pm = EXCLUDED.wind_speed_3pm,
    humidity_9am = EXCLUDED.humidity_9am,
    humidity_3pm = EXCLUDED.humidity_3pm,
    pressure_9am = EXCLUDED.pressure_9am,
    pressure_3pm = EXCLUDED.pressure_3pm,
    cloud_9am = EXCLUDED.cloud_9am,
    cloud_3pm = EXCLUDED.cloud_3pm,
    temp_9am = EXCLUDED.temp_9am,
    temp_3pm = EXCLUDED.temp_3pm,
    ingested_at = NOW()`

// UpsertObservations inserts or refreshes one row per record.
// It implements pipeline.Archive.
func (s *Store) UpsertObservations(ctx context.Context, records []domain.WeatherRecord) error {
	if len(records) == 0 {
		return nil
	}

	res := s.db.SendBatch(ctx, newUpsertBatch(records))
	defer res.Close()

	for _, rec := range records {
		if _, err := res.Exec(); err != nil {
			return fmt.Errorf("upsert observation %s %s: %w", rec.Location, rec.Date.Format(domain.DateLayout), err)
		}
	}
	return nil
}

func newUpsertBatch(records []domain.WeatherRecord) *pgx.Batch {
	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(upsertSQL,
			r.Location, r.Date,
			r.MinTemp, r.MaxTemp, r.Rainfall, r.Evaporation, r.Sunshine,
			compass(r.WindGustDir), r.WindGustSpeed, compass(r.WindDir9am), compass(r.WindDir3pm),
			r.WindSpeed9am, r.WindSpeed3pm, r.Humidity9am, r.Humidity3pm,
			r.Pressure9am, r.Pressure3pm, r.Cloud9am, r.Cloud3pm, r.Temp9am, r.Temp3pm,
		)
	}
	return batch
}

// compass stores a missing direction as NULL.
func compass(c domain.Compass) *string {
	if c == "" {
		return nil
	}
	s := string(c)
	return &s
}

const listSQL = `
    SELECT location, date, min_temp, max_temp, rainfall, evaporation, sunshine,
           wind_gust_dir, wind_gust_speed, wind_dir_9am, wind_dir_3pm,
           wind_speed_9am, wind_speed_3pm, humidity_9am, humidity_3pm,
           pressure_9am, pressure_3pm, cloud_9am, cloud_3pm, temp_9am, temp_3pm
    FROM observations
    WHERE location = $1 AND date BETWEEN $2 AND $3
    ORDER BY date
`

// ListObservations returns archived records for location with from <= date <= to.
func (s *Store) ListObservations(ctx context.Context, location string, from, to time.Time) ([]domain.WeatherRecord, error) {
	rows, err := s.db.Query(ctx, listSQL, location, from, to)
	if err != nil {
		return nil, fmt.Errorf("query observations: %w", err)
	}
	defer rows.Close()

	records := make([]domain.WeatherRecord, 0)
	for rows.Next() {
		var (
			r                    domain.WeatherRecord
			gust, dir9am, dir3pm *string
		)
		if err := rows.Scan(
			&r.Location, &r.Date,
			&r.MinTemp, &r.MaxTemp, &r.Rainfall, &r.Evaporation, &r.Sunshine,
			&gust, &r.WindGustSpeed, &dir9am, &dir3pm,
			&r.WindSpeed9am, &r.WindSpeed3pm, &r.Humidity9am, &r.Humidity3pm,
			&r.Pressure9am, &r.Pressure3pm, &r.Cloud9am, &r.Cloud3pm, &r.Temp9am, &r.Temp3pm,
		); err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		r.WindGustDir = parseCompass(gust)
		r.WindDir9am = parseCompass(dir9am)
		r.WindDir3pm = parseCompass(dir3pm)
		records = append(records, r)
	}
	return records, rows.Err()
}

func parseCompass(s *string) domain.Compass {
	if s == nil {
		return ""
	}
	return domain.ParseCompass(*s)
}
