package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/couchcryptid/rainfall-forecast/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBatchResults struct {
	execErrs []error
	calls    int
	closed   bool
}

func (f *fakeBatchResults) Exec() (pgconn.CommandTag, error) {
	i := f.calls
	f.calls++
	if i < len(f.execErrs) && f.execErrs[i] != nil {
		return pgconn.CommandTag{}, f.execErrs[i]
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (f *fakeBatchResults) Query() (pgx.Rows, error) { return nil, errors.New("not implemented") }

func (f *fakeBatchResults) QueryRow() pgx.Row { return nil }

func (f *fakeBatchResults) Close() error {
	f.closed = true
	return nil
}

type fakeQuerier struct {
	execSQL []string
	batch   *pgx.Batch
	results *fakeBatchResults
}

func (f *fakeQuerier) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.execSQL = append(f.execSQL, sql)
	return pgconn.NewCommandTag("CREATE TABLE"), nil
}

func (f *fakeQuerier) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeQuerier) SendBatch(_ context.Context, b *pgx.Batch) pgx.BatchResults {
	f.batch = b
	return f.results
}

func sampleRecords() []domain.WeatherRecord {
	return []domain.WeatherRecord{
		{
			Location:    "Sydney",
			Date:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			MinTemp:     domain.Float(18.3),
			Rainfall:    domain.Float(0),
			WindGustDir: "ENE",
		},
		{
			Location: "Sydney",
			Date:     time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
		},
	}
}

func TestNewUpsertBatch(t *testing.T) {
	batch := newUpsertBatch(sampleRecords())
	require.Equal(t, 2, batch.Len())

	args := batch.QueuedQueries[0].Arguments
	require.Len(t, args, 21)
	assert.Equal(t, "Sydney", args[0])
	assert.Equal(t, domain.Float(18.3), args[2])
	assert.Equal(t, "ENE", *args[7].(*string))
	assert.Nil(t, args[9].(*string), "missing direction is NULL")

	empty := batch.QueuedQueries[1].Arguments
	assert.Nil(t, empty[4].(*float64), "missing measurement is NULL")
}

func TestStore_UpsertObservations(t *testing.T) {
	q := &fakeQuerier{results: &fakeBatchResults{}}
	s := &Store{db: q}

	require.NoError(t, s.UpsertObservations(context.Background(), sampleRecords()))
	assert.Equal(t, 2, q.results.calls)
	assert.True(t, q.results.closed)
}

func TestStore_UpsertObservations_Error(t *testing.T) {
	q := &fakeQuerier{results: &fakeBatchResults{execErrs: []error{nil, errors.New("deadlock detected")}}}
	s := &Store{db: q}

	err := s.UpsertObservations(context.Background(), sampleRecords())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2024-03-02")
	assert.True(t, q.results.closed)
}

func TestStore_UpsertObservations_Empty(t *testing.T) {
	q := &fakeQuerier{}
	s := &Store{db: q}

	require.NoError(t, s.UpsertObservations(context.Background(), nil))
	assert.Nil(t, q.batch)
}

func TestStore_EnsureSchema(t *testing.T) {
	q := &fakeQuerier{}
	s := &Store{db: q}

	require.NoError(t, s.EnsureSchema(context.Background()))
	require.Len(t, q.execSQL, 1)
	assert.Contains(t, q.execSQL[0], "PRIMARY KEY (location, date)")
}

func TestParseCompass(t *testing.T) {
	ne := "NE"
	assert.Equal(t, domain.Compass("NE"), parseCompass(&ne))
	assert.Equal(t, domain.Compass(""), parseCompass(nil))
}
