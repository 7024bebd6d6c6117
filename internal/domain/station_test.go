package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupStation(t *testing.T) {
	st, err := LookupStation("Sydney")
	require.NoError(t, err)
	assert.Equal(t, Station{Name: "Sydney", Code: "IDCJDW2129"}, st)

	_, err = LookupStation("Atlantis")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownStation))
}

func TestStations_SortedCopy(t *testing.T) {
	all := Stations()
	require.Len(t, all, 48)
	assert.Equal(t, "Adelaide", all[0].Name)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].Name, all[i].Name)
	}

	all[0].Code = "changed"
	assert.Equal(t, "IDCJDW5081", Stations()[0].Code)
}

func TestCurrentWindow(t *testing.T) {
	SetClock(clockwork.NewFakeClockAt(time.Date(2024, time.April, 20, 9, 30, 0, 0, time.UTC)))
	t.Cleanup(func() { SetClock(nil) })

	w := CurrentWindow()
	assert.Equal(t, time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC), w.Min)
	assert.Equal(t, time.Date(2024, time.April, 20, 0, 0, 0, 0, time.UTC), w.Max)

	assert.True(t, w.Contains(w.Min))
	assert.True(t, w.Contains(w.Max))
	assert.False(t, w.Contains(w.Max.AddDate(0, 0, 1)))
	assert.False(t, w.Contains(w.Min.AddDate(0, 0, -1)))
}

func TestParseRequestDate(t *testing.T) {
	SetClock(clockwork.NewFakeClockAt(time.Date(2024, time.April, 20, 9, 30, 0, 0, time.UTC)))
	t.Cleanup(func() { SetClock(nil) })

	d, err := ParseRequestDate("2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseRequestDate("2022-01-01")
	assert.True(t, errors.Is(err, ErrOutsideWindow))

	_, err = ParseRequestDate("2024-05-01")
	assert.True(t, errors.Is(err, ErrOutsideWindow))

	_, err = ParseRequestDate("15/03/2024")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrOutsideWindow))
}

func TestCurrentWindow_UsesAustralianDay(t *testing.T) {
	// 14:30 UTC on 19 April is 00:30 on 20 April in Sydney.
	SetClock(clockwork.NewFakeClockAt(time.Date(2024, time.April, 19, 14, 30, 0, 0, time.UTC)))
	t.Cleanup(func() { SetClock(nil) })

	w := CurrentWindow()
	assert.Equal(t, time.Date(2024, time.April, 20, 0, 0, 0, 0, time.UTC), w.Max)

	d, err := ParseRequestDate("2024-04-20")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.April, 20, 0, 0, 0, 0, time.UTC), d)
}

func TestNewPredictionEvent(t *testing.T) {
	now := time.Date(2024, time.March, 16, 6, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(now))
	t.Cleanup(func() { SetClock(nil) })

	st := Station{Name: "Sydney", Code: "IDCJDW2129"}
	ev := NewPredictionEvent(st, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), PredictionResult{Class: Rain, Confidence: 0.82})

	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, "Sydney", ev.Location)
	assert.Equal(t, "IDCJDW2129", ev.StationCode)
	assert.Equal(t, "2024-03-15", ev.Date)
	assert.Equal(t, Rain, ev.Class)
	assert.Equal(t, 0.82, ev.Confidence)
	assert.Equal(t, now, ev.PredictedAt)
}

func TestErrorMessages(t *testing.T) {
	fe := &FetchError{URL: "https://example.test/a.csv", StatusCode: 404}
	assert.Equal(t, "fetch https://example.test/a.csv: unexpected status 404", fe.Error())

	cause := errors.New("dial tcp: timeout")
	fe = &FetchError{URL: "https://example.test/a.csv", Err: cause}
	assert.True(t, errors.Is(fe, cause))
	assert.Contains(t, fe.Error(), "dial tcp: timeout")

	pe := &ParseError{Path: "x.csv", Msg: "no blank line"}
	assert.Equal(t, "parse x.csv: no blank line", pe.Error())
	pe = &ParseError{Path: "x.csv", Line: 3, Msg: "bad date", Err: cause}
	assert.Equal(t, "parse x.csv line 3: bad date: dial tcp: timeout", pe.Error())

	se := &SchemaError{Feature: "Location", Msg: "unknown category"}
	assert.Equal(t, `schema mismatch on "Location": unknown category`, se.Error())
}
