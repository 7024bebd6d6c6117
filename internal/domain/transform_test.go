package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMeasurement(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected *float64
	}{
		{"integer", "41", Float(41)},
		{"decimal", "18.2", Float(18.2)},
		{"negative", "-1.5", Float(-1.5)},
		{"padded", "  7.0 ", Float(7)},
		{"zero is a value", "0", Float(0)},
		{"blank", "", nil},
		{"whitespace", "   ", nil},
		{"calm wind", "Calm", nil},
		{"dash", "-", nil},
		{"nan", "NaN", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseMeasurement(tt.input))
		})
	}
}

func TestParseObservationDate(t *testing.T) {
	t.Run("iso", func(t *testing.T) {
		d, err := ParseObservationDate("2024-03-15")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), d)
	})

	t.Run("unpadded", func(t *testing.T) {
		d, err := ParseObservationDate("2024-3-5")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), d)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ParseObservationDate("Totals:")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Totals:")
	})
}

func TestParseCompass(t *testing.T) {
	assert.Equal(t, Compass("SSE"), ParseCompass("SSE"))
	assert.Equal(t, Compass("NW"), ParseCompass(" nw "))
	assert.Equal(t, Compass(""), ParseCompass("Calm"))
	assert.Equal(t, Compass(""), ParseCompass(""))
}

func TestNewWeatherRecord(t *testing.T) {
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	rec := NewWeatherRecord("Sydney", date, map[string]string{
		"MinTemp":      "18.2",
		"MaxTemp":      "26.4",
		"Rainfall":     "0",
		"WindGustDir":  "SE",
		"WindSpeed9am": "Calm",
		"WindDir3pm":   "???",
	})

	assert.Equal(t, "Sydney", rec.Location)
	assert.Equal(t, date, rec.Date)
	assert.Equal(t, Float(18.2), rec.MinTemp)
	assert.Equal(t, Float(26.4), rec.MaxTemp)
	assert.Equal(t, Float(0), rec.Rainfall)
	assert.Equal(t, Compass("SE"), rec.WindGustDir)
	assert.Nil(t, rec.WindSpeed9am, "Calm is not a number")
	assert.Equal(t, Compass(""), rec.WindDir3pm)
	assert.Nil(t, rec.Evaporation, "absent column reads as missing")
}

func TestReportKey(t *testing.T) {
	st, err := LookupStation("Sydney")
	require.NoError(t, err)

	key := NewReportKey(st, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "202403", key.Period())
	assert.Equal(t, "IDCJDW2129_202403.csv", key.FileName())
	assert.Equal(t, "IDCJDW2129/202403", key.String())
}
