package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// observationDateLayouts are tried in order; BoM writes ISO dates but older
// files drop the zero padding.
var observationDateLayouts = []string{"2006-01-02", "2006-1-2"}

// ParseMeasurement coerces a provider cell to a number. Blanks, NaN, and
// anything strconv cannot parse ("Calm", "-", stray text) are missing.
func ParseMeasurement(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// ParseObservationDate parses the Date column of a monthly report.
func ParseObservationDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range observationDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid observation date %q", s)
}

// NewWeatherRecord builds a record from cells keyed by canonical column name.
// Absent keys read as blank, so they end up missing.
func NewWeatherRecord(location string, date time.Time, cells map[string]string) WeatherRecord {
	m := func(col string) *float64 { return ParseMeasurement(cells[col]) }
	return WeatherRecord{
		Location:      location,
		Date:          date,
		MinTemp:       m("MinTemp"),
		MaxTemp:       m("MaxTemp"),
		Rainfall:      m("Rainfall"),
		Evaporation:   m("Evaporation"),
		Sunshine:      m("Sunshine"),
		WindGustDir:   ParseCompass(cells["WindGustDir"]),
		WindGustSpeed: m("WindGustSpeed"),
		WindDir9am:    ParseCompass(cells["WindDir9am"]),
		WindDir3pm:    ParseCompass(cells["WindDir3pm"]),
		WindSpeed9am:  m("WindSpeed9am"),
		WindSpeed3pm:  m("WindSpeed3pm"),
		Humidity9am:   m("Humidity9am"),
		Humidity3pm:   m("Humidity3pm"),
		Pressure9am:   m("Pressure9am"),
		Pressure3pm:   m("Pressure3pm"),
		Cloud9am:      m("Cloud9am"),
		Cloud3pm:      m("Cloud3pm"),
		Temp9am:       m("Temp9am"),
		Temp3pm:       m("Temp3pm"),
	}
}
