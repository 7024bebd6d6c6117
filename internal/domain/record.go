package domain

import (
	"fmt"
	"strings"
	"time"
)

// ReportKey identifies one monthly report for one station.
type ReportKey struct {
	StationCode string
	Year        int
	Month       time.Month
}

// NewReportKey builds the key for the month containing date.
func NewReportKey(station Station, date time.Time) ReportKey {
	return ReportKey{StationCode: station.Code, Year: date.Year(), Month: date.Month()}
}

// Period returns the YYYYMM stamp used in provider URLs and local file names.
func (k ReportKey) Period() string {
	return fmt.Sprintf("%04d%02d", k.Year, int(k.Month))
}

// FileName is the local file name for the report, e.g. "IDCJDW2129_202403.csv".
func (k ReportKey) FileName() string {
	return k.StationCode + "_" + k.Period() + ".csv"
}

func (k ReportKey) String() string {
	return k.StationCode + "/" + k.Period()
}

// Compass is a 16-point wind direction. The zero value means missing.
type Compass string

var compassPoints = map[string]Compass{
	"N": "N", "NNE": "NNE", "NE": "NE", "ENE": "ENE",
	"E": "E", "ESE": "ESE", "SE": "SE", "SSE": "SSE",
	"S": "S", "SSW": "SSW", "SW": "SW", "WSW": "WSW",
	"W": "W", "WNW": "WNW", "NW": "NW", "NNW": "NNW",
}

// ParseCompass maps provider text to a Compass. Anything outside the 16
// points ("Calm", blanks, typos) is missing.
func ParseCompass(s string) Compass {
	return compassPoints[strings.ToUpper(strings.TrimSpace(s))]
}

// WeatherRecord is one calendar day of observations. Nil numeric fields are missing.
type WeatherRecord struct {
	Location string    `json:"location"`
	Date     time.Time `json:"date"`

	MinTemp       *float64 `json:"min_temp"`
	MaxTemp       *float64 `json:"max_temp"`
	Rainfall      *float64 `json:"rainfall"`
	Evaporation   *float64 `json:"evaporation"`
	Sunshine      *float64 `json:"sunshine"`
	WindGustDir   Compass  `json:"wind_gust_dir"`
	WindGustSpeed *float64 `json:"wind_gust_speed"`
	WindDir9am    Compass  `json:"wind_dir_9am"`
	WindDir3pm    Compass  `json:"wind_dir_3pm"`
	WindSpeed9am  *float64 `json:"wind_speed_9am"`
	WindSpeed3pm  *float64 `json:"wind_speed_3pm"`
	Humidity9am   *float64 `json:"humidity_9am"`
	Humidity3pm   *float64 `json:"humidity_3pm"`
	Pressure9am   *float64 `json:"pressure_9am"`
	Pressure3pm   *float64 `json:"pressure_3pm"`
	Cloud9am      *float64 `json:"cloud_9am"`
	Cloud3pm      *float64 `json:"cloud_3pm"`
	Temp9am       *float64 `json:"temp_9am"`
	Temp3pm       *float64 `json:"temp_3pm"`
}

// FeatureRow is a WeatherRecord plus the engineered features the classifier
// consumes. Values returns it in model column order.
type FeatureRow struct {
	WeatherRecord

	RainToday     int      `json:"rain_today"`
	Day           int      `json:"day"`
	Month         int      `json:"month"`
	Year          int      `json:"year"`
	TempDiff      *float64 `json:"temp_diff"`
	WindSpeedAvg  *float64 `json:"wind_speed_avg"`
	HumidityDiff  *float64 `json:"humidity_diff"`
	PressureDiff  *float64 `json:"pressure_diff"`
	CloudCoverAvg *float64 `json:"cloud_cover_avg"`
	WindGustDiff  *float64 `json:"wind_gust_diff"`
}
