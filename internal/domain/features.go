package domain

// ColumnRenames maps BoM monthly report headers (whitespace-trimmed) to the
// canonical names used by the training data.
var ColumnRenames = map[string]string{
	"Date":                              "Date",
	"Minimum temperature (°C)":          "MinTemp",
	"Maximum temperature (°C)":          "MaxTemp",
	"Rainfall (mm)":                     "Rainfall",
	"Evaporation (mm)":                  "Evaporation",
	"Sunshine (hours)":                  "Sunshine",
	"Direction of maximum wind gust":    "WindGustDir",
	"Speed of maximum wind gust (km/h)": "WindGustSpeed",
	"9am Temperature (°C)":              "Temp9am",
	"9am relative humidity (%)":         "Humidity9am",
	"9am cloud amount (oktas)":          "Cloud9am",
	"9am wind direction":                "WindDir9am",
	"9am wind speed (km/h)":             "WindSpeed9am",
	"9am MSL pressure (hPa)":            "Pressure9am",
	"3pm Temperature (°C)":              "Temp3pm",
	"3pm relative humidity (%)":         "Humidity3pm",
	"3pm cloud amount (oktas)":          "Cloud3pm",
	"3pm wind direction":                "WindDir3pm",
	"3pm wind speed (km/h)":             "WindSpeed3pm",
	"3pm MSL pressure (hPa)":            "Pressure3pm",
}

// DroppedColumns are provider columns with no place in the feature row.
var DroppedColumns = []string{"Time of maximum wind gust"}

// NumericColumns are coerced to numbers; unparseable cells become missing.
var NumericColumns = []string{
	"MinTemp", "MaxTemp", "Rainfall", "Evaporation", "Sunshine",
	"WindGustSpeed", "WindSpeed9am", "WindSpeed3pm", "Humidity9am",
	"Humidity3pm", "Pressure9am", "Pressure3pm", "Cloud9am",
	"Cloud3pm", "Temp9am", "Temp3pm",
}

// CategoricalColumns hold bounded text values.
var CategoricalColumns = []string{"Location", "WindGustDir", "WindDir9am", "WindDir3pm"}

// FeatureColumns is the column order the classifier was trained with.
var FeatureColumns = []string{
	"Location", "MinTemp", "MaxTemp", "Rainfall", "Evaporation",
	"Sunshine", "WindGustDir", "WindGustSpeed", "WindDir9am", "WindDir3pm",
	"WindSpeed9am", "WindSpeed3pm", "Humidity9am", "Humidity3pm",
	"Pressure9am", "Pressure3pm", "Cloud9am", "Cloud3pm", "Temp9am",
	"Temp3pm", "RainToday", "day", "month", "year", "TempDiff",
	"WindSpeedAvg", "HumidityDiff", "PressureDiff", "CloudCoverAvg",
	"WindGustDiff",
}

// FeatureKind tells numeric and categorical features apart.
type FeatureKind int

const (
	Numeric FeatureKind = iota
	Categorical
)

// Feature is one named cell of a FeatureRow. A nil Num or empty Cat is missing.
type Feature struct {
	Name string
	Kind FeatureKind
	Num  *float64
	Cat  string
}

// Missing reports whether the feature carries no value.
func (f Feature) Missing() bool {
	if f.Kind == Categorical {
		return f.Cat == ""
	}
	return f.Num == nil
}

// DeriveFeatures computes the engineered features for one record. RainToday
// comes from the coerced Rainfall only: missing rainfall counts as no rain.
func DeriveFeatures(rec WeatherRecord) FeatureRow {
	row := FeatureRow{
		WeatherRecord: rec,
		Day:           rec.Date.Day(),
		Month:         int(rec.Date.Month()),
		Year:          rec.Date.Year(),
	}
	row.TempDiff = diff(rec.MaxTemp, rec.MinTemp)
	row.WindSpeedAvg = mean(rec.WindSpeed9am, rec.WindSpeed3pm)
	row.HumidityDiff = diff(rec.Humidity3pm, rec.Humidity9am)
	row.PressureDiff = diff(rec.Pressure3pm, rec.Pressure9am)
	row.CloudCoverAvg = mean(rec.Cloud9am, rec.Cloud3pm)
	if rec.Rainfall != nil && *rec.Rainfall > 0 {
		row.RainToday = 1
	}
	row.WindGustDiff = diff(rec.WindGustSpeed, row.WindSpeedAvg)
	return row
}

// Values returns the row's features in FeatureColumns order.
func (r FeatureRow) Values() []Feature {
	num := func(name string, v *float64) Feature { return Feature{Name: name, Kind: Numeric, Num: v} }
	cat := func(name, v string) Feature { return Feature{Name: name, Kind: Categorical, Cat: v} }
	integer := func(name string, v int) Feature { return num(name, Float(float64(v))) }

	return []Feature{
		cat("Location", r.Location),
		num("MinTemp", r.MinTemp),
		num("MaxTemp", r.MaxTemp),
		num("Rainfall", r.Rainfall),
		num("Evaporation", r.Evaporation),
		num("Sunshine", r.Sunshine),
		cat("WindGustDir", string(r.WindGustDir)),
		num("WindGustSpeed", r.WindGustSpeed),
		cat("WindDir9am", string(r.WindDir9am)),
		cat("WindDir3pm", string(r.WindDir3pm)),
		num("WindSpeed9am", r.WindSpeed9am),
		num("WindSpeed3pm", r.WindSpeed3pm),
		num("Humidity9am", r.Humidity9am),
		num("Humidity3pm", r.Humidity3pm),
		num("Pressure9am", r.Pressure9am),
		num("Pressure3pm", r.Pressure3pm),
		num("Cloud9am", r.Cloud9am),
		num("Cloud3pm", r.Cloud3pm),
		num("Temp9am", r.Temp9am),
		num("Temp3pm", r.Temp3pm),
		integer("RainToday", r.RainToday),
		integer("day", r.Day),
		integer("month", r.Month),
		integer("year", r.Year),
		num("TempDiff", r.TempDiff),
		num("WindSpeedAvg", r.WindSpeedAvg),
		num("HumidityDiff", r.HumidityDiff),
		num("PressureDiff", r.PressureDiff),
		num("CloudCoverAvg", r.CloudCoverAvg),
		num("WindGustDiff", r.WindGustDiff),
	}
}

// SelectDay picks the row for day-of-month day from rows ordered by date.
func SelectDay(rows []FeatureRow, day int) (FeatureRow, error) {
	i := day - 1
	if i < 0 || i >= len(rows) {
		return FeatureRow{}, &NoDataError{Day: day, Rows: len(rows)}
	}
	return rows[i], nil
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

func diff(a, b *float64) *float64 {
	if a == nil || b == nil {
		return nil
	}
	return Float(*a - *b)
}

// mean averages the present operands; nil when none are present.
func mean(vs ...*float64) *float64 {
	var sum float64
	var n int
	for _, v := range vs {
		if v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return Float(sum / float64(n))
}
