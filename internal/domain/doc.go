// Package domain models Bureau of Meteorology (BoM) daily weather observations
// and the feature rows a rain-tomorrow classifier is scored on.
//
// # Data Source
//
// Observations come from the BoM "Daily Weather Observations" product, one CSV
// per station per month:
//
//	https://reg.bom.gov.au/climate/dwo/<YYYYMM>/text/<StationCode>.<YYYYMM>.csv
//
// Station codes look like "IDCJDW2129" (Sydney Observatory Hill). The product
// only covers roughly the last 14 months, see [CurrentWindow].
//
// # File Layout
//
// Files are ISO-8859-1 encoded (degree signs in headers). A free-text preamble
// describing the station comes first and ends with the first blank line; the
// table follows:
//
//	,"Date","Minimum temperature (°C)","Maximum temperature (°C)",...
//	,2024-03-01,18.2,26.4,0,4.8,9.1,SE,41,14:05,...
//
// The leading column is an unnamed row index with no meaning. Headers carry
// units and occasional trailing spaces; [ColumnRenames] maps them to the
// canonical names used by the training set.
//
// # Missing Values
//
// Blank cells and text such as "Calm" in a numeric column are missing, never
// zero. Numeric fields are *float64 and nil is the missing sentinel. Wind
// directions are [Compass] values and the empty string is missing.
//
// # Engineered Features
//
//	TempDiff      = MaxTemp - MinTemp
//	WindSpeedAvg  = mean(WindSpeed9am, WindSpeed3pm)   over present values
//	HumidityDiff  = Humidity3pm - Humidity9am
//	PressureDiff  = Pressure3pm - Pressure9am
//	CloudCoverAvg = mean(Cloud9am, Cloud3pm)           over present values
//	WindGustDiff  = WindGustSpeed - WindSpeedAvg
//	RainToday     = 1 if Rainfall > 0 else 0           missing rainfall is 0
//
// A difference with a missing operand is missing; a mean with no present
// operand is missing. See [DeriveFeatures].
package domain
