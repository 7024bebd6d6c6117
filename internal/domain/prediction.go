package domain

import (
	"time"

	"github.com/google/uuid"
)

// RainClass is the classifier's verdict for tomorrow.
type RainClass string

const (
	Rain   RainClass = "rain"
	NoRain RainClass = "no_rain"
)

// PredictionResult is the scored outcome for one feature row. Confidence is
// the probability of the predicted class.
type PredictionResult struct {
	Class      RainClass `json:"class"`
	Confidence float64   `json:"confidence"`
}

// NewPredictionResult maps a classifier label and its positive-class
// probability to a result: label 1 is Rain, anything else NoRain.
func NewPredictionResult(label int, positiveProba float64) PredictionResult {
	if label == 1 {
		return PredictionResult{Class: Rain, Confidence: positiveProba}
	}
	return PredictionResult{Class: NoRain, Confidence: 1 - positiveProba}
}

// PredictionEvent announces a completed prediction to downstream consumers.
type PredictionEvent struct {
	ID          string    `json:"id"`
	Location    string    `json:"location"`
	StationCode string    `json:"station_code"`
	Date        string    `json:"date"`
	Class       RainClass `json:"class"`
	Confidence  float64   `json:"confidence"`
	PredictedAt time.Time `json:"predicted_at"`
}

// NewPredictionEvent stamps a result with a fresh ID and the current time.
func NewPredictionEvent(station Station, date time.Time, result PredictionResult) PredictionEvent {
	return PredictionEvent{
		ID:          uuid.NewString(),
		Location:    station.Name,
		StationCode: station.Code,
		Date:        date.Format(DateLayout),
		Class:       result.Class,
		Confidence:  result.Confidence,
		PredictedAt: clock.Now().UTC(),
	}
}
