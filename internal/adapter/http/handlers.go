package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/couchcryptid/rainfall-forecast/internal/domain"
	"github.com/couchcryptid/rainfall-forecast/internal/pipeline"
	"github.com/gin-gonic/gin"
)

type predictionResponse struct {
	Station    domain.Station          `json:"station"`
	Date       string                  `json:"date"`
	URL        string                  `json:"url"`
	Features   domain.FeatureRow       `json:"features"`
	Prediction domain.PredictionResult `json:"prediction"`
	States     []pipeline.State        `json:"states"`
}

// handleListStations returns the station registry.
// GET /api/v1/stations
func (s *Server) handleListStations(c *gin.Context) {
	stations := domain.Stations()
	c.JSON(http.StatusOK, gin.H{
		"data": stations,
		"meta": gin.H{"count": len(stations)},
	})
}

// handlePredict runs the pipeline for one station and day.
// GET /api/v1/predictions?location=Sydney&date=2024-03-15
func (s *Server) handlePredict(c *gin.Context) {
	location := c.Query("location")
	if _, err := domain.LookupStation(location); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	date, err := domain.ParseRequestDate(c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := s.runner.Run(c.Request.Context(), pipeline.Request{Location: location, Date: date})
	if err != nil {
		status, body := errorResponse(err)
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusOK, predictionResponse{
		Station:    res.Station,
		Date:       res.Date.Format(domain.DateLayout),
		URL:        res.URL,
		Features:   res.Row,
		Prediction: res.Prediction,
		States:     res.States,
	})
}

// handleListObservations returns archived records for a station.
// GET /api/v1/observations?location=Sydney&from=2024-03-01&to=2024-03-31
func (s *Server) handleListObservations(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "observation archive is not configured"})
		return
	}

	location := c.Query("location")
	if _, err := domain.LookupStation(location); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	w := domain.CurrentWindow()
	from, err := dateParam(c, "from", w.Min)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	to, err := dateParam(c, "to", w.Max)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if to.Before(from) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to is before from"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	records, err := s.store.ListObservations(ctx, location, from, to)
	if err != nil {
		s.logger.Error("list observations failed", "location", location, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": records,
		"meta": gin.H{"count": len(records)},
	})
}

func dateParam(c *gin.Context, name string, def time.Time) (time.Time, error) {
	v := c.Query(name)
	if v == "" {
		return def, nil
	}
	t, err := time.Parse(domain.DateLayout, v)
	if err != nil {
		return time.Time{}, errors.New("invalid " + name + " date " + v)
	}
	return t, nil
}

// errorResponse maps pipeline failures to status codes. FetchError bodies
// carry the attempted URL.
func errorResponse(err error) (int, gin.H) {
	body := gin.H{"error": err.Error()}

	var se *pipeline.StageError
	if errors.As(err, &se) {
		body["stage"] = se.Stage.String()
	}

	var (
		fe *domain.FetchError
		pe *domain.ParseError
		ne *domain.NoDataError
	)
	switch {
	case errors.Is(err, domain.ErrUnknownStation):
		return http.StatusBadRequest, body
	case errors.As(err, &fe):
		body["url"] = fe.URL
		return http.StatusBadGateway, body
	case errors.As(err, &pe):
		return http.StatusUnprocessableEntity, body
	case errors.As(err, &ne):
		body["error"] = "no data available for the selected date"
		return http.StatusNotFound, body
	default:
		return http.StatusInternalServerError, body
	}
}
