package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/rainfall-forecast/internal/domain"
	"github.com/couchcryptid/rainfall-forecast/internal/observability"
)

// Fetcher downloads the raw monthly report for a key and returns its local path.
type Fetcher interface {
	ReportURL(key domain.ReportKey) string
	Fetch(ctx context.Context, key domain.ReportKey) (string, error)
}

// Cleaner strips the provider preamble from a fetched report in place.
type Cleaner interface {
	Clean(path string) error
}

// CleanFunc adapts a function to Cleaner.
type CleanFunc func(path string) error

func (f CleanFunc) Clean(path string) error { return f(path) }

// RowBuilder parses a cleaned report into feature rows ordered by date.
type RowBuilder interface {
	BuildFile(path, location string) ([]domain.FeatureRow, error)
}

// Scorer classifies one feature row.
type Scorer interface {
	Predict(ctx context.Context, row domain.FeatureRow) (domain.PredictionResult, error)
	Ready(ctx context.Context) error
}

// Archive persists parsed observations.
type Archive interface {
	UpsertObservations(ctx context.Context, records []domain.WeatherRecord) error
	Ping(ctx context.Context) error
}

// Publisher announces completed predictions.
type Publisher interface {
	PublishPrediction(ctx context.Context, event domain.PredictionEvent) error
}

// Request selects a station by name and the day to score.
type Request struct {
	Location string
	Date     time.Time
}

// Result is the outcome of a successful run.
type Result struct {
	Station    domain.Station
	Date       time.Time
	URL        string
	Path       string
	Row        domain.FeatureRow
	Prediction domain.PredictionResult
	States     []State
}

// Option configures optional side channels.
type Option func(*Pipeline)

// WithArchive upserts each parsed month into a.
func WithArchive(a Archive) Option {
	return func(p *Pipeline) { p.archive = a }
}

// WithPublisher publishes an event for each completed prediction.
func WithPublisher(pub Publisher) Option {
	return func(p *Pipeline) { p.publisher = pub }
}

// Pipeline drives one prediction from fetch to score.
type Pipeline struct {
	fetcher   Fetcher
	cleaner   Cleaner
	builder   RowBuilder
	scorer    Scorer
	archive   Archive
	publisher Publisher
	logger    *slog.Logger
	metrics   *observability.Metrics
	locks     keyedMutex
}

// New creates a Pipeline with the given stages and observability.
func New(f Fetcher, c Cleaner, b RowBuilder, s Scorer, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Pipeline {
	p := &Pipeline{
		fetcher: f,
		cleaner: c,
		builder: b,
		scorer:  s,
		logger:  logger,
		metrics: metrics,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CheckReadiness returns nil once the classifier is loaded and, when an
// archive is configured, the archive answers a ping.
func (p *Pipeline) CheckReadiness(ctx context.Context) error {
	if err := p.scorer.Ready(ctx); err != nil {
		return fmt.Errorf("classifier not ready: %w", err)
	}
	if p.archive != nil {
		if err := p.archive.Ping(ctx); err != nil {
			return fmt.Errorf("archive not reachable: %w", err)
		}
	}
	return nil
}

// Run fetches, cleans, parses, and scores the report month containing
// req.Date. Any stage failure stops the run with a *StageError; there are
// no retries and no partial results. Runs for the same station and month
// are serialized because they share one local file.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	station, err := domain.LookupStation(req.Location)
	if err != nil {
		return nil, err
	}
	key := domain.NewReportKey(station, req.Date)

	unlock := p.locks.lock(key.String())
	defer unlock()

	r := &run{p: p, key: key, states: []State{Idle}}
	res := &Result{Station: station, Date: req.Date, URL: p.fetcher.ReportURL(key)}

	err = r.stage(Fetching, func() error {
		res.Path, err = p.fetcher.Fetch(ctx, key)
		return err
	})
	if err != nil {
		return nil, err
	}

	err = r.stage(Cleaning, func() error {
		return p.cleaner.Clean(res.Path)
	})
	if err != nil {
		return nil, err
	}

	var rows []domain.FeatureRow
	err = r.stage(Parsing, func() error {
		rows, err = p.builder.BuildFile(res.Path, station.Name)
		if err != nil {
			return err
		}
		res.Row, err = domain.SelectDay(rows, req.Date.Day())
		return err
	})
	if err != nil {
		return nil, err
	}
	p.archiveRows(ctx, key, rows)

	err = r.stage(Scoring, func() error {
		res.Prediction, err = p.scorer.Predict(ctx, res.Row)
		return err
	})
	if err != nil {
		return nil, err
	}

	r.states = append(r.states, Done)
	res.States = r.states
	p.metrics.PipelineRuns.WithLabelValues("done").Inc()
	p.metrics.Predictions.WithLabelValues(string(res.Prediction.Class)).Inc()
	p.logger.Info("prediction complete",
		"station", station.Name,
		"date", req.Date.Format(domain.DateLayout),
		"class", res.Prediction.Class,
		"confidence", res.Prediction.Confidence,
	)

	p.publish(ctx, domain.NewPredictionEvent(station, req.Date, res.Prediction))
	return res, nil
}

// run tracks the states one request passes through.
type run struct {
	p      *Pipeline
	key    domain.ReportKey
	states []State
}

func (r *run) stage(s State, fn func() error) error {
	r.states = append(r.states, s)
	start := time.Now()
	err := fn()
	r.p.metrics.StageDuration.WithLabelValues(s.String()).Observe(time.Since(start).Seconds())
	if err == nil {
		return nil
	}

	r.states = append(r.states, Failed)
	r.p.metrics.StageFailures.WithLabelValues(s.String(), reason(err)).Inc()
	r.p.metrics.PipelineRuns.WithLabelValues("failed").Inc()
	r.p.logger.Warn("pipeline failed", "stage", s.String(), "report", r.key.String(), "error", err)
	return &StageError{Stage: s, States: r.states, Err: err}
}

func (p *Pipeline) archiveRows(ctx context.Context, key domain.ReportKey, rows []domain.FeatureRow) {
	if p.archive == nil {
		return
	}
	records := make([]domain.WeatherRecord, len(rows))
	for i, row := range rows {
		records[i] = row.WeatherRecord
	}
	if err := p.archive.UpsertObservations(ctx, records); err != nil {
		p.metrics.ArchiveWrites.WithLabelValues("error").Inc()
		p.logger.Error("archive observations failed", "report", key.String(), "error", err)
		return
	}
	p.metrics.ArchiveWrites.WithLabelValues("success").Inc()
}

func (p *Pipeline) publish(ctx context.Context, event domain.PredictionEvent) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.PublishPrediction(ctx, event); err != nil {
		p.metrics.EventsPublished.WithLabelValues("error").Inc()
		p.logger.Error("publish prediction failed", "id", event.ID, "error", err)
		return
	}
	p.metrics.EventsPublished.WithLabelValues("success").Inc()
}

// reason labels a failure by its taxonomy type.
func reason(err error) string {
	var (
		fe *domain.FetchError
		pe *domain.ParseError
		ne *domain.NoDataError
		se *domain.SchemaError
	)
	switch {
	case errors.As(err, &fe):
		return "fetch"
	case errors.As(err, &pe):
		return "parse"
	case errors.As(err, &ne):
		return "no_data"
	case errors.As(err, &se):
		return "schema"
	default:
		return "other"
	}
}
