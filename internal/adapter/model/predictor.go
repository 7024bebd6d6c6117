// Package model adapts a pre-trained rain classifier to feature rows.
package model

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/rainfall-forecast/internal/domain"
	"github.com/couchcryptid/rainfall-forecast/internal/observability"
)

// Classifier scores one feature vector in domain.FeatureColumns order.
type Classifier interface {
	PredictClass(features []domain.Feature) (int, error)
	PredictProba(features []domain.Feature) (float64, error)
}

// Loader produces the classifier on first use.
type Loader func() (Classifier, error)

// FileLoader loads an XGBoost JSON artifact from path.
func FileLoader(path string) Loader {
	return func() (Classifier, error) {
		m, err := LoadXGBoost(path)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
}

// Predictor lazily loads a Classifier once and shares it across requests.
// A failed load is returned to the caller and attempted again next time.
type Predictor struct {
	load    Loader
	metrics *observability.Metrics
	logger  *slog.Logger

	mu  sync.Mutex
	clf Classifier
}

// NewPredictor creates a predictor that loads its classifier with load.
func NewPredictor(load Loader, metrics *observability.Metrics, logger *slog.Logger) *Predictor {
	return &Predictor{load: load, metrics: metrics, logger: logger}
}

// Ready loads the classifier if needed and reports whether it is usable.
func (p *Predictor) Ready(_ context.Context) error {
	_, err := p.classifier()
	return err
}

func (p *Predictor) classifier() (Classifier, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.clf != nil {
		return p.clf, nil
	}

	start := time.Now()
	clf, err := p.load()
	p.metrics.ModelLoadDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		p.logger.Error("classifier load failed", "error", err)
		return nil, err
	}

	p.clf = clf
	p.metrics.ModelLoaded.Set(1)
	p.logger.Info("classifier loaded", "duration", time.Since(start))
	return clf, nil
}

// Predict scores row. Label 1 is Rain with the positive probability as
// confidence; label 0 is NoRain with its complement.
func (p *Predictor) Predict(ctx context.Context, row domain.FeatureRow) (domain.PredictionResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.PredictionResult{}, err
	}

	clf, err := p.classifier()
	if err != nil {
		return domain.PredictionResult{}, fmt.Errorf("load classifier: %w", err)
	}

	features := row.Values()
	if err := checkColumns(features); err != nil {
		return domain.PredictionResult{}, err
	}
	for _, f := range features {
		if f.Missing() {
			p.metrics.MissingFeatureCell.WithLabelValues(f.Name).Inc()
		}
	}

	label, err := clf.PredictClass(features)
	if err != nil {
		return domain.PredictionResult{}, fmt.Errorf("predict class: %w", err)
	}
	if label != 0 && label != 1 {
		return domain.PredictionResult{}, &domain.SchemaError{Msg: fmt.Sprintf("classifier returned label %d", label)}
	}

	proba, err := clf.PredictProba(features)
	if err != nil {
		return domain.PredictionResult{}, fmt.Errorf("predict probability: %w", err)
	}
	if proba < 0 || proba > 1 {
		return domain.PredictionResult{}, &domain.SchemaError{Msg: fmt.Sprintf("classifier returned probability %g", proba)}
	}

	return domain.NewPredictionResult(label, proba), nil
}

func checkColumns(features []domain.Feature) error {
	if len(features) != len(domain.FeatureColumns) {
		return &domain.SchemaError{Msg: fmt.Sprintf("row has %d features, want %d", len(features), len(domain.FeatureColumns))}
	}
	for i, f := range features {
		if f.Name != domain.FeatureColumns[i] {
			return &domain.SchemaError{Feature: f.Name, Msg: fmt.Sprintf("expected %q at position %d", domain.FeatureColumns[i], i)}
		}
	}
	return nil
}
