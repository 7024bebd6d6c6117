package model

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/couchcryptid/rainfall-forecast/internal/domain"
	"github.com/couchcryptid/rainfall-forecast/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClassifier struct {
	class int
	proba float64
	err   error
}

func (f fakeClassifier) PredictClass([]domain.Feature) (int, error) { return f.class, f.err }

func (f fakeClassifier) PredictProba([]domain.Feature) (float64, error) { return f.proba, f.err }

func testPredictor(load Loader) *Predictor {
	return NewPredictor(load, observability.NewMetricsForTesting(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func staticLoader(c Classifier) Loader {
	return func() (Classifier, error) { return c, nil }
}

func TestPredictor_Predict(t *testing.T) {
	tests := []struct {
		name       string
		clf        fakeClassifier
		class      domain.RainClass
		confidence float64
	}{
		{"rain", fakeClassifier{class: 1, proba: 0.82}, domain.Rain, 0.82},
		{"no rain", fakeClassifier{class: 0, proba: 0.3}, domain.NoRain, 0.7},
		{"borderline", fakeClassifier{class: 0, proba: 0.5}, domain.NoRain, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testPredictor(staticLoader(tt.clf))
			res, err := p.Predict(context.Background(), sydneyRow())
			require.NoError(t, err)
			assert.Equal(t, tt.class, res.Class)
			assert.InDelta(t, tt.confidence, res.Confidence, 1e-9)
		})
	}
}

func TestPredictor_LoadsOnce(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	p := testPredictor(func() (Classifier, error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		return fakeClassifier{class: 1, proba: 0.9}, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.Predict(context.Background(), sydneyRow())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, calls)
}

func TestPredictor_RetriesFailedLoad(t *testing.T) {
	calls := 0
	p := testPredictor(func() (Classifier, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("artifact missing")
		}
		return fakeClassifier{class: 1, proba: 0.6}, nil
	})

	require.Error(t, p.Ready(context.Background()))
	require.NoError(t, p.Ready(context.Background()))
	require.NoError(t, p.Ready(context.Background()))
	assert.Equal(t, 2, calls)
}

func TestPredictor_SchemaErrors(t *testing.T) {
	t.Run("label out of range", func(t *testing.T) {
		p := testPredictor(staticLoader(fakeClassifier{class: 2, proba: 0.5}))
		_, err := p.Predict(context.Background(), sydneyRow())
		var se *domain.SchemaError
		require.True(t, errors.As(err, &se))
	})

	t.Run("probability out of range", func(t *testing.T) {
		p := testPredictor(staticLoader(fakeClassifier{class: 1, proba: 1.2}))
		_, err := p.Predict(context.Background(), sydneyRow())
		var se *domain.SchemaError
		require.True(t, errors.As(err, &se))
	})

	t.Run("classifier error passes through", func(t *testing.T) {
		inner := &domain.SchemaError{Feature: "Location", Msg: "unknown category"}
		p := testPredictor(staticLoader(fakeClassifier{err: inner}))
		_, err := p.Predict(context.Background(), sydneyRow())
		require.ErrorIs(t, err, inner)
	})
}

func TestPredictor_WithXGBoost(t *testing.T) {
	p := testPredictor(FileLoader(testModel))
	res, err := p.Predict(context.Background(), sydneyRow())
	require.NoError(t, err)
	assert.Equal(t, domain.Rain, res.Class)
	assert.InDelta(t, sigmoid(1.7), res.Confidence, 1e-9)
}

func TestPredictor_MissingArtifact(t *testing.T) {
	p := testPredictor(FileLoader("testdata/absent.json"))
	_, err := p.Predict(context.Background(), sydneyRow())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load classifier")
}

func TestCheckColumns(t *testing.T) {
	features := sydneyRow().Values()
	require.NoError(t, checkColumns(features))

	features[0].Name = "Station"
	var se *domain.SchemaError
	require.True(t, errors.As(checkColumns(features), &se))
	assert.Equal(t, "Station", se.Feature)
}
