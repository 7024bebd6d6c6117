// Command predict runs the rainfall pipeline once for a station and day and
// prints the scored result as JSON. Settings come from the same environment
// variables as the service; flags override the model path and data directory.
//
// Usage:
//
//	go run ./cmd/predict -location Sydney -date 2024-03-15
//	go run ./cmd/predict -location Perth -date 2024-03-15 -model artifacts/xgb_model.json
//
// Exit status is 0 on success, 1 for bad input or configuration, and 2 when
// the pipeline fails.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/rainfall-forecast/internal/adapter/bom"
	"github.com/couchcryptid/rainfall-forecast/internal/adapter/model"
	"github.com/couchcryptid/rainfall-forecast/internal/config"
	"github.com/couchcryptid/rainfall-forecast/internal/domain"
	"github.com/couchcryptid/rainfall-forecast/internal/features"
	"github.com/couchcryptid/rainfall-forecast/internal/observability"
	"github.com/couchcryptid/rainfall-forecast/internal/pipeline"
)

type output struct {
	Location   string            `json:"location"`
	Station    string            `json:"station_code"`
	Date       string            `json:"date"`
	URL        string            `json:"url"`
	File       string            `json:"file"`
	Class      domain.RainClass  `json:"class"`
	Confidence float64           `json:"confidence"`
	Features   domain.FeatureRow `json:"features"`
	States     []pipeline.State  `json:"states"`
}

func main() {
	location := flag.String("location", "", "station name, e.g. Sydney")
	date := flag.String("date", "", "observation date as YYYY-MM-DD")
	modelPath := flag.String("model", "", "classifier artifact (default MODEL_PATH)")
	dataDir := flag.String("data-dir", "", "directory for fetched reports (default FETCHED_DATA_DIR)")
	flag.Parse()

	if *location == "" || *date == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load config: %v\n", err)
		os.Exit(1)
	}
	if *modelPath != "" {
		cfg.ModelPath = *modelPath
	}
	if *dataDir != "" {
		cfg.FetchedDataDir = *dataDir
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	code := run(ctx, cfg, observability.NewMetrics(), *location, *date, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, cfg *config.Config, metrics *observability.Metrics, location, date string, stdout, stderr io.Writer) int {
	if _, err := domain.LookupStation(location); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	day, err := domain.ParseRequestDate(date)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	// Pipeline logs go to stderr so stdout stays machine-readable.
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	p := pipeline.New(
		bom.NewClient(cfg.BOMBaseURL, cfg.FetchedDataDir, cfg.FetchTimeout, metrics, logger),
		pipeline.CleanFunc(bom.Clean),
		features.NewBuilder(metrics, logger),
		model.NewPredictor(model.FileLoader(cfg.ModelPath), metrics, logger),
		logger,
		metrics,
	)

	res, err := p.Run(ctx, pipeline.Request{Location: location, Date: day})
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(output{
		Location:   res.Station.Name,
		Station:    res.Station.Code,
		Date:       res.Date.Format(domain.DateLayout),
		URL:        res.URL,
		File:       res.Path,
		Class:      res.Prediction.Class,
		Confidence: res.Prediction.Confidence,
		Features:   res.Row,
		States:     res.States,
	}); err != nil {
		fmt.Fprintf(stderr, "error: write output: %v\n", err)
		return 1
	}
	return 0
}
