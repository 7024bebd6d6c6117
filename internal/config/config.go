package config

import (
	"errors"
	"os"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// BoM report fetching.
	BOMBaseURL     string
	FetchTimeout   time.Duration
	FetchedDataDir string

	// Classifier artifact.
	ModelPath string

	// Observation archive; disabled when DatabaseURL is empty.
	DatabaseURL string

	// Prediction events; disabled when no brokers are configured.
	KafkaBrokers            []string
	KafkaPredictionTopic    string
	PredictionEventsEnabled bool
}

// Load reads configuration from environment variables, applying defaults where
// unset. A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load() // ignore missing file

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	fetchTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("FETCH_TIMEOUT", "10s"))
	if err != nil || fetchTimeout <= 0 {
		return nil, errors.New("invalid FETCH_TIMEOUT")
	}

	brokers := sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS"))
	eventsEnabled := len(brokers) > 0
	if v := os.Getenv("PREDICTION_EVENTS_ENABLED"); v != "" {
		eventsEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		BOMBaseURL:     strings.TrimRight(sharedcfg.EnvOrDefault("BOM_BASE_URL", "https://reg.bom.gov.au/climate/dwo"), "/"),
		FetchTimeout:   fetchTimeout,
		FetchedDataDir: sharedcfg.EnvOrDefault("FETCHED_DATA_DIR", "data/fetched"),

		ModelPath: sharedcfg.EnvOrDefault("MODEL_PATH", "artifacts/xgb_model.json"),

		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),

		KafkaBrokers:            brokers,
		KafkaPredictionTopic:    sharedcfg.EnvOrDefault("KAFKA_PREDICTION_TOPIC", "rainfall-predictions"),
		PredictionEventsEnabled: eventsEnabled,
	}

	if cfg.PredictionEventsEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("PREDICTION_EVENTS_ENABLED is true but KAFKA_BROKERS is not set")
	}

	return cfg, nil
}

// ArchiveEnabled reports whether parsed observations should be persisted.
func (c *Config) ArchiveEnabled() bool {
	return c.DatabaseURL != ""
}
