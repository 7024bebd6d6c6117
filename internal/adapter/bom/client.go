package bom

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/rainfall-forecast/internal/domain"
	"github.com/couchcryptid/rainfall-forecast/internal/observability"
)

// maxReportBytes caps a monthly report download; real files are a few KB.
const maxReportBytes = 4 << 20

// Client downloads BoM Daily Weather Observations reports and stores them
// under a local directory, one file per station and month.
type Client struct {
	httpClient *http.Client
	baseURL    string
	dir        string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a report fetcher. baseURL is the product root, e.g.
// "https://reg.bom.gov.au/climate/dwo".
func NewClient(baseURL, dir string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		dir:     dir,
		metrics: metrics,
		logger:  logger,
	}
}

// ReportURL returns the provider address for a monthly report.
func (c *Client) ReportURL(key domain.ReportKey) string {
	p := key.Period()
	return fmt.Sprintf("%s/%s/text/%s.%s.csv", c.baseURL, p, key.StationCode, p)
}

// Path returns the local file a report is stored at.
func (c *Client) Path(key domain.ReportKey) string {
	return filepath.Join(c.dir, key.FileName())
}

// Fetch downloads the report for key in a single attempt and writes it to
// Path(key), replacing any earlier copy. Failures return *domain.FetchError
// and leave the local file as it was.
func (c *Client) Fetch(ctx context.Context, key domain.ReportKey) (string, error) {
	u := c.ReportURL(key)
	start := time.Now()

	body, err := c.get(ctx, u)
	c.metrics.FetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return "", err
	}
	c.metrics.FetchBytes.Observe(float64(len(body)))

	path := c.Path(key)
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return "", fmt.Errorf("create fetched data dir: %w", err)
	}
	if err := writeFileAtomic(path, body); err != nil {
		return "", fmt.Errorf("store report %s: %w", key, err)
	}

	c.logger.Debug("report fetched", "url", u, "path", path, "bytes", len(body))
	return path, nil
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &domain.FetchError{URL: u, Err: fmt.Errorf("create request: %w", err)}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.FetchError{URL: u, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxReportBytes))
		return nil, &domain.FetchError{URL: u, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReportBytes+1))
	if err != nil {
		return nil, &domain.FetchError{URL: u, Err: fmt.Errorf("read body: %w", err)}
	}
	if len(body) > maxReportBytes {
		return nil, &domain.FetchError{URL: u, Err: fmt.Errorf("report exceeds %d bytes", maxReportBytes)}
	}
	return body, nil
}
