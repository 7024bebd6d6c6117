// Package features turns a cleaned monthly report into model-ready feature rows.
package features

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/couchcryptid/rainfall-forecast/internal/domain"
	"github.com/couchcryptid/rainfall-forecast/internal/observability"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"golang.org/x/text/encoding/charmap"
)

// Builder reads cleaned reports into FeatureRows.
type Builder struct {
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewBuilder creates a feature builder.
func NewBuilder(metrics *observability.Metrics, logger *slog.Logger) *Builder {
	return &Builder{metrics: metrics, logger: logger}
}

// BuildFile opens a cleaned ISO-8859-1 report and builds one row per day,
// ordered by date. Location is stamped on every row.
func (b *Builder) BuildFile(path, location string) ([]domain.FeatureRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open report: %w", err)
	}
	defer f.Close()

	return b.Build(charmap.ISO8859_1.NewDecoder().Reader(f), path, location)
}

// Build parses UTF-8 CSV text whose first line is the header. path is only
// used to label errors.
func (b *Builder) Build(r io.Reader, path, location string) ([]domain.FeatureRow, error) {
	if _, err := domain.LookupStation(location); err != nil {
		return nil, err
	}

	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return nil, &domain.ParseError{Path: path, Msg: "read table", Err: df.Err}
	}

	df, err := canonicalize(df)
	if err != nil {
		return nil, &domain.ParseError{Path: path, Msg: err.Error()}
	}

	cols := make(map[string][]string, df.Ncol())
	for _, name := range df.Names() {
		cols[name] = df.Col(name).Records()
	}

	rows := make([]domain.FeatureRow, 0, df.Nrow())
	cells := make(map[string]string, len(cols))
	for i := 0; i < df.Nrow(); i++ {
		for name, values := range cols {
			cells[name] = values[i]
		}
		date, err := domain.ParseObservationDate(cells["Date"])
		if err != nil {
			// +2: the header is line 1 and rows are 0-based.
			return nil, &domain.ParseError{Path: path, Line: i + 2, Msg: "bad Date cell", Err: err}
		}
		rows = append(rows, domain.DeriveFeatures(domain.NewWeatherRecord(location, date, cells)))
	}

	slices.SortStableFunc(rows, func(a, b domain.FeatureRow) int {
		return a.Date.Compare(b.Date)
	})
	for i := 1; i < len(rows); i++ {
		if rows[i].Date.Equal(rows[i-1].Date) {
			return nil, &domain.ParseError{Path: path,
				Msg: "duplicate date " + rows[i].Date.Format(domain.DateLayout)}
		}
	}

	b.metrics.FeatureRowsBuilt.Add(float64(len(rows)))
	b.logger.Debug("feature rows built", "path", path, "rows", len(rows))
	return rows, nil
}

// canonicalize drops the unnamed index column and the columns with no place
// in a feature row, then renames provider headers to canonical names.
func canonicalize(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	names := df.Names()
	if len(names) == 0 {
		return df, fmt.Errorf("no columns")
	}

	var drop []string
	// The leading unnamed column is an index; gota names it X0.
	drop = append(drop, names[0])
	for _, name := range names[1:] {
		if slices.Contains(domain.DroppedColumns, strings.TrimSpace(name)) {
			drop = append(drop, name)
		}
	}
	df = df.Drop(drop)
	if df.Err != nil {
		return df, fmt.Errorf("drop columns: %w", df.Err)
	}

	present := make(map[string]bool)
	for _, name := range df.Names() {
		canonical, ok := domain.ColumnRenames[strings.TrimSpace(name)]
		if !ok {
			continue
		}
		if canonical != name {
			df = df.Rename(canonical, name)
			if df.Err != nil {
				return df, fmt.Errorf("rename %q: %w", name, df.Err)
			}
		}
		present[canonical] = true
	}

	for _, canonical := range requiredColumns() {
		if !present[canonical] {
			return df, fmt.Errorf("missing column %s", canonical)
		}
	}
	return df, nil
}

// requiredColumns are the canonical columns every report must carry.
func requiredColumns() []string {
	out := []string{"Date"}
	out = append(out, domain.NumericColumns...)
	for _, c := range domain.CategoricalColumns {
		if c != "Location" {
			out = append(out, c)
		}
	}
	return out
}
