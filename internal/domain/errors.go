package domain

import (
	"errors"
	"fmt"
)

// ErrUnknownStation is returned when a location name is not in the station registry.
var ErrUnknownStation = errors.New("unknown station")

// FetchError reports a failed download of a monthly report. URL is the exact
// address attempted so callers can show it for debugging.
type FetchError struct {
	URL        string
	StatusCode int // 0 when the request never produced a response
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports a structurally malformed report file: a missing preamble
// delimiter, a missing column, an unparseable row, or an empty table.
type ParseError struct {
	Path string
	Line int // 1-based data line, 0 when not tied to a line
	Msg  string
	Err  error
}

func (e *ParseError) Error() string {
	msg := e.Msg
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse %s line %d: %s", e.Path, e.Line, msg)
	}
	return fmt.Sprintf("parse %s: %s", e.Path, msg)
}

func (e *ParseError) Unwrap() error { return e.Err }

// NoDataError reports that the requested day has no row in the month's data.
type NoDataError struct {
	Day  int
	Rows int
}

func (e *NoDataError) Error() string {
	return fmt.Sprintf("no data available for the selected date (day %d, %d rows)", e.Day, e.Rows)
}

// SchemaError reports a feature row the classifier cannot score: column names,
// order, or categorical encoding differ from what the model was trained on.
type SchemaError struct {
	Feature string
	Msg     string
}

func (e *SchemaError) Error() string {
	if e.Feature == "" {
		return "schema mismatch: " + e.Msg
	}
	return fmt.Sprintf("schema mismatch on %q: %s", e.Feature, e.Msg)
}
