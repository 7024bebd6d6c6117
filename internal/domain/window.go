package domain

import (
	"errors"
	"fmt"
	"time"
	_ "time/tzdata" // provider zone must resolve without system zoneinfo
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// windowDays reaches back roughly 13 months; rounding down to the first of
// that month gives the ~14 months the provider keeps online.
const windowDays = 395

// providerZone is where the provider's calendar day turns over.
var providerZone = loadProviderZone()

func loadProviderZone() *time.Location {
	loc, err := time.LoadLocation("Australia/Sydney")
	if err != nil {
		return time.FixedZone("AEST", 10*60*60)
	}
	return loc
}

// ErrOutsideWindow is returned for dates the provider no longer (or does not yet) publish.
var ErrOutsideWindow = errors.New("date outside the selectable window")

// Window is the inclusive range of selectable dates.
type Window struct {
	Min time.Time
	Max time.Time
}

// CurrentWindow returns the selectable range as of the package clock. Today
// is the current calendar day in Australian eastern time.
func CurrentWindow() Window {
	now := clock.Now().In(providerZone)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	earliest := today.AddDate(0, 0, -windowDays)
	return Window{
		Min: time.Date(earliest.Year(), earliest.Month(), 1, 0, 0, 0, 0, time.UTC),
		Max: today,
	}
}

// Contains reports whether date falls inside the window.
func (w Window) Contains(date time.Time) bool {
	return !date.Before(w.Min) && !date.After(w.Max)
}

// ParseRequestDate parses a YYYY-MM-DD date and checks it against the current window.
func ParseRequestDate(s string) (time.Time, error) {
	date, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	w := CurrentWindow()
	if !w.Contains(date) {
		return time.Time{}, fmt.Errorf("%w: %s not in [%s, %s]", ErrOutsideWindow,
			s, w.Min.Format(DateLayout), w.Max.Format(DateLayout))
	}
	return date, nil
}
