package domain

import "github.com/jonboulle/clockwork"

// clock is the package time source. It decides "today" for the request window
// and stamps prediction events; tests freeze it via SetClock.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
