package domain

import "github.com/jonboulle/clockwork"

// clock stamps water readings with their fetch time.
// Tests swap in a fake via SetClock for deterministic output.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source for water lookups. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
