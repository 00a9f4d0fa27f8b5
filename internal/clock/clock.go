// Package clock provides the scheduler's view of time with hardware abstraction.
// The real implementation reads the system clock and the kernel's NTP state.
// The fake implementation allows testing without waiting on real time.
package clock

import "time"

// Source supplies the three time readings the scheduler needs.
type Source interface {
	// WallClock returns local calendar time. ok is false until the clock
	// has been synchronised.
	WallClock() (t time.Time, ok bool)

	// MonotonicMillis returns a counter that never decreases while the
	// process runs and restarts from zero on every boot.
	MonotonicMillis() uint64

	// EpochSeconds returns unix seconds, or 0 if the clock is not synchronised.
	EpochSeconds() int64
}

// minValidYear guards against a board without an RTC that booted at 1970.
const minValidYear = 2024

func plausible(t time.Time) bool {
	return t.Year() >= minValidYear
}
