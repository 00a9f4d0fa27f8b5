package clock

import "time"

// Real reads time from the operating system.
type Real struct {
	// RequireSync makes the wall clock invalid while the kernel reports the
	// clock as unsynchronised. Without it only the year sanity check applies.
	RequireSync bool

	boot time.Time
	now  func() time.Time
	sync func() bool
}

// NewReal creates a Real source. The monotonic counter starts at zero now.
func NewReal(requireSync bool) *Real {
	return &Real{
		RequireSync: requireSync,
		boot:        time.Now(),
		now:         time.Now,
		sync:        kernelSynced,
	}
}

// WallClock returns local time once the clock is trusted.
func (r *Real) WallClock() (time.Time, bool) {
	t := r.now()
	if !r.valid(t) {
		return time.Time{}, false
	}
	return t.Local(), true
}

// MonotonicMillis returns milliseconds since NewReal, using Go's monotonic reading.
func (r *Real) MonotonicMillis() uint64 {
	return uint64(r.now().Sub(r.boot).Milliseconds())
}

// EpochSeconds returns unix seconds, or 0 while the clock is not trusted.
func (r *Real) EpochSeconds() int64 {
	t := r.now()
	if !r.valid(t) {
		return 0
	}
	return t.Unix()
}

func (r *Real) valid(t time.Time) bool {
	if !plausible(t) {
		return false
	}
	if r.RequireSync && !r.sync() {
		return false
	}
	return true
}
