package clock

import "time"

// Fake is a test double whose readings are set directly.
type Fake struct {
	// Wall is the calendar time returned by WallClock.
	Wall time.Time
	// Synced controls whether WallClock reports a valid time.
	Synced bool
	// Millis is the monotonic counter.
	Millis uint64
	// Epoch is returned by EpochSeconds, 0 = unavailable.
	Epoch int64
}

// NewFake creates a synced Fake at the given time with the monotonic counter at zero.
func NewFake(wall time.Time) *Fake {
	return &Fake{Wall: wall, Synced: true, Epoch: wall.Unix()}
}

// WallClock returns Wall when Synced.
func (f *Fake) WallClock() (time.Time, bool) {
	if !f.Synced {
		return time.Time{}, false
	}
	return f.Wall, true
}

// MonotonicMillis returns Millis.
func (f *Fake) MonotonicMillis() uint64 {
	return f.Millis
}

// EpochSeconds returns Epoch.
func (f *Fake) EpochSeconds() int64 {
	return f.Epoch
}

// SetHour moves the wall clock to the given hour of the same day.
func (f *Fake) SetHour(hour int) {
	w := f.Wall
	f.Wall = time.Date(w.Year(), w.Month(), w.Day(), hour, w.Minute(), w.Second(), 0, w.Location())
}

// Advance moves the monotonic counter, the wall clock and the epoch forward together.
func (f *Fake) Advance(d time.Duration) {
	f.Millis += uint64(d.Milliseconds())
	f.Wall = f.Wall.Add(d)
	if f.Epoch != 0 {
		f.Epoch += int64(d / time.Second)
	}
}

// AdvanceMillis moves only the monotonic counter.
func (f *Fake) AdvanceMillis(ms uint64) {
	f.Millis += ms
}

// AdvanceEpoch moves only the epoch reading, simulating an NTP step or a reboot gap.
func (f *Fake) AdvanceEpoch(sec int64) {
	f.Epoch += sec
}
