package scheduler

import (
	"time"

	"github.com/sweeney/garden-mister/internal/logic"
)

// Snapshot is a point-in-time view of the scheduler for status reporting.
type Snapshot struct {
	State         logic.State
	Enabled       bool
	HasEverMisted bool
	LastMistEpoch int64
	EpochNow      int64

	// SinceLastMist is valid when SinceKnown is true.
	SinceLastMist time.Duration
	SinceKnown    bool

	// UntilNextMist is the interval remaining before a mist is allowed,
	// ignoring the active window. Valid when UntilKnown is true.
	UntilNextMist time.Duration
	UntilKnown    bool

	InWindow bool
	// MistElapsed is how long the current pulse has run, zero unless MISTING.
	MistElapsed time.Duration
}

// Status returns a snapshot. It has no side effects.
func (s *Scheduler) Status() Snapshot {
	epoch := s.clock.EpochSeconds()
	wall, valid := s.clock.WallClock()

	snap := Snapshot{
		State:         s.state,
		Enabled:       s.persisted.Enabled,
		HasEverMisted: s.persisted.HasEverMisted,
		LastMistEpoch: s.persisted.LastMistEpoch,
		EpochNow:      epoch,
		InWindow:      logic.InActiveWindow(s.cfg, wall, valid),
	}
	snap.SinceLastMist, snap.SinceKnown = logic.SinceLastMist(s.persisted, epoch)
	snap.UntilNextMist, snap.UntilKnown = logic.UntilNextMist(s.cfg, s.persisted, epoch)
	if s.state == logic.StateMisting {
		snap.MistElapsed = logic.PulseElapsed(s.mistStartMs, s.clock.MonotonicMillis())
	}
	return snap
}
