package logic

import "time"

// Transition evaluates one poll against the policy and returns the next state
// and the action the caller must carry out. It never touches hardware.
//
// Leaving AWAITING_TIME_SYNC falls straight through to the IDLE rules, so a
// mist can start on the same poll that first sees a valid wall clock.
func Transition(cfg Config, state State, in Inputs) Step {
	var step Step

	if state == StateAwaitingTimeSync {
		if !in.WallClockValid {
			return Step{Next: StateAwaitingTimeSync}
		}
		state = StateIdle
		step.Synced = true
	}

	switch state {
	case StateIdle:
		step.Next = StateIdle
		if ShouldStart(cfg, in) {
			step.Next = StateMisting
			step.Action = ActionStart
		}

	case StateMisting:
		step.Next = StateMisting
		elapsed := PulseElapsed(in.MistStartMs, in.MonotonicMs)
		// The failsafe is checked first so a pulse observed long after its end
		// (a stalled poll loop or a monotonic reset) is reported as an anomaly
		// rather than a normal cycle.
		switch {
		case elapsed >= cfg.FailsafeDuration():
			step.Next = StateIdle
			step.Action = ActionFailsafe
		case elapsed >= cfg.MistDuration:
			step.Next = StateIdle
			step.Action = ActionStop
		}

	default:
		step.Next = state
	}

	return step
}

// ShouldStart reports whether an idle scheduler should begin a mist.
func ShouldStart(cfg Config, in Inputs) bool {
	if !InActiveWindow(cfg, in.WallClock, in.WallClockValid) {
		return false
	}
	if !in.Persisted.HasEverMisted {
		return true
	}
	return IntervalElapsed(cfg, in.Persisted.LastMistEpoch, in.EpochSec)
}

// InActiveWindow reports whether t falls in [WindowStart, WindowEnd).
// It fails closed when the wall clock is not valid.
func InActiveWindow(cfg Config, t time.Time, valid bool) bool {
	if !valid {
		return false
	}
	return HourInWindow(cfg, t.Hour())
}

// HourInWindow reports whether hour falls in [WindowStart, WindowEnd).
func HourInWindow(cfg Config, hour int) bool {
	return hour >= cfg.WindowStart && hour < cfg.WindowEnd
}

// IntervalElapsed reports whether at least MistInterval of epoch time has
// passed since lastMistEpoch. An unknown current epoch never counts as elapsed.
func IntervalElapsed(cfg Config, lastMistEpoch, epochNow int64) bool {
	if epochNow == 0 {
		return false
	}
	return epochNow-lastMistEpoch >= int64(cfg.MistInterval/time.Second)
}

// PulseElapsed returns how long the relay has been on. The subtraction is
// unsigned: a monotonic counter that went backwards yields a huge duration,
// which trips the failsafe.
func PulseElapsed(startMs, nowMs uint64) time.Duration {
	d := nowMs - startMs
	const maxMs = uint64(1<<63-1) / uint64(time.Millisecond)
	if d > maxMs {
		d = maxMs
	}
	return time.Duration(d) * time.Millisecond
}

// TimeJump returns the absolute difference between two epoch readings in
// seconds, or 0 if either reading is unavailable.
func TimeJump(prevEpoch, curEpoch int64) int64 {
	if prevEpoch == 0 || curEpoch == 0 {
		return 0
	}
	d := curEpoch - prevEpoch
	if d < 0 {
		d = -d
	}
	return d
}

// IsTimeJump reports whether the delta between two readings exceeds the threshold.
func IsTimeJump(cfg Config, prevEpoch, curEpoch int64) bool {
	return TimeJump(prevEpoch, curEpoch) > int64(cfg.TimeJumpThreshold/time.Second)
}

// SinceLastMist returns the epoch time elapsed since the last mist start.
// ok is false if no mist has happened or the current epoch is unknown.
func SinceLastMist(p Persisted, epochNow int64) (d time.Duration, ok bool) {
	if !p.HasEverMisted || epochNow == 0 {
		return 0, false
	}
	return time.Duration(epochNow-p.LastMistEpoch) * time.Second, true
}

// UntilNextMist estimates how long until the interval allows another mist.
// It ignores the active window. ok is false if the current epoch is unknown
// and a mist has already happened.
func UntilNextMist(cfg Config, p Persisted, epochNow int64) (d time.Duration, ok bool) {
	if !p.HasEverMisted {
		return 0, true
	}
	since, ok := SinceLastMist(p, epochNow)
	if !ok {
		return 0, false
	}
	if since >= cfg.MistInterval {
		return 0, true
	}
	return cfg.MistInterval - since, true
}
