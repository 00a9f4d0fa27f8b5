package logic

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

const baseEpoch int64 = 1706000000

func at(hour int) time.Time {
	return time.Date(2026, 6, 1, hour, 30, 0, 0, time.UTC)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	want := Config{
		MistDuration:       25000 * time.Millisecond,
		MistInterval:       7200 * time.Second,
		WindowStart:        9,
		WindowEnd:          18,
		TimeJumpThreshold:  300 * time.Second,
		FailsafeMultiplier: 3,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("DefaultConfig mismatch (-want +got):\n%s", diff)
	}
	if cfg.FailsafeDuration() != 75*time.Second {
		t.Errorf("FailsafeDuration: got %v, want 75s", cfg.FailsafeDuration())
	}
}

func TestDefaultPersisted(t *testing.T) {
	want := Persisted{LastMistEpoch: 0, HasEverMisted: false, Enabled: true}
	if got := DefaultPersisted(); got != want {
		t.Errorf("DefaultPersisted: got %+v, want %+v", got, want)
	}
}

func TestHourInWindowEveryHour(t *testing.T) {
	cfg := DefaultConfig()
	for h := 0; h < 24; h++ {
		want := h >= 9 && h < 18
		if got := HourInWindow(cfg, h); got != want {
			t.Errorf("hour %d: got %v, want %v", h, got, want)
		}
		if got := InActiveWindow(cfg, at(h), true); got != want {
			t.Errorf("hour %d with valid clock: got %v, want %v", h, got, want)
		}
		if InActiveWindow(cfg, at(h), false) {
			t.Errorf("hour %d with invalid clock: expected false", h)
		}
	}
}

func TestIntervalElapsed(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		name string
		last int64
		now  int64
		want bool
	}{
		{"one hour", baseEpoch, baseEpoch + 3600, false},
		{"one second short", baseEpoch, baseEpoch + 7199, false},
		{"exactly interval", baseEpoch, baseEpoch + 7200, true},
		{"past interval", baseEpoch, baseEpoch + 10000, true},
		{"clock behind last mist", baseEpoch, baseEpoch - 60, false},
		{"epoch unavailable", baseEpoch, 0, false},
		{"never stamped", 0, baseEpoch, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IntervalElapsed(cfg, tt.last, tt.now); got != tt.want {
				t.Errorf("IntervalElapsed(%d, %d): got %v, want %v", tt.last, tt.now, got, tt.want)
			}
		})
	}
}

func TestTimeJump(t *testing.T) {
	tests := []struct {
		prev, cur int64
		want      int64
	}{
		{0, baseEpoch, 0},
		{baseEpoch, 0, 0},
		{baseEpoch, baseEpoch, 0},
		{baseEpoch, baseEpoch + 1, 1},
		{baseEpoch, baseEpoch + 301, 301},
		{baseEpoch + 3600, baseEpoch, 3600},
	}
	for _, tt := range tests {
		if got := TimeJump(tt.prev, tt.cur); got != tt.want {
			t.Errorf("TimeJump(%d, %d): got %d, want %d", tt.prev, tt.cur, got, tt.want)
		}
	}
}

func TestIsTimeJumpThreshold(t *testing.T) {
	cfg := DefaultConfig()
	if IsTimeJump(cfg, baseEpoch, baseEpoch+300) {
		t.Error("a delta equal to the threshold should not be a jump")
	}
	if !IsTimeJump(cfg, baseEpoch, baseEpoch+301) {
		t.Error("a delta above the threshold should be a jump")
	}
	if !IsTimeJump(cfg, baseEpoch, baseEpoch-301) {
		t.Error("a backwards delta above the threshold should be a jump")
	}
	if IsTimeJump(cfg, 0, baseEpoch) {
		t.Error("first reading should never be a jump")
	}
}

func TestPulseElapsed(t *testing.T) {
	if got := PulseElapsed(1000, 26000); got != 25*time.Second {
		t.Errorf("got %v, want 25s", got)
	}
	if got := PulseElapsed(1000, 1000); got != 0 {
		t.Errorf("got %v, want 0", got)
	}
	// Counter went backwards: must read as a very long pulse.
	if got := PulseElapsed(5000, 1000); got < DefaultConfig().FailsafeDuration() {
		t.Errorf("backwards counter: got %v, want >= failsafe", got)
	}
}

func TestTransitionAwaitingNoClock(t *testing.T) {
	step := Transition(DefaultConfig(), StateAwaitingTimeSync, Inputs{
		WallClock:      at(10),
		WallClockValid: false,
		EpochSec:       baseEpoch,
		Persisted:      DefaultPersisted(),
	})
	want := Step{Next: StateAwaitingTimeSync}
	if diff := cmp.Diff(want, step); diff != "" {
		t.Errorf("step mismatch (-want +got):\n%s", diff)
	}
}

func TestTransitionAwaitingFallsThroughToStart(t *testing.T) {
	step := Transition(DefaultConfig(), StateAwaitingTimeSync, Inputs{
		WallClock:      at(10),
		WallClockValid: true,
		EpochSec:       baseEpoch,
		Persisted:      DefaultPersisted(),
	})
	want := Step{Next: StateMisting, Action: ActionStart, Synced: true}
	if diff := cmp.Diff(want, step); diff != "" {
		t.Errorf("step mismatch (-want +got):\n%s", diff)
	}
}

func TestTransitionAwaitingOutsideWindow(t *testing.T) {
	step := Transition(DefaultConfig(), StateAwaitingTimeSync, Inputs{
		WallClock:      at(20),
		WallClockValid: true,
		EpochSec:       baseEpoch,
		Persisted:      DefaultPersisted(),
	})
	want := Step{Next: StateIdle, Synced: true}
	if diff := cmp.Diff(want, step); diff != "" {
		t.Errorf("step mismatch (-want +got):\n%s", diff)
	}
}

func TestTransitionIdle(t *testing.T) {
	cfg := DefaultConfig()
	misted := Persisted{LastMistEpoch: baseEpoch, HasEverMisted: true, Enabled: true}

	tests := []struct {
		name   string
		in     Inputs
		action Action
	}{
		{
			name:   "first mist in window",
			in:     Inputs{WallClock: at(9), WallClockValid: true, EpochSec: baseEpoch, Persisted: DefaultPersisted()},
			action: ActionStart,
		},
		{
			name:   "first mist before window",
			in:     Inputs{WallClock: at(8), WallClockValid: true, EpochSec: baseEpoch, Persisted: DefaultPersisted()},
			action: ActionNone,
		},
		{
			name:   "first mist at window end",
			in:     Inputs{WallClock: at(18), WallClockValid: true, EpochSec: baseEpoch, Persisted: DefaultPersisted()},
			action: ActionNone,
		},
		{
			name:   "interval not elapsed",
			in:     Inputs{WallClock: at(11), WallClockValid: true, EpochSec: baseEpoch + 7199, Persisted: misted},
			action: ActionNone,
		},
		{
			name:   "interval elapsed exactly",
			in:     Inputs{WallClock: at(11), WallClockValid: true, EpochSec: baseEpoch + 7200, Persisted: misted},
			action: ActionStart,
		},
		{
			name:   "clock lost",
			in:     Inputs{WallClock: at(11), WallClockValid: false, EpochSec: baseEpoch + 7200, Persisted: misted},
			action: ActionNone,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			step := Transition(cfg, StateIdle, tt.in)
			if step.Action != tt.action {
				t.Errorf("action: got %v, want %v", step.Action, tt.action)
			}
			wantNext := StateIdle
			if tt.action == ActionStart {
				wantNext = StateMisting
			}
			if step.Next != wantNext {
				t.Errorf("next: got %s, want %s", step.Next, wantNext)
			}
			if step.Synced {
				t.Error("Synced should only be set when leaving AWAITING_TIME_SYNC")
			}
		})
	}
}

func TestTransitionMisting(t *testing.T) {
	cfg := DefaultConfig()
	const start = 1000000

	tests := []struct {
		name    string
		elapsed uint64
		next    State
		action  Action
	}{
		{"just started", 0, StateMisting, ActionNone},
		{"one ms short", 24999, StateMisting, ActionNone},
		{"duration reached", 25000, StateIdle, ActionStop},
		{"late poll", 40000, StateIdle, ActionStop},
		{"failsafe bound", 75000, StateIdle, ActionFailsafe},
		{"far past failsafe", 600000, StateIdle, ActionFailsafe},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			step := Transition(cfg, StateMisting, Inputs{
				WallClock:      at(10),
				WallClockValid: true,
				MonotonicMs:    start + tt.elapsed,
				MistStartMs:    start,
				EpochSec:       baseEpoch,
			})
			want := Step{Next: tt.next, Action: tt.action}
			if diff := cmp.Diff(want, step); diff != "" {
				t.Errorf("step mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTransitionMistingIgnoresClockLoss(t *testing.T) {
	step := Transition(DefaultConfig(), StateMisting, Inputs{
		WallClockValid: false,
		MonotonicMs:    30000,
		MistStartMs:    5000,
	})
	if step.Action != ActionStop {
		t.Errorf("expected stop driven by monotonic time alone, got %v", step.Action)
	}
}

func TestTransitionMonotonicReset(t *testing.T) {
	step := Transition(DefaultConfig(), StateMisting, Inputs{
		WallClockValid: true,
		WallClock:      at(10),
		MonotonicMs:    100,
		MistStartMs:    500000,
	})
	if step.Action != ActionFailsafe {
		t.Errorf("expected failsafe when the counter goes backwards, got %v", step.Action)
	}
}

func TestSinceAndUntilNextMist(t *testing.T) {
	cfg := DefaultConfig()

	if _, ok := SinceLastMist(DefaultPersisted(), baseEpoch); ok {
		t.Error("SinceLastMist should be unknown before the first mist")
	}
	d, ok := UntilNextMist(cfg, DefaultPersisted(), baseEpoch)
	if !ok || d != 0 {
		t.Errorf("UntilNextMist before first mist: got (%v, %v), want (0, true)", d, ok)
	}

	p := Persisted{LastMistEpoch: baseEpoch, HasEverMisted: true, Enabled: true}

	since, ok := SinceLastMist(p, baseEpoch+3600)
	if !ok || since != time.Hour {
		t.Errorf("SinceLastMist: got (%v, %v), want (1h, true)", since, ok)
	}
	until, ok := UntilNextMist(cfg, p, baseEpoch+3600)
	if !ok || until != time.Hour {
		t.Errorf("UntilNextMist: got (%v, %v), want (1h, true)", until, ok)
	}
	until, ok = UntilNextMist(cfg, p, baseEpoch+9000)
	if !ok || until != 0 {
		t.Errorf("UntilNextMist past interval: got (%v, %v), want (0, true)", until, ok)
	}
	if _, ok := UntilNextMist(cfg, p, 0); ok {
		t.Error("UntilNextMist should be unknown without an epoch")
	}
}

func TestActionString(t *testing.T) {
	want := map[Action]string{
		ActionNone:     "NONE",
		ActionStart:    "START",
		ActionStop:     "STOP",
		ActionFailsafe: "FAILSAFE",
	}
	for a, s := range want {
		if a.String() != s {
			t.Errorf("Action(%d).String(): got %q, want %q", a, a.String(), s)
		}
	}
}
