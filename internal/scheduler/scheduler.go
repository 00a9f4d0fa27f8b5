// Package scheduler drives the misting relay from the policy in package logic.
//
// A Scheduler is not safe for concurrent use. Exactly one goroutine polls
// Update and issues ForceMist, SetEnabled, LoadState and SaveState; none of
// them block beyond the synchronous calls into the clock, relay and store.
package scheduler

import (
	"fmt"
	"time"

	"github.com/sweeney/garden-mister/internal/clock"
	"github.com/sweeney/garden-mister/internal/gpio"
	"github.com/sweeney/garden-mister/internal/logic"
	"github.com/sweeney/garden-mister/internal/store"
)

// Log lines matched by operators and tests.
const (
	msgMistStart      = "MIST START"
	msgMistStop       = "MIST STOP"
	msgAlreadyMisting = "ERROR: Already misting, cannot force"
	msgDisabled       = "ERROR: Scheduler disabled, cannot force mist"
)

// Scheduler owns the misting state machine.
type Scheduler struct {
	cfg   logic.Config
	clock clock.Source
	relay gpio.Relay
	store store.Store // may be nil
	log   Logger      // may be nil

	state          logic.State
	persisted      logic.Persisted
	mistStartMs    uint64
	lastKnownEpoch int64
}

// New creates a Scheduler in AWAITING_TIME_SYNC with default persisted
// state. Call LoadState to restore history. st and logger may be nil.
func New(cfg logic.Config, src clock.Source, relay gpio.Relay, st store.Store, logger Logger) *Scheduler {
	return &Scheduler{
		cfg:       cfg,
		clock:     src,
		relay:     relay,
		store:     st,
		log:       logger,
		state:     logic.StateAwaitingTimeSync,
		persisted: logic.DefaultPersisted(),
	}
}

// Update runs one poll of the state machine and returns the events it produced.
func (s *Scheduler) Update() []logic.Event {
	epoch := s.clock.EpochSeconds()
	jump, jumped := s.checkTimeJump(epoch)

	// A pulse in progress is always serviced so the relay cannot be left on
	// by disabling mid-cycle.
	if !s.persisted.Enabled && s.state != logic.StateMisting {
		return nil
	}

	var events []logic.Event
	if jumped {
		events = append(events, jump)
	}

	wall, valid := s.clock.WallClock()
	step := logic.Transition(s.cfg, s.state, logic.Inputs{
		WallClock:      wall,
		WallClockValid: valid,
		MonotonicMs:    s.clock.MonotonicMillis(),
		EpochSec:       epoch,
		MistStartMs:    s.mistStartMs,
		Persisted:      s.persisted,
	})

	if step.Synced {
		s.logf("Time synchronized, scheduler idle (%s)", wall.Format("2006-01-02 15:04:05"))
		events = append(events, logic.Event{Type: logic.EventTimeSync, Epoch: epoch, State: logic.StateIdle})
	}

	if e, ok := s.apply(step, epoch, false); ok {
		events = append(events, e)
	}
	return events
}

// ForceMist starts a mist now, ignoring the active window and the interval.
// It fails (and logs) if a mist is running or the scheduler is disabled.
func (s *Scheduler) ForceMist() []logic.Event {
	if s.state == logic.StateMisting {
		s.logf(msgAlreadyMisting)
		return nil
	}
	if !s.persisted.Enabled {
		s.logf(msgDisabled)
		return nil
	}

	epoch := s.clock.EpochSeconds()
	e, _ := s.apply(logic.Step{Next: logic.StateMisting, Action: logic.ActionStart}, epoch, true)
	return []logic.Event{e}
}

// SetEnabled turns automatic misting on or off and persists the flag.
// Enabling while AWAITING_TIME_SYNC moves straight to IDLE if the clock is
// already valid; the TIME_SYNC event for that move is returned.
func (s *Scheduler) SetEnabled(enabled bool) []logic.Event {
	s.persisted.Enabled = enabled
	if enabled {
		s.logf("Scheduler ENABLED")
	} else {
		s.logf("Scheduler DISABLED")
	}

	var events []logic.Event
	if enabled && s.state == logic.StateAwaitingTimeSync {
		if wall, ok := s.clock.WallClock(); ok {
			s.state = logic.StateIdle
			s.logf("Time synchronized, scheduler idle (%s)", wall.Format("2006-01-02 15:04:05"))
			events = append(events, logic.Event{Type: logic.EventTimeSync, Epoch: s.clock.EpochSeconds(), State: logic.StateIdle})
		}
	}

	s.SaveState()
	return events
}

// LoadState restores persisted history. Any read failure leaves the
// first-boot defaults (0, false, true) in place.
func (s *Scheduler) LoadState() {
	if s.store == nil {
		s.persisted = logic.DefaultPersisted()
		s.logf("State load skipped: no store, using defaults")
		return
	}

	p, err := s.store.Load()
	if err != nil {
		s.persisted = logic.DefaultPersisted()
		s.logf("ERROR: State load failed, using defaults: %v", err)
		return
	}
	s.persisted = p
	s.logf("State loaded: lastMistEpoch=%d hasEverMisted=%t enabled=%t",
		p.LastMistEpoch, p.HasEverMisted, p.Enabled)
}

// SaveState writes the cached persisted state. Failures are logged, never retried.
func (s *Scheduler) SaveState() {
	if s.store == nil {
		s.logf("State save skipped: no store")
		return
	}
	if err := s.store.Save(s.persisted); err != nil {
		s.logf("ERROR: State save failed: %v", err)
	}
}

// State returns the current state.
func (s *Scheduler) State() logic.State {
	return s.state
}

// Enabled reports whether automatic misting is enabled.
func (s *Scheduler) Enabled() bool {
	return s.persisted.Enabled
}

// Persisted returns the cached persisted state.
func (s *Scheduler) Persisted() logic.Persisted {
	return s.persisted
}

// Config returns the policy the scheduler runs.
func (s *Scheduler) Config() logic.Config {
	return s.cfg
}

// Shutdown forces the relay off without persisting the interrupted pulse.
func (s *Scheduler) Shutdown() {
	if s.state == logic.StateMisting {
		s.logf("Shutdown during mist, relay forced OFF")
	}
	s.setRelay(false)
	s.state = logic.StateIdle
}

func (s *Scheduler) apply(step logic.Step, epoch int64, forced bool) (logic.Event, bool) {
	now := s.clock.MonotonicMillis()
	s.state = step.Next

	switch step.Action {
	case logic.ActionStart:
		s.setRelay(true)
		s.mistStartMs = now
		s.persisted.LastMistEpoch = epoch
		s.persisted.HasEverMisted = true
		s.logf(msgMistStart)
		return logic.Event{Type: logic.EventMistStart, Epoch: epoch, RelayOn: true, State: s.state, Forced: forced}, true

	case logic.ActionStop:
		elapsed := logic.PulseElapsed(s.mistStartMs, now)
		s.setRelay(false)
		s.logf(msgMistStop)
		s.SaveState()
		return logic.Event{Type: logic.EventMistStop, Epoch: epoch, State: s.state, Elapsed: elapsed}, true

	case logic.ActionFailsafe:
		elapsed := logic.PulseElapsed(s.mistStartMs, now)
		s.setRelay(false)
		s.logf("CRITICAL: Failsafe triggered, mist exceeded %v (elapsed %v), relay forced OFF",
			s.cfg.FailsafeDuration(), elapsed)
		return logic.Event{Type: logic.EventFailsafe, Epoch: epoch, State: s.state, Elapsed: elapsed}, true
	}
	return logic.Event{}, false
}

// checkTimeJump tracks every reading, so a stretch spent disabled is not
// mistaken for a jump once re-enabled. Jumps are only reported while enabled.
func (s *Scheduler) checkTimeJump(epoch int64) (logic.Event, bool) {
	prev := s.lastKnownEpoch
	if epoch != 0 {
		s.lastKnownEpoch = epoch
	}
	if !s.persisted.Enabled || !logic.IsTimeJump(s.cfg, prev, epoch) {
		return logic.Event{}, false
	}
	jump := logic.TimeJump(prev, epoch)
	s.logf("WARNING: Time jump detected: %ds (previous=%d current=%d)", jump, prev, epoch)
	return logic.Event{
		Type:    logic.EventTimeJump,
		Epoch:   epoch,
		RelayOn: s.state == logic.StateMisting,
		State:   s.state,
		Elapsed: time.Duration(jump) * time.Second,
	}, true
}

func (s *Scheduler) setRelay(on bool) {
	if err := s.relay.SetState(on); err != nil {
		s.logf("ERROR: relay write failed (on=%t): %v", on, err)
	}
}

func (s *Scheduler) logf(format string, args ...any) {
	if s.log == nil {
		return
	}
	if len(args) == 0 {
		s.log.Log(format)
		return
	}
	s.log.Log(fmt.Sprintf(format, args...))
}
