// Package logic contains the pure misting policy and state machine.
// This package has NO external dependencies (no GPIO, MQTT, storage, OS, or time.Sleep).
// Time is always injected through Inputs.
package logic

import "time"

// State is the scheduler's position in the misting cycle.
type State string

const (
	StateAwaitingTimeSync State = "AWAITING_TIME_SYNC"
	StateIdle             State = "IDLE"
	StateMisting          State = "MISTING"
)

// Action is the side effect a transition asks the scheduler to perform.
type Action int

const (
	ActionNone Action = iota
	// ActionStart turns the relay on and records the mist start.
	ActionStart
	// ActionStop turns the relay off and persists the completed cycle.
	ActionStop
	// ActionFailsafe forces the relay off without persisting.
	ActionFailsafe
)

func (a Action) String() string {
	switch a {
	case ActionStart:
		return "START"
	case ActionStop:
		return "STOP"
	case ActionFailsafe:
		return "FAILSAFE"
	default:
		return "NONE"
	}
}

// Config holds the misting policy constants.
type Config struct {
	MistDuration       time.Duration // relay on-time per cycle
	MistInterval       time.Duration // minimum spacing between mist starts (epoch based)
	WindowStart        int           // first active hour, inclusive
	WindowEnd          int           // last active hour, exclusive
	TimeJumpThreshold  time.Duration // epoch delta between polls that is logged as a jump
	FailsafeMultiplier int           // hard upper bound on a pulse, in multiples of MistDuration
}

// DefaultConfig returns the stock misting policy: 25s every 2h between 09:00 and 18:00.
func DefaultConfig() Config {
	return Config{
		MistDuration:       25 * time.Second,
		MistInterval:       2 * time.Hour,
		WindowStart:        9,
		WindowEnd:          18,
		TimeJumpThreshold:  5 * time.Minute,
		FailsafeMultiplier: 3,
	}
}

// FailsafeDuration returns the pulse length after which the relay is forced off.
func (c Config) FailsafeDuration() time.Duration {
	return time.Duration(c.FailsafeMultiplier) * c.MistDuration
}

// Persisted is the state that survives a reboot.
type Persisted struct {
	LastMistEpoch int64 // unix seconds of the last mist start, 0 = never
	HasEverMisted bool
	Enabled       bool
}

// DefaultPersisted is what a first boot (or an unreadable store) looks like.
func DefaultPersisted() Persisted {
	return Persisted{Enabled: true}
}

// Inputs is one poll's worth of observations.
type Inputs struct {
	WallClock      time.Time
	WallClockValid bool
	MonotonicMs    uint64
	EpochSec       int64 // 0 = unavailable
	MistStartMs    uint64
	Persisted      Persisted
}

// Step is the result of a transition.
type Step struct {
	Next   State
	Action Action
	// Synced is set when the call left AWAITING_TIME_SYNC.
	Synced bool
}

// EventType identifies a scheduler event to be published.
type EventType string

const (
	EventMistStart EventType = "MIST_START"
	EventMistStop  EventType = "MIST_STOP"
	EventFailsafe  EventType = "FAILSAFE"
	EventTimeJump  EventType = "TIME_JUMP"
	EventTimeSync  EventType = "TIME_SYNC"
)

// Event is a scheduler occurrence worth reporting outside the process.
type Event struct {
	Type    EventType
	Epoch   int64 // epoch seconds at the time of the event, 0 if unknown
	RelayOn bool
	State   State
	Elapsed time.Duration // pulse length for stop/failsafe, jump size for TIME_JUMP
	Forced  bool          // mist started by FORCE_MIST
}
