// Package status provides a thread-safe status tracker for the mister daemon.
// The poll loop writes to it; HTTP handlers and MQTT system events read from it.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/garden-mister/internal/logic"
	"github.com/sweeney/garden-mister/internal/scheduler"
)

// NetworkInfo contains network state as reported by pi-helper.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	PollMs           int64
	HeartbeatMs      int64
	Broker           string
	HTTPPort         string
	RelayPin         int
	MistDurationMs   int64
	MistIntervalSec  int64
	WindowStart      int
	WindowEnd        int
	FailsafeMultiple int
}

// ConfigFrom fills the policy fields of c from cfg.
func ConfigFrom(c Config, cfg logic.Config) Config {
	c.MistDurationMs = cfg.MistDuration.Milliseconds()
	c.MistIntervalSec = int64(cfg.MistInterval / time.Second)
	c.WindowStart = cfg.WindowStart
	c.WindowEnd = cfg.WindowEnd
	c.FailsafeMultiple = cfg.FailsafeMultiplier
	return c
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Scheduler     scheduler.Snapshot
	Counts        logic.EventCounts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
	now  func() time.Time
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
			Scheduler: scheduler.Snapshot{State: logic.StateAwaitingTimeSync},
		},
		now: time.Now,
	}
}

// Update stores the latest scheduler snapshot.
// Called from the poll loop on every tick.
func (t *Tracker) Update(snap scheduler.Snapshot) {
	t.mu.Lock()
	t.snap.Scheduler = snap
	t.mu.Unlock()
}

// Record counts scheduler events.
func (t *Tracker) Record(events []logic.Event) {
	t.mu.Lock()
	for _, e := range events {
		t.snap.Counts.Add(e)
	}
	t.mu.Unlock()
}

// Counts returns the event counters.
func (t *Tracker) Counts() logic.EventCounts {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snap.Counts
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = t.now()
	return s
}
