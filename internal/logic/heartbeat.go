package logic

import "time"

// EventCounts tracks scheduler events since startup.
type EventCounts struct {
	MistStarts    int
	MistStops     int
	FailsafeTrips int
	TimeJumps     int
}

// Add counts a single event.
func (c *EventCounts) Add(e Event) {
	switch e.Type {
	case EventMistStart:
		c.MistStarts++
	case EventMistStop:
		c.MistStops++
	case EventFailsafe:
		c.FailsafeTrips++
	case EventTimeJump:
		c.TimeJumps++
	}
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    EventCounts
}

// Heartbeat decides when the daemon should publish a liveness message.
type Heartbeat struct {
	startTime time.Time
	last      time.Time
}

// NewHeartbeat creates a heartbeat timer anchored at startTime.
func NewHeartbeat(startTime time.Time) *Heartbeat {
	return &Heartbeat{startTime: startTime, last: startTime}
}

// Check returns heartbeat data if interval has elapsed since the last
// heartbeat (or startup). Returns nil if the interval has not elapsed or if
// interval is <= 0 (disabled).
func (h *Heartbeat) Check(now time.Time, interval time.Duration, counts EventCounts) *HeartbeatData {
	if interval <= 0 {
		return nil
	}
	if now.Sub(h.last) < interval {
		return nil
	}
	h.last = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(h.startTime),
		Counts:    counts,
	}
}
