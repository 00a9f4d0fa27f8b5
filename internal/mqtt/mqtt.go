// Package mqtt publishes misting events and receives commands, with an
// abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/garden-mister/internal/logic"
)

// Topic is the MQTT topic for mist events.
const Topic = "garden/mister/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "garden/mister/system"

// TopicCommand is the MQTT topic the daemon listens on for commands.
const TopicCommand = "garden/mister/command"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a scheduler event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event logic.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// CommandSource delivers raw command lines received over MQTT.
type CommandSource interface {
	Commands() <-chan string
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Mister MisterPayload `json:"mister"`
}

// MisterPayload contains the mist event details.
type MisterPayload struct {
	Timestamp      string `json:"timestamp"`
	Event          string `json:"event"`
	State          string `json:"state"`
	Relay          string `json:"relay"`
	Epoch          int64  `json:"epoch,omitempty"`
	ElapsedSeconds int64  `json:"elapsed_seconds,omitempty"`
	Forced         bool   `json:"forced,omitempty"`
}

// FormatPayload creates the JSON payload for a scheduler event stamped at ts.
func FormatPayload(event logic.Event, ts time.Time) ([]byte, error) {
	relay := "OFF"
	if event.RelayOn {
		relay = "ON"
	}
	payload := Payload{
		Mister: MisterPayload{
			Timestamp:      ts.UTC().Format(time.RFC3339),
			Event:          string(event.Type),
			State:          string(event.State),
			Relay:          relay,
			Epoch:          event.Epoch,
			ElapsedSeconds: int64(event.Elapsed / time.Second),
			Forced:         event.Forced,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}

// willPayload is the last-will message the broker publishes if the daemon
// disappears without a clean disconnect.
func willPayload() []byte {
	data, _ := json.Marshal(SystemPayload{System: SystemPayloadInner{Event: "OFFLINE", Reason: "LWT"}})
	return data
}
