package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	State         string       `json:"state"`
	Enabled       bool         `json:"enabled"`
	InWindow      bool         `json:"in_window"`
	LastMistEpoch int64        `json:"last_mist_epoch"`
	SinceLastMist *int64       `json:"since_last_mist_seconds"`
	UntilNextMist *int64       `json:"until_next_mist_seconds"`
	MistElapsed   int64        `json:"mist_elapsed_seconds,omitempty"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"event_counts"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	MistStarts    int `json:"mist_starts"`
	MistStops     int `json:"mist_stops"`
	FailsafeTrips int `json:"failsafe_trips"`
	TimeJumps     int `json:"time_jumps"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs           int64  `json:"poll_ms"`
	HeartbeatMs      int64  `json:"heartbeat_ms"`
	Broker           string `json:"broker"`
	HTTPPort         string `json:"http_port"`
	RelayPin         int    `json:"relay_pin"`
	MistDurationMs   int64  `json:"mist_duration_ms"`
	MistIntervalSec  int64  `json:"mist_interval_seconds"`
	WindowStart      int    `json:"window_start"`
	WindowEnd        int    `json:"window_end"`
	FailsafeMultiple int    `json:"failsafe_multiplier"`
}

func seconds(d time.Duration, known bool) *int64 {
	if !known {
		return nil
	}
	s := int64(d / time.Second)
	return &s
}

func buildInner(snap Snapshot) StatusInner {
	state := string(snap.Scheduler.State)
	if state == "" {
		state = "UNKNOWN"
	}
	sch := snap.Scheduler

	inner := StatusInner{
		State:         state,
		Enabled:       sch.Enabled,
		InWindow:      sch.InWindow,
		LastMistEpoch: sch.LastMistEpoch,
		SinceLastMist: seconds(sch.SinceLastMist, sch.SinceKnown),
		UntilNextMist: seconds(sch.UntilNextMist, sch.UntilKnown),
		MistElapsed:   int64(sch.MistElapsed / time.Second),
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			MistStarts:    snap.Counts.MistStarts,
			MistStops:     snap.Counts.MistStops,
			FailsafeTrips: snap.Counts.FailsafeTrips,
			TimeJumps:     snap.Counts.TimeJumps,
		},
		Config: ConfigJSON{
			PollMs:           snap.Config.PollMs,
			HeartbeatMs:      snap.Config.HeartbeatMs,
			Broker:           snap.Config.Broker,
			HTTPPort:         snap.Config.HTTPPort,
			RelayPin:         snap.Config.RelayPin,
			MistDurationMs:   snap.Config.MistDurationMs,
			MistIntervalSec:  snap.Config.MistIntervalSec,
			WindowStart:      snap.Config.WindowStart,
			WindowEnd:        snap.Config.WindowEnd,
			FailsafeMultiple: snap.Config.FailsafeMultiple,
		},
	}
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
