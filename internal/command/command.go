// Package command parses operator commands and applies them to the scheduler.
// Commands arrive as text lines from the console, MQTT or HTTP.
package command

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sweeney/garden-mister/internal/logic"
	"github.com/sweeney/garden-mister/internal/scheduler"
)

// Command is a parsed operator command.
type Command string

const (
	Enable    Command = "ENABLE"
	Disable   Command = "DISABLE"
	ForceMist Command = "FORCE_MIST"
	Status    Command = "STATUS"
)

// ErrUnknown is returned for lines that are not a known command.
var ErrUnknown = errors.New("unknown command")

// ErrEmpty is returned for blank lines.
var ErrEmpty = errors.New("empty command")

// Parse turns a line into a Command. Matching is case-insensitive and
// ignores surrounding whitespace.
func Parse(line string) (Command, error) {
	s := strings.ToUpper(strings.TrimSpace(line))
	switch s {
	case "":
		return "", ErrEmpty
	case "ENABLE":
		return Enable, nil
	case "DISABLE":
		return Disable, nil
	case "FORCE_MIST", "FORCE":
		return ForceMist, nil
	case "STATUS":
		return Status, nil
	}
	return "", fmt.Errorf("%w: %q (valid: ENABLE, DISABLE, FORCE_MIST, STATUS)", ErrUnknown, strings.TrimSpace(line))
}

// Target is the part of the scheduler commands act on.
type Target interface {
	SetEnabled(enabled bool) []logic.Event
	ForceMist() []logic.Event
	Status() scheduler.Snapshot
}

// Result is what applying a command produced.
type Result struct {
	Events []logic.Event
	// Snapshot is the scheduler status after the command ran.
	Snapshot scheduler.Snapshot
}

// Apply runs cmd against t.
func Apply(t Target, cmd Command) (Result, error) {
	var res Result
	switch cmd {
	case Enable:
		res.Events = t.SetEnabled(true)
	case Disable:
		res.Events = t.SetEnabled(false)
	case ForceMist:
		res.Events = t.ForceMist()
	case Status:
	default:
		return res, fmt.Errorf("%w: %q", ErrUnknown, string(cmd))
	}
	res.Snapshot = t.Status()
	return res, nil
}

// Run parses line, applies it to t and returns the output lines for the
// operator: the status report for STATUS, a one-line acknowledgement otherwise.
func Run(t Target, line string) (Result, []string, error) {
	cmd, err := Parse(line)
	if err != nil {
		return Result{}, nil, err
	}
	res, err := Apply(t, cmd)
	if err != nil {
		return res, nil, err
	}
	if cmd == Status {
		return res, FormatStatus(res.Snapshot), nil
	}
	return res, []string{fmt.Sprintf("OK %s (state=%s enabled=%t)", cmd, res.Snapshot.State, res.Snapshot.Enabled)}, nil
}

// FormatStatus renders a snapshot as human-readable lines.
func FormatStatus(snap scheduler.Snapshot) []string {
	enabled := "NO"
	if snap.Enabled {
		enabled = "YES"
	}
	window := "NO"
	if snap.InWindow {
		window = "YES"
	}

	lines := []string{
		"=== MISTER STATUS ===",
		"State: " + string(snap.State),
		"Enabled: " + enabled,
		"In active window: " + window,
	}

	if snap.State == logic.StateMisting {
		lines = append(lines, "Misting for: "+FormatDuration(snap.MistElapsed))
	}

	switch {
	case !snap.HasEverMisted:
		lines = append(lines, "Last mist: never")
	case snap.SinceKnown:
		lines = append(lines, "Last mist: "+FormatDuration(snap.SinceLastMist)+" ago")
	default:
		lines = append(lines, "Last mist: unknown (clock not synchronized)")
	}

	switch {
	case !snap.UntilKnown:
		lines = append(lines, "Next mist: unknown (clock not synchronized)")
	case snap.UntilNextMist == 0 && snap.InWindow:
		lines = append(lines, "Next mist: eligible now")
	case snap.UntilNextMist == 0:
		lines = append(lines, "Next mist: eligible at next window open")
	default:
		lines = append(lines, "Next mist: in "+FormatDuration(snap.UntilNextMist))
	}

	return lines
}

// FormatDuration renders d as "1h 2m 3s", dropping leading zero units.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		return "-" + FormatDuration(-d)
	}
	d = d.Truncate(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
