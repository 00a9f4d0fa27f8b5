package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/garden-mister/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"stateOrUnknown": func(s string) string {
		if s == "" {
			return "UNKNOWN"
		}
		return s
	},
	"stateClass": func(s string) string {
		switch s {
		case "MISTING":
			return "on"
		case "IDLE":
			return "off"
		}
		return "unknown"
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="10">
<title>Garden Mister</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
form { display: inline; }
</style>
</head>
<body>
<h1>Garden Mister</h1>

<h2>Scheduler</h2>
<table>
<tr><th>State</th><td class="{{stateClass (printf "%s" .Scheduler.State)}}">{{stateOrUnknown (printf "%s" .Scheduler.State)}}</td></tr>
<tr><th>Enabled</th><td>{{if .Scheduler.Enabled}}yes{{else}}no{{end}}</td></tr>
<tr><th>In active window</th><td>{{if .Scheduler.InWindow}}yes{{else}}no{{end}} ({{.Config.WindowStart}}:00 to {{.Config.WindowEnd}}:00)</td></tr>
{{if eq (printf "%s" .Scheduler.State) "MISTING"}}<tr><th>Misting for</th><td>{{uptime .Scheduler.MistElapsed}}</td></tr>{{end}}
<tr><th>Last mist</th><td>{{if not .Scheduler.HasEverMisted}}never{{else if .Scheduler.SinceKnown}}{{uptime .Scheduler.SinceLastMist}} ago{{else}}unknown{{end}}</td></tr>
<tr><th>Next mist</th><td>{{if not .Scheduler.UntilKnown}}unknown{{else if and (eq .Scheduler.UntilNextMist 0) .Scheduler.InWindow}}eligible now{{else if eq .Scheduler.UntilNextMist 0}}at next window open{{else}}in {{uptime .Scheduler.UntilNextMist}}{{end}}</td></tr>
</table>
{{if .Commands}}
<p>
<form method="post" action="/command"><input type="hidden" name="cmd" value="FORCE_MIST"><button>Force mist</button></form>
{{if .Scheduler.Enabled}}<form method="post" action="/command"><input type="hidden" name="cmd" value="DISABLE"><button>Disable</button></form>
{{else}}<form method="post" action="/command"><input type="hidden" name="cmd" value="ENABLE"><button>Enable</button></form>{{end}}
</p>
{{end}}

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Mists started</th><td>{{.Counts.MistStarts}}</td></tr>
<tr><th>Mists completed</th><td>{{.Counts.MistStops}}</td></tr>
<tr><th>Failsafe trips</th><td>{{.Counts.FailsafeTrips}}</td></tr>
<tr><th>Time jumps</th><td>{{.Counts.TimeJumps}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Mist</th><td>{{.Config.MistDurationMs}}ms every {{.Config.MistIntervalSec}}s</td></tr>
<tr><th>Relay pin</th><td>BCM {{.Config.RelayPin}}</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPPort}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot, commands bool) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime   time.Duration
		Commands bool
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		Commands: commands,
	}
	indexTmpl.Execute(w, data)
}
