package web

import (
	"fmt"
	"html/template"
	"io"
	"log"
	"time"

	"github.com/damiancyrana/wine-macerator/internal/logic"
	"github.com/damiancyrana/wine-macerator/internal/status"
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
	"temp": func(r logic.Reading) string {
		if !r.OK() {
			return "sensor error"
		}
		return fmt.Sprintf("%.1f °C", r.Celsius)
	},
	"countdown": func(deadline, now time.Time) string {
		return logic.FormatIdleCountdown(deadline.Sub(now))
	},
	"durationMs": func(ms int64) string {
		if ms <= 0 {
			return "disabled"
		}
		return (time.Duration(ms) * time.Millisecond).String()
	},
}).Parse(indexHTML))

func renderHTML(w io.Writer, snap status.Snapshot) {
	if err := indexTmpl.Execute(w, snap); err != nil {
		log.Printf("render status page: %v", err)
	}
}

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Wine Macerator</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.error { color: red; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Wine Macerator{{if .Config.Device}} ({{.Config.Device}}){{end}}</h1>

<h2>State</h2>
<table>
<tr><th>Relay</th><td class="{{if eq (printf "%s" .Relay) "MIXING"}}on{{else}}off{{end}}">{{.Relay}}</td></tr>
<tr><th>Wine temperature</th><td class="{{if not .LastTemp.OK}}error{{end}}">{{temp .LastTemp}}</td></tr>
{{if eq (printf "%s" .Relay) "MIXING"}}<tr><th>Mix ends in</th><td>{{countdown .RelayDeadline .Now}}</td></tr>
{{else}}<tr><th>Next mix in</th><td>{{countdown .RelayDeadline .Now}}</td></tr>
{{end}}{{if not .MacerationEnd.IsZero}}<tr><th>Maceration ends</th><td>{{.MacerationEnd.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>{{end}}
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}disabled{{end}}</td></tr>
</table>

<h2>Counts</h2>
<table>
<tr><th>Mix cycles</th><td>{{.Counts.MixCycles}}</td></tr>
<tr><th>Temperature reads</th><td>{{.Counts.TempReads}}</td></tr>
<tr><th>Read errors</th><td>{{.Counts.TempErrors}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Mix for</th><td>{{durationMs .Config.MixForMs}}</td></tr>
<tr><th>Mix every</th><td>{{durationMs .Config.MixEveryMs}}</td></tr>
<tr><th>Temp every</th><td>{{durationMs .Config.TempEveryMs}}</td></tr>
<tr><th>Maceration</th><td>{{if eq .Config.MacerationMs 0}}unbounded{{else}}{{durationMs .Config.MacerationMs}}{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`
