package transport

import (
	"encoding/json"
	"fmt"
	"net/http"

	"autogenmcp/gateway"
)

// writeHealth emits the liveness JSON shared by the HTTP transports.
func writeHealth(w http.ResponseWriter, transport string, svc *gateway.Service) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":           ServerName,
		"version":        ServerVersion,
		"status":         "healthy",
		"transport":      transport,
		"connections":    svc.Registry.Len(),
		"uptime_seconds": int(svc.Stats.Uptime().Seconds()),
	})
}

// writeIndexPage renders the human-facing status page on "/".
func writeIndexPage(w http.ResponseWriter, transport string, svc *gateway.Service) {
	metrics, _ := json.MarshalIndent(map[string]interface{}{
		"transport":     transport,
		"connections":   svc.Registry.Len(),
		"subscriptions": svc.Subs.Len(),
		"active_calls":  svc.Tracker.Len(),
	}, "", "  ")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head><title>%s</title></head>
<body>
<h1>%s v%s</h1>
<p>MCP gateway for the AutoGen multi-agent backend.</p>
<ul>
<li><code>GET /sse?sessionId=&lt;id&gt;</code> &mdash; open an event stream</li>
<li><code>POST /message?sessionId=&lt;id&gt;</code> &mdash; send a JSON-RPC request</li>
<li><code>GET /health</code> &mdash; liveness probe</li>
</ul>
<pre>%s</pre>
</body>
</html>
`, ServerName, ServerName, ServerVersion, metrics)
}
