package logger

import "net/http"

// LogRequest logs a concise summary of an incoming request on the debug
// surface. The inspection API carries no credentials, so headers are omitted.
func LogRequest(r *http.Request) {
	if Log == nil {
		return
	}
	Log.Info("incoming_request", "method", r.Method, "path", r.URL.Path, "remote", r.RemoteAddr)
}
