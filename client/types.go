package client

// HealthResponse is returned by the liveness endpoint.
type HealthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	Database      string  `json:"database"`
	EventClients  int     `json:"event_clients"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// ReadyResponse is returned by the readiness endpoint.
type ReadyResponse struct {
	Status        string            `json:"status"`
	Checks        map[string]string `json:"checks"`
	SchemaVersion int64             `json:"schema_version,omitempty"`
}

// Ready reports whether the server accepts traffic.
func (r *ReadyResponse) Ready() bool { return r.Status == "ready" }
