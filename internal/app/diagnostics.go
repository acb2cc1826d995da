package app

import "context"

// Database availability tiers reported by Diagnostics. Failure tiers carry
// a truncated error description after a colon.
const (
	DBNotAvailable   = "not available"
	DBNotInitialized = "available but not initialized"
	DBConnected      = "connected"
)

const (
	maxDiagnosticsCollections = 10
	maxDiagnosticsErrorLen    = 50
)

// Diagnostics is the response of the read-only self-diagnosis probe.
type Diagnostics struct {
	Backend          string   `json:"backend"`
	Database         string   `json:"database"`
	DatabaseURLSet   bool     `json:"database_url"`
	DatabaseNameSet  bool     `json:"database_name"`
	ConnectionStatus string   `json:"connection_status"`
	Collections      []string `json:"collections"`
}

// Diagnostics probes the persistence layer and reports its state. It never
// fails: every store error is rendered as a descriptive string instead of
// propagating, so the HTTP call itself always succeeds.
func (a *App) Diagnostics(ctx context.Context) Diagnostics {
	d := Diagnostics{
		Backend:          "running",
		Database:         DBNotAvailable,
		DatabaseURLSet:   a.dbURLSet,
		DatabaseNameSet:  a.dbNameSet,
		ConnectionStatus: "not connected",
		Collections:      []string{},
	}
	if a.store == nil {
		// Config present but the accessor never came up.
		if a.dbURLSet || a.dbNameSet {
			d.Database = DBNotInitialized
		}
		return d
	}
	if err := a.store.Ping(ctx); err != nil {
		d.Database = "error: " + truncate(err.Error(), maxDiagnosticsErrorLen)
		return d
	}
	d.ConnectionStatus = "connected"
	names, err := a.store.CollectionNames(ctx, maxDiagnosticsCollections)
	if err != nil {
		d.Database = "connected with error: " + truncate(err.Error(), maxDiagnosticsErrorLen)
		return d
	}
	d.Database = DBConnected
	if names != nil {
		d.Collections = names
	}
	return d
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
