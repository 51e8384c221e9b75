package domain

// ============================================================
// Health & Metrics API Responses
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded, unhealthy
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of an individual component.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	Detail      string `json:"detail,omitempty"`
	LastChecked string `json:"lastChecked"`
}

// LedgerMetrics is returned by GET /v1/metrics/ledger.
type LedgerMetrics struct {
	Loads            int64            `json:"loads"`
	LoadFailures     int64            `json:"loadFailures"`
	RowsAccepted     int64            `json:"rowsAccepted"`
	RowsRejected     map[string]int64 `json:"rowsRejected"`
	AcceptanceRate   float64          `json:"acceptanceRate"`
	SourceCacheHits  int64            `json:"sourceCacheHits"`
	SourceCacheMiss  int64            `json:"sourceCacheMisses"`
	SourceCacheRatio float64          `json:"sourceCacheHitRate"`
	Period           string           `json:"period"`
}

// ============================================================
// Generic API Response wrappers
// ============================================================

// SuccessResponse wraps a successful single-entity response.
type SuccessResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}
