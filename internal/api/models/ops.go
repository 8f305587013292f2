package models

// Health represents the health status of the service.
type Health struct {
	Status  HealthStatus           `json:"status"`
	Time    Timestamp              `json:"time"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Readiness reports whether the service can answer data queries yet.
type Readiness struct {
	Status    HealthStatus `json:"status"`
	Time      Timestamp    `json:"time"`
	FetchedAt *Timestamp   `json:"fetchedAt,omitempty"`
	Rows      int          `json:"rows"`
}

// PipelineMetrics exposes the refresh pipeline counters.
type PipelineMetrics struct {
	Time    Timestamp              `json:"time"`
	Metrics map[string]interface{} `json:"metrics"`
}
