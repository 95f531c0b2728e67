package models

// Health is the body of the liveness and readiness endpoints. Details carries
// build metadata on the liveness path and failure reasons on readiness.
type Health struct {
	Status  HealthStatus      `json:"status"`
	Time    Timestamp         `json:"time"`
	Details map[string]string `json:"details,omitempty"`
}
