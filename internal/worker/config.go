// Package worker provides background processing for the pricing service.
package worker

import (
	"time"
)

// IngestConfig holds configuration for the delivery-volume ingest job.
type IngestConfig struct {
	// Timeout bounds the handling of a single event.
	// Default: 30 seconds
	Timeout time.Duration

	// DefaultDeliveries is the count assumed for events that carry no
	// explicit delivery count. Default: 1
	DefaultDeliveries int
}

// DefaultIngestConfig returns the default ingest configuration.
func DefaultIngestConfig() IngestConfig {
	return IngestConfig{
		Timeout:           30 * time.Second,
		DefaultDeliveries: 1,
	}
}

func (c IngestConfig) withDefaults() IngestConfig {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.DefaultDeliveries <= 0 {
		c.DefaultDeliveries = 1
	}
	return c
}
