package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/courierops/pricegrid/internal/account"
	"github.com/courierops/pricegrid/internal/volume"
)

// ErrUnknownClient reports an event for a client no account covers. Such
// events are dropped rather than retried.
var ErrUnknownClient = errors.New("no account for client")

// AccountResolver looks up the live account covering a client.
// *account.Service satisfies it.
type AccountResolver interface {
	Resolve(ctx context.Context, clientID int64) (*account.Account, error)
}

// DeliveryEvent is a single delivery-completed event from the delivery
// pipeline.
type DeliveryEvent struct {
	ClientID    int64     `json:"client_id"`
	DeliveredAt time.Time `json:"delivered_at"`
	Deliveries  int       `json:"deliveries,omitempty"`
}

// IngestJob folds delivery-completed events into daily volume rows.
type IngestJob struct {
	config   IngestConfig
	volumes  *volume.Service
	accounts AccountResolver
	logger   zerolog.Logger

	metrics *IngestMetrics
}

// IngestMetrics tracks ingest job statistics.
type IngestMetrics struct {
	mu sync.RWMutex

	TotalEvents    int64
	Recorded       int64
	Failed         int64
	UnknownClients int64

	LastEventAt time.Time
}

// Snapshot returns a copy of the current counters.
func (m *IngestMetrics) Snapshot() IngestMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return IngestMetrics{
		TotalEvents:    m.TotalEvents,
		Recorded:       m.Recorded,
		Failed:         m.Failed,
		UnknownClients: m.UnknownClients,
		LastEventAt:    m.LastEventAt,
	}
}

// IngestJobConfig holds configuration for creating an IngestJob.
type IngestJobConfig struct {
	Config   IngestConfig
	Volumes  *volume.Service
	Accounts AccountResolver
	Logger   zerolog.Logger
}

// NewIngestJob creates a new delivery-volume ingest job.
func NewIngestJob(cfg IngestJobConfig) *IngestJob {
	return &IngestJob{
		config:   cfg.Config.withDefaults(),
		volumes:  cfg.Volumes,
		accounts: cfg.Accounts,
		logger:   cfg.Logger,
		metrics:  &IngestMetrics{},
	}
}

// Metrics returns the job's counters.
func (j *IngestJob) Metrics() *IngestMetrics {
	return j.metrics
}

// Process resolves the event's client to an account and adds the delivery
// count to that account's daily volume row.
func (j *IngestJob) Process(ctx context.Context, event DeliveryEvent) error {
	ctx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	j.touch(func(m *IngestMetrics) {
		m.TotalEvents++
		m.LastEventAt = time.Now()
	})

	if event.ClientID <= 0 {
		j.touch(func(m *IngestMetrics) { m.Failed++ })
		return fmt.Errorf("client id must be positive, got %d", event.ClientID)
	}
	if event.DeliveredAt.IsZero() {
		event.DeliveredAt = time.Now().UTC()
	}
	if event.Deliveries <= 0 {
		event.Deliveries = j.config.DefaultDeliveries
	}

	acct, err := j.accounts.Resolve(ctx, event.ClientID)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			j.touch(func(m *IngestMetrics) { m.UnknownClients++ })
			j.logger.Warn().
				Int64("client_id", event.ClientID).
				Msg("delivery event for unknown client")
			return fmt.Errorf("%w: %d", ErrUnknownClient, event.ClientID)
		}
		j.touch(func(m *IngestMetrics) { m.Failed++ })
		return fmt.Errorf("resolving client %d: %w", event.ClientID, err)
	}

	err = j.volumes.Record(ctx, volume.DailyVolume{
		AccountID: acct.ID,
		Date:      event.DeliveredAt,
		Volume:    event.Deliveries,
	})
	if err != nil {
		j.touch(func(m *IngestMetrics) { m.Failed++ })
		return fmt.Errorf("recording volume for account %d: %w", acct.ID, err)
	}

	j.touch(func(m *IngestMetrics) { m.Recorded++ })
	j.logger.Debug().
		Int64("client_id", event.ClientID).
		Int64("account_id", acct.ID).
		Int("deliveries", event.Deliveries).
		Msg("delivery event ingested")
	return nil
}

func (j *IngestJob) touch(fn func(*IngestMetrics)) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()
	fn(j.metrics)
}
