package worker_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courierops/pricegrid/internal/account"
	"github.com/courierops/pricegrid/internal/volume"
	"github.com/courierops/pricegrid/internal/worker"
)

func newTestIngestJob(t *testing.T) (*worker.IngestJob, *account.Service, *volume.Service) {
	t.Helper()

	accounts := account.NewService(account.ServiceConfig{
		Repository: account.NewInMemoryRepository(),
		Logger:     zerolog.Nop(),
	})
	volumes := volume.NewService(volume.ServiceConfig{
		Repository: volume.NewInMemoryRepository(),
		Logger:     zerolog.Nop(),
	})
	job := worker.NewIngestJob(worker.IngestJobConfig{
		Volumes:  volumes,
		Accounts: accounts,
		Logger:   zerolog.Nop(),
	})
	return job, accounts, volumes
}

func TestDefaultIngestConfig(t *testing.T) {
	cfg := worker.DefaultIngestConfig()

	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 1, cfg.DefaultDeliveries)
}

func TestIngestJob_Process(t *testing.T) {
	ctx := context.Background()
	job, accounts, volumes := newTestIngestJob(t)

	acct, err := accounts.EnsureIndividual(ctx, 1001)
	require.NoError(t, err)

	event := worker.DeliveryEvent{
		ClientID:    1001,
		DeliveredAt: time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC),
		Deliveries:  3,
	}
	require.NoError(t, job.Process(ctx, event))

	totals, err := volumes.TotalsForRange(ctx, acct.ID,
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 3, totals.TotalVolume)

	snap := job.Metrics().Snapshot()
	assert.Equal(t, int64(1), snap.TotalEvents)
	assert.Equal(t, int64(1), snap.Recorded)
	assert.Equal(t, int64(0), snap.Failed)
}

func TestIngestJob_Process_FoldsSameDay(t *testing.T) {
	ctx := context.Background()
	job, accounts, volumes := newTestIngestJob(t)

	acct, err := accounts.EnsureIndividual(ctx, 1001)
	require.NoError(t, err)

	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	for _, hour := range []int{9, 13, 22} {
		require.NoError(t, job.Process(ctx, worker.DeliveryEvent{
			ClientID:    1001,
			DeliveredAt: day.Add(time.Duration(hour) * time.Hour),
			Deliveries:  2,
		}))
	}

	totals, err := volumes.TotalsForRange(ctx, acct.ID, day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 6, totals.TotalVolume)
	assert.Equal(t, day, totals.DateStart)
	assert.Equal(t, day, totals.DateEnd)
}

func TestIngestJob_Process_DefaultDeliveries(t *testing.T) {
	ctx := context.Background()
	job, accounts, volumes := newTestIngestJob(t)

	acct, err := accounts.EnsureIndividual(ctx, 1001)
	require.NoError(t, err)

	// No explicit count on the event.
	require.NoError(t, job.Process(ctx, worker.DeliveryEvent{
		ClientID:    1001,
		DeliveredAt: time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC),
	}))

	totals, err := volumes.TotalsForRange(ctx, acct.ID,
		time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, totals.TotalVolume)
}

func TestIngestJob_Process_UnknownClient(t *testing.T) {
	ctx := context.Background()
	job, _, _ := newTestIngestJob(t)

	err := job.Process(ctx, worker.DeliveryEvent{
		ClientID:    42,
		DeliveredAt: time.Now(),
	})
	require.ErrorIs(t, err, worker.ErrUnknownClient)

	snap := job.Metrics().Snapshot()
	assert.Equal(t, int64(1), snap.UnknownClients)
	assert.Equal(t, int64(0), snap.Recorded)
}

func TestIngestJob_Process_InvalidClientID(t *testing.T) {
	ctx := context.Background()
	job, _, _ := newTestIngestJob(t)

	err := job.Process(ctx, worker.DeliveryEvent{ClientID: 0})
	require.Error(t, err)

	snap := job.Metrics().Snapshot()
	assert.Equal(t, int64(1), snap.Failed)
}
