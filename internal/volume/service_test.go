package volume_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/courierops/pricegrid/internal/volume"
)

func newTestService() *volume.Service {
	return volume.NewService(volume.ServiceConfig{
		Repository: volume.NewInMemoryRepository(),
		Logger:     zerolog.Nop(),
	})
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestService_TotalsForRange(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	for _, v := range []volume.DailyVolume{
		{AccountID: 1, Date: day(2024, 5, 1), Volume: 10},
		{AccountID: 1, Date: day(2024, 5, 2), Volume: 5},
		{AccountID: 1, Date: day(2024, 5, 3), Volume: 7},
		{AccountID: 2, Date: day(2024, 5, 2), Volume: 99},
	} {
		if err := svc.Record(ctx, v); err != nil {
			t.Fatalf("failed to record volume: %v", err)
		}
	}

	totals, err := svc.TotalsForRange(ctx, 1, day(2024, 5, 1), day(2024, 6, 1))
	if err != nil {
		t.Fatalf("failed to aggregate volumes: %v", err)
	}

	if totals.TotalVolume != 22 {
		t.Errorf("expected total 22, got %d", totals.TotalVolume)
	}
	if !totals.DateStart.Equal(day(2024, 5, 1)) {
		t.Errorf("expected start 2024-05-01, got %v", totals.DateStart)
	}
	if !totals.DateEnd.Equal(day(2024, 5, 3)) {
		t.Errorf("expected end 2024-05-03, got %v", totals.DateEnd)
	}
}

func TestService_TotalsForRange_ExclusiveEnd(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	for _, v := range []volume.DailyVolume{
		{AccountID: 1, Date: day(2024, 5, 1), Volume: 10},
		{AccountID: 1, Date: day(2024, 5, 2), Volume: 5},
	} {
		if err := svc.Record(ctx, v); err != nil {
			t.Fatalf("failed to record volume: %v", err)
		}
	}

	totals, err := svc.TotalsForRange(ctx, 1, day(2024, 5, 1), day(2024, 5, 2))
	if err != nil {
		t.Fatalf("failed to aggregate volumes: %v", err)
	}
	if totals.TotalVolume != 10 {
		t.Errorf("expected range end exclusive, total 10, got %d", totals.TotalVolume)
	}
}

func TestService_TotalsForRange_Empty(t *testing.T) {
	svc := newTestService()

	_, err := svc.TotalsForRange(context.Background(), 1, day(2024, 5, 1), day(2024, 6, 1))
	var notFound *volume.VolumesNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected VolumesNotFoundError, got %v", err)
	}
	if notFound.AccountID != 1 {
		t.Errorf("expected account 1 in error, got %d", notFound.AccountID)
	}
}

func TestService_Record_AccumulatesSameDay(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	// Two events within the same calendar day fold into one row.
	if err := svc.Record(ctx, volume.DailyVolume{
		AccountID: 1,
		Date:      time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC),
		Volume:    3,
	}); err != nil {
		t.Fatalf("failed to record volume: %v", err)
	}
	if err := svc.Record(ctx, volume.DailyVolume{
		AccountID: 1,
		Date:      time.Date(2024, 5, 1, 18, 15, 0, 0, time.UTC),
		Volume:    4,
	}); err != nil {
		t.Fatalf("failed to record volume: %v", err)
	}

	totals, err := svc.TotalsForRange(ctx, 1, day(2024, 5, 1), day(2024, 5, 2))
	if err != nil {
		t.Fatalf("failed to aggregate volumes: %v", err)
	}
	if totals.TotalVolume != 7 {
		t.Errorf("expected total 7, got %d", totals.TotalVolume)
	}
	if !totals.DateStart.Equal(totals.DateEnd) {
		t.Errorf("expected single day, got %v..%v", totals.DateStart, totals.DateEnd)
	}
}

func TestService_Record_Invalid(t *testing.T) {
	svc := newTestService()

	if err := svc.Record(context.Background(), volume.DailyVolume{
		AccountID: 1,
		Date:      day(2024, 5, 1),
		Volume:    0,
	}); err == nil {
		t.Fatal("expected error for zero volume")
	}
	if err := svc.Record(context.Background(), volume.DailyVolume{
		AccountID: 0,
		Date:      day(2024, 5, 1),
		Volume:    3,
	}); err == nil {
		t.Fatal("expected error for missing account id")
	}
}
