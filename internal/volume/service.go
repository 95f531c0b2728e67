package volume

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Service aggregates daily volumes and records ingested delivery events.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

// ServiceConfig holds configuration for the volume service.
type ServiceConfig struct {
	Repository Repository
	Logger     zerolog.Logger
}

func NewService(cfg ServiceConfig) *Service {
	return &Service{repo: cfg.Repository, logger: cfg.Logger}
}

// TotalsForRange sums an account's daily volumes over [start, end) and
// reports the first and last day seen.
func (s *Service) TotalsForRange(ctx context.Context, accountID int64, start, end time.Time) (*RangeTotals, error) {
	rows, err := s.repo.ListForRange(ctx, accountID, start, end)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &VolumesNotFoundError{AccountID: accountID, Start: start, End: end}
	}

	totals := &RangeTotals{
		AccountID: accountID,
		DateStart: rows[0].Date,
		DateEnd:   rows[0].Date,
	}
	for _, row := range rows {
		totals.TotalVolume += row.Volume
		if row.Date.Before(totals.DateStart) {
			totals.DateStart = row.Date
		}
		if row.Date.After(totals.DateEnd) {
			totals.DateEnd = row.Date
		}
	}
	return totals, nil
}

// Record adds a delivery count to the account's daily row.
func (s *Service) Record(ctx context.Context, v DailyVolume) error {
	if err := v.validate(); err != nil {
		return err
	}
	if err := s.repo.Add(ctx, v); err != nil {
		return err
	}
	s.logger.Debug().
		Int64("account_id", v.AccountID).
		Time("date", v.day()).
		Int("volume", v.Volume).
		Msg("volume recorded")
	return nil
}
