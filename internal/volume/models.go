// Package volume tracks daily delivery volumes per account and aggregates
// them over date ranges for pricing queries.
package volume

import (
	"fmt"
	"time"
)

// VolumesNotFoundError indicates an account has no volume rows in the
// requested range.
type VolumesNotFoundError struct {
	AccountID int64
	Start     time.Time
	End       time.Time
}

func (e *VolumesNotFoundError) Error() string {
	return fmt.Sprintf("no volumes found for account %d between %s and %s",
		e.AccountID, e.Start.Format(time.DateOnly), e.End.Format(time.DateOnly))
}

// DailyVolume is one account's delivery count for a single day.
type DailyVolume struct {
	AccountID int64
	Date      time.Time
	Volume    int
}

func (v DailyVolume) validate() error {
	if v.AccountID <= 0 {
		return fmt.Errorf("account id must be positive, got %d", v.AccountID)
	}
	if v.Volume <= 0 {
		return fmt.Errorf("volume must be positive, got %d", v.Volume)
	}
	return nil
}

// day truncates the row's timestamp to its calendar day in UTC. Rows are
// keyed per day regardless of the event time within it.
func (v DailyVolume) day() time.Time {
	return time.Date(v.Date.Year(), v.Date.Month(), v.Date.Day(), 0, 0, 0, 0, time.UTC)
}

// RangeTotals is the aggregate of an account's volumes over [Start, End).
type RangeTotals struct {
	AccountID   int64
	TotalVolume int
	DateStart   time.Time
	DateEnd     time.Time
}
