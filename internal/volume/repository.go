package volume

import (
	"context"
	"time"
)

// Repository defines persistence for daily volume rows.
type Repository interface {
	// ListForRange returns an account's rows with Date in [start, end).
	ListForRange(ctx context.Context, accountID int64, start, end time.Time) ([]DailyVolume, error)

	// Add increments the account's row for the day of v.Date, inserting it
	// when absent.
	Add(ctx context.Context, v DailyVolume) error
}
