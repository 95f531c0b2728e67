package volume

import (
	"context"
	"sort"
	"sync"
	"time"
)

type dayKey struct {
	accountID int64
	day       time.Time
}

// InMemoryRepository is a map-backed Repository for tests.
type InMemoryRepository struct {
	mu   sync.RWMutex
	rows map[dayKey]DailyVolume
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{rows: make(map[dayKey]DailyVolume)}
}

var _ Repository = (*InMemoryRepository)(nil)

func (r *InMemoryRepository) ListForRange(_ context.Context, accountID int64, start, end time.Time) ([]DailyVolume, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []DailyVolume
	for key, row := range r.rows {
		if key.accountID != accountID {
			continue
		}
		if row.Date.Before(start) || !row.Date.Before(end) {
			continue
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *InMemoryRepository) Add(_ context.Context, v DailyVolume) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := dayKey{accountID: v.AccountID, day: v.day()}
	row, ok := r.rows[key]
	if !ok {
		row = DailyVolume{AccountID: v.AccountID, Date: v.day()}
	}
	row.Volume += v.Volume
	r.rows[key] = row
	return nil
}
