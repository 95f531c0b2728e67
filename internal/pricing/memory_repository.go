package pricing

import (
	"context"
	"sync"
	"time"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use PostgresRepository.
type InMemoryRepository struct {
	mu      sync.RWMutex
	nextID  int64
	configs map[int64]*Config
	grids   map[int64]GridSet

	lockMu       sync.Mutex
	accountLocks map[int64]*sync.Mutex
}

// NewInMemoryRepository creates a new in-memory pricing repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		nextID:       1,
		configs:      make(map[int64]*Config),
		grids:        make(map[int64]GridSet),
		accountLocks: make(map[int64]*sync.Mutex),
	}
}

// Transact serializes fn against other units of work for the same account.
func (r *InMemoryRepository) Transact(_ context.Context, accountID int64, fn func(Repository) error) error {
	r.lockMu.Lock()
	lock, ok := r.accountLocks[accountID]
	if !ok {
		lock = &sync.Mutex{}
		r.accountLocks[accountID] = lock
	}
	r.lockMu.Unlock()

	lock.Lock()
	defer lock.Unlock()
	return fn(r)
}

// GetLatest returns the live configuration with the greatest ValidTo.
func (r *InMemoryRepository) GetLatest(_ context.Context, accountID int64) (*Config, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *Config
	for _, c := range r.configs {
		if c.AccountID != accountID || !c.Live() {
			continue
		}
		if latest == nil || moreRecent(c, latest) {
			latest = c
		}
	}
	if latest == nil {
		return nil, &AccountNotFoundError{AccountID: accountID}
	}
	cpy := *latest
	return &cpy, nil
}

// ListLive returns every non-deleted configuration for the account.
func (r *InMemoryRepository) ListLive(_ context.Context, accountID int64) ([]*Config, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Config
	for _, c := range r.configs {
		if c.AccountID == accountID && c.Live() {
			cpy := *c
			out = append(out, &cpy)
		}
	}
	return out, nil
}

// ActiveForRange returns the live configuration covering [start, end).
func (r *InMemoryRepository) ActiveForRange(_ context.Context, accountID int64, start, end time.Time) (*Config, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best *Config
	for _, c := range r.configs {
		if c.AccountID != accountID || !c.Live() {
			continue
		}
		if c.ValidFrom.After(start) {
			continue
		}
		if c.ValidTo != nil && !c.ValidTo.After(end) {
			continue
		}
		if best == nil || moreRecent(c, best) {
			best = c
		}
	}
	if best == nil {
		return nil, &AccountNotFoundError{AccountID: accountID}
	}
	cpy := *best
	return &cpy, nil
}

// Create persists a new configuration.
func (r *InMemoryRepository) Create(_ context.Context, cfg *Config) (*Config, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := *cfg
	cpy.ID = r.nextID
	r.nextID++
	r.configs[cpy.ID] = &cpy

	out := cpy
	return &out, nil
}

// Update overwrites an existing configuration.
func (r *InMemoryRepository) Update(_ context.Context, cfg *Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.configs[cfg.ID]; !ok {
		return &ConfigNotFoundError{ConfigID: cfg.ID}
	}
	cpy := *cfg
	r.configs[cfg.ID] = &cpy
	return nil
}

// SoftDelete marks configurations deleted.
func (r *InMemoryRepository) SoftDelete(_ context.Context, configIDs []int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range configIDs {
		c, ok := r.configs[id]
		if !ok {
			return &ConfigNotFoundError{ConfigID: id}
		}
		deletedAt := at
		c.DeletedAt = &deletedAt
	}
	return nil
}

// InsertGrids stores a grid collection for a configuration.
func (r *InMemoryRepository) InsertGrids(_ context.Context, configID int64, set GridSet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.grids[configID] = set
	return nil
}

// GridsFor loads a configuration's grid collection of the given kind.
func (r *InMemoryRepository) GridsFor(_ context.Context, configID int64, kind GridKind) (GridSet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set, ok := r.grids[configID]
	if !ok || set.Kind != kind {
		return GridSet{Kind: kind}, nil
	}
	return set, nil
}

// GridCounts reports grid counts per kind for a configuration.
func (r *InMemoryRepository) GridCounts(_ context.Context, configID int64) (map[GridKind]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := map[GridKind]int{
		GridKindVolume:   0,
		GridKindPeak:     0,
		GridKindDiscount: 0,
	}
	if set, ok := r.grids[configID]; ok {
		counts[set.Kind] = set.Len()
	}
	return counts, nil
}

// DeleteGrids removes a configuration's grid collection of the given kind.
func (r *InMemoryRepository) DeleteGrids(_ context.Context, configID int64, kind GridKind) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if set, ok := r.grids[configID]; ok && set.Kind == kind {
		delete(r.grids, configID)
	}
	return nil
}

// Ensure InMemoryRepository implements Repository.
var _ Repository = (*InMemoryRepository)(nil)
