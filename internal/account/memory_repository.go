package account

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use PostgresRepository.
type InMemoryRepository struct {
	mu       sync.RWMutex
	nextID   int64
	accounts map[int64]*Account
}

// NewInMemoryRepository creates a new in-memory account repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		nextID:   1,
		accounts: make(map[int64]*Account),
	}
}

// FindLiveByClientID returns the live account containing the client id.
func (r *InMemoryRepository) FindLiveByClientID(_ context.Context, clientID int64) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.accounts {
		if a.Live() && a.Contains(clientID) {
			cpy := *a
			return &cpy, nil
		}
	}
	return nil, ErrAccountNotFound
}

// ListByClientID returns every live account containing the client id.
func (r *InMemoryRepository) ListByClientID(_ context.Context, clientID int64) ([]*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Account
	for _, a := range r.accounts {
		if a.Live() && a.Contains(clientID) {
			cpy := *a
			out = append(out, &cpy)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// GetByID returns an account by id regardless of deletion state.
func (r *InMemoryRepository) GetByID(_ context.Context, id int64) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	cpy := *a
	return &cpy, nil
}

// GetLatestLiveByID returns the live account with the given id.
func (r *InMemoryRepository) GetLatestLiveByID(_ context.Context, id int64) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.accounts[id]
	if !ok || !a.Live() {
		return nil, ErrAccountNotFound
	}
	cpy := *a
	return &cpy, nil
}

// Create persists a new account.
func (r *InMemoryRepository) Create(_ context.Context, acct *Account) (*Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := *acct
	cpy.ID = r.nextID
	r.nextID++
	r.accounts[cpy.ID] = &cpy

	out := cpy
	return &out, nil
}

// SoftDelete marks the account deleted.
func (r *InMemoryRepository) SoftDelete(_ context.Context, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[id]
	if !ok {
		return ErrAccountNotFound
	}
	deletedAt := at
	a.DeletedAt = &deletedAt
	return nil
}

// Ensure InMemoryRepository implements Repository.
var _ Repository = (*InMemoryRepository)(nil)
