package account

import (
	"context"
	"time"
)

// Repository defines the interface for account persistence.
type Repository interface {
	// FindLiveByClientID returns the single live account containing the
	// client id. Returns ErrAccountNotFound when no live account matches.
	FindLiveByClientID(ctx context.Context, clientID int64) (*Account, error)

	// ListByClientID returns every live account containing the client id,
	// most recent validity window first.
	ListByClientID(ctx context.Context, clientID int64) ([]*Account, error)

	// GetByID returns an account by its id regardless of deletion state.
	GetByID(ctx context.Context, id int64) (*Account, error)

	// GetLatestLiveByID returns the live account with the given id.
	GetLatestLiveByID(ctx context.Context, id int64) (*Account, error)

	// Create persists a new account and returns it with its id set.
	Create(ctx context.Context, acct *Account) (*Account, error)

	// SoftDelete marks the account deleted at the given instant.
	SoftDelete(ctx context.Context, id int64, at time.Time) error
}
