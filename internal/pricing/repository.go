package pricing

import (
	"context"
	"time"
)

// Repository defines persistence for configurations and their grids.
//
// Grids are written and removed as whole collections tied to one
// configuration id; there is no grid-level patch operation.
type Repository interface {
	// Transact runs fn in a unit of work serialized per account: two
	// concurrent lifecycle operations for the same account never interleave.
	// Repository calls made through the argument participate in the unit.
	Transact(ctx context.Context, accountID int64, fn func(Repository) error) error

	// GetLatest returns the most recent live configuration for an account:
	// greatest ValidTo among non-deleted rows, nil ValidTo sorting greatest.
	// Returns AccountNotFoundError when the account has no live configuration.
	GetLatest(ctx context.Context, accountID int64) (*Config, error)

	// ListLive returns every non-deleted configuration for an account.
	ListLive(ctx context.Context, accountID int64) ([]*Config, error)

	// ActiveForRange returns the live configuration whose window covers
	// [start, end) for an account, preferring the greatest ValidTo.
	ActiveForRange(ctx context.Context, accountID int64, start, end time.Time) (*Config, error)

	// Create persists a new configuration and returns it with its id set.
	Create(ctx context.Context, cfg *Config) (*Config, error)

	// Update overwrites a configuration row in place.
	Update(ctx context.Context, cfg *Config) error

	// SoftDelete marks configurations deleted at the given instant.
	SoftDelete(ctx context.Context, configIDs []int64, at time.Time) error

	// InsertGrids persists a validated grid collection for a configuration.
	InsertGrids(ctx context.Context, configID int64, set GridSet) error

	// GridsFor loads the grid collection of the given kind, ordered by
	// (min volume threshold, min distance).
	GridsFor(ctx context.Context, configID int64, kind GridKind) (GridSet, error)

	// GridCounts returns how many grids of each kind a configuration owns.
	GridCounts(ctx context.Context, configID int64) (map[GridKind]int, error)

	// DeleteGrids removes the grid collection of the given kind.
	DeleteGrids(ctx context.Context, configID int64, kind GridKind) error
}
