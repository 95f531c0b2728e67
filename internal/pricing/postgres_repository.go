package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// dbtx is the subset of pgxpool.Pool and pgx.Tx the repository needs, so the
// same methods serve both pooled and in-transaction calls.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
	db   dbtx
}

// NewPostgresRepository creates a new PostgreSQL pricing repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool, db: pool}
}

const configColumns = `
	id, account_id, valid_from, valid_to,
	pricing_type, config_type, client_group,
	package_size_option, transport_option, frequency, deleted_at
`

// Transact opens a transaction holding a per-account advisory lock, so
// concurrent lifecycle operations on one account serialize while other
// accounts proceed in parallel. Nested calls join the outer transaction.
func (r *PostgresRepository) Transact(ctx context.Context, accountID int64, fn func(Repository) error) error {
	if r.pool == nil {
		return fn(r)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, accountID); err != nil {
		return fmt.Errorf("acquire account lock: %w", err)
	}

	if err := fn(&PostgresRepository{db: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// GetLatest retrieves the most recent live configuration for an account.
// NULLS FIRST makes open-ended windows sort as the latest.
func (r *PostgresRepository) GetLatest(ctx context.Context, accountID int64) (*Config, error) {
	query := `
		SELECT ` + configColumns + `
		FROM configs
		WHERE account_id = $1 AND deleted_at IS NULL
		ORDER BY valid_to DESC NULLS FIRST, valid_from DESC, id DESC
		LIMIT 1
	`
	cfg, err := r.scanConfig(ctx, query, accountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &AccountNotFoundError{AccountID: accountID}
		}
		return nil, err
	}
	return cfg, nil
}

// ListLive retrieves every non-deleted configuration for an account.
func (r *PostgresRepository) ListLive(ctx context.Context, accountID int64) ([]*Config, error) {
	query := `
		SELECT ` + configColumns + `
		FROM configs
		WHERE account_id = $1 AND deleted_at IS NULL
		ORDER BY valid_to DESC NULLS FIRST, valid_from DESC, id DESC
	`
	rows, err := r.db.Query(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var configs []*Config
	for rows.Next() {
		cfg, err := scanConfigRow(rows)
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}
	return configs, rows.Err()
}

// ActiveForRange retrieves the live configuration covering [start, end).
func (r *PostgresRepository) ActiveForRange(ctx context.Context, accountID int64, start, end time.Time) (*Config, error) {
	query := `
		SELECT ` + configColumns + `
		FROM configs
		WHERE account_id = $1
		  AND deleted_at IS NULL
		  AND valid_from <= $2
		  AND (valid_to IS NULL OR valid_to > $3)
		ORDER BY valid_to DESC NULLS FIRST, valid_from DESC, id DESC
		LIMIT 1
	`
	cfg, err := r.scanConfig(ctx, query, accountID, start, end)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &AccountNotFoundError{AccountID: accountID}
		}
		return nil, err
	}
	return cfg, nil
}

// Create inserts a configuration and returns it with the generated id.
func (r *PostgresRepository) Create(ctx context.Context, cfg *Config) (*Config, error) {
	query := `
		INSERT INTO configs (
			account_id, valid_from, valid_to,
			pricing_type, config_type, client_group,
			package_size_option, transport_option, frequency, deleted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	created := *cfg
	err := r.db.QueryRow(ctx, query,
		cfg.AccountID,
		cfg.ValidFrom,
		cfg.ValidTo,
		string(cfg.PricingType),
		string(cfg.ConfigType),
		string(cfg.Group),
		JoinPackageSizes(cfg.PackageSizeOption),
		JoinTransportTypes(cfg.TransportOption),
		string(cfg.Frequency),
		cfg.DeletedAt,
	).Scan(&created.ID)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Update overwrites a configuration row in place.
func (r *PostgresRepository) Update(ctx context.Context, cfg *Config) error {
	query := `
		UPDATE configs SET
			valid_from = $2,
			valid_to = $3,
			pricing_type = $4,
			config_type = $5,
			client_group = $6,
			package_size_option = $7,
			transport_option = $8,
			frequency = $9,
			deleted_at = $10
		WHERE id = $1
	`
	result, err := r.db.Exec(ctx, query,
		cfg.ID,
		cfg.ValidFrom,
		cfg.ValidTo,
		string(cfg.PricingType),
		string(cfg.ConfigType),
		string(cfg.Group),
		JoinPackageSizes(cfg.PackageSizeOption),
		JoinTransportTypes(cfg.TransportOption),
		string(cfg.Frequency),
		cfg.DeletedAt,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return &ConfigNotFoundError{ConfigID: cfg.ID}
	}
	return nil
}

// SoftDelete marks configurations deleted at the given instant. An unknown
// id fails the whole call with ConfigNotFoundError.
func (r *PostgresRepository) SoftDelete(ctx context.Context, configIDs []int64, at time.Time) error {
	query := `UPDATE configs SET deleted_at = $2 WHERE id = $1`
	for _, id := range configIDs {
		result, err := r.db.Exec(ctx, query, id, at)
		if err != nil {
			return err
		}
		if result.RowsAffected() == 0 {
			return &ConfigNotFoundError{ConfigID: id}
		}
	}
	return nil
}

// InsertGrids persists a grid collection for a configuration.
func (r *PostgresRepository) InsertGrids(ctx context.Context, configID int64, set GridSet) error {
	switch set.Kind {
	case GridKindVolume:
		for _, g := range set.Volume {
			_, err := r.db.Exec(ctx, `
				INSERT INTO volume_grids (
					config_id, min_volume_threshold, max_volume_threshold,
					min_distance_in_unit, max_distance_in_unit,
					pickup_amount, distance_amount_per_unit, dropoff_amount
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				configID, g.MinVolumeThreshold, g.MaxVolumeThreshold,
				g.MinDistanceInUnit, g.MaxDistanceInUnit,
				g.PickupAmount, g.DistanceAmountPerUnit, g.DropoffAmount,
			)
			if err != nil {
				return err
			}
		}
	case GridKindPeak:
		for _, g := range set.Peak {
			_, err := r.db.Exec(ctx, `
				INSERT INTO peak_grids (
					config_id, min_volume_threshold, max_volume_threshold,
					min_distance_in_unit, max_distance_in_unit,
					pickup_amount, distance_amount_per_unit, dropoff_amount,
					weekday_option, hour_start, hour_end
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
				configID, g.MinVolumeThreshold, g.MaxVolumeThreshold,
				g.MinDistanceInUnit, g.MaxDistanceInUnit,
				g.PickupAmount, g.DistanceAmountPerUnit, g.DropoffAmount,
				JoinWeekdays(g.Weekdays), g.HourStart, g.HourEnd,
			)
			if err != nil {
				return err
			}
		}
	case GridKindDiscount:
		for _, g := range set.Discount {
			_, err := r.db.Exec(ctx, `
				INSERT INTO discount_grids (
					config_id, min_volume_threshold, max_volume_threshold,
					min_distance_in_unit, max_distance_in_unit, discount_amount
				) VALUES ($1, $2, $3, $4, $5, $6)`,
				configID, g.MinVolumeThreshold, g.MaxVolumeThreshold,
				g.MinDistanceInUnit, g.MaxDistanceInUnit, g.DiscountAmount,
			)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// GridsFor loads a configuration's grid collection, ordered for stable reads.
func (r *PostgresRepository) GridsFor(ctx context.Context, configID int64, kind GridKind) (GridSet, error) {
	set := GridSet{Kind: kind}
	switch kind {
	case GridKindVolume:
		rows, err := r.db.Query(ctx, `
			SELECT min_volume_threshold, max_volume_threshold,
			       min_distance_in_unit, max_distance_in_unit,
			       pickup_amount, distance_amount_per_unit, dropoff_amount
			FROM volume_grids
			WHERE config_id = $1
			ORDER BY min_volume_threshold, min_distance_in_unit`, configID)
		if err != nil {
			return set, err
		}
		defer rows.Close()
		for rows.Next() {
			var g VolumeFeeGrid
			if err := rows.Scan(
				&g.MinVolumeThreshold, &g.MaxVolumeThreshold,
				&g.MinDistanceInUnit, &g.MaxDistanceInUnit,
				&g.PickupAmount, &g.DistanceAmountPerUnit, &g.DropoffAmount,
			); err != nil {
				return set, err
			}
			set.Volume = append(set.Volume, g)
		}
		return set, rows.Err()
	case GridKindPeak:
		rows, err := r.db.Query(ctx, `
			SELECT min_volume_threshold, max_volume_threshold,
			       min_distance_in_unit, max_distance_in_unit,
			       pickup_amount, distance_amount_per_unit, dropoff_amount,
			       weekday_option, hour_start, hour_end
			FROM peak_grids
			WHERE config_id = $1
			ORDER BY min_volume_threshold, min_distance_in_unit`, configID)
		if err != nil {
			return set, err
		}
		defer rows.Close()
		for rows.Next() {
			var g PeakFeeGrid
			var weekdays string
			if err := rows.Scan(
				&g.MinVolumeThreshold, &g.MaxVolumeThreshold,
				&g.MinDistanceInUnit, &g.MaxDistanceInUnit,
				&g.PickupAmount, &g.DistanceAmountPerUnit, &g.DropoffAmount,
				&weekdays, &g.HourStart, &g.HourEnd,
			); err != nil {
				return set, err
			}
			days, err := SplitWeekdays(weekdays)
			if err != nil {
				return set, fmt.Errorf("decode weekday_option: %w", err)
			}
			g.Weekdays = days
			set.Peak = append(set.Peak, g)
		}
		return set, rows.Err()
	case GridKindDiscount:
		rows, err := r.db.Query(ctx, `
			SELECT min_volume_threshold, max_volume_threshold,
			       min_distance_in_unit, max_distance_in_unit, discount_amount
			FROM discount_grids
			WHERE config_id = $1
			ORDER BY min_volume_threshold, min_distance_in_unit`, configID)
		if err != nil {
			return set, err
		}
		defer rows.Close()
		for rows.Next() {
			var g DiscountGrid
			if err := rows.Scan(
				&g.MinVolumeThreshold, &g.MaxVolumeThreshold,
				&g.MinDistanceInUnit, &g.MaxDistanceInUnit, &g.DiscountAmount,
			); err != nil {
				return set, err
			}
			set.Discount = append(set.Discount, g)
		}
		return set, rows.Err()
	}
	return set, nil
}

// GridCounts reports grid counts per kind for a configuration.
func (r *PostgresRepository) GridCounts(ctx context.Context, configID int64) (map[GridKind]int, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM volume_grids WHERE config_id = $1),
			(SELECT COUNT(*) FROM peak_grids WHERE config_id = $1),
			(SELECT COUNT(*) FROM discount_grids WHERE config_id = $1)
	`
	var vol, peak, disc int
	if err := r.db.QueryRow(ctx, query, configID).Scan(&vol, &peak, &disc); err != nil {
		return nil, err
	}
	return map[GridKind]int{
		GridKindVolume:   vol,
		GridKindPeak:     peak,
		GridKindDiscount: disc,
	}, nil
}

// DeleteGrids removes a configuration's grid collection of the given kind.
func (r *PostgresRepository) DeleteGrids(ctx context.Context, configID int64, kind GridKind) error {
	var table string
	switch kind {
	case GridKindVolume:
		table = "volume_grids"
	case GridKindPeak:
		table = "peak_grids"
	case GridKindDiscount:
		table = "discount_grids"
	default:
		return fmt.Errorf("unknown grid kind %q", kind)
	}
	_, err := r.db.Exec(ctx, `DELETE FROM `+table+` WHERE config_id = $1`, configID)
	return err
}

// scanConfig scans a single configuration from a query.
func (r *PostgresRepository) scanConfig(ctx context.Context, query string, args ...any) (*Config, error) {
	return scanConfigRow(r.db.QueryRow(ctx, query, args...))
}

func scanConfigRow(row pgx.Row) (*Config, error) {
	var (
		cfg          Config
		pricingType  string
		configType   string
		group        string
		packageSizes string
		transports   string
		frequency    string
	)
	err := row.Scan(
		&cfg.ID,
		&cfg.AccountID,
		&cfg.ValidFrom,
		&cfg.ValidTo,
		&pricingType,
		&configType,
		&group,
		&packageSizes,
		&transports,
		&frequency,
		&cfg.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	cfg.PricingType = PricingType(pricingType)
	cfg.ConfigType = ConfigType(configType)
	cfg.Group = Group(group)
	cfg.PackageSizeOption = SplitPackageSizes(packageSizes)
	cfg.TransportOption = SplitTransportTypes(transports)
	cfg.Frequency = Frequency(frequency)
	return &cfg, nil
}

// Ensure PostgresRepository implements Repository.
var _ Repository = (*PostgresRepository)(nil)
