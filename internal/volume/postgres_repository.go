package volume

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository persists daily volumes in the volumes table, one row
// per (account_id, date).
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

var _ Repository = (*PostgresRepository)(nil)

func (r *PostgresRepository) ListForRange(ctx context.Context, accountID int64, start, end time.Time) ([]DailyVolume, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT account_id, date, volume
		FROM volumes
		WHERE account_id = $1 AND date >= $2 AND date < $3
		ORDER BY date ASC`,
		accountID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying volumes: %w", err)
	}
	defer rows.Close()

	var out []DailyVolume
	for rows.Next() {
		var v DailyVolume
		if err := rows.Scan(&v.AccountID, &v.Date, &v.Volume); err != nil {
			return nil, fmt.Errorf("scanning volume row: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Add(ctx context.Context, v DailyVolume) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO volumes (account_id, date, volume)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id, date)
		DO UPDATE SET volume = volumes.volume + EXCLUDED.volume`,
		v.AccountID, v.day(), v.Volume)
	if err != nil {
		return fmt.Errorf("upserting volume row: %w", err)
	}
	return nil
}
