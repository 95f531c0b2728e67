package account

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL account repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const accountColumns = `
	id, client_ids, client_group_name, valid_from, valid_to, deleted_at
`

// FindLiveByClientID retrieves the live account containing the client id.
// Client ids are stored comma-joined; membership is matched per element.
func (r *PostgresRepository) FindLiveByClientID(ctx context.Context, clientID int64) (*Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE deleted_at IS NULL
		  AND $1 = ANY(string_to_array(client_ids, ','))
		ORDER BY valid_to DESC NULLS FIRST
		LIMIT 1
	`
	return r.scanAccount(ctx, query, clientIDParam(clientID))
}

// ListByClientID retrieves every live account containing the client id.
func (r *PostgresRepository) ListByClientID(ctx context.Context, clientID int64) ([]*Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE deleted_at IS NULL
		  AND $1 = ANY(string_to_array(client_ids, ','))
		ORDER BY valid_to DESC NULLS FIRST
	`
	rows, err := r.pool.Query(ctx, query, clientIDParam(clientID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*Account
	for rows.Next() {
		acct, err := scanAccountRow(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acct)
	}
	return accounts, rows.Err()
}

// GetByID retrieves an account by id regardless of deletion state.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return r.scanAccount(ctx, query, id)
}

// GetLatestLiveByID retrieves the live account with the given id.
func (r *PostgresRepository) GetLatestLiveByID(ctx context.Context, id int64) (*Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE id = $1 AND deleted_at IS NULL
		ORDER BY valid_to DESC NULLS FIRST
		LIMIT 1
	`
	return r.scanAccount(ctx, query, id)
}

// Create inserts an account and returns it with the generated id.
func (r *PostgresRepository) Create(ctx context.Context, acct *Account) (*Account, error) {
	query := `
		INSERT INTO accounts (client_ids, client_group_name, valid_from, valid_to, deleted_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	created := *acct
	err := r.pool.QueryRow(ctx, query,
		JoinClientIDs(acct.ClientIDs),
		acct.ClientGroupName,
		acct.ValidFrom,
		acct.ValidTo,
		acct.DeletedAt,
	).Scan(&created.ID)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// SoftDelete marks the account deleted at the given instant.
func (r *PostgresRepository) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE accounts SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`, id, at)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *PostgresRepository) scanAccount(ctx context.Context, query string, args ...any) (*Account, error) {
	acct, err := scanAccountRow(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return acct, nil
}

func scanAccountRow(row pgx.Row) (*Account, error) {
	var (
		acct      Account
		clientIDs string
	)
	err := row.Scan(
		&acct.ID,
		&clientIDs,
		&acct.ClientGroupName,
		&acct.ValidFrom,
		&acct.ValidTo,
		&acct.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	ids, err := SplitClientIDs(clientIDs)
	if err != nil {
		return nil, err
	}
	acct.ClientIDs = ids
	return &acct, nil
}

// clientIDParam renders a client id the way the comma-joined column stores it.
func clientIDParam(clientID int64) string {
	return JoinClientIDs([]int64{clientID})
}

// Ensure PostgresRepository implements Repository.
var _ Repository = (*PostgresRepository)(nil)
