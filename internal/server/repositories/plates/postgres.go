// Package plates provides the PostgreSQL-backed plate registry. It trusts
// its input to be canonical; normalization happens in the caller.
package plates

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/plateledger/internal/common"
	"github.com/dmitrijs2005/plateledger/internal/dbx"
	"github.com/dmitrijs2005/plateledger/internal/server/models"
)

// rosterLockKey identifies the advisory lock serialising reconciliations.
const rosterLockKey int64 = 0x706c617465

const plateColumns = `id, plate, is_own, is_archived, reactivation_count, created_at`

// PostgresRepository implements plate storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Resolve returns the record for plate or common.ErrorNotFound.
func (r *PostgresRepository) Resolve(ctx context.Context, plate string) (*models.Plate, error) {
	query := `SELECT ` + plateColumns + ` FROM plates WHERE plate = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, plate))
}

// CreateIfAbsent inserts plate unless it exists and returns its id either
// way. Existing rows keep their flags. The no-op update makes RETURNING
// produce the id of a conflicting row, so concurrent first sightings
// converge on one record.
func (r *PostgresRepository) CreateIfAbsent(ctx context.Context, plate string, isOwn bool) (int64, error) {
	query := `
		INSERT INTO plates (plate, is_own)
		VALUES ($1, $2)
		ON CONFLICT (plate) DO UPDATE SET plate = EXCLUDED.plate
		RETURNING id
	`
	var id int64
	if err := r.db.QueryRowContext(ctx, query, plate, isOwn).Scan(&id); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return id, nil
}

// LockByID reads the plate row and holds its lock until the transaction ends.
func (r *PostgresRepository) LockByID(ctx context.Context, id int64) (*models.Plate, error) {
	query := `SELECT ` + plateColumns + ` FROM plates WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// LockByPlate is LockByID keyed by the plate string.
func (r *PostgresRepository) LockByPlate(ctx context.Context, plate string) (*models.Plate, error) {
	query := `SELECT ` + plateColumns + ` FROM plates WHERE plate = $1 FOR UPDATE`
	return r.scanOne(r.db.QueryRowContext(ctx, query, plate))
}

// LockOwn locks and returns every plate currently flagged own, ordered by
// plate so concurrent lockers acquire rows in the same order.
func (r *PostgresRepository) LockOwn(ctx context.Context) ([]*models.Plate, error) {
	query := `SELECT ` + plateColumns + ` FROM plates WHERE is_own ORDER BY plate FOR UPDATE`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select own plates: %w", err)
	}
	defer rows.Close()

	var result []*models.Plate
	for rows.Next() {
		var p models.Plate
		if err := rows.Scan(&p.ID, &p.Plate, &p.IsOwn, &p.IsArchived, &p.ReactivationCount, &p.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// LockRoster takes the transaction-scoped advisory lock that serialises
// roster reconciliations, including plates that do not exist yet.
func (r *PostgresRepository) LockRoster(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, rosterLockKey); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Reactivate clears the archive flag and counts the transition.
// It is a no-op for a plate that is not archived.
func (r *PostgresRepository) Reactivate(ctx context.Context, id int64) error {
	query := `
		UPDATE plates
		SET is_archived = FALSE, reactivation_count = reactivation_count + 1
		WHERE id = $1 AND is_archived
	`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Archive moves the plate out of the fleet and into the archive.
func (r *PostgresRepository) Archive(ctx context.Context, id int64) error {
	query := `UPDATE plates SET is_own = FALSE, is_archived = TRUE WHERE id = $1`
	return r.execOne(ctx, query, id)
}

// MarkOwn puts the plate into the fleet. Leaving the archive this way counts
// as a reactivation; SET expressions see the pre-update row.
func (r *PostgresRepository) MarkOwn(ctx context.Context, id int64) error {
	query := `
		UPDATE plates
		SET is_own = TRUE,
			reactivation_count = reactivation_count + CASE WHEN is_archived THEN 1 ELSE 0 END,
			is_archived = FALSE
		WHERE id = $1
	`
	return r.execOne(ctx, query, id)
}

func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.Plate, error) {
	var p models.Plate
	err := row.Scan(&p.ID, &p.Plate, &p.IsOwn, &p.IsArchived, &p.ReactivationCount, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &p, nil
}
