// Package bulkchanges stores one summary row per completed roster
// reconciliation.
package bulkchanges

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/plateledger/internal/dbx"
	"github.com/dmitrijs2005/plateledger/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.BulkChange) error {
	query := `
		INSERT INTO bulk_changes (actor_id, added_plates, removed_plates)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, c.ActorID, models.JoinPlates(c.Added), models.JoinPlates(c.Removed)).
		Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// List returns one page of summaries, newest first.
func (r *PostgresRepository) List(ctx context.Context, limit, offset int) ([]*models.BulkChange, error) {
	query := `
		SELECT id, actor_id, added_plates, removed_plates, created_at FROM bulk_changes
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to select bulk changes: %w", err)
	}
	defer rows.Close()

	var result []*models.BulkChange
	for rows.Next() {
		var (
			c              models.BulkChange
			added, removed string
		)
		if err := rows.Scan(&c.ID, &c.ActorID, &added, &removed, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Added = models.SplitPlates(added)
		c.Removed = models.SplitPlates(removed)
		result = append(result, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bulk_changes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
