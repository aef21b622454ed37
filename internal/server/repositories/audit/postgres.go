// Package audit persists the append-only log of ownership and archive
// changes. Entries reference plates by value.
package audit

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

// Append writes e and fills in its id and timestamp.
func (r *PostgresRepository) Append(ctx context.Context, e *models.AuditEntry) error {
	query := `
		INSERT INTO audit_log (actor_id, action, plate)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, e.ActorID, string(e.Action), e.Plate).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ListByPlate returns the history of one plate, newest first.
func (r *PostgresRepository) ListByPlate(ctx context.Context, plate string) ([]*models.AuditEntry, error) {
	query := `
		SELECT id, actor_id, action, plate, created_at FROM audit_log
		WHERE plate = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, query, plate)
	if err != nil {
		return nil, fmt.Errorf("failed to select audit log: %w", err)
	}
	defer rows.Close()

	var result []*models.AuditEntry
	for rows.Next() {
		var (
			e      models.AuditEntry
			action string
		)
		if err := rows.Scan(&e.ID, &e.ActorID, &action, &e.Plate, &e.CreatedAt); err != nil {
			return nil, err
		}
		if e.Action, err = models.ParseAuditAction(action); err != nil {
			return nil, err
		}
		result = append(result, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
