// Package sightings stores accepted observations. Rows are only ever
// inserted; the dedup rule lives in the ledger service.
package sightings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/plateledger/internal/dbx"
	"github.com/dmitrijs2005/plateledger/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// LastObservedAt returns the most recent sighting time of the plate; ok is
// false when the plate has never been seen.
func (r *PostgresRepository) LastObservedAt(ctx context.Context, plateID int64) (time.Time, bool, error) {
	query := `
		SELECT observed_at FROM sightings
		WHERE plate_id = $1
		ORDER BY observed_at DESC
		LIMIT 1
	`
	var last time.Time
	err := r.db.QueryRowContext(ctx, query, plateID).Scan(&last)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("db error: %w", err)
	}
	return last, true, nil
}

func (r *PostgresRepository) Create(ctx context.Context, s *models.Sighting) error {
	query := `
		INSERT INTO sightings (observer_id, plate_id, observed_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	if err := r.db.QueryRowContext(ctx, query, s.ObserverID, s.PlateID, s.ObservedAt).Scan(&s.ID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ListByPlate returns every sighting time of plate, newest first.
func (r *PostgresRepository) ListByPlate(ctx context.Context, plate string) ([]time.Time, error) {
	query := `
		SELECT s.observed_at FROM sightings s
		JOIN plates p ON p.id = s.plate_id
		WHERE p.plate = $1
		ORDER BY s.observed_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, plate)
	if err != nil {
		return nil, fmt.Errorf("failed to select sightings: %w", err)
	}
	defer rows.Close()

	var result []time.Time
	for rows.Next() {
		var ts time.Time
		if err := rows.Scan(&ts); err != nil {
			return nil, err
		}
		result = append(result, ts)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
