// Package stats implements the aggregation queries over sightings and the
// plate registry. Nothing here writes.
package stats

import (
	"context"
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

// RepeatCounts lists plates in the given state by number of sightings.
// Ties go to the newest plate record so pages never overlap.
func (r *PostgresRepository) RepeatCounts(ctx context.Context, isOwn, isArchived bool, limit, offset int) ([]models.RepeatCount, error) {
	query := `
		SELECT p.id, p.plate, COUNT(s.id) AS sightings, p.reactivation_count
		FROM plates p
		JOIN sightings s ON s.plate_id = p.id
		WHERE p.is_own = $1 AND p.is_archived = $2
		GROUP BY p.id
		ORDER BY sightings DESC, p.id DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.QueryContext(ctx, query, isOwn, isArchived, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to select repeat counts: %w", err)
	}
	defer rows.Close()

	var result []models.RepeatCount
	for rows.Next() {
		var rc models.RepeatCount
		if err := rows.Scan(&rc.PlateID, &rc.Plate, &rc.Sightings, &rc.ReactivationCount); err != nil {
			return nil, err
		}
		result = append(result, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) CountRepeatPlates(ctx context.Context, isOwn, isArchived bool) (int, error) {
	query := `
		SELECT COUNT(DISTINCT s.plate_id)
		FROM sightings s
		JOIN plates p ON p.id = s.plate_id
		WHERE p.is_own = $1 AND p.is_archived = $2
	`
	return r.count(ctx, query, isOwn, isArchived)
}

// DailyTotals groups sightings by calendar day in time zone tz, newest day
// first.
func (r *PostgresRepository) DailyTotals(ctx context.Context, tz string, limit, offset int) ([]models.DailyTotal, error) {
	query := `
		SELECT (observed_at AT TIME ZONE $1)::date AS day, COUNT(*)
		FROM sightings
		GROUP BY day
		ORDER BY day DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, query, tz, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to select daily totals: %w", err)
	}
	defer rows.Close()

	var result []models.DailyTotal
	for rows.Next() {
		var d models.DailyTotal
		if err := rows.Scan(&d.Day, &d.Count); err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) CountDays(ctx context.Context, tz string) (int, error) {
	query := `SELECT COUNT(DISTINCT (observed_at AT TIME ZONE $1)::date) FROM sightings`
	return r.count(ctx, query, tz)
}

// ObserverActivity ranks observers by sightings submitted. Observer id
// breaks ties so paging is stable.
func (r *PostgresRepository) ObserverActivity(ctx context.Context, limit, offset int) ([]models.ObserverActivity, error) {
	query := `
		SELECT observer_id, COUNT(*) AS total
		FROM sightings
		GROUP BY observer_id
		ORDER BY total DESC, observer_id ASC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to select observer activity: %w", err)
	}
	defer rows.Close()

	var result []models.ObserverActivity
	for rows.Next() {
		var a models.ObserverActivity
		if err := rows.Scan(&a.ObserverID, &a.Sightings); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) CountObservers(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(DISTINCT observer_id) FROM sightings`)
}

func (r *PostgresRepository) ActiveObservers(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT observer_id FROM sightings ORDER BY observer_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select observers: %w", err)
	}
	defer rows.Close()

	var result []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		result = append(result, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// CountBetween counts sightings in [from, to) and how many of them were of
// plates that are not own.
func (r *PostgresRepository) CountBetween(ctx context.Context, from, to time.Time) (int, int, error) {
	query := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE NOT p.is_own)
		FROM sightings s
		JOIN plates p ON p.id = s.plate_id
		WHERE s.observed_at >= $1 AND s.observed_at < $2
	`
	var total, foreign int
	if err := r.db.QueryRowContext(ctx, query, from, to).Scan(&total, &foreign); err != nil {
		return 0, 0, fmt.Errorf("db error: %w", err)
	}
	return total, foreign, nil
}

func (r *PostgresRepository) CountAll(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM sightings`)
}

func (r *PostgresRepository) count(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
