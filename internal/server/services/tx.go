// Package services contains the server-side business logic: sighting
// ingestion, the archive lifecycle, roster reconciliation and reports. Each
// service runs its storage work inside dbx transactions through
// repositories vended by a repomanager.RepositoryManager.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/plateledger/internal/common"
	"github.com/dmitrijs2005/plateledger/internal/dbx"
	"github.com/dmitrijs2005/plateledger/internal/server/metrics"
)

// withRetry runs fn in a transaction, replaying it on serialization
// failures and deadlocks. Replays are counted in m.
func withRetry(ctx context.Context, db *sql.DB, opts *sql.TxOptions, attempts int, m *metrics.Metrics,
	fn func(ctx context.Context, tx dbx.DBTX) error) error {
	attempt := 0
	return dbx.WithRetry(ctx, db, opts, attempts, func(ctx context.Context, tx dbx.DBTX) error {
		attempt++
		if attempt > 1 {
			m.TxRetries.Inc()
		}
		return fn(ctx, tx)
	})
}

// storageError passes through the errors callers branch on and marks
// everything else as a storage failure.
func storageError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrorNotFound),
		errors.Is(err, common.ErrOwnPlate),
		errors.Is(err, common.ErrStorageFailure):
		return err
	default:
		return fmt.Errorf("%w: %w", common.ErrStorageFailure, err)
	}
}
