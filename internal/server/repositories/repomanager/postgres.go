// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/plateledger/internal/dbx"
	"github.com/dmitrijs2005/plateledger/internal/server/migrations"
	"github.com/dmitrijs2005/plateledger/internal/server/repositories/audit"
	"github.com/dmitrijs2005/plateledger/internal/server/repositories/bulkchanges"
	"github.com/dmitrijs2005/plateledger/internal/server/repositories/plates"
	"github.com/dmitrijs2005/plateledger/internal/server/repositories/sightings"
	"github.com/dmitrijs2005/plateledger/internal/server/repositories/stats"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repositories bound to
// whatever DBTX the caller is holding, usually an open transaction.
type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Plates(db dbx.DBTX) plates.Repository {
	return plates.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Sightings(db dbx.DBTX) sightings.Repository {
	return sightings.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Audit(db dbx.DBTX) audit.Repository {
	return audit.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) BulkChanges(db dbx.DBTX) bulkchanges.Repository {
	return bulkchanges.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Stats(db dbx.DBTX) stats.Repository {
	return stats.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded schema migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}
