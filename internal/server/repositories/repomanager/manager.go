package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/plateledger/internal/dbx"
	"github.com/dmitrijs2005/plateledger/internal/server/repositories/audit"
	"github.com/dmitrijs2005/plateledger/internal/server/repositories/bulkchanges"
	"github.com/dmitrijs2005/plateledger/internal/server/repositories/plates"
	"github.com/dmitrijs2005/plateledger/internal/server/repositories/sightings"
	"github.com/dmitrijs2005/plateledger/internal/server/repositories/stats"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Plates(db dbx.DBTX) plates.Repository
	Sightings(db dbx.DBTX) sightings.Repository
	Audit(db dbx.DBTX) audit.Repository
	BulkChanges(db dbx.DBTX) bulkchanges.Repository
	Stats(db dbx.DBTX) stats.Repository
}
