package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/plateledger/internal/common"
	"github.com/dmitrijs2005/plateledger/internal/dbx"
	"github.com/dmitrijs2005/plateledger/internal/logging"
	"github.com/dmitrijs2005/plateledger/internal/plates"
	sc "github.com/dmitrijs2005/plateledger/internal/server/config"
	"github.com/dmitrijs2005/plateledger/internal/server/metrics"
	"github.com/dmitrijs2005/plateledger/internal/server/models"
	"github.com/dmitrijs2005/plateledger/internal/server/repositories/repomanager"
)

// ArchiveService moves foreign plates out of the active set on request.
// Own plates are rejected with common.ErrOwnPlate; they leave the fleet
// only through roster reconciliation.
type ArchiveService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
	metrics     *metrics.Metrics
	logger      logging.Logger
}

func NewArchiveService(db *sql.DB, m repomanager.RepositoryManager, cfg *sc.Config,
	mx *metrics.Metrics, logger logging.Logger) *ArchiveService {
	return &ArchiveService{
		db:          db,
		repomanager: m,
		config:      cfg,
		metrics:     mx,
		logger:      logger.With("module", "archive"),
	}
}

// Archive flags the plate archived and writes an archive audit entry.
// Archiving an archived plate is reported, not treated as an error.
func (s *ArchiveService) Archive(ctx context.Context, actorID int64, raw string) (models.ArchiveOutcome, error) {
	start := time.Now()
	defer s.metrics.ObserveOperation("archive", start)

	plate := plates.Canonicalize(raw)
	if plate == "" {
		return 0, common.ErrInvalidPlate
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.OperationTimeout)
	defer cancel()

	var outcome models.ArchiveOutcome
	err := withRetry(ctx, s.db, nil, s.config.RetryAttempts, s.metrics, func(ctx context.Context, tx dbx.DBTX) error {
		plateRepo := s.repomanager.Plates(tx)

		p, err := plateRepo.LockByPlate(ctx, plate)
		if err != nil {
			return err
		}
		if p.IsArchived {
			outcome = models.ArchiveAlreadyArchived
			return nil
		}
		if p.IsOwn {
			return common.ErrOwnPlate
		}

		if err := plateRepo.Archive(ctx, p.ID); err != nil {
			return err
		}
		if err := s.repomanager.Audit(tx).Append(ctx, &models.AuditEntry{
			ActorID: actorID,
			Action:  models.AuditArchive,
			Plate:   p.Plate,
		}); err != nil {
			return err
		}
		outcome = models.ArchiveDone
		return nil
	})
	if err != nil {
		return 0, storageError(err)
	}

	s.metrics.Archives.WithLabelValues(outcome.String()).Inc()
	s.logger.Info(ctx, "archive requested", "plate", plate, "actor", actorID, "outcome", outcome.String())
	return outcome, nil
}
