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

// LedgerService ingests sightings. A sighting of a plate counts only when
// the previous accepted one is older than DedupWindow - DedupTolerance; an
// accepted sighting of an archived plate reactivates it.
type LedgerService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
	metrics     *metrics.Metrics
	cache       ActivityCache
	logger      logging.Logger
	now         func() time.Time
}

func NewLedgerService(db *sql.DB, m repomanager.RepositoryManager, cfg *sc.Config,
	mx *metrics.Metrics, cache ActivityCache, logger logging.Logger) *LedgerService {
	if cache == nil {
		cache = NewReportCache(0, 0, mx)
	}
	return &LedgerService{
		db:          db,
		repomanager: m,
		config:      cfg,
		metrics:     mx,
		cache:       cache,
		logger:      logger.With("module", "ledger"),
		now:         time.Now,
	}
}

// SubmitSighting canonicalizes and validates raw, registers the plate as
// foreign if it is new, and records the sighting. Malformed input yields
// common.ErrInvalidPlate and touches nothing.
func (s *LedgerService) SubmitSighting(ctx context.Context, observerID int64, raw string) (*models.SightingResult, error) {
	start := time.Now()
	defer s.metrics.ObserveOperation("submit_sighting", start)

	plate := plates.Canonicalize(raw)
	if !plates.ValidSighting(plate) {
		s.metrics.Sightings.WithLabelValues("invalid").Inc()
		return nil, common.ErrInvalidPlate
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.OperationTimeout)
	defer cancel()

	now := s.now()
	var result *models.SightingResult
	err := withRetry(ctx, s.db, nil, s.config.RetryAttempts, s.metrics, func(ctx context.Context, tx dbx.DBTX) error {
		id, err := s.repomanager.Plates(tx).CreateIfAbsent(ctx, plate, false)
		if err != nil {
			return err
		}
		result, err = s.record(ctx, tx, observerID, id, now)
		return err
	})
	if err != nil {
		s.logger.Error(ctx, "sighting not recorded", "plate", plate, "observer", observerID, "error", err)
		return nil, storageError(err)
	}

	s.afterRecord(ctx, observerID, result)
	return result, nil
}

// Record applies the dedup rule to an already registered plate.
func (s *LedgerService) Record(ctx context.Context, observerID, plateID int64, now time.Time) (*models.SightingResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.OperationTimeout)
	defer cancel()

	var result *models.SightingResult
	err := withRetry(ctx, s.db, nil, s.config.RetryAttempts, s.metrics, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		result, err = s.record(ctx, tx, observerID, plateID, now)
		return err
	})
	if err != nil {
		return nil, storageError(err)
	}

	s.afterRecord(ctx, observerID, result)
	return result, nil
}

func (s *LedgerService) record(ctx context.Context, tx dbx.DBTX, observerID, plateID int64, now time.Time) (*models.SightingResult, error) {
	plateRepo := s.repomanager.Plates(tx)
	sightingRepo := s.repomanager.Sightings(tx)

	p, err := plateRepo.LockByID(ctx, plateID)
	if err != nil {
		return nil, err
	}

	result := &models.SightingResult{Plate: p.Plate, IsOwn: p.IsOwn, ObservedAt: now}

	last, ok, err := sightingRepo.LastObservedAt(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if ok && !s.outsideWindow(last, now) {
		result.Outcome = models.SightingDeduplicated
		result.ObservedAt = last
		return result, nil
	}

	err = sightingRepo.Create(ctx, &models.Sighting{ObserverID: observerID, PlateID: p.ID, ObservedAt: now})
	if err != nil {
		return nil, err
	}
	if p.IsArchived {
		if err := plateRepo.Reactivate(ctx, p.ID); err != nil {
			return nil, err
		}
		result.Reactivated = true
	}

	result.Outcome = models.SightingAccepted
	return result, nil
}

// outsideWindow is the dedup rule. last may lie after now when clocks of
// concurrent submitters disagree; such a sighting is a duplicate.
func (s *LedgerService) outsideWindow(last, now time.Time) bool {
	return now.Sub(last) > s.config.DedupWindow-s.config.DedupTolerance
}

func (s *LedgerService) afterRecord(ctx context.Context, observerID int64, r *models.SightingResult) {
	s.metrics.Sightings.WithLabelValues(r.Outcome.String()).Inc()
	if r.Outcome == models.SightingAccepted {
		s.cache.Purge(ctx)
	}
	s.logger.Debug(ctx, "sighting processed",
		"plate", r.Plate, "observer", observerID, "outcome", r.Outcome.String(), "reactivated", r.Reactivated)
}
