package services

import (
	"context"
	"database/sql"
	"sort"
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

// RosterSnapshotter keeps a copy of every applied roster outside the
// database.
type RosterSnapshotter interface {
	Save(ctx context.Context, snap *RosterSnapshot) (string, error)
}

// RosterSnapshot is what gets archived after a reconciliation commits.
type RosterSnapshot struct {
	ActorID   int64     `json:"actor_id"`
	AppliedAt time.Time `json:"applied_at"`
	Roster    []string  `json:"roster"`
	Added     []string  `json:"added"`
	Removed   []string  `json:"removed"`
}

// RosterService reconciles the set of own plates against an uploaded
// roster. Reconciliations are serialized and all-or-nothing.
type RosterService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
	metrics     *metrics.Metrics
	snapshots   RosterSnapshotter
	logger      logging.Logger
	now         func() time.Time
}

// NewRosterService builds the service. snapshots may be nil.
func NewRosterService(db *sql.DB, m repomanager.RepositoryManager, cfg *sc.Config,
	mx *metrics.Metrics, snapshots RosterSnapshotter, logger logging.Logger) *RosterService {
	return &RosterService{
		db:          db,
		repomanager: m,
		config:      cfg,
		metrics:     mx,
		snapshots:   snapshots,
		logger:      logger.With("module", "roster"),
		now:         time.Now,
	}
}

// SubmitRoster validates raw rows and applies them. If any row is invalid
// nothing is applied and the offending rows come back together with
// common.ErrInvalidRoster.
func (s *RosterService) SubmitRoster(ctx context.Context, actorID int64, rows []string) (*models.RosterSummary, []plates.RowError, error) {
	roster, rowErrs := plates.ParseRoster(rows)
	if len(rowErrs) > 0 {
		return nil, rowErrs, common.ErrInvalidRoster
	}
	summary, err := s.Apply(ctx, actorID, roster)
	return summary, nil, err
}

// Apply makes the own set equal to roster. roster must hold canonical
// plates; duplicates are ignored.
func (s *RosterService) Apply(ctx context.Context, actorID int64, roster []string) (*models.RosterSummary, error) {
	start := time.Now()
	defer s.metrics.ObserveOperation("apply_roster", start)

	target := make(map[string]struct{}, len(roster))
	for _, p := range roster {
		target[p] = struct{}{}
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.OperationTimeout)
	defer cancel()

	var summary *models.RosterSummary
	err := withRetry(ctx, s.db, nil, s.config.RetryAttempts, s.metrics, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		summary, err = s.reconcile(ctx, tx, actorID, target)
		return err
	})
	if err != nil {
		s.logger.Error(ctx, "roster not applied", "actor", actorID, "error", err)
		return nil, storageError(err)
	}

	s.metrics.RosterApplies.Inc()
	s.metrics.RosterPlates.WithLabelValues("added").Add(float64(len(summary.Added)))
	s.metrics.RosterPlates.WithLabelValues("removed").Add(float64(len(summary.Removed)))
	s.logger.Info(ctx, "roster applied", "actor", actorID, "added", len(summary.Added), "removed", len(summary.Removed))

	s.snapshot(ctx, actorID, target, summary)
	return summary, nil
}

func (s *RosterService) reconcile(ctx context.Context, tx dbx.DBTX, actorID int64, target map[string]struct{}) (*models.RosterSummary, error) {
	plateRepo := s.repomanager.Plates(tx)
	auditRepo := s.repomanager.Audit(tx)

	if err := plateRepo.LockRoster(ctx); err != nil {
		return nil, err
	}
	own, err := plateRepo.LockOwn(ctx)
	if err != nil {
		return nil, err
	}

	current := make(map[string]*models.Plate, len(own))
	for _, p := range own {
		current[p.Plate] = p
	}

	summary := &models.RosterSummary{
		Added:   difference(target, current),
		Removed: difference(current, target),
	}

	for _, plate := range summary.Removed {
		if err := plateRepo.Archive(ctx, current[plate].ID); err != nil {
			return nil, err
		}
		if err := auditRepo.Append(ctx, &models.AuditEntry{ActorID: actorID, Action: models.AuditDelete, Plate: plate}); err != nil {
			return nil, err
		}
	}

	for _, plate := range summary.Added {
		id, err := plateRepo.CreateIfAbsent(ctx, plate, true)
		if err != nil {
			return nil, err
		}
		if err := plateRepo.MarkOwn(ctx, id); err != nil {
			return nil, err
		}
		if err := auditRepo.Append(ctx, &models.AuditEntry{ActorID: actorID, Action: models.AuditAdd, Plate: plate}); err != nil {
			return nil, err
		}
	}

	err = s.repomanager.BulkChanges(tx).Create(ctx, &models.BulkChange{
		ActorID: actorID,
		Added:   summary.Added,
		Removed: summary.Removed,
	})
	if err != nil {
		return nil, err
	}

	return summary, nil
}

// snapshot is best effort: the reconciliation is already committed.
func (s *RosterService) snapshot(ctx context.Context, actorID int64, target map[string]struct{}, summary *models.RosterSummary) {
	if s.snapshots == nil {
		return
	}

	roster := make([]string, 0, len(target))
	for p := range target {
		roster = append(roster, p)
	}
	sort.Strings(roster)

	key, err := s.snapshots.Save(ctx, &RosterSnapshot{
		ActorID:   actorID,
		AppliedAt: s.now().UTC(),
		Roster:    roster,
		Added:     summary.Added,
		Removed:   summary.Removed,
	})
	if err != nil {
		s.metrics.SnapshotFailures.Inc()
		s.logger.Warn(ctx, "roster snapshot failed", "actor", actorID, "error", err)
		return
	}
	s.logger.Debug(ctx, "roster snapshot stored", "key", key)
}

// difference returns the sorted keys of a that are not in b.
func difference[A, B any](a map[string]A, b map[string]B) []string {
	out := []string{}
	for k := range a {
		if _, ok := b[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
