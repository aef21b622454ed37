package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/plateledger/internal/common"
	"github.com/dmitrijs2005/plateledger/internal/dbx"
	"github.com/dmitrijs2005/plateledger/internal/plates"
	sc "github.com/dmitrijs2005/plateledger/internal/server/config"
	"github.com/dmitrijs2005/plateledger/internal/server/metrics"
	"github.com/dmitrijs2005/plateledger/internal/server/models"
	"github.com/dmitrijs2005/plateledger/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/plateledger/internal/timex"
)

// ReportService answers read-only questions about the ledger. Every report
// that needs more than one statement reads one consistent snapshot.
type ReportService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
	metrics     *metrics.Metrics
	cache       ActivityCache
	loc         *time.Location
	now         func() time.Time
}

func NewReportService(db *sql.DB, m repomanager.RepositoryManager, cfg *sc.Config,
	mx *metrics.Metrics, cache ActivityCache) (*ReportService, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	if cache == nil {
		cache = NewReportCache(0, 0, mx)
	}
	return &ReportService{
		db:          db,
		repomanager: m,
		config:      cfg,
		metrics:     mx,
		cache:       cache,
		loc:         loc,
		now:         time.Now,
	}, nil
}

func (s *ReportService) read(ctx context.Context, op string, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	start := time.Now()
	defer s.metrics.ObserveOperation(op, start)

	ctx, cancel := context.WithTimeout(ctx, s.config.OperationTimeout)
	defer cancel()

	return storageError(dbx.WithTx(ctx, s.db, dbx.ReadOnlySnapshot, fn))
}

func offset(page, size int) (int, error) {
	if page < 1 {
		return 0, common.ErrInvalidPage
	}
	return (page - 1) * size, nil
}

// RepeatCounts lists plates in the given state by number of sightings,
// most sighted first.
func (s *ReportService) RepeatCounts(ctx context.Context, isOwn, isArchived bool, page int) (*models.Page[models.RepeatCount], error) {
	size := s.config.RepeatCountsPageSize
	off, err := offset(page, size)
	if err != nil {
		return nil, err
	}

	result := &models.Page[models.RepeatCount]{Page: page, PageSize: size}
	err = s.read(ctx, "repeat_counts", func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Stats(tx)
		if result.Total, err = repo.CountRepeatPlates(ctx, isOwn, isArchived); err != nil {
			return err
		}
		result.Items, err = repo.RepeatCounts(ctx, isOwn, isArchived, size, off)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DailyTotals lists sightings per local calendar day, newest day first.
func (s *ReportService) DailyTotals(ctx context.Context, page int) (*models.Page[models.DailyTotal], error) {
	size := s.config.DailyTotalsPageSize
	off, err := offset(page, size)
	if err != nil {
		return nil, err
	}

	result := &models.Page[models.DailyTotal]{Page: page, PageSize: size}
	err = s.read(ctx, "daily_totals", func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Stats(tx)
		if result.Total, err = repo.CountDays(ctx, s.config.Timezone); err != nil {
			return err
		}
		result.Items, err = repo.DailyTotals(ctx, s.config.Timezone, size, off)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UserActivity ranks observers by sightings submitted. Pages are served
// from the report cache until the next accepted sighting.
func (s *ReportService) UserActivity(ctx context.Context, page int) (*models.Page[models.ObserverActivity], error) {
	size := s.config.UserActivityPageSize
	off, err := offset(page, size)
	if err != nil {
		return nil, err
	}

	if cached, ok := s.cache.Get(ctx, page); ok {
		return &cached, nil
	}
	gen := s.cache.Generation(ctx)

	result := models.Page[models.ObserverActivity]{Page: page, PageSize: size}
	err = s.read(ctx, "user_activity", func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Stats(tx)
		if result.Total, err = repo.CountObservers(ctx); err != nil {
			return err
		}
		result.Items, err = repo.ObserverActivity(ctx, size, off)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.cache.Add(ctx, gen, page, result)
	return &result, nil
}

// EndOfDayReport summarises the local calendar day containing now. A day
// without sightings reports zeros.
func (s *ReportService) EndOfDayReport(ctx context.Context) (*models.DayReport, error) {
	dayStart, dayEnd := timex.DayBounds(s.now(), s.loc)

	report := &models.DayReport{Day: dayStart}
	err := s.read(ctx, "end_of_day", func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Stats(tx)
		var err error
		if report.Today, report.ForeignToday, err = repo.CountBetween(ctx, dayStart, dayEnd); err != nil {
			return err
		}
		report.AllTime, err = repo.CountAll(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// PlateHistory returns the registry row of raw and all its sightings.
func (s *ReportService) PlateHistory(ctx context.Context, raw string) (*models.PlateHistory, error) {
	plate := plates.Canonicalize(raw)

	var result *models.PlateHistory
	err := s.read(ctx, "plate_history", func(ctx context.Context, tx dbx.DBTX) error {
		p, err := s.repomanager.Plates(tx).Resolve(ctx, plate)
		if err != nil {
			return err
		}
		seen, err := s.repomanager.Sightings(tx).ListByPlate(ctx, plate)
		if err != nil {
			return err
		}
		result = &models.PlateHistory{Plate: *p, Sightings: seen}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AuditHistory returns every audit entry of raw, newest first. Plates that
// were never registered yield common.ErrorNotFound.
func (s *ReportService) AuditHistory(ctx context.Context, raw string) ([]*models.AuditEntry, error) {
	plate := plates.Canonicalize(raw)

	var entries []*models.AuditEntry
	err := s.read(ctx, "audit_history", func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Plates(tx).Resolve(ctx, plate); err != nil {
			return err
		}
		var err error
		entries, err = s.repomanager.Audit(tx).ListByPlate(ctx, plate)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// BulkChanges pages through applied rosters, newest first.
func (s *ReportService) BulkChanges(ctx context.Context, page int) (*models.Page[*models.BulkChange], error) {
	size := s.config.BulkChangesPageSize
	off, err := offset(page, size)
	if err != nil {
		return nil, err
	}

	result := &models.Page[*models.BulkChange]{Page: page, PageSize: size}
	err = s.read(ctx, "bulk_changes", func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.BulkChanges(tx)
		if result.Total, err = repo.Count(ctx); err != nil {
			return err
		}
		result.Items, err = repo.List(ctx, size, off)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ActiveObservers lists every observer with at least one sighting.
func (s *ReportService) ActiveObservers(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := s.read(ctx, "active_observers", func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		ids, err = s.repomanager.Stats(tx).ActiveObservers(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}
