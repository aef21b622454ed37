package services

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/plateledger/internal/common"
	"github.com/dmitrijs2005/plateledger/internal/dbx"
	"github.com/dmitrijs2005/plateledger/internal/logging"
	"github.com/dmitrijs2005/plateledger/internal/server/config"
	"github.com/dmitrijs2005/plateledger/internal/server/metrics"
	"github.com/dmitrijs2005/plateledger/internal/server/models"
	"github.com/dmitrijs2005/plateledger/internal/server/repositories/audit"
	"github.com/dmitrijs2005/plateledger/internal/server/repositories/bulkchanges"
	"github.com/dmitrijs2005/plateledger/internal/server/repositories/plates"
	"github.com/dmitrijs2005/plateledger/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/plateledger/internal/server/repositories/sightings"
	"github.com/dmitrijs2005/plateledger/internal/server/repositories/stats"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

// -------- in-memory store --------

type memStore struct {
	plates    map[string]*models.Plate
	byID      map[int64]*models.Plate
	nextID    int64
	sightings []models.Sighting
	audit     []*models.AuditEntry
	bulk      []*models.BulkChange

	failOn    string
	failErr   error
	failTimes int
	calls     []string
}

func newMemStore() *memStore {
	return &memStore{plates: map[string]*models.Plate{}, byID: map[int64]*models.Plate{}}
}

func (s *memStore) call(op string) error {
	s.calls = append(s.calls, op)
	if s.failOn == op && s.failTimes > 0 {
		s.failTimes--
		return s.failErr
	}
	return nil
}

func (s *memStore) failNext(op string, err error, times int) {
	s.failOn, s.failErr, s.failTimes = op, err, times
}

func (s *memStore) add(plate string, isOwn, isArchived bool) *models.Plate {
	s.nextID++
	p := &models.Plate{ID: s.nextID, Plate: plate, IsOwn: isOwn, IsArchived: isArchived}
	s.plates[plate] = p
	s.byID[p.ID] = p
	return p
}

func (s *memStore) sightingsOf(id int64) []models.Sighting {
	var out []models.Sighting
	for _, sg := range s.sightings {
		if sg.PlateID == id {
			out = append(out, sg)
		}
	}
	return out
}

func (s *memStore) auditActions() []string {
	var out []string
	for _, e := range s.audit {
		out = append(out, string(e.Action)+":"+e.Plate)
	}
	return out
}

type fakePlates struct{ s *memStore }

func (f *fakePlates) Resolve(ctx context.Context, plate string) (*models.Plate, error) {
	if err := f.s.call("Resolve"); err != nil {
		return nil, err
	}
	p, ok := f.s.plates[plate]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePlates) CreateIfAbsent(ctx context.Context, plate string, isOwn bool) (int64, error) {
	if err := f.s.call("CreateIfAbsent"); err != nil {
		return 0, err
	}
	if p, ok := f.s.plates[plate]; ok {
		return p.ID, nil
	}
	return f.s.add(plate, isOwn, false).ID, nil
}

func (f *fakePlates) LockByID(ctx context.Context, id int64) (*models.Plate, error) {
	if err := f.s.call("LockByID"); err != nil {
		return nil, err
	}
	p, ok := f.s.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePlates) LockByPlate(ctx context.Context, plate string) (*models.Plate, error) {
	if err := f.s.call("LockByPlate"); err != nil {
		return nil, err
	}
	return f.Resolve(ctx, plate)
}

func (f *fakePlates) LockOwn(ctx context.Context) ([]*models.Plate, error) {
	if err := f.s.call("LockOwn"); err != nil {
		return nil, err
	}
	var out []*models.Plate
	for _, p := range f.s.plates {
		if p.IsOwn {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Plate < out[j].Plate })
	return out, nil
}

func (f *fakePlates) LockRoster(ctx context.Context) error {
	return f.s.call("LockRoster")
}

func (f *fakePlates) Reactivate(ctx context.Context, id int64) error {
	if err := f.s.call("Reactivate"); err != nil {
		return err
	}
	p := f.s.byID[id]
	p.IsArchived = false
	p.ReactivationCount++
	return nil
}

func (f *fakePlates) Archive(ctx context.Context, id int64) error {
	if err := f.s.call("Archive"); err != nil {
		return err
	}
	p := f.s.byID[id]
	p.IsOwn = false
	p.IsArchived = true
	return nil
}

func (f *fakePlates) MarkOwn(ctx context.Context, id int64) error {
	if err := f.s.call("MarkOwn"); err != nil {
		return err
	}
	p := f.s.byID[id]
	if p.IsArchived {
		p.ReactivationCount++
	}
	p.IsOwn = true
	p.IsArchived = false
	return nil
}

type fakeSightings struct{ s *memStore }

func (f *fakeSightings) LastObservedAt(ctx context.Context, plateID int64) (time.Time, bool, error) {
	if err := f.s.call("LastObservedAt"); err != nil {
		return time.Time{}, false, err
	}
	var last time.Time
	found := false
	for _, sg := range f.s.sightingsOf(plateID) {
		if !found || sg.ObservedAt.After(last) {
			last, found = sg.ObservedAt, true
		}
	}
	return last, found, nil
}

func (f *fakeSightings) Create(ctx context.Context, sg *models.Sighting) error {
	if err := f.s.call("CreateSighting"); err != nil {
		return err
	}
	sg.ID = int64(len(f.s.sightings) + 1)
	f.s.sightings = append(f.s.sightings, *sg)
	return nil
}

func (f *fakeSightings) ListByPlate(ctx context.Context, plate string) ([]time.Time, error) {
	if err := f.s.call("ListSightings"); err != nil {
		return nil, err
	}
	p, ok := f.s.plates[plate]
	if !ok {
		return nil, nil
	}
	var out []time.Time
	for _, sg := range f.s.sightingsOf(p.ID) {
		out = append(out, sg.ObservedAt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].After(out[j]) })
	return out, nil
}

type fakeAudit struct{ s *memStore }

func (f *fakeAudit) Append(ctx context.Context, e *models.AuditEntry) error {
	if err := f.s.call("Append"); err != nil {
		return err
	}
	e.ID = int64(len(f.s.audit) + 1)
	f.s.audit = append(f.s.audit, e)
	return nil
}

func (f *fakeAudit) ListByPlate(ctx context.Context, plate string) ([]*models.AuditEntry, error) {
	if err := f.s.call("ListAudit"); err != nil {
		return nil, err
	}
	var out []*models.AuditEntry
	for i := len(f.s.audit) - 1; i >= 0; i-- {
		if f.s.audit[i].Plate == plate {
			out = append(out, f.s.audit[i])
		}
	}
	return out, nil
}

type fakeBulk struct{ s *memStore }

func (f *fakeBulk) Create(ctx context.Context, c *models.BulkChange) error {
	if err := f.s.call("CreateBulk"); err != nil {
		return err
	}
	c.ID = int64(len(f.s.bulk) + 1)
	f.s.bulk = append(f.s.bulk, c)
	return nil
}

func (f *fakeBulk) List(ctx context.Context, limit, offset int) ([]*models.BulkChange, error) {
	if err := f.s.call("ListBulk"); err != nil {
		return nil, err
	}
	var out []*models.BulkChange
	for i := len(f.s.bulk) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.s.bulk[i])
	}
	return out, nil
}

func (f *fakeBulk) Count(ctx context.Context) (int, error) {
	if err := f.s.call("CountBulk"); err != nil {
		return 0, err
	}
	return len(f.s.bulk), nil
}

// fakeStats returns canned aggregates and records the arguments it saw.
type fakeStats struct {
	stats.Repository

	repeat       []models.RepeatCount
	repeatTotal  int
	daily        []models.DailyTotal
	dailyTotal   int
	activity     []models.ObserverActivity
	observers    int
	active       []int64
	today        int
	foreignToday int
	allTime      int
	err          error

	activityCalls int
	lastLimit     int
	lastOffset    int
	lastTZ        string
	lastFrom      time.Time
	lastTo        time.Time
}

func (f *fakeStats) RepeatCounts(ctx context.Context, isOwn, isArchived bool, limit, offset int) ([]models.RepeatCount, error) {
	f.lastLimit, f.lastOffset = limit, offset
	return f.repeat, f.err
}

func (f *fakeStats) CountRepeatPlates(ctx context.Context, isOwn, isArchived bool) (int, error) {
	return f.repeatTotal, f.err
}

func (f *fakeStats) DailyTotals(ctx context.Context, tz string, limit, offset int) ([]models.DailyTotal, error) {
	f.lastTZ, f.lastLimit, f.lastOffset = tz, limit, offset
	return f.daily, f.err
}

func (f *fakeStats) CountDays(ctx context.Context, tz string) (int, error) {
	return f.dailyTotal, f.err
}

func (f *fakeStats) ObserverActivity(ctx context.Context, limit, offset int) ([]models.ObserverActivity, error) {
	f.activityCalls++
	f.lastLimit, f.lastOffset = limit, offset
	return f.activity, f.err
}

func (f *fakeStats) CountObservers(ctx context.Context) (int, error) {
	return f.observers, f.err
}

func (f *fakeStats) ActiveObservers(ctx context.Context) ([]int64, error) {
	return f.active, f.err
}

func (f *fakeStats) CountBetween(ctx context.Context, from, to time.Time) (int, int, error) {
	f.lastFrom, f.lastTo = from, to
	return f.today, f.foreignToday, f.err
}

func (f *fakeStats) CountAll(ctx context.Context) (int, error) {
	return f.allTime, f.err
}

type fakeRepoManager struct {
	repomanager.RepositoryManager
	s     *memStore
	stats *fakeStats
}

func (m *fakeRepoManager) Plates(db dbx.DBTX) plates.Repository           { return &fakePlates{m.s} }
func (m *fakeRepoManager) Sightings(db dbx.DBTX) sightings.Repository     { return &fakeSightings{m.s} }
func (m *fakeRepoManager) Audit(db dbx.DBTX) audit.Repository             { return &fakeAudit{m.s} }
func (m *fakeRepoManager) BulkChanges(db dbx.DBTX) bulkchanges.Repository { return &fakeBulk{m.s} }
func (m *fakeRepoManager) Stats(db dbx.DBTX) stats.Repository             { return m.stats }

// -------- helpers --------

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

var errStorage = errors.New("connection reset")

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.Timezone = "UTC"
	cfg.RepeatCountsPageSize = 10
	cfg.DailyTotalsPageSize = 7
	cfg.UserActivityPageSize = 5
	cfg.BulkChangesPageSize = 2
	return cfg
}

func testMetrics() *metrics.Metrics {
	return metrics.New(prometheus.NewRegistry())
}

func nopLogger() logging.Logger {
	return logging.Nop()
}
