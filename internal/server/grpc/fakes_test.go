package grpc

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/plateledger/internal/logging"
	"github.com/dmitrijs2005/plateledger/internal/plates"
	"github.com/dmitrijs2005/plateledger/internal/server/auth"
	"github.com/dmitrijs2005/plateledger/internal/server/models"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (n nopLogger) Debug(context.Context, string, ...any) {}
func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

const testSecret = "k"

// ---- fakes ----

type fakeLedger struct {
	gotObserver int64
	gotRaw      string
	resp        *models.SightingResult
	err         error
}

func (f *fakeLedger) SubmitSighting(ctx context.Context, observerID int64, raw string) (*models.SightingResult, error) {
	f.gotObserver, f.gotRaw = observerID, raw
	return f.resp, f.err
}

type fakeRoster struct {
	gotActor int64
	gotRows  []string
	summary  *models.RosterSummary
	rowErrs  []plates.RowError
	err      error
}

func (f *fakeRoster) SubmitRoster(ctx context.Context, actorID int64, rows []string) (*models.RosterSummary, []plates.RowError, error) {
	f.gotActor, f.gotRows = actorID, rows
	return f.summary, f.rowErrs, f.err
}

type fakeArchive struct {
	gotActor int64
	outcome  models.ArchiveOutcome
	err      error
}

func (f *fakeArchive) Archive(ctx context.Context, actorID int64, raw string) (models.ArchiveOutcome, error) {
	f.gotActor = actorID
	return f.outcome, f.err
}

type fakeReports struct {
	gotOwn, gotArchived bool
	gotPage             int

	repeat    *models.Page[models.RepeatCount]
	daily     *models.Page[models.DailyTotal]
	activity  *models.Page[models.ObserverActivity]
	day       *models.DayReport
	history   *models.PlateHistory
	audit     []*models.AuditEntry
	bulk      *models.Page[*models.BulkChange]
	observers []int64
	err       error
}

func (f *fakeReports) RepeatCounts(ctx context.Context, isOwn, isArchived bool, page int) (*models.Page[models.RepeatCount], error) {
	f.gotOwn, f.gotArchived, f.gotPage = isOwn, isArchived, page
	return f.repeat, f.err
}
func (f *fakeReports) DailyTotals(ctx context.Context, page int) (*models.Page[models.DailyTotal], error) {
	f.gotPage = page
	return f.daily, f.err
}
func (f *fakeReports) UserActivity(ctx context.Context, page int) (*models.Page[models.ObserverActivity], error) {
	f.gotPage = page
	return f.activity, f.err
}
func (f *fakeReports) EndOfDayReport(ctx context.Context) (*models.DayReport, error) {
	return f.day, f.err
}
func (f *fakeReports) PlateHistory(ctx context.Context, raw string) (*models.PlateHistory, error) {
	return f.history, f.err
}
func (f *fakeReports) AuditHistory(ctx context.Context, raw string) ([]*models.AuditEntry, error) {
	return f.audit, f.err
}
func (f *fakeReports) BulkChanges(ctx context.Context, page int) (*models.Page[*models.BulkChange], error) {
	f.gotPage = page
	return f.bulk, f.err
}
func (f *fakeReports) ActiveObservers(ctx context.Context) ([]int64, error) {
	return f.observers, f.err
}

// ---- helpers ----

type testDeps struct {
	ledger  *fakeLedger
	roster  *fakeRoster
	archive *fakeArchive
	reports *fakeReports
}

func newServer() (*GRPCServer, *testDeps) {
	d := &testDeps{
		ledger:  &fakeLedger{},
		roster:  &fakeRoster{},
		archive: &fakeArchive{},
		reports: &fakeReports{},
	}
	s := NewGRPCServer("127.0.0.1:0", nopLogger{}, d.ledger, d.roster, d.archive, d.reports, testSecret)
	return s, d
}

func withClaims(actorID int64, admin bool) context.Context {
	return context.WithValue(context.Background(), claimsKey, &auth.Claims{ActorID: actorID, Admin: admin})
}

func token(t *testing.T, actorID int64, admin bool) string {
	t.Helper()
	tok, err := auth.GenerateToken(actorID, admin, []byte(testSecret), time.Hour)
	require.NoError(t, err)
	return tok
}
