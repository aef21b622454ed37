package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/plateledger/internal/common"
	"github.com/dmitrijs2005/plateledger/internal/plates"
	"github.com/dmitrijs2005/plateledger/internal/server/models"
	"github.com/google/go-cmp/cmp"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSnapshotter struct {
	saved []*RosterSnapshot
	err   error
}

func (f *fakeSnapshotter) Save(ctx context.Context, snap *RosterSnapshot) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.saved = append(f.saved, snap)
	return "rosters/key.json", nil
}

func newRoster(t *testing.T, s *memStore, snaps RosterSnapshotter) (*RosterService, func() error) {
	t.Helper()
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	svc := NewRosterService(db, &fakeRepoManager{s: s}, testConfig(), testMetrics(), snaps, nopLogger())
	svc.now = func() time.Time { return t0 }
	return svc, mock.ExpectationsWereMet
}

func TestApply_ReconcilesOwnSet(t *testing.T) {
	s := newMemStore()
	a := s.add("A111AA77", true, false)
	b := s.add("B222BB77", true, false)

	svc, met := newRoster(t, s, nil)
	summary, err := svc.Apply(context.Background(), 5, []string{"B222BB77", "C333CC77"})
	require.NoError(t, err)

	want := &models.RosterSummary{Added: []string{"C333CC77"}, Removed: []string{"A111AA77"}}
	if diff := cmp.Diff(want, summary); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, models.Archived, a.State())
	assert.Equal(t, models.ActiveOwn, b.State())
	assert.Equal(t, models.ActiveOwn, s.plates["C333CC77"].State())
	assert.Equal(t, []string{"delete:A111AA77", "add:C333CC77"}, s.auditActions())
	for _, e := range s.audit {
		assert.Equal(t, int64(5), e.ActorID)
	}

	require.Len(t, s.bulk, 1)
	assert.Equal(t, []string{"C333CC77"}, s.bulk[0].Added)
	assert.Equal(t, []string{"A111AA77"}, s.bulk[0].Removed)
	assert.Equal(t, "LockRoster", s.calls[0], "roster lock is taken first")
	require.NoError(t, met())
}

func TestApply_AddedPlatesAreSorted(t *testing.T) {
	s := newMemStore()
	svc, _ := newRoster(t, s, nil)

	summary, err := svc.Apply(context.Background(), 1, []string{"X999XX99", "A111AA77", "M555MM50", "A111AA77"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A111AA77", "M555MM50", "X999XX99"}, summary.Added)
	assert.Empty(t, summary.Removed)
	assert.Equal(t, []string{"add:A111AA77", "add:M555MM50", "add:X999XX99"}, s.auditActions())
}

func TestApply_ExistingForeignAndArchivedBecomeOwn(t *testing.T) {
	s := newMemStore()
	foreign := s.add("A111AA77", false, false)
	archived := s.add("B222BB77", false, true)
	archived.ReactivationCount = 1

	svc, _ := newRoster(t, s, nil)
	_, err := svc.Apply(context.Background(), 1, []string{"A111AA77", "B222BB77"})
	require.NoError(t, err)

	assert.Equal(t, models.ActiveOwn, foreign.State())
	assert.Equal(t, 0, foreign.ReactivationCount)
	assert.Equal(t, models.ActiveOwn, archived.State())
	assert.Equal(t, 2, archived.ReactivationCount)
	assert.Len(t, s.plates, 2, "no duplicate registry rows")
}

func TestApply_SameRosterIsNoop(t *testing.T) {
	s := newMemStore()
	s.add("A111AA77", true, false)

	svc, _ := newRoster(t, s, nil)
	summary, err := svc.Apply(context.Background(), 1, []string{"A111AA77"})
	require.NoError(t, err)
	assert.Empty(t, summary.Added)
	assert.Empty(t, summary.Removed)
	assert.Empty(t, s.audit)
	assert.Len(t, s.bulk, 1, "every applied roster is logged")
}

func TestApply_EmptyRosterRemovesAll(t *testing.T) {
	s := newMemStore()
	s.add("B222BB77", true, false)
	s.add("A111AA77", true, false)

	svc, _ := newRoster(t, s, nil)
	summary, err := svc.Apply(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"A111AA77", "B222BB77"}, summary.Removed)
	assert.Equal(t, []string{"delete:A111AA77", "delete:B222BB77"}, s.auditActions())
}

func TestApply_FailureRollsBack(t *testing.T) {
	for _, op := range []string{"LockRoster", "LockOwn", "Archive", "CreateIfAbsent", "MarkOwn", "Append", "CreateBulk"} {
		t.Run(op, func(t *testing.T) {
			db, mock := newSQLMockDB(t)
			mock.ExpectBegin()
			mock.ExpectRollback()

			s := newMemStore()
			s.add("A111AA77", true, false)
			s.failNext(op, errStorage, 1)
			snaps := &fakeSnapshotter{}

			svc := NewRosterService(db, &fakeRepoManager{s: s}, testConfig(), testMetrics(), snaps, nopLogger())
			_, err := svc.Apply(context.Background(), 1, []string{"B222BB77"})
			assert.ErrorIs(t, err, common.ErrStorageFailure)
			assert.Empty(t, snaps.saved, "nothing is snapshotted on failure")
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestApply_RetriedFromScratch(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectCommit()

	s := newMemStore()
	s.add("A111AA77", true, false)
	s.failNext("LockOwn", &pgconn.PgError{Code: "40P01"}, 1)

	svc := NewRosterService(db, &fakeRepoManager{s: s}, testConfig(), testMetrics(), nil, nopLogger())
	summary, err := svc.Apply(context.Background(), 1, []string{"B222BB77"})
	require.NoError(t, err)
	assert.Equal(t, []string{"B222BB77"}, summary.Added)
	assert.Equal(t, []string{"A111AA77"}, summary.Removed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApply_SnapshotAfterCommit(t *testing.T) {
	s := newMemStore()
	s.add("A111AA77", true, false)
	snaps := &fakeSnapshotter{}

	svc, _ := newRoster(t, s, snaps)
	_, err := svc.Apply(context.Background(), 3, []string{"C333CC77", "B222BB77"})
	require.NoError(t, err)

	require.Len(t, snaps.saved, 1)
	got := snaps.saved[0]
	assert.Equal(t, int64(3), got.ActorID)
	assert.Equal(t, t0, got.AppliedAt)
	assert.Equal(t, []string{"B222BB77", "C333CC77"}, got.Roster)
	assert.Equal(t, []string{"A111AA77"}, got.Removed)
}

func TestApply_SnapshotFailureIsNotFatal(t *testing.T) {
	s := newMemStore()
	svc, _ := newRoster(t, s, &fakeSnapshotter{err: errors.New("bucket gone")})

	summary, err := svc.Apply(context.Background(), 3, []string{"B222BB77"})
	require.NoError(t, err)
	assert.Equal(t, []string{"B222BB77"}, summary.Added)
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.metrics.SnapshotFailures))
}

func TestSubmitRoster_InvalidRowsApplyNothing(t *testing.T) {
	db, mock := newSQLMockDB(t)
	s := newMemStore()
	svc := NewRosterService(db, &fakeRepoManager{s: s}, testConfig(), testMetrics(), nil, nopLogger())

	summary, rowErrs, err := svc.SubmitRoster(context.Background(), 1, []string{"A111AA77", "bad", "", "B222BB7"})
	assert.ErrorIs(t, err, common.ErrInvalidRoster)
	assert.Nil(t, summary)
	assert.Equal(t, []plates.RowError{{Row: 2, Value: "bad"}, {Row: 4, Value: "B222BB7"}}, rowErrs)
	assert.Empty(t, s.calls)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitRoster_CanonicalizesRows(t *testing.T) {
	s := newMemStore()
	svc, met := newRoster(t, s, nil)

	summary, rowErrs, err := svc.SubmitRoster(context.Background(), 1, []string{" а111аа77", "A111AA77", "в222вв777"})
	require.NoError(t, err)
	assert.Empty(t, rowErrs)
	assert.Equal(t, []string{"A111AA77", "B222BB777"}, summary.Added)
	require.NoError(t, met())
}
