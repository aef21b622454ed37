package stats

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/plateledger/internal/server/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresRepository(db), mock, db
}

func TestRepeatCounts_OrderAndPaging(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`WHERE p.is_own = \$1 AND p.is_archived = \$2\s+GROUP BY p.id\s+ORDER BY sightings DESC, p.id DESC\s+LIMIT \$3 OFFSET \$4`).
		WithArgs(false, false, 10, 20).
		WillReturnRows(sqlmock.NewRows([]string{"id", "plate", "sightings", "reactivation_count"}).
			AddRow(int64(9), "A111AA77", 5, 1).
			AddRow(int64(4), "B222BB77", 5, 0))

	got, err := repo.RepeatCounts(context.Background(), false, false, 10, 20)
	require.NoError(t, err)

	want := []models.RepeatCount{
		{PlateID: 9, Plate: "A111AA77", Sightings: 5, ReactivationCount: 1},
		{PlateID: 4, Plate: "B222BB77", Sightings: 5, ReactivationCount: 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("RepeatCounts mismatch (-want +got):\n%s", diff)
	}
}

func TestRepeatCounts_QueryError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM plates p`).WillReturnError(errors.New("db err"))

	_, err := repo.RepeatCounts(context.Background(), true, false, 10, 0)
	assert.ErrorContains(t, err, "failed to select repeat counts: db err")
}

func TestCountRepeatPlates(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(DISTINCT s.plate_id)`)).
		WithArgs(true, false).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	n, err := repo.CountRepeatPlates(context.Background(), true, false)
	require.NoError(t, err)
	assert.Equal(t, 12, n)
}

func TestDailyTotals_UsesTimeZone(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	d1 := time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT (observed_at AT TIME ZONE $1)::date AS day, COUNT(*)`)).
		WithArgs("Europe/Moscow", 7, 0).
		WillReturnRows(sqlmock.NewRows([]string{"day", "count"}).AddRow(d1, 3).AddRow(d2, 8))

	got, err := repo.DailyTotals(context.Background(), "Europe/Moscow", 7, 0)
	require.NoError(t, err)
	assert.Equal(t, []models.DailyTotal{{Day: d1, Count: 3}, {Day: d2, Count: 8}}, got)
}

func TestCountDays(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(DISTINCT (observed_at AT TIME ZONE $1)::date) FROM sightings`)).
		WithArgs("UTC").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	n, err := repo.CountDays(context.Background(), "UTC")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestObserverActivity(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`GROUP BY observer_id\s+ORDER BY total DESC, observer_id ASC\s+LIMIT \$1 OFFSET \$2`).
		WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"observer_id", "total"}).AddRow(int64(100), 7).AddRow(int64(200), 2))

	got, err := repo.ObserverActivity(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []models.ObserverActivity{{ObserverID: 100, Sightings: 7}, {ObserverID: 200, Sightings: 2}}, got)
}

func TestActiveObservers(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT DISTINCT observer_id FROM sightings`).
		WillReturnRows(sqlmock.NewRows([]string{"observer_id"}).AddRow(int64(1)).AddRow(int64(2)))

	got, err := repo.ActiveObservers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, got)
}

func TestCountBetween(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	from := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)
	mock.ExpectQuery(`COUNT\(\*\) FILTER \(WHERE NOT p.is_own\)`).
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows([]string{"total", "foreign"}).AddRow(10, 4))

	total, foreign, err := repo.CountBetween(context.Background(), from, to)
	require.NoError(t, err)
	assert.Equal(t, 10, total)
	assert.Equal(t, 4, foreign)
}

func TestCountAll_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM sightings`)).WillReturnError(errors.New("down"))

	_, err := repo.CountAll(context.Background())
	assert.ErrorContains(t, err, "db error: down")
}
