package stats

import (
	"context"
	"time"

	"github.com/dmitrijs2005/plateledger/internal/server/models"
)

// Repository holds the read-only aggregate queries behind the reports.
type Repository interface {
	RepeatCounts(ctx context.Context, isOwn, isArchived bool, limit, offset int) ([]models.RepeatCount, error)
	CountRepeatPlates(ctx context.Context, isOwn, isArchived bool) (int, error)
	DailyTotals(ctx context.Context, tz string, limit, offset int) ([]models.DailyTotal, error)
	CountDays(ctx context.Context, tz string) (int, error)
	ObserverActivity(ctx context.Context, limit, offset int) ([]models.ObserverActivity, error)
	CountObservers(ctx context.Context) (int, error)
	ActiveObservers(ctx context.Context) ([]int64, error)
	CountBetween(ctx context.Context, from, to time.Time) (total, foreign int, err error)
	CountAll(ctx context.Context) (int, error)
}
