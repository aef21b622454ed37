// Package scheduler produces the end-of-day report once a day at a fixed
// local wall-clock time.
package scheduler

import (
	"context"
	"time"

	"github.com/dmitrijs2005/plateledger/internal/logging"
	"github.com/dmitrijs2005/plateledger/internal/server/models"
	"github.com/dmitrijs2005/plateledger/internal/timex"
)

type Reporter interface {
	EndOfDayReport(ctx context.Context) (*models.DayReport, error)
}

// ReportSink receives each produced report.
type ReportSink interface {
	Deliver(ctx context.Context, r *models.DayReport) error
}

// LogSink writes reports to the log.
type LogSink struct {
	Logger logging.Logger
}

func (s LogSink) Deliver(ctx context.Context, r *models.DayReport) error {
	s.Logger.Info(ctx, "end of day report",
		"day", r.Day.Format("2006-01-02"),
		"today", r.Today,
		"all_time", r.AllTime,
		"foreign_today", r.ForeignToday)
	return nil
}

type Scheduler struct {
	reporter Reporter
	sink     ReportSink
	loc      *time.Location
	hour     int
	minute   int
	logger   logging.Logger

	now   func() time.Time
	after func(time.Duration) <-chan time.Time
}

func New(r Reporter, sink ReportSink, loc *time.Location, hour, minute int, l logging.Logger) *Scheduler {
	return &Scheduler{
		reporter: r,
		sink:     sink,
		loc:      loc,
		hour:     hour,
		minute:   minute,
		logger:   l.With("module", "scheduler"),
		now:      time.Now,
		after:    time.After,
	}
}

// Run fires until ctx is done. A failed report is logged and the next day
// is tried as usual.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		next := timex.NextClock(s.now(), s.loc, s.hour, s.minute)
		s.logger.Debug(ctx, "next end of day report", "at", next)

		select {
		case <-ctx.Done():
			return nil
		case <-s.after(next.Sub(s.now())):
		}

		s.fire(ctx)
	}
}

func (s *Scheduler) fire(ctx context.Context) {
	r, err := s.reporter.EndOfDayReport(ctx)
	if err != nil {
		s.logger.Error(ctx, "end of day report failed", "error", err)
		return
	}
	if err := s.sink.Deliver(ctx, r); err != nil {
		s.logger.Error(ctx, "delivering end of day report", "error", err)
	}
}
