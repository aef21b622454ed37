package grpc

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/plateledger/internal/api"
	"github.com/dmitrijs2005/plateledger/internal/common"
	"github.com/dmitrijs2005/plateledger/internal/server/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const dayLayout = "2006-01-02"

// toStatus maps service errors onto gRPC codes. Storage failures are
// Unavailable so that callers know a retry is safe.
func toStatus(err error) error {
	switch {
	case errors.Is(err, common.ErrInvalidPlate),
		errors.Is(err, common.ErrInvalidPage),
		errors.Is(err, common.ErrInvalidRoster):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "plate not found")
	case errors.Is(err, common.ErrOwnPlate):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "operation timed out")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "operation canceled")
	case errors.Is(err, common.ErrStorageFailure):
		return status.Error(codes.Unavailable, "storage failure, retry later")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

// actorID picks the id a request acts as. Admin tokens may act on behalf of
// another id, as the chat front end does for its users.
func actorID(ctx context.Context, requested int64) (int64, error) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return 0, status.Error(codes.Unauthenticated, "missing claims")
	}
	if requested != 0 && requested != claims.ActorID {
		if !claims.Admin {
			return 0, status.Error(codes.PermissionDenied, "acting for another id requires an admin token")
		}
		return requested, nil
	}
	return claims.ActorID, nil
}

func (s *GRPCServer) Ping(ctx context.Context, req *api.PingRequest) (*api.PingResponse, error) {

	return &api.PingResponse{Status: "OK"}, nil

}

func (s *GRPCServer) SubmitSighting(ctx context.Context, req *api.SubmitSightingRequest) (*api.SubmitSightingResponse, error) {

	observerID, err := actorID(ctx, req.ObserverID)
	if err != nil {
		return nil, err
	}

	result, err := s.ledger.SubmitSighting(ctx, observerID, req.Plate)
	if err != nil {
		return nil, toStatus(err)
	}

	return &api.SubmitSightingResponse{
		Outcome:     result.Outcome.String(),
		Plate:       result.Plate,
		IsOwn:       result.IsOwn,
		Reactivated: result.Reactivated,
		ObservedAt:  result.ObservedAt,
	}, nil

}

// SubmitRoster answers a roster with bad rows with Applied=false and the
// offending rows rather than an error, so the front end can show them.
func (s *GRPCServer) SubmitRoster(ctx context.Context, req *api.SubmitRosterRequest) (*api.SubmitRosterResponse, error) {

	actor, err := actorID(ctx, req.ActorID)
	if err != nil {
		return nil, err
	}

	summary, rowErrs, err := s.rosters.SubmitRoster(ctx, actor, req.Rows)
	if len(rowErrs) > 0 {
		resp := &api.SubmitRosterResponse{RowErrors: make([]api.RowError, 0, len(rowErrs))}
		for _, re := range rowErrs {
			resp.RowErrors = append(resp.RowErrors, api.RowError{Row: re.Row, Value: re.Value})
		}
		return resp, nil
	}
	if err != nil {
		return nil, toStatus(err)
	}

	s.logger.Info(ctx, "roster applied", "actor", actor, "added", len(summary.Added), "removed", len(summary.Removed))
	return &api.SubmitRosterResponse{Applied: true, Added: summary.Added, Removed: summary.Removed}, nil

}

func (s *GRPCServer) ArchivePlate(ctx context.Context, req *api.ArchivePlateRequest) (*api.ArchivePlateResponse, error) {

	actor, err := actorID(ctx, req.ActorID)
	if err != nil {
		return nil, err
	}

	outcome, err := s.archives.Archive(ctx, actor, req.Plate)
	if err != nil {
		return nil, toStatus(err)
	}

	return &api.ArchivePlateResponse{Outcome: outcome.String()}, nil

}

func (s *GRPCServer) RequestReport(ctx context.Context, req *api.ReportRequest) (*api.ReportResponse, error) {

	page := req.Page
	if page == 0 {
		page = 1
	}
	resp := &api.ReportResponse{Kind: req.Kind}

	var err error
	switch req.Kind {
	case api.ReportRepeatForeign, api.ReportRepeatOwn, api.ReportRepeatArchived:
		var p *models.Page[models.RepeatCount]
		p, err = s.reports.RepeatCounts(ctx, req.Kind == api.ReportRepeatOwn, req.Kind == api.ReportRepeatArchived, page)
		if err == nil {
			setPage(resp, p)
			resp.RepeatCounts = make([]api.RepeatCount, 0, len(p.Items))
			for _, r := range p.Items {
				resp.RepeatCounts = append(resp.RepeatCounts, api.RepeatCount{
					Plate: r.Plate, Sightings: r.Sightings, ReactivationCount: r.ReactivationCount,
				})
			}
		}
	case api.ReportDailyTotals:
		var p *models.Page[models.DailyTotal]
		p, err = s.reports.DailyTotals(ctx, page)
		if err == nil {
			setPage(resp, p)
			resp.DailyTotals = make([]api.DailyTotal, 0, len(p.Items))
			for _, d := range p.Items {
				resp.DailyTotals = append(resp.DailyTotals, api.DailyTotal{Day: d.Day.Format(dayLayout), Count: d.Count})
			}
		}
	case api.ReportUserActivity:
		var p *models.Page[models.ObserverActivity]
		p, err = s.reports.UserActivity(ctx, page)
		if err == nil {
			setPage(resp, p)
			resp.UserActivity = make([]api.ObserverActivity, 0, len(p.Items))
			for _, a := range p.Items {
				resp.UserActivity = append(resp.UserActivity, api.ObserverActivity{ObserverID: a.ObserverID, Sightings: a.Sightings})
			}
		}
	case api.ReportEndOfDay:
		var r *models.DayReport
		r, err = s.reports.EndOfDayReport(ctx)
		if err == nil {
			resp.EndOfDay = &api.DayReport{
				Day: r.Day.Format(dayLayout), Today: r.Today, AllTime: r.AllTime, ForeignToday: r.ForeignToday,
			}
		}
	case api.ReportBulkChanges:
		var p *models.Page[*models.BulkChange]
		p, err = s.reports.BulkChanges(ctx, page)
		if err == nil {
			setPage(resp, p)
			resp.BulkChanges = make([]api.BulkChange, 0, len(p.Items))
			for _, b := range p.Items {
				resp.BulkChanges = append(resp.BulkChanges, api.BulkChange{
					ActorID: b.ActorID, Added: b.Added, Removed: b.Removed, CreatedAt: b.CreatedAt,
				})
			}
		}
	case api.ReportActiveObservers:
		resp.Observers, err = s.reports.ActiveObservers(ctx)
	default:
		return nil, status.Error(codes.InvalidArgument, fmt.Sprintf("unknown report kind %q", req.Kind))
	}
	if err != nil {
		return nil, toStatus(err)
	}

	return resp, nil

}

func setPage[T any](resp *api.ReportResponse, p *models.Page[T]) {
	resp.Page = p.Page
	resp.PageSize = p.PageSize
	resp.Total = p.Total
	resp.Pages = p.Pages()
}

func (s *GRPCServer) PlateHistory(ctx context.Context, req *api.PlateHistoryRequest) (*api.PlateHistoryResponse, error) {

	h, err := s.reports.PlateHistory(ctx, req.Plate)
	if err != nil {
		return nil, toStatus(err)
	}

	return &api.PlateHistoryResponse{
		Plate:             h.Plate.Plate,
		State:             h.Plate.State().String(),
		ReactivationCount: h.Plate.ReactivationCount,
		Sightings:         h.Sightings,
	}, nil

}

func (s *GRPCServer) AuditHistory(ctx context.Context, req *api.AuditHistoryRequest) (*api.AuditHistoryResponse, error) {

	entries, err := s.reports.AuditHistory(ctx, req.Plate)
	if err != nil {
		return nil, toStatus(err)
	}

	resp := &api.AuditHistoryResponse{Entries: make([]api.AuditEntry, 0, len(entries))}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, api.AuditEntry{
			ActorID: e.ActorID, Action: string(e.Action), Plate: e.Plate, CreatedAt: e.CreatedAt,
		})
	}
	return resp, nil

}
