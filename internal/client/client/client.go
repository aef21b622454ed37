package client

import (
	"context"

	"github.com/dmitrijs2005/plateledger/internal/api"
)

type Client interface {
	Close() error
	Ping(ctx context.Context) error
	SubmitSighting(ctx context.Context, observerID int64, plate string) (*api.SubmitSightingResponse, error)
	SubmitRoster(ctx context.Context, actorID int64, rows []string) (*api.SubmitRosterResponse, error)
	ArchivePlate(ctx context.Context, actorID int64, plate string) (string, error)
	Report(ctx context.Context, kind string, page int) (*api.ReportResponse, error)
	PlateHistory(ctx context.Context, plate string) (*api.PlateHistoryResponse, error)
	AuditHistory(ctx context.Context, plate string) ([]api.AuditEntry, error)
}
