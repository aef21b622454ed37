// Package grpc exposes the ledger over gRPC using the hand-declared
// service in internal/api.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/plateledger/internal/api"
	"github.com/dmitrijs2005/plateledger/internal/logging"
	"github.com/dmitrijs2005/plateledger/internal/plates"
	"github.com/dmitrijs2005/plateledger/internal/server/models"
	"google.golang.org/grpc"
)

type ledgerSvc interface {
	SubmitSighting(ctx context.Context, observerID int64, raw string) (*models.SightingResult, error)
}

type rosterSvc interface {
	SubmitRoster(ctx context.Context, actorID int64, rows []string) (*models.RosterSummary, []plates.RowError, error)
}

type archiveSvc interface {
	Archive(ctx context.Context, actorID int64, raw string) (models.ArchiveOutcome, error)
}

type reportSvc interface {
	RepeatCounts(ctx context.Context, isOwn, isArchived bool, page int) (*models.Page[models.RepeatCount], error)
	DailyTotals(ctx context.Context, page int) (*models.Page[models.DailyTotal], error)
	UserActivity(ctx context.Context, page int) (*models.Page[models.ObserverActivity], error)
	EndOfDayReport(ctx context.Context) (*models.DayReport, error)
	PlateHistory(ctx context.Context, raw string) (*models.PlateHistory, error)
	AuditHistory(ctx context.Context, raw string) ([]*models.AuditEntry, error)
	BulkChanges(ctx context.Context, page int) (*models.Page[*models.BulkChange], error)
	ActiveObservers(ctx context.Context) ([]int64, error)
}

type GRPCServer struct {
	address   string
	ledger    ledgerSvc
	rosters   rosterSvc
	archives  archiveSvc
	reports   reportSvc
	logger    logging.Logger
	jwtSecret []byte
}

func NewGRPCServer(a string, l logging.Logger, ls ledgerSvc, rs rosterSvc, as archiveSvc, reps reportSvc, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		ledger:    ls,
		rosters:   rs,
		archives:  as,
		reports:   reps,
		jwtSecret: []byte(secretKey),
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		s.requestIDInterceptor,
		s.loggingInterceptor,
		s.accessTokenInterceptor,
	))
	api.RegisterLedgerServiceServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.serve(ctx, listen)
}

func (s *GRPCServer) serve(ctx context.Context, listen net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		stopped := make(chan struct{})
		go func() {
			srv.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-time.After(10 * time.Second):
			srv.Stop()
		}
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
