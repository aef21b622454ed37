// Package server wires the ledger together: storage, services, the gRPC
// API, the operational HTTP endpoints and the daily report scheduler.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/plateledger/internal/logging"
	"github.com/dmitrijs2005/plateledger/internal/server/config"
	"github.com/dmitrijs2005/plateledger/internal/server/httpserver"
	"github.com/dmitrijs2005/plateledger/internal/server/metrics"
	"github.com/dmitrijs2005/plateledger/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/plateledger/internal/server/scheduler"
	"github.com/dmitrijs2005/plateledger/internal/server/services"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/plateledger/internal/server/grpc"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	redis   *redis.Client
	grpc    *gs.GRPCServer
	http    *httpserver.HTTPServer
	reports *scheduler.Scheduler
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app := &App{config: c, logger: logger, db: db}
	if err := app.init(ctx); err != nil {
		_ = app.Close()
		return nil, err
	}
	return app, nil
}

func (app *App) init(ctx context.Context) error {
	c := app.config

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	mx := metrics.New(prometheus.DefaultRegisterer)

	var cache services.ActivityCache = services.NewReportCache(c.ReportCacheSize, c.ReportCacheTTL, mx)
	if c.ReportCacheRedis != "" {
		app.redis = redis.NewClient(&redis.Options{Addr: c.ReportCacheRedis})
		cache = services.NewRedisActivityCache(app.redis, c.ReportCacheTTL, mx, app.logger)
	}

	var snapshots services.RosterSnapshotter
	if c.S3Bucket != "" {
		snapshots = services.NewS3SnapshotStore(c)
	}

	ledger := services.NewLedgerService(app.db, rm, c, mx, cache, app.logger)
	archive := services.NewArchiveService(app.db, rm, c, mx, app.logger)
	roster := services.NewRosterService(app.db, rm, c, mx, snapshots, app.logger)
	reports, err := services.NewReportService(app.db, rm, c, mx, cache)
	if err != nil {
		return fmt.Errorf("report service: %w", err)
	}

	hour, minute, err := c.ReportClock()
	if err != nil {
		return err
	}
	loc, err := c.Location()
	if err != nil {
		return err
	}

	app.grpc = gs.NewGRPCServer(c.EndpointAddrGRPC, app.logger, ledger, roster, archive, reports, c.SecretKey)
	app.http = httpserver.NewHTTPServer(c.EndpointAddrHTTP, app.db, prometheus.DefaultGatherer, app.logger)
	app.reports = scheduler.New(reports, scheduler.LogSink{Logger: app.logger}, loc, hour, minute, app.logger)
	return nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run blocks until a signal arrives or one of the components fails, then
// stops the others.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.grpc.Run(ctx) })
	g.Go(func() error { return app.http.Run(ctx) })
	g.Go(func() error { return app.reports.Run(ctx) })

	err := g.Wait()
	app.logger.Info(ctx, "App stopped")
	return err
}

func (app *App) Close() error {
	if app.redis != nil {
		_ = app.redis.Close()
	}
	return app.db.Close()
}
