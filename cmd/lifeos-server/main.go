// Command lifeos-server serves the LifeOS data portability API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/lifeos-app/lifeos/internal/api"
	"github.com/lifeos-app/lifeos/internal/config"
	"github.com/lifeos-app/lifeos/internal/db"
	"github.com/lifeos-app/lifeos/internal/db/migrations"
	"github.com/lifeos-app/lifeos/internal/dbpool"
	"github.com/lifeos-app/lifeos/internal/service"
	"github.com/lifeos-app/lifeos/internal/store"
	"github.com/lifeos-app/lifeos/internal/ws"
)

const (
	readHeaderTimeout = 10 * time.Second
	idleTimeout       = 2 * time.Minute
	shutdownTimeout   = 30 * time.Second
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})

	if err := run(log); err != nil {
		log.WithError(err).Fatal("server exited")
	}
}

func run(log *logrus.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := dbpool.NewPool(ctx, cfg.DatabaseURL.Value(), cfg.DBMaxConns)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool, log, migrations.FS); err != nil {
		return err
	}

	st := store.NewPortabilityStore(store.Base{Pool: pool, Log: log})

	// Workers get their own context so they keep publishing while the HTTP
	// servers drain, and stop only after in-flight requests finish.
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	workers, workerCtx := errgroup.WithContext(workerCtx)

	var (
		sink service.EventSink
		hub  *ws.Hub
	)

	if cfg.EnableEvents {
		worker := service.NewEventWorker(st, log, cfg.EventQueueSize)
		hub = ws.NewHub(log)

		workers.Go(func() error { worker.Run(workerCtx); return nil })
		workers.Go(func() error { hub.Run(workerCtx); return nil })

		if err := db.NewNotifyBridge(log, pool, hub).Start(workerCtx); err != nil {
			return err
		}

		sink = worker
	}

	router := api.NewRouter(workerCtx, &api.RouterDeps{
		Log: log,
		DB:  pool,
		Migrations: func(ctx context.Context) (int64, bool, error) {
			return db.MigrationStatus(ctx, pool, migrations.FS)
		},
		Hub:            hub,
		Exporter:       service.NewExporter(st, log, sink),
		Importer:       service.NewImporter(st, log, sink),
		UserLookup:     st,
		CORSOrigins:    cfg.CORSOrigins,
		Version:        config.Version,
		MaxImportBytes: cfg.MaxImportBytes,
	})

	apiServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}
	metricsServer := &http.Server{
		Addr:              cfg.MetricsAddr(),
		Handler:           api.NewMetricsHandler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	log.WithFields(logrus.Fields{
		"addr":          cfg.Addr(),
		"metrics_addr":  cfg.MetricsAddr(),
		"version":       config.Version,
		"migrations":    db.LatestMigration(),
		"events":        cfg.EnableEvents,
		"max_import_mb": cfg.MaxImportBytes >> 20,
	}).Info("lifeos server starting")

	servers, serversCtx := errgroup.WithContext(ctx)
	servers.Go(func() error { return serve(apiServer, "api") })
	servers.Go(func() error { return serve(metricsServer, "metrics") })
	servers.Go(func() error {
		<-serversCtx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return errors.Join(apiServer.Shutdown(shutdownCtx), metricsServer.Shutdown(shutdownCtx))
	})

	err = servers.Wait()

	stopWorkers()
	if werr := workers.Wait(); werr != nil {
		err = errors.Join(err, werr)
	}

	if err == nil {
		log.Info("server stopped")
	}

	return err
}

func serve(srv *http.Server, name string) error {
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s server: %w", name, err)
	}

	return nil
}
