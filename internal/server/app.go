// Package server wires configuration, the database, object storage and the
// HTTP API together and runs them until the process is asked to stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dmitrijs2005/snapster/internal/logging"
	"github.com/dmitrijs2005/snapster/internal/server/config"
	"github.com/dmitrijs2005/snapster/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/snapster/internal/server/rest"
	"github.com/dmitrijs2005/snapster/internal/server/services"
	"github.com/dmitrijs2005/snapster/internal/server/storage"
)

// seams for tests
var (
	openDB = func(dsn string) (*sql.DB, error) {
		return sql.Open("pgx", dsn)
	}
	runMigrations = func(ctx context.Context, m *repomanager.PostgresRepositoryManager, db *sql.DB) error {
		return m.RunMigrations(ctx, db)
	}
	newObjectStore = func(ctx context.Context, opts storage.S3Options) (storage.ObjectStore, error) {
		return storage.NewS3Store(ctx, opts)
	}
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	blobs  *storage.Service
	http   *rest.HTTPServer
}

func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	db, err := openDB(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := runMigrations(ctx, rm, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	store, err := newObjectStore(ctx, storage.S3Options{
		Endpoint:  cfg.S3BaseEndpoint(),
		Region:    cfg.S3Region,
		AccessKey: cfg.S3RootUser,
		SecretKey: cfg.S3RootPassword,
		Bucket:    cfg.S3Bucket,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("object store init error: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	observer, err := storage.NewPrometheusObserver("", reg)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	blobs := storage.NewService(store, storage.NewImageNormalizer(cfg.MaxImageDimension, cfg.MaxImagePixels), observer, logger, storage.Options{
		PublicURL: cfg.S3PublicURL,
		URLExpiry: cfg.SignedURLExpiry,
		Timeout:   cfg.StorageTimeout,
	})

	us := services.NewUserService(db, rm, cfg, logger)
	fs := services.NewFileService(db, rm, blobs, logger, cfg.SignedURLExpiry)
	as := services.NewAlbumService(db, rm, blobs, logger, cfg.SignedURLExpiry)

	hs, err := rest.NewHTTPServer(rest.Options{
		Address:       cfg.EndpointAddrHTTP,
		FrontendURL:   cfg.FrontendURL,
		CookieDomain:  cfg.CookieDomain,
		CookieSecure:  cfg.CookieSecure,
		AccessTTL:     cfg.AccessTokenValidityDuration,
		RefreshTTL:    cfg.RefreshTokenValidityDuration,
		MaxUploadSize: cfg.MaxUploadSize,
		Registerer:    reg,
		Gatherer:      reg,
	}, logger, us, fs, as)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &App{config: cfg, logger: logger, db: db, blobs: blobs, http: hs}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.http.Run(ctx); err != nil {
		app.logger.Error(ctx, "HTTP server failed", "error", err)
		cancelFunc()
	}
}

// Run blocks until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	// A missing bucket is created lazily on first upload as well.
	if err := app.blobs.EnsureBucket(ctx); err != nil {
		app.logger.Warn(ctx, "object store bucket not ready", "bucket", app.config.S3Bucket, "error", err)
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
