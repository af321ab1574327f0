// Package server wires the vaultx server together: it picks the storage
// backend, builds the services and runs the HTTP and gRPC listeners until a
// signal or a listener failure stops them.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/vaultx/internal/cryptox"
	"github.com/dmitrijs2005/vaultx/internal/dbx"
	"github.com/dmitrijs2005/vaultx/internal/logging"
	"github.com/dmitrijs2005/vaultx/internal/ratelimit"
	"github.com/dmitrijs2005/vaultx/internal/server/auth"
	"github.com/dmitrijs2005/vaultx/internal/server/config"
	"github.com/dmitrijs2005/vaultx/internal/server/httpapi"
	"github.com/dmitrijs2005/vaultx/internal/server/repositories/memory"
	"github.com/dmitrijs2005/vaultx/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/vaultx/internal/server/services"
	"github.com/dmitrijs2005/vaultx/internal/server/twofactor"

	gs "github.com/dmitrijs2005/vaultx/internal/server/grpc"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepInterval   = time.Minute
)

// Seams for tests.
var (
	openPostgres  = repomanager.OpenPostgres
	notifyContext = signal.NotifyContext
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	activity *services.ActivityService
	limiter  *ratelimit.KeyedLimiter
	http     *http.Server
	grpc     *gs.GRPCServer
	closeDB  func()
}

// NewApp validates the key material, opens storage and builds every service.
// Any error here must abort startup.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.NewJSON(os.Stdout, c.LogLevel)
	if err != nil {
		return nil, err
	}
	return newApp(ctx, c, logger)
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	box, err := cryptox.NewBox(c.MasterKey)
	if err != nil {
		return nil, err
	}

	tokens, err := auth.NewTokenIssuer([]byte(c.JWTSecret), c.TokenValidityDuration)
	if err != nil {
		return nil, err
	}

	runner, rm, closeDB, err := openStorage(ctx, c, logger)
	if err != nil {
		return nil, err
	}

	passwords := auth.NewPasswordHasher(c.BcryptCost)
	engine := twofactor.NewEngine(c.TOTPIssuer, passwords)

	activity := services.NewActivityService(runner, rm, logger)
	authService := services.NewAuthService(runner, rm, passwords, tokens, engine, activity, logger)
	userService := services.NewUserService(runner, rm, passwords, activity, logger)
	tfService := services.NewTwoFactorService(runner, rm, engine, activity, logger)
	vaultService := services.NewVaultService(runner, rm, box, activity, logger)
	backupService := services.NewBackupService(runner, rm, services.BackupConfig{
		Bucket:    c.S3Bucket,
		Region:    c.S3Region,
		Endpoint:  c.S3BaseEndpoint,
		AccessKey: c.S3RootUser,
		SecretKey: c.S3RootPassword,
		LinkTTL:   c.BackupLinkTTL,
	}, activity, logger)

	limiter := ratelimit.New(c.RateLimitRequests, c.RateLimitWindow)

	h := httpapi.NewHandler(httpapi.Services{
		Auth:      authService,
		Users:     userService,
		TwoFactor: tfService,
		Vault:     vaultService,
		Activity:  activity,
		Backup:    backupService,
	}, logger)

	return &App{
		config:   c,
		logger:   logger,
		activity: activity,
		limiter:  limiter,
		http: &http.Server{
			Addr:              c.EndpointAddrHTTP,
			Handler:           httpapi.NewServeMux(h, limiter, logger),
			ReadHeaderTimeout: 5 * time.Second,
		},
		grpc: gs.NewGRPCServer(c.EndpointAddrGRPC, logger, gs.Services{
			Auth:   authService,
			Users:  userService,
			Vault:  vaultService,
			Backup: backupService,
		}, gs.WithLimiter(limiter)),
		closeDB: closeDB,
	}, nil
}

func openStorage(ctx context.Context, c *config.Config, logger logging.Logger) (dbx.Runner, repomanager.RepositoryManager, func(), error) {
	if c.UseMemoryStore() {
		logger.Warn(ctx, "using in-memory store, data is lost on restart")
		s := memory.NewStore()
		return s, s, func() {}, nil
	}

	db, closeFn, err := openPostgres(ctx, c.DatabaseDSN, repomanager.DefaultPoolSettings)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		closeFn()
		return nil, nil, nil, fmt.Errorf("migrations: %w", err)
	}

	return dbx.NewSQLRunner(db, nil), rm, closeFn, nil
}

func (app *App) startHTTPServer(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "HTTP server listening", "addr", app.http.Addr)
		errCh <- app.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := app.http.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// Run serves until ctx is cancelled, a signal arrives or either listener
// fails. Pending activity writes are flushed before it returns.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := notifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	go app.limiter.RunSweeper(sweepInterval, ctx.Done())

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		app.logger.Error(ctx, err.Error())
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
		cancelFunc()
	}

	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := app.startHTTPServer(ctx); err != nil {
			fail(fmt.Errorf("http server: %w", err))
		}
	}()
	go func() {
		defer wg.Done()
		if err := app.grpc.Run(ctx); err != nil {
			fail(fmt.Errorf("grpc server: %w", err))
		}
	}()

	wg.Wait()

	app.activity.Wait()
	app.closeDB()
	app.logger.Info(context.WithoutCancel(ctx), "App stopped")

	return firstErr
}
