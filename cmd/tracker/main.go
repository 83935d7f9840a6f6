package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"tracker/internal/cli"
	apphttp "tracker/internal/http"
	applog "tracker/internal/log"
	"tracker/internal/middleware/ratelimit"
)

const (
	cacheSweepInterval = 5 * time.Minute
	shutdownTimeout    = 30 * time.Second
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, logger := cli.LoadAndValidateConfig()

	repo, err := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	if err != nil {
		return err
	}

	app := cli.NewApp(cfg, logger, repo)
	app.OnClose(repo.Close)
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("Cleanup failed", applog.FieldError, err)
		}
	}()

	limiter := ratelimit.NewLimiter(ratelimit.DefaultConfig())
	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Tasks:    app.Tasks,
		Views:    app.Views,
		Sessions: app.Sessions,
		Auth:     app.Auth,
		Limiter:  limiter,
		Ready:    app.Ready,
		Logger:   logger,
	})

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting tracker server",
			applog.FieldOperation, applog.OpStartup,
			"port", cfg.Port,
			"participants", cfg.ParticipantA+","+cfg.ParticipantB,
			"admins", len(cfg.Admins),
			"amqp", app.AMQP != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return app.Caches.Run(gctx, cacheSweepInterval)
	})
	g.Go(func() error {
		return limiter.Run(gctx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", applog.FieldError, err)
		return err
	}

	m := srv.Metrics()
	logger.Info("Server stopped gracefully",
		"requests", m.TotalRequests,
		"avg_response_us", m.AverageResponseTime)
	return nil
}
