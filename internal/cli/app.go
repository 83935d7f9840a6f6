package cli

import (
	"context"
	"errors"
	"fmt"

	"tracker/internal/amqp"
	"tracker/internal/cache"
	"tracker/internal/config"
	applog "tracker/internal/log"
	"tracker/internal/middleware/auth"
	"tracker/internal/services"
	"tracker/internal/session"
	"tracker/internal/store"
)

// App holds the wired services of a running tracker.
type App struct {
	Config   *config.Config
	Logger   *applog.Logger
	Store    store.Store
	Tasks    *services.TaskService
	Views    *services.ViewService
	Sessions *session.Manager
	Auth     *auth.Authorizer
	Caches   *cache.Manager
	// AMQP is nil when no broker is configured
	AMQP *amqp.Client

	closers []func() error
}

// Pinger is implemented by stores that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewApp wires the services around st. A broker connection is attempted
// when cfg names one; failing to reach it disables notifications rather than
// the app.
func NewApp(cfg *config.Config, logger *applog.Logger, st store.Store) *App {
	participants := cfg.Participants()

	app := &App{
		Config: cfg,
		Logger: logger,
		Store:  st,
		Auth:   auth.NewAuthorizer(cfg.Admins),
		Caches: cache.NewManager(logger),
	}

	opts := []services.TaskOption{services.WithLogger(logger)}
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("AMQP unavailable, refresh notifications disabled", applog.FieldError, err)
		} else {
			app.AMQP = client
			app.closers = append(app.closers, client.Close)
			opts = append(opts, services.WithNotifier(client))
		}
	}

	app.Tasks = services.NewTaskService(st, services.NewSequencer(logger), participants, opts...)
	app.Views = services.NewViewService(st, services.NewAggregator(participants, nil, logger), participants, logger)
	app.Sessions = session.NewManager(app.Tasks, cfg.SessionCapacity, cfg.SessionTTL, logger)
	app.Caches.Register(app.Sessions.Cache())

	return app
}

// Ready reports whether the store answers.
func (a *App) Ready(ctx context.Context) error {
	if p, ok := a.Store.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// OnClose registers fn to run on Close, after the ones registered before it.
func (a *App) OnClose(fn func() error) {
	a.closers = append(a.closers, fn)
}

// Close releases the broker connection and anything registered with OnClose.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close app: %w", errors.Join(errs...))
	}
	return nil
}
