package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	applog "tracker/internal/log"
	"tracker/internal/middleware/auth"
	"tracker/internal/middleware/ratelimit"
	"tracker/internal/middleware/security"
	"tracker/internal/middleware/trace"
	"tracker/internal/services"
	"tracker/internal/session"
)

// Deps are the collaborators the API serves.
type Deps struct {
	Tasks    *services.TaskService
	Views    *services.ViewService
	Sessions *session.Manager
	Auth     *auth.Authorizer
	// Limiter throttles mutating requests per user. Nil disables throttling.
	Limiter *ratelimit.Limiter
	// Ready reports whether the store is reachable. Nil means always ready.
	Ready  func(ctx context.Context) error
	Logger *applog.Logger
}

type Server struct {
	http.Server
	tasks    *services.TaskService
	views    *services.ViewService
	sessions *session.Manager
	auth     *auth.Authorizer
	limiter  *ratelimit.Limiter
	ready    func(ctx context.Context) error
	logger   *applog.Logger
	proxies  *security.ProxyResolver
	trace    *trace.Middleware
}

// NewServer builds the API server listening on addr.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = applog.Discard()
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	s := &Server{
		tasks:    deps.Tasks,
		views:    deps.Views,
		sessions: deps.Sessions,
		auth:     deps.Auth,
		limiter:  deps.Limiter,
		ready:    deps.Ready,
		logger:   logger,
		proxies:  security.NewProxyResolver(),
	}
	s.trace = trace.NewMiddleware(logger, s.proxies.ClientIP)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(s.trace.Middleware)
	r.Use(chimw.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("not found").Write(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusMethodNotAllowed, "method not allowed").Write(w)
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.auth.Middleware(func(w http.ResponseWriter, r *http.Request) {
			ForbiddenError("forbidden").Write(w)
		}))
		r.Use(applog.FieldMiddleware(applog.FieldUserID, func(r *http.Request) any {
			return currentUser(r).ID
		}))
		r.Use(s.limitMutations)

		r.Get("/dashboard", s.handleDashboard)
		r.Get("/partitions", s.handlePartitions)
		r.Get("/owners/{owner}/statement", s.handleStatement)

		r.Route("/views/{category}/{subcat}", func(r chi.Router) {
			r.Get("/", s.handleView)
			r.Post("/entries", s.handleAddEntry)
			r.Post("/compact", s.handleCompact)
			r.Delete("/completed", s.handleClearCompleted)
		})

		r.Route("/entries/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetEntry)
			r.Delete("/", s.handleDeleteEntry)
			r.Post("/toggle", s.handleToggle)
			r.Post("/copy", s.handleCopy)
			r.Post("/move", s.handleMove)
			r.Put("/number", s.handleRenumber)
			r.Put("/content", s.handleEditContent)
		})

		r.Route("/session", func(r chi.Router) {
			r.Get("/", s.handleSessionCurrent)
			r.Post("/add", s.handleSessionBeginAdd)
			r.Post("/renumber", s.handleSessionBeginRenumber)
			r.Post("/edit", s.handleSessionBeginEdit)
			r.Post("/text", s.handleSessionText)
			r.Post("/owner", s.handleSessionOwner)
			r.Post("/cancel", s.handleSessionCancel)
		})
	})

	return r
}

// limitMutations throttles every method except GET and HEAD.
func (s *Server) limitMutations(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	limited := s.limiter.Middleware(s.rateKey, func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded").Write(w)
	})(next)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead {
			next.ServeHTTP(w, r)
			return
		}
		limited.ServeHTTP(w, r)
	})
}

func (s *Server) rateKey(r *http.Request) string {
	if user, ok := auth.FromContext(r.Context()); ok {
		return "user:" + formatID(user.ID)
	}
	return "ip:" + s.proxies.ClientIP(r)
}

// Metrics returns request counters.
func (s *Server) Metrics() trace.Metrics {
	return s.trace.GetMetrics()
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server", applog.FieldOperation, applog.OpShutdown)
	return s.Server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(map[string]string{"status": "ok"}).Write(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", applog.FieldError, err.Error())
			ErrorResponse(http.StatusServiceUnavailable, "not ready").Write(w)
			return
		}
	}
	NewResponse().JSON(map[string]string{"status": "ready"}).Write(w)
}
