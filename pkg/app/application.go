package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"marketplace/internal/health"
	"marketplace/pkg/config"
	"marketplace/pkg/contracts"
	"marketplace/pkg/middleware"

	"github.com/julienschmidt/httprouter"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	// UsersPrefix is rate limited per client address and route.
	UsersPrefix = "/api/v1/users/"
)

type ShutdownHook func(ctx context.Context) error

type Application struct {
	cfg              *config.Config
	server           *http.Server
	idempotencyStore *middleware.InMemoryIdempotencyStore
	rateLimiter      *middleware.RateLimiter
	healthHandler    http.Handler
	appHandler       http.Handler
	rawBodyPaths     []string
	hooks            []ShutdownHook
}

func NewApplication(cfg *config.Config) *Application {
	return &Application{cfg: cfg}
}

// SkipContentType exempts paths from JSON content-type enforcement. Call it
// before SetApp.
func (a *Application) SkipContentType(paths ...string) {
	a.rawBodyPaths = append(a.rawBodyPaths, paths...)
}

// OnShutdown registers hooks run in reverse order after the server drains.
func (a *Application) OnShutdown(hook ShutdownHook) {
	a.hooks = append(a.hooks, hook)
}

func (a *Application) SetApp(handlers ...contracts.Handler) {
	a.setHealthHandler()
	a.setAppHandler(handlers)
	a.setAppServer()
}

// Handler returns the fully wrapped root handler.
func (a *Application) Handler() http.Handler {
	return a.server.Handler
}

func (a *Application) setHealthHandler() {
	healthRouter := httprouter.New()
	health.NewHandler(a.cfg.Client.Mongo, a.cfg.Log).RegisterRoutes(healthRouter)

	var h http.Handler = healthRouter
	h = middleware.RequestLogging(a.cfg.Log)(h)
	h = middleware.Recovery(a.cfg.Log)(h)
	a.healthHandler = h
	a.cfg.Log.Info("Health endpoints configured with minimal middleware (Recovery + Logging only)")
}

func (a *Application) setAppHandler(handlers []contracts.Handler) {
	appRouter := httprouter.New()
	for _, h := range handlers {
		h.RegisterRoutes(appRouter)
	}

	a.idempotencyStore = middleware.NewInMemoryIdempotencyStore(a.cfg.IdempotencyTTL)
	a.rateLimiter = middleware.NewRateLimiter(a.cfg.RateLimitRequests, a.cfg.RateLimitWindow)

	var h http.Handler = appRouter
	h = middleware.Idempotency(a.idempotencyStore)(h)
	h = middleware.RequestTimeout(a.cfg.RequestTimeout)(h)
	h = middleware.RateLimit(a.rateLimiter, a.cfg.Log, middleware.ClientIPKey, UsersPrefix)(h)
	h = middleware.ContentTypeValidation(a.cfg.Log, a.rawBodyPaths...)(h)
	h = middleware.MaxRequestSize(int64(a.cfg.MaxRequestSize))(h)
	h = middleware.RequestLogging(a.cfg.Log)(h)
	h = middleware.Recovery(a.cfg.Log)(h)
	a.appHandler = h
	a.cfg.Log.Info("Application endpoints configured with full middleware stack")
}

func (a *Application) setAppServer() {
	mux := http.NewServeMux()
	mux.Handle("/health", a.healthHandler)
	mux.Handle("/ready", a.healthHandler)
	mux.Handle("/", a.appHandler)

	a.server = &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      otelhttp.NewHandler(mux, a.cfg.ServiceName),
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  a.cfg.IdleTimeout,
	}

	a.cfg.Log.Info("HTTP server configured", "port", a.cfg.Port)
}

func (a *Application) Run() {
	serverErrors := make(chan error, 1)

	go func() {
		a.cfg.Log.Info("Starting HTTP server", "address", a.server.Addr)
		serverErrors <- a.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			a.cfg.Log.Fatal("HTTP server failed", "error", err)
		}

	case sig := <-shutdown:
		a.cfg.Log.Info("Shutdown signal received", "signal", sig)
		a.gracefulShutdown()
	}
}

func (a *Application) gracefulShutdown() {
	a.cfg.Log.Info("Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.cfg.Log.Error("Server shutdown failed", "error", err)
		if err := a.server.Close(); err != nil {
			a.cfg.Log.Error("Could not stop server gracefully", "error", err)
		}
	}

	a.cfg.Log.Info("Stopping background workers...")
	a.idempotencyStore.Stop()
	a.rateLimiter.Stop()
	for i := len(a.hooks) - 1; i >= 0; i-- {
		if err := a.hooks[i](ctx); err != nil {
			a.cfg.Log.Error("Shutdown hook failed", "error", err)
		}
	}

	a.cfg.GracefulShutdown()
	a.cfg.Log.Info("Server stopped gracefully")
}
