// Package app wires the console's dependencies together.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/DeliveryConsole/internal/api"
	"github.com/utafrali/DeliveryConsole/internal/config"
	"github.com/utafrali/DeliveryConsole/internal/dispatch"
	"github.com/utafrali/DeliveryConsole/internal/handler"
	"github.com/utafrali/DeliveryConsole/internal/realtime"
	"github.com/utafrali/DeliveryConsole/internal/session"
	"github.com/utafrali/DeliveryConsole/pkg/database"
	apperrors "github.com/utafrali/DeliveryConsole/pkg/errors"
	"github.com/utafrali/DeliveryConsole/pkg/health"
	"github.com/utafrali/DeliveryConsole/pkg/httpclient"
	"github.com/utafrali/DeliveryConsole/pkg/tracing"
)

const (
	serviceName    = "adminctl"
	serviceVersion = "0.1.0"
)

// EventHandler receives every realtime event while watching.
type EventHandler func(event realtime.Event, payload json.RawMessage)

// App holds the wired console: session store, API facade and realtime channel.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	redis          *redis.Client
	store          *session.Store
	api            *api.Client
	realtime       *realtime.Channel
	tracerShutdown func(context.Context) error

	expiredOnce sync.Once
	expired     chan struct{}
}

// NewApp creates the console and restores any persisted session.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tracerShutdown, err := tracing.InitTracer(initCtx, tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: serviceVersion,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	a := &App{
		cfg:            cfg,
		logger:         logger,
		tracerShutdown: tracerShutdown,
		expired:        make(chan struct{}),
	}

	storage, err := a.newStorage(initCtx)
	if err != nil {
		_ = tracerShutdown(context.Background())
		return nil, err
	}

	a.store = session.NewStore(storage, logger)
	state := a.store.Hydrate(initCtx)
	logger.Debug("session hydrated",
		slog.String("backend", cfg.SessionBackend),
		slog.String("state", state.String()),
	)

	hc := httpclient.New(httpclient.Config{
		Timeout:         cfg.HTTPTimeout,
		MaxConnsPerHost: httpclient.DefaultConfig().MaxConnsPerHost,
	})
	var doer httpclient.Doer = hc
	if cfg.CircuitBreakerEnabled {
		doer = httpclient.NewCircuitBreakerClient(hc, httpclient.DefaultCircuitBreakerConfig("admin-api"), logger)
	}

	d := dispatch.New(dispatch.Config{
		BaseURL:   cfg.BaseURL,
		APIKey:    cfg.APIKey,
		OnExpired: a.onExpired,
		RateLimit: cfg.RateLimitRPS,
		RateBurst: cfg.RateLimitBurst,
	}, doer, a.store, logger)
	a.api = api.New(d, a.store, logger)

	a.realtime = realtime.New(realtime.Config{
		BaseURL:           cfg.BaseURL,
		ReconnectAttempts: cfg.RealtimeReconnectAttempts,
		ReconnectDelay:    cfg.RealtimeReconnectDelay,
		HandshakeTimeout:  10 * time.Second,
	}, a.store, hc.HTTPClient(), logger)

	return a, nil
}

func (a *App) newStorage(ctx context.Context) (session.Storage, error) {
	switch a.cfg.SessionBackend {
	case config.BackendMemory:
		return session.NewMemoryStorage(), nil
	case config.BackendRedis:
		client, err := database.NewRedisClient(ctx, a.cfg.Redis())
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.redis = client
		a.logger.Debug("connected to redis", slog.String("addr", a.cfg.Redis().Addr()))
		return session.NewRedisStorage(client, a.cfg.SessionKeyPrefix), nil
	default:
		return session.NewFileStorage(a.cfg.SessionFile), nil
	}
}

// onExpired runs after the dispatcher has already cleared the session.
func (a *App) onExpired(ctx context.Context) {
	a.expiredOnce.Do(func() {
		a.logger.WarnContext(ctx, "session expired, returning to login")
		close(a.expired)
	})
}

// API returns the admin API facade.
func (a *App) API() *api.Client { return a.api }

// Session returns the session store.
func (a *App) Session() *session.Store { return a.store }

// Realtime returns the realtime channel.
func (a *App) Realtime() *realtime.Channel { return a.realtime }

// Expired is closed the first time a call ends the session.
func (a *App) Expired() <-chan struct{} { return a.expired }

// Watch subscribes to every realtime event and serves the ops endpoints until
// ctx is canceled or the session expires.
func (a *App) Watch(ctx context.Context, onEvent EventHandler) error {
	for _, event := range realtime.Events() {
		unsub, err := a.realtime.Subscribe(ctx, event, func(payload json.RawMessage) {
			onEvent(event, payload)
		})
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", event, err)
		}
		defer unsub()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.WatchHTTPPort),
		Handler:           a.router(),
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("starting ops server", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("ops server: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case <-a.expired:
		runErr = apperrors.SessionExpired("Session expired. Please login again.")
	case err := <-errCh:
		runErr = err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("ops server shutdown error", slog.String("error", err.Error()))
		runErr = errors.Join(runErr, err)
	}
	return runErr
}

func (a *App) router() http.Handler {
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("realtime", func(context.Context) error {
		if s := a.realtime.State(); s != realtime.StateConnected {
			return fmt.Errorf("realtime channel %s", s)
		}
		return nil
	})
	healthHandler.RegisterNonCritical("session", func(context.Context) error {
		if !a.store.IsAuthenticated() {
			return errors.New("no active session")
		}
		return nil
	})
	if a.redis != nil {
		healthHandler.RegisterNonCritical("redis", func(ctx context.Context) error {
			return a.redis.Ping(ctx).Err()
		})
	}

	return handler.NewRouter(healthHandler, handler.NewConsoleHandler(a.store, a.api, a.logger), a.logger)
}

// Shutdown releases everything in order:
// 1. Realtime channel
// 2. Tracer (flush spans of calls made so far)
// 3. Redis client
func (a *App) Shutdown() error {
	var errs []error

	if err := a.realtime.Close(); err != nil {
		a.logger.Error("realtime close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.tracerShutdown != nil {
		tracerCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
