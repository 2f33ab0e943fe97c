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

	"github.com/dropDatabas3/walletgate/internal/auth"
	"github.com/dropDatabas3/walletgate/internal/config"
	"github.com/dropDatabas3/walletgate/internal/gateway"
	gwmemory "github.com/dropDatabas3/walletgate/internal/gateway/memory"
	gwrest "github.com/dropDatabas3/walletgate/internal/gateway/rest"
	"github.com/dropDatabas3/walletgate/internal/metrics"
	"github.com/dropDatabas3/walletgate/internal/observability/logger"
	"github.com/dropDatabas3/walletgate/internal/profilestore"
	psfs "github.com/dropDatabas3/walletgate/internal/profilestore/fs"
	psmemory "github.com/dropDatabas3/walletgate/internal/profilestore/memory"
	pspg "github.com/dropDatabas3/walletgate/internal/profilestore/pg"
	psredis "github.com/dropDatabas3/walletgate/internal/profilestore/redis"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func runServe(cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: "walletgate",
		Version:     version,
	})
	defer func() { _ = logger.Sync() }()
	log := logger.L()

	if err := metrics.Register(nil); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, closeStore, err := buildStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("build store: %w", err)
	}
	defer closeStore()
	log.Info("profile store ready", logger.Driver(cfg.Store.Driver))

	gw := buildGateway(cfg)
	log.Info("identity gateway ready", logger.String("kind", cfg.Gateway.Kind))

	coord, err := auth.New(auth.Deps{
		Gateway: gw,
		Store:   store,
		Tick:    cfg.SessionTick(),
	})
	if err != nil {
		return fmt.Errorf("build coordinator: %w", err)
	}
	defer coord.Close()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           newRouter(coord),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", logger.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		return err
	}

	shCtx, shCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shCancel()
	return srv.Shutdown(shCtx)
}

func buildStore(ctx context.Context, cfg *config.Config) (profilestore.Store, func(), error) {
	noop := func() {}
	switch cfg.Store.Driver {
	case "memory":
		return psmemory.New(), noop, nil
	case "fs":
		s, err := psfs.New(cfg.Store.FS.Root)
		return s, noop, err
	case "redis":
		s, err := psredis.New(ctx, psredis.Config{
			Addr:   cfg.Store.Redis.Addr,
			DB:     cfg.Store.Redis.DB,
			Prefix: cfg.Store.Redis.Prefix,
		})
		if err != nil {
			return nil, noop, err
		}
		return s, func() { _ = s.Close() }, nil
	case "postgres":
		s, err := pspg.New(ctx, cfg.Store.Postgres.DSN)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func buildGateway(cfg *config.Config) gateway.Gateway {
	if cfg.Gateway.Kind == "rest" {
		return gwrest.New(gwrest.Config{
			BaseURL: cfg.Gateway.BaseURL,
			APIKey:  cfg.Gateway.APIKey,
			Timeout: cfg.GatewayTimeout(),
		})
	}
	return gwmemory.New()
}

func newRouter(coord *auth.Coordinator) http.Handler {
	h := &handlers{coord: coord}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(zapRequestLogger)

	r.Get("/healthz", h.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/session", h.session)
		r.Post("/session/signup", h.signup)
		r.Post("/session/login", h.login)
		r.Post("/session/federated/{provider}", h.federated)
		r.Post("/session/logout", h.logout)
		r.Post("/session/reset", h.reset)
		r.Post("/session/refresh", h.refresh)
		r.Post("/session/verify/send", h.sendVerification)
		r.Get("/session/verify", h.checkVerification)
		r.Post("/kyc", h.submitKYC)
		r.Patch("/profile", h.updateProfile)
	})

	return r
}

// zapRequestLogger inyecta un logger scoped por request y loguea al cierre.
func zapRequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		l := logger.L().With(
			logger.String("request_id", middleware.GetReqID(r.Context())),
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
		)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(logger.ToContext(r.Context(), l)))
		l.Debug("request served",
			logger.Any("status", ww.Status()),
			logger.Elapsed(time.Since(start)),
		)
	})
}
