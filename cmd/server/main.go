package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/pk-mender/desafiojr/internal/customer/gateway"
	customerhandler "github.com/pk-mender/desafiojr/internal/customer/handler"
	customermetrics "github.com/pk-mender/desafiojr/internal/customer/metrics"
	"github.com/pk-mender/desafiojr/internal/customer/models"
	customerservice "github.com/pk-mender/desafiojr/internal/customer/service"
	"github.com/pk-mender/desafiojr/internal/customer/store/session"
	"github.com/pk-mender/desafiojr/internal/customer/tracer"
	"github.com/pk-mender/desafiojr/internal/platform/config"
	"github.com/pk-mender/desafiojr/internal/platform/health"
	"github.com/pk-mender/desafiojr/internal/platform/logger"
	"github.com/pk-mender/desafiojr/internal/platform/redis"
	"github.com/pk-mender/desafiojr/pkg/platform/middleware/metadata"
	"github.com/pk-mender/desafiojr/pkg/platform/middleware/request"
	"github.com/pk-mender/desafiojr/pkg/platform/middleware/requesttime"
	pvalidation "github.com/pk-mender/desafiojr/pkg/platform/validation"
)

const (
	shutdownTimeout   = 10 * time.Second
	requestTimeout    = 30 * time.Second
	sweepInterval     = time.Minute
	poolStatsEvery    = 15 * time.Second
	readHeaderTimeout = 5 * time.Second
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	log.Info("initializing customer registry",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"customer_api", cfg.CustomerAPI.URL,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	redisClient, err := redis.New(ctx, cfg.Redis, redis.NewPoolMetrics(reg))
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck // shutdown path
	}

	auditSink, err := newAuditSink(cfg.Kafka, reg, log)
	if err != nil {
		return err
	}
	defer auditSink.Close()

	trace := tracer.NewOTel()
	customerMetrics := customermetrics.NewWith(reg)

	gw := gateway.NewHTTPClient(cfg.CustomerAPI.URL,
		gateway.WithTimeout(cfg.CustomerAPI.Timeout),
		gateway.WithCPFMatch(models.ParseCPFMatch(cfg.Registry.CPFMatch)),
		gateway.WithTracer(trace),
		gateway.WithMetrics(customerMetrics),
		gateway.WithLogger(log),
	)
	postcodes, postcodeCache := newPostcodeLookup(cfg.Postcode, redisClient, trace, reg, log)

	observe := []customerservice.Option{
		customerservice.WithTracer(trace),
		customerservice.WithMetrics(customerMetrics),
		customerservice.WithLogger(log),
		customerservice.WithAudit(auditSink.Logger),
	}
	listSvc := customerservice.NewListService(gw, cfg.Registry.PageSize, observe...)
	formSvc := customerservice.NewFormService(gw,
		session.New(cfg.Registry.SessionTTL),
		customerservice.NewFormValidator(cfg.Registry.RequireEmail, cfg.Registry.MinAge),
		postcodes,
		observe...,
	)

	probes := health.New(cfg.Environment)
	probes.RegisterCheck("customer_api", gw.Ping)
	if redisClient != nil {
		probes.RegisterOptional("redis", func(context.Context) error { return redisClient.Health() })
	}
	if auditSink.Producer != nil {
		probes.RegisterOptional("kafka", func(context.Context) error { return auditSink.Producer.Health() })
	}

	r := chi.NewRouter()
	r.Use(request.Recovery(log))
	r.Use(request.RequestID)
	r.Use(request.Logger(log))
	r.Use(metadata.NewMiddleware(&metadata.Config{
		TrustedProxies: metadata.ParseTrustedProxies(cfg.TrustedProxies),
	}).Handler)
	r.Use(requesttime.Middleware)
	r.Use(request.LatencyMiddleware(request.NewMetricsWith(reg)))

	probes.Register(r)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	r.Group(func(r chi.Router) {
		r.Use(request.Timeout(requestTimeout))
		r.Use(request.BodyLimit(pvalidation.MaxBodySize))
		r.Use(request.ContentTypeJSON)
		customerhandler.New(listSvc, formSvc, log).Register(r)
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return formSvc.RunSweeper(gctx, sweepInterval)
	})
	if postcodeCache != nil {
		g.Go(func() error {
			runCacheSweeper(gctx, postcodeCache, sweepInterval, log)
			return nil
		})
	}
	if redisClient != nil {
		g.Go(func() error {
			redisClient.RunPoolStats(gctx, poolStatsEvery)
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
