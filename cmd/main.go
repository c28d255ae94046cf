package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/courses/internal/adapters/http/api"
	"github.com/okian/courses/internal/adapters/http/swagger"
	app "github.com/okian/courses/internal/app"
	"github.com/okian/courses/internal/config"
	"github.com/okian/courses/pkg/logger"
	"github.com/okian/courses/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTP server timeout constants.
const (
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc := app.New(
		app.WithLogger(log.Named("catalog")),
		app.WithSeedCourses(cfg.SeedCourses),
	)
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "failed to start service", logger.Error(err))
		return
	}
	defer svc.Stop()

	mgr := metrics.Configure(metricsOptions(cfg.Metrics)...)
	if mgr.Enabled() {
		go startSystemMetricsUpdater(ctx)
		go startServiceMetricsUpdater(ctx, svc, mgr.RefreshInterval())
	}

	srv := newHTTPServer(cfg, buildHandler(ctx, cfg, svc, log))

	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("api_prefix", cfg.APIPrefix),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info(context.Background(), "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), msDuration(cfg.ShutdownTimeoutMS))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
	}

	log.Info(shutdownCtx, "server stopped")
}

// buildHandler assembles the API and docs routes behind the middleware stack.
func buildHandler(ctx context.Context, cfg *config.Config, svc *app.Service, log logger.Logger) http.Handler {
	apiServer := api.NewServer(svc, svc,
		api.WithAPIPrefix(cfg.APIPrefix),
		api.WithServiceName(cfg.ServiceName),
		api.WithAllowedOrigins(cfg.AllowedOrigins),
		api.WithMaxBodyBytes(cfg.MaxBodyBytes),
		api.WithIdentity(api.Identity{
			StudentID: cfg.Identity.StudentID,
			FirstName: cfg.Identity.FirstName,
			LastName:  cfg.Identity.LastName,
			Program:   cfg.Identity.Program,
			Section:   cfg.Identity.Section,
		}),
		api.WithLogger(log.Named("http")),
	)
	r := apiServer.Router()
	swagger.Register(ctx, r)
	return r
}

func newHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           h,
		ReadTimeout:       msDuration(cfg.ReadTimeoutMS),
		WriteTimeout:      msDuration(cfg.WriteTimeoutMS),
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// metricsOptions maps the metrics config section onto collector options.
func metricsOptions(c config.Metrics) []metrics.Option {
	return []metrics.Option{
		metrics.WithMetricsEnabled(c.Enabled),
		metrics.WithNamespace(c.Namespace),
		metrics.WithSubsystem(c.Subsystem),
		metrics.WithMetricPrefix(c.Prefix),
		metrics.WithRefreshInterval(msDuration(c.RefreshIntervalMS)),
		metrics.WithHistogramBuckets(c.BucketsMS),
		metrics.WithCustomLabels(c.Labels),
	}
}

func msDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater refreshes catalog gauges until ctx is done.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics updates service-level metrics.
func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()
	if total, ok := stats["totalCourses"].(int); ok {
		metrics.UpdateCoursesTotal(total)
	}
}
