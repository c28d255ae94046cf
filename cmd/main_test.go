package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	app "github.com/okian/courses/internal/app"
	"github.com/okian/courses/internal/config"
	"github.com/okian/courses/pkg/logger"
	"github.com/okian/courses/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithOutput(io.Discard)); err != nil {
		panic(err)
	}
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("COURSES_ADDR", ":8080")
			_ = os.Setenv("COURSES_READ_TIMEOUT_MS", "1500")
			defer func() {
				_ = os.Unsetenv("COURSES_ADDR")
				_ = os.Unsetenv("COURSES_READ_TIMEOUT_MS")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")

				srv := newHTTPServer(cfg, http.NotFoundHandler())
				convey.So(srv.Addr, convey.ShouldEqual, ":8080")
				convey.So(srv.ReadTimeout, convey.ShouldEqual, 1500*time.Millisecond)
				convey.So(srv.WriteTimeout, convey.ShouldEqual, 10*time.Second)
			})
		})

		convey.Convey("When testing metrics initialization", func() {
			convey.Convey("Then metrics manager should be creatable", func() {
				manager := metrics.NewManager(metrics.WithPrometheusRegistry(prometheus.NewRegistry()))
				convey.So(manager, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestBuildHandler(t *testing.T) {
	convey.Convey("Given a handler built from config", t, func() {
		ctx := context.Background()
		cfg := config.New()
		cfg.APIPrefix = "/api/v9"
		cfg.ServiceName = "test"
		cfg.SeedCourses = []map[string]any{{"courseId": 1, "name": "Seeded"}}

		svc := app.New(app.WithSeedCourses(cfg.SeedCourses))
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		ts := httptest.NewServer(buildHandler(ctx, cfg, svc, logger.Get()))
		defer ts.Close()

		get := func(path string) (int, string) {
			resp, err := http.Get(ts.URL + path)
			convey.So(err, convey.ShouldBeNil)
			defer resp.Body.Close()
			b, _ := io.ReadAll(resp.Body)
			return resp.StatusCode, string(b)
		}

		convey.Convey("Then the configured prefix serves seeded courses", func() {
			code, body := get("/api/v9/courses/1")
			convey.So(code, convey.ShouldEqual, http.StatusOK)
			convey.So(body, convey.ShouldContainSubstring, "Seeded")
		})

		convey.Convey("And the banner uses the configured service name", func() {
			_, body := get("/")
			convey.So(body, convey.ShouldContainSubstring, "test API service successfully")
		})

		convey.Convey("And the API docs are mounted", func() {
			code, body := get("/openapi.yaml")
			convey.So(code, convey.ShouldEqual, http.StatusOK)
			convey.So(strings.HasPrefix(body, "openapi:"), convey.ShouldBeTrue)
		})
	})
}

func TestMetricsOptions(t *testing.T) {
	convey.Convey("Given a metrics config section", t, func() {
		cfg := config.New().Metrics
		cfg.Namespace = "shop"
		cfg.Subsystem = "api"
		cfg.Prefix = "v2"
		cfg.RefreshIntervalMS = 250
		cfg.BucketsMS = []float64{1, 10}
		cfg.Labels = map[string]string{"env": "test"}

		convey.Convey("When a manager is built from it", func() {
			registry := prometheus.NewRegistry()
			opts := append(metricsOptions(cfg), metrics.WithPrometheusRegistry(registry))
			manager := metrics.NewManager(opts...)

			convey.Convey("Then the settings reach the collectors", func() {
				convey.So(manager.Enabled(), convey.ShouldBeTrue)
				convey.So(manager.RefreshInterval(), convey.ShouldEqual, 250*time.Millisecond)

				families, err := registry.Gather()
				convey.So(err, convey.ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				convey.So(names, convey.ShouldContain, "shop_api_v2_courses_total")
			})
		})

		convey.Convey("When metrics are disabled", func() {
			cfg.Enabled = false
			manager := metrics.NewManager(append(metricsOptions(cfg), metrics.WithPrometheusRegistry(prometheus.NewRegistry()))...)
			convey.So(manager.Enabled(), convey.ShouldBeFalse)
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When testing system metrics updater", func() {
			convey.Convey("Then it should return once the context ends", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer cancel()

				convey.So(func() {
					startSystemMetricsUpdater(ctx)
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When testing service metrics updater", func() {
			svc := app.New()

			convey.Convey("Then it should return once the context ends", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer cancel()

				convey.So(func() {
					startServiceMetricsUpdater(ctx, svc, 10*time.Millisecond)
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When updating metrics directly", func() {
			convey.So(func() { updateSystemMetrics() }, convey.ShouldNotPanic)
			convey.So(func() { updateServiceMetrics(app.New()) }, convey.ShouldNotPanic)
		})
	})
}

func TestMainApplicationErrorHandling(t *testing.T) {
	convey.Convey("Given an invalid configuration", t, func() {
		_ = os.Setenv("COURSES_ADDR", "")
		defer func() { _ = os.Unsetenv("COURSES_ADDR") }()

		convey.Convey("Then configuration loading should fail", func() {
			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(cfg, convey.ShouldBeNil)
		})
	})
}
