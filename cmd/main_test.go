package main

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"

	"github.com/courtsidehq/courtside/internal/adapters/http/api"
	app "github.com/courtsidehq/courtside/internal/app"
	"github.com/courtsidehq/courtside/internal/config"
	"github.com/courtsidehq/courtside/pkg/metrics"
)

func TestMainComponents(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When loading configuration from the environment", func() {
			_ = os.Setenv("COURTSIDE_ADDR", ":8080")
			_ = os.Setenv("COURTSIDE_QUEUE_SIZE", "1000")
			_ = os.Setenv("COURTSIDE_WORKER_COUNT", "4")
			defer func() {
				_ = os.Unsetenv("COURTSIDE_ADDR")
				_ = os.Unsetenv("COURTSIDE_QUEUE_SIZE")
				_ = os.Unsetenv("COURTSIDE_WORKER_COUNT")
			}()

			convey.Convey("Then the configuration is loadable", func() {
				ctx := context.Background()
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When creating the service", func() {
			convey.Convey("Then it is creatable with defaults", func() {
				svc := app.New()
				convey.So(svc, convey.ShouldNotBeNil)
			})

			convey.Convey("And it is creatable with custom options", func() {
				svc := app.New(
					app.WithWorkerCount(8),
					app.WithQueueSize(2000),
					app.WithDedupeSize(1000),
				)
				convey.So(svc, convey.ShouldNotBeNil)
			})

			convey.Convey("And stats are readable before start", func() {
				svc := app.New()
				stats := svc.GetStats()
				convey.So(stats, convey.ShouldNotBeNil)
				convey.So(stats["started"], convey.ShouldBeFalse)
			})
		})

		convey.Convey("When creating the HTTP server", func() {
			svc := app.New()
			server := api.NewServer(svc, svc)
			convey.So(server, convey.ShouldNotBeNil)

			convey.Convey("Then routes register on a mux", func() {
				mux := http.NewServeMux()
				convey.So(func() {
					server.Register(context.Background(), mux)
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When creating a metrics manager", func() {
			registry := prometheus.NewRegistry()
			manager := metrics.NewManager(metrics.WithRegistry(registry))
			convey.So(manager, convey.ShouldNotBeNil)
		})
	})
}

func TestServiceMetricsUpdater(t *testing.T) {
	convey.Convey("Given the service metrics updater", t, func() {
		svc := app.New()
		convey.So(svc, convey.ShouldNotBeNil)

		convey.Convey("When run under a short-lived context", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			convey.Convey("Then it returns without panicking", func() {
				convey.So(func() {
					startServiceMetricsUpdater(ctx, svc)
				}, convey.ShouldNotPanic)
			})
		})
	})
}

func TestMainErrorHandling(t *testing.T) {
	convey.Convey("Given invalid configuration", t, func() {
		_ = os.Setenv("COURTSIDE_ADDR", "")
		defer func() { _ = os.Unsetenv("COURTSIDE_ADDR") }()

		convey.Convey("Then configuration loading fails", func() {
			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(cfg, convey.ShouldBeNil)
		})
	})
}
