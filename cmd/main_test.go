package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/stemmap/internal/adapters/source"
	app "github.com/okian/stemmap/internal/app"
	"github.com/okian/stemmap/internal/config"
	"github.com/okian/stemmap/pkg/logger"
	"github.com/okian/stemmap/pkg/metrics"
	"github.com/smartystreets/goconvey/convey"
)

const eventsFixture = `[
	["Expo STEM","Lima","Lima","","Mayo",2023,"UNI","","Nacional","","",2,120,4,"Presencial"],
	["Feria","Cusco","Cusco","","Junio",2024,"UNSAAC","","Regional","","",1,35,2,"Virtual"]
]`

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.So(logger.Init(), convey.ShouldBeNil)

		convey.Convey("When testing configuration loading", func() {
			t.Setenv("STEMMAP_ADDR", ":8080")
			t.Setenv("STEMMAP_SOURCE_KIND", "json")
			t.Setenv("STEMMAP_SOURCE_PATH", "events.json")
			t.Setenv("STEMMAP_REFRESH_INTERVAL_SECONDS", "600")

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.SourceKind, convey.ShouldEqual, config.SourceJSON)
				convey.So(cfg.RefreshInterval(), convey.ShouldEqual, 10*time.Minute)
			})
		})

		convey.Convey("When no redis address is configured", func() {
			convey.So(newRedis(context.Background(), config.New(), logger.Get()), convey.ShouldBeNil)
		})

		convey.Convey("When redis is unreachable", func() {
			cfg := config.New()
			cfg.RedisAddr = "127.0.0.1:1"

			convey.Convey("Then a client is still returned", func() {
				rdb := newRedis(context.Background(), cfg, logger.Get())
				convey.So(rdb, convey.ShouldNotBeNil)
				convey.So(rdb.Close(), convey.ShouldBeNil)
			})
		})

		convey.Convey("When testing metrics initialization", func() {
			convey.So(metrics.NewManager(), convey.ShouldNotBeNil)
		})
	})
}

func TestMainApplicationIntegration(t *testing.T) {
	convey.Convey("Given a service over a local JSON file", t, func() {
		convey.So(logger.Init(), convey.ShouldBeNil)

		path := filepath.Join(t.TempDir(), "events.json")
		convey.So(os.WriteFile(path, []byte(eventsFixture), 0o600), convey.ShouldBeNil)

		cfg := config.New()
		cfg.SourceKind, cfg.SourcePath = config.SourceJSON, path

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		bundle, err := source.New(ctx, cfg, logger.Get())
		convey.So(err, convey.ShouldBeNil)
		defer func() { _ = bundle.Close() }()

		svc := app.New(app.WithEventSource(bundle.Events))
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		mux := newMux(ctx, svc)

		convey.Convey("Then every surface answers on one mux", func() {
			for path, want := range map[string]int{
				"/":                 http.StatusOK,
				"/app.js":           http.StatusOK,
				"/api/view":         http.StatusOK,
				"/api/options":      http.StatusOK,
				"/api/regions/LIMA": http.StatusOK,
				"/api/export.xlsx":  http.StatusOK,
				"/api/shapes":       http.StatusNotFound,
				"/api-docs":         http.StatusOK,
				"/openapi.yaml":     http.StatusOK,
				"/stats":            http.StatusOK,
				"/healthz":          http.StatusOK,
				"/api/charts/x.png": http.StatusNotFound,
				"/not-a-real-asset": http.StatusNotFound,
			} {
				req := httptest.NewRequest("GET", path, http.NoBody)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				convey.So(w.Code, convey.ShouldEqual, want)
			}
		})

		convey.Convey("And the service metrics update without panicking", func() {
			convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When testing system metrics updater", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			convey.So(func() {
				startSystemMetricsUpdater(ctx)
			}, convey.ShouldNotPanic)
		})

		convey.Convey("When testing service metrics updater", func() {
			svc := app.New()
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			convey.So(func() {
				startServiceMetricsUpdater(ctx, svc)
			}, convey.ShouldNotPanic)
		})

		convey.Convey("When testing system metrics update", func() {
			convey.So(func() {
				updateSystemMetrics()
			}, convey.ShouldNotPanic)
		})

		convey.Convey("When testing service metrics update before start", func() {
			convey.So(func() {
				updateServiceMetrics(app.New())
			}, convey.ShouldNotPanic)
		})
	})
}

func TestMainApplicationErrorHandling(t *testing.T) {
	convey.Convey("Given an empty listen address", t, func() {
		t.Setenv("STEMMAP_ADDR", "")

		convey.Convey("Then configuration loading should fail", func() {
			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(cfg, convey.ShouldBeNil)
		})
	})
}
