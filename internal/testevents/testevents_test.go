package testevents

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/stemmap/internal/adapters/http/api"
	"github.com/okian/stemmap/internal/adapters/source"
	service "github.com/okian/stemmap/internal/app"
	"github.com/okian/stemmap/internal/config"
	"github.com/okian/stemmap/internal/domain/model"
	"github.com/okian/stemmap/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGenerateEvents(t *testing.T) {
	Convey("Given a generator config", t, func() {
		So(logger.Init(), ShouldBeNil)
		cfg := &Config{NumEvents: 50, Workers: 4}
		stats := &Stats{}

		events, err := generateEvents(context.Background(), cfg, stats)

		Convey("Then every event is drawn from the pools", func() {
			So(err, ShouldBeNil)
			So(len(events), ShouldEqual, 50)
			So(stats.EventsGenerated, ShouldEqual, 50)
			for i := range events {
				So(events[i].Name, ShouldNotBeEmpty)
				So(len(events[i].Year), ShouldEqual, 4)
				So(events[i].Students, ShouldBeBetweenOrEqual, 0, maxStudents)
			}
		})

		Convey("Then the rows decode back to the same events", func() {
			cfg.OutputFile = filepath.Join(t.TempDir(), "events.json")
			So(saveEventsToFile(context.Background(), cfg, events), ShouldBeNil)

			payload, err := os.ReadFile(cfg.OutputFile)
			So(err, ShouldBeNil)
			decoded, err := source.DecodeJSON(payload)
			So(err, ShouldBeNil)
			So(decoded, ShouldResemble, events)
		})
	})

	Convey("Given a cancelled context", t, func() {
		So(logger.Init(), ShouldBeNil)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := generateEvents(ctx, &Config{NumEvents: 10, Workers: 2}, &Stats{})
		So(err, ShouldNotBeNil)
	})
}

func TestVerifyView(t *testing.T) {
	Convey("Given a locally rendered view", t, func() {
		events := []model.Event{
			{Name: "A", Region: "Lima", Year: "2023", Students: 10},
			{Name: "B", Region: "Cusco", Year: "2024", Students: 5},
		}
		local := expectedView(events, model.Selection{})

		Convey("Then an identical view verifies", func() {
			So(verifyView(local, expectedView(events, model.Selection{})), ShouldBeNil)
		})

		Convey("Then a differing summary is a mismatch", func() {
			remote := expectedView(events[:1], model.Selection{})
			So(verifyView(local, remote), ShouldNotBeNil)
		})

		Convey("Then a truncated list is not a mismatch", func() {
			remote := expectedView(events, model.Selection{})
			remote.List, remote.Truncated = remote.List[:1], true
			So(verifyView(local, remote), ShouldBeNil)
		})
	})

	Convey("Given generated events", t, func() {
		events := []model.Event{
			{Region: "Lima", Year: "2023", Institution: "UNI", Scope: "Local"},
			{Region: "Puno", Year: "2024", Institution: "UNI", Scope: "Local"},
		}

		Convey("Then selections cover singles and year x region pairs", func() {
			// empty + 2 years + 2 regions + 1 institution + 1 scope + 4 pairs
			So(len(buildSelections(events)), ShouldEqual, 11)
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a running service reading the dataset file", t, func() {
		So(logger.Init(), ShouldBeNil)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		path := filepath.Join(t.TempDir(), "events.json")
		So(os.WriteFile(path, []byte("[]"), 0o600), ShouldBeNil)

		cfg := config.New()
		cfg.SourceKind, cfg.SourcePath = config.SourceJSON, path
		bundle, err := source.New(ctx, cfg, logger.Get())
		So(err, ShouldBeNil)

		svc := service.New(service.WithEventSource(bundle.Events), service.WithMaxListItems(0))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		mux := http.NewServeMux()
		api.NewServer(svc, svc).Register(ctx, mux)
		srv := httptest.NewServer(mux)
		defer srv.Close()

		Convey("When the check runs against it", func() {
			runCfg := &Config{
				BaseURL:    srv.URL,
				NumEvents:  120,
				Workers:    4,
				Timeout:    5 * time.Second,
				OutputFile: path,
			}
			err := Run(ctx, runCfg)

			Convey("Then every view matches", func() {
				So(err, ShouldBeNil)
			})
		})

		Convey("When only generating", func() {
			out := filepath.Join(t.TempDir(), "only.json")
			err := Run(ctx, &Config{NumEvents: 5, Workers: 1, OutputFile: out, GenerateOnly: true})

			So(err, ShouldBeNil)
			_, statErr := os.Stat(out)
			So(statErr, ShouldBeNil)
		})
	})
}
