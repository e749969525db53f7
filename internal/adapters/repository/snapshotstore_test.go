package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/stemmap/internal/domain/model"
)

func TestSnapshotStore(t *testing.T) {
	Convey("Given a new snapshot store", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		store := NewSnapshotStore(ctx, WithClock(func() time.Time { return fixed }), WithMetricsUpdateInterval(time.Hour))
		Reset(func() {
			cancel()
			_ = store.Close()
		})

		Convey("When nothing has been published", func() {
			_, err := store.Current(ctx)

			Convey("Then Current reports no snapshot", func() {
				So(errors.Is(err, ErrNoSnapshot), ShouldBeTrue)
				So(store.Count(ctx), ShouldEqual, 0)
			})
		})

		Convey("When a nil snapshot is published", func() {
			So(errors.Is(store.Publish(ctx, nil), ErrNilSnapshot), ShouldBeTrue)
		})

		Convey("When a snapshot is published", func() {
			snap := &Snapshot{
				Source: "json",
				Events: []model.Event{
					{Region: "Lima", Year: "2023"},
					{Region: "Cusco", Year: "2024"},
				},
			}
			So(store.Publish(ctx, snap), ShouldBeNil)

			Convey("Then it is stamped and becomes current", func() {
				got, err := store.Current(ctx)
				So(err, ShouldBeNil)
				So(got, ShouldEqual, snap)
				So(got.ID, ShouldNotEqual, uuid.Nil)
				So(got.LoadedAt, ShouldEqual, fixed)
				So(got.Options.Years, ShouldResemble, []string{"2023", "2024"})
				So(store.Count(ctx), ShouldEqual, 2)
			})

			Convey("And a second publish replaces it wholesale", func() {
				next := &Snapshot{Source: "json", Events: []model.Event{{Region: "Puno"}}}
				So(store.Publish(ctx, next), ShouldBeNil)

				got, err := store.Current(ctx)
				So(err, ShouldBeNil)
				So(got, ShouldEqual, next)
				So(got.ID, ShouldNotEqual, snap.ID)
				So(store.Count(ctx), ShouldEqual, 1)
			})
		})

		Convey("When readers race a publisher", func() {
			var wg sync.WaitGroup
			for i := 0; i < 8; i++ {
				wg.Add(2)
				go func() {
					defer wg.Done()
					_ = store.Publish(ctx, &Snapshot{Events: make([]model.Event, 3)})
				}()
				go func() {
					defer wg.Done()
					if snap, err := store.Current(ctx); err == nil && len(snap.Events) != 3 {
						t.Errorf("observed partial snapshot with %d events", len(snap.Events))
					}
				}()
			}
			wg.Wait()

			Convey("Then every read sees a whole snapshot", func() {
				So(store.Count(ctx), ShouldEqual, 3)
			})
		})
	})

	Convey("Given a closed store", t, func() {
		store := NewSnapshotStore(context.Background())
		So(store.Close(), ShouldBeNil)
		So(store.Close(), ShouldBeNil)
	})
}
