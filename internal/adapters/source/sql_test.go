package source

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

const createEvents = `CREATE TABLE events (
	name TEXT, city TEXT, region TEXT, admin_unit TEXT, month TEXT, year INTEGER,
	institution TEXT, venue TEXT, scope TEXT, description TEXT, link TEXT,
	clubs INTEGER, students INTEGER, teachers INTEGER, modality TEXT
)`

func seedSQLite(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.db")
	db, err := sql.Open(DriverSQLite, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec(createEvents); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err = db.Exec(`INSERT INTO events VALUES
		('Expo Ciencia', 'Lima', 'Lima', 'UGEL 03', 'Mayo', 2023, 'UNI', 'Campus', 'Nacional', '', '', 3, 150, 10, 'Presencial'),
		('Taller', NULL, 'Cusco', NULL, NULL, 2024, NULL, NULL, NULL, NULL, NULL, NULL, NULL, NULL, NULL)`)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	return path
}

func TestSQLSource(t *testing.T) {
	Convey("Given a SQLite table with the event columns", t, func() {
		path := seedSQLite(t)
		src, err := OpenSQLSource(DriverSQLite, path, "events")
		So(err, ShouldBeNil)
		Reset(func() { _ = src.Close() })

		Convey("When the events are read", func() {
			events, err := src.Events(context.Background())

			Convey("Then each row is normalized", func() {
				So(err, ShouldBeNil)
				So(len(events), ShouldEqual, 2)
				So(events[0].Name, ShouldEqual, "Expo Ciencia")
				So(events[0].Year, ShouldEqual, "2023")
				So(events[0].Students, ShouldEqual, 150)
				So(events[0].Clubs, ShouldEqual, 3)
			})

			Convey("And NULL cells become defaults", func() {
				So(events[1].City, ShouldEqual, "")
				So(events[1].Students, ShouldEqual, 0)
				So(events[1].Region, ShouldEqual, "Cusco")
			})
		})

		Convey("When the table is empty", func() {
			db, err := sql.Open(DriverSQLite, path)
			So(err, ShouldBeNil)
			defer func() { _ = db.Close() }()
			_, err = db.Exec("DELETE FROM events")
			So(err, ShouldBeNil)

			events, err := src.Events(context.Background())
			So(err, ShouldBeNil)
			So(events, ShouldNotBeNil)
			So(events, ShouldBeEmpty)
		})

		Convey("When the table does not exist", func() {
			missing, err := OpenSQLSource(DriverSQLite, path, "nope")
			So(err, ShouldBeNil)
			defer func() { _ = missing.Close() }()

			_, err = missing.Events(context.Background())
			So(errors.Is(err, ErrFetch), ShouldBeTrue)
		})
	})

	Convey("Given invalid SQL settings", t, func() {
		_, err := OpenSQLSource("mysql", "dsn", "events")
		So(errors.Is(err, ErrUnsupportedKind), ShouldBeTrue)

		_, err = OpenSQLSource(DriverSQLite, ":memory:", "events; DROP TABLE x")
		So(errors.Is(err, ErrUnsupportedKind), ShouldBeTrue)
	})
}
