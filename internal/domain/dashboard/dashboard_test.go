package dashboard

import (
	"errors"
	"testing"

	"github.com/okian/stemmap/internal/domain/colorscale"
	"github.com/okian/stemmap/internal/domain/geo"
	"github.com/okian/stemmap/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const shapesJSON = `{"type":"FeatureCollection","features":[
 {"properties":{"NOMBDEP":"LIMA"},"geometry":null},
 {"properties":{"NOMBDEP":"CUSCO"},"geometry":null},
 {"properties":{"NOMBDEP":"PUNO"},"geometry":null}
]}`

func events() []model.Event {
	return []model.Event{
		{Name: "a", Region: "Lima", Year: "2023", Month: "Mayo", Students: 10, Institution: "UNI", Scope: "Regional"},
		{Name: "b", Region: "Cusco", Year: "2023", Month: "Junio", Students: 5, Institution: "UNSAAC", Scope: "Local"},
		{Name: "c", Region: "Lima", Year: "2024", Month: "Enero", Students: 7, Institution: "UNI", Scope: "Nacional"},
	}
}

func mustShapes() *geo.Collection {
	c, err := geo.Parse([]byte(shapesJSON), "")
	So(err, ShouldBeNil)
	return c
}

func TestBuild(t *testing.T) {
	Convey("Given events, shapes and the continuous scale", t, func() {
		shapes := mustShapes()
		scale := colorscale.Continuous{}

		Convey("When rendering with no selection", func() {
			v := Build(events(), shapes, model.Selection{}, scale, Options{})

			Convey("Then KPIs cover the whole dataset", func() {
				So(v.Summary, ShouldResemble, model.Summary{Coverage: 2, Total: 3, Attendees: 22})
			})

			Convey("Then every feature is styled through the region groups", func() {
				So(len(v.Regions), ShouldEqual, 3)
				So(v.MaxCount, ShouldEqual, 2)
				So(v.Regions[0].Key, ShouldEqual, "LIMA")
				So(v.Regions[0].Count, ShouldEqual, 2)
				So(v.Regions[0].Attendees, ShouldEqual, 17)
				So(v.Regions[0].Style.FillColor, ShouldEqual, "rgba(181,18,27,1)")
				So(v.Regions[1].Style.FillColor, ShouldEqual, "rgba(181,18,27,0.5)")
				So(v.Regions[2].Style, ShouldResemble, colorscale.NoData)
			})

			Convey("Then chart series are ordered", func() {
				So(v.Charts.EncountersByYear.Labels, ShouldResemble, []string{"2023", "2024"})
				So(v.Charts.EncountersByYear.Values, ShouldResemble, []int{2, 1})
				So(v.Charts.AttendeesByYear.Values, ShouldResemble, []int{15, 7})
				So(v.Charts.EncountersByRegion.Labels, ShouldResemble, []string{"Lima", "Cusco"})
				So(v.Charts.EncountersByRegion.Label, ShouldEqual, LabelEncountersByRegion)
			})

			Convey("Then the list mirrors the events in order", func() {
				So(len(v.List), ShouldEqual, 3)
				So(v.List[0], ShouldResemble, ListItem{Name: "a", Region: "Lima", Month: "Mayo", Year: "2023", Attendees: 10})
				So(v.Truncated, ShouldBeFalse)
			})

			Convey("Then options come from the full dataset", func() {
				So(v.Options.Years, ShouldResemble, []string{"2023", "2024"})
				So(v.Options.Regions, ShouldResemble, []string{"Lima", "Cusco"})
			})
		})

		Convey("When rendering 2023 only", func() {
			v := Build(events(), shapes, model.Selection{Year: "2023"}, scale, Options{})

			Convey("Then regions and KPIs reflect the subset", func() {
				So(v.Summary.Total, ShouldEqual, 2)
				So(v.MaxCount, ShouldEqual, 1)
				So(v.Regions[0].Count, ShouldEqual, 1)
				So(v.Regions[1].Count, ShouldEqual, 1)
			})

			Convey("Then options still list every year", func() {
				So(v.Options.Years, ShouldResemble, []string{"2023", "2024"})
			})
		})

		Convey("When the list is capped", func() {
			v := Build(events(), shapes, model.Selection{}, scale, Options{MaxListItems: 2})
			So(len(v.List), ShouldEqual, 2)
			So(v.Truncated, ShouldBeTrue)
			So(v.Summary.Total, ShouldEqual, 3)
		})

		Convey("When no shapes are loaded", func() {
			v := Build(events(), nil, model.Selection{}, scale, Options{})
			So(len(v.Regions), ShouldEqual, 2)
			So(v.Regions[0].Key, ShouldEqual, "LIMA")
		})
	})

	Convey("Given an empty dataset", t, func() {
		shapes := mustShapes()
		v := Build(nil, shapes, model.Selection{}, nil, Options{})

		Convey("Then selectors are empty and KPIs are zero", func() {
			So(v.Options.Years, ShouldBeEmpty)
			So(v.Options.Regions, ShouldBeEmpty)
			So(v.Options.Institutions, ShouldBeEmpty)
			So(v.Options.Scopes, ShouldBeEmpty)
			So(v.Summary, ShouldResemble, model.Summary{})
			So(v.List, ShouldBeEmpty)
		})

		Convey("Then every region uses the no-data style", func() {
			So(len(v.Regions), ShouldEqual, 3)
			for _, r := range v.Regions {
				So(r.Style, ShouldResemble, colorscale.NoData)
			}
		})
	})
}

func TestRegionDetail(t *testing.T) {
	Convey("Given a clicked feature", t, func() {
		Convey("When no selection is active", func() {
			p := RegionDetail(events(), "Lima", model.Selection{})
			So(p, ShouldResemble, Popup{Name: "LIMA", Encounters: 2, Attendees: 17})
		})

		Convey("When a year is selected", func() {
			p := RegionDetail(events(), "LIMA", model.Selection{Year: "2024"})
			So(p, ShouldResemble, Popup{Name: "LIMA", Encounters: 1, Attendees: 7})
		})

		Convey("When the region has no events", func() {
			p := RegionDetail(events(), "Puno", model.Selection{})
			So(p, ShouldResemble, Popup{Name: "PUNO"})
		})
	})
}

func TestUpdate(t *testing.T) {
	Convey("Given a selection", t, func() {
		sel := model.Selection{Year: "2023"}

		Convey("When a control changes", func() {
			next, err := Update(sel, ControlRegion, " Lima ")
			So(err, ShouldBeNil)
			So(next, ShouldResemble, model.Selection{Year: "2023", Region: "Lima"})
			So(sel.Region, ShouldEqual, "")
		})

		Convey("When the all sentinel is chosen", func() {
			next, err := Update(sel, ControlYear, AllSentinel)
			So(err, ShouldBeNil)
			So(next.IsEmpty(), ShouldBeTrue)
		})

		Convey("When the control is unknown", func() {
			_, err := Update(sel, Control("month"), "Mayo")
			So(errors.Is(err, ErrUnknownControl), ShouldBeTrue)
		})
	})

	Convey("Given query values", t, func() {
		q := map[string]string{"year": "2024", "scope": "todos", "institution": "UNI"}
		sel := SelectionFrom(func(k string) string { return q[k] })
		So(sel, ShouldResemble, model.Selection{Year: "2024", Institution: "UNI"})
	})
}
