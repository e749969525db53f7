package aggregate

import (
	"testing"

	"github.com/okian/stemmap/internal/domain/filter"
	"github.com/okian/stemmap/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func scenario() []model.Event {
	return []model.Event{
		{Region: "Lima", Year: "2023", Students: 10},
		{Region: "Cusco", Year: "2023", Students: 5},
		{Region: "Lima", Year: "2024", Students: 7},
	}
}

func TestScenario(t *testing.T) {
	Convey("Given three events across two regions and two years", t, func() {
		events := scenario()

		Convey("When filtered to 2023 and grouped by region", func() {
			subset := filter.Apply(events, model.Selection{Year: "2023"})
			groups := ByRegion(subset)

			Convey("Then each region holds one event with its students", func() {
				So(len(subset), ShouldEqual, 2)
				So(len(groups), ShouldEqual, 2)
				So(groups["LIMA"].Count, ShouldEqual, 1)
				So(groups["LIMA"].Students, ShouldEqual, 10)
				So(groups["LIMA"].Name, ShouldEqual, "Lima")
				So(groups["CUSCO"].Count, ShouldEqual, 1)
				So(groups["CUSCO"].Students, ShouldEqual, 5)
			})
		})

		Convey("When the unfiltered set is grouped by year", func() {
			groups := ByYear(events)

			Convey("Then years carry their counts and student sums", func() {
				So(groups, ShouldResemble, map[string]model.YearAggregate{
					"2023": {Year: "2023", Count: 2, Students: 15},
					"2024": {Year: "2024", Count: 1, Students: 7},
				})
			})
		})
	})
}

func TestTotalsConsistency(t *testing.T) {
	Convey("Given regioned events with mixed-case region names", t, func() {
		events := append(scenario(),
			model.Event{Region: "LIMA", Year: "2023", Students: 3},
			model.Event{Region: "cusco", Year: "2024", Students: 1},
		)
		selections := []model.Selection{
			{},
			{Year: "2023"},
			{Year: "2024"},
			{Region: "lima"},
			{Region: "Cusco", Year: "2024"},
			{Region: "Puno"},
		}

		for _, sel := range selections {
			subset := filter.Apply(events, sel)

			Convey("When grouping the subset for "+sel.Year+"/"+sel.Region, func() {
				byRegion := ByRegion(subset)
				byYear := ByYear(subset)

				Convey("Then group counts and student sums add up to the subset", func() {
					count, students := 0, 0
					for _, g := range byRegion {
						count += g.Count
						students += g.Students
					}
					So(count, ShouldEqual, len(subset))
					So(students, ShouldEqual, Summarize(subset).Attendees)

					count = 0
					for _, g := range byYear {
						count += g.Count
					}
					So(count, ShouldEqual, len(subset))
				})
			})
		}
	})
}

func TestByRegion(t *testing.T) {
	Convey("Given events with mixed region spellings and blanks", t, func() {
		events := []model.Event{
			{Region: "lima", Clubs: 1, Students: 2, Teachers: 3},
			{Region: "LIMA", Clubs: 1, Students: 2, Teachers: 3},
			{Region: "", Students: 100},
			{Region: "  "},
		}
		groups := ByRegion(events)

		Convey("Then spellings fold together and blanks are skipped", func() {
			So(len(groups), ShouldEqual, 1)
			So(groups["LIMA"], ShouldResemble, model.RegionAggregate{
				Key: "LIMA", Name: "lima", Count: 2, Clubs: 2, Students: 4, Teachers: 6,
			})
		})

		Convey("Then every group has a positive count", func() {
			for _, g := range groups {
				So(g.Count, ShouldBeGreaterThan, 0)
			}
		})
	})

	Convey("Given no events", t, func() {
		So(ByRegion(nil), ShouldBeEmpty)
		So(ByYear(nil), ShouldBeEmpty)
		So(MaxCount(ByRegion(nil)), ShouldEqual, 0)
	})
}

func TestSorted(t *testing.T) {
	Convey("Given grouped regions and years", t, func() {
		events := []model.Event{
			{Region: "Puno", Year: "2024"},
			{Region: "Cusco", Year: "2022"},
			{Region: "Lima", Year: "2023"},
			{Region: "Lima", Year: "2023"},
			{Region: "Arequipa", Year: "2022"},
		}

		Convey("Then regions sort by count then name", func() {
			got := SortedRegions(ByRegion(events))
			keys := make([]string, len(got))
			for i, g := range got {
				keys[i] = g.Key
			}
			So(keys, ShouldResemble, []string{"LIMA", "AREQUIPA", "CUSCO", "PUNO"})
		})

		Convey("Then years sort chronologically", func() {
			got := SortedYears(ByYear(events))
			So(len(got), ShouldEqual, 3)
			So(got[0].Year, ShouldEqual, "2022")
			So(got[0].Count, ShouldEqual, 2)
			So(got[2].Year, ShouldEqual, "2024")
		})

		Convey("Then the max region count is found", func() {
			So(MaxCount(ByRegion(events)), ShouldEqual, 2)
		})
	})
}

func TestSummarize(t *testing.T) {
	Convey("Given a subset", t, func() {
		s := Summarize([]model.Event{
			{Region: "Lima", Students: 10, Clubs: 1, Teachers: 2},
			{Region: "lima", Students: 5},
			{Region: "Cusco", Students: 1},
			{Region: "", Students: 4},
		})

		Convey("Then coverage counts distinct regions and totals include all events", func() {
			So(s, ShouldResemble, model.Summary{Coverage: 2, Total: 4, Attendees: 20, Clubs: 1, Teachers: 2})
		})
	})

	Convey("Given an empty subset", t, func() {
		So(Summarize(nil), ShouldResemble, model.Summary{})
	})
}

func TestOptions(t *testing.T) {
	Convey("Given the full record set", t, func() {
		opts := Options([]model.Event{
			{Year: "2024", Region: "Lima", Institution: "UNI", Scope: "Local"},
			{Year: "2023", Region: "LIMA", Institution: "", Scope: "Regional"},
			{Year: "2024", Region: "Cusco", Institution: "UNI", Scope: "Local"},
		})

		Convey("Then distinct values keep first-seen order", func() {
			So(opts.Years, ShouldResemble, []string{"2024", "2023"})
			So(opts.Regions, ShouldResemble, []string{"Lima", "Cusco"})
			So(opts.Institutions, ShouldResemble, []string{"UNI"})
			So(opts.Scopes, ShouldResemble, []string{"Local", "Regional"})
		})
	})

	Convey("Given no records", t, func() {
		opts := Options(nil)
		So(opts.Years, ShouldNotBeNil)
		So(opts.Years, ShouldBeEmpty)
		So(opts.Regions, ShouldBeEmpty)
	})
}
