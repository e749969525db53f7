package model_test

import (
	"testing"

	model "github.com/okian/stemmap/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestRegionKey(t *testing.T) {
	convey.Convey("Given region names from the sheet and from map features", t, func() {
		convey.Convey("When the casing differs", func() {
			convey.Convey("Then both fold to the same key", func() {
				convey.So(model.RegionKey("Lima"), convey.ShouldEqual, "LIMA")
				convey.So(model.RegionKey("LIMA"), convey.ShouldEqual, model.RegionKey("lima"))
			})
		})

		convey.Convey("When the name carries accents", func() {
			convey.Convey("Then accents are kept and upper-cased", func() {
				convey.So(model.RegionKey("Junín"), convey.ShouldEqual, "JUNÍN")
				convey.So(model.RegionKey("apurímac"), convey.ShouldEqual, "APURÍMAC")
			})
		})

		convey.Convey("When the name is decomposed (NFD)", func() {
			decomposed := "Juni\u0301n"
			convey.Convey("Then it matches the composed spelling", func() {
				convey.So(model.RegionKey(decomposed), convey.ShouldEqual, model.RegionKey("Junín"))
			})
		})

		convey.Convey("When the name has surrounding spaces or is blank", func() {
			convey.Convey("Then spaces are trimmed and blank yields empty key", func() {
				convey.So(model.RegionKey("  Cusco "), convey.ShouldEqual, "CUSCO")
				convey.So(model.RegionKey("   "), convey.ShouldEqual, "")
				convey.So(model.RegionKey(""), convey.ShouldEqual, "")
			})
		})
	})
}

func TestSelection(t *testing.T) {
	convey.Convey("Given a selection", t, func() {
		convey.Convey("When no field is set", func() {
			convey.So(model.Selection{}.IsEmpty(), convey.ShouldBeTrue)
		})

		convey.Convey("When any single field is set", func() {
			convey.So(model.Selection{Year: "2023"}.IsEmpty(), convey.ShouldBeFalse)
			convey.So(model.Selection{Region: "Lima"}.IsEmpty(), convey.ShouldBeFalse)
			convey.So(model.Selection{Institution: "UNI"}.IsEmpty(), convey.ShouldBeFalse)
			convey.So(model.Selection{Scope: "Regional"}.IsEmpty(), convey.ShouldBeFalse)
		})
	})
}

func TestEventLocation(t *testing.T) {
	convey.Convey("Given events with and without coordinates", t, func() {
		lat, lng := -12.05, -77.04

		convey.So((&model.Event{}).HasLocation(), convey.ShouldBeFalse)
		convey.So((&model.Event{Latitude: &lat}).HasLocation(), convey.ShouldBeFalse)
		convey.So((&model.Event{Latitude: &lat, Longitude: &lng}).HasLocation(), convey.ShouldBeTrue)
	})
}
