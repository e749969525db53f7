// Package dashboard builds the view model rendered by the page: KPIs, map
// feature styles, chart series, the event list and the selector options.
//
// Build filters the snapshot once, groups once and then styles every map
// feature through a map lookup, so a render costs O(events + features).
package dashboard

import (
	"github.com/okian/stemmap/internal/domain/aggregate"
	"github.com/okian/stemmap/internal/domain/colorscale"
	"github.com/okian/stemmap/internal/domain/filter"
	"github.com/okian/stemmap/internal/domain/geo"
	"github.com/okian/stemmap/internal/domain/model"
)

// Chart labels, as shown on the page.
const (
	LabelEncountersByYear   = "Encuentros por año"
	LabelAttendeesByYear    = "Asistentes por año"
	LabelEncountersByRegion = "Encuentros por región"
)

// Series is one labelled numeric series for a chart widget.
type Series struct {
	Label  string   `json:"label"`
	Labels []string `json:"labels"`
	Values []int    `json:"values"`
}

// Charts groups the three dashboard charts.
type Charts struct {
	EncountersByYear   Series `json:"encounters_by_year"`
	AttendeesByYear    Series `json:"attendees_by_year"`
	EncountersByRegion Series `json:"encounters_by_region"`
}

// RegionStyle is the style and popup figures of one map feature.
type RegionStyle struct {
	Key       string           `json:"key"`
	Name      string           `json:"name"`
	Count     int              `json:"count"`
	Attendees int              `json:"attendees"`
	Style     colorscale.Style `json:"style"`
}

// ListItem mirrors one entry of the side list.
type ListItem struct {
	Name      string `json:"name"`
	Region    string `json:"region"`
	Month     string `json:"month"`
	Year      string `json:"year"`
	Attendees int    `json:"attendees"`
	Link      string `json:"link,omitempty"`
}

// View is the complete render output for one selection.
type View struct {
	Selection model.Selection     `json:"selection"`
	Summary   model.Summary       `json:"summary"`
	MaxCount  int                 `json:"max_count"`
	Regions   []RegionStyle       `json:"regions"`
	Charts    Charts              `json:"charts"`
	List      []ListItem          `json:"list"`
	Truncated bool                `json:"truncated"`
	Options   model.FilterOptions `json:"options"`
}

// Popup is the content of a map feature popup.
type Popup struct {
	Name       string `json:"name"`
	Encounters int    `json:"encounters"`
	Attendees  int    `json:"attendees"`
}

// Options tune Build.
type Options struct {
	// MaxListItems caps the list; 0 means unlimited.
	MaxListItems int
}

// Build renders events under sel. When shapes is non-nil every feature gets
// a style, including regions without events; otherwise only regions present
// in the data are styled.
func Build(events []model.Event, shapes *geo.Collection, sel model.Selection, scale colorscale.Scale, opts Options) View {
	if scale == nil {
		scale = colorscale.Continuous{}
	}

	subset := filter.Apply(events, sel)
	byRegion := aggregate.ByRegion(subset)
	byYear := aggregate.ByYear(subset)
	maxCount := aggregate.MaxCount(byRegion)

	v := View{
		Selection: sel,
		Summary:   aggregate.Summarize(subset),
		MaxCount:  maxCount,
		Regions:   styleRegions(byRegion, shapes, scale, maxCount),
		Charts:    buildCharts(byYear, byRegion),
		Options:   aggregate.Options(events),
	}
	v.List, v.Truncated = buildList(subset, opts.MaxListItems)
	return v
}

// RegionDetail returns the popup of the feature named name under sel.
func RegionDetail(events []model.Event, name string, sel model.Selection) Popup {
	subset := filter.ForRegion(filter.Apply(events, sel), name)
	p := Popup{Name: model.RegionKey(name), Encounters: len(subset)}
	for i := range subset {
		p.Attendees += subset[i].Students
	}
	return p
}

func styleRegions(byRegion map[string]model.RegionAggregate, shapes *geo.Collection, scale colorscale.Scale, maxCount int) []RegionStyle {
	if shapes == nil {
		sorted := aggregate.SortedRegions(byRegion)
		out := make([]RegionStyle, 0, len(sorted))
		for _, g := range sorted {
			out = append(out, regionStyle(g.Key, g.Name, g, scale, maxCount))
		}
		return out
	}

	out := make([]RegionStyle, 0, len(shapes.Shapes))
	for _, s := range shapes.Shapes {
		if s.Key == "" {
			continue
		}
		out = append(out, regionStyle(s.Key, s.Name, byRegion[s.Key], scale, maxCount))
	}
	return out
}

func regionStyle(key, name string, g model.RegionAggregate, scale colorscale.Scale, maxCount int) RegionStyle {
	return RegionStyle{
		Key:       key,
		Name:      name,
		Count:     g.Count,
		Attendees: g.Students,
		Style:     scale.Style(g.Count, maxCount),
	}
}

func buildCharts(byYear map[string]model.YearAggregate, byRegion map[string]model.RegionAggregate) Charts {
	years := aggregate.SortedYears(byYear)
	regions := aggregate.SortedRegions(byRegion)

	c := Charts{
		EncountersByYear:   newSeries(LabelEncountersByYear, len(years)),
		AttendeesByYear:    newSeries(LabelAttendeesByYear, len(years)),
		EncountersByRegion: newSeries(LabelEncountersByRegion, len(regions)),
	}
	for _, y := range years {
		c.EncountersByYear.Labels = append(c.EncountersByYear.Labels, y.Year)
		c.EncountersByYear.Values = append(c.EncountersByYear.Values, y.Count)
		c.AttendeesByYear.Labels = append(c.AttendeesByYear.Labels, y.Year)
		c.AttendeesByYear.Values = append(c.AttendeesByYear.Values, y.Students)
	}
	for _, r := range regions {
		c.EncountersByRegion.Labels = append(c.EncountersByRegion.Labels, r.Name)
		c.EncountersByRegion.Values = append(c.EncountersByRegion.Values, r.Count)
	}
	return c
}

func newSeries(label string, n int) Series {
	return Series{Label: label, Labels: make([]string, 0, n), Values: make([]int, 0, n)}
}

func buildList(subset []model.Event, limit int) ([]ListItem, bool) {
	n := len(subset)
	truncated := false
	if limit > 0 && n > limit {
		n, truncated = limit, true
	}
	out := make([]ListItem, 0, n)
	for i := range subset[:n] {
		e := &subset[i]
		out = append(out, ListItem{
			Name:      e.Name,
			Region:    e.Region,
			Month:     e.Month,
			Year:      e.Year,
			Attendees: e.Students,
			Link:      e.Link,
		})
	}
	return out, truncated
}
