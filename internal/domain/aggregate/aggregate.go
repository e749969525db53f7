// Package aggregate groups filtered events by region and by year.
//
// All functions are pure: they never retain or mutate their input, and every
// result is rebuilt from the subset they are given.
package aggregate

import (
	"sort"

	"github.com/okian/stemmap/internal/domain/model"
)

// ByRegion groups subset by model.RegionKey. Events without a region are not
// grouped.
func ByRegion(subset []model.Event) map[string]model.RegionAggregate {
	out := make(map[string]model.RegionAggregate)
	for i := range subset {
		e := &subset[i]
		key := model.RegionKey(e.Region)
		if key == "" {
			continue
		}
		agg, ok := out[key]
		if !ok {
			agg = model.RegionAggregate{Key: key, Name: e.Region}
		}
		agg.Count++
		agg.Clubs += e.Clubs
		agg.Students += e.Students
		agg.Teachers += e.Teachers
		out[key] = agg
	}
	return out
}

// ByYear groups subset by year. Events without a year are not grouped.
func ByYear(subset []model.Event) map[string]model.YearAggregate {
	out := make(map[string]model.YearAggregate)
	for i := range subset {
		e := &subset[i]
		if e.Year == "" {
			continue
		}
		agg := out[e.Year]
		agg.Year = e.Year
		agg.Count++
		agg.Clubs += e.Clubs
		agg.Students += e.Students
		agg.Teachers += e.Teachers
		out[e.Year] = agg
	}
	return out
}

// SortedRegions orders region groups by count descending, then by name.
func SortedRegions(groups map[string]model.RegionAggregate) []model.RegionAggregate {
	out := make([]model.RegionAggregate, 0, len(groups))
	for _, g := range groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// SortedYears orders year groups chronologically.
func SortedYears(groups map[string]model.YearAggregate) []model.YearAggregate {
	out := make([]model.YearAggregate, 0, len(groups))
	for _, g := range groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// Summarize computes the KPI figures of subset.
func Summarize(subset []model.Event) model.Summary {
	var s model.Summary
	regions := make(map[string]struct{})
	for i := range subset {
		e := &subset[i]
		if key := model.RegionKey(e.Region); key != "" {
			regions[key] = struct{}{}
		}
		s.Attendees += e.Students
		s.Clubs += e.Clubs
		s.Teachers += e.Teachers
	}
	s.Total = len(subset)
	s.Coverage = len(regions)
	return s
}

// MaxCount returns the largest per-region count, or 0 for no groups.
func MaxCount(groups map[string]model.RegionAggregate) int {
	maxCount := 0
	for _, g := range groups {
		if g.Count > maxCount {
			maxCount = g.Count
		}
	}
	return maxCount
}

// Options lists the distinct non-empty selector values of records in
// first-seen order. Regions are deduplicated by key and keep their first
// spelling.
func Options(records []model.Event) model.FilterOptions {
	opts := model.FilterOptions{
		Years:        []string{},
		Regions:      []string{},
		Institutions: []string{},
		Scopes:       []string{},
	}
	seenYear := make(map[string]struct{})
	seenRegion := make(map[string]struct{})
	seenInst := make(map[string]struct{})
	seenScope := make(map[string]struct{})

	add := func(list *[]string, seen map[string]struct{}, key, value string) {
		if key == "" {
			return
		}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		*list = append(*list, value)
	}

	for i := range records {
		e := &records[i]
		add(&opts.Years, seenYear, e.Year, e.Year)
		add(&opts.Regions, seenRegion, model.RegionKey(e.Region), e.Region)
		add(&opts.Institutions, seenInst, e.Institution, e.Institution)
		add(&opts.Scopes, seenScope, e.Scope, e.Scope)
	}
	return opts
}
