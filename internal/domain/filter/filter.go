// Package filter selects the events matching a conjunctive selection.
package filter

import "github.com/okian/stemmap/internal/domain/model"

// Apply returns the events matching every non-empty field of sel, in input
// order. An empty selection returns records itself.
func Apply(records []model.Event, sel model.Selection) []model.Event {
	if sel.IsEmpty() || len(records) == 0 {
		return records
	}

	regionKey := model.RegionKey(sel.Region)
	out := make([]model.Event, 0, len(records))
	for i := range records {
		if matches(&records[i], sel, regionKey) {
			out = append(out, records[i])
		}
	}
	return out
}

// ForRegion returns the events whose region folds to the same key as name.
func ForRegion(records []model.Event, name string) []model.Event {
	return Apply(records, model.Selection{Region: name})
}

func matches(e *model.Event, sel model.Selection, regionKey string) bool {
	if sel.Year != "" && e.Year != sel.Year {
		return false
	}
	if regionKey != "" && model.RegionKey(e.Region) != regionKey {
		return false
	}
	if sel.Institution != "" && e.Institution != sel.Institution {
		return false
	}
	if sel.Scope != "" && e.Scope != sel.Scope {
		return false
	}
	return true
}
