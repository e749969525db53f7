package testevents

import (
	"context"
	"fmt"

	"github.com/okian/stemmap/internal/domain/aggregate"
	"github.com/okian/stemmap/internal/domain/colorscale"
	"github.com/okian/stemmap/internal/domain/dashboard"
	"github.com/okian/stemmap/internal/domain/filter"
	"github.com/okian/stemmap/internal/domain/model"
	"github.com/okian/stemmap/pkg/logger"
)

const topRegions = 10

// buildSelections lists the empty selection, every single-control selection
// and every year x region pair.
func buildSelections(events []model.Event) []model.Selection {
	opts := aggregate.Options(events)

	sels := []model.Selection{{}}
	for _, y := range opts.Years {
		sels = append(sels, model.Selection{Year: y})
	}
	for _, r := range opts.Regions {
		sels = append(sels, model.Selection{Region: r})
	}
	for _, i := range opts.Institutions {
		sels = append(sels, model.Selection{Institution: i})
	}
	for _, s := range opts.Scopes {
		sels = append(sels, model.Selection{Scope: s})
	}
	for _, y := range opts.Years {
		for _, r := range opts.Regions {
			sels = append(sels, model.Selection{Year: y, Region: r})
		}
	}
	return sels
}

// expectedView renders sel locally, without shapes.
func expectedView(events []model.Event, sel model.Selection) dashboard.View {
	return dashboard.Build(events, nil, sel, colorscale.Continuous{}, dashboard.Options{})
}

// verifyView checks the figures of remote against local. Remote may carry
// zero-count regions for map features and a capped list; neither is a
// mismatch.
func verifyView(local, remote dashboard.View) error {
	if local.Summary != remote.Summary {
		return fmt.Errorf("summary %+v, want %+v", remote.Summary, local.Summary)
	}
	if local.MaxCount != remote.MaxCount {
		return fmt.Errorf("max count %d, want %d", remote.MaxCount, local.MaxCount)
	}

	remoteCounts := make(map[string]int, len(remote.Regions))
	for _, r := range remote.Regions {
		if r.Count > 0 {
			remoteCounts[r.Key] = r.Count
		}
	}
	for _, r := range local.Regions {
		if r.Key == "" {
			continue // not drawable on the map
		}
		if remoteCounts[r.Key] != r.Count {
			return fmt.Errorf("region %s count %d, want %d", r.Key, remoteCounts[r.Key], r.Count)
		}
	}

	if !remote.Truncated && len(remote.List) != local.Summary.Total {
		return fmt.Errorf("list has %d items, want %d", len(remote.List), local.Summary.Total)
	}
	if !equalSeries(local.Charts.EncountersByYear, remote.Charts.EncountersByYear) ||
		!equalSeries(local.Charts.AttendeesByYear, remote.Charts.AttendeesByYear) ||
		!equalSeries(local.Charts.EncountersByRegion, remote.Charts.EncountersByRegion) {
		return fmt.Errorf("chart series differ")
	}
	return nil
}

func equalSeries(a, b dashboard.Series) bool {
	if a.Label != b.Label || len(a.Labels) != len(b.Labels) || len(a.Values) != len(b.Values) {
		return false
	}
	for i := range a.Labels {
		if a.Labels[i] != b.Labels[i] || a.Values[i] != b.Values[i] {
			return false
		}
	}
	return true
}

// displayTopRegions logs the regions with the most encounters.
func displayTopRegions(ctx context.Context, events []model.Event) {
	sorted := aggregate.SortedRegions(aggregate.ByRegion(filter.Apply(events, model.Selection{})))
	n := min(topRegions, len(sorted))

	for i := 0; i < n; i++ {
		r := sorted[i]
		logger.Get().Info(ctx, "top region",
			logger.Int("rank", i+1),
			logger.String("region", r.Name),
			logger.Int("encounters", r.Count),
			logger.Int("attendees", r.Students))
	}
}
