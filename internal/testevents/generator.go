package testevents

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"github.com/okian/stemmap/internal/domain/model"
	"github.com/okian/stemmap/pkg/logger"
)

// Ranges for generated counts.
const (
	maxClubs    = 12
	maxStudents = 400
	maxTeachers = 30
	// One in blankRegionOdds events has no region, exercising the empty group.
	blankRegionOdds = 40
)

// randIndex returns a uniform index in [0, n) using crypto/rand.
func randIndex(n int) int {
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

func pick(values []string) string { return values[randIndex(len(values))] }

// generateEvents creates the specified number of events.
func generateEvents(ctx context.Context, config *Config, stats *Stats) ([]model.Event, error) {
	logger.Get().Info(ctx, "generating events", logger.Int("numEvents", config.NumEvents))

	if config.NumEvents <= 0 {
		return nil, fmt.Errorf("number of events must be positive")
	}
	events := make([]model.Event, config.NumEvents)

	type eventResult struct {
		index int
		event model.Event
		err   error
	}

	resultChan := make(chan eventResult, config.NumEvents)

	workerCount := max(1, min(config.Workers, config.NumEvents))
	eventsPerWorker := config.NumEvents / workerCount

	for worker := 0; worker < workerCount; worker++ {
		start := worker * eventsPerWorker
		end := start + eventsPerWorker
		if worker == workerCount-1 {
			end = config.NumEvents // Last worker gets remaining events
		}

		go func(start, end int) {
			for i := start; i < end; i++ {
				select {
				case <-ctx.Done():
					resultChan <- eventResult{index: i, err: ctx.Err()}
					return
				default:
					resultChan <- eventResult{index: i, event: generateSingleEvent(i)}
				}
			}
		}(start, end)
	}

	for i := 0; i < config.NumEvents; i++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled during event generation: %w", ctx.Err())
		case result := <-resultChan:
			if result.err != nil {
				return nil, fmt.Errorf("failed to generate event %d: %w", result.index, result.err)
			}
			events[result.index] = result.event
		}
	}

	stats.EventsGenerated = len(events)
	logger.Get().Info(ctx, "generated events successfully", logger.Int("count", len(events)))

	return events, nil
}

// generateSingleEvent creates one event with values drawn from the pools.
func generateSingleEvent(index int) model.Event {
	region := pick(regions)
	if randIndex(blankRegionOdds) == 0 {
		region = ""
	}
	id := uuid.New()

	return model.Event{
		Name:        fmt.Sprintf("%s STEM %d", pick(kinds), index+1),
		City:        region,
		Region:      region,
		Month:       pick(months),
		Year:        fmt.Sprint(years[randIndex(len(years))]),
		Institution: pick(institutions),
		Scope:       pick(scopes),
		Link:        "https://example.org/encuentros/" + id.String(),
		Clubs:       randIndex(maxClubs + 1),
		Students:    randIndex(maxStudents + 1),
		Teachers:    randIndex(maxTeachers + 1),
		Modality:    pick(modalities),
	}
}

// toRow lays e out in the positional schema the JSON source reads.
func toRow(e *model.Event) []any {
	return []any{
		e.Name, e.City, e.Region, e.AdminUnit, e.Month, e.Year,
		e.Institution, e.Venue, e.Scope, e.Description, e.Link,
		e.Clubs, e.Students, e.Teachers, e.Modality,
	}
}
