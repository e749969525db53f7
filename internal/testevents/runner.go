package testevents

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/stemmap/internal/domain/model"
	"github.com/okian/stemmap/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0640
)

// Run executes the complete dashboard check.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting stemmap dashboard check",
		logger.String("baseURL", config.BaseURL),
		logger.Int("events", config.NumEvents),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.String("output", config.OutputFile),
		logger.Bool("generateOnly", config.GenerateOnly))

	// Step 1: Generate events and write the dataset
	events, err := generateEvents(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("event generation failed: %w", err)
	}
	if err := saveEventsToFile(ctx, config, events); err != nil {
		return fmt.Errorf("saving dataset failed: %w", err)
	}
	displayTopRegions(ctx, events)
	if config.GenerateOnly {
		return nil
	}

	client := newHTTPClient(config.BaseURL, config.Timeout)

	// Step 2: Check service health
	if err := checkServiceHealth(ctx, client); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 3: Ask the service to pick up the dataset
	if err := client.requestReload(ctx); err != nil {
		return fmt.Errorf("reload request failed: %w", err)
	}
	if err := waitForDataset(ctx, client, len(events)); err != nil {
		return fmt.Errorf("dataset not loaded: %w", err)
	}

	// Step 4: Compare rendered views against local aggregation
	checkErr := checkSelections(ctx, config, events, buildSelections(events), stats)

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	if checkErr != nil {
		return fmt.Errorf("result verification failed: %w", checkErr)
	}
	logger.Get().Info(ctx, "check completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient) error {
	logger.Get().Info(ctx, "checking service health")

	var health struct {
		Status string `json:"status"`
	}
	if err := client.do(ctx, "GET", "/healthz", StatusOK, &health); err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}

	logger.Get().Info(ctx, "service is live", logger.String("status", health.Status))
	return nil
}

// waitForDataset polls until the published snapshot holds want events.
func waitForDataset(ctx context.Context, client *HTTPClient, want int) error {
	ctx, cancel := context.WithTimeout(ctx, ReloadWaitTimeout)
	defer cancel()

	ticker := time.NewTicker(ReloadPollInterval)
	defer ticker.Stop()

	for {
		got, err := client.loadedEvents(ctx)
		if err == nil && got == want {
			logger.Get().Info(ctx, "dataset loaded", logger.Int("events", got))
			return nil
		}
		select {
		case <-ctx.Done():
			if err != nil {
				return fmt.Errorf("%w: last error: %v", ctx.Err(), err)
			}
			return fmt.Errorf("%w: service holds %d events, want %d", ctx.Err(), got, want)
		case <-ticker.C:
		}
	}
}

// saveEventsToFile writes events as a JSON array of positional rows.
func saveEventsToFile(ctx context.Context, config *Config, events []model.Event) error {
	if len(events) == 0 {
		return fmt.Errorf("no events to save")
	}

	filename := config.OutputFile
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = "generated_events_" + timestamp + ".json"
		config.OutputFile = filename
	}

	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	rows := make([][]any, len(events))
	for i := range events {
		rows[i] = toRow(&events[i])
	}
	data, err := json.MarshalIndent(rows, "", " ")
	if err != nil {
		return fmt.Errorf("failed to marshal events: %w", err)
	}

	// Write then rename so a reloading service never reads a partial file.
	tmp := filename + ".tmp"
	if err := os.WriteFile(tmp, data, filePermission); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp, filename); err != nil {
		return fmt.Errorf("failed to rename file: %w", err)
	}

	logger.Get().Info(ctx, "events saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats prints the final test statistics.
func displayFinalStats(stats *Stats) {
	var successRate, selectionsPerSecond float64

	if stats.SelectionsChecked > 0 {
		ok := stats.SelectionsChecked - stats.SelectionsFailed - stats.Mismatches
		successRate = float64(ok) / float64(stats.SelectionsChecked) * PercentageMultiplier
	}

	if stats.Duration > 0 {
		selectionsPerSecond = float64(stats.SelectionsChecked) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("eventsGenerated", stats.EventsGenerated),
		logger.Int("selectionsChecked", stats.SelectionsChecked),
		logger.Int("selectionsFailed", stats.SelectionsFailed),
		logger.Int("mismatches", stats.Mismatches),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("selectionsPerSecond", selectionsPerSecond))
}
