package testevents

import "time"

// Config holds configuration for the dashboard check
type Config struct {
	BaseURL      string        // Base URL of the service
	NumEvents    int           // Number of events to generate
	Workers      int           // Number of concurrent workers
	Timeout      time.Duration // HTTP request timeout
	OutputFile   string        // Dataset file the service reads
	LogFile      string        // Log file for test output
	GenerateOnly bool          // Write the dataset and stop
	Verbose      bool          // Enable verbose logging
}

// Stats holds test statistics
type Stats struct {
	EventsGenerated   int
	SelectionsChecked int
	SelectionsFailed  int
	Mismatches        int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
