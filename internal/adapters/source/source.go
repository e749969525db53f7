// Package source loads the event dataset and the region shapes.
//
// Byte-oriented backends (HTTP, file, S3) implement Fetcher and are paired
// with a Decoder for the payload shape; the SQL backend reads rows directly.
// Everything ends up as []model.Event through the normalize package.
package source

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/stemmap/internal/domain/geo"
	"github.com/okian/stemmap/internal/domain/model"
	"github.com/okian/stemmap/pkg/metrics"
)

// EventSource produces the full event dataset.
type EventSource interface {
	Name() string
	Events(ctx context.Context) ([]model.Event, error)
}

// ShapeSource produces the region shapes.
type ShapeSource interface {
	Shapes(ctx context.Context) (*geo.Collection, error)
}

// Fetcher retrieves a raw payload.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) ([]byte, error)
}

// Decoder turns a raw payload into events.
type Decoder func(payload []byte) ([]model.Event, error)

// PayloadSource pairs a Fetcher with a Decoder.
type PayloadSource struct {
	fetcher Fetcher
	decode  Decoder
	kind    string
}

// NewPayloadSource returns an EventSource reading fetcher's payload as kind.
func NewPayloadSource(kind string, fetcher Fetcher, decode Decoder) *PayloadSource {
	return &PayloadSource{fetcher: fetcher, decode: decode, kind: kind}
}

func (s *PayloadSource) Name() string {
	return s.kind + ":" + s.fetcher.Name()
}

// Events fetches and decodes the payload.
func (s *PayloadSource) Events(ctx context.Context) ([]model.Event, error) {
	start := time.Now()
	payload, err := s.fetcher.Fetch(ctx)
	metrics.RecordSourceFetch(s.kind, float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordSourceFetchError(s.kind, "fetch")
		return nil, err
	}
	events, err := s.decode(payload)
	if err != nil {
		metrics.RecordSourceFetchError(s.kind, "malformed")
		return nil, fmt.Errorf("%s: %w", s.Name(), err)
	}
	return events, nil
}

// GeoJSONSource reads a FeatureCollection through a Fetcher.
type GeoJSONSource struct {
	fetcher  Fetcher
	property string
}

// NewGeoJSONSource returns a ShapeSource naming regions by property.
func NewGeoJSONSource(fetcher Fetcher, property string) *GeoJSONSource {
	return &GeoJSONSource{fetcher: fetcher, property: property}
}

// Shapes fetches and parses the collection.
func (s *GeoJSONSource) Shapes(ctx context.Context) (*geo.Collection, error) {
	start := time.Now()
	payload, err := s.fetcher.Fetch(ctx)
	metrics.RecordSourceFetch("geojson", float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordSourceFetchError("geojson", "fetch")
		return nil, err
	}
	c, err := geo.Parse(payload, s.property)
	if err != nil {
		metrics.RecordSourceFetchError("geojson", "malformed")
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedPayload, s.fetcher.Name(), err)
	}
	return c, nil
}
