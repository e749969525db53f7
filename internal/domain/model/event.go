// Package model contains domain models passed between layers.
package model

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Event is one normalized community/STEM gathering. Records carry no identity
// and are never mutated after a load.
type Event struct {
	Name        string `json:"name"`
	City        string `json:"city"`
	Region      string `json:"region"`
	AdminUnit   string `json:"admin_unit"` // UGEL code
	Month       string `json:"month"`
	Year        string `json:"year"` // always the 4-char prefix, see normalize.YearPrefixWidth
	Institution string `json:"institution"`
	Venue       string `json:"venue"`
	Scope       string `json:"scope"` // reach: local, regional, national...
	Description string `json:"description"`
	Link        string `json:"link"`
	Clubs       int    `json:"clubs"`
	Students    int    `json:"students"`
	Teachers    int    `json:"teachers"`
	Modality    string `json:"modality"`

	// Coordinates are only supplied by the named JSON source shape.
	Latitude  *float64 `json:"lat,omitempty"`
	Longitude *float64 `json:"lng,omitempty"`
}

// HasLocation reports whether the event carries both coordinates.
func (e *Event) HasLocation() bool {
	return e.Latitude != nil && e.Longitude != nil
}

// Selection is the conjunctive set of active filters. An empty field means
// "no constraint".
type Selection struct {
	Year        string `json:"year,omitempty"`
	Region      string `json:"region,omitempty"`
	Institution string `json:"institution,omitempty"`
	Scope       string `json:"scope,omitempty"`
}

// IsEmpty reports whether no field constrains the result.
func (s Selection) IsEmpty() bool {
	return s.Year == "" && s.Region == "" && s.Institution == "" && s.Scope == ""
}

// RegionKey folds a region name into the join key shared by the filter
// engine, the aggregator and map features: trimmed, NFC, upper case.
func RegionKey(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	// Casers keep state; one per call keeps RegionKey safe for concurrent renders.
	return cases.Upper(language.Und).String(norm.NFC.String(name))
}
