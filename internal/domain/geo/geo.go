// Package geo holds the region shapes drawn on the map.
//
// The core pipeline only needs each feature's name property as a join key.
// Polygon rings are kept so that events carrying coordinates but no region
// can be attributed to the shape containing them.
package geo

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/okian/stemmap/internal/domain/model"
)

// DefaultNameProperty is the feature property holding the region name in the
// national department boundaries file.
const DefaultNameProperty = "NOMBDEP"

var (
	// ErrMalformedShapes is returned when the payload is not a GeoJSON
	// FeatureCollection.
	ErrMalformedShapes = errors.New("geo: malformed feature collection")
	// ErrNoNameProperty is returned when no feature carries the name property.
	ErrNoNameProperty = errors.New("geo: name property missing from every feature")
)

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64
	Lon float64
}

// Polygon is a GeoJSON polygon: the first ring is the outer boundary, the
// rest are holes.
type Polygon struct {
	Rings [][]Point
	BBox  [4]float64 // minLon, minLat, maxLon, maxLat
}

// Shape is one map feature.
type Shape struct {
	Name  string // raw value of the name property
	Key   string // model.RegionKey(Name)
	Polys []Polygon
}

// Collection is a parsed FeatureCollection. Raw keeps the original document
// for the browser map layer.
type Collection struct {
	Property string
	Shapes   []Shape
	Raw      json.RawMessage
}

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Properties map[string]any `json:"properties"`
	Geometry   *geometry      `json:"geometry"`
}

type geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// Parse decodes a FeatureCollection whose region names live under property.
func Parse(data []byte, property string) (*Collection, error) {
	if property == "" {
		property = DefaultNameProperty
	}
	var fc featureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedShapes, err)
	}
	if !strings.EqualFold(fc.Type, "FeatureCollection") {
		return nil, fmt.Errorf("%w: type %q", ErrMalformedShapes, fc.Type)
	}

	c := &Collection{Property: property, Shapes: make([]Shape, 0, len(fc.Features)), Raw: json.RawMessage(data)}
	named := 0
	for _, f := range fc.Features {
		s := Shape{Name: propertyText(f.Properties[property])}
		s.Key = model.RegionKey(s.Name)
		if s.Key != "" {
			named++
		}
		if f.Geometry != nil {
			polys, err := decodeGeometry(f.Geometry)
			if err != nil {
				return nil, err
			}
			s.Polys = polys
		}
		c.Shapes = append(c.Shapes, s)
	}
	if len(fc.Features) > 0 && named == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoNameProperty, property)
	}
	return c, nil
}

// Locate returns the first shape containing the point.
func (c *Collection) Locate(lat, lon float64) (Shape, bool) {
	if c == nil {
		return Shape{}, false
	}
	pt := Point{Lat: lat, Lon: lon}
	for _, s := range c.Shapes {
		for _, p := range s.Polys {
			if inBBox(pt, p.BBox) && pointInPoly(pt, p) {
				return s, true
			}
		}
	}
	return Shape{}, false
}

// Keys lists the join keys of every named shape in document order.
func (c *Collection) Keys() []string {
	if c == nil {
		return nil
	}
	out := make([]string, 0, len(c.Shapes))
	for _, s := range c.Shapes {
		if s.Key != "" {
			out = append(out, s.Key)
		}
	}
	return out
}

func propertyText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

func decodeGeometry(g *geometry) ([]Polygon, error) {
	switch strings.ToLower(g.Type) {
	case "polygon":
		var rings [][][]float64
		if err := json.Unmarshal(g.Coordinates, &rings); err != nil {
			return nil, fmt.Errorf("%w: polygon: %v", ErrMalformedShapes, err)
		}
		return []Polygon{newPolygon(rings)}, nil
	case "multipolygon":
		var parts [][][][]float64
		if err := json.Unmarshal(g.Coordinates, &parts); err != nil {
			return nil, fmt.Errorf("%w: multipolygon: %v", ErrMalformedShapes, err)
		}
		out := make([]Polygon, 0, len(parts))
		for _, rings := range parts {
			out = append(out, newPolygon(rings))
		}
		return out, nil
	default:
		// Points and lines cannot contain anything.
		return nil, nil
	}
}

func newPolygon(rings [][][]float64) Polygon {
	var p Polygon
	for _, ring := range rings {
		pts := make([]Point, 0, len(ring))
		for _, xy := range ring {
			if len(xy) < 2 {
				continue
			}
			pts = append(pts, Point{Lon: xy[0], Lat: xy[1]})
		}
		p.Rings = append(p.Rings, pts)
	}
	p.BBox = computeBBox(p)
	return p
}

func computeBBox(p Polygon) [4]float64 {
	b := [4]float64{180, 90, -180, -90}
	for _, r := range p.Rings {
		for _, pt := range r {
			b[0] = min(b[0], pt.Lon)
			b[1] = min(b[1], pt.Lat)
			b[2] = max(b[2], pt.Lon)
			b[3] = max(b[3], pt.Lat)
		}
	}
	return b
}
