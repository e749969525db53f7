// Package colorscale maps per-region counts to map feature styles.
package colorscale

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownScale is returned by Parse for an unrecognized scale name.
var ErrUnknownScale = errors.New("colorscale: unknown scale")

// Scale names accepted by Parse.
const (
	NameContinuous = "continuous"
	NameDiscrete   = "discrete"
)

// Style is the per-feature style handed to the map renderer. Field names
// follow the Leaflet path options.
type Style struct {
	FillColor   string  `json:"fillColor"`
	Weight      int     `json:"weight"`
	Color       string  `json:"color"`
	FillOpacity float64 `json:"fillOpacity"`
}

// NoData styles a region with no matching events.
var NoData = Style{FillColor: "transparent", Weight: 1, Color: "#999", FillOpacity: 0.3}

// Scale turns a region count and the current maximum into a Style.
// Implementations must be pure and must never divide by a zero max.
type Scale interface {
	Style(count, maxCount int) Style
}

// Continuous shades a single base color by count/max.
type Continuous struct{}

const (
	continuousBase    = "181,18,27"
	continuousStroke  = "#444"
	continuousOpacity = 0.8
)

func (Continuous) Style(count, maxCount int) Style {
	if count <= 0 || maxCount <= 0 {
		return NoData
	}
	intensity := float64(count) / float64(maxCount)
	if intensity > 1 {
		intensity = 1
	}
	return Style{
		FillColor:   "rgba(" + continuousBase + "," + strconv.FormatFloat(intensity, 'f', -1, 64) + ")",
		Weight:      1,
		Color:       continuousStroke,
		FillOpacity: continuousOpacity,
	}
}

// Discrete buckets absolute counts into five colors, darkest first.
type Discrete struct{}

var discreteSteps = []struct {
	above int
	color string
}{
	{15, "#800026"},
	{8, "#BD0026"},
	{4, "#E31A1C"},
	{1, "#FD8D3C"},
}

const discreteLowest = "#FED976"

func (Discrete) Style(count, maxCount int) Style {
	if count <= 0 || maxCount <= 0 {
		return NoData
	}
	color := discreteLowest
	for _, s := range discreteSteps {
		if count > s.above {
			color = s.color
			break
		}
	}
	return Style{FillColor: color, Weight: 1, Color: continuousStroke, FillOpacity: continuousOpacity}
}

// Parse returns the scale registered under name. Empty selects Continuous.
func Parse(name string) (Scale, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NameContinuous:
		return Continuous{}, nil
	case NameDiscrete:
		return Discrete{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScale, name)
	}
}
