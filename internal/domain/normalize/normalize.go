package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/okian/stemmap/internal/domain/model"
)

// Cell is one raw value as decoded from a source: nil, string, []byte,
// float64, int64, bool, json.Number or time.Time.
type Cell = any

// Row converts one positional row (schema v1) into an Event. Missing trailing
// cells are treated as absent.
func Row(cells []Cell) model.Event {
	at := func(i int) Cell {
		if i < len(cells) {
			return cells[i]
		}
		return nil
	}

	return model.Event{
		Name:        Text(at(ColName)),
		City:        Text(at(ColCity)),
		Region:      Text(at(ColRegion)),
		AdminUnit:   Text(at(ColAdminUnit)),
		Month:       Text(at(ColMonth)),
		Year:        Year(at(ColYear)),
		Institution: Text(at(ColInstitution)),
		Venue:       Text(at(ColVenue)),
		Scope:       Text(at(ColScope)),
		Description: Text(at(ColDescription)),
		Link:        Text(at(ColLink)),
		Clubs:       Count(at(ColClubs)),
		Students:    Count(at(ColStudents)),
		Teachers:    Count(at(ColTeachers)),
		Modality:    Text(at(ColModality)),
	}
}

// Strings converts a spreadsheet row of cell texts into an Event.
func Strings(cells []string) model.Event {
	row := make([]Cell, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	return Row(row)
}

// Text renders a cell as trimmed text. Absent cells become "".
func Text(c Cell) string {
	switch v := c.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case []byte:
		return strings.TrimSpace(string(v))
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return Text(float64(v))
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return v.Format(time.DateOnly)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// Count coerces a cell into a non-NaN integer count. Absent, non-numeric and
// non-finite values yield 0; fractions are truncated toward zero.
func Count(c Cell) int {
	switch v := c.(type) {
	case nil:
		return 0
	case float64:
		return finite(v)
	case float32:
		return finite(float64(v))
	case int:
		return v
	case int64:
		return int(v)
	case int32:
		return int(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0
		}
		return finite(f)
	case string:
		return parseCount(v)
	case []byte:
		return parseCount(string(v))
	case bool:
		if v {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// Float coerces a cell into a finite float, or nil when that is impossible.
func Float(c Cell) *float64 {
	var f float64
	switch v := c.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		p, err := v.Float64()
		if err != nil {
			return nil
		}
		f = p
	case string:
		p, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil
		}
		f = p
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// Year extracts the YearPrefixWidth-character year from a bare year, a date
// string, a gviz date literal or a time value.
func Year(c Cell) string {
	s := Text(c)
	s = strings.TrimPrefix(s, gvizDatePrefix)
	return prefix(s, YearPrefixWidth)
}

func parseCount(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return finite(f)
}

func finite(f float64) int {
	switch {
	case math.IsNaN(f), math.IsInf(f, 0):
		return 0
	case f >= math.MaxInt32:
		return math.MaxInt32
	case f <= math.MinInt32:
		return math.MinInt32
	}
	return int(f)
}

func prefix(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width])
}
