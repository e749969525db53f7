package normalize

import (
	"strings"

	"github.com/okian/stemmap/internal/domain/model"
)

// Field aliases accepted by Named. The static JSON files use the Spanish
// field names; English names are accepted for hand-written fixtures.
var namedAliases = map[string][]string{
	"name":        {"nombre", "name"},
	"city":        {"ciudad", "city"},
	"region":      {"region", "región", "departamento"},
	"admin_unit":  {"ugel", "admin_unit"},
	"month":       {"mes", "month"},
	"year":        {"anio", "año", "year"},
	"date":        {"fecha", "date"},
	"institution": {"institucion", "institución", "institution"},
	"venue":       {"lugar", "venue"},
	"scope":       {"alcance", "scope"},
	"description": {"descripcion", "descripción", "description"},
	"link":        {"enlace", "link", "url"},
	"clubs":       {"clubes", "clubs"},
	"students":    {"alumnos", "estudiantes", "students"},
	"teachers":    {"docentes", "teachers"},
	"modality":    {"modalidad", "modality"},
	"lat":         {"lat", "latitud", "latitude"},
	"lng":         {"lng", "lon", "longitud", "longitude"},
}

// Named converts one named JSON object (the date-combined source shape) into
// an Event. A "fecha" date supplies Year (and Month when no month field is
// present); lat/lng are kept for region inference.
func Named(obj map[string]any) model.Event {
	lookup := make(map[string]any, len(obj))
	for k, v := range obj {
		lookup[strings.ToLower(strings.TrimSpace(k))] = v
	}
	get := func(field string) Cell {
		for _, alias := range namedAliases[field] {
			if v, ok := lookup[alias]; ok {
				return v
			}
		}
		return nil
	}

	e := model.Event{
		Name:        Text(get("name")),
		City:        Text(get("city")),
		Region:      Text(get("region")),
		AdminUnit:   Text(get("admin_unit")),
		Month:       Text(get("month")),
		Year:        Year(get("year")),
		Institution: Text(get("institution")),
		Venue:       Text(get("venue")),
		Scope:       Text(get("scope")),
		Description: Text(get("description")),
		Link:        Text(get("link")),
		Clubs:       Count(get("clubs")),
		Students:    Count(get("students")),
		Teachers:    Count(get("teachers")),
		Modality:    Text(get("modality")),
		Latitude:    Float(get("lat")),
		Longitude:   Float(get("lng")),
	}

	if date := Text(get("date")); date != "" {
		if e.Year == "" {
			e.Year = Year(date)
		}
		if e.Month == "" {
			e.Month = monthOf(date)
		}
	}
	return e
}

// monthOf returns the MM part of an ISO-like "YYYY-MM..." date, or "".
func monthOf(date string) string {
	const monthStart, monthEnd = YearPrefixWidth + 1, YearPrefixWidth + 3
	if len(date) < monthEnd || date[YearPrefixWidth] != '-' {
		return ""
	}
	return date[monthStart:monthEnd]
}
