// Package normalize turns raw source rows into model.Event records.
//
// Every source shape (gviz cells, spreadsheet string rows, SQL rows, named
// JSON objects) goes through one of the adapters in this package; nothing
// downstream ever branches on which shape was loaded.
package normalize

// SchemaVersion identifies the canonical positional layout below.
const SchemaVersion = "v1"

// Canonical column positions, schema v1.
const (
	ColName = iota
	ColCity
	ColRegion
	ColAdminUnit
	ColMonth
	ColYear
	ColInstitution
	ColVenue
	ColScope
	ColDescription
	ColLink
	ColClubs
	ColStudents
	ColTeachers
	ColModality

	// ColumnCount is the number of positions in schema v1.
	ColumnCount
)

// YearPrefixWidth is the number of leading characters of the year cell kept
// as the year. Sources either carry a bare year ("2023") or a full date
// ("2023-05-14"); both reduce to the same 4-character key.
const YearPrefixWidth = 4

// gvizDatePrefix marks the date literal emitted by the Google visualization
// endpoint for date cells, e.g. "Date(2023,4,14)".
const gvizDatePrefix = "Date("

// ColumnNames lists the schema v1 column names in position order. Used for
// SQL projections and spreadsheet headers.
var ColumnNames = [ColumnCount]string{
	"name",
	"city",
	"region",
	"admin_unit",
	"month",
	"year",
	"institution",
	"venue",
	"scope",
	"description",
	"link",
	"clubs",
	"students",
	"teachers",
	"modality",
}
