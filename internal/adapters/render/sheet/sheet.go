// Package sheet exports a filtered event subset as an .xlsx workbook.
package sheet

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/okian/stemmap/internal/domain/aggregate"
	"github.com/okian/stemmap/internal/domain/model"
)

// Sheet names.
const (
	SheetEvents  = "Eventos"
	SheetRegions = "Regiones"
	SheetYears   = "Años"
)

// ContentType is the MIME type of the workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var (
	eventHeader = []any{
		"Nombre", "Ciudad", "Región", "UGEL", "Mes", "Año", "Institución", "Lugar",
		"Alcance", "Descripción", "Enlace", "Clubes", "Alumnos", "Docentes", "Modalidad",
	}
	regionHeader = []any{"Región", "Encuentros", "Clubes", "Alumnos", "Docentes"}
	yearHeader   = []any{"Año", "Encuentros", "Clubes", "Alumnos", "Docentes"}
)

// Write builds the workbook for subset and writes it to w. The events sheet
// uses the schema v1 column order so the file can be loaded back as an xlsx
// source.
func Write(w io.Writer, subset []model.Event) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetEvents); err != nil {
		return err
	}
	rows := make([][]any, 0, len(subset))
	for i := range subset {
		e := &subset[i]
		rows = append(rows, []any{
			e.Name, e.City, e.Region, e.AdminUnit, e.Month, e.Year, e.Institution, e.Venue,
			e.Scope, e.Description, e.Link, e.Clubs, e.Students, e.Teachers, e.Modality,
		})
	}
	if err := writeTable(f, SheetEvents, eventHeader, rows); err != nil {
		return err
	}

	regions := aggregate.SortedRegions(aggregate.ByRegion(subset))
	rows = rows[:0]
	for _, g := range regions {
		rows = append(rows, []any{g.Name, g.Count, g.Clubs, g.Students, g.Teachers})
	}
	if _, err := f.NewSheet(SheetRegions); err != nil {
		return err
	}
	if err := writeTable(f, SheetRegions, regionHeader, rows); err != nil {
		return err
	}

	years := aggregate.SortedYears(aggregate.ByYear(subset))
	rows = rows[:0]
	for _, g := range years {
		rows = append(rows, []any{g.Year, g.Count, g.Clubs, g.Students, g.Teachers})
	}
	if _, err := f.NewSheet(SheetYears); err != nil {
		return err
	}
	if err := writeTable(f, SheetYears, yearHeader, rows); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeTable(f *excelize.File, sheet string, header []any, rows [][]any) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	last, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", last, 18); err != nil {
		return err
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return err
		}
	}
	return nil
}
