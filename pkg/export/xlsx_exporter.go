package export

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/deptsched/timetable-api/internal/domain"
	"github.com/deptsched/timetable-api/internal/view"
)

// XLSXExporter renders the combined per-class timetable grids into a
// multi-sheet workbook, one sheet per class.
type XLSXExporter struct{}

// NewXLSXExporter builds an xlsx exporter.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// RenderClassGrids builds a workbook with one sheet per class, laying out
// days across columns and slots down rows.
func (e *XLSXExporter) RenderClassGrids(tm *domain.TimeModel, assignments domain.AssignmentSet) ([]byte, error) {
	grids := view.ClassGrids(tm, assignments)
	if len(grids) == 0 {
		return nil, fmt.Errorf("no class grids to export")
	}

	classes := make([]string, 0, len(grids))
	for c := range grids {
		classes = append(classes, string(c))
	}
	sort.Strings(classes)

	f := excelize.NewFile()
	defer f.Close()

	for i, className := range classes {
		sheet := className
		if i == 0 {
			f.SetSheetName("Sheet1", sheet)
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return nil, fmt.Errorf("create sheet %s: %w", sheet, err)
			}
		}
		if err := writeGridSheet(f, sheet, tm, grids[domain.Class(className)]); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeGridSheet(f *excelize.File, sheet string, tm *domain.TimeModel, g *view.Grid) error {
	if err := f.SetCellValue(sheet, "A1", "Slot"); err != nil {
		return err
	}
	for col, day := range domain.Days {
		cellRef, err := excelize.CoordinatesToCellName(col+2, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cellRef, string(day)); err != nil {
			return err
		}
	}

	for row, slot := range tm.AllSlots() {
		labelRef, err := excelize.CoordinatesToCellName(1, row+2)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, labelRef, string(slot)); err != nil {
			return err
		}
		for col, day := range domain.Days {
			cellRef, err := excelize.CoordinatesToCellName(col+2, row+2)
			if err != nil {
				return err
			}
			cell := g.Rows[day][slot]
			if err := f.SetCellValue(sheet, cellRef, renderCell(cell)); err != nil {
				return err
			}
		}
	}
	return nil
}

func renderCell(c view.Cell) string {
	switch c.Kind {
	case view.CellBreak:
		return "Break"
	case view.CellLecture:
		return fmt.Sprintf("%s\n%s (%s)", c.Subject, c.Teacher, c.Room)
	case view.CellLab:
		if c.Continued {
			return fmt.Sprintf("%s (cont.)\n%s / %s (%s)", c.Subject, c.Batch, c.Teacher, c.Room)
		}
		return fmt.Sprintf("%s\n%s / %s (%s)", c.Subject, c.Batch, c.Teacher, c.Room)
	default:
		return ""
	}
}
