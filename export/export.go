// Package export writes dashboard reports as an Excel workbook or as CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/spektr-org/solutions/engine"
)

// Sheet names of the workbook, in order.
const (
	SheetRawData  = "Raw Data"
	SheetRegional = "Regional Summary"
	SheetProgress = "Pathway Progress"
	SheetTrends   = "Monthly Trends"
	SheetKPIs     = "KPIs"
)

// Sheets lists the workbook sheets in order.
var Sheets = []string{SheetRawData, SheetRegional, SheetProgress, SheetTrends, SheetKPIs}

// Workbook writes records and the reports of d as an xlsx file. records
// should be the view d was computed from.
func Workbook(w io.Writer, records engine.RecordView, d *engine.Dashboard) error {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"2C3E50"}},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	tables := []*engine.TableData{
		engine.RecordsTable(records),
		engine.RegionalTable(d.Regions),
		engine.ProgressTable(d.Progress),
		engine.TrendTable(d.Trend, d.TrendLabel),
		engine.KPITable(d.KPIs),
	}
	for i, sheet := range Sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("sheet %s: %w", sheet, err)
		}
		if err := writeSheet(f, sheet, tables[i], header); err != nil {
			return fmt.Errorf("sheet %s: %w", sheet, err)
		}
	}
	f.SetActiveSheet(0)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, t *engine.TableData, headerStyle int) error {
	head := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		head[i] = c.Label
	}
	if err := f.SetSheetRow(sheet, "A1", &head); err != nil {
		return err
	}
	if len(t.Columns) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(t.Columns), 1)
		if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
			return err
		}
	}

	for r, row := range t.Rows {
		values := make([]any, len(row))
		for i, cell := range row {
			values[i] = typedCell(t.Columns[i], cell)
		}
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	return nil
}

// typedCell stores numeric columns as numbers so spreadsheets can sum them.
func typedCell(c engine.Column, s string) any {
	if c.Type == "text" || s == "" {
		return s
	}
	if v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64); err == nil {
		return v
	}
	return s
}

// CSV writes a report table with its header row.
func CSV(w io.Writer, t *engine.TableData) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header()); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
