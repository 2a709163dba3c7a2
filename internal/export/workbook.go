// Package export renders a solved trace as an XLSX workbook with a summary
// sheet, the final DP table, and one row per recorded step.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/eugenenazirov/knapsack-trace/internal/knapsack"
)

const (
	SheetSummary = "Summary"
	SheetTable   = "Table"
	SheetSteps   = "Steps"

	// ContentType is the MIME type of the produced workbook.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// NewWorkbook builds a workbook for trace. Callers must Close the result.
func NewWorkbook(trace *knapsack.Trace) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("rename default sheet: %w", err)
	}
	for _, name := range []string{SheetTable, SheetSteps} {
		if _, err := f.NewSheet(name); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	writers := []func(*excelize.File, *knapsack.Trace) error{
		writeSummary,
		writeTable,
		writeSteps,
	}
	for _, write := range writers {
		if err := write(f, trace); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

// Write streams the workbook for trace to w.
func Write(w io.Writer, trace *knapsack.Trace) error {
	f, err := NewWorkbook(trace)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, trace *knapsack.Trace) error {
	summary := trace.Summary()

	selected := make([]string, 0, len(summary.SelectedIndices))
	for _, idx := range summary.SelectedIndices {
		item := trace.Items[idx]
		selected = append(selected, fmt.Sprintf("Item %d (w=%d, v=%d)", idx+1, item.Weight, item.Value))
	}
	selectedText := "No items selected"
	if len(selected) > 0 {
		selectedText = strings.Join(selected, ", ")
	}

	rows := [][]any{
		{"Capacity", trace.Capacity},
		{"Items", len(trace.Items)},
		{"Maximum value", summary.MaxValue},
		{"Selected items", selectedText},
		{"Total weight", summary.TotalWeight},
		{"Operations (n x W)", summary.Operations},
		{"Table cells ((n+1) x (W+1))", summary.TableCells},
		{"Steps", summary.StepCount},
	}
	return setRows(f, SheetSummary, 1, rows)
}

func writeTable(f *excelize.File, trace *knapsack.Trace) error {
	header := make([]any, 0, trace.Table.Cols()+1)
	header = append(header, `Items \ Capacity`)
	for w := 0; w < trace.Table.Cols(); w++ {
		header = append(header, w)
	}

	rows := make([][]any, 0, trace.Table.Rows()+1)
	rows = append(rows, header)
	for i, values := range trace.Table {
		label := "Base"
		if i > 0 {
			label = fmt.Sprintf("Item %d", i)
		}
		row := make([]any, 0, len(values)+1)
		row = append(row, label)
		for _, v := range values {
			row = append(row, v)
		}
		rows = append(rows, row)
	}
	return setRows(f, SheetTable, 1, rows)
}

func writeSteps(f *excelize.File, trace *knapsack.Trace) error {
	rows := make([][]any, 0, len(trace.Steps)+1)
	rows = append(rows, []any{"Step", "Item (i)", "Capacity (w)", "Decision", "Highlight", "Cell value", "Description", "Calculation"})

	for _, step := range trace.Steps {
		var i, w, value any = "", "", ""
		if step.Cell != nil {
			i, w = step.Cell.I, step.Cell.W
			value = step.Table[step.Cell.I][step.Cell.W]
		}
		rows = append(rows, []any{
			step.Sequence,
			i,
			w,
			string(step.Decision),
			string(step.Highlight),
			value,
			step.Description,
			step.Calculation,
		})
	}
	return setRows(f, SheetSteps, 1, rows)
}

func setRows(f *excelize.File, sheet string, firstRow int, rows [][]any) error {
	for offset, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, firstRow+offset)
		if err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, firstRow+offset, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, firstRow+offset, err)
		}
	}
	return nil
}
