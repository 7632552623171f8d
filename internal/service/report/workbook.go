package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/cmlabs-hris/attendance-dashboard-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/attendance-dashboard-go/internal/domain/metric"
	"github.com/xuri/excelize/v2"
)

// FileName is the deterministic export name for a view and day,
// e.g. Dashboard_Function_2025-03-14.pdf
func FileName(dimension metric.Dimension, day time.Time, ext string) string {
	return fmt.Sprintf("Dashboard_%s_%s.%s", dimension.Label(), day.Format("2006-01-02"), ext)
}

type column struct {
	header string
	value  func(metric.Record) interface{}
}

var baseColumns = []column{
	{"Group", func(r metric.Record) interface{} { return r.Group }},
	{"Month", func(r metric.Record) interface{} { return r.Month }},
	{"Members", func(r metric.Record) interface{} { return r.Members }},
}

var metricColumns = map[metric.Kind][]column{
	metric.KindOnTime: {
		{"Present", func(r metric.Record) interface{} { return r.Present }},
		{"Late", func(r metric.Record) interface{} { return r.Late }},
		{"On Time", func(r metric.Record) interface{} { return r.OnTime }},
		{"On Time %", func(r metric.Record) interface{} { return r.OnTimePct }},
	},
	metric.KindCompletion: {
		{"Shift Hours", func(r metric.Record) interface{} { return r.ShiftHours }},
		{"Work Hours", func(r metric.Record) interface{} { return r.WorkHours }},
		{"Completed", func(r metric.Record) interface{} { return r.Completed }},
		{"Completion %", func(r metric.Record) interface{} { return r.CompletionPct }},
	},
	metric.KindLost: {
		{"Lost Hours", func(r metric.Record) interface{} { return r.HoursLost() }},
		{"Lost %", func(r metric.Record) interface{} { return r.LostPct }},
	},
	metric.KindLeave: {
		{"Leave Members", func(r metric.Record) interface{} { return r.LeaveMembers }},
		{"SL", func(r metric.Record) interface{} { return r.SL }},
		{"CL", func(r metric.Record) interface{} { return r.CL }},
		{"A", func(r metric.Record) interface{} { return r.A }},
		{"SL %", func(r metric.Record) interface{} { return r.SLPct }},
		{"CL %", func(r metric.Record) interface{} { return r.CLPct }},
		{"A %", func(r metric.Record) interface{} { return r.APct }},
	},
}

// buildWorkbook writes one sheet per metric with the filtered records,
// sorted by group then month.
func buildWorkbook(snapshot *dashboard.Snapshot) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for _, kind := range metric.Kinds {
		sheet := sheetName(kind)
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}

		columns := append(append([]column{}, baseColumns...), metricColumns[kind]...)
		header := make([]interface{}, 0, len(columns))
		for _, c := range columns {
			header = append(header, c.header)
		}
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return nil, err
		}
		lastCol, _ := excelize.ColumnNumberToName(len(columns))
		if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheet, "A", "A", 28); err != nil {
			return nil, err
		}

		records := sortedRecords(snapshot.Filtered[kind])
		for r, rec := range records {
			row := make([]interface{}, 0, len(columns))
			for _, c := range columns {
				row = append(row, c.value(rec))
			}
			cell, _ := excelize.CoordinatesToCellName(1, r+2)
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				return nil, err
			}
		}
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}
	if index, err := f.GetSheetIndex(sheetName(metric.Kinds[0])); err == nil {
		f.SetActiveSheet(index)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetName is the worksheet title of a metric
func sheetName(kind metric.Kind) string {
	switch kind {
	case metric.KindOnTime:
		return "On Time"
	case metric.KindCompletion:
		return "Work Hour Completion"
	case metric.KindLost:
		return "Work Hour Lost"
	default:
		return "Leave Analysis"
	}
}

func sortedRecords(records []metric.Record) []metric.Record {
	out := append([]metric.Record(nil), records...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Group != out[j].Group {
			return out[i].Group < out[j].Group
		}
		return out[i].Month < out[j].Month
	})
	return out
}
