// Package export writes record tables as CSV files or one XLSX workbook.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// Table is one collection laid out as rows. Cells hold string, float64, int,
// bool, time.Time or nil.
type Table struct {
	Name    string
	Headers []string
	Rows    [][]any
}

func WriteCSV(w io.Writer, table Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(table.Headers); err != nil {
		return err
	}
	record := make([]string, len(table.Headers))
	for i, row := range table.Rows {
		if len(row) != len(table.Headers) {
			return fmt.Errorf("%s row %d: %d cells for %d headers", table.Name, i+1, len(row), len(table.Headers))
		}
		for j, cell := range row {
			record[j] = FormatCell(cell)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func FormatCell(cell any) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		if v.IsZero() {
			return ""
		}
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 && v.Nanosecond() == 0 {
			return v.Format("2006-01-02")
		}
		return v.UTC().Format(time.RFC3339)
	case *time.Time:
		if v == nil {
			return ""
		}
		return FormatCell(*v)
	case *float64:
		if v == nil {
			return ""
		}
		return FormatCell(*v)
	default:
		return fmt.Sprint(v)
	}
}
