package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

const maxSheetName = 31

// WriteWorkbook writes every table as its own sheet, headers on row 1.
func WriteWorkbook(w io.Writer, tables []Table) error {
	if len(tables) == 0 {
		return fmt.Errorf("workbook needs at least one table")
	}
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4F6228"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return err
	}

	for i, table := range tables {
		sheet := sheetName(table.Name)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return err
		}

		for col, header := range table.Headers {
			cell, err := excelize.CoordinatesToCellName(col+1, 1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, header); err != nil {
				return err
			}
			if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
				return err
			}
		}
		if len(table.Headers) > 0 {
			last, _ := excelize.ColumnNumberToName(len(table.Headers))
			if err := f.SetColWidth(sheet, "A", last, 18); err != nil {
				return err
			}
		}

		for r, row := range table.Rows {
			for col, value := range row {
				cell, err := excelize.CoordinatesToCellName(col+1, r+2)
				if err != nil {
					return err
				}
				if err := f.SetCellValue(sheet, cell, workbookValue(value)); err != nil {
					return err
				}
			}
		}
	}
	f.SetActiveSheet(0)

	_, err = f.WriteTo(w)
	return err
}

func workbookValue(value any) any {
	switch v := value.(type) {
	case time.Time, *time.Time, *float64:
		return FormatCell(v)
	default:
		return v
	}
}

func sheetName(name string) string {
	if name == "" {
		name = "Sheet"
	}
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}
	return name
}
