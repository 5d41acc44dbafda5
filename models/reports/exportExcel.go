package reports

import (
	"bytes"
	"fmt"

	"bitbucket.org/mmdatafocus/fama_reports/models"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	ExcelContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	excelSheetName   = "Sheet1"
)

// ExportExcel writes the result as a single sheet: a title line, the column labels, then one line per row.
// Rows flagged bold (totals, headers) keep the flag in the sheet.
func ExportExcel(result *ReportResult, title string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	if err := f.SetCellValue(excelSheetName, "A1", title); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(excelSheetName, "A1", "A1", boldStyle); err != nil {
		return nil, err
	}

	for i, col := range result.Columns {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(excelSheetName, name+"2", col.Label); err != nil {
			return nil, err
		}
		if col.Width > 0 {
			if err := f.SetColWidth(excelSheetName, name, name, float64(col.Width)/7); err != nil {
				return nil, err
			}
		}
	}
	if len(result.Columns) > 0 {
		last, _ := excelize.ColumnNumberToName(len(result.Columns))
		if err := f.SetCellStyle(excelSheetName, "A2", last+"2", boldStyle); err != nil {
			return nil, err
		}
	}

	for r, row := range result.Result {
		rowNo := r + 3
		for i, col := range result.Columns {
			cell, err := excelize.CoordinatesToCellName(i+1, rowNo)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(excelSheetName, cell, excelCellValue(row[col.FieldName])); err != nil {
				return nil, err
			}
		}
		if isBold(row) && len(result.Columns) > 0 {
			first, _ := excelize.CoordinatesToCellName(1, rowNo)
			last, _ := excelize.CoordinatesToCellName(len(result.Columns), rowNo)
			if err := f.SetCellStyle(excelSheetName, first, last, boldStyle); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// excelCellValue converts a row cell, including cells decoded from the JSON cache, to a value excelize can write.
func excelCellValue(v any) any {
	switch value := v.(type) {
	case nil:
		return ""
	case decimal.Decimal:
		return value.InexactFloat64()
	case models.MyDateString:
		return value.String()
	case *models.MyDateString:
		if value == nil {
			return ""
		}
		return value.String()
	case string, int, int64, float64, bool:
		return value
	default:
		return fmt.Sprint(value)
	}
}

func isBold(row Row) bool {
	switch v := row["bold"].(type) {
	case int:
		return v != 0
	case float64:
		return v != 0
	case bool:
		return v
	}
	return false
}
