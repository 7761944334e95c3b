package spreadsheet

import (
	"fmt"

	"github.com/shakinm/xlsReader/xls"
	"github.com/shakinm/xlsReader/xls/record"
	"github.com/shakinm/xlsReader/xls/structure"
)

func readXLS(path string, sel SheetSelector) (*Table, error) {
	workbook, err := xls.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open xls: %w", err)
	}

	names := make([]string, 0, workbook.GetNumberSheets())
	for i := 0; i < workbook.GetNumberSheets(); i++ {
		sheet, err := workbook.GetSheet(i)
		if err != nil || sheet == nil {
			names = append(names, "")
			continue
		}
		names = append(names, sheet.GetName())
	}

	idx, err := sel.pick(names)
	if err != nil {
		return nil, err
	}

	sheet, err := workbook.GetSheet(idx)
	if err != nil || sheet == nil {
		return nil, fmt.Errorf("%w: índice %d", ErrSheetNotFound, idx)
	}

	var records [][]string
	for i := 0; i < sheet.GetNumberRows(); i++ {
		row, err := sheet.GetRow(i)
		if err != nil || row == nil {
			// keep line numbers aligned with the sheet
			records = append(records, nil)
			continue
		}

		var cells []string
		for _, col := range row.GetCols() {
			cells = append(cells, xlsCellText(&workbook, col))
		}
		records = append(records, cells)
	}

	return NewTable(path, names[idx], records)
}

func xlsCellText(wb *xls.Workbook, col structure.CellData) string {
	switch col.(type) {
	case nil:
		return ""
	case *record.Number, *record.Rk:
		if xlsIsDate(wb, col.GetXFIndex()) {
			if text, ok := formatSerialDate(col.GetFloat64(), false); ok {
				return text
			}
		}
		return col.GetString()
	case *record.LabelSSt, *record.LabelBIFF8:
		return latin1Text(col.GetString())
	default:
		return col.GetString()
	}
}

// xlsIsDate resolves the cell's XF record to its number format.
// xlsReader indexes its XF table without bounds checks.
func xlsIsDate(wb *xls.Workbook, xfIndex int) (isDate bool) {
	defer func() {
		if recover() != nil {
			isDate = false
		}
	}()

	xf := wb.GetXFbyIndex(xfIndex)
	id := xf.GetFormatIndex()
	code := ""
	if id >= 164 {
		format := wb.GetFormatByIndex(id)
		code = format.String()
	}
	return isDateNumFmt(id, code)
}
