package spreadsheet

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// readXLSX loads cell values, not their number-format rendering: "#,##0" and
// currency formats would otherwise hide identifiers and amounts. Date-formatted
// serials are rendered with DateLayout.
func readXLSX(path string, sel SheetSelector) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	names := f.GetSheetList()
	idx, err := sel.pick(names)
	if err != nil {
		return nil, err
	}
	sheet := names[idx]

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}

	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	styles := xlsxDateStyles{f: f, known: make(map[int]bool)}
	for r, row := range rows {
		for c, value := range row {
			serial, err := strconv.ParseFloat(value, 64)
			if err != nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, err
			}
			isDate, err := styles.isDate(sheet, cell)
			if err != nil {
				return nil, fmt.Errorf("failed to read style of %s!%s: %w", sheet, cell, err)
			}
			if !isDate {
				continue
			}
			if text, ok := formatSerialDate(serial, date1904); ok {
				row[c] = text
			}
		}
	}

	return NewTable(path, sheet, rows)
}

// xlsxDateStyles caches, per style id, whether the style's number format is a date
type xlsxDateStyles struct {
	f     *excelize.File
	known map[int]bool
}

func (s xlsxDateStyles) isDate(sheet, cell string) (bool, error) {
	cellType, err := s.f.GetCellType(sheet, cell)
	if err != nil {
		return false, err
	}
	if cellType == excelize.CellTypeSharedString || cellType == excelize.CellTypeInlineString {
		return false, nil
	}

	styleID, err := s.f.GetCellStyle(sheet, cell)
	if err != nil {
		return false, err
	}
	if isDate, ok := s.known[styleID]; ok {
		return isDate, nil
	}

	isDate := false
	if style, err := s.f.GetStyle(styleID); err == nil {
		code := ""
		if style.CustomNumFmt != nil {
			code = *style.CustomNumFmt
		}
		isDate = isDateNumFmt(style.NumFmt, code)
	}
	s.known[styleID] = isDate
	return isDate, nil
}
