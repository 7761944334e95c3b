package spreadsheet

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

// Layouts used for date-formatted numeric cells, whatever the source format
const (
	DateLayout     = "02/01/2006"
	DateTimeLayout = "02/01/2006 15:04"
)

// builtInDateFormats are the workbook number format ids that render a serial as a
// calendar date (ECMA-376 18.8.30 and the BIFF8 internal table)
var builtInDateFormats = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 22: true,
	27: true, 28: true, 29: true, 30: true, 31: true, 32: true, 33: true, 34: true, 35: true, 36: true,
	50: true, 51: true, 52: true, 53: true, 54: true, 55: true, 56: true, 57: true, 58: true,
}

// isDateNumFmt reports whether a number format shows a date. A non-empty custom
// code decides on its own; otherwise the built-in id does.
func isDateNumFmt(id int, code string) bool {
	if code == "" {
		return builtInDateFormats[id]
	}

	var b strings.Builder
	inQuote, inBracket, escaped := false, false, false
	for _, r := range code {
		switch {
		case escaped:
			escaped = false
		case inQuote:
			inQuote = r != '"'
		case inBracket:
			inBracket = r != ']'
		case r == '\\' || r == '_' || r == '*':
			escaped = true
		case r == '"':
			inQuote = true
		case r == '[':
			inBracket = true
		default:
			b.WriteRune(r)
		}
	}

	// a date section only; "0.00;[Red]dd" style mixes are not dates
	section := strings.ToLower(strings.SplitN(b.String(), ";", 2)[0])
	if strings.ContainsAny(section, "0#?") {
		return false
	}
	return strings.ContainsAny(section, "dy")
}

// formatSerialDate renders a spreadsheet serial number as a date, with the time
// of day only when it is not midnight
func formatSerialDate(serial float64, date1904 bool) (string, bool) {
	if math.IsNaN(serial) || math.IsInf(serial, 0) || serial < 0 {
		return "", false
	}
	t, err := excelize.ExcelDateToTime(serial, date1904)
	if err != nil {
		return "", false
	}
	return formatDate(t), true
}

// formatISODate renders an OpenDocument date-value ("2026-01-05" or
// "2026-01-05T08:30:00") with the same layouts as workbook dates
func formatISODate(value string) (string, bool) {
	for _, layout := range []string{"2006-01-02T15:04:05.999999999", "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return formatDate(t), true
		}
	}
	return "", false
}

func formatDate(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format(DateLayout)
	}
	return t.Format(DateTimeLayout)
}

// latin1Text repairs strings stored as single-byte BIFF8 text, which xlsReader
// returns undecoded
func latin1Text(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().String(s)
	if err != nil {
		return s
	}
	return decoded
}
