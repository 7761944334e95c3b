package invoice

import (
	"math"
	"strconv"
	"strings"
)

// InvalidMonth is the label used for reference months outside 1-12
const InvalidMonth = "Mês inválido"

var monthNames = [12]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

// MonthName maps 1-12 to the Portuguese month name
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return InvalidMonth
	}
	return monthNames[month-1]
}

// ParseMonthNumber parses a reference month cell such as "1", "01" or "1.0".
// Fractions are truncated.
func ParseMonthNumber(raw string) (int, bool) {
	value := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}

// FormMonths lists the month tokens offered by the web form, as they appear in file names
func FormMonths() []string {
	return []string{
		"janeiro", "fevereiro", "marco", "abril", "maio", "junho",
		"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
	}
}
