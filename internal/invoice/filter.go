// Package invoice turns a monthly charge table into the statement of a single
// functional identifier: column mapping, identifier normalization, filtering,
// money parsing and totals.
package invoice

import (
	"github.com/drh-piracicaba/fatura-coparticipacao/internal/domain/entity"
	"github.com/drh-piracicaba/fatura-coparticipacao/internal/spreadsheet"
)

// Charges maps every table row to a Charge, normalizing the identifier column
func Charges(t *spreadsheet.Table) ([]entity.Charge, error) {
	idx := make(map[string]int, len(RequiredColumns))
	for _, name := range RequiredColumns {
		i := t.ColumnIndex(name)
		if i < 0 {
			return nil, &MissingColumnError{Column: name}
		}
		idx[name] = i
	}

	charges := make([]entity.Charge, 0, t.Len())
	for _, row := range t.Rows {
		cell := func(column string) string {
			return row.Cells[idx[column]]
		}
		charges = append(charges, entity.Charge{
			Line:            row.Line,
			FunctionalID:    NormalizeIdentifier(cell(ColumnFunctionalID)),
			RealizationDate: cell(ColumnRealizationDate),
			Beneficiary:     cell(ColumnBeneficiary),
			Holder:          cell(ColumnHolder),
			ReferenceMonth:  cell(ColumnReferenceMonth),
			Service:         cell(ColumnService),
			Quantity:        cell(ColumnQuantity),
			Provider:        cell(ColumnProvider),
			RawAmount:       cell(ColumnAmount),
		})
	}
	return charges, nil
}

// Filter returns the charges whose normalized identifier equals the query.
// The query is normalized the same way; an empty subset is ErrNoRows.
func Filter(charges []entity.Charge, query string) ([]entity.Charge, error) {
	id, err := NormalizeQuery(query)
	if err != nil {
		return nil, err
	}

	var matched []entity.Charge
	for _, c := range charges {
		if c.FunctionalID == id {
			matched = append(matched, c)
		}
	}
	if len(matched) == 0 {
		return nil, ErrNoRows
	}
	return matched, nil
}

// FilterTable maps, filters and builds the statement in one call
func FilterTable(t *spreadsheet.Table, query string) (*entity.Statement, error) {
	charges, err := Charges(t)
	if err != nil {
		return nil, err
	}
	matched, err := Filter(charges, query)
	if err != nil {
		return nil, err
	}
	return BuildStatement(matched)
}
