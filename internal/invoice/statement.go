package invoice

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/drh-piracicaba/fatura-coparticipacao/internal/domain/entity"
)

// BuildStatement assembles the statement of already-filtered charges.
// Header fields come from the first charge. Unparsable amounts count as zero and
// every substitution is recorded in Statement.Warnings.
func BuildStatement(charges []entity.Charge) (*entity.Statement, error) {
	if len(charges) == 0 {
		return nil, ErrNoRows
	}

	first := charges[0]
	st := &entity.Statement{
		FunctionalID: first.FunctionalID,
		Holder:       strings.TrimSpace(first.Holder),
		Total:        decimal.Zero,
	}

	if month, ok := ParseMonthNumber(first.ReferenceMonth); ok {
		st.ReferenceMonth = month
	} else {
		st.Warnings = append(st.Warnings, entity.ParseWarning{
			Line:    first.Line,
			Column:  ColumnReferenceMonth,
			Value:   first.ReferenceMonth,
			Message: "mês de referência inválido",
		})
	}
	st.MonthName = MonthName(st.ReferenceMonth)

	for _, c := range charges {
		amount, ok := ParseAmount(c.RawAmount)
		if !ok {
			st.Warnings = append(st.Warnings, entity.ParseWarning{
				Line:    c.Line,
				Column:  ColumnAmount,
				Value:   c.RawAmount,
				Message: "valor inválido, considerado 0.00",
			})
		}

		quantity, ok := ParseQuantity(c.Quantity)
		if !ok {
			st.Warnings = append(st.Warnings, entity.ParseWarning{
				Line:    c.Line,
				Column:  ColumnQuantity,
				Value:   c.Quantity,
				Message: "quantidade não numérica",
			})
		}

		st.Lines = append(st.Lines, entity.StatementLine{
			RealizationDate: strings.TrimSpace(c.RealizationDate),
			Beneficiary:     strings.TrimSpace(c.Beneficiary),
			Service:         strings.TrimSpace(c.Service),
			Quantity:        quantity,
			Provider:        strings.TrimSpace(c.Provider),
			Amount:          amount,
		})
		st.Total = st.Total.Add(amount)
	}

	return st, nil
}
