package entity

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Statement is the filtered invoice of a single functional identifier
type Statement struct {
	FunctionalID   string          `json:"functional_id"`
	Holder         string          `json:"holder"`
	ReferenceMonth int             `json:"reference_month"`
	MonthName      string          `json:"month_name"`
	Lines          []StatementLine `json:"lines"`
	Total          decimal.Decimal `json:"total"`
	Warnings       []ParseWarning  `json:"warnings,omitempty"`
}

// StatementLine is one row of the invoice table
type StatementLine struct {
	RealizationDate string          `json:"realization_date"`
	Beneficiary     string          `json:"beneficiary"`
	Service         string          `json:"service"`
	Quantity        string          `json:"quantity"`
	Provider        string          `json:"provider"`
	Amount          decimal.Decimal `json:"amount"`
}

// IsEmpty reports whether the statement has no lines
func (s *Statement) IsEmpty() bool {
	return s == nil || len(s.Lines) == 0
}

// ParseWarning records a value that could not be parsed and was replaced by a default
type ParseWarning struct {
	Line    int    `json:"line"`
	Column  string `json:"column"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

func (w ParseWarning) String() string {
	return fmt.Sprintf("line %d, column %s: %s (%q)", w.Line, w.Column, w.Message, w.Value)
}
