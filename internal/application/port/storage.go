package port

import (
	"bytes"
	"context"

	"github.com/drh-piracicaba/fatura-coparticipacao/internal/domain/entity"
	"github.com/drh-piracicaba/fatura-coparticipacao/internal/spreadsheet"
)

// SourceLocator finds the monthly spreadsheets on disk
type SourceLocator interface {
	Resolve(year, month string) (string, error)
	ListYears() ([]string, error)
	ListMonths(year string, months []string) ([]string, error)
}

// TableReader loads a spreadsheet into a table
type TableReader interface {
	Read(ctx context.Context, path string) (*spreadsheet.Table, error)
}

// DocumentAssembler renders a statement as a PDF
type DocumentAssembler interface {
	Assemble(st *entity.Statement) (*bytes.Reader, error)
}
