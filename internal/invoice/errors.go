package invoice

import (
	"errors"
	"fmt"
)

var (
	// ErrNoRows means the identifier has no charges in the table; it is a valid outcome, not a failure
	ErrNoRows            = errors.New("nenhum registro encontrado para o funcional")
	ErrInvalidIdentifier = errors.New("número funcional inválido")
)

// MissingColumnError reports a required column absent from the spreadsheet header
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("coluna obrigatória ausente: %s", e.Column)
}
