package service

import (
	"errors"
	"fmt"

	"github.com/drh-piracicaba/fatura-coparticipacao/internal/invoice"
	"github.com/drh-piracicaba/fatura-coparticipacao/internal/report"
	"github.com/drh-piracicaba/fatura-coparticipacao/internal/storage"
)

// User-facing messages of a failed generation
const (
	MsgYearNotFound = "Diretório para o ano %s não encontrado."
	MsgFileNotFound = "Arquivo não encontrado para o mês e ano selecionados."
	MsgNoData       = "Nenhum dado encontrado para os parâmetros informados."
	MsgProcessing   = "Erro ao processar o arquivo: %s"
)

// UserMessage maps a Generate error to the text shown to the user
func UserMessage(year string, err error) string {
	switch {
	case errors.Is(err, storage.ErrYearDirNotFound):
		return fmt.Sprintf(MsgYearNotFound, year)
	case errors.Is(err, storage.ErrFileNotFound):
		return MsgFileNotFound
	case errors.Is(err, invoice.ErrNoRows),
		errors.Is(err, invoice.ErrInvalidIdentifier),
		errors.Is(err, report.ErrNoData):
		return MsgNoData
	default:
		return fmt.Sprintf(MsgProcessing, err.Error())
	}
}
