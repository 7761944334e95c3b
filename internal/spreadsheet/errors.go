package spreadsheet

import "errors"

var (
	ErrUnsupportedFormat = errors.New("formato de arquivo não suportado")
	ErrSheetNotFound     = errors.New("planilha não encontrada")
	ErrEmptyTable        = errors.New("planilha sem cabeçalho")
	ErrUnknownEncoding   = errors.New("codificação de texto desconhecida")
)
