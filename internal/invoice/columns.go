package invoice

// Spreadsheet column names (case-sensitive) of the monthly co-participation file
const (
	ColumnFunctionalID    = "NR_FUNCIONAL"
	ColumnRealizationDate = "DATA_REALIZACAO"
	ColumnBeneficiary     = "NOME"
	ColumnHolder          = "TITULAR"
	ColumnReferenceMonth  = "MM_REFERENCIA"
	ColumnService         = "SERVICO"
	ColumnQuantity        = "QUANTIDADE"
	ColumnProvider        = "PRESTADOR"
	ColumnAmount          = "VALOR_COM_TAXA_FM"
)

// RequiredColumns lists every column a charge row is built from
var RequiredColumns = []string{
	ColumnFunctionalID,
	ColumnRealizationDate,
	ColumnBeneficiary,
	ColumnHolder,
	ColumnReferenceMonth,
	ColumnService,
	ColumnQuantity,
	ColumnProvider,
	ColumnAmount,
}
