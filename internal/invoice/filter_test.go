package invoice

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/drh-piracicaba/fatura-coparticipacao/internal/spreadsheet"
)

const sampleHeader = "NR_FUNCIONAL;DATA_REALIZACAO;NOME;TITULAR;MM_REFERENCIA;SERVICO;QUANTIDADE;PRESTADOR;VALOR_COM_TAXA_FM\n"

func readSample(t *testing.T, body string) *spreadsheet.Table {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fatura_coparticipacao_janeiro_2026.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleHeader+body), 0644))

	reader, err := spreadsheet.NewReader(spreadsheet.DefaultOptions(), zap.NewNop())
	require.NoError(t, err)
	table, err := reader.Read(context.Background(), path)
	require.NoError(t, err)
	return table
}

func TestFilterTable(t *testing.T) {
	t.Run("sums parsable amounts and counts unparsable ones as zero", func(t *testing.T) {
		table := readSample(t,
			"500;05/01/2026;Maria;João;1;Consulta;1;Clínica A;10,50\n"+
				"500;06/01/2026;Pedro;João;1;Exame;2;Lab B;abc\n"+
				"501;07/01/2026;Ana;Ana;1;Consulta;1;Clínica A;99,00\n")

		st, err := FilterTable(table, "500")

		require.NoError(t, err)
		assert.Equal(t, "500", st.FunctionalID)
		assert.Equal(t, "João", st.Holder)
		assert.Equal(t, 1, st.ReferenceMonth)
		assert.Equal(t, "Janeiro", st.MonthName)
		require.Len(t, st.Lines, 2)
		assert.True(t, decimal.RequireFromString("10.50").Equal(st.Total), "total %s", st.Total)
		assert.True(t, st.Lines[1].Amount.IsZero())
		assert.Equal(t, "2", st.Lines[1].Quantity)

		require.Len(t, st.Warnings, 1)
		assert.Equal(t, ColumnAmount, st.Warnings[0].Column)
		assert.Equal(t, "abc", st.Warnings[0].Value)
		assert.Equal(t, 3, st.Warnings[0].Line)
	})

	t.Run("float-like identifiers in the sheet match integer queries", func(t *testing.T) {
		table := readSample(t,
			"123.0;05/01/2026;Maria;Maria;2;Consulta;1;Clínica;5,00\n"+
				"123.4;05/01/2026;Outro;Outro;2;Consulta;1;Clínica;7,00\n")

		st, err := FilterTable(table, "123")

		require.NoError(t, err)
		require.Len(t, st.Lines, 1)
		assert.Equal(t, "Maria", st.Lines[0].Beneficiary)
		assert.Equal(t, "Fevereiro", st.MonthName)
	})

	t.Run("no rows is a distinct outcome", func(t *testing.T) {
		table := readSample(t, "500;05/01/2026;Maria;João;1;Consulta;1;Clínica A;10,50\n")

		st, err := FilterTable(table, "999")

		assert.Nil(t, st)
		assert.ErrorIs(t, err, ErrNoRows)
	})

	t.Run("invalid reference month maps to placeholder", func(t *testing.T) {
		table := readSample(t, "500;05/01/2026;Maria;João;13;Consulta;1;Clínica A;1,00\n")

		st, err := FilterTable(table, "500")

		require.NoError(t, err)
		assert.Equal(t, "Mês inválido", st.MonthName)
	})

	t.Run("missing column", func(t *testing.T) {
		table, err := spreadsheet.NewTable("mem", "", [][]string{{"NR_FUNCIONAL", "NOME"}, {"1", "x"}})
		require.NoError(t, err)

		_, err = FilterTable(table, "1")

		var missing *MissingColumnError
		require.True(t, errors.As(err, &missing))
		assert.Equal(t, ColumnRealizationDate, missing.Column)
	})

	t.Run("invalid query", func(t *testing.T) {
		table := readSample(t, "500;05/01/2026;Maria;João;1;Consulta;1;Clínica A;10,50\n")

		_, err := FilterTable(table, "abc")

		assert.ErrorIs(t, err, ErrInvalidIdentifier)
	})
}

func TestBuildStatement_Empty(t *testing.T) {
	st, err := BuildStatement(nil)

	assert.Nil(t, st)
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestFilterTable_FormattedWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fatura_coparticipacao_janeiro_2026.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{
		"NR_FUNCIONAL", "DATA_REALIZACAO", "NOME", "TITULAR", "MM_REFERENCIA",
		"SERVICO", "QUANTIDADE", "PRESTADOR", "VALOR_COM_TAXA_FM",
	}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{
		12345, 46027, "Maria", "João", 1, "Consulta", 1, "Clínica A", 1234.5,
	}))

	thousands, err := f.NewStyle(&excelize.Style{NumFmt: 3})
	require.NoError(t, err)
	currencyCode := `"R$ "#,##0.00`
	currency, err := f.NewStyle(&excelize.Style{CustomNumFmt: &currencyCode})
	require.NoError(t, err)
	date, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("Sheet1", "A2", "A2", thousands))
	require.NoError(t, f.SetCellStyle("Sheet1", "B2", "B2", date))
	require.NoError(t, f.SetCellStyle("Sheet1", "I2", "I2", currency))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	reader, err := spreadsheet.NewReader(spreadsheet.DefaultOptions(), zap.NewNop())
	require.NoError(t, err)
	table, err := reader.Read(context.Background(), path)
	require.NoError(t, err)

	st, err := FilterTable(table, "12345")

	require.NoError(t, err)
	require.Len(t, st.Lines, 1)
	assert.Empty(t, st.Warnings)
	assert.Equal(t, "05/01/2026", st.Lines[0].RealizationDate)
	assert.True(t, decimal.RequireFromString("1234.50").Equal(st.Total), "total %s", st.Total)
}
