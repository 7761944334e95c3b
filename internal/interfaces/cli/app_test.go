package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeInvoices(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, "2026"), 0755))
	csv := "NR_FUNCIONAL;DATA_REALIZACAO;NOME;TITULAR;MM_REFERENCIA;SERVICO;QUANTIDADE;PRESTADOR;VALOR_COM_TAXA_FM\n" +
		"500;2026-03-05;JOAO DA SILVA;MARIA DA SILVA;3;CONSULTA;1;CLINICA;10,50\n" +
		"500;2026-03-06;JOAO DA SILVA;MARIA DA SILVA;3;EXAME;1;LABORATORIO;abc\n"
	require.NoError(t, os.WriteFile(filepath.Join(base, "2026", "fatura_coparticipacao_março_2026.csv"), []byte(csv), 0644))
	return base
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := NewCLIApp("test")
	app.SetOutput(&out)
	app.SetArgs(args)
	err := app.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLI_GenerateAndInspect(t *testing.T) {
	base := writeInvoices(t)
	outDir := t.TempDir()

	out, err := run(t, "generate", "--base-dir", base, "-y", "2026", "-m", "marco", "-i", "500", "-o", outDir)
	require.NoError(t, err, out)

	pdfPath := filepath.Join(outDir, "fatura_500_marco.pdf")
	assert.FileExists(t, pdfPath)
	assert.Contains(t, out, "Total: R$ 10.50")
	assert.Contains(t, out, "Mês: Março")
	assert.Contains(t, out, "Aviso:")

	out, err = run(t, "inspect", "--text", pdfPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Páginas: 1")
	assert.Contains(t, out, "Funcional: 500")
}

func TestCLI_GenerateErrors(t *testing.T) {
	base := writeInvoices(t)

	t.Run("unknown year", func(t *testing.T) {
		_, err := run(t, "generate", "--base-dir", base, "-y", "1999", "-m", "marco", "-i", "500", "-o", t.TempDir())
		require.Error(t, err)
		assert.Equal(t, "Diretório para o ano 1999 não encontrado.", err.Error())
	})

	t.Run("no data", func(t *testing.T) {
		_, err := run(t, "generate", "--base-dir", base, "-y", "2026", "-m", "marco", "-i", "999", "-o", t.TempDir())
		require.Error(t, err)
		assert.Equal(t, "Nenhum dado encontrado para os parâmetros informados.", err.Error())
	})

	t.Run("missing flag", func(t *testing.T) {
		_, err := run(t, "generate", "--base-dir", base, "-y", "2026")
		assert.Error(t, err)
	})
}

func TestCLI_Listings(t *testing.T) {
	base := writeInvoices(t)

	out, err := run(t, "months", "--base-dir", base, "2026")
	require.NoError(t, err)
	assert.Equal(t, "marco\n", out)

	out, err = run(t, "years", "--base-dir", base)
	require.NoError(t, err)
	assert.Equal(t, "2026\n", out)
}

func TestCLI_InspectNotPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not a pdf"), 0644))

	_, err := run(t, "inspect", path)
	assert.Error(t, err)
}
