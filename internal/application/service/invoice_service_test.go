package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/drh-piracicaba/fatura-coparticipacao/internal/domain/entity"
	"github.com/drh-piracicaba/fatura-coparticipacao/internal/infrastructure/metrics"
	"github.com/drh-piracicaba/fatura-coparticipacao/internal/invoice"
	"github.com/drh-piracicaba/fatura-coparticipacao/internal/report"
	"github.com/drh-piracicaba/fatura-coparticipacao/internal/spreadsheet"
	"github.com/drh-piracicaba/fatura-coparticipacao/internal/storage"
)

const chargeHeader = "NR_FUNCIONAL;DATA_REALIZACAO;NOME;TITULAR;MM_REFERENCIA;SERVICO;QUANTIDADE;PRESTADOR;VALOR_COM_TAXA_FM\n"

type mockLocator struct {
	resolveFunc    func(year, month string) (string, error)
	listYearsFunc  func() ([]string, error)
	listMonthsFunc func(year string, months []string) ([]string, error)
}

func (m *mockLocator) Resolve(year, month string) (string, error) {
	if m.resolveFunc != nil {
		return m.resolveFunc(year, month)
	}
	return "/data/2026/fatura_coparticipacao_janeiro_2026.csv", nil
}

func (m *mockLocator) ListYears() ([]string, error) {
	if m.listYearsFunc != nil {
		return m.listYearsFunc()
	}
	return []string{"2026", "2025"}, nil
}

func (m *mockLocator) ListMonths(year string, months []string) ([]string, error) {
	if m.listMonthsFunc != nil {
		return m.listMonthsFunc(year, months)
	}
	return months[:1], nil
}

type mockReader struct {
	readFunc func(ctx context.Context, path string) (*spreadsheet.Table, error)
}

func (m *mockReader) Read(ctx context.Context, path string) (*spreadsheet.Table, error) {
	return m.readFunc(ctx, path)
}

type mockAssembler struct {
	calls int
}

func (m *mockAssembler) Assemble(st *entity.Statement) (*bytes.Reader, error) {
	m.calls++
	if st.IsEmpty() {
		return nil, report.ErrNoData
	}
	return bytes.NewReader([]byte("%PDF-1.3 fake")), nil
}

type mockDownloadRepo struct {
	records   []*entity.DownloadRecord
	createErr error
}

func (m *mockDownloadRepo) Create(ctx context.Context, record *entity.DownloadRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	record.ID = int64(len(m.records) + 1)
	m.records = append(m.records, record)
	return nil
}

func (m *mockDownloadRepo) ListRecent(ctx context.Context, limit int) ([]*entity.DownloadRecord, error) {
	return m.records, nil
}

func (m *mockDownloadRepo) ListByFunctionalID(ctx context.Context, functionalID string, limit int) ([]*entity.DownloadRecord, error) {
	return nil, nil
}

func csvTable(t *testing.T, body string) *spreadsheet.Table {
	t.Helper()
	records := [][]string{}
	for _, line := range strings.Split(strings.TrimSpace(chargeHeader+body), "\n") {
		records = append(records, strings.Split(line, ";"))
	}
	table, err := spreadsheet.NewTable("test.csv", "", records)
	require.NoError(t, err)
	return table
}

func staticReader(t *testing.T, body string) *mockReader {
	table := csvTable(t, body)
	return &mockReader{readFunc: func(ctx context.Context, path string) (*spreadsheet.Table, error) {
		return table, nil
	}}
}

func TestInvoiceService_Generate(t *testing.T) {
	body := "500;2026-01-05;JOAO;MARIA;1;CONSULTA;1;CLINICA;10,50\n" +
		"500.0;2026-01-06;JOAO;MARIA;1;EXAME;2;LAB;abc\n" +
		"777;2026-01-07;ANA;ANA;1;CONSULTA;1;CLINICA;30\n"

	tests := []struct {
		name        string
		locator     *mockLocator
		req         InvoiceRequest
		wantErr     error
		wantStatus  string
		wantLines   int
		wantTotal   string
		wantWarning int
	}{
		{
			name:        "generated with warning",
			locator:     &mockLocator{},
			req:         InvoiceRequest{Year: " 2026 ", Month: " Janeiro", FunctionalID: "500 "},
			wantStatus:  entity.DownloadStatusGenerated,
			wantLines:   2,
			wantTotal:   "10.50",
			wantWarning: 1,
		},
		{
			name:       "no rows",
			locator:    &mockLocator{},
			req:        InvoiceRequest{Year: "2026", Month: "janeiro", FunctionalID: "123"},
			wantErr:    invoice.ErrNoRows,
			wantStatus: entity.DownloadStatusNoData,
		},
		{
			name:       "invalid identifier",
			locator:    &mockLocator{},
			req:        InvoiceRequest{Year: "2026", Month: "janeiro", FunctionalID: "abc"},
			wantErr:    invoice.ErrInvalidIdentifier,
			wantStatus: entity.DownloadStatusNoData,
		},
		{
			name: "year missing",
			locator: &mockLocator{resolveFunc: func(year, month string) (string, error) {
				return "", fmt.Errorf("%w: %s", storage.ErrYearDirNotFound, year)
			}},
			req:        InvoiceRequest{Year: "1999", Month: "janeiro", FunctionalID: "500"},
			wantErr:    storage.ErrYearDirNotFound,
			wantStatus: entity.DownloadStatusNotFound,
		},
		{
			name: "ambiguous file",
			locator: &mockLocator{resolveFunc: func(year, month string) (string, error) {
				return "", storage.ErrAmbiguousFile
			}},
			req:        InvoiceRequest{Year: "2026", Month: "janeiro", FunctionalID: "500"},
			wantErr:    storage.ErrAmbiguousFile,
			wantStatus: entity.DownloadStatusFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockDownloadRepo{}
			svc := NewInvoiceService(tt.locator, staticReader(t, body), &mockAssembler{}, repo,
				metrics.New(), InvoiceServiceConfig{}, zap.NewNop())

			result, err := svc.Generate(context.Background(), tt.req)
			require.Len(t, repo.records, 1)
			assert.Equal(t, tt.wantStatus, repo.records[0].Status)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, result)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "fatura_500_janeiro.pdf", result.FileName)
			assert.Len(t, result.Statement.Lines, tt.wantLines)
			assert.Equal(t, tt.wantTotal, result.Statement.Total.StringFixed(2))
			assert.Len(t, result.Statement.Warnings, tt.wantWarning)
			assert.Equal(t, int64(len("%PDF-1.3 fake")), result.Size)

			rec := repo.records[0]
			assert.Equal(t, "2026", rec.Year)
			assert.Equal(t, "janeiro", rec.Month)
			assert.Equal(t, tt.wantLines, rec.LineCount)
			assert.Equal(t, tt.wantTotal, rec.Total)
		})
	}
}

func TestInvoiceService_ReadFailure(t *testing.T) {
	repo := &mockDownloadRepo{}
	reader := &mockReader{readFunc: func(ctx context.Context, path string) (*spreadsheet.Table, error) {
		return nil, spreadsheet.ErrUnsupportedFormat
	}}
	svc := NewInvoiceService(&mockLocator{}, reader, &mockAssembler{}, repo, nil, InvoiceServiceConfig{}, zap.NewNop())

	_, err := svc.Generate(context.Background(), InvoiceRequest{Year: "2026", Month: "janeiro", FunctionalID: "500"})
	assert.ErrorIs(t, err, spreadsheet.ErrUnsupportedFormat)
	require.Len(t, repo.records, 1)
	assert.Equal(t, entity.DownloadStatusFailed, repo.records[0].Status)
	assert.NotEmpty(t, repo.records[0].ErrorMessage)
	assert.NotEmpty(t, repo.records[0].SourceFile)
}

func TestInvoiceService_LedgerFailureDoesNotFailDownload(t *testing.T) {
	repo := &mockDownloadRepo{createErr: errors.New("disk full")}
	svc := NewInvoiceService(&mockLocator{}, staticReader(t, "500;d;n;t;2;s;1;p;5\n"), &mockAssembler{}, repo,
		nil, InvoiceServiceConfig{}, zap.NewNop())

	result, err := svc.Generate(context.Background(), InvoiceRequest{Year: "2026", Month: "fevereiro", FunctionalID: "500"})
	require.NoError(t, err)
	assert.Equal(t, "Fevereiro", result.Statement.MonthName)
}

func TestInvoiceService_CancelledContext(t *testing.T) {
	assembler := &mockAssembler{}
	svc := NewInvoiceService(&mockLocator{}, staticReader(t, "500;d;n;t;1;s;1;p;5\n"), assembler, nil,
		nil, InvoiceServiceConfig{}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Generate(ctx, InvoiceRequest{Year: "2026", Month: "janeiro", FunctionalID: "500"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, assembler.calls)
}

func TestInvoiceService_Listings(t *testing.T) {
	t.Run("configured years win", func(t *testing.T) {
		svc := NewInvoiceService(&mockLocator{}, nil, nil, nil, nil,
			InvoiceServiceConfig{Years: []string{"2024"}}, zap.NewNop())
		years, err := svc.Years()
		require.NoError(t, err)
		assert.Equal(t, []string{"2024"}, years)
	})

	t.Run("directory years", func(t *testing.T) {
		svc := NewInvoiceService(&mockLocator{}, nil, nil, nil, nil, InvoiceServiceConfig{}, zap.NewNop())
		years, err := svc.Years()
		require.NoError(t, err)
		assert.Equal(t, []string{"2026", "2025"}, years)
	})

	t.Run("months default to the form months", func(t *testing.T) {
		var got []string
		locator := &mockLocator{listMonthsFunc: func(year string, months []string) ([]string, error) {
			got = months
			return months, nil
		}}
		svc := NewInvoiceService(locator, nil, nil, nil, nil, InvoiceServiceConfig{}, zap.NewNop())
		_, err := svc.Months("2026")
		require.NoError(t, err)
		assert.Equal(t, invoice.FormMonths(), got)
		assert.Equal(t, invoice.FormMonths(), svc.MonthOptions())
	})

	t.Run("downloads without ledger", func(t *testing.T) {
		svc := NewInvoiceService(&mockLocator{}, nil, nil, nil, nil, InvoiceServiceConfig{}, zap.NewNop())
		records, err := svc.RecentDownloads(context.Background(), 10)
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestInvoiceService_EndToEnd(t *testing.T) {
	base := t.TempDir()
	yearDir := filepath.Join(base, "2026")
	require.NoError(t, os.MkdirAll(yearDir, 0755))
	content := chargeHeader +
		"500;2026-01-05;JOAO DA SILVA;MARIA DA SILVA;1;CONSULTA ELETIVA;1;CLINICA SAO JOSE;10,50\n" +
		"500;2026-01-06;JOAO DA SILVA;MARIA DA SILVA;1;EXAME DE SANGUE;2.0;LABORATORIO;abc\n"
	require.NoError(t, os.WriteFile(filepath.Join(yearDir, "fatura_coparticipacao_janeiro_2026.csv"), []byte(content), 0644))

	logger := zap.NewNop()
	locator, err := storage.NewInvoiceLocator(storage.LocatorConfig{BaseDir: base}, logger)
	require.NoError(t, err)
	reader, err := spreadsheet.NewReader(spreadsheet.DefaultOptions(), logger)
	require.NoError(t, err)
	assembler := report.NewAssembler(report.DefaultStyle(), nil, logger)

	svc := NewInvoiceService(locator, reader, assembler, nil, metrics.New(), InvoiceServiceConfig{Verify: true}, logger)

	t.Run("generated and verified", func(t *testing.T) {
		result, err := svc.Generate(context.Background(), InvoiceRequest{Year: "2026", Month: "janeiro", FunctionalID: "500"})
		require.NoError(t, err)
		assert.Equal(t, "10.50", result.Statement.Total.StringFixed(2))
		assert.GreaterOrEqual(t, result.Pages, 1)

		data, err := io.ReadAll(result.Document)
		require.NoError(t, err)
		assert.Equal(t, result.Size, int64(len(data)))

		ins, err := report.Inspect(data)
		require.NoError(t, err)
		assert.True(t, ins.Contains("500", "Janeiro"))
	})

	t.Run("month without file", func(t *testing.T) {
		_, err := svc.Generate(context.Background(), InvoiceRequest{Year: "2026", Month: "dezembro", FunctionalID: "500"})
		assert.ErrorIs(t, err, storage.ErrFileNotFound)
	})

	t.Run("listing", func(t *testing.T) {
		months, err := svc.Months("2026")
		require.NoError(t, err)
		assert.Equal(t, []string{"janeiro"}, months)
	})
}

func TestOutcomeAndFileName(t *testing.T) {
	assert.Equal(t, entity.DownloadStatusGenerated, Outcome(nil))
	assert.Equal(t, entity.DownloadStatusNoData, Outcome(fmt.Errorf("wrapped: %w", report.ErrNoData)))
	assert.Equal(t, entity.DownloadStatusNotFound, Outcome(storage.ErrFileNotFound))
	assert.Equal(t, entity.DownloadStatusFailed, Outcome(&invoice.MissingColumnError{Column: "NOME"}))

	assert.Equal(t, "fatura_500_marco.pdf", FileName("500", "Março"))
	assert.Equal(t, "fatura_500_janeiro.pdf", FileName("../500", "janeiro"))
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"year", fmt.Errorf("%w: 1999", storage.ErrYearDirNotFound), "Diretório para o ano 1999 não encontrado."},
		{"file", storage.ErrFileNotFound, MsgFileNotFound},
		{"no rows", invoice.ErrNoRows, MsgNoData},
		{"no data", report.ErrNoData, MsgNoData},
		{"missing column", &invoice.MissingColumnError{Column: "NOME"}, "Erro ao processar o arquivo: coluna obrigatória ausente: NOME"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage("1999", tt.err))
		})
	}
}
