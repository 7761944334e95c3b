package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/drh-piracicaba/fatura-coparticipacao/internal/application/service"
	"github.com/drh-piracicaba/fatura-coparticipacao/internal/container"
	"github.com/drh-piracicaba/fatura-coparticipacao/internal/domain/entity"
	"github.com/drh-piracicaba/fatura-coparticipacao/internal/infrastructure/metrics"
	"github.com/drh-piracicaba/fatura-coparticipacao/internal/invoice"
	"github.com/drh-piracicaba/fatura-coparticipacao/internal/report"
	"github.com/drh-piracicaba/fatura-coparticipacao/internal/spreadsheet"
	"github.com/drh-piracicaba/fatura-coparticipacao/internal/storage"
)

type fakeInvoiceService struct {
	generateFunc func(ctx context.Context, req service.InvoiceRequest) (*service.InvoiceResult, error)
	lastRequest  service.InvoiceRequest
	monthsErr    error
	downloads    []*entity.DownloadRecord
}

func (f *fakeInvoiceService) Generate(ctx context.Context, req service.InvoiceRequest) (*service.InvoiceResult, error) {
	f.lastRequest = req
	return f.generateFunc(ctx, req)
}

func (f *fakeInvoiceService) Years() ([]string, error) {
	return []string{"2026", "2025"}, nil
}

func (f *fakeInvoiceService) Months(year string) ([]string, error) {
	if f.monthsErr != nil {
		return nil, f.monthsErr
	}
	return []string{"janeiro", "marco"}, nil
}

func (f *fakeInvoiceService) MonthOptions() []string {
	return invoice.FormMonths()
}

func (f *fakeInvoiceService) RecentDownloads(ctx context.Context, limit int) ([]*entity.DownloadRecord, error) {
	return f.downloads, nil
}

type fakeHealth struct {
	healthy bool
}

func (f fakeHealth) Health(ctx context.Context) *container.HealthStatus {
	return &container.HealthStatus{
		Overall:    f.healthy,
		Components: map[string]container.ComponentHealth{"invoices": {Healthy: f.healthy}},
	}
}

func failWith(err error) *fakeInvoiceService {
	return &fakeInvoiceService{generateFunc: func(ctx context.Context, req service.InvoiceRequest) (*service.InvoiceResult, error) {
		return nil, err
	}}
}

func newTestServer(t *testing.T, svc service.InvoiceService, health HealthChecker) *Server {
	t.Helper()
	s, err := NewServer(DefaultServerConfig(), svc, health, metrics.New(), zap.NewNop())
	require.NoError(t, err)
	return s
}

func postForm(s *Server, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func formValues(month, year, id string) url.Values {
	return url.Values{"mes": {month}, "ano": {year}, "nr_funcional": {id}}
}

func TestHandlers_Form(t *testing.T) {
	s := newTestServer(t, failWith(nil), nil)

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<option value="marco">Março</option>`)
	assert.Contains(t, body, `<option value="2026">2026</option>`)
	assert.Contains(t, body, `name="nr_funcional"`)
}

func TestHandlers_DownloadErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"year directory", fmt.Errorf("%w: 1999", storage.ErrYearDirNotFound), "Diretório para o ano 1999 não encontrado."},
		{"file", storage.ErrFileNotFound, "Arquivo não encontrado para o mês e ano selecionados."},
		{"no rows", invoice.ErrNoRows, "Nenhum dado encontrado para os parâmetros informados."},
		{"invalid identifier", invoice.ErrInvalidIdentifier, "Nenhum dado encontrado para os parâmetros informados."},
		{"no data", report.ErrNoData, "Nenhum dado encontrado para os parâmetros informados."},
		{"missing column", &invoice.MissingColumnError{Column: "NOME"}, "Erro ao processar o arquivo: coluna obrigatória ausente: NOME"},
		{"unsupported", fmt.Errorf("%w: .txt", spreadsheet.ErrUnsupportedFormat), "Erro ao processar o arquivo: formato de arquivo não suportado: .txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, failWith(tt.err), nil)

			rec := postForm(s, formValues("janeiro", "1999", "500"))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain"))
			assert.Equal(t, tt.want, rec.Body.String())
		})
	}
}

func TestHandlers_DownloadPassesFormFields(t *testing.T) {
	svc := failWith(invoice.ErrNoRows)
	s := newTestServer(t, svc, nil)

	postForm(s, formValues(" Janeiro ", " 2026 ", " 500 "))

	assert.Equal(t, " Janeiro ", svc.lastRequest.Month)
	assert.Equal(t, " 2026 ", svc.lastRequest.Year)
	assert.Equal(t, " 500 ", svc.lastRequest.FunctionalID)
	assert.NotEmpty(t, svc.lastRequest.ClientIP)
}

func TestHandlers_DownloadPDF(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, "2026"), 0755))
	csv := "NR_FUNCIONAL;DATA_REALIZACAO;NOME;TITULAR;MM_REFERENCIA;SERVICO;QUANTIDADE;PRESTADOR;VALOR_COM_TAXA_FM\n" +
		"500;2026-01-05;JOAO DA SILVA;MARIA DA SILVA;1;CONSULTA;1;CLINICA;10,50\n" +
		"500;2026-01-06;JOAO DA SILVA;MARIA DA SILVA;1;EXAME;1;LABORATORIO;abc\n"
	require.NoError(t, os.WriteFile(filepath.Join(base, "2026", "fatura_coparticipacao_janeiro_2026.csv"), []byte(csv), 0644))

	logger := zap.NewNop()
	locator, err := storage.NewInvoiceLocator(storage.LocatorConfig{BaseDir: base}, logger)
	require.NoError(t, err)
	reader, err := spreadsheet.NewReader(spreadsheet.DefaultOptions(), logger)
	require.NoError(t, err)
	svc := service.NewInvoiceService(locator, reader, report.NewAssembler(report.DefaultStyle(), nil, logger),
		nil, nil, service.InvoiceServiceConfig{}, logger)

	s := newTestServer(t, svc, nil)

	t.Run("attachment", func(t *testing.T) {
		rec := postForm(s, formValues("Janeiro", "2026", "500"))

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
		assert.Equal(t, "attachment; filename=fatura_500_janeiro.pdf", rec.Header().Get("Content-Disposition"))
		assert.Equal(t, "1", rec.Header().Get(WarningsHeader))

		data, err := io.ReadAll(rec.Body)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

		ins, err := report.Inspect(data)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, ins.Pages, 1)
		assert.True(t, ins.Contains("500", "Janeiro", "R$ 10.50"))
	})

	t.Run("month without file", func(t *testing.T) {
		rec := postForm(s, formValues("dezembro", "2026", "500"))
		assert.Equal(t, service.MsgFileNotFound, rec.Body.String())
	})

	t.Run("unknown identifier", func(t *testing.T) {
		rec := postForm(s, formValues("janeiro", "2026", "999"))
		assert.Equal(t, service.MsgNoData, rec.Body.String())
	})
}

func TestHandlers_Health(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		s := newTestServer(t, failWith(nil), fakeHealth{healthy: true})
		rec := httptest.NewRecorder()
		s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
	})

	t.Run("unhealthy", func(t *testing.T) {
		s := newTestServer(t, failWith(nil), fakeHealth{healthy: false})
		rec := httptest.NewRecorder()
		s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestHandlers_API(t *testing.T) {
	svc := failWith(nil)
	svc.downloads = []*entity.DownloadRecord{{ID: 1, FunctionalID: "500", Status: entity.DownloadStatusGenerated}}
	s := newTestServer(t, svc, nil)

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	t.Run("months", func(t *testing.T) {
		rec := get("/api/v1/months/2026")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"months":["janeiro","marco"]`)
	})

	t.Run("months of unknown year", func(t *testing.T) {
		svc.monthsErr = storage.ErrYearDirNotFound
		defer func() { svc.monthsErr = nil }()

		rec := get("/api/v1/months/1999")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("years", func(t *testing.T) {
		rec := get("/api/v1/years")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"years":["2026","2025"]`)
	})

	t.Run("downloads", func(t *testing.T) {
		rec := get("/api/v1/downloads?limit=5")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"functional_id":"500"`)
	})

	t.Run("downloads with bad limit", func(t *testing.T) {
		rec := get("/api/v1/downloads?limit=abc")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("metrics", func(t *testing.T) {
		get("/health")
		rec := get("/metrics")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "fatura_http_requests_total")
	})
}
