package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/drh-piracicaba/fatura-coparticipacao/internal/application/port"
	"github.com/drh-piracicaba/fatura-coparticipacao/internal/domain/entity"
	"github.com/drh-piracicaba/fatura-coparticipacao/internal/infrastructure/metrics"
	"github.com/drh-piracicaba/fatura-coparticipacao/internal/invoice"
	"github.com/drh-piracicaba/fatura-coparticipacao/internal/report"
	"github.com/drh-piracicaba/fatura-coparticipacao/internal/storage"
	"github.com/drh-piracicaba/fatura-coparticipacao/pkg/utils"
)

// ErrVerificationFailed means the rendered document could not be reopened or misses the identifier
var ErrVerificationFailed = errors.New("documento gerado não passou na verificação")

// InvoiceRequest identifies one invoice: the spreadsheet of Year/Month filtered by FunctionalID
type InvoiceRequest struct {
	Year         string
	Month        string
	FunctionalID string
	ClientIP     string
}

// InvoiceResult is a rendered invoice ready for delivery
type InvoiceResult struct {
	FileName   string
	Document   *bytes.Reader
	Size       int64
	Pages      int
	Statement  *entity.Statement
	SourcePath string
}

// InvoiceService generates invoices and lists what can be generated
type InvoiceService interface {
	// Generate resolves, reads, filters and renders one invoice
	Generate(ctx context.Context, req InvoiceRequest) (*InvoiceResult, error)

	// Years lists the selectable years, newest first
	Years() ([]string, error)

	// Months lists the month tokens of a year that have a spreadsheet
	Months(year string) ([]string, error)

	// MonthOptions lists every configured month token, in display order
	MonthOptions() []string

	// RecentDownloads lists ledger records, newest first; empty when the ledger is disabled
	RecentDownloads(ctx context.Context, limit int) ([]*entity.DownloadRecord, error)
}

// InvoiceServiceConfig holds the listing and verification settings
type InvoiceServiceConfig struct {
	Years  []string // fixed year list; empty lists the year directories
	Months []string // month tokens, in display order
	Verify bool     // reopen every document before delivery
}

type invoiceServiceImpl struct {
	locator   port.SourceLocator
	reader    port.TableReader
	assembler port.DocumentAssembler
	downloads port.DownloadRepository
	metrics   *metrics.Metrics
	cfg       InvoiceServiceConfig
	logger    *zap.Logger
}

// NewInvoiceService creates a new InvoiceService. downloads and m may be nil.
func NewInvoiceService(
	locator port.SourceLocator,
	reader port.TableReader,
	assembler port.DocumentAssembler,
	downloads port.DownloadRepository,
	m *metrics.Metrics,
	cfg InvoiceServiceConfig,
	logger *zap.Logger,
) InvoiceService {
	if len(cfg.Months) == 0 {
		cfg.Months = invoice.FormMonths()
	}
	return &invoiceServiceImpl{
		locator:   locator,
		reader:    reader,
		assembler: assembler,
		downloads: downloads,
		metrics:   m,
		cfg:       cfg,
		logger:    logger,
	}
}

// Generate implements InvoiceService
func (s *invoiceServiceImpl) Generate(ctx context.Context, req InvoiceRequest) (*InvoiceResult, error) {
	start := time.Now()
	req.Year = strings.TrimSpace(req.Year)
	req.Month = strings.ToLower(strings.TrimSpace(req.Month))
	req.FunctionalID = strings.TrimSpace(req.FunctionalID)

	result, err := s.generate(ctx, req)

	status := Outcome(err)
	s.metrics.ObserveInvoice(strings.ToLower(status), time.Since(start))
	s.record(ctx, req, result, status, err)

	if err != nil {
		log := s.logger.Error
		if status != entity.DownloadStatusFailed {
			log = s.logger.Info
		}
		log("Invoice not generated",
			zap.String("year", req.Year),
			zap.String("month", req.Month),
			zap.String("functional_id", req.FunctionalID),
			zap.String("outcome", status),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Invoice generated",
		zap.String("year", req.Year),
		zap.String("month", req.Month),
		zap.String("functional_id", result.Statement.FunctionalID),
		zap.Int("lines", len(result.Statement.Lines)),
		zap.String("total", result.Statement.Total.StringFixed(2)),
		zap.Int("warnings", len(result.Statement.Warnings)),
		zap.Int64("bytes", result.Size),
		zap.Duration("elapsed", time.Since(start)))
	return result, nil
}

func (s *invoiceServiceImpl) generate(ctx context.Context, req InvoiceRequest) (*InvoiceResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stop := s.metrics.StageTimer(metrics.StageResolve)
	path, err := s.locator.Resolve(req.Year, req.Month)
	stop()
	if err != nil {
		return nil, err
	}

	stop = s.metrics.StageTimer(metrics.StageRead)
	table, err := s.reader.Read(ctx, path)
	stop()
	if err != nil {
		return &InvoiceResult{SourcePath: path}, err
	}

	stop = s.metrics.StageTimer(metrics.StageFilter)
	st, err := invoice.FilterTable(table, req.FunctionalID)
	stop()
	if err != nil {
		return &InvoiceResult{SourcePath: path}, err
	}

	s.metrics.AddParseWarnings(len(st.Warnings))
	for _, w := range st.Warnings {
		s.logger.Warn("Value replaced while building statement",
			zap.String("file", path),
			zap.Int("line", w.Line),
			zap.String("column", w.Column),
			zap.String("value", w.Value),
			zap.String("reason", w.Message))
	}

	stop = s.metrics.StageTimer(metrics.StageAssemble)
	doc, err := s.assembler.Assemble(st)
	stop()
	if err != nil {
		return &InvoiceResult{SourcePath: path, Statement: st}, err
	}

	result := &InvoiceResult{
		FileName:   FileName(st.FunctionalID, req.Month),
		Document:   doc,
		Size:       doc.Size(),
		Statement:  st,
		SourcePath: path,
	}

	if s.cfg.Verify {
		stop = s.metrics.StageTimer(metrics.StageVerify)
		pages, err := verify(doc, st)
		stop()
		if err != nil {
			return result, err
		}
		result.Pages = pages
	}
	return result, nil
}

// verify reopens the document and rewinds it for delivery
func verify(doc *bytes.Reader, st *entity.Statement) (int, error) {
	data, err := io.ReadAll(doc)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrVerificationFailed, err)
	}
	if _, err := doc.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrVerificationFailed, err)
	}

	ins, err := report.Inspect(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrVerificationFailed, err)
	}
	if ins.Pages < 1 || !ins.Contains(st.FunctionalID) {
		return 0, fmt.Errorf("%w: identificador %s ausente", ErrVerificationFailed, st.FunctionalID)
	}
	return ins.Pages, nil
}

func (s *invoiceServiceImpl) record(ctx context.Context, req InvoiceRequest, result *InvoiceResult, status string, genErr error) {
	if s.downloads == nil {
		return
	}

	rec := &entity.DownloadRecord{
		FunctionalID: req.FunctionalID,
		Year:         req.Year,
		Month:        req.Month,
		Total:        "0.00",
		Status:       status,
		ClientIP:     req.ClientIP,
	}
	if result != nil {
		rec.SourceFile = result.SourcePath
		if st := result.Statement; st != nil {
			rec.FunctionalID = st.FunctionalID
			rec.LineCount = len(st.Lines)
			rec.Total = st.Total.StringFixed(2)
			rec.WarningCount = len(st.Warnings)
		}
	}
	if genErr != nil && status == entity.DownloadStatusFailed {
		rec.ErrorMessage = genErr.Error()
	}

	// the ledger must not fail the download
	if err := s.downloads.Create(context.WithoutCancel(ctx), rec); err != nil {
		s.logger.Error("Failed to record download", zap.Error(err))
	}
}

// Years implements InvoiceService
func (s *invoiceServiceImpl) Years() ([]string, error) {
	if len(s.cfg.Years) > 0 {
		years := make([]string, len(s.cfg.Years))
		copy(years, s.cfg.Years)
		return years, nil
	}
	return s.locator.ListYears()
}

// Months implements InvoiceService
func (s *invoiceServiceImpl) Months(year string) ([]string, error) {
	return s.locator.ListMonths(strings.TrimSpace(year), s.cfg.Months)
}

// MonthOptions implements InvoiceService
func (s *invoiceServiceImpl) MonthOptions() []string {
	months := make([]string, len(s.cfg.Months))
	copy(months, s.cfg.Months)
	return months
}

// RecentDownloads implements InvoiceService
func (s *invoiceServiceImpl) RecentDownloads(ctx context.Context, limit int) ([]*entity.DownloadRecord, error) {
	if s.downloads == nil {
		return []*entity.DownloadRecord{}, nil
	}
	return s.downloads.ListRecent(ctx, limit)
}

// Outcome classifies a Generate error as a ledger status
func Outcome(err error) string {
	switch {
	case err == nil:
		return entity.DownloadStatusGenerated
	case errors.Is(err, invoice.ErrNoRows), errors.Is(err, invoice.ErrInvalidIdentifier), errors.Is(err, report.ErrNoData):
		return entity.DownloadStatusNoData
	case errors.Is(err, storage.ErrYearDirNotFound), errors.Is(err, storage.ErrFileNotFound):
		return entity.DownloadStatusNotFound
	default:
		return entity.DownloadStatusFailed
	}
}

// FileName is the attachment name of an invoice: fatura_<id>_<month>.pdf
func FileName(functionalID, month string) string {
	return fmt.Sprintf("fatura_%s_%s.pdf",
		storage.SanitizeFileName(functionalID),
		storage.SanitizeFileName(utils.NormalizeMonthToken(month)))
}
