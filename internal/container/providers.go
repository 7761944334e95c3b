// Package container wires the invoice pipeline from configuration and owns
// the lifecycle of its resources.
package container

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/drh-piracicaba/fatura-coparticipacao/internal/config"
	"github.com/drh-piracicaba/fatura-coparticipacao/internal/report"
	"github.com/drh-piracicaba/fatura-coparticipacao/internal/repository"
	"github.com/drh-piracicaba/fatura-coparticipacao/internal/spreadsheet"
	"github.com/drh-piracicaba/fatura-coparticipacao/internal/storage"
	"github.com/drh-piracicaba/fatura-coparticipacao/pkg/database"
)

// LedgerBundle holds the download ledger components
type LedgerBundle struct {
	DB        *database.DB
	Downloads *repository.DownloadRepository
}

// PipelineBundle holds the stages of invoice generation
type PipelineBundle struct {
	Locator   *storage.InvoiceLocator
	Reader    *spreadsheet.Reader
	Assembler *report.Assembler
}

// ProvideLedger opens the database, applies the embedded migrations and
// creates the download repository
func ProvideLedger(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*LedgerBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	db, err := database.Open(ctx, cfg.DatabaseOptions(), logger)
	if err != nil {
		return nil, err
	}

	return &LedgerBundle{
		DB:        db,
		Downloads: repository.NewDownloadRepository(db.DB, logger),
	}, nil
}

// ProvidePipeline creates the file resolver, the tabular reader and the report assembler
func ProvidePipeline(cfg *config.Config, logger *zap.Logger) (*PipelineBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	locator, err := storage.NewInvoiceLocator(cfg.LocatorConfig(), logger.Named("locator"))
	if err != nil {
		return nil, fmt.Errorf("failed to create invoice locator: %w", err)
	}

	reader, err := spreadsheet.NewReader(cfg.ReaderOptions(), logger.Named("reader"))
	if err != nil {
		return nil, fmt.Errorf("failed to create spreadsheet reader: %w", err)
	}

	assembler := report.NewAssembler(report.DefaultStyle(), cfg.FooterLines(), logger.Named("report"))

	return &PipelineBundle{
		Locator:   locator,
		Reader:    reader,
		Assembler: assembler,
	}, nil
}
