package config

import (
	"github.com/drh-piracicaba/fatura-coparticipacao/internal/application/service"
	"github.com/drh-piracicaba/fatura-coparticipacao/internal/spreadsheet"
	"github.com/drh-piracicaba/fatura-coparticipacao/internal/storage"
	"github.com/drh-piracicaba/fatura-coparticipacao/pkg/database"
	"github.com/drh-piracicaba/fatura-coparticipacao/pkg/utils"
)

// LoggerOptions converts the logger section for utils.NewLogger
func (c *Config) LoggerOptions(service string) utils.LoggerConfig {
	return utils.LoggerConfig{
		Level:      c.Logger.Level,
		OutputPath: c.Logger.OutputPath,
		Format:     c.Logger.Format,
		Service:    service,
	}
}

// LocatorConfig converts the invoices section for the file resolver
func (c *Config) LocatorConfig() storage.LocatorConfig {
	return storage.LocatorConfig{
		BaseDir:  c.Invoices.BaseDir,
		Prefix:   c.Invoices.Prefix,
		TieBreak: storage.TieBreak(c.Invoices.TieBreak),
	}
}

// ReaderOptions converts the spreadsheet section for the tabular reader
func (c *Config) ReaderOptions() spreadsheet.Options {
	opts := spreadsheet.DefaultOptions()
	opts.Sheet = spreadsheet.SheetSelector{Name: c.Spreadsheet.Sheet, Index: c.Spreadsheet.SheetIndex}
	if c.Spreadsheet.CSVEncoding != "" {
		opts.CSVEncoding = c.Spreadsheet.CSVEncoding
	}
	for _, r := range c.Spreadsheet.CSVSeparator {
		opts.CSVComma = r
		break
	}
	return opts
}

// DatabaseOptions converts the database section for the download ledger
func (c *Config) DatabaseOptions() database.Config {
	return database.Config{
		Path:            c.Database.Path,
		MaxOpenConns:    c.Database.MaxOpenConns,
		MaxIdleConns:    c.Database.MaxIdleConns,
		ConnMaxLifetime: c.Database.ConnMaxLifetime,
	}
}

// ServiceConfig converts the listing and report settings for the invoice service
func (c *Config) ServiceConfig() service.InvoiceServiceConfig {
	return service.InvoiceServiceConfig{
		Years:  c.Invoices.Years,
		Months: c.Invoices.Months,
		Verify: c.Report.Verify,
	}
}

// FooterLines returns the configured footer, or nil for the default one
func (c *Config) FooterLines() []string {
	if len(c.Report.FooterLines) == 0 {
		return nil
	}
	return c.Report.FooterLines
}
