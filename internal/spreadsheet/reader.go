// Package spreadsheet loads monthly charge spreadsheets (.xls, .xlsx, .ods, .csv)
// into a uniform Table.
package spreadsheet

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"
)

// SheetSelector picks the worksheet to load from workbook formats.
// A non-empty Name wins over Index; the zero value selects the first sheet.
type SheetSelector struct {
	Name  string
	Index int
}

func (s SheetSelector) String() string {
	if s.Name != "" {
		return fmt.Sprintf("name=%q", s.Name)
	}
	return fmt.Sprintf("index=%d", s.Index)
}

// pick resolves the selector against the workbook's sheet names
func (s SheetSelector) pick(names []string) (int, error) {
	if s.Name != "" {
		for i, name := range names {
			if strings.EqualFold(strings.TrimSpace(name), strings.TrimSpace(s.Name)) {
				return i, nil
			}
		}
		return -1, fmt.Errorf("%w: %s", ErrSheetNotFound, s.Name)
	}
	if s.Index < 0 || s.Index >= len(names) {
		return -1, fmt.Errorf("%w: índice %d de %d", ErrSheetNotFound, s.Index, len(names))
	}
	return s.Index, nil
}

// Options holds reader configuration
type Options struct {
	Sheet       SheetSelector
	CSVEncoding string // utf-8, iso-8859-1 or windows-1252
	CSVComma    rune
}

// DefaultOptions returns the options used by the payroll department files
func DefaultOptions() Options {
	return Options{
		CSVEncoding: "utf-8",
		CSVComma:    ';',
	}
}

// Reader dispatches on file extension to the matching loader
type Reader struct {
	opts     Options
	encoding encoding.Encoding
	logger   *zap.Logger
}

// NewReader creates a new Reader, validating the configured CSV encoding
func NewReader(opts Options, logger *zap.Logger) (*Reader, error) {
	enc, err := lookupEncoding(opts.CSVEncoding)
	if err != nil {
		return nil, err
	}
	if opts.CSVComma == 0 {
		opts.CSVComma = ';'
	}
	return &Reader{
		opts:     opts,
		encoding: enc,
		logger:   logger,
	}, nil
}

// Read loads the file at path into a Table
func (r *Reader) Read(ctx context.Context, path string) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	r.logger.Debug("Reading spreadsheet",
		zap.String("path", path),
		zap.String("format", ext),
		zap.Stringer("sheet", r.opts.Sheet))

	var (
		table *Table
		err   error
	)
	switch ext {
	case "xls":
		table, err = readXLS(path, r.opts.Sheet)
	case "xlsx", "xlsm":
		table, err = readXLSX(path, r.opts.Sheet)
	case "ods":
		table, err = readODS(path, r.opts.Sheet)
	case "csv":
		table, err = readCSV(path, r.encoding, r.opts.CSVComma)
	default:
		return nil, fmt.Errorf("%w: .%s", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		r.logger.Error("Failed to read spreadsheet", zap.String("path", path), zap.Error(err))
		return nil, err
	}

	r.logger.Debug("Spreadsheet loaded",
		zap.String("path", path),
		zap.String("sheet", table.Sheet),
		zap.Int("rows", table.Len()))

	return table, nil
}

// SupportedExtensions lists the extensions Read accepts
func SupportedExtensions() []string {
	return []string{".xls", ".xlsx", ".xlsm", ".ods", ".csv"}
}
