package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/drh-piracicaba/fatura-coparticipacao/pkg/utils"
)

var (
	ErrYearDirNotFound = errors.New("diretório do ano não encontrado")
	ErrFileNotFound    = errors.New("arquivo da fatura não encontrado")
	ErrAmbiguousFile   = errors.New("mais de um arquivo corresponde ao mês")
)

// TieBreak decides the outcome when several files match the same month
type TieBreak string

const (
	// TieBreakLexicographic picks the first match in byte-wise name order
	TieBreakLexicographic TieBreak = "lexicographic"
	// TieBreakFail rejects the request with ErrAmbiguousFile
	TieBreakFail TieBreak = "fail"
)

// DefaultPrefix is the file name prefix of monthly co-participation spreadsheets
const DefaultPrefix = "fatura_coparticipacao_"

// LocatorConfig holds invoice file resolution settings
type LocatorConfig struct {
	BaseDir  string
	Prefix   string
	TieBreak TieBreak
}

// InvoiceLocator finds monthly spreadsheets under BaseDir/<year>/
type InvoiceLocator struct {
	cfg    LocatorConfig
	logger *zap.Logger
}

// NewInvoiceLocator creates a new InvoiceLocator
func NewInvoiceLocator(cfg LocatorConfig, logger *zap.Logger) (*InvoiceLocator, error) {
	if cfg.BaseDir == "" {
		return nil, fmt.Errorf("cannot create locator: empty base directory")
	}
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultPrefix
	}
	switch cfg.TieBreak {
	case "":
		cfg.TieBreak = TieBreakLexicographic
	case TieBreakLexicographic, TieBreakFail:
	default:
		return nil, fmt.Errorf("unknown tie-break policy: %q", cfg.TieBreak)
	}

	return &InvoiceLocator{
		cfg:    cfg,
		logger: logger,
	}, nil
}

// YearDir returns the directory of a year; the year must be four digits and the directory must exist
func (l *InvoiceLocator) YearDir(year string) (string, error) {
	if err := utils.ValidateYear(year); err != nil {
		return "", fmt.Errorf("%w: %s", ErrYearDirNotFound, year)
	}

	dir := filepath.Join(l.cfg.BaseDir, year)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrYearDirNotFound, year)
	}
	return dir, nil
}

// Candidates lists, in lexicographic order, every file of the year whose name starts
// with the prefix and contains the month token (case and accents ignored)
func (l *InvoiceLocator) Candidates(year, month string) ([]string, error) {
	dir, err := l.YearDir(year)
	if err != nil {
		return nil, err
	}

	token := utils.NormalizeMonthToken(month)
	if token == "" {
		return nil, fmt.Errorf("%w: empty month", ErrFileNotFound)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var matches []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, l.cfg.Prefix) {
			continue
		}
		if strings.Contains(utils.NormalizeMonthToken(name), token) {
			matches = append(matches, name)
		}
	}
	sort.Strings(matches)

	paths := make([]string, len(matches))
	for i, name := range matches {
		paths[i] = filepath.Join(dir, name)
	}
	return paths, nil
}

// Resolve returns the spreadsheet of a year and month, applying the tie-break policy
func (l *InvoiceLocator) Resolve(year, month string) (string, error) {
	paths, err := l.Candidates(year, month)
	if err != nil {
		return "", err
	}

	switch {
	case len(paths) == 0:
		return "", fmt.Errorf("%w: %s/%s", ErrFileNotFound, year, month)
	case len(paths) > 1 && l.cfg.TieBreak == TieBreakFail:
		l.logger.Warn("Ambiguous invoice file",
			zap.String("year", year),
			zap.String("month", month),
			zap.Strings("candidates", paths))
		return "", fmt.Errorf("%w: %s", ErrAmbiguousFile, strings.Join(baseNames(paths), ", "))
	case len(paths) > 1:
		l.logger.Warn("Several invoice files match, using the first in name order",
			zap.String("year", year),
			zap.String("month", month),
			zap.String("chosen", paths[0]),
			zap.Strings("candidates", paths))
	}

	l.logger.Debug("Resolved invoice file",
		zap.String("year", year),
		zap.String("month", month),
		zap.String("path", paths[0]))

	return paths[0], nil
}

// ListYears returns the four digit subdirectories of the base directory, newest first
func (l *InvoiceLocator) ListYears() ([]string, error) {
	entries, err := os.ReadDir(l.cfg.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", l.cfg.BaseDir, err)
	}

	var years []string
	for _, entry := range entries {
		if entry.IsDir() && utils.ValidateYear(entry.Name()) == nil {
			years = append(years, entry.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(years)))
	return years, nil
}

// ListMonths returns the month tokens, in the given order, that have at least one file in the year
func (l *InvoiceLocator) ListMonths(year string, months []string) ([]string, error) {
	if _, err := l.YearDir(year); err != nil {
		return nil, err
	}

	var available []string
	for _, month := range months {
		paths, err := l.Candidates(year, month)
		if err != nil {
			return nil, err
		}
		if len(paths) > 0 {
			available = append(available, month)
		}
	}
	return available, nil
}

func baseNames(paths []string) []string {
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}
	return names
}
