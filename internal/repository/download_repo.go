package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/drh-piracicaba/fatura-coparticipacao/internal/domain/entity"
)

// DefaultListLimit caps listings when the caller passes a non-positive limit
const DefaultListLimit = 50

// DownloadRepository handles invoice_downloads database operations
type DownloadRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDownloadRepository creates a new download repository
func NewDownloadRepository(db *sql.DB, logger *zap.Logger) *DownloadRepository {
	return &DownloadRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a ledger record and sets its ID and, when unset, its creation time
func (r *DownloadRepository) Create(ctx context.Context, record *entity.DownloadRecord) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO invoice_downloads (
			functional_id, year, month, source_file, line_count, total,
			warning_count, status, error_message, client_ip, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		record.FunctionalID,
		record.Year,
		record.Month,
		record.SourceFile,
		record.LineCount,
		record.Total,
		record.WarningCount,
		record.Status,
		record.ErrorMessage,
		record.ClientIP,
		record.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create download record", zap.Error(err))
		return fmt.Errorf("failed to create download record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	record.ID = id
	return nil
}

// ListRecent returns the newest records first
func (r *DownloadRepository) ListRecent(ctx context.Context, limit int) ([]*entity.DownloadRecord, error) {
	query := `
		SELECT id, functional_id, year, month, source_file, line_count, total,
			warning_count, status, error_message, client_ip, created_at
		FROM invoice_downloads
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`
	return r.list(ctx, query, normalizeLimit(limit))
}

// ListByFunctionalID returns the newest records of one identifier first
func (r *DownloadRepository) ListByFunctionalID(ctx context.Context, functionalID string, limit int) ([]*entity.DownloadRecord, error) {
	query := `
		SELECT id, functional_id, year, month, source_file, line_count, total,
			warning_count, status, error_message, client_ip, created_at
		FROM invoice_downloads
		WHERE functional_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`
	return r.list(ctx, query, functionalID, normalizeLimit(limit))
}

func (r *DownloadRepository) list(ctx context.Context, query string, args ...interface{}) ([]*entity.DownloadRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list download records", zap.Error(err))
		return nil, fmt.Errorf("failed to list download records: %w", err)
	}
	defer rows.Close()

	var records []*entity.DownloadRecord
	for rows.Next() {
		var record entity.DownloadRecord
		err := rows.Scan(
			&record.ID,
			&record.FunctionalID,
			&record.Year,
			&record.Month,
			&record.SourceFile,
			&record.LineCount,
			&record.Total,
			&record.WarningCount,
			&record.Status,
			&record.ErrorMessage,
			&record.ClientIP,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan download record: %w", err)
		}
		records = append(records, &record)
	}

	return records, rows.Err()
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
