package port

import (
	"context"

	"github.com/drh-piracicaba/fatura-coparticipacao/internal/domain/entity"
)

// DownloadRepository defines persistence operations for the download ledger
type DownloadRepository interface {
	Create(ctx context.Context, record *entity.DownloadRecord) error
	ListRecent(ctx context.Context, limit int) ([]*entity.DownloadRecord, error)
	ListByFunctionalID(ctx context.Context, functionalID string, limit int) ([]*entity.DownloadRecord, error)
}
