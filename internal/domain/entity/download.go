package entity

import "time"

// Download outcome constants
const (
	DownloadStatusGenerated = "GENERATED"
	DownloadStatusNoData    = "NO_DATA"
	DownloadStatusNotFound  = "NOT_FOUND"
	DownloadStatusFailed    = "FAILED"
)

// DownloadRecord is one invoice generation attempt kept in the download ledger
type DownloadRecord struct {
	ID           int64     `json:"id"`
	FunctionalID string    `json:"functional_id"`
	Year         string    `json:"year"`
	Month        string    `json:"month"`
	SourceFile   string    `json:"source_file,omitempty"`
	LineCount    int       `json:"line_count"`
	Total        string    `json:"total"`
	WarningCount int       `json:"warning_count"`
	Status       string    `json:"status"`
	ErrorMessage string    `json:"error_message,omitempty"`
	ClientIP     string    `json:"client_ip,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
