package models

import (
	"strings"
	"time"
)

// Import kinds
const (
	ImportKindItems     = "items"
	ImportKindCustomers = "customers"
)

// Import batch statuses
const (
	ImportStatusPending             = "pending"
	ImportStatusProcessing          = "processing"
	ImportStatusCompleted           = "completed"
	ImportStatusCompletedWithErrors = "completed_with_errors"
	ImportStatusFailed              = "failed"
)

// ImportBatch tracks one uploaded spreadsheet and its outcome
type ImportBatch struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	GUID         string     `gorm:"column:guid;size:36;not null;uniqueIndex" json:"guid"`
	Kind         string     `gorm:"size:20;not null;index" json:"kind"`
	Filename     string     `gorm:"size:255;not null" json:"filename"`
	StoredPath   string     `gorm:"size:500" json:"stored_path"`
	Status       string     `gorm:"size:30;not null;default:pending" json:"status"`
	TotalRows    int        `json:"total_rows"`
	ImportedRows int        `json:"imported_rows"`
	FailedRows   int        `json:"failed_rows"`
	Errors       string     `gorm:"type:text" json:"-"`
	CreatedBy    string     `gorm:"size:100" json:"created_by"`
	CompletedAt  *time.Time `json:"completed_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName specifies the table name for ImportBatch
func (ImportBatch) TableName() string {
	return "import_batches"
}

// MayStart returns true if processing can begin
func (b *ImportBatch) MayStart() bool {
	return b.Status == ImportStatusPending
}

// MayFinish returns true if the batch is being processed
func (b *ImportBatch) MayFinish() bool {
	return b.Status == ImportStatusProcessing
}

// IsFinal returns true once the batch reached a terminal status
func (b *ImportBatch) IsFinal() bool {
	switch b.Status {
	case ImportStatusCompleted, ImportStatusCompletedWithErrors, ImportStatusFailed:
		return true
	}
	return false
}

// SetErrors stores row errors, one per line
func (b *ImportBatch) SetErrors(errs []string) {
	b.Errors = strings.Join(errs, "\n")
}

// ErrorList returns the stored row errors
func (b *ImportBatch) ErrorList() []string {
	if b.Errors == "" {
		return []string{}
	}
	return strings.Split(b.Errors, "\n")
}

// ImportBatchResponse is the JSON response format for import batches
type ImportBatchResponse struct {
	ID           uint       `json:"id"`
	GUID         string     `json:"guid"`
	Kind         string     `json:"kind"`
	Filename     string     `json:"filename"`
	Status       string     `json:"status"`
	TotalRows    int        `json:"total_rows"`
	ImportedRows int        `json:"imported_rows"`
	FailedRows   int        `json:"failed_rows"`
	Errors       []string   `json:"errors"`
	CreatedBy    string     `json:"created_by"`
	CompletedAt  *time.Time `json:"completed_at"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ToResponse converts ImportBatch to ImportBatchResponse
func (b *ImportBatch) ToResponse() ImportBatchResponse {
	return ImportBatchResponse{
		ID:           b.ID,
		GUID:         b.GUID,
		Kind:         b.Kind,
		Filename:     b.Filename,
		Status:       b.Status,
		TotalRows:    b.TotalRows,
		ImportedRows: b.ImportedRows,
		FailedRows:   b.FailedRows,
		Errors:       b.ErrorList(),
		CreatedBy:    b.CreatedBy,
		CompletedAt:  b.CompletedAt,
		CreatedAt:    b.CreatedAt,
	}
}
