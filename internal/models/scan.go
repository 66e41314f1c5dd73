package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Scan is one uploaded document image going through the OCR pipeline.
type Scan struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	DocumentType string          `json:"document_type" db:"document_type"`
	FilePath     string          `json:"file_path,omitempty" db:"file_path"`
	FileType     string          `json:"file_type,omitempty" db:"file_type"`
	Status       string          `json:"status" db:"status"`
	RawText      string          `json:"raw_text,omitempty" db:"raw_text"`
	Extracted    json.RawMessage `json:"extracted" db:"extracted"`
	ErrorMessage string          `json:"error_message,omitempty" db:"error_message"`
	CreatedBy    *uuid.UUID      `json:"created_by,omitempty" db:"created_by"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}

const (
	ScanStatusPending    = "pending"
	ScanStatusProcessing = "processing"
	ScanStatusReady      = "ready"
	ScanStatusFailed     = "failed"
)
