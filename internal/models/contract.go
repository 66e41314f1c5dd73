package models

import (
	"time"

	"github.com/google/uuid"
)

// PDFTemplate is an uploaded contract template plus its storage location.
type PDFTemplate struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	FilePath  string     `json:"file_path" db:"file_path"`
	CreatedBy *uuid.UUID `json:"created_by,omitempty" db:"created_by"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// FieldMapping places one client field (or pseudo-field) on a template page.
// Coordinates are PDF points with the origin at the bottom-left corner.
type FieldMapping struct {
	ID           uuid.UUID `json:"id" db:"id"`
	TemplateID   uuid.UUID `json:"template_id" db:"template_id"`
	Placeholder  string    `json:"placeholder" db:"placeholder"`
	ClientField  string    `json:"client_field" db:"client_field"`
	Page         int       `json:"page" db:"page"`
	X            float64   `json:"x" db:"x"`
	Y            float64   `json:"y" db:"y"`
	FontSize     int       `json:"font_size" db:"font_size"`
	DefaultValue string    `json:"default_value,omitempty" db:"default_value"`
}
