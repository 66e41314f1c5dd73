package client

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/sudmegaphone/backend/internal/models"
)

var csvHeader = []string{
	"nom", "prenom", "nationalite", "numero_document", "date_naissance",
	"date_expiration", "telephone", "point_operation", "categorie",
	"document_type", "created_at",
}

// ExportCSV renders a flat client summary for download.
func ExportCSV(clients []models.Client) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, c := range clients {
		row := []string{
			c.Nom, c.Prenom, c.Nationalite, c.NumeroPasseport, c.DateNaissance,
			c.DateExpiration, c.Telephone, c.PointOperation, c.Categorie,
			c.DocumentType, c.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
