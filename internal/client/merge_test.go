package client

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sudmegaphone/backend/internal/extract"
	"github.com/sudmegaphone/backend/internal/models"
)

var mergeTime = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func TestMergeExtractedDoesNotClobberUserInput(t *testing.T) {
	form := models.Client{Nom: "Dupont", Telephone: "0611111111"}

	merged := MergeExtracted(form, extract.Fields{Nom: "", CodeBarre: "P=0425"}, models.DocTypeCIN, mergeTime)

	assert.Equal(t, "Dupont", merged.Nom, "empty extraction must not overwrite user input")
	assert.Equal(t, "0611111111", merged.Telephone)
	assert.Equal(t, "P=0425", merged.CodeBarre)
}

func TestMergeExtractedOverwritesWithFoundValues(t *testing.T) {
	form := models.Client{Nom: "Ancien"}

	merged := MergeExtracted(form, extract.Fields{
		Nom:            "Dupont",
		Prenom:         "Marie",
		NumeroDocument: "AB123456",
		DateNaissance:  "1999-01-01",
		Nationalite:    "morocco",
	}, models.DocTypePasseportEtranger, mergeTime)

	assert.Equal(t, "Dupont", merged.Nom)
	assert.Equal(t, "Marie", merged.Prenom)
	assert.Equal(t, "AB123456", merged.NumeroPasseport)
	assert.Equal(t, "1999-01-01", merged.DateNaissance)
	assert.Equal(t, "Maroc", merged.Nationalite, "nationality is normalized on merge")
}

func TestMergeExtractedAccumulatesObservations(t *testing.T) {
	form := models.Client{Observations: "note manuelle"}

	merged := MergeExtracted(form, extract.Fields{}, models.DocTypeCIN, mergeTime)

	assert.True(t, strings.HasPrefix(merged.Observations, "note manuelle\n"))
	assert.Contains(t, merged.Observations, "Extraction OCR le 15/03/2024")
	assert.Contains(t, merged.Observations, models.DocTypeCIN)

	// A second scan appends, never replaces.
	again := MergeExtracted(merged, extract.Fields{}, models.DocTypeCIN, mergeTime)
	assert.Equal(t, 3, len(strings.Split(again.Observations, "\n")))
}

func TestExportCSV(t *testing.T) {
	clients := []models.Client{
		{
			Nom: "Dupont", Prenom: "Marie", Nationalite: "France",
			NumeroPasseport: "AB123456", PointOperation: "aeroport_agadir",
			DocumentType: models.DocTypePasseportEtranger,
			CreatedAt:    mergeTime,
		},
	}

	out, err := ExportCSV(clients)
	assert.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "numero_document")
	assert.Contains(t, lines[1], "Dupont")
	assert.Contains(t, lines[1], "AB123456")
	assert.Contains(t, lines[1], "2024-03-15 10:30:00")
}
