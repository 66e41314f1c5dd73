package client

import (
	"fmt"
	"time"

	"github.com/sudmegaphone/backend/internal/extract"
	"github.com/sudmegaphone/backend/internal/models"
)

// MergeExtracted folds OCR results into an in-progress client record.
// A field is overwritten only when the extractor found a non-empty value;
// anything the agent already typed survives. Observations accumulate a
// provenance note instead of being replaced.
func MergeExtracted(c models.Client, f extract.Fields, docType string, now time.Time) models.Client {
	setIfFound(&c.Nom, f.Nom)
	setIfFound(&c.Prenom, f.Prenom)
	setIfFound(&c.NumeroPasseport, f.NumeroDocument)
	setIfFound(&c.DateNaissance, f.DateNaissance)
	setIfFound(&c.DateExpiration, f.DateExpiration)
	setIfFound(&c.Telephone, f.Telephone)
	setIfFound(&c.CodeBarre, f.CodeBarre)

	if f.Nationalite != "" {
		c.Nationalite = extract.NormalizeNationality(f.Nationalite)
	}

	note := fmt.Sprintf("Extraction OCR le %s, type de document %s", now.Format("02/01/2006 15:04"), docType)
	if c.Observations == "" {
		c.Observations = note
	} else {
		c.Observations += "\n" + note
	}

	return c
}

func setIfFound(dst *string, extracted string) {
	if extracted != "" {
		*dst = extracted
	}
}
