package contract

import (
	"fmt"

	"github.com/sudmegaphone/backend/internal/models"
)

// FieldKind is the closed set of things a mapping can draw. The reserved
// strings used by the mapping configuration UI (code_barre_image,
// checkbox_*) are parsed once here so the stamper matches on a variant
// instead of sniffing strings.
type FieldKind int

const (
	TextField FieldKind = iota
	CheckboxField
	BarcodeImageField
)

// ResolvedMapping is a FieldMapping bound to one client record.
type ResolvedMapping struct {
	Kind     FieldKind
	Value    string // text to draw; empty means draw nothing
	Page     int
	X, Y     float64
	FontSize int
}

const barcodeImageField = "code_barre_image"

// ResolveMapping binds one field mapping to the record. An empty Value on
// a text or checkbox mapping means the field is simply skipped, which is
// distinct from an error.
func ResolveMapping(m models.FieldMapping, c *models.Client) (ResolvedMapping, error) {
	page := m.Page
	if page < 1 {
		page = 1
	}
	out := ResolvedMapping{
		Kind:     TextField,
		Page:     page,
		X:        m.X,
		Y:        m.Y,
		FontSize: m.FontSize,
	}
	if out.FontSize <= 0 {
		out.FontSize = 12
	}

	switch m.ClientField {
	case barcodeImageField:
		out.Kind = BarcodeImageField
		return out, nil
	case "checkbox_cin", "checkbox_passeport", "checkbox_titre_sejour":
		out.Kind = CheckboxField
		out.Value = checkboxMark(m.ClientField, c.DocumentType)
		return out, nil
	}

	v, err := clientFieldValue(m.ClientField, c)
	if err != nil {
		return out, err
	}
	if v == "" {
		v = m.DefaultValue
	}
	out.Value = v
	return out, nil
}

// checkboxMark resolves a checkbox pseudo-field to "X" or "" by comparing
// the record's document type against the fixed mapping table.
func checkboxMark(field, docType string) string {
	match := false
	switch field {
	case "checkbox_cin":
		match = docType == models.DocTypeCIN
	case "checkbox_passeport":
		match = docType == models.DocTypePasseportMarocain || docType == models.DocTypePasseportEtranger
	case "checkbox_titre_sejour":
		match = docType == models.DocTypeCarteSejour
	}
	if match {
		return "X"
	}
	return ""
}

func clientFieldValue(field string, c *models.Client) (string, error) {
	switch field {
	case "nom":
		return c.Nom, nil
	case "prenom":
		return c.Prenom, nil
	case "nom_complet":
		return c.Prenom + " " + c.Nom, nil
	case "nationalite":
		return c.Nationalite, nil
	case "numero_passeport", "numero_document":
		return c.NumeroPasseport, nil
	case "date_naissance":
		return c.DateNaissance, nil
	case "date_expiration":
		return c.DateExpiration, nil
	case "telephone":
		return c.Telephone, nil
	case "code_barre":
		return c.CodeBarre, nil
	case "observations":
		return c.Observations, nil
	case "point_operation":
		return c.PointOperation, nil
	case "categorie":
		return c.Categorie, nil
	case "document_type":
		return c.DocumentType, nil
	case "date_creation":
		return c.CreatedAt.Format("02/01/2006"), nil
	default:
		return "", fmt.Errorf("unknown client field %q", field)
	}
}
