package models

import (
	"time"

	"github.com/google/uuid"
)

// Client is a traveler/client registered at a checkpoint. The document
// number lives in the numero_passeport column for every document type,
// historical naming kept for compatibility with the existing tables.
type Client struct {
	ID                uuid.UUID  `json:"id" db:"id"`
	Nom               string     `json:"nom" db:"nom"`
	Prenom            string     `json:"prenom" db:"prenom"`
	Nationalite       string     `json:"nationalite" db:"nationalite"`
	NumeroPasseport   string     `json:"numero_passeport" db:"numero_passeport"`
	DateNaissance     string     `json:"date_naissance,omitempty" db:"date_naissance"`
	DateExpiration    string     `json:"date_expiration,omitempty" db:"date_expiration"`
	Telephone         string     `json:"telephone,omitempty" db:"telephone"`
	CodeBarre         string     `json:"code_barre,omitempty" db:"code_barre"`
	PhotoURL          string     `json:"photo_url,omitempty" db:"photo_url"`
	CodeBarreImageURL string     `json:"code_barre_image_url,omitempty" db:"code_barre_image_url"`
	Observations      string     `json:"observations,omitempty" db:"observations"`
	PointOperation    string     `json:"point_operation" db:"point_operation"`
	Categorie         string     `json:"categorie,omitempty" db:"categorie"`
	DocumentType      string     `json:"document_type" db:"document_type"`
	AgentID           *uuid.UUID `json:"agent_id,omitempty" db:"agent_id"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}

// Document types accepted at registration.
const (
	DocTypeCIN               = "cin"
	DocTypeCarteSejour       = "carte_sejour"
	DocTypePasseportMarocain = "passeport_marocain"
	DocTypePasseportEtranger = "passeport_etranger"
)

func ValidDocumentType(t string) bool {
	switch t {
	case DocTypeCIN, DocTypeCarteSejour, DocTypePasseportMarocain, DocTypePasseportEtranger:
		return true
	}
	return false
}
