// Package client owns traveler/client records: creation with duplicate
// pre-check, listing, updates and CSV export.
package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sudmegaphone/backend/internal/account"
	"github.com/sudmegaphone/backend/internal/models"
)

// ErrDuplicateDocument maps to a specific user-facing message instead of
// a generic database error.
var ErrDuplicateDocument = errors.New("un client avec ce numéro de document existe déjà")

var ErrNotFound = errors.New("client introuvable")

type Service struct {
	db       *pgxpool.Pool
	validate *validator.Validate
}

func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db, validate: validator.New()}
}

// CreateRequest carries the submitted registration form.
type CreateRequest struct {
	Nom               string `json:"nom" validate:"required"`
	Prenom            string `json:"prenom" validate:"required"`
	Nationalite       string `json:"nationalite"`
	NumeroPasseport   string `json:"numero_passeport" validate:"required,min=3"`
	DateNaissance     string `json:"date_naissance"`
	DateExpiration    string `json:"date_expiration"`
	Telephone         string `json:"telephone"`
	CodeBarre         string `json:"code_barre"`
	PhotoURL          string `json:"photo_url"`
	CodeBarreImageURL string `json:"code_barre_image_url"`
	Observations      string `json:"observations"`
	PointOperation    string `json:"point_operation" validate:"required"`
	Categorie         string `json:"categorie"`
	DocumentType      string `json:"document_type" validate:"required"`
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.Client, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("veuillez remplir les champs obligatoires: %w", err)
	}
	if !models.ValidDocumentType(req.DocumentType) {
		return nil, fmt.Errorf("type de document inconnu: %s", req.DocumentType)
	}

	// Pre-check before insert; the unique constraint is the backstop for
	// two submissions racing past this query.
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM clients WHERE numero_passeport = $1)`,
		req.NumeroPasseport,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check duplicate document: %w", err)
	}
	if exists {
		return nil, ErrDuplicateDocument
	}

	agentID := account.UserIDFromContext(ctx)

	var c models.Client
	err = s.db.QueryRow(ctx,
		`INSERT INTO clients (nom, prenom, nationalite, numero_passeport, date_naissance, date_expiration,
		                      telephone, code_barre, photo_url, code_barre_image_url, observations,
		                      point_operation, categorie, document_type, agent_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		 RETURNING id, nom, prenom, nationalite, numero_passeport, date_naissance, date_expiration,
		           telephone, code_barre, photo_url, code_barre_image_url, observations,
		           point_operation, categorie, document_type, agent_id, created_at, updated_at`,
		req.Nom, req.Prenom, req.Nationalite, req.NumeroPasseport, req.DateNaissance, req.DateExpiration,
		req.Telephone, req.CodeBarre, req.PhotoURL, req.CodeBarreImageURL, req.Observations,
		req.PointOperation, req.Categorie, req.DocumentType, agentID,
	).Scan(clientColumns(&c)...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateDocument
		}
		return nil, fmt.Errorf("insert client: %w", err)
	}

	return &c, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	var c models.Client
	err := s.db.QueryRow(ctx,
		`SELECT id, nom, prenom, nationalite, numero_passeport, date_naissance, date_expiration,
		        telephone, code_barre, photo_url, code_barre_image_url, observations,
		        point_operation, categorie, document_type, agent_id, created_at, updated_at
		 FROM clients WHERE id = $1`,
		id,
	).Scan(clientColumns(&c)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}
	return &c, nil
}

type ListFilter struct {
	PointOperation string
	DocumentType   string
	Search         string
	Limit          int
	Offset         int
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]models.Client, error) {
	if f.Limit <= 0 {
		f.Limit = 20
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, nom, prenom, nationalite, numero_passeport, date_naissance, date_expiration,
		        telephone, code_barre, photo_url, code_barre_image_url, observations,
		        point_operation, categorie, document_type, agent_id, created_at, updated_at
		 FROM clients
		 WHERE ($1 = '' OR point_operation = $1)
		   AND ($2 = '' OR document_type = $2)
		   AND ($3 = '' OR nom ILIKE '%' || $3 || '%' OR prenom ILIKE '%' || $3 || '%'
		        OR numero_passeport ILIKE '%' || $3 || '%')
		 ORDER BY created_at DESC LIMIT $4 OFFSET $5`,
		f.PointOperation, f.DocumentType, f.Search, f.Limit, f.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var clients []models.Client
	for rows.Next() {
		var c models.Client
		if err := rows.Scan(clientColumns(&c)...); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

type UpdateRequest struct {
	Nom               string `json:"nom" validate:"required"`
	Prenom            string `json:"prenom" validate:"required"`
	Nationalite       string `json:"nationalite"`
	DateNaissance     string `json:"date_naissance"`
	DateExpiration    string `json:"date_expiration"`
	Telephone         string `json:"telephone"`
	CodeBarre         string `json:"code_barre"`
	PhotoURL          string `json:"photo_url"`
	CodeBarreImageURL string `json:"code_barre_image_url"`
	Observations      string `json:"observations"`
	Categorie         string `json:"categorie"`
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*models.Client, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("veuillez remplir les champs obligatoires: %w", err)
	}

	var c models.Client
	err := s.db.QueryRow(ctx,
		`UPDATE clients SET nom = $2, prenom = $3, nationalite = $4, date_naissance = $5,
		        date_expiration = $6, telephone = $7, code_barre = $8, photo_url = $9,
		        code_barre_image_url = $10, observations = $11, categorie = $12, updated_at = now()
		 WHERE id = $1
		 RETURNING id, nom, prenom, nationalite, numero_passeport, date_naissance, date_expiration,
		           telephone, code_barre, photo_url, code_barre_image_url, observations,
		           point_operation, categorie, document_type, agent_id, created_at, updated_at`,
		id, req.Nom, req.Prenom, req.Nationalite, req.DateNaissance, req.DateExpiration,
		req.Telephone, req.CodeBarre, req.PhotoURL, req.CodeBarreImageURL, req.Observations, req.Categorie,
	).Scan(clientColumns(&c)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update client: %w", err)
	}
	return &c, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func clientColumns(c *models.Client) []any {
	return []any{
		&c.ID, &c.Nom, &c.Prenom, &c.Nationalite, &c.NumeroPasseport,
		&c.DateNaissance, &c.DateExpiration, &c.Telephone, &c.CodeBarre,
		&c.PhotoURL, &c.CodeBarreImageURL, &c.Observations,
		&c.PointOperation, &c.Categorie, &c.DocumentType, &c.AgentID,
		&c.CreatedAt, &c.UpdatedAt,
	}
}
