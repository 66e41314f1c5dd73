// Package contract manages PDF templates, their field mappings and the
// generation of stamped contract documents.
package contract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sudmegaphone/backend/internal/account"
	"github.com/sudmegaphone/backend/internal/client"
	"github.com/sudmegaphone/backend/internal/models"
	"github.com/sudmegaphone/backend/internal/storage"
)

var ErrTemplateNotFound = errors.New("modèle PDF introuvable")

type Service struct {
	db      *pgxpool.Pool
	store   storage.ObjectStore
	bucket  string
	clients *client.Service
	stamper *Stamper
}

func NewService(db *pgxpool.Pool, store storage.ObjectStore, bucket string, clients *client.Service) *Service {
	return &Service{
		db:      db,
		store:   store,
		bucket:  bucket,
		clients: clients,
		stamper: NewStamper(NewHTTPImageFetcher()),
	}
}

func (s *Service) UploadTemplate(ctx context.Context, name string, data io.Reader) (*models.PDFTemplate, error) {
	id := uuid.New()
	path := fmt.Sprintf("%s/%s.pdf", id, time.Now().Format("20060102"))

	if err := s.store.Upload(ctx, s.bucket, path, data, "application/pdf"); err != nil {
		return nil, fmt.Errorf("upload template: %w", err)
	}

	createdBy := account.UserIDFromContext(ctx)

	var t models.PDFTemplate
	err := s.db.QueryRow(ctx,
		`INSERT INTO pdf_templates (id, name, file_path, created_by)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, name, file_path, created_by, created_at`,
		id, name, path, createdBy,
	).Scan(&t.ID, &t.Name, &t.FilePath, &t.CreatedBy, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert template: %w", err)
	}
	return &t, nil
}

func (s *Service) GetTemplate(ctx context.Context, id uuid.UUID) (*models.PDFTemplate, error) {
	var t models.PDFTemplate
	err := s.db.QueryRow(ctx,
		`SELECT id, name, file_path, created_by, created_at FROM pdf_templates WHERE id = $1`,
		id,
	).Scan(&t.ID, &t.Name, &t.FilePath, &t.CreatedBy, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	return &t, nil
}

func (s *Service) ListTemplates(ctx context.Context) ([]models.PDFTemplate, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, name, file_path, created_by, created_at FROM pdf_templates ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []models.PDFTemplate
	for rows.Next() {
		var t models.PDFTemplate
		if err := rows.Scan(&t.ID, &t.Name, &t.FilePath, &t.CreatedBy, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func (s *Service) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	t, err := s.GetTemplate(ctx, id)
	if err != nil {
		return err
	}
	if t.FilePath != "" {
		_ = s.store.Delete(ctx, s.bucket, t.FilePath)
	}
	_, err = s.db.Exec(ctx, `DELETE FROM pdf_templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	return nil
}

type MappingRequest struct {
	Placeholder  string  `json:"placeholder"`
	ClientField  string  `json:"client_field"`
	Page         int     `json:"page"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	FontSize     int     `json:"font_size"`
	DefaultValue string  `json:"default_value"`
}

func (s *Service) SaveMappings(ctx context.Context, templateID uuid.UUID, reqs []MappingRequest) ([]models.FieldMapping, error) {
	if _, err := s.GetTemplate(ctx, templateID); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin mappings tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM field_mappings WHERE template_id = $1`, templateID); err != nil {
		return nil, fmt.Errorf("clear mappings: %w", err)
	}

	mappings := make([]models.FieldMapping, 0, len(reqs))
	for _, r := range reqs {
		var m models.FieldMapping
		err := tx.QueryRow(ctx,
			`INSERT INTO field_mappings (template_id, placeholder, client_field, page, x, y, font_size, default_value)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 RETURNING id, template_id, placeholder, client_field, page, x, y, font_size, default_value`,
			templateID, r.Placeholder, r.ClientField, max(r.Page, 1), r.X, r.Y, r.FontSize, r.DefaultValue,
		).Scan(&m.ID, &m.TemplateID, &m.Placeholder, &m.ClientField, &m.Page, &m.X, &m.Y, &m.FontSize, &m.DefaultValue)
		if err != nil {
			return nil, fmt.Errorf("insert mapping: %w", err)
		}
		mappings = append(mappings, m)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit mappings: %w", err)
	}
	return mappings, nil
}

func (s *Service) ListMappings(ctx context.Context, templateID uuid.UUID) ([]models.FieldMapping, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, template_id, placeholder, client_field, page, x, y, font_size, default_value
		 FROM field_mappings WHERE template_id = $1 ORDER BY page, y DESC`,
		templateID,
	)
	if err != nil {
		return nil, fmt.Errorf("list mappings: %w", err)
	}
	defer rows.Close()

	var mappings []models.FieldMapping
	for rows.Next() {
		var m models.FieldMapping
		if err := rows.Scan(&m.ID, &m.TemplateID, &m.Placeholder, &m.ClientField, &m.Page, &m.X, &m.Y, &m.FontSize, &m.DefaultValue); err != nil {
			return nil, fmt.Errorf("scan mapping: %w", err)
		}
		mappings = append(mappings, m)
	}
	return mappings, rows.Err()
}

// Generate stamps the client's data onto the template and returns the
// finished document bytes.
func (s *Service) Generate(ctx context.Context, templateID, clientID uuid.UUID) ([]byte, error) {
	t, err := s.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}

	record, err := s.clients.GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	mappings, err := s.ListMappings(ctx, templateID)
	if err != nil {
		return nil, err
	}

	rc, err := s.store.Download(ctx, s.bucket, t.FilePath)
	if err != nil {
		return nil, fmt.Errorf("download template: %w", err)
	}
	defer rc.Close()

	template, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}

	return s.stamper.Stamp(ctx, template, mappings, record, record.CodeBarreImageURL)
}
