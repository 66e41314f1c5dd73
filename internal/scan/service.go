// Package scan orchestrates the document pipeline: compression, optional
// PDF text-layer shortcut, OCR, and field extraction.
package scan

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sudmegaphone/backend/internal/account"
	"github.com/sudmegaphone/backend/internal/extract"
	"github.com/sudmegaphone/backend/internal/imaging"
	"github.com/sudmegaphone/backend/internal/models"
	"github.com/sudmegaphone/backend/internal/ocr"
	"github.com/sudmegaphone/backend/internal/storage"
	"github.com/sudmegaphone/backend/pkg/textextract"
)

var ErrNotFound = errors.New("scan introuvable")

type Service struct {
	db      *pgxpool.Pool
	store   storage.ObjectStore
	bucket  string
	gateway *ocr.Gateway
	opts    imaging.Options
}

func NewService(db *pgxpool.Pool, store storage.ObjectStore, bucket string, gateway *ocr.Gateway) *Service {
	return &Service{
		db:      db,
		store:   store,
		bucket:  bucket,
		gateway: gateway,
		opts:    imaging.DefaultOptions(),
	}
}

// Result is what one pipeline pass produces.
type Result struct {
	RawText string         `json:"raw_text"`
	Fields  extract.Fields `json:"fields"`
}

// Process runs the full pipeline over one uploaded document. Compression
// failures fall back to the original bytes; a PDF with a usable text
// layer skips the OCR round-trip.
func (s *Service) Process(ctx context.Context, data []byte, mimeType string) (*Result, error) {
	rawText, err := s.recognize(ctx, data, mimeType)
	if err != nil {
		return nil, err
	}

	return &Result{
		RawText: rawText,
		Fields:  extract.All(rawText),
	}, nil
}

func (s *Service) recognize(ctx context.Context, data []byte, mimeType string) (string, error) {
	if strings.Contains(mimeType, "pdf") {
		extracted, err := textextract.FromPDF(bytes.NewReader(data), int64(len(data)))
		if err == nil && extracted.Usable() {
			slog.Info("pdf text layer used, ocr skipped", "pages", extracted.Pages, "chars", len(extracted.Content))
			return extracted.Content, nil
		}
		// Scanned PDF without a text layer goes through OCR like an image.
	}

	compressed, err := imaging.Compress(data, s.opts)
	if err != nil {
		slog.Warn("image compression failed, sending original", "error", err)
		compressed = data
	} else if len(compressed) < len(data) {
		mimeType = "image/jpeg"
	}

	return s.gateway.Recognize(ctx, compressed, mimeType)
}

// CreateStored uploads the document to storage and inserts a pending scan
// row for asynchronous processing.
func (s *Service) CreateStored(ctx context.Context, docType, fileType string, data io.Reader) (*models.Scan, error) {
	if !models.ValidDocumentType(docType) {
		return nil, fmt.Errorf("type de document inconnu: %s", docType)
	}

	id := uuid.New()
	path := fmt.Sprintf("%s/%s", id, time.Now().Format("20060102150405"))

	if err := s.store.Upload(ctx, s.bucket, path, data, fileType); err != nil {
		return nil, fmt.Errorf("upload scan: %w", err)
	}

	createdBy := account.UserIDFromContext(ctx)

	var sc models.Scan
	err := s.db.QueryRow(ctx,
		`INSERT INTO scans (id, document_type, file_path, file_type, status, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, document_type, file_path, file_type, status, raw_text, extracted, error_message, created_by, created_at`,
		id, docType, path, fileType, models.ScanStatusPending, createdBy,
	).Scan(scanColumns(&sc)...)
	if err != nil {
		return nil, fmt.Errorf("insert scan: %w", err)
	}
	return &sc, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.Scan, error) {
	var sc models.Scan
	err := s.db.QueryRow(ctx,
		`SELECT id, document_type, file_path, file_type, status, raw_text, extracted, error_message, created_by, created_at
		 FROM scans WHERE id = $1`,
		id,
	).Scan(scanColumns(&sc)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get scan: %w", err)
	}
	return &sc, nil
}

// ProcessStored is the worker entry point: download the stored document,
// run the pipeline, persist the outcome on the scan row.
func (s *Service) ProcessStored(ctx context.Context, id uuid.UUID) error {
	sc, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.setStatus(ctx, id, models.ScanStatusProcessing, ""); err != nil {
		return err
	}

	rc, err := s.store.Download(ctx, s.bucket, sc.FilePath)
	if err != nil {
		s.fail(ctx, id, fmt.Errorf("download scan: %w", err))
		return fmt.Errorf("download scan: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		s.fail(ctx, id, fmt.Errorf("read scan: %w", err))
		return fmt.Errorf("read scan: %w", err)
	}

	result, err := s.Process(ctx, data, sc.FileType)
	if err != nil {
		s.fail(ctx, id, err)
		return err
	}

	extracted, err := json.Marshal(result.Fields)
	if err != nil {
		extracted = []byte("{}")
	}

	_, err = s.db.Exec(ctx,
		`UPDATE scans SET status = $2, raw_text = $3, extracted = $4, error_message = '' WHERE id = $1`,
		id, models.ScanStatusReady, result.RawText, extracted,
	)
	if err != nil {
		return fmt.Errorf("store scan result: %w", err)
	}
	return nil
}

func (s *Service) setStatus(ctx context.Context, id uuid.UUID, status, errMsg string) error {
	_, err := s.db.Exec(ctx,
		`UPDATE scans SET status = $2, error_message = $3 WHERE id = $1`,
		id, status, errMsg,
	)
	if err != nil {
		return fmt.Errorf("update scan status: %w", err)
	}
	return nil
}

func (s *Service) fail(ctx context.Context, id uuid.UUID, cause error) {
	if err := s.setStatus(ctx, id, models.ScanStatusFailed, cause.Error()); err != nil {
		slog.Error("mark scan failed", "scan_id", id, "error", err)
	}
}

func scanColumns(sc *models.Scan) []any {
	return []any{
		&sc.ID, &sc.DocumentType, &sc.FilePath, &sc.FileType, &sc.Status,
		&sc.RawText, &sc.Extracted, &sc.ErrorMessage, &sc.CreatedBy, &sc.CreatedAt,
	}
}
