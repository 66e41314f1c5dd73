package handlers

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sudmegaphone/backend/internal/models"
	"github.com/sudmegaphone/backend/internal/queue"
	"github.com/sudmegaphone/backend/internal/scan"
)

const maxScanUpload = 20 << 20 // 20MB

type ScanHandler struct {
	svc         *scan.Service
	queueClient *queue.Client
}

func NewScanHandler(svc *scan.Service, qc *queue.Client) *ScanHandler {
	return &ScanHandler{svc: svc, queueClient: qc}
}

// Extract runs the pipeline synchronously and returns the recognized
// fields in the response. The agent stays on the form while this runs.
func (h *ScanHandler) Extract(w http.ResponseWriter, r *http.Request) {
	data, _, fileType, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	result, err := h.svc.Process(r.Context(), data, fileType)
	if err != nil {
		writeError(w, http.StatusBadGateway, "échec de l'extraction: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Create stores the document and queues it for background processing.
func (h *ScanHandler) Create(w http.ResponseWriter, r *http.Request) {
	data, docType, fileType, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	sc, err := h.svc.CreateStored(r.Context(), docType, fileType, bytes.NewReader(data))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.queueClient.EnqueueScanProcess(queue.ScanProcessPayload{ScanID: sc.ID.String()}); err != nil {
		slog.Error("enqueue scan", "scan_id", sc.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "échec de la mise en file du traitement")
		return
	}

	writeJSON(w, http.StatusAccepted, sc)
}

func (h *ScanHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "identifiant de scan invalide")
		return
	}

	sc, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "scan introuvable")
		return
	}

	writeJSON(w, http.StatusOK, sc)
}

func (h *ScanHandler) Status(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "identifiant de scan invalide")
		return
	}

	sc, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "scan introuvable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"id": sc.ID.String(), "status": sc.Status, "error_message": sc.ErrorMessage})
}

func (h *ScanHandler) readUpload(w http.ResponseWriter, r *http.Request) (data []byte, docType, fileType string, ok bool) {
	if err := r.ParseMultipartForm(maxScanUpload); err != nil {
		writeError(w, http.StatusBadRequest, "formulaire multipart invalide")
		return nil, "", "", false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "fichier requis")
		return nil, "", "", false
	}
	defer file.Close()

	docType = r.FormValue("document_type")
	if docType == "" {
		docType = models.DocTypePasseportEtranger
	}
	if !models.ValidDocumentType(docType) {
		writeError(w, http.StatusBadRequest, "type de document inconnu: "+docType)
		return nil, "", "", false
	}

	// Read one byte past the limit so an oversized file is detected
	// instead of silently truncated.
	data, err = io.ReadAll(io.LimitReader(file, maxScanUpload+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "lecture du fichier impossible")
		return nil, "", "", false
	}
	if len(data) > maxScanUpload {
		writeError(w, http.StatusRequestEntityTooLarge, "fichier trop volumineux (20 Mo maximum)")
		return nil, "", "", false
	}

	fileType = header.Header.Get("Content-Type")
	if fileType == "" {
		fileType = "application/octet-stream"
	}
	return data, docType, fileType, true
}
