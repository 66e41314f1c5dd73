package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sudmegaphone/backend/internal/captcha"
	"github.com/sudmegaphone/backend/internal/client"
	"github.com/sudmegaphone/backend/internal/extract"
	"github.com/sudmegaphone/backend/internal/models"
	"github.com/sudmegaphone/backend/internal/queue"
)

type ClientHandler struct {
	svc         *client.Service
	verifier    *captcha.Verifier
	settings    *captcha.SettingsService
	queueClient *queue.Client
}

func NewClientHandler(svc *client.Service, verifier *captcha.Verifier, settings *captcha.SettingsService, qc *queue.Client) *ClientHandler {
	return &ClientHandler{svc: svc, verifier: verifier, settings: settings, queueClient: qc}
}

type publicSubmitRequest struct {
	client.CreateRequest
	CaptchaToken string `json:"captcha_token"`
}

// SubmitPublic is the traveler-facing registration submit. It is not
// authenticated, so it is gated on the bot-protection check when that is
// enabled in the security settings.
func (h *ClientHandler) SubmitPublic(w http.ResponseWriter, r *http.Request) {
	var req publicSubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "corps de requête invalide")
		return
	}

	settings, err := h.settings.Get(r.Context())
	if err != nil {
		slog.Error("load security settings", "error", err)
		writeError(w, http.StatusInternalServerError, "erreur interne")
		return
	}

	if settings.CaptchaEnabled {
		res, err := h.verifier.Verify(r.Context(), req.CaptchaToken, r.RemoteAddr)
		if err != nil {
			slog.Error("captcha verification", "error", err)
			writeError(w, http.StatusBadGateway, "vérification de sécurité indisponible")
			return
		}
		// The admin-tuned threshold can be stricter than the static one.
		if res.OK && res.Score < settings.MinScore {
			res.OK = false
			res.Reason = "score below threshold"
		}
		if !res.OK {
			h.recordEvent(eventForCaptcha(res), r.RemoteAddr, map[string]any{
				"score":  res.Score,
				"reason": res.Reason,
			})
			writeError(w, http.StatusForbidden, "vérification de sécurité échouée, veuillez réessayer")
			return
		}
	}

	h.create(w, r, req.CreateRequest)
}

// Create is the authenticated agent-side variant, no captcha involved.
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req client.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "corps de requête invalide")
		return
	}
	h.create(w, r, req)
}

func (h *ClientHandler) create(w http.ResponseWriter, r *http.Request, req client.CreateRequest) {
	c, err := h.svc.Create(r.Context(), req)
	if errors.Is(err, client.ErrDuplicateDocument) {
		h.recordEvent(models.EventDuplicateDoc, r.RemoteAddr, map[string]any{
			"numero_document": req.NumeroPasseport,
		})
		writeError(w, http.StatusConflict, client.ErrDuplicateDocument.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, c)
}

func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	clients, err := h.svc.List(r.Context(), client.ListFilter{
		PointOperation: q.Get("point_operation"),
		DocumentType:   q.Get("document_type"),
		Search:         q.Get("search"),
		Limit:          limit,
		Offset:         offset,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"clients": clients, "count": len(clients)})
}

func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "identifiant de client invalide")
		return
	}

	c, err := h.svc.GetByID(r.Context(), id)
	if errors.Is(err, client.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, c)
}

func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "identifiant de client invalide")
		return
	}

	var req client.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "corps de requête invalide")
		return
	}

	c, err := h.svc.Update(r.Context(), id, req)
	if errors.Is(err, client.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, c)
}

func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "identifiant de client invalide")
		return
	}

	if err := h.svc.Delete(r.Context(), id); errors.Is(err, client.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	} else if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type mergeRequest struct {
	Client       models.Client  `json:"client"`
	Fields       extract.Fields `json:"fields"`
	DocumentType string         `json:"document_type"`
}

// Merge previews an OCR merge into a form in progress, without writing
// anything. The front-end shows the result before the agent saves.
func (h *ClientHandler) Merge(w http.ResponseWriter, r *http.Request) {
	var req mergeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "corps de requête invalide")
		return
	}

	merged := client.MergeExtracted(req.Client, req.Fields, req.DocumentType, time.Now())
	writeJSON(w, http.StatusOK, merged)
}

// ExportCSV streams a filtered client listing as a CSV download.
func (h *ClientHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	clients, err := h.svc.List(r.Context(), client.ListFilter{
		PointOperation: q.Get("point_operation"),
		DocumentType:   q.Get("document_type"),
		Search:         q.Get("search"),
		Limit:          10000,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	data, err := client.ExportCSV(clients)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	filename := fmt.Sprintf("clients-%s.csv", time.Now().Format("20060102-150405"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *ClientHandler) recordEvent(eventType, remoteIP string, details map[string]any) {
	err := h.queueClient.EnqueueSecurityEvent(queue.SecurityEventPayload{
		EventType: eventType,
		RemoteIP:  remoteIP,
		Details:   details,
	})
	if err != nil {
		slog.Error("enqueue security event", "event_type", eventType, "error", err)
	}
}

func eventForCaptcha(res captcha.Result) string {
	if res.Reason == "score below threshold" {
		return models.EventCaptchaLow
	}
	return models.EventCaptchaFailed
}
