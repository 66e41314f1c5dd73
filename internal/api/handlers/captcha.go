package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sudmegaphone/backend/internal/captcha"
	"github.com/sudmegaphone/backend/internal/models"
	"github.com/sudmegaphone/backend/internal/queue"
)

type CaptchaHandler struct {
	verifier    *captcha.Verifier
	settings    *captcha.SettingsService
	queueClient *queue.Client
}

func NewCaptchaHandler(verifier *captcha.Verifier, settings *captcha.SettingsService, qc *queue.Client) *CaptchaHandler {
	return &CaptchaHandler{verifier: verifier, settings: settings, queueClient: qc}
}

type verifyRequest struct {
	Token string `json:"token"`
}

// Verify lets the front-end pre-check a token before the actual submit.
func (h *CaptchaHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "corps de requête invalide")
		return
	}

	res, err := h.verifier.Verify(r.Context(), req.Token, r.RemoteAddr)
	if err != nil {
		writeError(w, http.StatusBadGateway, "vérification de sécurité indisponible")
		return
	}

	if !res.OK {
		event := models.EventCaptchaFailed
		if res.Reason == "score below threshold" {
			event = models.EventCaptchaLow
		}
		if err := h.queueClient.EnqueueSecurityEvent(queue.SecurityEventPayload{
			EventType: event,
			RemoteIP:  r.RemoteAddr,
			Details:   map[string]any{"score": res.Score, "reason": res.Reason},
		}); err != nil {
			slog.Error("enqueue security event", "error", err)
		}
	}

	writeJSON(w, http.StatusOK, res)
}

// PublicSettings exposes only what the front-end needs to render the
// widget: whether the check is on and the public site key.
func (h *CaptchaHandler) PublicSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.Get(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "erreur interne")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"captcha_enabled": settings.CaptchaEnabled,
		"site_key":        settings.SiteKey,
	})
}

func (h *CaptchaHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.Get(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

type updateSettingsRequest struct {
	CaptchaEnabled bool    `json:"captcha_enabled"`
	SiteKey        string  `json:"site_key"`
	MinScore       float64 `json:"min_score"`
}

func (h *CaptchaHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req updateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "corps de requête invalide")
		return
	}
	if req.MinScore < 0 || req.MinScore > 1 {
		writeError(w, http.StatusBadRequest, "min_score doit être entre 0 et 1")
		return
	}

	settings, err := h.settings.Update(r.Context(), req.CaptchaEnabled, req.SiteKey, req.MinScore)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, settings)
}
