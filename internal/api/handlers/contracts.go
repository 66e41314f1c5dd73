package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/sudmegaphone/backend/internal/client"
	"github.com/sudmegaphone/backend/internal/contract"
)

type ContractHandler struct {
	svc *contract.Service
}

func NewContractHandler(svc *contract.Service) *ContractHandler {
	return &ContractHandler{svc: svc}
}

// Generate stamps a client's data onto a template and serves the PDF.
// ?mode=inline shows it in the browser for preview, the default is a
// download with a dated filename.
func (h *ContractHandler) Generate(w http.ResponseWriter, r *http.Request) {
	templateID, err := uuid.Parse(r.URL.Query().Get("template_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "template_id invalide")
		return
	}
	clientID, err := uuid.Parse(r.URL.Query().Get("client_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "client_id invalide")
		return
	}

	data, err := h.svc.Generate(r.Context(), templateID, clientID)
	if errors.Is(err, contract.ErrTemplateNotFound) || errors.Is(err, client.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	disposition := "attachment"
	if r.URL.Query().Get("mode") == "inline" {
		disposition = "inline"
	}
	filename := fmt.Sprintf("contrat-%s.pdf", time.Now().Format("20060102-150405"))

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
