package workers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/sudmegaphone/backend/internal/queue"
	"github.com/sudmegaphone/backend/internal/security"
)

type SecurityWorker struct {
	securitySvc *security.Service
}

func NewSecurityWorker(securitySvc *security.Service) *SecurityWorker {
	return &SecurityWorker{securitySvc: securitySvc}
}

func (w *SecurityWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.SecurityEventPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	var userID *uuid.UUID
	if payload.UserID != "" {
		id, err := uuid.Parse(payload.UserID)
		if err != nil {
			return fmt.Errorf("parse user ID: %w", err)
		}
		userID = &id
	}

	return w.securitySvc.Record(ctx, payload.EventType, userID, payload.RemoteIP, payload.Details)
}
