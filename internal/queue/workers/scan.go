package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/sudmegaphone/backend/internal/queue"
	"github.com/sudmegaphone/backend/internal/scan"
)

type ScanWorker struct {
	scanSvc *scan.Service
}

func NewScanWorker(scanSvc *scan.Service) *ScanWorker {
	return &ScanWorker{scanSvc: scanSvc}
}

func (w *ScanWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.ScanProcessPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	scanID, err := uuid.Parse(payload.ScanID)
	if err != nil {
		return fmt.Errorf("parse scan ID: %w", err)
	}

	slog.Info("processing scan", "scan_id", scanID)

	if err := w.scanSvc.ProcessStored(ctx, scanID); err != nil {
		return fmt.Errorf("process scan %s: %w", scanID, err)
	}

	slog.Info("scan processed", "scan_id", scanID)
	return nil
}
