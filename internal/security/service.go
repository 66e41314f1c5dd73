// Package security records security-relevant events (captcha failures,
// auth failures, device checks) for later review.
package security

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sudmegaphone/backend/internal/models"
)

type Service struct {
	db *pgxpool.Pool
}

func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

func (s *Service) Record(ctx context.Context, eventType string, userID *uuid.UUID, remoteIP string, details map[string]any) error {
	payload, err := json.Marshal(details)
	if err != nil {
		payload = []byte("{}")
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO security_events (event_type, user_id, remote_ip, details) VALUES ($1, $2, $3, $4)`,
		eventType, userID, remoteIP, payload,
	)
	if err != nil {
		return fmt.Errorf("record security event: %w", err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, eventType string, limit int) ([]models.SecurityEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(ctx,
		`SELECT id, event_type, user_id, remote_ip, details, created_at
		 FROM security_events
		 WHERE ($1 = '' OR event_type = $1)
		 ORDER BY created_at DESC LIMIT $2`,
		eventType, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list security events: %w", err)
	}
	defer rows.Close()

	var events []models.SecurityEvent
	for rows.Next() {
		var e models.SecurityEvent
		if err := rows.Scan(&e.ID, &e.EventType, &e.UserID, &e.RemoteIP, &e.Details, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan security event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
