package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SecuritySettings drives the bot-protection checks on the public endpoints.
type SecuritySettings struct {
	ID             int       `json:"id" db:"id"`
	CaptchaEnabled bool      `json:"captcha_enabled" db:"captcha_enabled"`
	SiteKey        string    `json:"site_key" db:"site_key"`
	MinScore       float64   `json:"min_score" db:"min_score"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

type SecurityEvent struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	EventType string          `json:"event_type" db:"event_type"`
	UserID    *uuid.UUID      `json:"user_id,omitempty" db:"user_id"`
	RemoteIP  string          `json:"remote_ip,omitempty" db:"remote_ip"`
	Details   json.RawMessage `json:"details" db:"details"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

const (
	EventCaptchaFailed = "captcha_failed"
	EventCaptchaLow    = "captcha_low_score"
	EventAuthFailed    = "auth_failed"
	EventDeviceCheck   = "device_check"
	EventDuplicateDoc  = "duplicate_document"
)
