package queue

const (
	TypeScanProcess   = "scan:process"
	TypeSecurityEvent = "security:event"
)

type ScanProcessPayload struct {
	ScanID string `json:"scan_id"`
}

type SecurityEventPayload struct {
	EventType string         `json:"event_type"`
	UserID    string         `json:"user_id,omitempty"`
	RemoteIP  string         `json:"remote_ip,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}
