package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID `json:"id" db:"id"`
	Email          string    `json:"email" db:"email"`
	FullName       string    `json:"full_name" db:"full_name"`
	Role           string    `json:"role" db:"role"`
	PointOperation string    `json:"point_operation,omitempty" db:"point_operation"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

const (
	RoleAdmin = "admin"
	RoleAgent = "agent"
)
