package models

import (
	"time"

	"github.com/google/uuid"
)

// DepartmentMessage is one line of a patient's thread with a hospital department.
type DepartmentMessage struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	DepartmentID string    `json:"department_id"`
	Mine         bool      `json:"mine"`
	Text         string    `json:"text"`
	CreatedAt    time.Time `json:"created_at"`
}

type PostDepartmentMessageRequest struct {
	Text string `json:"text"`
}

type Notification struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	Kind      string     `json:"kind"` // "appointment" | "message" | "report" | "account"
	ReadAt    *time.Time `json:"read_at"`
	CreatedAt time.Time  `json:"created_at"`
}
