package models

import (
	"time"

	"github.com/google/uuid"
)

type Appointment struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	DoctorID    string     `json:"doctor_id"`
	DoctorName  string     `json:"doctor_name"`
	Specialty   string     `json:"specialty"`
	FullName    string     `json:"full_name"`
	Phone       string     `json:"phone"`
	Reason      *string    `json:"reason"`
	Date        time.Time  `json:"date"`
	TimeSlot    string     `json:"time_slot"`
	Status      string     `json:"status"` // "requested" | "cancelled"
	RemindedAt  *time.Time `json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

type BookAppointmentRequest struct {
	DoctorID string  `json:"doctor_id"`
	FullName string  `json:"full_name"`
	Phone    string  `json:"phone"`
	Reason   *string `json:"reason"`
	Date     string  `json:"date"` // YYYY-MM-DD
	TimeSlot string  `json:"time_slot"`
}

// AppointmentReminder is an upcoming appointment joined with the account e-mail.
type AppointmentReminder struct {
	AppointmentID uuid.UUID
	Email         string
	FullName      string
	DoctorName    string
	Date          time.Time
	TimeSlot      string
}
