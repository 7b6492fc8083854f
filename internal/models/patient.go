package models

import (
	"time"

	"github.com/google/uuid"
)

type Patient struct {
	MedicalID   string     `json:"medical_id"`
	FullName    string     `json:"full_name"`
	Gender      *string    `json:"gender"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	BloodGroup  *string    `json:"blood_group"`
	Phone       *string    `json:"phone"`
	Address     *string    `json:"address"`
	CreatedAt   time.Time  `json:"created_at"`
}

type MedicalHistoryEntry struct {
	ID        uuid.UUID `json:"id"`
	MedicalID string    `json:"medical_id"`
	Condition string    `json:"condition"`
	Notes     *string   `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

type Report struct {
	ID            uuid.UUID `json:"id"`
	MedicalID     string    `json:"medical_id"`
	Title         string    `json:"title"`
	FileURL       *string   `json:"file_url"`
	ExtractedText *string   `json:"extracted_text,omitempty"`
	Status        string    `json:"status"` // "uploaded" | "processing" | "extracted" | "failed"
	CreatedAt     time.Time `json:"created_at"`
}

type Allergy struct {
	ID        uuid.UUID `json:"id"`
	MedicalID string    `json:"medical_id"`
	Allergen  string    `json:"allergen"`
	Category  string    `json:"category"` // "food" | "medicine" | "environmental" | "other"
	Reaction  *string   `json:"reaction"`
	Severity  string    `json:"severity"` // "mild" | "moderate" | "severe"
	CreatedAt time.Time `json:"created_at"`
}

type CreateAllergyRequest struct {
	Allergen string  `json:"allergen"`
	Category string  `json:"category"`
	Reaction *string `json:"reaction"`
	Severity string  `json:"severity"`
}
