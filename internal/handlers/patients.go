package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"medica-backend/internal/models"
)

const patientListLimit = 30

type patientStore interface {
	List(ctx context.Context, q string, limit int) ([]models.Patient, error)
	GetByMedicalID(ctx context.Context, medicalID string) (*models.Patient, error)
}

type PatientHandler struct {
	patients patientStore
}

func NewPatientHandler(patients patientStore) *PatientHandler {
	return &PatientHandler{patients: patients}
}

func (h *PatientHandler) List(w http.ResponseWriter, r *http.Request) {
	patients, err := h.patients.List(r.Context(), r.URL.Query().Get("q"), patientListLimit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load patients", r))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": patients})
}

func (h *PatientHandler) Get(w http.ResponseWriter, r *http.Request) {
	patient, err := h.patients.GetByMedicalID(r.Context(), chi.URLParam(r, "medical_id"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Patient not found", r))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load patient", r))
		return
	}
	writeJSON(w, http.StatusOK, patient)
}
