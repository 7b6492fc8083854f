package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"medica-backend/internal/middleware"
	"medica-backend/internal/models"
)

type medicalIDResolver interface {
	MyMedicalID(ctx context.Context, userID uuid.UUID) (string, error)
}

type recordStore interface {
	ListHistory(ctx context.Context, medicalID string) ([]models.MedicalHistoryEntry, error)
	ListReports(ctx context.Context, medicalID string) ([]models.Report, error)
	ListAllergies(ctx context.Context, medicalID string) ([]models.Allergy, error)
	CreateAllergy(ctx context.Context, a *models.Allergy) error
	DeleteAllergy(ctx context.Context, medicalID string, id uuid.UUID) (bool, error)
}

type reportExtractor interface {
	RequestExtraction(ctx context.Context, userID, reportID uuid.UUID) (*models.Report, error)
}

var (
	allergyCategories = map[string]bool{"food": true, "medicine": true, "environmental": true, "other": true}
	allergySeverities = map[string]bool{"mild": true, "moderate": true, "severe": true}
)

// RecordsHandler serves the signed-in patient's own hospital record, keyed by
// the Medical ID saved on their profile.
type RecordsHandler struct {
	medicalIDs medicalIDResolver
	patients   patientStore
	records    recordStore
	reports    reportExtractor
}

func NewRecordsHandler(medicalIDs medicalIDResolver, patients patientStore, records recordStore, reports reportExtractor) *RecordsHandler {
	return &RecordsHandler{
		medicalIDs: medicalIDs,
		patients:   patients,
		records:    records,
		reports:    reports,
	}
}

func (h *RecordsHandler) medicalID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := h.medicalIDs.MyMedicalID(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return "", false
	}
	return id, true
}

func (h *RecordsHandler) Details(w http.ResponseWriter, r *http.Request) {
	medicalID, ok := h.medicalID(w, r)
	if !ok {
		return
	}

	patient, err := h.patients.GetByMedicalID(r.Context(), medicalID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "No patient record found for your Medical ID", r))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load patient details", r))
		return
	}
	writeJSON(w, http.StatusOK, patient)
}

func (h *RecordsHandler) History(w http.ResponseWriter, r *http.Request) {
	medicalID, ok := h.medicalID(w, r)
	if !ok {
		return
	}

	entries, err := h.records.ListHistory(r.Context(), medicalID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load medical history", r))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": entries})
}

func (h *RecordsHandler) Reports(w http.ResponseWriter, r *http.Request) {
	medicalID, ok := h.medicalID(w, r)
	if !ok {
		return
	}

	reports, err := h.records.ListReports(r.Context(), medicalID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load reports", r))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": reports})
}

func (h *RecordsHandler) ExtractReport(w http.ResponseWriter, r *http.Request) {
	reportID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid report ID", r))
		return
	}

	report, err := h.reports.RequestExtraction(r.Context(), middleware.GetUserID(r.Context()), reportID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, report)
}

func (h *RecordsHandler) Allergies(w http.ResponseWriter, r *http.Request) {
	medicalID, ok := h.medicalID(w, r)
	if !ok {
		return
	}

	allergies, err := h.records.ListAllergies(r.Context(), medicalID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load allergies", r))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": allergies})
}

func (h *RecordsHandler) CreateAllergy(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAllergyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	allergy := models.Allergy{
		Allergen: strings.TrimSpace(req.Allergen),
		Category: strings.ToLower(strings.TrimSpace(req.Category)),
		Severity: strings.ToLower(strings.TrimSpace(req.Severity)),
	}
	if allergy.Category == "" {
		allergy.Category = "other"
	}
	if allergy.Severity == "" {
		allergy.Severity = "mild"
	}
	if req.Reaction != nil {
		if reaction := strings.TrimSpace(*req.Reaction); reaction != "" {
			allergy.Reaction = &reaction
		}
	}

	fieldErrors := make(map[string]string)
	if allergy.Allergen == "" {
		fieldErrors["allergen"] = "Allergen is required"
	}
	if !allergyCategories[allergy.Category] {
		fieldErrors["category"] = "Category must be food, medicine, environmental or other"
	}
	if !allergySeverities[allergy.Severity] {
		fieldErrors["severity"] = "Severity must be mild, moderate or severe"
	}
	if len(fieldErrors) > 0 {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", fieldErrors, r))
		return
	}

	medicalID, ok := h.medicalID(w, r)
	if !ok {
		return
	}
	allergy.MedicalID = medicalID

	if err := h.records.CreateAllergy(r.Context(), &allergy); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to save allergy", r))
		return
	}
	writeJSON(w, http.StatusCreated, allergy)
}

func (h *RecordsHandler) DeleteAllergy(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid allergy ID", r))
		return
	}

	medicalID, ok := h.medicalID(w, r)
	if !ok {
		return
	}

	deleted, err := h.records.DeleteAllergy(r.Context(), medicalID, id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to delete allergy", r))
		return
	}
	if !deleted {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Allergy not found", r))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Allergy deleted"})
}
