package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"medica-backend/internal/models"
)

type directoryStore interface {
	ListSpecialties(ctx context.Context) ([]models.Specialty, error)
	ListDoctors(ctx context.Context, specialty string) ([]models.Doctor, error)
	GetDoctor(ctx context.Context, id string) (*models.Doctor, error)
	ListDepartments(ctx context.Context) ([]models.Department, error)
	ListEmergencyContacts(ctx context.Context, q string) ([]models.EmergencyContact, error)
	ListPharmacies(ctx context.Context, q string) ([]models.Pharmacy, error)
}

// DirectoryHandler serves the hospital's read-only catalog.
type DirectoryHandler struct {
	directory directoryStore
}

func NewDirectoryHandler(directory directoryStore) *DirectoryHandler {
	return &DirectoryHandler{directory: directory}
}

func (h *DirectoryHandler) Specialties(w http.ResponseWriter, r *http.Request) {
	specialties, err := h.directory.ListSpecialties(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load specialties", r))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": specialties})
}

func (h *DirectoryHandler) Doctors(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.directory.ListDoctors(r.Context(), r.URL.Query().Get("specialty"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load doctors", r))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": doctors})
}

func (h *DirectoryHandler) Doctor(w http.ResponseWriter, r *http.Request) {
	doctor, err := h.directory.GetDoctor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Doctor not found", r))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load doctor", r))
		return
	}
	writeJSON(w, http.StatusOK, doctor)
}

func (h *DirectoryHandler) Departments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.directory.ListDepartments(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load departments", r))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": departments})
}

func (h *DirectoryHandler) EmergencyContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.directory.ListEmergencyContacts(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load emergency contacts", r))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": contacts})
}

func (h *DirectoryHandler) Pharmacies(w http.ResponseWriter, r *http.Request) {
	pharmacies, err := h.directory.ListPharmacies(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load pharmacies", r))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": pharmacies})
}
