package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"medica-backend/internal/middleware"
	"medica-backend/internal/models"
	"medica-backend/internal/services"
)

type appointmentService interface {
	Book(ctx context.Context, userID uuid.UUID, req models.BookAppointmentRequest) (*models.Appointment, error)
	Cancel(ctx context.Context, userID, appointmentID uuid.UUID) error
}

type appointmentLister interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Appointment, error)
}

type AppointmentHandler struct {
	service      appointmentService
	appointments appointmentLister
}

func NewAppointmentHandler(service appointmentService, appointments appointmentLister) *AppointmentHandler {
	return &AppointmentHandler{service: service, appointments: appointments}
}

func (h *AppointmentHandler) Slots(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"slots": services.AppointmentSlots})
}

func (h *AppointmentHandler) Book(w http.ResponseWriter, r *http.Request) {
	var req models.BookAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	appt, err := h.service.Book(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, appt)
}

func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request) {
	appts, err := h.appointments.ListByUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load appointments", r))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": appts})
}

func (h *AppointmentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid appointment ID", r))
		return
	}

	if err := h.service.Cancel(r.Context(), middleware.GetUserID(r.Context()), id); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Appointment cancelled"})
}
