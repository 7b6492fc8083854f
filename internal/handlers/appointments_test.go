package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"medica-backend/internal/models"
	"medica-backend/internal/services"
)

type stubAppointmentService struct {
	bookErr   error
	cancelErr error
	booked    *models.BookAppointmentRequest
	cancelled uuid.UUID
}

func (s *stubAppointmentService) Book(ctx context.Context, userID uuid.UUID, req models.BookAppointmentRequest) (*models.Appointment, error) {
	s.booked = &req
	if s.bookErr != nil {
		return nil, s.bookErr
	}
	return &models.Appointment{ID: uuid.New(), UserID: userID, DoctorID: req.DoctorID, TimeSlot: req.TimeSlot, Status: "requested"}, nil
}

func (s *stubAppointmentService) Cancel(ctx context.Context, userID, appointmentID uuid.UUID) error {
	s.cancelled = appointmentID
	return s.cancelErr
}

func TestAppointmentHandler_Slots(t *testing.T) {
	h := &AppointmentHandler{}
	rr := httptest.NewRecorder()
	h.Slots(rr, httptest.NewRequest(http.MethodGet, "/api/v1/appointments/slots", nil))

	var payload struct {
		Slots []string `json:"slots"`
	}
	json.NewDecoder(rr.Body).Decode(&payload)

	want := []string{"09:00 AM", "10:30 AM", "11:30 AM", "01:00 PM", "03:00 PM", "05:30 PM"}
	if strings.Join(payload.Slots, ",") != strings.Join(want, ",") {
		t.Fatalf("Expected %v, got %v", want, payload.Slots)
	}
}

func TestAppointmentHandler_Book(t *testing.T) {
	svc := &stubAppointmentService{}
	h := &AppointmentHandler{service: svc}

	body := `{"doctor_id":"dr-yadav","full_name":"Ram Thapa","phone":"9800000000","date":"2026-05-12","time_slot":"10:30 AM"}`
	rr := httptest.NewRecorder()
	h.Book(rr, withUser(httptest.NewRequest(http.MethodPost, "/api/v1/appointments", strings.NewReader(body)), uuid.New(), nil))

	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", rr.Code)
	}
	if svc.booked == nil || svc.booked.DoctorID != "dr-yadav" || svc.booked.TimeSlot != "10:30 AM" {
		t.Fatalf("Unexpected booking request: %+v", svc.booked)
	}
}

func TestAppointmentHandler_Book_SlotTaken(t *testing.T) {
	svc := &stubAppointmentService{bookErr: &services.ConflictError{Message: "This time slot is already booked. Please choose another time."}}
	h := &AppointmentHandler{service: svc}

	body := `{"doctor_id":"dr-yadav","full_name":"Ram Thapa","phone":"9800000000","date":"2026-05-12","time_slot":"10:30 AM"}`
	rr := httptest.NewRecorder()
	h.Book(rr, withUser(httptest.NewRequest(http.MethodPost, "/api/v1/appointments", strings.NewReader(body)), uuid.New(), nil))

	if rr.Code != http.StatusConflict {
		t.Fatalf("Expected status 409, got %d", rr.Code)
	}
}

func TestAppointmentHandler_Cancel(t *testing.T) {
	svc := &stubAppointmentService{}
	h := &AppointmentHandler{service: svc}
	id := uuid.New()

	rr := httptest.NewRecorder()
	h.Cancel(rr, withUser(httptest.NewRequest(http.MethodDelete, "/", nil), uuid.New(), map[string]string{"id": id.String()}))

	if rr.Code != http.StatusOK || svc.cancelled != id {
		t.Fatalf("Expected cancel of %s, got status %d id %s", id, rr.Code, svc.cancelled)
	}

	rr = httptest.NewRecorder()
	h.Cancel(rr, withUser(httptest.NewRequest(http.MethodDelete, "/", nil), uuid.New(), map[string]string{"id": "abc"}))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400 for bad id, got %d", rr.Code)
	}
}
