package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"medica-backend/internal/models"
	"medica-backend/internal/repository"
)

// AppointmentSlots are the bookable times of day, in display order.
var AppointmentSlots = []string{"09:00 AM", "10:30 AM", "11:30 AM", "01:00 PM", "03:00 PM", "05:30 PM"}

func isValidSlot(slot string) bool {
	for _, s := range AppointmentSlots {
		if s == slot {
			return true
		}
	}
	return false
}

type doctorLookup interface {
	GetDoctor(ctx context.Context, id string) (*models.Doctor, error)
}

type appointmentStore interface {
	Create(ctx context.Context, a *models.Appointment) error
	Cancel(ctx context.Context, userID, id uuid.UUID) (bool, error)
}

type notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, kind, title, body string)
}

type AppointmentService struct {
	doctors      doctorLookup
	appointments appointmentStore
	notifier     notifier
	jobs         Enqueuer
	publisher    Publisher
	now          func() time.Time
}

func NewAppointmentService(doctors doctorLookup, appointments appointmentStore, notifier notifier, jobs Enqueuer, publisher Publisher) *AppointmentService {
	return &AppointmentService{
		doctors:      doctors,
		appointments: appointments,
		notifier:     notifier,
		jobs:         jobs,
		publisher:    publisher,
		now:          time.Now,
	}
}

func (s *AppointmentService) Book(ctx context.Context, userID uuid.UUID, req models.BookAppointmentRequest) (*models.Appointment, error) {
	fieldErrors := make(map[string]string)

	fullName := strings.TrimSpace(req.FullName)
	phone := strings.TrimSpace(req.Phone)
	dateStr := strings.TrimSpace(req.Date)

	if len([]rune(fullName)) < 2 {
		fieldErrors["full_name"] = "Please enter your full name"
	}
	if len(phone) < 6 {
		fieldErrors["phone"] = "Please enter a valid phone number"
	}

	var date time.Time
	if len(dateStr) < 6 {
		fieldErrors["date"] = "Please enter a date (YYYY-MM-DD)"
	} else {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			fieldErrors["date"] = "Date must be in YYYY-MM-DD format"
		} else {
			today := s.now().UTC().Truncate(24 * time.Hour)
			if parsed.Before(today) {
				fieldErrors["date"] = "Date cannot be in the past"
			}
			date = parsed
		}
	}

	if req.TimeSlot == "" {
		fieldErrors["time_slot"] = "Please choose a time"
	} else if !isValidSlot(req.TimeSlot) {
		fieldErrors["time_slot"] = "Please choose one of the available times"
	}

	if strings.TrimSpace(req.DoctorID) == "" {
		fieldErrors["doctor_id"] = "Please choose a doctor"
	}

	var reason *string
	if req.Reason != nil {
		if r := strings.TrimSpace(*req.Reason); r != "" {
			if len([]rune(r)) > 500 {
				fieldErrors["reason"] = "Reason must be 500 characters or less"
			}
			reason = &r
		}
	}

	if len(fieldErrors) > 0 {
		return nil, &ValidationError{Fields: fieldErrors}
	}

	doctor, err := s.doctors.GetDoctor(ctx, req.DoctorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "Doctor not found"}
		}
		return nil, err
	}

	appt := &models.Appointment{
		UserID:     userID,
		DoctorID:   doctor.ID,
		DoctorName: doctor.Name,
		Specialty:  doctor.SpecialtyLabel,
		FullName:   fullName,
		Phone:      phone,
		Reason:     reason,
		Date:       date,
		TimeSlot:   req.TimeSlot,
	}

	if err := s.appointments.Create(ctx, appt); err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			return nil, &ConflictError{Message: "This time slot is already booked. Please choose another time."}
		}
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	s.notifier.Notify(ctx, userID, "appointment", "Appointment Requested",
		fmt.Sprintf("%s on %s at %s", doctor.Name, date.Format("02 Jan 2006"), appt.TimeSlot))

	if _, err := s.jobs.Enqueue(ctx, userID, models.JobAppointmentConfirmation, appt.ID, nil); err != nil {
		log.Printf("appointments: failed to queue confirmation for %s: %v", appt.ID, err)
	}

	s.publisher.Publish(ctx, userID, models.WSMessage{
		Type:    "appointment_update",
		Payload: models.AppointmentEvent{AppointmentID: appt.ID, Status: appt.Status},
	})

	return appt, nil
}

func (s *AppointmentService) Cancel(ctx context.Context, userID, appointmentID uuid.UUID) error {
	ok, err := s.appointments.Cancel(ctx, userID, appointmentID)
	if err != nil {
		return err
	}
	if !ok {
		return &NotFoundError{Message: "Appointment not found"}
	}

	s.notifier.Notify(ctx, userID, "appointment", "Appointment Cancelled", "Your appointment has been cancelled.")
	s.publisher.Publish(ctx, userID, models.WSMessage{
		Type:    "appointment_update",
		Payload: models.AppointmentEvent{AppointmentID: appointmentID, Status: "cancelled"},
	})
	return nil
}
