package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"medica-backend/internal/models"
)

const medicalIDNotSetMessage = "Medical ID not set. Go to Profile and save it."

type profileStore interface {
	Ensure(ctx context.Context, userID uuid.UUID, fullName string) error
	Get(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	Update(ctx context.Context, userID uuid.UUID, req models.UpdateProfileRequest) (*models.Profile, error)
}

type ProfileService struct {
	profiles profileStore
}

func NewProfileService(profiles profileStore) *ProfileService {
	return &ProfileService{profiles: profiles}
}

func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	if err := s.profiles.Ensure(ctx, userID, ""); err != nil {
		return nil, err
	}
	return s.profiles.Get(ctx, userID)
}

func (s *ProfileService) Update(ctx context.Context, userID uuid.UUID, req models.UpdateProfileRequest) (*models.Profile, error) {
	fieldErrors := make(map[string]string)

	trim := func(p *string) *string {
		if p == nil {
			return nil
		}
		v := strings.TrimSpace(*p)
		return &v
	}
	req.FullName = trim(req.FullName)
	req.Phone = trim(req.Phone)
	req.MedicalID = trim(req.MedicalID)

	if req.FullName != nil && len([]rune(*req.FullName)) > 100 {
		fieldErrors["full_name"] = "Full name must be 100 characters or less"
	}
	if req.Phone != nil && *req.Phone != "" && len(*req.Phone) < 6 {
		fieldErrors["phone"] = "Phone number looks too short"
	}
	if req.MedicalID != nil && len(*req.MedicalID) > 40 {
		fieldErrors["medical_id"] = "Medical ID must be 40 characters or less"
	}
	if len(fieldErrors) > 0 {
		return nil, &ValidationError{Fields: fieldErrors}
	}

	if err := s.profiles.Ensure(ctx, userID, ""); err != nil {
		return nil, err
	}
	return s.profiles.Update(ctx, userID, req)
}

// MyMedicalID resolves the hospital Medical ID saved on the caller's profile.
func (s *ProfileService) MyMedicalID(ctx context.Context, userID uuid.UUID) (string, error) {
	if err := s.profiles.Ensure(ctx, userID, ""); err != nil {
		return "", err
	}

	profile, err := s.profiles.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", &PreconditionError{Message: medicalIDNotSetMessage}
		}
		return "", err
	}

	if profile.MedicalID == nil || strings.TrimSpace(*profile.MedicalID) == "" {
		return "", &PreconditionError{Message: medicalIDNotSetMessage}
	}
	return strings.TrimSpace(*profile.MedicalID), nil
}
