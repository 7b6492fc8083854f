package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"medica-backend/internal/models"
)

type stubProfileStore struct {
	profile *models.Profile
	ensured int
	updated *models.UpdateProfileRequest
}

func (s *stubProfileStore) Ensure(ctx context.Context, userID uuid.UUID, fullName string) error {
	s.ensured++
	if s.profile == nil {
		s.profile = &models.Profile{ID: userID, FullName: fullName}
	}
	return nil
}

func (s *stubProfileStore) Get(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	return s.profile, nil
}

func (s *stubProfileStore) Update(ctx context.Context, userID uuid.UUID, req models.UpdateProfileRequest) (*models.Profile, error) {
	s.updated = &req
	return s.profile, nil
}

func strPtr(s string) *string { return &s }

func TestProfileService_MyMedicalID(t *testing.T) {
	store := &stubProfileStore{profile: &models.Profile{MedicalID: strPtr(" MED-1001 ")}}
	svc := NewProfileService(store)

	id, err := svc.MyMedicalID(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "MED-1001" {
		t.Fatalf("expected trimmed medical id, got %q", id)
	}
	if store.ensured != 1 {
		t.Fatalf("expected profile to be ensured first")
	}
}

func TestProfileService_MyMedicalID_NotSet(t *testing.T) {
	for _, medicalID := range []*string{nil, strPtr(""), strPtr("   ")} {
		svc := NewProfileService(&stubProfileStore{profile: &models.Profile{MedicalID: medicalID}})

		_, err := svc.MyMedicalID(context.Background(), uuid.New())
		var pErr *PreconditionError
		if !errors.As(err, &pErr) {
			t.Fatalf("expected precondition error, got %v", err)
		}
		if pErr.Message != "Medical ID not set. Go to Profile and save it." {
			t.Fatalf("unexpected message %q", pErr.Message)
		}
	}
}

func TestProfileService_Update_TrimsAndValidates(t *testing.T) {
	store := &stubProfileStore{profile: &models.Profile{}}
	svc := NewProfileService(store)

	if _, err := svc.Update(context.Background(), uuid.New(), models.UpdateProfileRequest{Phone: strPtr("12")}); err == nil {
		t.Fatalf("expected short phone to be rejected")
	}

	_, err := svc.Update(context.Background(), uuid.New(), models.UpdateProfileRequest{MedicalID: strPtr("  MED-7 ")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.updated == nil || *store.updated.MedicalID != "MED-7" {
		t.Fatalf("expected trimmed medical id to be saved, got %+v", store.updated)
	}
}
