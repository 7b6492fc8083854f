package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"medica-backend/internal/models"
	"medica-backend/internal/services"
)

type stubMedicalIDs struct {
	id  string
	err error
}

func (s stubMedicalIDs) MyMedicalID(ctx context.Context, userID uuid.UUID) (string, error) {
	return s.id, s.err
}

type stubPatients struct {
	patients []models.Patient
	lastQ    string
	lastLim  int
}

func (s *stubPatients) List(ctx context.Context, q string, limit int) ([]models.Patient, error) {
	s.lastQ, s.lastLim = q, limit
	return s.patients, nil
}

func (s *stubPatients) GetByMedicalID(ctx context.Context, medicalID string) (*models.Patient, error) {
	for i := range s.patients {
		if s.patients[i].MedicalID == medicalID {
			return &s.patients[i], nil
		}
	}
	return nil, pgx.ErrNoRows
}

type stubRecords struct {
	allergies  []models.Allergy
	created    *models.Allergy
	historyFor string
	deleteOK   bool
}

func (s *stubRecords) ListHistory(ctx context.Context, medicalID string) ([]models.MedicalHistoryEntry, error) {
	s.historyFor = medicalID
	return []models.MedicalHistoryEntry{{ID: uuid.New(), MedicalID: medicalID, Condition: "Asthma"}}, nil
}

func (s *stubRecords) ListReports(ctx context.Context, medicalID string) ([]models.Report, error) {
	return []models.Report{}, nil
}

func (s *stubRecords) ListAllergies(ctx context.Context, medicalID string) ([]models.Allergy, error) {
	return s.allergies, nil
}

func (s *stubRecords) CreateAllergy(ctx context.Context, a *models.Allergy) error {
	a.ID = uuid.New()
	s.created = a
	return nil
}

func (s *stubRecords) DeleteAllergy(ctx context.Context, medicalID string, id uuid.UUID) (bool, error) {
	return s.deleteOK, nil
}

func TestRecordsHandler_MedicalIDNotSet(t *testing.T) {
	records := &stubRecords{}
	h := &RecordsHandler{
		medicalIDs: stubMedicalIDs{err: &services.PreconditionError{Message: "Medical ID not set. Go to Profile and save it."}},
		records:    records,
	}

	rr := httptest.NewRecorder()
	h.History(rr, withUser(httptest.NewRequest(http.MethodGet, "/api/v1/me/medical-history", nil), uuid.New(), nil))

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected status 422, got %d", rr.Code)
	}
	if msg := decodeError(t, rr).Message; msg != "Medical ID not set. Go to Profile and save it." {
		t.Errorf("Unexpected message %q", msg)
	}
	if records.historyFor != "" {
		t.Errorf("history should not be queried without a medical id")
	}
}

func TestRecordsHandler_History(t *testing.T) {
	records := &stubRecords{}
	h := &RecordsHandler{medicalIDs: stubMedicalIDs{id: "MED-1001"}, records: records}

	rr := httptest.NewRecorder()
	h.History(rr, withUser(httptest.NewRequest(http.MethodGet, "/api/v1/me/medical-history", nil), uuid.New(), nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	if records.historyFor != "MED-1001" {
		t.Errorf("Expected history for MED-1001, got %q", records.historyFor)
	}
}

func TestRecordsHandler_DetailsNotFound(t *testing.T) {
	h := &RecordsHandler{medicalIDs: stubMedicalIDs{id: "MED-404"}, patients: &stubPatients{}}

	rr := httptest.NewRecorder()
	h.Details(rr, withUser(httptest.NewRequest(http.MethodGet, "/api/v1/me/details", nil), uuid.New(), nil))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d", rr.Code)
	}
}

func TestRecordsHandler_CreateAllergy(t *testing.T) {
	records := &stubRecords{}
	h := &RecordsHandler{medicalIDs: stubMedicalIDs{id: "MED-1001"}, records: records}

	body := `{"allergen":" Penicillin ","category":"Medicine","reaction":"Rash","severity":"severe"}`
	rr := httptest.NewRecorder()
	h.CreateAllergy(rr, withUser(httptest.NewRequest(http.MethodPost, "/api/v1/me/allergies", strings.NewReader(body)), uuid.New(), nil))

	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", rr.Code)
	}
	if records.created == nil || records.created.Allergen != "Penicillin" || records.created.Category != "medicine" || records.created.MedicalID != "MED-1001" {
		t.Fatalf("Unexpected allergy saved: %+v", records.created)
	}
}

func TestRecordsHandler_CreateAllergy_Validation(t *testing.T) {
	records := &stubRecords{}
	h := &RecordsHandler{medicalIDs: stubMedicalIDs{id: "MED-1001"}, records: records}

	body := `{"allergen":"","severity":"deadly"}`
	rr := httptest.NewRecorder()
	h.CreateAllergy(rr, withUser(httptest.NewRequest(http.MethodPost, "/api/v1/me/allergies", strings.NewReader(body)), uuid.New(), nil))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rr.Code)
	}
	fields := decodeError(t, rr).Fields
	if fields["allergen"] == "" || fields["severity"] == "" {
		t.Errorf("Expected allergen and severity errors, got %v", fields)
	}
	if records.created != nil {
		t.Errorf("invalid allergy should not be saved")
	}
}

func TestRecordsHandler_DeleteAllergy_NotOwned(t *testing.T) {
	h := &RecordsHandler{medicalIDs: stubMedicalIDs{id: "MED-1001"}, records: &stubRecords{deleteOK: false}}

	id := uuid.New()
	rr := httptest.NewRecorder()
	h.DeleteAllergy(rr, withUser(httptest.NewRequest(http.MethodDelete, "/", nil), uuid.New(), map[string]string{"id": id.String()}))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d", rr.Code)
	}
}

func TestPatientHandler_ListPassesQuery(t *testing.T) {
	store := &stubPatients{patients: []models.Patient{{MedicalID: "MED-1001", FullName: "Sita Sharma"}}}
	h := &PatientHandler{patients: store}

	rr := httptest.NewRecorder()
	h.List(rr, httptest.NewRequest(http.MethodGet, "/api/v1/patients?q=sita", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	if store.lastQ != "sita" || store.lastLim != patientListLimit {
		t.Errorf("Expected q=sita limit=%d, got q=%q limit=%d", patientListLimit, store.lastQ, store.lastLim)
	}

	var payload struct {
		Items []models.Patient `json:"items"`
	}
	json.NewDecoder(rr.Body).Decode(&payload)
	if len(payload.Items) != 1 || payload.Items[0].FullName != "Sita Sharma" {
		t.Errorf("Unexpected items: %+v", payload.Items)
	}
}
