package services

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"medica-backend/internal/models"
)

type stubReportStore struct {
	report   *models.Report
	statuses []string
	saved    string
}

func (s *stubReportStore) GetReport(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	if s.report == nil || s.report.ID != id {
		return nil, errors.New("no rows")
	}
	return s.report, nil
}

func (s *stubReportStore) SetReportStatus(ctx context.Context, id uuid.UUID, status string) error {
	s.statuses = append(s.statuses, status)
	return nil
}

func (s *stubReportStore) SaveReportText(ctx context.Context, id uuid.UUID, text string) error {
	s.saved = text
	return nil
}

type fixedMedicalID string

func (f fixedMedicalID) MyMedicalID(ctx context.Context, userID uuid.UUID) (string, error) {
	return string(f), nil
}

func TestReportKind(t *testing.T) {
	tests := []struct {
		contentType, url, want string
	}{
		{"application/pdf", "https://files/x", "pdf"},
		{"text/plain; charset=utf-8", "https://files/x", "txt"},
		{"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "", "docx"},
		{"application/octet-stream", "https://files/cbc.PDF?token=1", "pdf"},
		{"", "https://files/notes.txt", "txt"},
		{"image/png", "https://files/scan.png", ""},
	}

	for _, tc := range tests {
		if got := reportKind(tc.contentType, tc.url); got != tc.want {
			t.Errorf("reportKind(%q, %q) = %q, want %q", tc.contentType, tc.url, got, tc.want)
		}
	}
}

func TestNormalizeExtractedText(t *testing.T) {
	in := "  Hemoglobin: 13.5 \r\n\r\n\r\n  WBC: 7000  \n"
	want := "Hemoglobin: 13.5\n\nWBC: 7000"
	if got := normalizeExtractedText(in); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestExtractDocumentText_DOCX(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("word/document.xml")
	w.Write([]byte(`<w:document><w:body><w:p><w:r><w:t>Lipid profile</w:t></w:r></w:p><w:p><w:r><w:t>LDL &lt; 100</w:t></w:r></w:p></w:body></w:document>`))
	zw.Close()

	text, err := extractDocumentText(buf.Bytes(), "", "https://files/report.docx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Lipid profile\nLDL < 100" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestExtractDocumentText_EmptyAndUnsupported(t *testing.T) {
	if _, err := extractDocumentText([]byte("  \n "), "text/plain", ""); err == nil {
		t.Fatalf("expected error for empty text")
	}
	if _, err := extractDocumentText([]byte{0x89, 'P', 'N', 'G'}, "image/png", "scan.png"); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
}

func TestReportService_RequestExtraction(t *testing.T) {
	reportID := uuid.New()
	fileURL := "https://files/cbc.pdf"
	store := &stubReportStore{report: &models.Report{ID: reportID, MedicalID: "MED-1", FileURL: &fileURL, Status: "uploaded"}}
	queue := &recordingEnqueuer{}
	svc := NewReportService(store, fixedMedicalID("MED-1"), queue, &recordingNotifier{}, &recordingPublisher{})

	report, err := svc.RequestExtraction(context.Background(), uuid.New(), reportID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Status != "processing" || len(store.statuses) != 1 || store.statuses[0] != "processing" {
		t.Fatalf("expected report to move to processing, got %q %v", report.Status, store.statuses)
	}
	if len(queue.jobs) != 1 || queue.jobs[0].Type != models.JobReportExtraction {
		t.Fatalf("expected extraction job, got %+v", queue.jobs)
	}
}

func TestReportService_RequestExtraction_OtherPatient(t *testing.T) {
	reportID := uuid.New()
	fileURL := "https://files/cbc.pdf"
	store := &stubReportStore{report: &models.Report{ID: reportID, MedicalID: "MED-2", FileURL: &fileURL}}
	svc := NewReportService(store, fixedMedicalID("MED-1"), &recordingEnqueuer{}, &recordingNotifier{}, &recordingPublisher{})

	var nf *NotFoundError
	if _, err := svc.RequestExtraction(context.Background(), uuid.New(), reportID); !errors.As(err, &nf) {
		t.Fatalf("expected not found for another patient's report, got %v", err)
	}
}

func TestReportService_Extract(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("Blood sugar (fasting): 92 mg/dL\n"))
	}))
	defer srv.Close()

	reportID := uuid.New()
	fileURL := srv.URL + "/sugar.txt"
	store := &stubReportStore{report: &models.Report{ID: reportID, MedicalID: "MED-1", Title: "Sugar", FileURL: &fileURL}}
	notifier, publisher := &recordingNotifier{}, &recordingPublisher{}
	svc := NewReportService(store, fixedMedicalID("MED-1"), &recordingEnqueuer{}, notifier, publisher)
	svc.httpClient = srv.Client()

	err := svc.Extract(context.Background(), &models.Job{UserID: uuid.New(), ReferenceID: reportID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.saved != "Blood sugar (fasting): 92 mg/dL" {
		t.Fatalf("unexpected saved text %q", store.saved)
	}
	if len(notifier.titles) != 1 || len(publisher.events) != 1 {
		t.Fatalf("expected notification and event after extraction")
	}
}
