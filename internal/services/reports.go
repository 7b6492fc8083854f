package services

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/ledongthuc/pdf"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"medica-backend/internal/models"
)

const maxReportBytes = 20 << 20

type reportStore interface {
	GetReport(ctx context.Context, id uuid.UUID) (*models.Report, error)
	SetReportStatus(ctx context.Context, id uuid.UUID, status string) error
	SaveReportText(ctx context.Context, id uuid.UUID, text string) error
}

type medicalIDResolver interface {
	MyMedicalID(ctx context.Context, userID uuid.UUID) (string, error)
}

// ReportService turns uploaded lab reports into searchable text.
type ReportService struct {
	reports    reportStore
	medicalIDs medicalIDResolver
	jobs       Enqueuer
	notifier   notifier
	publisher  Publisher
	httpClient *http.Client
}

func NewReportService(reports reportStore, medicalIDs medicalIDResolver, jobs Enqueuer, notifier notifier, publisher Publisher) *ReportService {
	return &ReportService{
		reports:    reports,
		medicalIDs: medicalIDs,
		jobs:       jobs,
		notifier:   notifier,
		publisher:  publisher,
		httpClient: &http.Client{
			Timeout:   60 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// RequestExtraction queues text extraction for one of the caller's reports.
func (s *ReportService) RequestExtraction(ctx context.Context, userID, reportID uuid.UUID) (*models.Report, error) {
	medicalID, err := s.medicalIDs.MyMedicalID(ctx, userID)
	if err != nil {
		return nil, err
	}

	report, err := s.reports.GetReport(ctx, reportID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "Report not found"}
		}
		return nil, err
	}
	if report.MedicalID != medicalID {
		return nil, &NotFoundError{Message: "Report not found"}
	}
	if report.FileURL == nil || strings.TrimSpace(*report.FileURL) == "" {
		return nil, &ValidationError{Fields: map[string]string{"file_url": "This report has no file attached"}}
	}
	if report.Status == "processing" {
		return nil, &ConflictError{Message: "Report extraction is already in progress"}
	}

	if err := s.reports.SetReportStatus(ctx, report.ID, "processing"); err != nil {
		return nil, err
	}
	if _, err := s.jobs.Enqueue(ctx, userID, models.JobReportExtraction, report.ID, nil); err != nil {
		s.reports.SetReportStatus(ctx, report.ID, "failed")
		return nil, err
	}

	report.Status = "processing"
	report.ExtractedText = nil
	return report, nil
}

// Extract runs a report-extraction job: download the file, pull out its text and store it.
func (s *ReportService) Extract(ctx context.Context, job *models.Job) error {
	report, err := s.reports.GetReport(ctx, job.ReferenceID)
	if err != nil {
		return fmt.Errorf("failed to get report: %w", err)
	}
	if report.FileURL == nil {
		return fmt.Errorf("report %s has no file", report.ID)
	}

	data, contentType, err := s.download(ctx, *report.FileURL)
	if err != nil {
		return err
	}

	text, err := extractDocumentText(data, contentType, *report.FileURL)
	if err != nil {
		return err
	}

	if err := s.reports.SaveReportText(ctx, report.ID, text); err != nil {
		return fmt.Errorf("failed to save report text: %w", err)
	}

	s.notifier.Notify(ctx, job.UserID, "report", "Report Ready", fmt.Sprintf("%q is ready to view.", report.Title))
	s.publisher.Publish(ctx, job.UserID, models.WSMessage{
		Type:    "report_update",
		Payload: models.ReportEvent{ReportID: report.ID, Status: "extracted"},
	})
	return nil
}

// MarkFailed records a permanently failed extraction.
func (s *ReportService) MarkFailed(ctx context.Context, job *models.Job) {
	s.reports.SetReportStatus(ctx, job.ReferenceID, "failed")
	s.publisher.Publish(ctx, job.UserID, models.WSMessage{
		Type:    "report_update",
		Payload: models.ReportEvent{ReportID: job.ReferenceID, Status: "failed"},
	})
}

func (s *ReportService) download(ctx context.Context, fileURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("invalid report URL: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download report: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("report download returned %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxReportBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read report: %w", err)
	}
	if len(data) > maxReportBytes {
		return nil, "", fmt.Errorf("report exceeds %d MB", maxReportBytes>>20)
	}

	return data, resp.Header.Get("Content-Type"), nil
}

// reportKind decides how to read a downloaded file from its content type,
// falling back to the URL's extension.
func reportKind(contentType, fileURL string) string {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "application/pdf"):
		return "pdf"
	case strings.Contains(ct, "wordprocessingml"):
		return "docx"
	case strings.HasPrefix(ct, "text/"):
		return "txt"
	}

	p := fileURL
	if u, err := url.Parse(fileURL); err == nil {
		p = u.Path
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".pdf":
		return "pdf"
	case ".docx":
		return "docx"
	case ".txt", ".csv":
		return "txt"
	}
	return ""
}

func extractDocumentText(data []byte, contentType, fileURL string) (string, error) {
	var (
		text string
		err  error
	)

	switch kind := reportKind(contentType, fileURL); kind {
	case "pdf":
		text, err = extractPDF(data)
	case "docx":
		text, err = extractDOCX(data)
	case "txt":
		text = string(data)
	default:
		return "", fmt.Errorf("unsupported report type %q", contentType)
	}
	if err != nil {
		return "", err
	}

	text = normalizeExtractedText(text)
	if text == "" {
		return "", fmt.Errorf("no extractable text found in report")
	}
	return text, nil
}

func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	var b strings.Builder
	totalPage := reader.NumPage()
	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(content)
		b.WriteString("\n")
	}

	return b.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open docx: %w", err)
	}

	for _, f := range r.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		defer rc.Close()

		documentXML, err := io.ReadAll(rc)
		if err != nil {
			return "", err
		}
		return stripDOCXML(documentXML), nil
	}

	return "", fmt.Errorf("docx document.xml not found")
}

var xmlTagPattern = regexp.MustCompile(`<[^>]+>`)

func stripDOCXML(src []byte) string {
	s := string(src)

	// DOCX paragraphs and line breaks
	s = strings.ReplaceAll(s, "</w:p>", "\n")
	s = strings.ReplaceAll(s, "<w:br/>", "\n")
	s = strings.ReplaceAll(s, "<w:br />", "\n")
	s = strings.ReplaceAll(s, "<w:tab/>", "\t")

	s = xmlTagPattern.ReplaceAllString(s, "")

	replacer := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&apos;", "'",
	)
	return replacer.Replace(s)
}

// normalizeExtractedText trims every line and collapses runs of blank lines.
func normalizeExtractedText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	var buf strings.Builder
	emptyCount := 0
	for _, line := range strings.Split(s, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			emptyCount++
			if emptyCount > 1 {
				continue
			}
			buf.WriteString("\n")
			continue
		}
		emptyCount = 0
		buf.WriteString(trimmed)
		buf.WriteString("\n")
	}

	return strings.TrimSpace(buf.String())
}
