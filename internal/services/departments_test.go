package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"medica-backend/internal/models"
)

type stubDepartments struct{}

func (stubDepartments) GetDepartment(ctx context.Context, id string) (*models.Department, error) {
	if id != "lab-support" {
		return nil, pgx.ErrNoRows
	}
	return &models.Department{ID: "lab-support", Name: "Lab Reports Desk"}, nil
}

type stubMessageStore struct {
	stored []models.DepartmentMessage
}

func (s *stubMessageStore) ListThread(ctx context.Context, userID uuid.UUID, departmentID string) ([]models.DepartmentMessage, error) {
	return s.stored, nil
}

func (s *stubMessageStore) CreatePair(ctx context.Context, sent, reply *models.DepartmentMessage) error {
	sent.ID, reply.ID = uuid.New(), uuid.New()
	s.stored = append(s.stored, *sent, *reply)
	return nil
}

func TestDepartmentChatService_Post(t *testing.T) {
	store := &stubMessageStore{}
	notifier, publisher := &recordingNotifier{}, &recordingPublisher{}
	svc := NewDepartmentChatService(stubDepartments{}, store, notifier, publisher)

	msgs, err := svc.Post(context.Background(), uuid.New(), "lab-support", "  Is my blood report ready?  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(msgs) != 2 {
		t.Fatalf("expected sent + reply, got %d", len(msgs))
	}
	if !msgs[0].Mine || msgs[0].Text != "Is my blood report ready?" {
		t.Fatalf("unexpected sent message: %+v", msgs[0])
	}
	if msgs[1].Mine || msgs[1].Text != DepartmentAutoReply {
		t.Fatalf("unexpected reply: %+v", msgs[1])
	}
	if len(notifier.titles) != 1 || notifier.titles[0] != "New Message" {
		t.Fatalf("expected New Message notification, got %v", notifier.titles)
	}
	if len(publisher.events) != 1 || publisher.events[0].Type != "department_message" {
		t.Fatalf("expected department_message event, got %+v", publisher.events)
	}
}

func TestDepartmentChatService_Post_Errors(t *testing.T) {
	svc := NewDepartmentChatService(stubDepartments{}, &stubMessageStore{}, &recordingNotifier{}, &recordingPublisher{})

	var vErr *ValidationError
	if _, err := svc.Post(context.Background(), uuid.New(), "lab-support", "   "); !errors.As(err, &vErr) {
		t.Fatalf("expected validation error for blank message, got %v", err)
	}

	var nf *NotFoundError
	if _, err := svc.Post(context.Background(), uuid.New(), "cafeteria", "hello"); !errors.As(err, &nf) {
		t.Fatalf("expected not found for unknown department, got %v", err)
	}
}
