package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"medica-backend/internal/models"
)

// DepartmentAutoReply is the acknowledgement every department sends back.
const DepartmentAutoReply = "Thanks! ✅ We received your message. We’ll respond shortly."

const maxDepartmentMessageLen = 2000

type departmentLookup interface {
	GetDepartment(ctx context.Context, id string) (*models.Department, error)
}

type messageStore interface {
	ListThread(ctx context.Context, userID uuid.UUID, departmentID string) ([]models.DepartmentMessage, error)
	CreatePair(ctx context.Context, sent, reply *models.DepartmentMessage) error
}

type DepartmentChatService struct {
	departments departmentLookup
	messages    messageStore
	notifier    notifier
	publisher   Publisher
}

func NewDepartmentChatService(departments departmentLookup, messages messageStore, notifier notifier, publisher Publisher) *DepartmentChatService {
	return &DepartmentChatService{
		departments: departments,
		messages:    messages,
		notifier:    notifier,
		publisher:   publisher,
	}
}

func (s *DepartmentChatService) department(ctx context.Context, id string) (*models.Department, error) {
	dept, err := s.departments.GetDepartment(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "Department not found"}
		}
		return nil, err
	}
	return dept, nil
}

func (s *DepartmentChatService) Thread(ctx context.Context, userID uuid.UUID, departmentID string) ([]models.DepartmentMessage, error) {
	if _, err := s.department(ctx, departmentID); err != nil {
		return nil, err
	}
	return s.messages.ListThread(ctx, userID, departmentID)
}

// Post stores the user's message followed by the department's acknowledgement
// and returns both.
func (s *DepartmentChatService) Post(ctx context.Context, userID uuid.UUID, departmentID, text string) ([]models.DepartmentMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &ValidationError{Fields: map[string]string{"text": "Message cannot be empty"}}
	}
	if len([]rune(text)) > maxDepartmentMessageLen {
		return nil, &ValidationError{Fields: map[string]string{"text": "Message is too long"}}
	}

	dept, err := s.department(ctx, departmentID)
	if err != nil {
		return nil, err
	}

	sent := &models.DepartmentMessage{UserID: userID, DepartmentID: dept.ID, Mine: true, Text: text}
	reply := &models.DepartmentMessage{UserID: userID, DepartmentID: dept.ID, Mine: false, Text: DepartmentAutoReply}
	if err := s.messages.CreatePair(ctx, sent, reply); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, userID, "message", "New Message", dept.Name+": "+DepartmentAutoReply)
	s.publisher.Publish(ctx, userID, models.WSMessage{Type: "department_message", Payload: reply})

	return []models.DepartmentMessage{*sent, *reply}, nil
}
