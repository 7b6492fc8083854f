package assistant

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"medica-backend/internal/models"
)

// DefaultTopK is the number of candidates requested per prediction.
const DefaultTopK = 3

// Predictor turns a free-text symptom description into ranked conditions.
type Predictor interface {
	Predict(ctx context.Context, symptoms string, topK int) (*models.PredictionResponse, error)
}

type State string

const (
	StateIdle             State = "idle"
	StateAwaitingResponse State = "awaiting_response"
)

var (
	ErrRequestInFlight = errors.New("a prediction request is already in progress for this session")
	ErrSessionClosed   = errors.New("assistant session is closed")
	ErrEmptyResults    = errors.New("prediction returned no results")
)

// Session is one assistant conversation. Its message list only grows, and at
// most one prediction is outstanding at a time.
type Session struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	CreatedAt time.Time

	predictor Predictor
	now       func() time.Time

	mu         sync.Mutex
	messages   []models.ChatMessage
	state      State
	closed     bool
	lastActive time.Time
}

func NewSession(userID uuid.UUID, predictor Predictor) *Session {
	return newSession(userID, predictor, time.Now)
}

func newSession(userID uuid.UUID, predictor Predictor, now func() time.Time) *Session {
	created := now().UTC()
	s := &Session{
		ID:         uuid.New(),
		UserID:     userID,
		CreatedAt:  created,
		predictor:  predictor,
		now:        now,
		state:      StateIdle,
		lastActive: created,
	}
	s.messages = append(s.messages, s.newMessage(models.RoleAssistant, WelcomeText))
	return s
}

// Send processes one user turn and returns the messages it appended, user
// message first. Blank input appends nothing. Prediction failures become a
// single apology message and are never returned to the caller.
func (s *Session) Send(ctx context.Context, text string) ([]models.ChatMessage, error) {
	trimmed := strings.TrimSpace(text)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	if trimmed == "" {
		s.mu.Unlock()
		return nil, nil
	}
	if s.state == StateAwaitingResponse {
		s.mu.Unlock()
		return nil, ErrRequestInFlight
	}

	userMsg := s.newMessage(models.RoleUser, trimmed)
	s.messages = append(s.messages, userMsg)
	s.lastActive = s.now().UTC()

	if IsGreeting(trimmed) {
		reply := s.newMessage(models.RoleAssistant, GreetingText)
		s.messages = append(s.messages, reply)
		s.mu.Unlock()
		return []models.ChatMessage{userMsg, reply}, nil
	}

	s.state = StateAwaitingResponse
	s.mu.Unlock()

	texts := s.predict(ctx, trimmed)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateIdle
	s.lastActive = s.now().UTC()
	if s.closed {
		return nil, ErrSessionClosed
	}

	appended := []models.ChatMessage{userMsg}
	for _, t := range texts {
		msg := s.newMessage(models.RoleAssistant, t)
		s.messages = append(s.messages, msg)
		appended = append(appended, msg)
	}
	return appended, nil
}

// predict returns the assistant texts for a symptom description.
func (s *Session) predict(ctx context.Context, symptoms string) []string {
	resp, err := s.predictor.Predict(ctx, symptoms, DefaultTopK)
	if err == nil && (resp == nil || len(resp.Results) == 0) {
		err = ErrEmptyResults
	}
	if err != nil {
		log.Printf("assistant: session %s: prediction failed: %v", s.ID, err)
		return []string{ApologyText}
	}

	top := resp.Results[0]
	texts := make([]string, 0, 1+len(top.FollowUp))
	texts = append(texts, DiagnosisText(top))
	for _, q := range top.FollowUp {
		texts = append(texts, FollowUpText(q))
	}
	return texts
}

// Messages returns a copy of the conversation so far.
func (s *Session) Messages() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// View snapshots the session for API responses.
func (s *Session) View() models.AssistantSessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := make([]models.ChatMessage, len(s.messages))
	copy(msgs, s.messages)
	return models.AssistantSessionView{
		ID:        s.ID,
		State:     string(s.state),
		Messages:  msgs,
		CreatedAt: s.CreatedAt,
	}
}

// Close discards the session. Replies of an in-flight request are dropped.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.messages = nil
	s.mu.Unlock()
}

// idleSince reports the last activity time and whether a request is pending.
func (s *Session) idleSince() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive, s.state == StateAwaitingResponse
}

// newMessage must be called with s.mu held or before the session is shared.
func (s *Session) newMessage(role models.ChatRole, text string) models.ChatMessage {
	return models.ChatMessage{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		CreatedAt: s.now().UTC(),
	}
}
