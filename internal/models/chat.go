package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatRole identifies the author of an assistant chat message.
type ChatRole string

const (
	RoleAssistant ChatRole = "assistant"
	RoleUser      ChatRole = "user"
)

// ChatMessage is one entry of an assistant session. Messages are only ever
// appended to a session and never change after creation.
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      ChatRole  `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// PredictRequest is the body sent to the prediction service.
type PredictRequest struct {
	Symptoms string `json:"symptoms"`
	TopK     int    `json:"top_k"`
}

// PredictionResult is a single candidate condition returned by the prediction service.
type PredictionResult struct {
	Disease   string   `json:"disease"`
	Specialty string   `json:"specialty"`
	Score     float64  `json:"score"`
	FollowUp  []string `json:"follow_up,omitempty"`
}

// PredictionResponse holds the ranked results, most confident first.
type PredictionResponse struct {
	Input   string             `json:"input"`
	Results []PredictionResult `json:"results"`
}

// PredictionHealth is the prediction service's /health payload.
type PredictionHealth struct {
	Status string `json:"status"`
	Device string `json:"device,omitempty"`
}

// AssistantSessionView is the API representation of an assistant session.
type AssistantSessionView struct {
	ID        uuid.UUID     `json:"id"`
	State     string        `json:"state"`
	Messages  []ChatMessage `json:"messages"`
	CreatedAt time.Time     `json:"created_at"`
}

// SendMessageRequest is the payload of POST /assistant/sessions/{id}/messages.
type SendMessageRequest struct {
	Text string `json:"text"`
}

// SendMessageResponse carries the messages appended by one send.
type SendMessageResponse struct {
	Messages []ChatMessage `json:"messages"`
	State    string        `json:"state"`
}
