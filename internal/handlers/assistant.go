package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"medica-backend/internal/assistant"
	"medica-backend/internal/middleware"
	"medica-backend/internal/models"
)

type sessionStore interface {
	Create(userID uuid.UUID) *assistant.Session
	Get(userID, sessionID uuid.UUID) (*assistant.Session, error)
	Close(userID, sessionID uuid.UUID) error
}

// AssistantHandler exposes the symptom-checking assistant. Sessions live in
// memory and are scoped to the user who opened them.
type AssistantHandler struct {
	sessions sessionStore
}

func NewAssistantHandler(sessions sessionStore) *AssistantHandler {
	return &AssistantHandler{sessions: sessions}
}

func (h *AssistantHandler) session(w http.ResponseWriter, r *http.Request) (*assistant.Session, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid session ID", r))
		return nil, false
	}

	s, err := h.sessions.Get(middleware.GetUserID(r.Context()), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Session not found", r))
		return nil, false
	}
	return s, true
}

func (h *AssistantHandler) Create(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Create(middleware.GetUserID(r.Context()))
	writeJSON(w, http.StatusCreated, s.View())
}

func (h *AssistantHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.View())
}

func (h *AssistantHandler) Send(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	// A client that hangs up still gets the reply appended to the session.
	msgs, err := s.Send(context.WithoutCancel(r.Context()), req.Text)
	if err != nil {
		switch {
		case errors.Is(err, assistant.ErrRequestInFlight):
			writeJSON(w, http.StatusConflict, errorResp("REQUEST_IN_FLIGHT", "Please wait for the current reply", r))
		case errors.Is(err, assistant.ErrSessionClosed):
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Session not found", r))
		default:
			writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
		}
		return
	}

	if len(msgs) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusOK, models.SendMessageResponse{
		Messages: msgs,
		State:    string(s.State()),
	})
}

func (h *AssistantHandler) Close(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid session ID", r))
		return
	}

	if err := h.sessions.Close(middleware.GetUserID(r.Context()), id); err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Session not found", r))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Session closed"})
}
