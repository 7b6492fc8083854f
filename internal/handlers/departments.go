package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"medica-backend/internal/middleware"
	"medica-backend/internal/models"
)

type departmentChat interface {
	Thread(ctx context.Context, userID uuid.UUID, departmentID string) ([]models.DepartmentMessage, error)
	Post(ctx context.Context, userID uuid.UUID, departmentID, text string) ([]models.DepartmentMessage, error)
}

type DepartmentHandler struct {
	chat departmentChat
}

func NewDepartmentHandler(chat departmentChat) *DepartmentHandler {
	return &DepartmentHandler{chat: chat}
}

func (h *DepartmentHandler) Messages(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.chat.Thread(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": msgs})
}

func (h *DepartmentHandler) Post(w http.ResponseWriter, r *http.Request) {
	var req models.PostDepartmentMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	msgs, err := h.chat.Post(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"), req.Text)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"items": msgs})
}
