package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"medica-backend/internal/middleware"
	"medica-backend/internal/models"
	"medica-backend/internal/services"
)

// withUser attaches an authenticated user and chi URL params to req.
func withUser(req *http.Request, userID uuid.UUID, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	return req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, userID))
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) models.APIError {
	t.Helper()
	var resp models.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	return resp.Error
}

// ─── Auth Handler Tests ───

type stubAuthService struct {
	registered *models.RegisterRequest
	err        error
	loggedOut  string
}

func (s *stubAuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthTokens, error) {
	s.registered = &req
	if s.err != nil {
		return nil, s.err
	}
	return &models.AuthTokens{AccessToken: "access", RefreshToken: "refresh", ExpiresIn: 900}, nil
}

func (s *stubAuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthTokens, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.AuthTokens{AccessToken: "access", RefreshToken: "refresh", ExpiresIn: 900}, nil
}

func (s *stubAuthService) RefreshToken(ctx context.Context, refreshToken string) (*models.AuthTokens, error) {
	return nil, &services.UnauthorizedError{Message: "Invalid or expired refresh token"}
}

func (s *stubAuthService) Logout(ctx context.Context, refreshToken string) error {
	s.loggedOut = refreshToken
	return nil
}

func TestRegisterHandler_ValidInput(t *testing.T) {
	svc := &stubAuthService{}
	h := &AuthHandler{authService: svc}

	body := `{"full_name":"Test User","email":"test@example.com","password":"StrongPass123!"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	h.Register(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", rr.Code)
	}
	if svc.registered == nil || svc.registered.FullName != "Test User" || svc.registered.Email != "test@example.com" {
		t.Fatalf("Expected request to reach the service, got %+v", svc.registered)
	}

	var tokens models.AuthTokens
	json.NewDecoder(rr.Body).Decode(&tokens)
	if tokens.AccessToken != "access" || tokens.RefreshToken != "refresh" {
		t.Errorf("Unexpected tokens: %+v", tokens)
	}
}

func TestRegisterHandler_ValidationErrors(t *testing.T) {
	svc := &stubAuthService{err: &services.ValidationError{Fields: map[string]string{"email": "Invalid email format"}}}
	h := &AuthHandler{authService: svc}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(`{"email":"nope"}`))
	req.Header.Set("X-Request-ID", "req-1")
	rr := httptest.NewRecorder()
	h.Register(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rr.Code)
	}
	apiErr := decodeError(t, rr)
	if apiErr.Code != "VALIDATION_ERROR" || apiErr.Fields["email"] == "" || apiErr.RequestID != "req-1" {
		t.Errorf("Unexpected error envelope: %+v", apiErr)
	}
}

func TestRegisterHandler_InvalidBody(t *testing.T) {
	svc := &stubAuthService{}
	h := &AuthHandler{authService: svc}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(`{"email":`))
	rr := httptest.NewRecorder()
	h.Register(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rr.Code)
	}
	if svc.registered != nil {
		t.Fatalf("service should not be called for malformed JSON")
	}
}

func TestRefreshHandler_Unauthorized(t *testing.T) {
	h := &AuthHandler{authService: &stubAuthService{}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", strings.NewReader(`{"refresh_token":"old"}`))
	rr := httptest.NewRecorder()
	h.Refresh(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("Expected status 401, got %d", rr.Code)
	}
}

func TestLogoutHandler(t *testing.T) {
	svc := &stubAuthService{}
	h := &AuthHandler{authService: svc}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", strings.NewReader(`{"refresh_token":"tok"}`))
	rr := httptest.NewRecorder()
	h.Logout(rr, req)

	if rr.Code != http.StatusOK || svc.loggedOut != "tok" {
		t.Fatalf("Expected logout of 'tok', got status %d token %q", rr.Code, svc.loggedOut)
	}
}

// ─── Error Mapping Tests ───

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", &services.ValidationError{Fields: map[string]string{"x": "bad"}}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"conflict", &services.ConflictError{Message: "taken"}, http.StatusConflict, "CONFLICT"},
		{"not found", &services.NotFoundError{Message: "missing"}, http.StatusNotFound, "NOT_FOUND"},
		{"unauthorized", &services.UnauthorizedError{Message: "no"}, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"forbidden", &services.ForbiddenError{Message: "no"}, http.StatusForbidden, "FORBIDDEN"},
		{"rate limited", &services.RateLimitError{Message: "slow down"}, http.StatusTooManyRequests, "RATE_LIMITED"},
		{"precondition", &services.PreconditionError{Message: "Medical ID not set. Go to Profile and save it."}, http.StatusUnprocessableEntity, "PRECONDITION_FAILED"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rr := httptest.NewRecorder()
			handleServiceError(rr, req, tc.err)

			if rr.Code != tc.status {
				t.Errorf("Expected status %d, got %d", tc.status, rr.Code)
			}
			if got := decodeError(t, rr).Code; got != tc.code {
				t.Errorf("Expected code %q, got %q", tc.code, got)
			}
		})
	}
}

func TestHandleServiceError_HidesInternalMessage(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	handleServiceError(rr, req, errors.New("pq: connection refused"))

	if msg := decodeError(t, rr).Message; strings.Contains(msg, "connection refused") {
		t.Errorf("internal error details leaked: %q", msg)
	}
}
