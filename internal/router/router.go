package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"medica-backend/internal/handlers"
	"medica-backend/internal/middleware"
	"medica-backend/internal/websocket"
)

// Handlers groups every HTTP handler the API mounts.
type Handlers struct {
	Auth          *handlers.AuthHandler
	Profile       *handlers.ProfileHandler
	Records       *handlers.RecordsHandler
	Patients      *handlers.PatientHandler
	Directory     *handlers.DirectoryHandler
	Appointments  *handlers.AppointmentHandler
	Departments   *handlers.DepartmentHandler
	Assistant     *handlers.AssistantHandler
	Notifications *handlers.NotificationHandler
	Health        *handlers.HealthHandler
}

func New(
	jwtAuth *middleware.JWTAuth,
	authLimiter *middleware.RateLimiter,
	h Handlers,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	if authLimiter == nil {
		// 10 req/min per IP
		authLimiter = middleware.NewRateLimiter(10, time.Minute)
	}

	r.Get("/health", h.Health.Check)

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Auth Routes (public) ────
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
			r.Post("/refresh", h.Auth.Refresh)

			// Logout requires auth
			r.Group(func(r chi.Router) {
				r.Use(jwtAuth.Middleware)
				r.Post("/logout", h.Auth.Logout)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(jwtAuth.Middleware)

			// ──── Profile & Own Records ────
			r.Get("/profile", h.Profile.Get)
			r.Put("/profile", h.Profile.Update)

			r.Route("/me", func(r chi.Router) {
				r.Get("/details", h.Records.Details)
				r.Get("/medical-history", h.Records.History)
				r.Get("/reports", h.Records.Reports)
				r.Post("/reports/{id}/extract", h.Records.ExtractReport)
				r.Get("/allergies", h.Records.Allergies)
				r.Post("/allergies", h.Records.CreateAllergy)
				r.Delete("/allergies/{id}", h.Records.DeleteAllergy)
			})

			// ──── Patients ────
			r.Get("/patients", h.Patients.List)
			r.Get("/patients/{medical_id}", h.Patients.Get)

			// ──── Directory ────
			r.Get("/specialties", h.Directory.Specialties)
			r.Get("/doctors", h.Directory.Doctors)
			r.Get("/doctors/{id}", h.Directory.Doctor)
			r.Get("/emergency-contacts", h.Directory.EmergencyContacts)
			r.Get("/pharmacies", h.Directory.Pharmacies)

			// ──── Appointments ────
			r.Route("/appointments", func(r chi.Router) {
				r.Get("/slots", h.Appointments.Slots)
				r.Get("/", h.Appointments.List)
				r.Post("/", h.Appointments.Book)
				r.Delete("/{id}", h.Appointments.Cancel)
			})

			// ──── Department Chat ────
			r.Route("/departments", func(r chi.Router) {
				r.Get("/", h.Directory.Departments)
				r.Get("/{id}/messages", h.Departments.Messages)
				r.Post("/{id}/messages", h.Departments.Post)
			})

			// ──── Virtual Assistant ────
			r.Route("/assistant/sessions", func(r chi.Router) {
				r.Post("/", h.Assistant.Create)
				r.Get("/{id}", h.Assistant.Get)
				r.Post("/{id}/messages", h.Assistant.Send)
				r.Delete("/{id}", h.Assistant.Close)
			})

			// ──── Notifications ────
			r.Get("/notifications", h.Notifications.List)
			r.Put("/notifications/{id}/read", h.Notifications.MarkRead)
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return otelhttp.NewHandler(r, "medica-api",
		otelhttp.WithFilter(func(req *http.Request) bool { return req.URL.Path != "/health" }),
	)
}
