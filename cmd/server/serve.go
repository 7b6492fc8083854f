package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"medica-backend/internal/assistant"
	"medica-backend/internal/config"
	"medica-backend/internal/database"
	"medica-backend/internal/handlers"
	"medica-backend/internal/middleware"
	"medica-backend/internal/repository"
	"medica-backend/internal/router"
	"medica-backend/internal/services"
	"medica-backend/internal/telemetry"
	"medica-backend/internal/websocket"
	"medica-backend/internal/worker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API, job workers and reminder scheduler",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	log.Println("🚀 Starting Medica Backend...")
	ctx := cmd.Context()

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Tracing ────
	shutdownTracing, err := telemetry.InitTracing(ctx, cfg.OTLPEndpoint, "medica-backend", cfg.Env)
	if err != nil {
		log.Fatalf("✗ Tracing setup failed: %v", err)
	}

	// ──── Step 3: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 4: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClients.Close()
	log.Println("✓ Redis connected")

	// ──── Step 5: Run Database Migrations ────
	applied, err := database.RunMigrations(ctx, pool, cfg.MigrationsDir)
	if err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Printf("✓ Database migrations applied (%d new)", applied)

	// ──── Initialize Repositories ────
	userRepo := repository.NewUserRepo(pool)
	profileRepo := repository.NewProfileRepo(pool)
	patientRepo := repository.NewPatientRepo(pool)
	recordRepo := repository.NewRecordRepo(pool)
	directoryRepo := repository.NewDirectoryRepo(pool)
	appointmentRepo := repository.NewAppointmentRepo(pool)
	messageRepo := repository.NewMessageRepo(pool)
	notificationRepo := repository.NewNotificationRepo(pool)
	jobRepo := repository.NewJobRepo(pool)

	// ──── Step 6: Initialize Prediction Backend ────
	predictor, releasePredictor, err := services.NewPredictor(cfg)
	if err != nil {
		log.Fatalf("✗ Prediction backend initialization failed: %v", err)
	}
	defer releasePredictor()

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	emailService := services.NewEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
	publisher := services.NewRedisPublisher(redisClients.PubSub)
	jobQueue := services.NewJobQueue(jobRepo, redisClients.Queue)
	notifier := services.NewNotifier(notificationRepo, publisher)
	profileService := services.NewProfileService(profileRepo)
	authService := services.NewAuthService(userRepo, profileRepo, redisClients.Queue, jwtAuth)
	appointmentService := services.NewAppointmentService(directoryRepo, appointmentRepo, notifier, jobQueue, publisher)
	departmentChat := services.NewDepartmentChatService(directoryRepo, messageRepo, notifier, publisher)
	reportService := services.NewReportService(recordRepo, profileService, jobQueue, notifier, publisher)

	sessions := assistant.NewManager(predictor, cfg.AssistantSessionTTL)
	sessions.Start()
	log.Printf("✓ Assistant sessions expire after %s idle", cfg.AssistantSessionTTL)

	// ──── Step 7: Start Job Worker Pool ────
	workerPool := worker.NewPool(redisClients.Queue, worker.Deps{
		Jobs:         jobRepo,
		Appointments: appointmentRepo,
		Users:        userRepo,
		Email:        emailService,
		Reports:      reportService,
		Publisher:    publisher,
	}, cfg.WorkerCount)
	if recovered, err := workerPool.Recover(ctx); err != nil {
		log.Printf("✗ Job recovery failed: %v", err)
	} else if recovered > 0 {
		log.Printf("✓ Requeued %d pending job(s)", recovered)
	}
	workerPool.Start()
	log.Printf("✓ Worker pool started (%d goroutines)", cfg.WorkerCount)

	reminders := services.NewReminderScheduler(appointmentRepo, emailService)
	reminders.Start()
	log.Println("✓ Appointment reminder scheduler started")

	// ──── Step 8: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClients.PubSub, jwtAuth)
	log.Println("✓ WebSocket hub started")

	// ──── Initialize Handlers ────
	healthHandler := handlers.NewHealthHandler(pool, nil)
	if client, ok := predictor.(*services.PredictionClient); ok {
		healthHandler = handlers.NewHealthHandler(pool, client)
	}

	authLimiter := middleware.NewRateLimiter(10, time.Minute)
	h := router.Handlers{
		Auth:          handlers.NewAuthHandler(authService),
		Profile:       handlers.NewProfileHandler(profileService),
		Records:       handlers.NewRecordsHandler(profileService, patientRepo, recordRepo, reportService),
		Patients:      handlers.NewPatientHandler(patientRepo),
		Directory:     handlers.NewDirectoryHandler(directoryRepo),
		Appointments:  handlers.NewAppointmentHandler(appointmentService, appointmentRepo),
		Departments:   handlers.NewDepartmentHandler(departmentChat),
		Assistant:     handlers.NewAssistantHandler(sessions),
		Notifications: handlers.NewNotificationHandler(notificationRepo),
		Health:        healthHandler,
	}

	// ──── Step 9: Start HTTP Server ────
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router.New(jwtAuth, authLimiter, h, wsHub, cfg.FrontendURL),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	log.Printf("✓ Medica Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	case <-ctx.Done():
	}

	// Graceful shutdown
	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown: %v", err)
	}
	wsHub.Close()
	workerPool.Stop()
	reminders.Stop()
	sessions.Stop()
	authLimiter.Stop()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Printf("Tracing shutdown: %v", err)
	}
	return nil
}
