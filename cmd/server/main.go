package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"figueroa/trainer-backend/internal/api"
	"figueroa/trainer-backend/internal/config"
	"figueroa/trainer-backend/internal/mail"
	"figueroa/trainer-backend/internal/repository"
	"figueroa/trainer-backend/internal/repository/postgres"
	"figueroa/trainer-backend/internal/service"
	"figueroa/trainer-backend/internal/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("Starting Trainer Backend Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Database Connection ---
	db, err := postgres.Connect(cfg.Database.DSN)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to Postgres: %v", err)
	}
	log.Println("Database connection established and schema migrated.")

	// --- Initialize Storage ---
	log.Println("Initializing file storage service...")
	fileStorage, err := storage.NewS3Storage(cfg.S3)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
	}

	// --- Initialize Mail Dispatcher ---
	mailer, err := mail.NewSESMailer(cfg.Mail)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize SES mailer: %v", err)
	}
	dispatcher := mail.NewDispatcher(mailer, cfg.Recovery.CodeTTL, cfg.Mail.QueueSize, cfg.Mail.MaxRetries, cfg.Mail.RetryBackoff)
	dispatcher.Start()
	defer dispatcher.Stop()

	// --- Initialize Repositories ---
	log.Println("Initializing repositories...")
	userRepo := postgres.NewUserRepository(db)
	resetRepo := postgres.NewPasswordResetRepository(db)
	exerciseRepo := postgres.NewExerciseRepository(db)
	planRepo := postgres.NewPlanRepository(db)
	weightRepo := postgres.NewUserExerciseRepository(db)
	contactRepo := postgres.NewContactRepository(db)

	// --- Initialize Services ---
	log.Println("Initializing services...")
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration, cfg.JWT.RememberExpiration)
	recoveryService := service.NewRecoveryService(userRepo, resetRepo, dispatcher, repository.IssuePolicy{
		MaxAttempts:   cfg.Recovery.MaxAttempts,
		AttemptWindow: cfg.Recovery.AttemptWindow,
		Cooldown:      cfg.Recovery.Cooldown,
		CodeTTL:       cfg.Recovery.CodeTTL,
	}, nil)
	userService := service.NewUserService(userRepo, planRepo)
	exerciseService := service.NewExerciseService(exerciseRepo, fileStorage)
	planService := service.NewPlanService(planRepo, userRepo)
	weightsService := service.NewWeightsService(weightRepo)
	contactService := service.NewContactService(contactRepo)

	// --- Initialize Gin Engine ---
	router := gin.Default()

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	handlers := api.NewHandlers(authService, recoveryService, userService, exerciseService, planService, weightsService, contactService, cfg.Server.CookieSecure)
	api.SetupRoutes(router, cfg.JWT.Secret, handlers)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
