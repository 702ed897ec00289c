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

	"github.com/AlfredoZC/DentiAI/internal/api"
	"github.com/AlfredoZC/DentiAI/internal/api/middleware"
	"github.com/AlfredoZC/DentiAI/internal/config"
	"github.com/AlfredoZC/DentiAI/internal/repository/postgresql"
	"github.com/AlfredoZC/DentiAI/internal/service"
	"github.com/AlfredoZC/DentiAI/internal/vision"
)

func main() {
	cfg := config.Load()

	db, err := postgresql.NewDB(cfg)
	if err != nil {
		log.Fatalf("could not connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connection established.")

	if err := os.MkdirAll(cfg.UploadsDir, 0o755); err != nil {
		log.Fatalf("could not create uploads directory: %v", err)
	}

	// Weights and label table load once here and stay read-only for the
	// process lifetime. A load failure is per-request terminal, not fatal:
	// the server still comes up and every prediction reports the failure.
	var model vision.Model
	detector, err := vision.NewDetector(cfg.DetectorModelPath, cfg.DetectorLabelsPath)
	if err != nil {
		log.Printf("WARNING: detector failed to load, predictions will be rejected: %v", err)
		model = vision.Unloaded{}
	} else {
		model = detector
		log.Printf("Detector loaded from %s (%d classes)", cfg.DetectorModelPath, len(detector.Labels()))
	}
	defer model.Close()

	userRepo := postgresql.NewPgUserRepository(db)
	historyRepo := postgresql.NewPgHistoryRepository(db)

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiration)
	diagnosisService := service.NewDiagnosisService(model, historyRepo, cfg.UploadsDir)
	authMiddleware := middleware.NewAuthMiddleware(authService)

	router := api.SetupRouter(authService, diagnosisService, authMiddleware, cfg.StaticDir)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		log.Printf("DentiAI server running on port %s", cfg.ServerPort)
		log.Printf("Frontend: http://127.0.0.1:%s/static/index.html", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shut down: %v", err)
	}
	log.Println("Server stopped.")
}
