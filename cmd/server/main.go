package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ad/go-eduhub/internal/cert"
	"github.com/ad/go-eduhub/internal/db"
	"github.com/ad/go-eduhub/internal/handlers"
	"github.com/ad/go-eduhub/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/joho/godotenv/autoload"
	_ "modernc.org/sqlite"
)

func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "eduhub.db"
	}

	listenAddr := os.Getenv("LISTEN_ADDR")
	if listenAddr == "" {
		listenAddr = ":8080"
	}

	certDir := os.Getenv("CERT_DIR")
	if certDir == "" {
		certDir = "certificates"
	}
	if err := os.MkdirAll(certDir, 0o755); err != nil {
		log.Fatalf("Failed to create certificate directory: %v", err)
	}

	sqlDB, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer sqlDB.Close()

	if err := db.InitSchema(sqlDB); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	queue := db.NewQueue(sqlDB)
	defer queue.Close()

	userRepo := db.NewUserRepository(queue)
	courseRepo := db.NewCourseRepository(queue)
	lessonRepo := db.NewLessonRepository(queue)
	quizRepo := db.NewQuizRepository(queue)
	progressRepo := db.NewProgressRepository(queue)
	enrollmentRepo := db.NewEnrollmentRepository(queue)
	certRepo := db.NewCertificateRepository(queue)

	certificateService := services.NewCertificateService(certRepo, userRepo, courseRepo, cert.NewRenderer(), certDir)
	progressService := services.NewProgressService(lessonRepo, quizRepo, progressRepo, certificateService)
	leaderboard := services.NewLeaderboardAggregator(userRepo, lessonRepo, progressRepo, certRepo)
	statsService := services.NewStatsService(enrollmentRepo, lessonRepo, progressRepo, certRepo)

	handler := handlers.New(
		userRepo, courseRepo, lessonRepo, quizRepo,
		progressRepo, enrollmentRepo, certRepo,
		progressService, leaderboard, statsService,
	)

	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	handler.Routes(router)

	server := &http.Server{
		Addr:              listenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		log.Printf("Listening on %s", listenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
