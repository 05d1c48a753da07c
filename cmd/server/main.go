package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/eduportal/assessment-api/internal/cache"
	"github.com/eduportal/assessment-api/internal/config"
	"github.com/eduportal/assessment-api/internal/repository"
	"github.com/eduportal/assessment-api/internal/service"
	"github.com/eduportal/assessment-api/internal/transport/rest"
)

func main() {
	log.Println("started")
	ctx := context.Background()

	cfg := config.Load()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB)

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Initialize repositories (index creation happens here)
	userRepo, err := repository.NewUserRepo(ctx, db)
	if err != nil {
		log.Fatal("Failed to init user repository:", err)
	}
	studentRepo, err := repository.NewStudentRepo(ctx, db)
	if err != nil {
		log.Fatal("Failed to init student repository:", err)
	}
	assessmentRepo := repository.NewAssessmentRepo(db)
	responseRepo, err := repository.NewResponseRepo(ctx, db)
	if err != nil {
		log.Fatal("Failed to init response repository:", err)
	}

	// Initialize caches
	analyticsCache := cache.NewAnalyticsCache(rdb, cfg.AnalyticsCacheTTL)

	// Initialize services
	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret)
	studentSvc := service.NewStudentService(studentRepo, userRepo, responseRepo)
	assessmentSvc := service.NewAssessmentService(assessmentRepo, responseRepo, analyticsCache)
	attemptSvc := service.NewAttemptService(assessmentRepo, responseRepo, analyticsCache)
	assignmentSvc := service.NewAssignmentService(assessmentRepo, responseRepo)
	analyticsSvc := service.NewAnalyticsService(studentRepo, assessmentRepo, responseRepo, analyticsCache)

	// Ensure the bootstrap superadmin account exists
	if err := authSvc.EnsureSuperadmin(ctx, cfg.SuperadminEmail, cfg.SuperadminPass); err != nil {
		log.Fatal("Failed to ensure superadmin account:", err)
	}

	// Create router with container
	container := &rest.Container{
		AuthService:       authSvc,
		StudentService:    studentSvc,
		AssessmentService: assessmentSvc,
		AttemptService:    attemptSvc,
		AssignmentService: assignmentSvc,
		AnalyticsService:  analyticsSvc,
	}

	router := rest.NewRouter(container)

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
