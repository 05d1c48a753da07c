package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"github.com/eduportal/assessment-api/internal/model"
	"github.com/eduportal/assessment-api/internal/service"
	"github.com/eduportal/assessment-api/internal/transport/rest/handler"
	"github.com/eduportal/assessment-api/internal/transport/rest/middleware"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService       *service.AuthService
	StudentService    *service.StudentService
	AssessmentService *service.AssessmentService
	AttemptService    *service.AttemptService
	AssignmentService *service.AssignmentService
	AnalyticsService  *service.AnalyticsService
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	studentHandler := handler.NewStudentHandler(c.StudentService, c.AnalyticsService)
	assessmentHandler := handler.NewAssessmentHandler(c.AssessmentService, c.AnalyticsService)
	attemptHandler := handler.NewAttemptHandler(c.AttemptService, c.AssignmentService, c.StudentService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	// Authenticated routes (any role)
	authRoutes := v1.NewRoute().Subrouter()
	authRoutes.Use(authMW.RequireRole(model.RoleSuperadmin, model.RoleAdmin, model.RoleStudent))
	authRoutes.HandleFunc("/auth/me", authHandler.Me).Methods("GET", "OPTIONS")

	// Admin routes (superadmin passes admin gates automatically)
	adminRoutes := v1.NewRoute().Subrouter()
	adminRoutes.Use(authMW.RequireRole(model.RoleAdmin))

	adminRoutes.HandleFunc("/students", studentHandler.Create).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/students", studentHandler.List).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/students/import", studentHandler.Import).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/students/{id}", studentHandler.Get).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/students/{id}", studentHandler.Update).Methods("PUT", "OPTIONS")
	adminRoutes.HandleFunc("/students/{id}", studentHandler.Delete).Methods("DELETE", "OPTIONS")
	adminRoutes.HandleFunc("/students/{id}/analytics", studentHandler.Analytics).Methods("GET", "OPTIONS")

	adminRoutes.HandleFunc("/assessments", assessmentHandler.Create).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/assessments", assessmentHandler.List).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/assessments/{id}", assessmentHandler.Get).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/assessments/{id}", assessmentHandler.Update).Methods("PUT", "OPTIONS")
	adminRoutes.HandleFunc("/assessments/{id}", assessmentHandler.Delete).Methods("DELETE", "OPTIONS")
	adminRoutes.HandleFunc("/assessments/{id}/status", assessmentHandler.SetStatus).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/assessments/{id}/analytics", assessmentHandler.Analytics).Methods("GET", "OPTIONS")

	adminRoutes.HandleFunc("/analytics", assessmentHandler.Overview).Methods("GET", "OPTIONS")

	// Student routes
	studentRoutes := v1.NewRoute().Subrouter()
	studentRoutes.Use(authMW.RequireRole(model.RoleStudent))

	studentRoutes.HandleFunc("/assessments/student/assigned", attemptHandler.Assigned).Methods("GET", "OPTIONS")
	studentRoutes.HandleFunc("/assessments/student/results/{id}", attemptHandler.Result).Methods("GET", "OPTIONS")
	studentRoutes.HandleFunc("/assessments/{id}/start", attemptHandler.Start).Methods("POST", "OPTIONS")
	studentRoutes.HandleFunc("/responses/{id}/progress", attemptHandler.SaveProgress).Methods("PUT", "OPTIONS")
	studentRoutes.HandleFunc("/responses/{id}/submit", attemptHandler.Submit).Methods("POST", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
