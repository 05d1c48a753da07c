// Command seed populates a development database with the bootstrap
// superadmin, a handful of demo students and one active assessment.
package main

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/eduportal/assessment-api/internal/config"
	"github.com/eduportal/assessment-api/internal/model"
	"github.com/eduportal/assessment-api/internal/repository"
	"github.com/eduportal/assessment-api/internal/service"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	cfg := config.Load()

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	if err := mongoClient.Ping(ctx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}

	db := mongoClient.Database(cfg.MongoDB)

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

	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret)
	studentSvc := service.NewStudentService(studentRepo, userRepo, responseRepo)
	assessmentSvc := service.NewAssessmentService(assessmentRepo, responseRepo, nil)

	if err := authSvc.EnsureSuperadmin(ctx, cfg.SuperadminEmail, cfg.SuperadminPass); err != nil {
		log.Fatal("Failed to ensure superadmin:", err)
	}
	log.Printf("superadmin ready: %s", cfg.SuperadminEmail)

	superadmin, err := userRepo.GetByEmail(ctx, cfg.SuperadminEmail)
	if err != nil || superadmin == nil {
		log.Fatal("Failed to load superadmin:", err)
	}

	seedStudents(ctx, studentSvc)
	seedAssessment(ctx, assessmentSvc, superadmin.ID)

	log.Println("seed complete")
}

func seedStudents(ctx context.Context, studentSvc *service.StudentService) {
	rows := []service.StudentInput{
		{Name: "Aarav Sharma", Email: "aarav.sharma@portal.local", RollNumber: "MCA-001", Course: "MCA", Batch: "2026", Password: "student123"},
		{Name: "Diya Patel", Email: "diya.patel@portal.local", RollNumber: "MCA-002", Course: "MCA", Batch: "2026", Password: "student123"},
		{Name: "Rohan Iyer", Email: "rohan.iyer@portal.local", RollNumber: "MMS-001", Course: "MMS", Batch: "2026", Password: "student123"},
	}

	for _, row := range rows {
		if _, err := studentSvc.Create(ctx, &row); err != nil {
			// Conflicts are expected on repeat runs.
			log.Printf("skipping student %s: %v", row.Email, err)
			continue
		}
		log.Printf("created student %s", row.Email)
	}
}

func seedAssessment(ctx context.Context, assessmentSvc *service.AssessmentService, createdBy string) {
	existing, err := assessmentSvc.List(ctx, "")
	if err != nil {
		log.Fatal("Failed to list assessments:", err)
	}
	if len(existing) > 0 {
		log.Println("assessments already present, skipping")
		return
	}

	likert := model.QuestionScale{Min: 1, Max: 5}

	a, err := assessmentSvc.Create(ctx, createdBy, &service.AssessmentInput{
		Title:       "Baseline Self Assessment",
		Description: "Entry-level self evaluation across core skill areas.",
		Sections: []model.Section{
			{
				Title: "Communication",
				Questions: []model.Question{
					{Prompt: "I can present my ideas clearly to a group.", Required: true, Scale: likert},
					{Prompt: "I am comfortable writing professional emails.", Required: true, Scale: likert},
				},
			},
			{
				Title: "Aptitude",
				Questions: []model.Question{
					{Prompt: "I can work through quantitative problems quickly.", Required: true, Scale: likert},
					{Prompt: "I enjoy logical puzzles and reasoning tasks.", Scale: likert},
				},
			},
		},
		Criteria: model.AssessmentCriteria{Courses: []string{"MCA", "MMS"}},
		Settings: model.AssessmentSettings{TimeLimitMinutes: 30, AllowMultipleAttempts: true, MaxAttempts: 2},
	})
	if err != nil {
		log.Fatal("Failed to create assessment:", err)
	}

	if _, err := assessmentSvc.SetStatus(ctx, a.ID, model.AssessmentActive); err != nil {
		log.Fatal("Failed to activate assessment:", err)
	}
	log.Printf("created assessment %q (%s)", a.Title, a.ID)
}
