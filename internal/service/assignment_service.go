package service

import (
	"context"
	"time"

	"github.com/eduportal/assessment-api/internal/apperror"
	"github.com/eduportal/assessment-api/internal/eligibility"
	"github.com/eduportal/assessment-api/internal/model"
	"github.com/eduportal/assessment-api/internal/repository"
)

// AttemptInfo summarizes the student's standing on an assigned assessment.
type AttemptInfo struct {
	Current int  `json:"current"`
	Max     int  `json:"max"`
	Allowed bool `json:"allowed"`
}

// LastAttempt is the latest attempt's metadata, present once the student has
// started the assessment.
type LastAttempt struct {
	ResponseID        string     `json:"responseId"`
	AttemptNumber     int        `json:"attemptNumber"`
	Status            string     `json:"status"`
	Completed         bool       `json:"completed"`
	OverallPercentage *float64   `json:"overallPercentage,omitempty"`
	SubmittedAt       *time.Time `json:"submittedAt,omitempty"`
}

// AssignedAssessment is one entry of the student's assigned list.
type AssignedAssessment struct {
	ID            string                   `json:"id"`
	Title         string                   `json:"title"`
	Description   string                   `json:"description,omitempty"`
	Status        model.AssessmentStatus   `json:"status"`
	SectionCount  int                      `json:"sectionCount"`
	QuestionCount int                      `json:"questionCount"`
	Settings      model.AssessmentSettings `json:"settings"`
	Attempts      AttemptInfo              `json:"attempts"`
	LastAttempt   *LastAttempt             `json:"lastAttempt,omitempty"`
}

// AssignmentService computes the lazy assigned-assessments view. Assignment
// is never materialized; eligibility is evaluated per request.
type AssignmentService struct {
	assessmentRepo repository.AssessmentRepo
	responseRepo   repository.ResponseRepo
}

// NewAssignmentService creates a new assignment service.
func NewAssignmentService(assessmentRepo repository.AssessmentRepo, responseRepo repository.ResponseRepo) *AssignmentService {
	return &AssignmentService{assessmentRepo: assessmentRepo, responseRepo: responseRepo}
}

// ListAssignedFor returns active and completed assessments whose criteria
// accept the student, joined with the student's latest-attempt metadata.
func (s *AssignmentService) ListAssignedFor(ctx context.Context, student *model.Student) ([]AssignedAssessment, error) {
	if student == nil {
		return nil, apperror.NotFound("student not found")
	}

	assessments, err := s.assessmentRepo.ListByStatuses(ctx, []model.AssessmentStatus{
		model.AssessmentActive,
		model.AssessmentCompleted,
	})
	if err != nil {
		return nil, apperror.Internal(err)
	}

	assigned := []AssignedAssessment{}
	for _, a := range assessments {
		if !eligibility.Eligible(student, &a.Criteria) {
			continue
		}

		latest, err := s.responseRepo.GetLatest(ctx, a.ID, student.ID)
		if err != nil {
			return nil, apperror.Internal(err)
		}

		entry := AssignedAssessment{
			ID:            a.ID,
			Title:         a.Title,
			Description:   a.Description,
			Status:        a.Status,
			SectionCount:  len(a.Sections),
			QuestionCount: a.QuestionCount(),
			Settings:      a.Settings,
			Attempts: AttemptInfo{
				Max:     a.EffectiveMaxAttempts(),
				Allowed: true,
			},
		}

		if latest != nil {
			entry.Attempts.Current = latest.AttemptNumber
			la := &LastAttempt{
				ResponseID:    latest.ID,
				AttemptNumber: latest.AttemptNumber,
				Status:        string(latest.Status),
				Completed:     latest.Finished(),
				SubmittedAt:   latest.SubmittedAt,
			}
			if latest.Finished() {
				pct := latest.OverallPercentage
				la.OverallPercentage = &pct
				// Same rule as starting a new attempt after completion.
				entry.Attempts.Allowed = a.Settings.AllowMultipleAttempts &&
					latest.AttemptNumber < entry.Attempts.Max
			}
			entry.LastAttempt = la
		}

		assigned = append(assigned, entry)
	}
	return assigned, nil
}
