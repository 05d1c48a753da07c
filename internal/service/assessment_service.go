package service

import (
	"context"
	"fmt"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/eduportal/assessment-api/internal/apperror"
	"github.com/eduportal/assessment-api/internal/cache"
	"github.com/eduportal/assessment-api/internal/model"
	"github.com/eduportal/assessment-api/internal/repository"
)

// AssessmentInput is the validated payload for creating or updating an
// assessment.
type AssessmentInput struct {
	Title       string                   `json:"title" validate:"required"`
	Description string                   `json:"description"`
	Sections    []model.Section          `json:"sections" validate:"required,min=1"`
	Criteria    model.AssessmentCriteria `json:"criteria"`
	Settings    model.AssessmentSettings `json:"settings"`
}

// statusOrder drives forward-only lifecycle transitions.
var statusOrder = map[model.AssessmentStatus]int{
	model.AssessmentDraft:     0,
	model.AssessmentActive:    1,
	model.AssessmentCompleted: 2,
	model.AssessmentArchived:  3,
}

// AssessmentService handles assessment authoring CRUD and lifecycle.
type AssessmentService struct {
	assessmentRepo repository.AssessmentRepo
	responseRepo   repository.ResponseRepo
	analyticsCache cache.AnalyticsCache
	validate       *validator.Validate
}

// NewAssessmentService creates a new assessment service.
func NewAssessmentService(assessmentRepo repository.AssessmentRepo, responseRepo repository.ResponseRepo, analyticsCache cache.AnalyticsCache) *AssessmentService {
	return &AssessmentService{
		assessmentRepo: assessmentRepo,
		responseRepo:   responseRepo,
		analyticsCache: analyticsCache,
		validate:       validator.New(),
	}
}

// Create validates the questionnaire shape and stores a draft assessment.
func (s *AssessmentService) Create(ctx context.Context, createdBy string, in *AssessmentInput) (*model.Assessment, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, apperror.InvalidInput(validationMessage(err))
	}
	if err := validateSections(in.Sections); err != nil {
		return nil, err
	}
	assignIDs(in.Sections)

	a := &model.Assessment{
		Title:       in.Title,
		Description: in.Description,
		Sections:    in.Sections,
		Criteria:    in.Criteria,
		Settings:    in.Settings,
		Status:      model.AssessmentDraft,
		Version:     1,
		CreatedBy:   createdBy,
	}
	if _, err := s.assessmentRepo.Create(ctx, a); err != nil {
		return nil, apperror.Internal(err)
	}
	return a, nil
}

// Get returns an assessment by ID.
func (s *AssessmentService) Get(ctx context.Context, id string) (*model.Assessment, error) {
	a, err := s.assessmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if a == nil {
		return nil, apperror.NotFound("assessment not found")
	}
	return a, nil
}

// List returns assessments, optionally filtered by status.
func (s *AssessmentService) List(ctx context.Context, status model.AssessmentStatus) ([]*model.Assessment, error) {
	if status != "" {
		if _, ok := statusOrder[status]; !ok {
			return nil, apperror.InvalidInput("unknown assessment status")
		}
	}
	assessments, err := s.assessmentRepo.List(ctx, status)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return assessments, nil
}

// Update replaces the questionnaire content and bumps the version.
// Completed and archived assessments are immutable.
func (s *AssessmentService) Update(ctx context.Context, id string, in *AssessmentInput) (*model.Assessment, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, apperror.InvalidInput(validationMessage(err))
	}
	if err := validateSections(in.Sections); err != nil {
		return nil, err
	}

	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status == model.AssessmentCompleted || a.Status == model.AssessmentArchived {
		return nil, apperror.Conflict("assessment is no longer editable")
	}

	assignIDs(in.Sections)
	a.Title = in.Title
	a.Description = in.Description
	a.Sections = in.Sections
	a.Criteria = in.Criteria
	a.Settings = in.Settings
	a.Version++

	if err := s.assessmentRepo.Update(ctx, a); err != nil {
		return nil, apperror.Internal(err)
	}
	s.invalidateAnalytics(ctx, id)
	return a, nil
}

// SetStatus moves the lifecycle forward (draft -> active -> completed ->
// archived). Backward transitions are rejected.
func (s *AssessmentService) SetStatus(ctx context.Context, id string, status model.AssessmentStatus) (*model.Assessment, error) {
	next, ok := statusOrder[status]
	if !ok {
		return nil, apperror.InvalidInput("unknown assessment status")
	}
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if next <= statusOrder[a.Status] {
		return nil, apperror.Conflict(fmt.Sprintf("cannot move assessment from %s to %s", a.Status, status))
	}

	a.Status = status
	if err := s.assessmentRepo.Update(ctx, a); err != nil {
		return nil, apperror.Internal(err)
	}
	s.invalidateAnalytics(ctx, id)
	return a, nil
}

// Delete removes an assessment and cascades to its responses.
func (s *AssessmentService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.assessmentRepo.Delete(ctx, id); err != nil {
		return apperror.Internal(err)
	}
	if err := s.responseRepo.DeleteByAssessment(ctx, id); err != nil {
		return apperror.Internal(err)
	}
	s.invalidateAnalytics(ctx, id)
	return nil
}

func (s *AssessmentService) invalidateAnalytics(ctx context.Context, assessmentID string) {
	if s.analyticsCache == nil {
		return
	}
	if err := s.analyticsCache.Invalidate(ctx, assessmentID); err != nil {
		log.Printf("analytics cache invalidate for %s: %v", assessmentID, err)
	}
}

// validateSections enforces the questionnaire invariants: at least one
// section, each with at least one question, each question with min < max.
// A label count that disagrees with the range is tolerated; rendering
// synthesizes labels instead.
func validateSections(sections []model.Section) error {
	if len(sections) == 0 {
		return apperror.InvalidInput("assessment needs at least one section")
	}
	for i, sec := range sections {
		if len(sec.Questions) == 0 {
			return apperror.InvalidInput(fmt.Sprintf("section %d needs at least one question", i+1))
		}
		for j, q := range sec.Questions {
			if q.Prompt == "" {
				return apperror.InvalidInput(fmt.Sprintf("section %d question %d needs a prompt", i+1, j+1))
			}
			if q.Scale.Min >= q.Scale.Max {
				return apperror.InvalidInput(fmt.Sprintf("section %d question %d scale must have min < max", i+1, j+1))
			}
		}
	}
	return nil
}

// assignIDs fills missing section/question IDs so answers can reference them.
func assignIDs(sections []model.Section) {
	for i := range sections {
		if sections[i].ID == "" {
			sections[i].ID = uuid.NewString()
		}
		for j := range sections[i].Questions {
			if sections[i].Questions[j].ID == "" {
				sections[i].Questions[j].ID = uuid.NewString()
			}
		}
	}
}
