package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/eduportal/assessment-api/internal/apperror"
	"github.com/eduportal/assessment-api/internal/cache"
	"github.com/eduportal/assessment-api/internal/eligibility"
	"github.com/eduportal/assessment-api/internal/model"
	"github.com/eduportal/assessment-api/internal/repository"
	"github.com/eduportal/assessment-api/internal/scoring"
)

// StartResult is returned by Start: the active attempt plus the
// rendering-ready question structure.
type StartResult struct {
	ResponseID    string                    `json:"responseId"`
	AttemptNumber int                       `json:"attemptNumber"`
	StartedAt     time.Time                 `json:"startedAt"`
	Resumed       bool                      `json:"resumed"`
	Sections      []scoring.RenderedSection `json:"sections"`
}

// AttemptResult is the completed response joined with the denormalized
// assessment structure for rendering.
type AttemptResult struct {
	Response *model.Response           `json:"response"`
	Title    string                    `json:"title"`
	Sections []scoring.RenderedSection `json:"sections"`
}

// AttemptService drives the attempt state machine: start/resume, progress
// saves, submission and result reads.
type AttemptService struct {
	assessmentRepo repository.AssessmentRepo
	responseRepo   repository.ResponseRepo
	analyticsCache cache.AnalyticsCache
	now            func() time.Time
}

// NewAttemptService creates a new attempt service.
func NewAttemptService(assessmentRepo repository.AssessmentRepo, responseRepo repository.ResponseRepo, analyticsCache cache.AnalyticsCache) *AttemptService {
	return &AttemptService{
		assessmentRepo: assessmentRepo,
		responseRepo:   responseRepo,
		analyticsCache: analyticsCache,
		now:            time.Now,
	}
}

// Start creates or resumes the student's attempt on an assessment.
//
// Resuming an in_progress attempt is idempotent, except that an attempt whose
// time window has expired gets a fresh window (startedAt reset). A finished
// latest attempt yields a new attempt number when settings allow and the
// ceiling is not reached.
func (s *AttemptService) Start(ctx context.Context, assessmentID string, student *model.Student) (*StartResult, error) {
	if student == nil {
		return nil, apperror.NotFound("student not found")
	}
	a, err := s.assessmentRepo.GetByID(ctx, assessmentID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if a == nil {
		return nil, apperror.NotFound("assessment not found")
	}
	if a.Status != model.AssessmentActive {
		return nil, apperror.Unavailable("assessment is not active")
	}
	if !eligibility.Eligible(student, &a.Criteria) {
		return nil, apperror.NotAuthorized("student does not meet assessment criteria")
	}

	latest, err := s.responseRepo.GetLatest(ctx, assessmentID, student.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	switch {
	case latest == nil:
		return s.createAttempt(ctx, a, student.ID, 1)

	case latest.Status == model.ResponseInProgress:
		resumed := true
		if limit := a.Settings.TimeLimitMinutes; limit > 0 {
			if s.now().Sub(latest.StartedAt) > time.Duration(limit)*time.Minute {
				// Session extension: the resumed attempt gets a fresh window.
				latest.StartedAt = s.now()
				if err := s.responseRepo.Update(ctx, latest); err != nil {
					return nil, apperror.Internal(err)
				}
			}
		}
		return &StartResult{
			ResponseID:    latest.ID,
			AttemptNumber: latest.AttemptNumber,
			StartedAt:     latest.StartedAt,
			Resumed:       resumed,
			Sections:      scoring.RenderQuestions(a),
		}, nil

	case latest.Status == model.ResponseNotStarted:
		latest.Status = model.ResponseInProgress
		latest.StartedAt = s.now()
		if err := s.responseRepo.Update(ctx, latest); err != nil {
			return nil, apperror.Internal(err)
		}
		return &StartResult{
			ResponseID:    latest.ID,
			AttemptNumber: latest.AttemptNumber,
			StartedAt:     latest.StartedAt,
			Sections:      scoring.RenderQuestions(a),
		}, nil

	default: // finished
		max := a.EffectiveMaxAttempts()
		if !a.Settings.AllowMultipleAttempts || latest.AttemptNumber >= max {
			return nil, apperror.Conflict("assessment already completed")
		}
		return s.createAttempt(ctx, a, student.ID, latest.AttemptNumber+1)
	}
}

func (s *AttemptService) createAttempt(ctx context.Context, a *model.Assessment, studentID string, attemptNumber int) (*StartResult, error) {
	resp := &model.Response{
		AssessmentID:  a.ID,
		StudentID:     studentID,
		AttemptNumber: attemptNumber,
		Status:        model.ResponseInProgress,
		Answers:       map[string]int{},
		StartedAt:     s.now(),
	}
	id, err := s.responseRepo.Create(ctx, resp)
	if err != nil {
		if repository.IsDuplicateKey(err) {
			// Lost a concurrent start race; the winner holds the in_progress slot.
			return nil, apperror.Conflict("an attempt is already in progress")
		}
		return nil, apperror.Internal(err)
	}
	return &StartResult{
		ResponseID:    id,
		AttemptNumber: attemptNumber,
		StartedAt:     resp.StartedAt,
		Sections:      scoring.RenderQuestions(a),
	}, nil
}

// SaveProgress merges partial answers into an in_progress response.
func (s *AttemptService) SaveProgress(ctx context.Context, responseID, studentID string, answers map[string]int) (*model.Response, error) {
	resp, a, err := s.ownedResponse(ctx, responseID, studentID)
	if err != nil {
		return nil, err
	}
	if resp.Finished() {
		return nil, apperror.Conflict("response is already completed")
	}
	if err := validateAnswers(a, answers, false); err != nil {
		return nil, err
	}

	if resp.Answers == nil {
		resp.Answers = map[string]int{}
	}
	for q, v := range answers {
		resp.Answers[q] = v
	}
	if resp.Status == model.ResponseNotStarted {
		resp.Status = model.ResponseInProgress
	}
	if err := s.responseRepo.Update(ctx, resp); err != nil {
		return nil, apperror.Internal(err)
	}
	return resp, nil
}

// Submit validates required-question coverage, scores the merged answers and
// transitions the response to completed. Completed responses are immutable
// snapshots; scores are never recomputed.
func (s *AttemptService) Submit(ctx context.Context, responseID, studentID string, answers map[string]int) (*model.Response, error) {
	resp, a, err := s.ownedResponse(ctx, responseID, studentID)
	if err != nil {
		return nil, err
	}
	if resp.Finished() {
		return nil, apperror.Conflict("response is already completed")
	}

	if resp.Answers == nil {
		resp.Answers = map[string]int{}
	}
	for q, v := range answers {
		resp.Answers[q] = v
	}
	if err := validateAnswers(a, resp.Answers, true); err != nil {
		return nil, err
	}

	result := scoring.Score(a, resp.Answers)
	now := s.now()
	resp.Status = model.ResponseCompleted
	resp.SectionScores = result.SectionScores
	resp.OverallPercentage = result.OverallPercentage
	resp.OverallAverageRating = result.OverallAverageRating
	resp.SubmittedAt = &now
	resp.TimeSpentSeconds = int(now.Sub(resp.StartedAt).Seconds())

	if err := s.responseRepo.Update(ctx, resp); err != nil {
		return nil, apperror.Internal(err)
	}
	if s.analyticsCache != nil {
		if err := s.analyticsCache.Invalidate(ctx, resp.AssessmentID); err != nil {
			log.Printf("analytics cache invalidate for %s: %v", resp.AssessmentID, err)
		}
	}
	return resp, nil
}

// Result returns the student's latest completed response for an assessment,
// joined with the rendering-ready question structure.
func (s *AttemptService) Result(ctx context.Context, assessmentID, studentID string) (*AttemptResult, error) {
	a, err := s.assessmentRepo.GetByID(ctx, assessmentID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if a == nil {
		return nil, apperror.NotFound("assessment not found")
	}

	responses, err := s.responseRepo.ListByPair(ctx, assessmentID, studentID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	var latest *model.Response
	for _, r := range responses {
		if !r.Finished() {
			continue
		}
		if latest == nil || r.AttemptNumber > latest.AttemptNumber {
			latest = r
		}
	}
	if latest == nil {
		return nil, apperror.NotFound("no completed response for this assessment")
	}
	return &AttemptResult{
		Response: latest,
		Title:    a.Title,
		Sections: scoring.RenderQuestions(a),
	}, nil
}

// ownedResponse loads a response, verifies ownership and loads its assessment.
func (s *AttemptService) ownedResponse(ctx context.Context, responseID, studentID string) (*model.Response, *model.Assessment, error) {
	resp, err := s.responseRepo.GetByID(ctx, responseID)
	if err != nil {
		return nil, nil, apperror.Internal(err)
	}
	if resp == nil {
		return nil, nil, apperror.NotFound("response not found")
	}
	if resp.StudentID != studentID {
		return nil, nil, apperror.NotAuthorized("response belongs to another student")
	}

	a, err := s.assessmentRepo.GetByID(ctx, resp.AssessmentID)
	if err != nil {
		return nil, nil, apperror.Internal(err)
	}
	if a == nil {
		return nil, nil, apperror.NotFound("assessment not found")
	}
	return resp, a, nil
}

// validateAnswers checks that every answered question exists and its value is
// within the scale range. With requireComplete it additionally demands an
// answer for every required question.
func validateAnswers(a *model.Assessment, answers map[string]int, requireComplete bool) error {
	questions := map[string]model.Question{}
	for _, sec := range a.Sections {
		for _, q := range sec.Questions {
			questions[q.ID] = q
		}
	}

	for qID, v := range answers {
		q, ok := questions[qID]
		if !ok {
			return apperror.InvalidInput(fmt.Sprintf("unknown question %s", qID))
		}
		if v < q.Scale.Min || v > q.Scale.Max {
			return apperror.InvalidInput(fmt.Sprintf("answer for question %s out of range [%d,%d]", qID, q.Scale.Min, q.Scale.Max))
		}
	}

	if requireComplete {
		for qID, q := range questions {
			if q.Required {
				if _, ok := answers[qID]; !ok {
					return apperror.InvalidInput("required questions are missing answers")
				}
			}
		}
	}
	return nil
}
