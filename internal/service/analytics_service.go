package service

import (
	"context"
	"log"
	"sort"

	"github.com/eduportal/assessment-api/internal/apperror"
	"github.com/eduportal/assessment-api/internal/cache"
	"github.com/eduportal/assessment-api/internal/eligibility"
	"github.com/eduportal/assessment-api/internal/model"
	"github.com/eduportal/assessment-api/internal/repository"
	"github.com/eduportal/assessment-api/internal/scoring"
)

// placementThreshold is the overall percentage at or above which a student's
// latest completed response counts as a placement recommendation.
const placementThreshold = 70.0

// attentionThreshold flags weak sections in per-student rollups.
const attentionThreshold = 60.0

// AssessmentSummary is the per-assessment aggregation view.
type AssessmentSummary struct {
	AssessmentID       string  `json:"assessmentId"`
	Title              string  `json:"title"`
	EligibleCount      int     `json:"eligibleCount"`
	StartedCount       int     `json:"startedCount"`
	CompletedCount     int     `json:"completedCount"`
	CompletionRate     float64 `json:"completionRate"`
	AverageScore       float64 `json:"averageScore"`
	AverageTimeSeconds float64 `json:"averageTimeSeconds"`
}

// SectionStat is one section's rollup in the per-student view, keyed by
// section title.
type SectionStat struct {
	Title             string  `json:"title"`
	AveragePercentage float64 `json:"averagePercentage"`
	Completed         int     `json:"completed"`
	NeedsAttention    bool    `json:"needsAttention"`
}

// StudentSummary is the per-student aggregation view over completed responses.
type StudentSummary struct {
	StudentID            string        `json:"studentId"`
	Name                 string        `json:"name"`
	CompletedCount       int           `json:"completedCount"`
	OverallPercentage    float64       `json:"overallPercentage"`
	OverallAverageRating float64       `json:"overallAverageRating"`
	Sections             []SectionStat `json:"sections"`
}

// Overview is the system-wide aggregation view.
type Overview struct {
	TotalStudents      int     `json:"totalStudents"`
	TotalAssessments   int     `json:"totalAssessments"`
	TotalResponses     int     `json:"totalResponses"`
	CompletedResponses int     `json:"completedResponses"`
	AverageScore       float64 `json:"averageScore"`
	// PlacementRate is the fraction (as a percentage) of students with at
	// least one completed response whose latest one scored >= 70.
	PlacementRate     float64 `json:"placementRecommendationRate"`
	StudentsEvaluated int     `json:"studentsEvaluated"`
}

// AnalyticsService computes aggregation views by scanning persisted
// collections at request time. The only caching is a TTL'd snapshot of
// computed views; nothing is incrementally maintained.
type AnalyticsService struct {
	studentRepo    repository.StudentRepo
	assessmentRepo repository.AssessmentRepo
	responseRepo   repository.ResponseRepo
	analyticsCache cache.AnalyticsCache
}

// NewAnalyticsService creates a new analytics service.
func NewAnalyticsService(studentRepo repository.StudentRepo, assessmentRepo repository.AssessmentRepo, responseRepo repository.ResponseRepo, analyticsCache cache.AnalyticsCache) *AnalyticsService {
	return &AnalyticsService{
		studentRepo:    studentRepo,
		assessmentRepo: assessmentRepo,
		responseRepo:   responseRepo,
		analyticsCache: analyticsCache,
	}
}

// AssessmentSummary aggregates one assessment: eligibility via the criteria
// matcher over the full student set, start/completion counts and averages
// over completed responses only.
func (s *AnalyticsService) AssessmentSummary(ctx context.Context, assessmentID string) (*AssessmentSummary, error) {
	if s.analyticsCache != nil {
		var cached AssessmentSummary
		if ok, err := s.analyticsCache.GetAssessmentSummary(ctx, assessmentID, &cached); err != nil {
			log.Printf("analytics cache read for %s: %v", assessmentID, err)
		} else if ok {
			return &cached, nil
		}
	}

	a, err := s.assessmentRepo.GetByID(ctx, assessmentID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if a == nil {
		return nil, apperror.NotFound("assessment not found")
	}

	students, err := s.studentRepo.List(ctx, repository.StudentFilter{})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	responses, err := s.responseRepo.ListByAssessment(ctx, assessmentID)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	summary := &AssessmentSummary{AssessmentID: a.ID, Title: a.Title}
	for _, st := range students {
		if eligibility.Eligible(st, &a.Criteria) {
			summary.EligibleCount++
		}
	}

	var scoreSum, timeSum float64
	for _, r := range responses {
		if r.Started() {
			summary.StartedCount++
		}
		if r.Finished() {
			summary.CompletedCount++
			scoreSum += r.OverallPercentage
			timeSum += float64(r.TimeSpentSeconds)
		}
	}
	if summary.EligibleCount > 0 {
		summary.CompletionRate = scoring.Round1(float64(summary.CompletedCount) / float64(summary.EligibleCount) * 100)
	}
	if summary.CompletedCount > 0 {
		summary.AverageScore = scoring.Round1(scoreSum / float64(summary.CompletedCount))
		summary.AverageTimeSeconds = scoring.Round1(timeSum / float64(summary.CompletedCount))
	}

	if s.analyticsCache != nil {
		if err := s.analyticsCache.SetAssessmentSummary(ctx, assessmentID, summary); err != nil {
			log.Printf("analytics cache write for %s: %v", assessmentID, err)
		}
	}
	return summary, nil
}

// StudentSummary aggregates a student's completed responses: overall
// averages plus a section-title-keyed rollup flagging weak sections.
func (s *AnalyticsService) StudentSummary(ctx context.Context, studentID string) (*StudentSummary, error) {
	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if student == nil {
		return nil, apperror.NotFound("student not found")
	}

	responses, err := s.responseRepo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	summary := &StudentSummary{StudentID: student.ID, Name: student.Name}

	var pctSum, ratingSum float64
	type sectionAcc struct {
		sum   float64
		count int
	}
	sections := map[string]*sectionAcc{}

	for _, r := range responses {
		if !r.Finished() {
			continue
		}
		summary.CompletedCount++
		pctSum += r.OverallPercentage
		ratingSum += r.OverallAverageRating
		for _, ss := range r.SectionScores {
			acc := sections[ss.Title]
			if acc == nil {
				acc = &sectionAcc{}
				sections[ss.Title] = acc
			}
			acc.sum += ss.Percentage
			acc.count++
		}
	}

	if summary.CompletedCount > 0 {
		summary.OverallPercentage = scoring.Round1(pctSum / float64(summary.CompletedCount))
		summary.OverallAverageRating = scoring.Round1(ratingSum / float64(summary.CompletedCount))
	}

	titles := make([]string, 0, len(sections))
	for title := range sections {
		titles = append(titles, title)
	}
	sort.Strings(titles)
	for _, title := range titles {
		acc := sections[title]
		avg := scoring.Round1(acc.sum / float64(acc.count))
		summary.Sections = append(summary.Sections, SectionStat{
			Title:             title,
			AveragePercentage: avg,
			Completed:         acc.count,
			NeedsAttention:    avg < attentionThreshold,
		})
	}
	return summary, nil
}

// SystemOverview aggregates all collections. The computed snapshot is cached
// with a TTL; a fresh snapshot is served from cache until it expires or a
// submission invalidates it.
func (s *AnalyticsService) SystemOverview(ctx context.Context) (*Overview, error) {
	if s.analyticsCache != nil {
		var cached Overview
		if ok, err := s.analyticsCache.GetOverview(ctx, &cached); err != nil {
			log.Printf("analytics overview cache read: %v", err)
		} else if ok {
			return &cached, nil
		}
	}

	students, err := s.studentRepo.List(ctx, repository.StudentFilter{})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	assessments, err := s.assessmentRepo.List(ctx, "")
	if err != nil {
		return nil, apperror.Internal(err)
	}
	responses, err := s.responseRepo.ListAll(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	overview := &Overview{
		TotalStudents:    len(students),
		TotalAssessments: len(assessments),
		TotalResponses:   len(responses),
	}

	var scoreSum float64
	latestByStudent := map[string]*model.Response{}
	for _, r := range responses {
		if !r.Finished() {
			continue
		}
		overview.CompletedResponses++
		scoreSum += r.OverallPercentage
		if newerResponse(r, latestByStudent[r.StudentID]) {
			latestByStudent[r.StudentID] = r
		}
	}
	if overview.CompletedResponses > 0 {
		overview.AverageScore = scoring.Round1(scoreSum / float64(overview.CompletedResponses))
	}

	overview.StudentsEvaluated = len(latestByStudent)
	if overview.StudentsEvaluated > 0 {
		recommended := 0
		for _, r := range latestByStudent {
			if r.OverallPercentage >= placementThreshold {
				recommended++
			}
		}
		overview.PlacementRate = scoring.Round1(float64(recommended) / float64(overview.StudentsEvaluated) * 100)
	}

	if s.analyticsCache != nil {
		if err := s.analyticsCache.SetOverview(ctx, overview); err != nil {
			log.Printf("analytics overview cache write: %v", err)
		}
	}
	return overview, nil
}

// newerResponse reports whether candidate should replace current as a
// student's most recent completed response. Submission time descending with
// attempt number descending as the deterministic tie-break.
func newerResponse(candidate, current *model.Response) bool {
	if current == nil {
		return true
	}
	ct, pt := candidate.SubmittedAt, current.SubmittedAt
	switch {
	case ct == nil:
		return false
	case pt == nil:
		return true
	case ct.After(*pt):
		return true
	case pt.After(*ct):
		return false
	default:
		return candidate.AttemptNumber > current.AttemptNumber
	}
}
