package service

import (
	"context"
	"testing"
	"time"

	"github.com/eduportal/assessment-api/internal/apperror"
	"github.com/eduportal/assessment-api/internal/model"
)

func testAssessment(settings model.AssessmentSettings) *model.Assessment {
	return &model.Assessment{
		ID:     "a1",
		Title:  "Placement Readiness",
		Status: model.AssessmentActive,
		Sections: []model.Section{
			{
				ID:    "sec1",
				Title: "Communication",
				Questions: []model.Question{
					{ID: "q1", Prompt: "Clarity", Required: true, Scale: model.QuestionScale{Min: 1, Max: 5}},
					{ID: "q2", Prompt: "Confidence", Scale: model.QuestionScale{Min: 1, Max: 5}},
				},
			},
		},
		Criteria: model.AssessmentCriteria{Courses: []string{"MCA"}},
		Settings: settings,
	}
}

func testStudent() *model.Student {
	return &model.Student{ID: "s1", Name: "Asha", Course: "MCA", StudentStatus: model.StudentActive}
}

func newAttemptFixture(a *model.Assessment) (*AttemptService, *stubResponseRepo) {
	responses := &stubResponseRepo{}
	svc := NewAttemptService(newStubAssessmentRepo(a), responses, nil)
	return svc, responses
}

func TestStartCreatesFirstAttempt(t *testing.T) {
	svc, responses := newAttemptFixture(testAssessment(model.AssessmentSettings{}))

	res, err := svc.Start(context.Background(), "a1", testStudent())
	if err != nil {
		t.Fatalf("Start error: %v", err)
	}
	if res.AttemptNumber != 1 {
		t.Fatalf("attempt number = %d, want 1", res.AttemptNumber)
	}
	if len(responses.responses) != 1 {
		t.Fatalf("expected 1 persisted response, got %d", len(responses.responses))
	}
	if responses.responses[0].Status != model.ResponseInProgress {
		t.Fatalf("status = %s, want in_progress", responses.responses[0].Status)
	}
	if len(res.Sections) != 1 || len(res.Sections[0].Questions) != 2 {
		t.Fatalf("unexpected rendered sections: %+v", res.Sections)
	}
	if res.Sections[0].Questions[0].Labels[4] != "Excellent" {
		t.Fatalf("expected synthesized labels, got %v", res.Sections[0].Questions[0].Labels)
	}
}

func TestStartResumeIsIdempotent(t *testing.T) {
	svc, responses := newAttemptFixture(testAssessment(model.AssessmentSettings{}))
	ctx := context.Background()

	first, err := svc.Start(ctx, "a1", testStudent())
	if err != nil {
		t.Fatalf("first Start error: %v", err)
	}
	second, err := svc.Start(ctx, "a1", testStudent())
	if err != nil {
		t.Fatalf("second Start error: %v", err)
	}
	if first.ResponseID != second.ResponseID {
		t.Fatalf("resume returned different response: %s vs %s", first.ResponseID, second.ResponseID)
	}
	if !second.Resumed {
		t.Fatal("second start should report resumed")
	}
	if len(responses.responses) != 1 {
		t.Fatalf("resume must not create a second document, have %d", len(responses.responses))
	}
}

func TestStartResetsExpiredWindow(t *testing.T) {
	a := testAssessment(model.AssessmentSettings{TimeLimitMinutes: 30})
	svc, responses := newAttemptFixture(a)
	ctx := context.Background()

	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }
	if _, err := svc.Start(ctx, "a1", testStudent()); err != nil {
		t.Fatalf("Start error: %v", err)
	}

	// Resume within the window: startedAt untouched.
	svc.now = func() time.Time { return base.Add(10 * time.Minute) }
	res, err := svc.Start(ctx, "a1", testStudent())
	if err != nil {
		t.Fatalf("resume error: %v", err)
	}
	if !res.StartedAt.Equal(base) {
		t.Fatalf("startedAt changed within window: %v", res.StartedAt)
	}

	// Resume after expiry: fresh window.
	late := base.Add(45 * time.Minute)
	svc.now = func() time.Time { return late }
	res, err = svc.Start(ctx, "a1", testStudent())
	if err != nil {
		t.Fatalf("late resume error: %v", err)
	}
	if !res.StartedAt.Equal(late) {
		t.Fatalf("expired resume should reset startedAt, got %v", res.StartedAt)
	}
	if !responses.responses[0].StartedAt.Equal(late) {
		t.Fatal("reset startedAt was not persisted")
	}
}

func TestStartRejectsInactiveAssessment(t *testing.T) {
	a := testAssessment(model.AssessmentSettings{})
	a.Status = model.AssessmentDraft
	svc, _ := newAttemptFixture(a)

	_, err := svc.Start(context.Background(), "a1", testStudent())
	if apperror.KindOf(err) != apperror.KindUnavailable {
		t.Fatalf("expected Unavailable, got %v", err)
	}
}

func TestStartRejectsIneligibleStudent(t *testing.T) {
	svc, _ := newAttemptFixture(testAssessment(model.AssessmentSettings{}))
	student := testStudent()
	student.Course = "MMS"

	_, err := svc.Start(context.Background(), "a1", student)
	if apperror.KindOf(err) != apperror.KindNotAuthorized {
		t.Fatalf("expected NotAuthorized, got %v", err)
	}
}

func TestStartUnknownAssessment(t *testing.T) {
	svc, _ := newAttemptFixture(testAssessment(model.AssessmentSettings{}))
	_, err := svc.Start(context.Background(), "missing", testStudent())
	if apperror.KindOf(err) != apperror.KindNotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestSecondAttemptRejectedWhenSingleAttempt(t *testing.T) {
	svc, _ := newAttemptFixture(testAssessment(model.AssessmentSettings{}))
	ctx := context.Background()

	res, err := svc.Start(ctx, "a1", testStudent())
	if err != nil {
		t.Fatalf("Start error: %v", err)
	}
	if _, err := svc.Submit(ctx, res.ResponseID, "s1", map[string]int{"q1": 5, "q2": 3}); err != nil {
		t.Fatalf("Submit error: %v", err)
	}

	_, err = svc.Start(ctx, "a1", testStudent())
	if apperror.KindOf(err) != apperror.KindConflict {
		t.Fatalf("expected Conflict after completed single attempt, got %v", err)
	}
}

func TestMultipleAttemptsUpToCeiling(t *testing.T) {
	svc, _ := newAttemptFixture(testAssessment(model.AssessmentSettings{
		AllowMultipleAttempts: true,
		MaxAttempts:           2,
	}))
	ctx := context.Background()

	res, err := svc.Start(ctx, "a1", testStudent())
	if err != nil {
		t.Fatalf("Start error: %v", err)
	}
	if _, err := svc.Submit(ctx, res.ResponseID, "s1", map[string]int{"q1": 4}); err != nil {
		t.Fatalf("Submit error: %v", err)
	}

	res, err = svc.Start(ctx, "a1", testStudent())
	if err != nil {
		t.Fatalf("second Start error: %v", err)
	}
	if res.AttemptNumber != 2 {
		t.Fatalf("attempt number = %d, want 2", res.AttemptNumber)
	}
	if _, err := svc.Submit(ctx, res.ResponseID, "s1", map[string]int{"q1": 5}); err != nil {
		t.Fatalf("second Submit error: %v", err)
	}

	_, err = svc.Start(ctx, "a1", testStudent())
	if apperror.KindOf(err) != apperror.KindConflict {
		t.Fatalf("expected Conflict at attempt ceiling, got %v", err)
	}
}

func TestConcurrentStartLosesToUniqueIndex(t *testing.T) {
	svc, responses := newAttemptFixture(testAssessment(model.AssessmentSettings{}))
	ctx := context.Background()

	// Simulate a racing writer that already claimed the in_progress slot
	// after our GetLatest returned nothing.
	if _, err := responses.Create(ctx, &model.Response{
		AssessmentID:  "a1",
		StudentID:     "s2",
		AttemptNumber: 1,
		Status:        model.ResponseInProgress,
	}); err != nil {
		t.Fatalf("seed response: %v", err)
	}
	// Start would see the existing attempt and resume it; drive createAttempt
	// directly to model the interleaving where both callers pass GetLatest.
	_, err := svc.createAttempt(ctx, testAssessment(model.AssessmentSettings{}), "s2", 1)
	if apperror.KindOf(err) != apperror.KindConflict {
		t.Fatalf("expected Conflict on duplicate in_progress, got %v", err)
	}
}

func TestSubmitScoresScenario(t *testing.T) {
	svc, responses := newAttemptFixture(testAssessment(model.AssessmentSettings{}))
	ctx := context.Background()

	res, err := svc.Start(ctx, "a1", testStudent())
	if err != nil {
		t.Fatalf("Start error: %v", err)
	}
	submitted, err := svc.Submit(ctx, res.ResponseID, "s1", map[string]int{"q1": 5, "q2": 3})
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}

	if submitted.Status != model.ResponseCompleted {
		t.Fatalf("status = %s, want completed", submitted.Status)
	}
	if submitted.OverallPercentage != 75.0 {
		t.Fatalf("overall percentage = %v, want 75.0", submitted.OverallPercentage)
	}
	if submitted.OverallAverageRating != 4.0 {
		t.Fatalf("average rating = %v, want 4.0", submitted.OverallAverageRating)
	}
	if len(submitted.SectionScores) != 1 || submitted.SectionScores[0].Percentage != 75.0 {
		t.Fatalf("unexpected section scores: %+v", submitted.SectionScores)
	}
	if submitted.SubmittedAt == nil {
		t.Fatal("submittedAt not stamped")
	}
	if responses.responses[0].Status != model.ResponseCompleted {
		t.Fatal("completion not persisted")
	}
}

func TestSubmitRequiresRequiredQuestions(t *testing.T) {
	svc, _ := newAttemptFixture(testAssessment(model.AssessmentSettings{}))
	ctx := context.Background()

	res, err := svc.Start(ctx, "a1", testStudent())
	if err != nil {
		t.Fatalf("Start error: %v", err)
	}
	// q1 is required; submitting only q2 must fail.
	_, err = svc.Submit(ctx, res.ResponseID, "s1", map[string]int{"q2": 3})
	if apperror.KindOf(err) != apperror.KindInvalidInput {
		t.Fatalf("expected InvalidInput for missing required answer, got %v", err)
	}
}

func TestSubmitRejectsOutOfRangeValue(t *testing.T) {
	svc, _ := newAttemptFixture(testAssessment(model.AssessmentSettings{}))
	ctx := context.Background()

	res, err := svc.Start(ctx, "a1", testStudent())
	if err != nil {
		t.Fatalf("Start error: %v", err)
	}
	_, err = svc.Submit(ctx, res.ResponseID, "s1", map[string]int{"q1": 9})
	if apperror.KindOf(err) != apperror.KindInvalidInput {
		t.Fatalf("expected InvalidInput for out-of-range value, got %v", err)
	}
}

func TestSubmitTwiceIsConflict(t *testing.T) {
	svc, _ := newAttemptFixture(testAssessment(model.AssessmentSettings{}))
	ctx := context.Background()

	res, err := svc.Start(ctx, "a1", testStudent())
	if err != nil {
		t.Fatalf("Start error: %v", err)
	}
	if _, err := svc.Submit(ctx, res.ResponseID, "s1", map[string]int{"q1": 5}); err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	_, err = svc.Submit(ctx, res.ResponseID, "s1", map[string]int{"q1": 1})
	if apperror.KindOf(err) != apperror.KindConflict {
		t.Fatalf("expected Conflict on double submit, got %v", err)
	}
}

func TestSubmitForeignResponseRejected(t *testing.T) {
	svc, _ := newAttemptFixture(testAssessment(model.AssessmentSettings{}))
	ctx := context.Background()

	res, err := svc.Start(ctx, "a1", testStudent())
	if err != nil {
		t.Fatalf("Start error: %v", err)
	}
	_, err = svc.Submit(ctx, res.ResponseID, "intruder", map[string]int{"q1": 5})
	if apperror.KindOf(err) != apperror.KindNotAuthorized {
		t.Fatalf("expected NotAuthorized, got %v", err)
	}
}

func TestSaveProgressMergesAnswers(t *testing.T) {
	svc, responses := newAttemptFixture(testAssessment(model.AssessmentSettings{}))
	ctx := context.Background()

	res, err := svc.Start(ctx, "a1", testStudent())
	if err != nil {
		t.Fatalf("Start error: %v", err)
	}
	if _, err := svc.SaveProgress(ctx, res.ResponseID, "s1", map[string]int{"q1": 2}); err != nil {
		t.Fatalf("SaveProgress error: %v", err)
	}
	if _, err := svc.SaveProgress(ctx, res.ResponseID, "s1", map[string]int{"q1": 4, "q2": 3}); err != nil {
		t.Fatalf("second SaveProgress error: %v", err)
	}

	stored := responses.responses[0]
	if stored.Answers["q1"] != 4 || stored.Answers["q2"] != 3 {
		t.Fatalf("answers not merged: %v", stored.Answers)
	}
	if stored.Finished() {
		t.Fatal("progress save must not complete the response")
	}
}

func TestResultReturnsLatestCompleted(t *testing.T) {
	svc, _ := newAttemptFixture(testAssessment(model.AssessmentSettings{
		AllowMultipleAttempts: true,
		MaxAttempts:           3,
	}))
	ctx := context.Background()

	res, _ := svc.Start(ctx, "a1", testStudent())
	if _, err := svc.Submit(ctx, res.ResponseID, "s1", map[string]int{"q1": 1}); err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	res, _ = svc.Start(ctx, "a1", testStudent())
	if _, err := svc.Submit(ctx, res.ResponseID, "s1", map[string]int{"q1": 5}); err != nil {
		t.Fatalf("second Submit error: %v", err)
	}

	result, err := svc.Result(ctx, "a1", "s1")
	if err != nil {
		t.Fatalf("Result error: %v", err)
	}
	if result.Response.AttemptNumber != 2 {
		t.Fatalf("latest attempt = %d, want 2", result.Response.AttemptNumber)
	}
	if result.Response.OverallPercentage != 100.0 {
		t.Fatalf("overall percentage = %v, want 100.0", result.Response.OverallPercentage)
	}
	if result.Title != "Placement Readiness" || len(result.Sections) != 1 {
		t.Fatalf("missing denormalized assessment structure: %+v", result)
	}
}

func TestResultWithoutCompletionIsNotFound(t *testing.T) {
	svc, _ := newAttemptFixture(testAssessment(model.AssessmentSettings{}))
	ctx := context.Background()

	if _, err := svc.Start(ctx, "a1", testStudent()); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	_, err := svc.Result(ctx, "a1", "s1")
	if apperror.KindOf(err) != apperror.KindNotFound {
		t.Fatalf("expected NotFound without completed response, got %v", err)
	}
}
