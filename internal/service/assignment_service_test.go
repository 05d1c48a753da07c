package service

import (
	"context"
	"testing"
	"time"

	"github.com/eduportal/assessment-api/internal/model"
)

func TestListAssignedFiltersByCriteria(t *testing.T) {
	mca := testAssessment(model.AssessmentSettings{})
	open := testAssessment(model.AssessmentSettings{})
	open.ID = "a2"
	open.Title = "Feedback"
	open.Criteria = model.AssessmentCriteria{}
	draft := testAssessment(model.AssessmentSettings{})
	draft.ID = "a3"
	draft.Status = model.AssessmentDraft

	svc := NewAssignmentService(newStubAssessmentRepo(mca, open, draft), &stubResponseRepo{})

	student := testStudent()
	student.Course = "MMS"
	assigned, err := svc.ListAssignedFor(context.Background(), student)
	if err != nil {
		t.Fatalf("ListAssignedFor error: %v", err)
	}
	// MMS student fails the MCA-only criteria; drafts are never assigned.
	if len(assigned) != 1 || assigned[0].ID != "a2" {
		t.Fatalf("unexpected assigned list: %+v", assigned)
	}
}

func TestListAssignedIncludesCompletedAssessments(t *testing.T) {
	a := testAssessment(model.AssessmentSettings{})
	a.Status = model.AssessmentCompleted
	svc := NewAssignmentService(newStubAssessmentRepo(a), &stubResponseRepo{})

	assigned, err := svc.ListAssignedFor(context.Background(), testStudent())
	if err != nil {
		t.Fatalf("ListAssignedFor error: %v", err)
	}
	if len(assigned) != 1 {
		t.Fatalf("completed assessments should stay visible, got %+v", assigned)
	}
}

func TestListAssignedAttemptMetadata(t *testing.T) {
	a := testAssessment(model.AssessmentSettings{AllowMultipleAttempts: true, MaxAttempts: 2})
	responses := &stubResponseRepo{}
	svc := NewAssignmentService(newStubAssessmentRepo(a), responses)
	ctx := context.Background()

	// No attempts yet: allowed, current 0, no lastAttempt.
	assigned, err := svc.ListAssignedFor(ctx, testStudent())
	if err != nil {
		t.Fatalf("ListAssignedFor error: %v", err)
	}
	entry := assigned[0]
	if !entry.Attempts.Allowed || entry.Attempts.Current != 0 || entry.Attempts.Max != 2 {
		t.Fatalf("unexpected attempt info: %+v", entry.Attempts)
	}
	if entry.LastAttempt != nil {
		t.Fatal("lastAttempt should be absent before any attempt")
	}

	// One completed attempt under the ceiling: still allowed, score exposed.
	submitted := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	if _, err := responses.Create(ctx, &model.Response{
		AssessmentID:      "a1",
		StudentID:         "s1",
		AttemptNumber:     1,
		Status:            model.ResponseCompleted,
		OverallPercentage: 82.5,
		SubmittedAt:       &submitted,
	}); err != nil {
		t.Fatalf("seed response: %v", err)
	}

	assigned, err = svc.ListAssignedFor(ctx, testStudent())
	if err != nil {
		t.Fatalf("ListAssignedFor error: %v", err)
	}
	entry = assigned[0]
	if !entry.Attempts.Allowed || entry.Attempts.Current != 1 {
		t.Fatalf("unexpected attempt info after first attempt: %+v", entry.Attempts)
	}
	if entry.LastAttempt == nil || !entry.LastAttempt.Completed {
		t.Fatalf("lastAttempt missing or incomplete: %+v", entry.LastAttempt)
	}
	if entry.LastAttempt.OverallPercentage == nil || *entry.LastAttempt.OverallPercentage != 82.5 {
		t.Fatalf("lastAttempt score not exposed: %+v", entry.LastAttempt)
	}

	// Ceiling reached: no further attempts.
	if _, err := responses.Create(ctx, &model.Response{
		AssessmentID:  "a1",
		StudentID:     "s1",
		AttemptNumber: 2,
		Status:        model.ResponseCompleted,
		SubmittedAt:   &submitted,
	}); err != nil {
		t.Fatalf("seed response: %v", err)
	}
	assigned, err = svc.ListAssignedFor(ctx, testStudent())
	if err != nil {
		t.Fatalf("ListAssignedFor error: %v", err)
	}
	if assigned[0].Attempts.Allowed {
		t.Fatal("attempts should be exhausted at the ceiling")
	}
}

func TestListAssignedSingleAttemptExhaustedAfterCompletion(t *testing.T) {
	a := testAssessment(model.AssessmentSettings{})
	responses := &stubResponseRepo{}
	svc := NewAssignmentService(newStubAssessmentRepo(a), responses)
	ctx := context.Background()

	submitted := time.Now()
	if _, err := responses.Create(ctx, &model.Response{
		AssessmentID:  "a1",
		StudentID:     "s1",
		AttemptNumber: 1,
		Status:        model.ResponseCompleted,
		SubmittedAt:   &submitted,
	}); err != nil {
		t.Fatalf("seed response: %v", err)
	}

	assigned, err := svc.ListAssignedFor(ctx, testStudent())
	if err != nil {
		t.Fatalf("ListAssignedFor error: %v", err)
	}
	if assigned[0].Attempts.Allowed {
		t.Fatal("single-attempt assessment must not allow a second attempt")
	}
}
