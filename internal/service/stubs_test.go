package service

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/eduportal/assessment-api/internal/model"
	"github.com/eduportal/assessment-api/internal/repository"
)

// In-memory repository stubs shared by the service tests.

type stubAssessmentRepo struct {
	assessments map[string]*model.Assessment
}

func newStubAssessmentRepo(assessments ...*model.Assessment) *stubAssessmentRepo {
	r := &stubAssessmentRepo{assessments: map[string]*model.Assessment{}}
	for _, a := range assessments {
		r.assessments[a.ID] = a
	}
	return r
}

func (r *stubAssessmentRepo) Create(ctx context.Context, a *model.Assessment) (string, error) {
	if a.ID == "" {
		a.ID = fmt.Sprintf("a%d", len(r.assessments)+1)
	}
	r.assessments[a.ID] = a
	return a.ID, nil
}

func (r *stubAssessmentRepo) GetByID(ctx context.Context, id string) (*model.Assessment, error) {
	a, ok := r.assessments[id]
	if !ok {
		return nil, nil
	}
	copy := *a
	return &copy, nil
}

func (r *stubAssessmentRepo) List(ctx context.Context, status model.AssessmentStatus) ([]*model.Assessment, error) {
	var out []*model.Assessment
	for _, a := range r.assessments {
		if status == "" || a.Status == status {
			copy := *a
			out = append(out, &copy)
		}
	}
	return out, nil
}

func (r *stubAssessmentRepo) ListByStatuses(ctx context.Context, statuses []model.AssessmentStatus) ([]*model.Assessment, error) {
	var out []*model.Assessment
	for _, a := range r.assessments {
		for _, st := range statuses {
			if a.Status == st {
				copy := *a
				out = append(out, &copy)
				break
			}
		}
	}
	return out, nil
}

func (r *stubAssessmentRepo) Update(ctx context.Context, a *model.Assessment) error {
	copy := *a
	r.assessments[a.ID] = &copy
	return nil
}

func (r *stubAssessmentRepo) Delete(ctx context.Context, id string) error {
	delete(r.assessments, id)
	return nil
}

type stubResponseRepo struct {
	responses []*model.Response
	nextID    int
}

// duplicateKeyErr mimics the driver error raised by the unique partial index
// on (assessmentId, studentId, status=in_progress).
var duplicateKeyErr = mongo.WriteException{
	WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "duplicate key"}},
}

func (r *stubResponseRepo) Create(ctx context.Context, resp *model.Response) (string, error) {
	for _, existing := range r.responses {
		if existing.AssessmentID == resp.AssessmentID &&
			existing.StudentID == resp.StudentID &&
			existing.Status == model.ResponseInProgress &&
			resp.Status == model.ResponseInProgress {
			return "", duplicateKeyErr
		}
	}
	r.nextID++
	if resp.ID == "" {
		resp.ID = fmt.Sprintf("r%d", r.nextID)
	}
	copy := *resp
	r.responses = append(r.responses, &copy)
	return resp.ID, nil
}

func (r *stubResponseRepo) GetByID(ctx context.Context, id string) (*model.Response, error) {
	for _, resp := range r.responses {
		if resp.ID == id {
			copy := *resp
			return &copy, nil
		}
	}
	return nil, nil
}

func (r *stubResponseRepo) GetLatest(ctx context.Context, assessmentID, studentID string) (*model.Response, error) {
	var latest *model.Response
	for _, resp := range r.responses {
		if resp.AssessmentID != assessmentID || resp.StudentID != studentID {
			continue
		}
		if latest == nil || resp.AttemptNumber > latest.AttemptNumber {
			latest = resp
		}
	}
	if latest == nil {
		return nil, nil
	}
	copy := *latest
	return &copy, nil
}

func (r *stubResponseRepo) ListByPair(ctx context.Context, assessmentID, studentID string) ([]*model.Response, error) {
	var out []*model.Response
	for _, resp := range r.responses {
		if resp.AssessmentID == assessmentID && resp.StudentID == studentID {
			copy := *resp
			out = append(out, &copy)
		}
	}
	return out, nil
}

func (r *stubResponseRepo) ListByAssessment(ctx context.Context, assessmentID string) ([]*model.Response, error) {
	var out []*model.Response
	for _, resp := range r.responses {
		if resp.AssessmentID == assessmentID {
			copy := *resp
			out = append(out, &copy)
		}
	}
	return out, nil
}

func (r *stubResponseRepo) ListByStudent(ctx context.Context, studentID string) ([]*model.Response, error) {
	var out []*model.Response
	for _, resp := range r.responses {
		if resp.StudentID == studentID {
			copy := *resp
			out = append(out, &copy)
		}
	}
	return out, nil
}

func (r *stubResponseRepo) ListAll(ctx context.Context) ([]*model.Response, error) {
	out := make([]*model.Response, 0, len(r.responses))
	for _, resp := range r.responses {
		copy := *resp
		out = append(out, &copy)
	}
	return out, nil
}

func (r *stubResponseRepo) Update(ctx context.Context, resp *model.Response) error {
	for i, existing := range r.responses {
		if existing.ID == resp.ID {
			copy := *resp
			r.responses[i] = &copy
			return nil
		}
	}
	return fmt.Errorf("response %s not found", resp.ID)
}

func (r *stubResponseRepo) DeleteByAssessment(ctx context.Context, assessmentID string) error {
	var kept []*model.Response
	for _, resp := range r.responses {
		if resp.AssessmentID != assessmentID {
			kept = append(kept, resp)
		}
	}
	r.responses = kept
	return nil
}

func (r *stubResponseRepo) DeleteByStudent(ctx context.Context, studentID string) error {
	var kept []*model.Response
	for _, resp := range r.responses {
		if resp.StudentID != studentID {
			kept = append(kept, resp)
		}
	}
	r.responses = kept
	return nil
}

type stubStudentRepo struct {
	students []*model.Student
}

func (r *stubStudentRepo) Create(ctx context.Context, s *model.Student) (string, error) {
	if s.ID == "" {
		s.ID = fmt.Sprintf("s%d", len(r.students)+1)
	}
	copy := *s
	r.students = append(r.students, &copy)
	return s.ID, nil
}

func (r *stubStudentRepo) GetByID(ctx context.Context, id string) (*model.Student, error) {
	for _, s := range r.students {
		if s.ID == id {
			copy := *s
			return &copy, nil
		}
	}
	return nil, nil
}

func (r *stubStudentRepo) GetByEmail(ctx context.Context, email string) (*model.Student, error) {
	for _, s := range r.students {
		if s.Email == email {
			copy := *s
			return &copy, nil
		}
	}
	return nil, nil
}

func (r *stubStudentRepo) GetByRollNumber(ctx context.Context, roll string) (*model.Student, error) {
	for _, s := range r.students {
		if s.RollNumber == roll {
			copy := *s
			return &copy, nil
		}
	}
	return nil, nil
}

func (r *stubStudentRepo) List(ctx context.Context, filter repository.StudentFilter) ([]*model.Student, error) {
	var out []*model.Student
	for _, s := range r.students {
		if filter.Course != "" && s.Course != filter.Course {
			continue
		}
		if filter.Batch != "" && s.Batch != filter.Batch {
			continue
		}
		if filter.Status != "" && s.StudentStatus != filter.Status {
			continue
		}
		copy := *s
		out = append(out, &copy)
	}
	return out, nil
}

func (r *stubStudentRepo) Update(ctx context.Context, s *model.Student) error {
	for i, existing := range r.students {
		if existing.ID == s.ID {
			copy := *s
			r.students[i] = &copy
			return nil
		}
	}
	return fmt.Errorf("student %s not found", s.ID)
}

func (r *stubStudentRepo) Delete(ctx context.Context, id string) error {
	var kept []*model.Student
	for _, s := range r.students {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	r.students = kept
	return nil
}

type stubUserRepo struct {
	users []*model.User
}

func (r *stubUserRepo) Create(ctx context.Context, u *model.User) (string, error) {
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return "", duplicateKeyErr
		}
	}
	if u.ID == "" {
		u.ID = fmt.Sprintf("u%d", len(r.users)+1)
	}
	copy := *u
	r.users = append(r.users, &copy)
	return u.ID, nil
}

func (r *stubUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			copy := *u
			return &copy, nil
		}
	}
	return nil, nil
}

func (r *stubUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copy := *u
			return &copy, nil
		}
	}
	return nil, nil
}

func (r *stubUserRepo) Update(ctx context.Context, u *model.User) error {
	for i, existing := range r.users {
		if existing.ID == u.ID {
			copy := *u
			r.users[i] = &copy
			return nil
		}
	}
	return fmt.Errorf("user %s not found", u.ID)
}

func (r *stubUserRepo) Delete(ctx context.Context, id string) error {
	var kept []*model.User
	for _, u := range r.users {
		if u.ID != id {
			kept = append(kept, u)
		}
	}
	r.users = kept
	return nil
}

func (r *stubUserRepo) DeleteByStudentID(ctx context.Context, studentID string) error {
	var kept []*model.User
	for _, u := range r.users {
		if u.StudentID != studentID {
			kept = append(kept, u)
		}
	}
	r.users = kept
	return nil
}
