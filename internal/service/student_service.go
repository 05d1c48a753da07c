package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/eduportal/assessment-api/internal/apperror"
	"github.com/eduportal/assessment-api/internal/model"
	"github.com/eduportal/assessment-api/internal/repository"
)

// StudentInput is the validated payload for creating or importing a student.
type StudentInput struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	RollNumber      string `json:"rollNumber" validate:"required"`
	Course          string `json:"course" validate:"required"`
	Batch           string `json:"batch"`
	Site            string `json:"site"`
	AcademicSession string `json:"academicSession"`
	Class           string `json:"class"`
	StudentStatus   string `json:"studentStatus" validate:"omitempty,oneof=Active Inactive"`
	Password        string `json:"password"`
}

// ImportRowError reports one failed row of a bulk import.
type ImportRowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// ImportResult summarizes a bulk import.
type ImportResult struct {
	Imported int              `json:"imported"`
	Failed   int              `json:"failed"`
	Errors   []ImportRowError `json:"errors,omitempty"`
}

// StudentService handles student record CRUD, bulk import and the
// student-resolution fallback chain used by the attempt path.
type StudentService struct {
	studentRepo  repository.StudentRepo
	userRepo     repository.UserRepo
	responseRepo repository.ResponseRepo
	validate     *validator.Validate
}

// NewStudentService creates a new student service.
func NewStudentService(studentRepo repository.StudentRepo, userRepo repository.UserRepo, responseRepo repository.ResponseRepo) *StudentService {
	return &StudentService{
		studentRepo:  studentRepo,
		userRepo:     userRepo,
		responseRepo: responseRepo,
		validate:     validator.New(),
	}
}

// Create validates the input and creates the user account followed by the
// student record. The two writes are separate documents with no transaction;
// when the student write fails the just-created user is deleted best-effort.
func (s *StudentService) Create(ctx context.Context, in *StudentInput) (*model.Student, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, apperror.InvalidInput(validationMessage(err))
	}
	if in.StudentStatus == "" {
		in.StudentStatus = model.StudentActive
	}

	if existing, err := s.studentRepo.GetByEmail(ctx, in.Email); err != nil {
		return nil, apperror.Internal(err)
	} else if existing != nil {
		return nil, apperror.Conflict("student with this email already exists")
	}
	if existing, err := s.studentRepo.GetByRollNumber(ctx, in.RollNumber); err != nil {
		return nil, apperror.Internal(err)
	} else if existing != nil {
		return nil, apperror.Conflict("student with this roll number already exists")
	}

	password := in.Password
	if password == "" {
		password = uuid.NewString()[:12]
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	studentID := uuid.NewString()
	user := &model.User{
		Email:        in.Email,
		PasswordHash: string(hash),
		Name:         in.Name,
		Role:         model.RoleStudent,
		StudentID:    studentID,
	}
	userID, err := s.userRepo.Create(ctx, user)
	if err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, apperror.Conflict("user with this email already exists")
		}
		return nil, apperror.Internal(err)
	}

	student := &model.Student{
		ID:              studentID,
		UserID:          userID,
		Name:            in.Name,
		Email:           in.Email,
		RollNumber:      in.RollNumber,
		Course:          in.Course,
		Batch:           in.Batch,
		Site:            in.Site,
		AcademicSession: in.AcademicSession,
		Class:           in.Class,
		StudentStatus:   in.StudentStatus,
	}
	if _, err := s.studentRepo.Create(ctx, student); err != nil {
		// Best-effort compensation; an orphaned account is possible when
		// this delete also fails.
		if delErr := s.userRepo.Delete(ctx, userID); delErr != nil {
			log.Printf("student create: user %s orphaned after failed student write: %v", userID, delErr)
		}
		if repository.IsDuplicateKey(err) {
			return nil, apperror.Conflict("student with this email or roll number already exists")
		}
		return nil, apperror.Internal(err)
	}
	return student, nil
}

// BulkImport creates students from pre-parsed rows. Row failures are
// collected and reported; valid rows still import.
func (s *StudentService) BulkImport(ctx context.Context, rows []StudentInput) (*ImportResult, error) {
	result := &ImportResult{}
	for i := range rows {
		if _, err := s.Create(ctx, &rows[i]); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, ImportRowError{
				Row:   i + 1,
				Error: apperror.Message(err),
			})
			continue
		}
		result.Imported++
	}
	return result, nil
}

// Get returns a student by ID.
func (s *StudentService) Get(ctx context.Context, id string) (*model.Student, error) {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if student == nil {
		return nil, apperror.NotFound("student not found")
	}
	return student, nil
}

// List returns students matching the filter.
func (s *StudentService) List(ctx context.Context, filter repository.StudentFilter) ([]*model.Student, error) {
	students, err := s.studentRepo.List(ctx, filter)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return students, nil
}

// Update replaces the mutable academic fields of a student record.
func (s *StudentService) Update(ctx context.Context, id string, in *StudentInput) (*model.Student, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, apperror.InvalidInput(validationMessage(err))
	}
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	student.Name = in.Name
	student.Email = in.Email
	student.RollNumber = in.RollNumber
	student.Course = in.Course
	student.Batch = in.Batch
	student.Site = in.Site
	student.AcademicSession = in.AcademicSession
	student.Class = in.Class
	if in.StudentStatus != "" {
		student.StudentStatus = in.StudentStatus
	}

	if err := s.studentRepo.Update(ctx, student); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, apperror.Conflict("student with this email or roll number already exists")
		}
		return nil, apperror.Internal(err)
	}
	return student, nil
}

// Delete removes a student, the linked user account and all of the
// student's responses.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.studentRepo.Delete(ctx, id); err != nil {
		return apperror.Internal(err)
	}
	if err := s.userRepo.DeleteByStudentID(ctx, id); err != nil {
		return apperror.Internal(err)
	}
	if err := s.responseRepo.DeleteByStudent(ctx, id); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

// Resolve finds the student record for an authenticated student user using a
// priority-ordered fallback chain: by student ID from the token, then by the
// user's email, then a virtual record synthesized from the user document.
// Virtual students pass only course-open criteria (they carry no course).
func (s *StudentService) Resolve(ctx context.Context, claims *model.Claims) (*model.Student, error) {
	if claims.StudentID != "" {
		student, err := s.studentRepo.GetByID(ctx, claims.StudentID)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		if student != nil {
			return student, nil
		}
	}

	if claims.Email != "" {
		student, err := s.studentRepo.GetByEmail(ctx, claims.Email)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		if student != nil {
			return student, nil
		}
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if user == nil || user.Role != model.RoleStudent {
		return nil, apperror.NotFound("student not found")
	}
	now := time.Now()
	return &model.Student{
		ID:            user.ID,
		UserID:        user.ID,
		Name:          user.Name,
		Email:         user.Email,
		StudentStatus: model.StudentActive,
		CreatedAt:     now,
		UpdatedAt:     now,
		Virtual:       true,
	}, nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request body"
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
	}
	return "invalid fields: " + strings.Join(fields, ", ")
}
