package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/eduportal/assessment-api/internal/model"
)

// StudentFilter narrows List results. Zero values match everything.
type StudentFilter struct {
	Course string
	Batch  string
	Status string
}

// StudentRepo handles MongoDB operations for student records.
type StudentRepo interface {
	Create(ctx context.Context, student *model.Student) (string, error)
	GetByID(ctx context.Context, id string) (*model.Student, error)
	GetByEmail(ctx context.Context, email string) (*model.Student, error)
	GetByRollNumber(ctx context.Context, roll string) (*model.Student, error)
	List(ctx context.Context, filter StudentFilter) ([]*model.Student, error)
	Update(ctx context.Context, student *model.Student) error
	Delete(ctx context.Context, id string) error
}

type studentRepo struct {
	collection *mongo.Collection
}

// NewStudentRepo creates a new student repository and ensures unique indexes
// on email and roll number.
func NewStudentRepo(ctx context.Context, db *mongo.Database) (StudentRepo, error) {
	r := &studentRepo{collection: db.Collection("students")}
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "rollNumber", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (r *studentRepo) Create(ctx context.Context, student *model.Student) (string, error) {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	student.CreatedAt = time.Now()
	student.UpdatedAt = time.Now()

	if _, err := r.collection.InsertOne(ctx, student); err != nil {
		return "", err
	}
	return student.ID, nil
}

func (r *studentRepo) GetByID(ctx context.Context, id string) (*model.Student, error) {
	var student model.Student
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&student)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) GetByEmail(ctx context.Context, email string) (*model.Student, error) {
	var student model.Student
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&student)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) GetByRollNumber(ctx context.Context, roll string) (*model.Student, error) {
	var student model.Student
	err := r.collection.FindOne(ctx, bson.M{"rollNumber": roll}).Decode(&student)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) List(ctx context.Context, filter StudentFilter) ([]*model.Student, error) {
	query := bson.M{}
	if filter.Course != "" {
		query["course"] = filter.Course
	}
	if filter.Batch != "" {
		query["batch"] = filter.Batch
	}
	if filter.Status != "" {
		query["studentStatus"] = filter.Status
	}

	cursor, err := r.collection.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var students []*model.Student
	if err := cursor.All(ctx, &students); err != nil {
		return nil, err
	}
	return students, nil
}

func (r *studentRepo) Update(ctx context.Context, student *model.Student) error {
	student.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": student.ID}, student)
	return err
}

func (r *studentRepo) Delete(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
