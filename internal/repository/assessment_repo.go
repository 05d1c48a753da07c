package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/eduportal/assessment-api/internal/model"
)

// AssessmentRepo handles MongoDB operations for assessments.
type AssessmentRepo interface {
	Create(ctx context.Context, a *model.Assessment) (string, error)
	GetByID(ctx context.Context, id string) (*model.Assessment, error)
	List(ctx context.Context, status model.AssessmentStatus) ([]*model.Assessment, error)
	ListByStatuses(ctx context.Context, statuses []model.AssessmentStatus) ([]*model.Assessment, error)
	Update(ctx context.Context, a *model.Assessment) error
	Delete(ctx context.Context, id string) error
}

type assessmentRepo struct {
	collection *mongo.Collection
}

// NewAssessmentRepo creates a new assessment repository.
func NewAssessmentRepo(db *mongo.Database) AssessmentRepo {
	return &assessmentRepo{collection: db.Collection("assessments")}
}

func (r *assessmentRepo) Create(ctx context.Context, a *model.Assessment) (string, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.CreatedAt = time.Now()
	a.UpdatedAt = time.Now()

	if _, err := r.collection.InsertOne(ctx, a); err != nil {
		return "", err
	}
	return a.ID, nil
}

func (r *assessmentRepo) GetByID(ctx context.Context, id string) (*model.Assessment, error) {
	var a model.Assessment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *assessmentRepo) List(ctx context.Context, status model.AssessmentStatus) ([]*model.Assessment, error) {
	query := bson.M{}
	if status != "" {
		query["status"] = status
	}
	return r.find(ctx, query)
}

func (r *assessmentRepo) ListByStatuses(ctx context.Context, statuses []model.AssessmentStatus) ([]*model.Assessment, error) {
	return r.find(ctx, bson.M{"status": bson.M{"$in": statuses}})
}

func (r *assessmentRepo) find(ctx context.Context, query bson.M) ([]*model.Assessment, error) {
	cursor, err := r.collection.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var assessments []*model.Assessment
	if err := cursor.All(ctx, &assessments); err != nil {
		return nil, err
	}
	return assessments, nil
}

func (r *assessmentRepo) Update(ctx context.Context, a *model.Assessment) error {
	a.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": a.ID}, a)
	return err
}

func (r *assessmentRepo) Delete(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
