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

// ResponseRepo handles MongoDB operations for attempt responses.
type ResponseRepo interface {
	Create(ctx context.Context, resp *model.Response) (string, error)
	GetByID(ctx context.Context, id string) (*model.Response, error)
	// GetLatest returns the newest attempt for the pair (highest attempt
	// number), or nil when the student has never started the assessment.
	GetLatest(ctx context.Context, assessmentID, studentID string) (*model.Response, error)
	ListByPair(ctx context.Context, assessmentID, studentID string) ([]*model.Response, error)
	ListByAssessment(ctx context.Context, assessmentID string) ([]*model.Response, error)
	ListByStudent(ctx context.Context, studentID string) ([]*model.Response, error)
	ListAll(ctx context.Context) ([]*model.Response, error)
	Update(ctx context.Context, resp *model.Response) error
	DeleteByAssessment(ctx context.Context, assessmentID string) error
	DeleteByStudent(ctx context.Context, studentID string) error
}

type responseRepo struct {
	collection *mongo.Collection
}

// NewResponseRepo creates a new response repository and ensures the unique
// partial index that guards against duplicate in_progress attempts created
// by concurrent start calls.
func NewResponseRepo(ctx context.Context, db *mongo.Database) (ResponseRepo, error) {
	r := &responseRepo{collection: db.Collection("responses")}
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "assessmentId", Value: 1},
			{Key: "studentId", Value: 1},
		},
		Options: options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"status": string(model.ResponseInProgress)}),
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// IsDuplicateKey reports whether err is a unique-index violation.
func IsDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}

func (r *responseRepo) Create(ctx context.Context, resp *model.Response) (string, error) {
	if resp.ID == "" {
		resp.ID = uuid.NewString()
	}
	resp.CreatedAt = time.Now()
	resp.UpdatedAt = time.Now()

	if _, err := r.collection.InsertOne(ctx, resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

func (r *responseRepo) GetByID(ctx context.Context, id string) (*model.Response, error) {
	var resp model.Response
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&resp)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (r *responseRepo) GetLatest(ctx context.Context, assessmentID, studentID string) (*model.Response, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "attemptNumber", Value: -1}})
	var resp model.Response
	err := r.collection.FindOne(ctx, bson.M{
		"assessmentId": assessmentID,
		"studentId":    studentID,
	}, opts).Decode(&resp)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (r *responseRepo) ListByPair(ctx context.Context, assessmentID, studentID string) ([]*model.Response, error) {
	return r.find(ctx, bson.M{"assessmentId": assessmentID, "studentId": studentID})
}

func (r *responseRepo) ListByAssessment(ctx context.Context, assessmentID string) ([]*model.Response, error) {
	return r.find(ctx, bson.M{"assessmentId": assessmentID})
}

func (r *responseRepo) ListByStudent(ctx context.Context, studentID string) ([]*model.Response, error) {
	return r.find(ctx, bson.M{"studentId": studentID})
}

func (r *responseRepo) ListAll(ctx context.Context) ([]*model.Response, error) {
	return r.find(ctx, bson.M{})
}

func (r *responseRepo) find(ctx context.Context, query bson.M) ([]*model.Response, error) {
	cursor, err := r.collection.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var responses []*model.Response
	if err := cursor.All(ctx, &responses); err != nil {
		return nil, err
	}
	return responses, nil
}

func (r *responseRepo) Update(ctx context.Context, resp *model.Response) error {
	resp.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": resp.ID}, resp)
	return err
}

func (r *responseRepo) DeleteByAssessment(ctx context.Context, assessmentID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"assessmentId": assessmentID})
	return err
}

func (r *responseRepo) DeleteByStudent(ctx context.Context, studentID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"studentId": studentID})
	return err
}
