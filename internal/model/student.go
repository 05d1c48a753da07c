package model

import "time"

const (
	StudentActive   = "Active"
	StudentInactive = "Inactive"
)

// Student is an academic record owned by admins. Responses reference it by ID.
type Student struct {
	ID              string    `json:"id" bson:"_id,omitempty"`
	UserID          string    `json:"userId,omitempty" bson:"userId,omitempty"`
	Name            string    `json:"name" bson:"name"`
	Email           string    `json:"email" bson:"email"`
	RollNumber      string    `json:"rollNumber" bson:"rollNumber"`
	Course          string    `json:"course" bson:"course"`
	Batch           string    `json:"batch,omitempty" bson:"batch,omitempty"`
	Site            string    `json:"site,omitempty" bson:"site,omitempty"`
	AcademicSession string    `json:"academicSession,omitempty" bson:"academicSession,omitempty"`
	Class           string    `json:"class,omitempty" bson:"class,omitempty"`
	StudentStatus   string    `json:"studentStatus" bson:"studentStatus"`
	CreatedAt       time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt" bson:"updatedAt"`

	// Virtual marks a record synthesized from a user account when no
	// student document exists. Never persisted.
	Virtual bool `json:"virtual,omitempty" bson:"-"`
}
