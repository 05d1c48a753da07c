package model

import "time"

// ResponseStatus progresses forward only:
// not_started -> in_progress -> completed. "submitted" is accepted as a
// synonym of completed for documents written by older clients.
type ResponseStatus string

const (
	ResponseNotStarted ResponseStatus = "not_started"
	ResponseInProgress ResponseStatus = "in_progress"
	ResponseCompleted  ResponseStatus = "completed"
	ResponseSubmitted  ResponseStatus = "submitted"
)

// SectionScore is the per-section rollup computed at completion.
// Score and MaxPossible are raw sums over answered questions; Percentage is
// the mean of the normalized per-question percentages.
type SectionScore struct {
	SectionID   string  `json:"sectionId" bson:"sectionId"`
	Title       string  `json:"title" bson:"title"`
	Score       float64 `json:"score" bson:"score"`
	MaxPossible float64 `json:"maxPossible" bson:"maxPossible"`
	Percentage  float64 `json:"percentage" bson:"percentage"`
}

// Response is one student's attempt at an assessment, keyed by
// (assessmentId, studentId, attemptNumber). Score fields are populated only
// at completion and never recomputed afterwards.
type Response struct {
	ID                   string         `json:"id" bson:"_id,omitempty"`
	AssessmentID         string         `json:"assessmentId" bson:"assessmentId"`
	StudentID            string         `json:"studentId" bson:"studentId"`
	AttemptNumber        int            `json:"attemptNumber" bson:"attemptNumber"`
	Status               ResponseStatus `json:"status" bson:"status"`
	Answers              map[string]int `json:"answers" bson:"answers"`
	SectionScores        []SectionScore `json:"sectionScores,omitempty" bson:"sectionScores,omitempty"`
	OverallPercentage    float64        `json:"overallPercentage" bson:"overallPercentage"`
	OverallAverageRating float64        `json:"overallAverageRating" bson:"overallAverageRating"`
	StartedAt            time.Time      `json:"startedAt" bson:"startedAt"`
	SubmittedAt          *time.Time     `json:"submittedAt,omitempty" bson:"submittedAt,omitempty"`
	TimeSpentSeconds     int            `json:"timeSpentSeconds" bson:"timeSpentSeconds"`
	CreatedAt            time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt            time.Time      `json:"updatedAt" bson:"updatedAt"`
}

// Finished reports whether the response is a completed, immutable snapshot.
func (r *Response) Finished() bool {
	return r.Status == ResponseCompleted || r.Status == ResponseSubmitted
}

// Started reports whether the student has begun this attempt.
func (r *Response) Started() bool {
	return r.Status != ResponseNotStarted
}
