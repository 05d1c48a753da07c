package model

import "time"

// AssessmentStatus is the authoring lifecycle state. Transitions are
// forward-only: draft -> active -> completed -> archived.
type AssessmentStatus string

const (
	AssessmentDraft     AssessmentStatus = "draft"
	AssessmentActive    AssessmentStatus = "active"
	AssessmentCompleted AssessmentStatus = "completed"
	AssessmentArchived  AssessmentStatus = "archived"
)

// QuestionScale describes the rating scale of a question. Labels may be
// omitted, in which case the rendering layer synthesizes them from the range.
type QuestionScale struct {
	Min      int      `json:"min" bson:"min"`
	Max      int      `json:"max" bson:"max"`
	MinLabel string   `json:"minLabel,omitempty" bson:"minLabel,omitempty"`
	MaxLabel string   `json:"maxLabel,omitempty" bson:"maxLabel,omitempty"`
	Labels   []string `json:"labels,omitempty" bson:"labels,omitempty"`
}

type Question struct {
	ID       string        `json:"id" bson:"id"`
	Prompt   string        `json:"prompt" bson:"prompt"`
	Required bool          `json:"required" bson:"required"`
	Scale    QuestionScale `json:"scale" bson:"scale"`
}

type Section struct {
	ID          string     `json:"id" bson:"id"`
	Title       string     `json:"title" bson:"title"`
	Description string     `json:"description,omitempty" bson:"description,omitempty"`
	Questions   []Question `json:"questions" bson:"questions"`
}

// AssessmentCriteria is the eligibility predicate. An empty Courses list
// matches every course; an empty StudentStatuses list defaults to Active only.
// Batches, Sites, AcademicSessions and Classes are reserved and not filtered on.
type AssessmentCriteria struct {
	Courses          []string `json:"courses,omitempty" bson:"courses,omitempty"`
	StudentStatuses  []string `json:"studentStatuses,omitempty" bson:"studentStatuses,omitempty"`
	Batches          []string `json:"batches,omitempty" bson:"batches,omitempty"`
	Sites            []string `json:"sites,omitempty" bson:"sites,omitempty"`
	AcademicSessions []string `json:"academicSessions,omitempty" bson:"academicSessions,omitempty"`
	Classes          []string `json:"classes,omitempty" bson:"classes,omitempty"`
}

// AssessmentSettings configures attempt behavior. AutoAssign and
// AssignOnLogin are recorded but assignment is always computed lazily at
// read time; no background process acts on them.
type AssessmentSettings struct {
	TimeLimitMinutes      int  `json:"timeLimitMinutes,omitempty" bson:"timeLimitMinutes,omitempty"`
	AllowMultipleAttempts bool `json:"allowMultipleAttempts" bson:"allowMultipleAttempts"`
	MaxAttempts           int  `json:"maxAttempts,omitempty" bson:"maxAttempts,omitempty"`
	AutoAssign            bool `json:"autoAssign" bson:"autoAssign"`
	AssignOnLogin         bool `json:"assignOnLogin" bson:"assignOnLogin"`
}

// Assessment is a versioned questionnaire document: ordered sections of
// scale questions plus eligibility criteria and attempt settings.
type Assessment struct {
	ID          string             `json:"id" bson:"_id,omitempty"`
	Title       string             `json:"title" bson:"title"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	Sections    []Section          `json:"sections" bson:"sections"`
	Criteria    AssessmentCriteria `json:"criteria" bson:"criteria"`
	Settings    AssessmentSettings `json:"settings" bson:"settings"`
	Status      AssessmentStatus   `json:"status" bson:"status"`
	Version     int                `json:"version" bson:"version"`
	CreatedBy   string             `json:"createdBy" bson:"createdBy"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// QuestionCount returns the total number of questions across all sections.
func (a *Assessment) QuestionCount() int {
	n := 0
	for _, s := range a.Sections {
		n += len(s.Questions)
	}
	return n
}

// EffectiveMaxAttempts returns the attempt ceiling: 1 when multiple attempts
// are disabled, otherwise MaxAttempts (or 1 when unset).
func (a *Assessment) EffectiveMaxAttempts() int {
	if !a.Settings.AllowMultipleAttempts {
		return 1
	}
	if a.Settings.MaxAttempts < 1 {
		return 1
	}
	return a.Settings.MaxAttempts
}
