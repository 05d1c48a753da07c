package scoring

import (
	"strconv"

	"github.com/eduportal/assessment-api/internal/model"
)

// RenderedQuestion is the student-facing shape of a question with labels
// always populated.
type RenderedQuestion struct {
	ID       string   `json:"id"`
	Prompt   string   `json:"prompt"`
	Required bool     `json:"required"`
	Min      int      `json:"min"`
	Max      int      `json:"max"`
	Labels   []string `json:"labels"`
}

// RenderedSection mirrors an assessment section for rendering.
type RenderedSection struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	Questions   []RenderedQuestion `json:"questions"`
}

// RenderQuestions builds the rendering-ready question structure, synthesizing
// labels for questions that omit them.
func RenderQuestions(a *model.Assessment) []RenderedSection {
	out := make([]RenderedSection, 0, len(a.Sections))
	for _, sec := range a.Sections {
		rs := RenderedSection{ID: sec.ID, Title: sec.Title, Description: sec.Description}
		for _, q := range sec.Questions {
			labels := q.Scale.Labels
			if len(labels) == 0 {
				labels = SynthesizeLabels(q.Scale)
			}
			rs.Questions = append(rs.Questions, RenderedQuestion{
				ID:       q.ID,
				Prompt:   q.Prompt,
				Required: q.Required,
				Min:      q.Scale.Min,
				Max:      q.Scale.Max,
				Labels:   labels,
			})
		}
		out = append(out, rs)
	}
	return out
}

// SynthesizeLabels produces scale labels for a question that omits them.
// Ranges of 5, 4 and 3 points get the standard wordings; anything else gets
// generic level labels with the endpoints replaced by the configured
// min/max labels when present.
func SynthesizeLabels(s model.QuestionScale) []string {
	n := s.Max - s.Min + 1
	switch n {
	case 5:
		return []string{"Very Poor", "Poor", "Fair", "Good", "Excellent"}
	case 4:
		return []string{"Poor", "Fair", "Good", "Excellent"}
	case 3:
		return []string{"Low", "Medium", "High"}
	}
	if n < 1 {
		return nil
	}
	labels := make([]string, n)
	for i := range labels {
		labels[i] = "Level " + strconv.Itoa(s.Min+i)
	}
	if s.MinLabel != "" {
		labels[0] = s.MinLabel
	}
	if s.MaxLabel != "" {
		labels[n-1] = s.MaxLabel
	}
	return labels
}
