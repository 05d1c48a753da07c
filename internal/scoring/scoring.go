// Package scoring computes section and overall score rollups from raw scale
// answers. Pure functions, no I/O; the attempt service persists the output.
package scoring

import (
	"math"

	"github.com/eduportal/assessment-api/internal/model"
)

// Result is the full score rollup for one set of answers.
type Result struct {
	SectionScores        []model.SectionScore
	OverallPercentage    float64
	OverallAverageRating float64
}

// Score computes per-section and overall rollups. Per question the selected
// value is normalized to (v-min)/(max-min)*100; a section's percentage is the
// mean of its answered questions' normalized values. The overall percentage
// is the flat mean across all answered questions (not section-weighted), and
// the average rating is the mean of the raw selected values. Unanswered
// questions are excluded from every mean. Rounding to one decimal happens
// here, at the point of persistence, not per intermediate step.
func Score(a *model.Assessment, answers map[string]int) Result {
	res := Result{SectionScores: make([]model.SectionScore, 0, len(a.Sections))}

	var allPct []float64
	var rawSum float64
	var rawCount int

	for _, sec := range a.Sections {
		ss := model.SectionScore{SectionID: sec.ID, Title: sec.Title}
		var pcts []float64
		for _, q := range sec.Questions {
			v, ok := answers[q.ID]
			if !ok {
				continue
			}
			v = clamp(v, q.Scale.Min, q.Scale.Max)
			pct := normalize(v, q.Scale)
			pcts = append(pcts, pct)
			allPct = append(allPct, pct)
			ss.Score += float64(v)
			ss.MaxPossible += float64(q.Scale.Max)
			rawSum += float64(v)
			rawCount++
		}
		ss.Percentage = Round1(mean(pcts))
		res.SectionScores = append(res.SectionScores, ss)
	}

	res.OverallPercentage = Round1(mean(allPct))
	if rawCount > 0 {
		res.OverallAverageRating = Round1(rawSum / float64(rawCount))
	}
	return res
}

func normalize(v int, s model.QuestionScale) float64 {
	span := s.Max - s.Min
	if span <= 0 {
		return 0
	}
	return float64(v-s.Min) / float64(span) * 100
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Round1 rounds half-up to one decimal place.
func Round1(v float64) float64 {
	return math.Floor(v*10+0.5) / 10
}
