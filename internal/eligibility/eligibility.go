// Package eligibility decides whether a student matches an assessment's
// criteria. Pure functions, no I/O.
package eligibility

import "github.com/eduportal/assessment-api/internal/model"

// defaultStatuses applies when criteria carry no status list.
var defaultStatuses = []string{model.StudentActive}

// Eligible reports whether the student passes the criteria. An empty or nil
// course list matches every course. Batch/site/session/class criteria fields
// are reserved and not consulted. Nil criteria match all courses with the
// default Active-only status filter.
func Eligible(student *model.Student, c *model.AssessmentCriteria) bool {
	if student == nil {
		return false
	}

	statuses := defaultStatuses
	courses := []string(nil)
	if c != nil {
		if len(c.StudentStatuses) > 0 {
			statuses = c.StudentStatuses
		}
		courses = c.Courses
	}

	if !contains(statuses, student.StudentStatus) {
		return false
	}
	if len(courses) == 0 {
		return true
	}
	return contains(courses, student.Course)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
