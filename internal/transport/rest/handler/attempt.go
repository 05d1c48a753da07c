package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/eduportal/assessment-api/internal/model"
	"github.com/eduportal/assessment-api/internal/service"
	"github.com/eduportal/assessment-api/internal/transport/rest/middleware"
)

// AttemptHandler handles the student-facing attempt endpoints.
type AttemptHandler struct {
	attemptSvc    *service.AttemptService
	assignmentSvc *service.AssignmentService
	studentSvc    *service.StudentService
}

// NewAttemptHandler creates a new attempt handler.
func NewAttemptHandler(attemptSvc *service.AttemptService, assignmentSvc *service.AssignmentService, studentSvc *service.StudentService) *AttemptHandler {
	return &AttemptHandler{
		attemptSvc:    attemptSvc,
		assignmentSvc: assignmentSvc,
		studentSvc:    studentSvc,
	}
}

// resolveStudent maps the authenticated claims to a student record via the
// by-ID / by-email / virtual fallback chain.
func (h *AttemptHandler) resolveStudent(w http.ResponseWriter, r *http.Request) *model.Student {
	claims := middleware.GetClaims(r.Context())
	student, err := h.studentSvc.Resolve(r.Context(), claims)
	if err != nil {
		writeServiceError(w, err)
		return nil
	}
	return student
}

// Assigned handles GET /v1/assessments/student/assigned
func (h *AttemptHandler) Assigned(w http.ResponseWriter, r *http.Request) {
	student := h.resolveStudent(w, r)
	if student == nil {
		return
	}

	assigned, err := h.assignmentSvc.ListAssignedFor(r.Context(), student)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "assessments": assigned})
}

// Start handles POST /v1/assessments/{id}/start
func (h *AttemptHandler) Start(w http.ResponseWriter, r *http.Request) {
	student := h.resolveStudent(w, r)
	if student == nil {
		return
	}

	res, err := h.attemptSvc.Start(r.Context(), mux.Vars(r)["id"], student)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	message := "assessment started"
	if res.Resumed {
		message = "assessment resumed"
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"responseId":    res.ResponseID,
		"attemptNumber": res.AttemptNumber,
		"startedAt":     res.StartedAt,
		"sections":      res.Sections,
		"message":       message,
	})
}

// AnswersRequest is the request body for progress saves and submissions.
type AnswersRequest struct {
	Answers map[string]int `json:"answers"`
}

// SaveProgress handles PUT /v1/responses/{id}/progress
func (h *AttemptHandler) SaveProgress(w http.ResponseWriter, r *http.Request) {
	student := h.resolveStudent(w, r)
	if student == nil {
		return
	}

	var req AnswersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.attemptSvc.SaveProgress(r.Context(), mux.Vars(r)["id"], student.ID, req.Answers)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "response": resp})
}

// Submit handles POST /v1/responses/{id}/submit
func (h *AttemptHandler) Submit(w http.ResponseWriter, r *http.Request) {
	student := h.resolveStudent(w, r)
	if student == nil {
		return
	}

	var req AnswersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.attemptSvc.Submit(r.Context(), mux.Vars(r)["id"], student.ID, req.Answers)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"response": resp,
		"message":  "assessment submitted",
	})
}

// Result handles GET /v1/assessments/student/results/{id}
func (h *AttemptHandler) Result(w http.ResponseWriter, r *http.Request) {
	student := h.resolveStudent(w, r)
	if student == nil {
		return
	}

	result, err := h.attemptSvc.Result(r.Context(), mux.Vars(r)["id"], student.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "result": result})
}
