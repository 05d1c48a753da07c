package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/eduportal/assessment-api/internal/repository"
	"github.com/eduportal/assessment-api/internal/service"
)

// StudentHandler handles admin student-management endpoints.
type StudentHandler struct {
	studentSvc   *service.StudentService
	analyticsSvc *service.AnalyticsService
}

// NewStudentHandler creates a new student handler.
func NewStudentHandler(studentSvc *service.StudentService, analyticsSvc *service.AnalyticsService) *StudentHandler {
	return &StudentHandler{studentSvc: studentSvc, analyticsSvc: analyticsSvc}
}

// Create handles POST /v1/students
func (h *StudentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.StudentInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	student, err := h.studentSvc.Create(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "student": student})
}

// List handles GET /v1/students
func (h *StudentHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.StudentFilter{
		Course: q.Get("course"),
		Batch:  q.Get("batch"),
		Status: q.Get("status"),
	}

	students, err := h.studentSvc.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "students": students})
}

// Get handles GET /v1/students/{id}
func (h *StudentHandler) Get(w http.ResponseWriter, r *http.Request) {
	student, err := h.studentSvc.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "student": student})
}

// Update handles PUT /v1/students/{id}
func (h *StudentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.StudentInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	student, err := h.studentSvc.Update(r.Context(), mux.Vars(r)["id"], &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "student": student})
}

// Delete handles DELETE /v1/students/{id}
func (h *StudentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.studentSvc.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "student deleted"})
}

// Import handles POST /v1/students/import. The body is a pre-parsed JSON
// array of student rows; spreadsheet parsing happens client-side.
func (h *StudentHandler) Import(w http.ResponseWriter, r *http.Request) {
	var rows []service.StudentInput
	if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(rows) == 0 {
		writeError(w, http.StatusBadRequest, "no rows to import")
		return
	}

	result, err := h.studentSvc.BulkImport(r.Context(), rows)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "result": result})
}

// Analytics handles GET /v1/students/{id}/analytics
func (h *StudentHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	summary, err := h.analyticsSvc.StudentSummary(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "analytics": summary})
}
