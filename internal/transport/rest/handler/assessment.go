package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/eduportal/assessment-api/internal/model"
	"github.com/eduportal/assessment-api/internal/service"
	"github.com/eduportal/assessment-api/internal/transport/rest/middleware"
)

// AssessmentHandler handles admin assessment-authoring endpoints.
type AssessmentHandler struct {
	assessmentSvc *service.AssessmentService
	analyticsSvc  *service.AnalyticsService
}

// NewAssessmentHandler creates a new assessment handler.
func NewAssessmentHandler(assessmentSvc *service.AssessmentService, analyticsSvc *service.AnalyticsService) *AssessmentHandler {
	return &AssessmentHandler{assessmentSvc: assessmentSvc, analyticsSvc: analyticsSvc}
}

// Create handles POST /v1/assessments
func (h *AssessmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())

	var req service.AssessmentInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a, err := h.assessmentSvc.Create(r.Context(), claims.UserID, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "assessment": a})
}

// List handles GET /v1/assessments
func (h *AssessmentHandler) List(w http.ResponseWriter, r *http.Request) {
	status := model.AssessmentStatus(r.URL.Query().Get("status"))

	assessments, err := h.assessmentSvc.List(r.Context(), status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "assessments": assessments})
}

// Get handles GET /v1/assessments/{id}
func (h *AssessmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.assessmentSvc.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "assessment": a})
}

// Update handles PUT /v1/assessments/{id}
func (h *AssessmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.AssessmentInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a, err := h.assessmentSvc.Update(r.Context(), mux.Vars(r)["id"], &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "assessment": a})
}

// SetStatusRequest is the request body for status transitions.
type SetStatusRequest struct {
	Status model.AssessmentStatus `json:"status"`
}

// SetStatus handles POST /v1/assessments/{id}/status
func (h *AssessmentHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a, err := h.assessmentSvc.SetStatus(r.Context(), mux.Vars(r)["id"], req.Status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "assessment": a})
}

// Delete handles DELETE /v1/assessments/{id}
func (h *AssessmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.assessmentSvc.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "assessment deleted"})
}

// Analytics handles GET /v1/assessments/{id}/analytics
func (h *AssessmentHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	summary, err := h.analyticsSvc.AssessmentSummary(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "analytics": summary})
}

// Overview handles GET /v1/analytics
func (h *AssessmentHandler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.analyticsSvc.SystemOverview(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "analytics": overview})
}
