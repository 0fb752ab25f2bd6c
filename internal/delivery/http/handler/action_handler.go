package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"nexus-hospital/internal/analytics"
	"nexus-hospital/internal/delivery/dto"
	"nexus-hospital/internal/delivery/http/middleware"
	"nexus-hospital/internal/domain/entity"
	"nexus-hospital/internal/store"
	"nexus-hospital/pkg/response"
	"nexus-hospital/pkg/validator"

	"github.com/gorilla/mux"
)

type ActionHandler struct {
	store     *store.DomainStore
	validator *validator.CustomValidator
}

func NewActionHandler(domainStore *store.DomainStore, validator *validator.CustomValidator) *ActionHandler {
	return &ActionHandler{
		store:     domainStore,
		validator: validator,
	}
}

// CreateAction routes a new clinical action to a department. Priority and
// allergy annotation are derived by the triage policy before the action is
// stored.
func (h *ActionHandler) CreateAction(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	initiatorID, _ := middleware.GetUserIDFromContext(r.Context())

	action, err := h.store.AddAction(r.Context(), entity.ClinicalAction{
		PatientID:        req.PatientID,
		InitiatorID:      initiatorID,
		TargetDepartment: entity.Department(req.TargetDepartment),
		Type:             entity.ActionType(req.Type),
		Description:      req.Description,
		Priority:         entity.Priority(req.Priority),
		Notes:            req.Notes,
		Metadata:         req.Metadata,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrPatientNotFound):
			response.NotFound(w, "Patient not found")
		case errors.Is(err, store.ErrInvalidStatus):
			response.BadRequest(w, "Invalid department or action type")
		default:
			response.InternalServerError(w, "Failed to create action")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Action created successfully", action)
}

// ListActions returns actions most recent first, optionally filtered by
// department, status or patient via query parameters.
func (h *ActionHandler) ListActions(w http.ResponseWriter, r *http.Request) {
	actions := h.store.Actions()

	department := r.URL.Query().Get("department")
	status := r.URL.Query().Get("status")
	patientID := r.URL.Query().Get("patientId")

	filtered := make([]entity.ClinicalAction, 0, len(actions))
	for _, a := range actions {
		if department != "" && string(a.TargetDepartment) != department {
			continue
		}
		if status != "" && string(a.Status) != status {
			continue
		}
		if patientID != "" && a.PatientID != patientID {
			continue
		}
		filtered = append(filtered, a)
	}

	response.Success(w, http.StatusOK, "Actions retrieved successfully", filtered)
}

// UpdateStatus moves an action along its lifecycle. Illegal edges come back
// as 409 so clients can distinguish a stale view from a bad request.
func (h *ActionHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateActionStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	action, err := h.store.UpdateActionStatus(r.Context(), mux.Vars(r)["id"], entity.ActionStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, store.ErrActionNotFound):
			response.NotFound(w, "Action not found")
		case errors.Is(err, entity.ErrIllegalTransition):
			response.Conflict(w, "Illegal status transition")
		case errors.Is(err, store.ErrInvalidStatus):
			response.BadRequest(w, "Invalid status value")
		default:
			response.InternalServerError(w, "Failed to update action status")
		}
		return
	}

	response.Success(w, http.StatusOK, "Action status updated successfully", action)
}

// DepartmentQueue returns a department's work queue ordered by priority, then
// recency. A comma-free repeated status parameter narrows the view.
func (h *ActionHandler) DepartmentQueue(w http.ResponseWriter, r *http.Request) {
	dept := entity.Department(mux.Vars(r)["department"])
	if !dept.Valid() {
		response.NotFound(w, "Unknown department")
		return
	}

	var statuses []entity.ActionStatus
	for _, s := range r.URL.Query()["status"] {
		status := entity.ActionStatus(s)
		if !status.Valid() {
			response.BadRequest(w, "Invalid status value")
			return
		}
		statuses = append(statuses, status)
	}

	queue := analytics.DepartmentQueue(h.store.Actions(), dept, statuses...)
	if queue == nil {
		queue = []entity.ClinicalAction{}
	}

	response.Success(w, http.StatusOK, "Queue retrieved successfully", queue)
}

// DepartmentCounts returns the department's workload tally by status.
func (h *ActionHandler) DepartmentCounts(w http.ResponseWriter, r *http.Request) {
	dept := entity.Department(mux.Vars(r)["department"])
	if !dept.Valid() {
		response.NotFound(w, "Unknown department")
		return
	}

	response.Success(w, http.StatusOK, "Counts retrieved successfully", analytics.ActionCounts(h.store.Actions(), dept))
}
