package handler

import (
	"encoding/json"
	"net/http"

	"nexus-hospital/internal/assist"
	"nexus-hospital/internal/delivery/dto"
	"nexus-hospital/pkg/response"
	"nexus-hospital/pkg/validator"

	"github.com/sirupsen/logrus"
)

type AssistHandler struct {
	safety    assist.SafetyChecker
	summaries assist.SummaryGenerator
	validator *validator.CustomValidator
	log       *logrus.Logger
}

func NewAssistHandler(safety assist.SafetyChecker, summaries assist.SummaryGenerator, validator *validator.CustomValidator, log *logrus.Logger) *AssistHandler {
	return &AssistHandler{
		safety:    safety,
		summaries: summaries,
		validator: validator,
		log:       log,
	}
}

// SafetyCheck screens a prescription against an allergy list. Missing fields
// are a 400; checker failures surface as a generic 500.
func (h *AssistHandler) SafetyCheck(w http.ResponseWriter, r *http.Request) {
	var req dto.SafetyCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	result, err := h.safety.Check(r.Context(), req.Prescription, req.Allergies)
	if err != nil {
		h.log.Warnf("Safety check failed: %+v", err)
		response.InternalServerError(w, "Safety check failed")
		return
	}

	response.Success(w, http.StatusOK, "Safety check completed", dto.SafetyCheckResponse{
		Conflict: result.Conflict,
		Severity: result.Severity,
		Message:  result.Message,
	})
}

// ShiftSummary generates a handoff summary from a patient's recent actions.
func (h *AssistHandler) ShiftSummary(w http.ResponseWriter, r *http.Request) {
	var req dto.ShiftSummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	summary, err := h.summaries.ShiftSummary(r.Context(), req.PatientName, req.Actions)
	if err != nil {
		h.log.Warnf("Shift summary failed: %+v", err)
		response.InternalServerError(w, "Shift summary failed")
		return
	}

	response.Success(w, http.StatusOK, "Shift summary generated", dto.ShiftSummaryResponse{Summary: summary})
}
