package dto

import "nexus-hospital/internal/domain/entity"

// SafetyCheckRequest screens a prescription against an allergy list. Both
// fields are required; an empty allergy list must still be present.
type SafetyCheckRequest struct {
	Prescription string   `json:"prescription" validate:"required"`
	Allergies    []string `json:"allergies" validate:"required"`
}

type SafetyCheckResponse struct {
	Conflict bool   `json:"conflict"`
	Severity string `json:"severity,omitempty"`
	Message  string `json:"message"`
}

// ShiftSummaryRequest generates a handoff summary from a patient's actions.
type ShiftSummaryRequest struct {
	PatientName string                  `json:"patientName"`
	Actions     []entity.ClinicalAction `json:"actions" validate:"required"`
}

type ShiftSummaryResponse struct {
	Summary []string `json:"summary"`
}
