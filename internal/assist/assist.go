// Package assist defines the external assist capabilities used by the
// dashboard: prescription safety checks and shift handoff summaries. Both sit
// behind interfaces so the simulated keyword implementations can later be
// swapped for a real model-backed service without touching core logic.
package assist

import (
	"context"

	"nexus-hospital/internal/domain/entity"
)

// SafetyResult is the outcome of a prescription safety check.
type SafetyResult struct {
	Conflict bool   `json:"conflict"`
	Severity string `json:"severity,omitempty"`
	Message  string `json:"message"`
}

// SafetyChecker screens a prescription against a patient's allergy list.
type SafetyChecker interface {
	Check(ctx context.Context, prescription string, allergies []string) (SafetyResult, error)
}

// SummaryGenerator produces a shift handoff summary from a patient's recent
// actions.
type SummaryGenerator interface {
	ShiftSummary(ctx context.Context, patientName string, actions []entity.ClinicalAction) ([]string, error)
}
