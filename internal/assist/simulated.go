package assist

import (
	"context"
	"fmt"
	"strings"
	"time"

	"nexus-hospital/internal/domain/entity"
)

// Simulated implements both assist capabilities with keyword matching behind
// an artificial delay that models the latency of a hosted model. A zero delay
// disables the wait, which is how tests run it.
type Simulated struct {
	safetyDelay  time.Duration
	summaryDelay time.Duration
}

func NewSimulated(safetyDelay, summaryDelay time.Duration) *Simulated {
	return &Simulated{
		safetyDelay:  safetyDelay,
		summaryDelay: summaryDelay,
	}
}

// penicillinClass are the order keywords treated as penicillin-based
// medications by the demo conflict rule.
var penicillinClass = []string{"penicillin", "amoxicillin", "augmentin"}

// Check screens the prescription text against the allergy list. The
// penicillin-class rule fires first; otherwise any allergy appearing verbatim
// in the prescription is flagged.
func (s *Simulated) Check(ctx context.Context, prescription string, allergies []string) (SafetyResult, error) {
	if err := wait(ctx, s.safetyDelay); err != nil {
		return SafetyResult{}, err
	}

	prescriptionLower := strings.ToLower(prescription)

	hasPenicillinAllergy := false
	for _, a := range allergies {
		if strings.Contains(strings.ToLower(a), "penicillin") {
			hasPenicillinAllergy = true
			break
		}
	}

	isPenicillinPrescribed := false
	for _, med := range penicillinClass {
		if strings.Contains(prescriptionLower, med) {
			isPenicillinPrescribed = true
			break
		}
	}

	if hasPenicillinAllergy && isPenicillinPrescribed {
		return SafetyResult{
			Conflict: true,
			Severity: "High",
			Message: fmt.Sprintf(
				"Potential Allergy Conflict Detected: The patient has a documented Penicillin allergy, and %q is a Penicillin-based medication.",
				prescription),
		}, nil
	}

	for _, allergy := range allergies {
		if allergy == "" {
			continue
		}
		if strings.Contains(prescriptionLower, strings.ToLower(allergy)) {
			return SafetyResult{
				Conflict: true,
				Severity: "High",
				Message: fmt.Sprintf(
					"Allergy Alert: The prescribed medication %q matches the patient's recorded allergy: %q.",
					prescription, allergy),
			}, nil
		}
	}

	return SafetyResult{
		Conflict: false,
		Message:  "No immediate safety conflicts detected.",
	}, nil
}

// ShiftSummary produces the five-sentence handoff template parameterized by
// the action cohorts.
func (s *Simulated) ShiftSummary(ctx context.Context, patientName string, actions []entity.ClinicalAction) ([]string, error) {
	if err := wait(ctx, s.summaryDelay); err != nil {
		return nil, err
	}

	var medications, labs, nursing []entity.ClinicalAction
	hasHighPriority := false
	for _, a := range actions {
		switch a.Type {
		case entity.ActionPrescription:
			medications = append(medications, a)
		case entity.ActionLabRequest:
			labs = append(labs, a)
		case entity.ActionCareInstruction:
			nursing = append(nursing, a)
		}
		if a.Priority == entity.PriorityP1 {
			hasHighPriority = true
		}
	}

	name := patientName
	if name == "" {
		name = "Record"
	}

	summary := []string{
		fmt.Sprintf("Patient %s shows stable progression over the last 12 hours.", name),
	}

	if len(medications) > 0 {
		summary = append(summary, fmt.Sprintf(
			"Medication management: %d prescriptions completed, including %s.",
			len(medications), medications[0].Description))
	} else {
		summary = append(summary, "No new medications were administered during this shift.")
	}

	if len(labs) > 0 {
		summary = append(summary, fmt.Sprintf(
			"Diagnostic status: %d lab requests processed. Results pending for %s.",
			len(labs), labs[0].Description))
	} else {
		summary = append(summary, "No pending laboratory results for the next shift.")
	}

	if len(nursing) > 0 {
		summary = append(summary, fmt.Sprintf(
			"Nursing Care: Focused on %s. Patient remains cooperative.",
			nursing[0].Description))
	} else {
		summary = append(summary, "Routine nursing care provided; no significant deviations from the care plan.")
	}

	if hasHighPriority {
		summary = append(summary, "WARNING: High-priority actions were noted. Monitor vitals closely in the coming hours.")
	} else {
		summary = append(summary, "Patient is currently in a routine monitoring phase with no immediate high-risk alerts.")
	}

	return summary, nil
}

// wait blocks for the configured delay, honoring context cancellation.
func wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
