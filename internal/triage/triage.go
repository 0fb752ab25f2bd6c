// Package triage implements the clinical action routing policy: priority
// inference from order text and allergy safety annotation. Both functions are
// pure, deterministic and total.
package triage

import (
	"strings"

	"nexus-hospital/internal/domain/entity"
)

// PenicillinWarning is appended to an action's notes when a penicillin-class
// order targets a patient with a documented Penicillin allergy.
const PenicillinWarning = "WARNING: Patient has Penicillin allergy!"

// p1Triggers and p2Triggers are checked in precedence order: any P1 trigger
// wins before P2 triggers are considered. Matching is a plain substring scan
// without word boundaries ("URGENTLY" matches "URGENT"); this mirrors the
// behavior the departments already rely on.
var (
	p1Triggers = []string{"STAT", "EMERGENCY", "ASAP", "CRITICAL"}
	p2Triggers = []string{"URGENT"}
)

// InferPriority resolves the effective priority of a new action. An explicit
// caller priority of P1 or P3 is never overridden; when the caller priority
// is absent or the default P2, the description is scanned for trigger words
// and unmatched text defaults to P3.
func InferPriority(description string, caller entity.Priority) entity.Priority {
	if caller == entity.PriorityP1 || caller == entity.PriorityP3 {
		return caller
	}

	text := strings.ToUpper(description)
	for _, trigger := range p1Triggers {
		if strings.Contains(text, trigger) {
			return entity.PriorityP1
		}
	}
	for _, trigger := range p2Triggers {
		if strings.Contains(text, trigger) {
			return entity.PriorityP2
		}
	}
	return entity.PriorityP3
}

// SafetyNote returns the advisory warning for the order text against the
// patient's allergy set, or "" when no conflict is flagged. The check is
// advisory only: it never blocks creation or changes priority.
func SafetyNote(description string, allergies []string) string {
	hasPenicillinAllergy := false
	for _, a := range allergies {
		if a == "Penicillin" {
			hasPenicillinAllergy = true
			break
		}
	}
	if !hasPenicillinAllergy {
		return ""
	}

	text := strings.ToUpper(description)
	if strings.Contains(text, "PENICILLIN") || strings.Contains(text, "AMOXICILLIN") {
		return PenicillinWarning
	}
	return ""
}

// Annotate joins a safety warning onto pre-existing notes.
func Annotate(notes, warning string) string {
	if warning == "" {
		return notes
	}
	if notes == "" {
		return warning
	}
	return notes + " | " + warning
}
