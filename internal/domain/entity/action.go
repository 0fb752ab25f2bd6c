package entity

import (
	"errors"
	"time"
)

// Department is the execution owner of a clinical action.
type Department string

const (
	DepartmentPharmacy Department = "Pharmacy"
	DepartmentLab      Department = "Lab"
	DepartmentNursing  Department = "Nursing"
	DepartmentGeneral  Department = "General"
)

// Departments lists all departments in display order.
func Departments() []Department {
	return []Department{DepartmentPharmacy, DepartmentLab, DepartmentNursing, DepartmentGeneral}
}

func (d Department) Valid() bool {
	switch d {
	case DepartmentPharmacy, DepartmentLab, DepartmentNursing, DepartmentGeneral:
		return true
	}
	return false
}

// ActionType classifies a clinical action.
type ActionType string

const (
	ActionPrescription    ActionType = "Prescription"
	ActionDiagnostic      ActionType = "Diagnostic"
	ActionReferral        ActionType = "Referral"
	ActionCareInstruction ActionType = "CareInstruction"
	ActionLabRequest      ActionType = "Lab Request"
	ActionGeneral         ActionType = "General"
)

func (t ActionType) Valid() bool {
	switch t {
	case ActionPrescription, ActionDiagnostic, ActionReferral, ActionCareInstruction, ActionLabRequest, ActionGeneral:
		return true
	}
	return false
}

// ActionStatus is a node of the clinical action state machine.
type ActionStatus string

const (
	StatusPending    ActionStatus = "Pending"
	StatusInProgress ActionStatus = "In-Progress"
	StatusCompleted  ActionStatus = "Completed"
	StatusRejected   ActionStatus = "Rejected"
)

func (s ActionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusRejected:
		return true
	}
	return false
}

// actionTransitions is the validated edge set of the lifecycle state machine.
// Completed and Rejected are terminal.
var actionTransitions = map[ActionStatus][]ActionStatus{
	StatusPending:    {StatusInProgress, StatusRejected},
	StatusInProgress: {StatusCompleted, StatusRejected},
}

// CanTransitionTo reports whether the edge s -> next is legal.
func (s ActionStatus) CanTransitionTo(next ActionStatus) bool {
	for _, allowed := range actionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ErrIllegalTransition is returned when a status change does not follow the
// lifecycle state machine.
var ErrIllegalTransition = errors.New("illegal status transition")

// Priority is the routing priority of a clinical action, P1 highest.
type Priority string

const (
	PriorityP1 Priority = "P1"
	PriorityP2 Priority = "P2"
	PriorityP3 Priority = "P3"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityP1, PriorityP2, PriorityP3:
		return true
	}
	return false
}

// Rank orders priorities for sorting: P1 < P2 < P3. Unknown values sort last.
func (p Priority) Rank() int {
	switch p {
	case PriorityP1:
		return 1
	case PriorityP2:
		return 2
	case PriorityP3:
		return 3
	}
	return 4
}

// ClinicalAction is a routed request/order moving between departments through
// Pending -> In-Progress -> Completed/Rejected.
type ClinicalAction struct {
	ID               string         `json:"id"`
	PatientID        string         `json:"patientId"`
	InitiatorID      string         `json:"initiatorId"`
	TargetDepartment Department     `json:"targetDepartment"`
	Type             ActionType     `json:"type"`
	Description      string         `json:"description"`
	Status           ActionStatus   `json:"status"`
	Priority         Priority       `json:"priority"`
	Timestamp        time.Time      `json:"timestamp"`
	CompletedAt      *time.Time     `json:"completedAt,omitempty"`
	Notes            string         `json:"notes,omitempty"`
	Metadata         map[string]any `json:"metadata,omitempty"`
}

// TransitionTo moves the action along a legal state-machine edge, stamping
// the completion time when it reaches Completed.
func (a *ClinicalAction) TransitionTo(next ActionStatus, now time.Time) error {
	if !a.Status.CanTransitionTo(next) {
		return ErrIllegalTransition
	}
	a.Status = next
	if next == StatusCompleted {
		completed := now
		a.CompletedAt = &completed
	}
	return nil
}
