package dto

// CreateActionRequest creates a clinical action. Priority is optional: when
// absent or left at the P2 default, the triage policy infers it from the
// description.
type CreateActionRequest struct {
	PatientID        string         `json:"patientId" validate:"required"`
	TargetDepartment string         `json:"targetDepartment" validate:"required,oneof=Pharmacy Lab Nursing General"`
	Type             string         `json:"type" validate:"omitempty,oneof=Prescription Diagnostic Referral CareInstruction 'Lab Request' General"`
	Description      string         `json:"description" validate:"required"`
	Priority         string         `json:"priority" validate:"omitempty,oneof=P1 P2 P3"`
	Notes            string         `json:"notes" validate:"omitempty"`
	Metadata         map[string]any `json:"metadata" validate:"omitempty"`
}

type UpdateActionStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Pending In-Progress Completed Rejected"`
}
