package dto

// CreateAppointmentRequest schedules a visit from the reception desk. The
// patient name is free text and not linked to the admitted-patient
// collection.
type CreateAppointmentRequest struct {
	PatientName   string `json:"patientName" validate:"required,min=2"`
	ContactNumber string `json:"contactNumber" validate:"required"`
	DoctorID      string `json:"doctorId" validate:"required"`
	Department    string `json:"department" validate:"required"`
	Time          string `json:"time" validate:"required"` // RFC 3339
	Reason        string `json:"reason" validate:"omitempty"`
}

type UpdateAppointmentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Scheduled Checked-in Cancelled Completed"`
}
