package entity

import "time"

// AppointmentStatus is a node of the appointment state machine.
type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "Scheduled"
	AppointmentCheckedIn AppointmentStatus = "Checked-in"
	AppointmentCancelled AppointmentStatus = "Cancelled"
	AppointmentCompleted AppointmentStatus = "Completed"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentScheduled, AppointmentCheckedIn, AppointmentCancelled, AppointmentCompleted:
		return true
	}
	return false
}

var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentScheduled: {AppointmentCheckedIn, AppointmentCancelled},
	AppointmentCheckedIn: {AppointmentCompleted, AppointmentCancelled},
}

// CanTransitionTo reports whether the edge s -> next is legal. Cancelled and
// Completed are terminal.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range appointmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Appointment is a reception-managed visit booking. PatientName is free text
// and intentionally not linked to the Patient collection.
type Appointment struct {
	ID            string            `json:"id"`
	PatientName   string            `json:"patientName"`
	ContactNumber string            `json:"contactNumber"`
	DoctorID      string            `json:"doctorId"`
	Department    string            `json:"department"`
	Time          time.Time         `json:"time"`
	Reason        string            `json:"reason"`
	Status        AppointmentStatus `json:"status"`
}

// TransitionTo moves the appointment along a legal state-machine edge.
func (a *Appointment) TransitionTo(next AppointmentStatus) error {
	if !a.Status.CanTransitionTo(next) {
		return ErrIllegalTransition
	}
	a.Status = next
	return nil
}
