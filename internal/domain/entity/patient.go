package entity

import "time"

// Severity is the patient acuity classification, distinct from action priority.
type Severity string

const (
	SeverityCritical Severity = "Critical"
	SeverityUrgent   Severity = "Urgent"
	SeverityStable   Severity = "Stable"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityCritical, SeverityUrgent, SeverityStable:
		return true
	}
	return false
}

// Patient is an admitted patient. Patients are created at admission and never
// deleted; severity updates and doctor reassignment are the only mutations.
// AttendingDoctorID is a reference to a User with role Doctor, validated at
// mutation time.
type Patient struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Age               int       `json:"age"`
	Gender            string    `json:"gender"`
	Condition         string    `json:"condition"`
	RoomNumber        string    `json:"roomNumber"`
	AttendingDoctorID string    `json:"attendingDoctorId"`
	Allergies         []string  `json:"allergies,omitempty"`
	AdmissionDate     time.Time `json:"admissionDate"`
	Severity          Severity  `json:"severity,omitempty"`

	// Optional vitals.
	Weight          float64 `json:"weight,omitempty"`
	Height          float64 `json:"height,omitempty"`
	BloodGroup      string  `json:"bloodGroup,omitempty"`
	BloodPressure   string  `json:"bloodPressure,omitempty"`
	Temperature     float64 `json:"temperature,omitempty"`
	IsPregnant      bool    `json:"isPregnant,omitempty"`
	IsBreastfeeding bool    `json:"isBreastfeeding,omitempty"`

	// Optional contact and insurance details captured at reception.
	PhoneNumber           string `json:"phoneNumber,omitempty"`
	InsuranceProvider     string `json:"insuranceProvider,omitempty"`
	InsurancePolicyNumber string `json:"insurancePolicyNumber,omitempty"`
}

// HasAllergy reports whether the named allergy is recorded for the patient.
// Matching is exact; the safety policy layers its own keyword logic on top.
func (p *Patient) HasAllergy(name string) bool {
	for _, a := range p.Allergies {
		if a == name {
			return true
		}
	}
	return false
}
