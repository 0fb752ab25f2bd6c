package dto

// AdmitPatientRequest carries the reception admission form. ID and admission
// date are always assigned server side.
type AdmitPatientRequest struct {
	Name              string   `json:"name" validate:"required,min=2"`
	Age               int      `json:"age" validate:"required,gte=0,lte=150"`
	Gender            string   `json:"gender" validate:"required,oneof=Male Female Other"`
	Condition         string   `json:"condition" validate:"required"`
	RoomNumber        string   `json:"roomNumber" validate:"required"`
	AttendingDoctorID string   `json:"attendingDoctorId" validate:"omitempty"`
	Allergies         []string `json:"allergies" validate:"omitempty"`
	Severity          string   `json:"severity" validate:"omitempty,oneof=Critical Urgent Stable"`

	Weight          float64 `json:"weight" validate:"omitempty,gt=0"`
	Height          float64 `json:"height" validate:"omitempty,gt=0"`
	BloodGroup      string  `json:"bloodGroup" validate:"omitempty"`
	BloodPressure   string  `json:"bloodPressure" validate:"omitempty"`
	Temperature     float64 `json:"temperature" validate:"omitempty"`
	IsPregnant      bool    `json:"isPregnant"`
	IsBreastfeeding bool    `json:"isBreastfeeding"`

	PhoneNumber           string `json:"phoneNumber" validate:"omitempty"`
	InsuranceProvider     string `json:"insuranceProvider" validate:"omitempty"`
	InsurancePolicyNumber string `json:"insurancePolicyNumber" validate:"omitempty"`
}

type AssignDoctorRequest struct {
	DoctorID string `json:"doctorId" validate:"required"`
}

type UpdateSeverityRequest struct {
	Severity string `json:"severity" validate:"required,oneof=Critical Urgent Stable"`
}
