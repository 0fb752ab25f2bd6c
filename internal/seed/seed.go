// Package seed provides the initial demo dataset loaded when the persistence
// adapter holds no data yet.
package seed

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"nexus-hospital/internal/domain/entity"
)

// Users returns the seed staff roster. Passwords are hashed at seed time;
// the well-known demo credentials are admin/admin123 and pass123 for the
// rest.
func Users() []entity.User {
	return []entity.User{
		{ID: "u0", Username: "admin", Name: "Admin User", Role: entity.RoleAdmin, PasswordHash: hash("admin123")},
		{ID: "u1", Username: "smith", Name: "Dr. Smith", Role: entity.RoleDoctor, PasswordHash: hash("pass123")},
		{ID: "u2", Username: "sarah", Name: "Sarah Jones", Role: entity.RoleNurse, PasswordHash: hash("pass123")},
		{ID: "u3", Username: "pharmacy", Name: "Pharmacy Unit A", Role: entity.RolePharmacy, PasswordHash: hash("pass123")},
		{ID: "u4", Username: "lab", Name: "Lab Unit B", Role: entity.RoleLab, PasswordHash: hash("pass123")},
		{ID: "u5", Username: "reception", Name: "Front Desk", Role: entity.RoleReceptionist, PasswordHash: hash("pass123")},
	}
}

// Patients returns the seed ward census.
func Patients(now time.Time) []entity.Patient {
	return []entity.Patient{
		{
			ID:                "p1",
			Name:              "John Doe",
			Age:               45,
			Gender:            "Male",
			Condition:         "Pneumonia",
			RoomNumber:        "101",
			AttendingDoctorID: "u1",
			Allergies:         []string{"Penicillin"},
			AdmissionDate:     now.Add(-72 * time.Hour),
			Severity:          entity.SeverityStable,
		},
		{
			ID:                "p2",
			Name:              "Jane Roe",
			Age:               32,
			Gender:            "Female",
			Condition:         "Post-op Recovery",
			RoomNumber:        "102",
			AttendingDoctorID: "u1",
			AdmissionDate:     now.Add(-48 * time.Hour),
			Severity:          entity.SeverityStable,
		},
		{
			ID:                "p3",
			Name:              "Robert Brown",
			Age:               60,
			Gender:            "Male",
			Condition:         "Cardiac Observation",
			RoomNumber:        "ICU-1",
			AttendingDoctorID: "u1",
			AdmissionDate:     now.Add(-96 * time.Hour),
			Severity:          entity.SeverityCritical,
		},
	}
}

// Actions returns the seed action backlog, including completed actions with
// completion timestamps so the bottleneck dashboard has data on first run.
func Actions(now time.Time) []entity.ClinicalAction {
	completedTenMinAgo := now.Add(-10 * time.Minute)
	completedTwentyFiveMinAgo := now.Add(-25 * time.Minute)

	return []entity.ClinicalAction{
		{
			ID: "a1", PatientID: "p1", InitiatorID: "u1",
			TargetDepartment: entity.DepartmentPharmacy, Type: entity.ActionPrescription,
			Description: "Amoxicillin 500mg", Status: entity.StatusPending,
			Priority: entity.PriorityP2, Timestamp: now.Add(-30 * time.Minute),
		},
		{
			ID: "a2", PatientID: "p1", InitiatorID: "u1",
			TargetDepartment: entity.DepartmentLab, Type: entity.ActionDiagnostic,
			Description: "Chest X-Ray", Status: entity.StatusCompleted,
			Priority: entity.PriorityP2, Timestamp: now.Add(-2 * time.Hour),
		},
		{
			ID: "a3", PatientID: "p3", InitiatorID: "u1",
			TargetDepartment: entity.DepartmentLab, Type: entity.ActionDiagnostic,
			Description: "Troponin Levels", Status: entity.StatusInProgress,
			Priority: entity.PriorityP1, Timestamp: now.Add(-10 * time.Minute),
		},
		{
			ID: "n1", PatientID: "p1", InitiatorID: "u1",
			TargetDepartment: entity.DepartmentNursing, Type: entity.ActionGeneral,
			Description: "Vital signs q4h (BP, Pulse, SpO2)", Status: entity.StatusPending,
			Priority: entity.PriorityP2, Timestamp: now.Add(-20 * time.Minute),
		},
		{
			ID: "n2", PatientID: "p2", InitiatorID: "u1",
			TargetDepartment: entity.DepartmentNursing, Type: entity.ActionGeneral,
			Description: "Assist with ambulation", Status: entity.StatusInProgress,
			Priority: entity.PriorityP3, Timestamp: now.Add(-45 * time.Minute),
		},
		{
			ID: "n3", PatientID: "p3", InitiatorID: "u1",
			TargetDepartment: entity.DepartmentNursing, Type: entity.ActionGeneral,
			Description: "Wound dressing change - Abdominal", Status: entity.StatusPending,
			Priority: entity.PriorityP1, Timestamp: now.Add(-5 * time.Minute),
		},
		{
			ID: "a4", PatientID: "p2", InitiatorID: "u1",
			TargetDepartment: entity.DepartmentPharmacy, Type: entity.ActionPrescription,
			Description: "Ibuprofen 400mg", Status: entity.StatusCompleted,
			Priority: entity.PriorityP3, Timestamp: now.Add(-2 * time.Hour),
			CompletedAt: &completedTenMinAgo,
		},
		{
			ID: "a5", PatientID: "p1", InitiatorID: "u1",
			TargetDepartment: entity.DepartmentLab, Type: entity.ActionDiagnostic,
			Description: "Blood Glucose", Status: entity.StatusCompleted,
			Priority: entity.PriorityP2, Timestamp: now.Add(-30 * time.Minute),
			CompletedAt: &completedTwentyFiveMinAgo,
		},
	}
}

func hash(password string) string {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		// bcrypt only fails on oversized input; seed passwords are short.
		panic(err)
	}
	return string(hashed)
}
