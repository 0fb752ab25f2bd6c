package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexus-hospital/internal/adapter/kv"
	"nexus-hospital/internal/analytics"
	"nexus-hospital/internal/domain/entity"
	"nexus-hospital/internal/triage"
)

// fakeSyncer records mirror calls without touching a filesystem.
type fakeSyncer struct {
	mu       sync.Mutex
	appended []entity.Patient
	replaced [][]entity.Patient
}

func (f *fakeSyncer) List(_ context.Context) ([]entity.Patient, error) {
	return nil, nil
}

func (f *fakeSyncer) Append(_ context.Context, p entity.Patient) (entity.Patient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appended = append(f.appended, p)
	return p, nil
}

func (f *fakeSyncer) ReplaceAll(_ context.Context, patients []entity.Patient) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replaced = append(f.replaced, patients)
	return nil
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func newTestStore(t *testing.T) (*DomainStore, kv.Store) {
	t.Helper()

	mem := kv.NewMemoryStore()
	s := New(mem, &fakeSyncer{}, nil, testLogger(), "test")

	// Deterministic clock and IDs.
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }
	var n int
	s.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}

	require.NoError(t, s.Load(context.Background()))
	return s, mem
}

func TestLoadSeedsEmptyStore(t *testing.T) {
	s, _ := newTestStore(t)

	assert.Len(t, s.Users(), 6)
	assert.Len(t, s.Patients(), 3)
	assert.Len(t, s.Actions(), 8)
	assert.Empty(t, s.Appointments())
}

func TestLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore(t)

	_, err := s.AddAction(ctx, entity.ClinicalAction{
		PatientID:        "p2",
		TargetDepartment: entity.DepartmentLab,
		Description:      "Lipid panel",
	})
	require.NoError(t, err)

	// A second store over the same adapter sees the persisted state.
	s2 := New(mem, nil, nil, testLogger(), "test")
	require.NoError(t, s2.Load(ctx))

	assert.Len(t, s2.Actions(), 9)
	assert.Equal(t, "Lipid panel", s2.Actions()[0].Description)
	assert.Len(t, s2.Users(), 6)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	t.Run("seed credentials", func(t *testing.T) {
		user, err := s.Login(ctx, "smith", entity.RoleDoctor, "pass123")
		require.NoError(t, err)
		assert.Equal(t, "u1", user.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := s.Login(ctx, "smith", entity.RoleDoctor, "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("wrong role", func(t *testing.T) {
		_, err := s.Login(ctx, "smith", entity.RoleNurse, "pass123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := s.Login(ctx, "nobody", entity.RoleDoctor, "pass123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAddUser(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	user, err := s.AddUser(ctx, entity.User{Username: "jones", Name: "Dr. Jones", Role: entity.RoleDoctor}, "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.NotEmpty(t, user.PasswordHash)

	_, err = s.Login(ctx, "jones", entity.RoleDoctor, "secret1")
	assert.NoError(t, err)

	t.Run("duplicate username rejected", func(t *testing.T) {
		_, err := s.AddUser(ctx, entity.User{Username: "jones", Name: "Other", Role: entity.RoleNurse}, "x")
		assert.ErrorIs(t, err, ErrUsernameTaken)
	})

	t.Run("invalid role rejected", func(t *testing.T) {
		_, err := s.AddUser(ctx, entity.User{Username: "new", Role: "Janitor"}, "x")
		assert.ErrorIs(t, err, ErrInvalidRole)
	})
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	require.NoError(t, s.ChangePassword(ctx, "u1", "newpass"))

	_, err := s.Login(ctx, "smith", entity.RoleDoctor, "pass123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = s.Login(ctx, "smith", entity.RoleDoctor, "newpass")
	assert.NoError(t, err)

	assert.ErrorIs(t, s.ChangePassword(ctx, "missing", "x"), ErrUserNotFound)
}

func TestAddPatient(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	patient, err := s.AddPatient(ctx, entity.Patient{
		Name:              "New Patient",
		AttendingDoctorID: "u1",
		Severity:          entity.SeverityUrgent,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, patient.ID)
	assert.False(t, patient.AdmissionDate.IsZero())
	assert.Len(t, s.Patients(), 4)

	t.Run("unknown doctor rejected", func(t *testing.T) {
		_, err := s.AddPatient(ctx, entity.Patient{Name: "X", AttendingDoctorID: "ghost"})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("non-doctor reference rejected", func(t *testing.T) {
		_, err := s.AddPatient(ctx, entity.Patient{Name: "X", AttendingDoctorID: "u2"})
		assert.ErrorIs(t, err, ErrNotADoctor)
	})

	t.Run("invalid severity rejected", func(t *testing.T) {
		_, err := s.AddPatient(ctx, entity.Patient{Name: "X", Severity: "Extreme"})
		assert.ErrorIs(t, err, ErrInvalidSeverity)
	})
}

func TestAssignPatientToDoctor(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	doctor, err := s.AddUser(ctx, entity.User{Username: "jones", Name: "Dr. Jones", Role: entity.RoleDoctor}, "x")
	require.NoError(t, err)

	patient, err := s.AssignPatientToDoctor(ctx, "p1", doctor.ID)
	require.NoError(t, err)
	assert.Equal(t, doctor.ID, patient.AttendingDoctorID)

	_, err = s.AssignPatientToDoctor(ctx, "p1", "u2")
	assert.ErrorIs(t, err, ErrNotADoctor)

	_, err = s.AssignPatientToDoctor(ctx, "missing", doctor.ID)
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestUpdatePatientSeverity(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	patient, err := s.UpdatePatientSeverity(ctx, "p2", entity.SeverityCritical)
	require.NoError(t, err)
	assert.Equal(t, entity.SeverityCritical, patient.Severity)

	_, err = s.UpdatePatientSeverity(ctx, "p2", "Extreme")
	assert.ErrorIs(t, err, ErrInvalidSeverity)
}

func TestAddActionTriageEnrichment(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	t.Run("priority inferred and allergy annotated", func(t *testing.T) {
		// p1 carries a Penicillin allergy.
		action, err := s.AddAction(ctx, entity.ClinicalAction{
			PatientID:        "p1",
			TargetDepartment: entity.DepartmentPharmacy,
			Type:             entity.ActionPrescription,
			Description:      "URGENT amoxicillin 500mg",
		})
		require.NoError(t, err)
		assert.Equal(t, entity.PriorityP2, action.Priority)
		assert.Equal(t, triage.PenicillinWarning, action.Notes)
		assert.Equal(t, entity.StatusPending, action.Status)
		assert.Nil(t, action.CompletedAt)
	})

	t.Run("prepended most recent first", func(t *testing.T) {
		action, err := s.AddAction(ctx, entity.ClinicalAction{
			PatientID:        "p2",
			TargetDepartment: entity.DepartmentLab,
			Description:      "STAT troponin",
		})
		require.NoError(t, err)
		actions := s.Actions()
		assert.Equal(t, action.ID, actions[0].ID)
		assert.Equal(t, entity.PriorityP1, actions[0].Priority)
	})

	t.Run("existing notes preserved on annotation", func(t *testing.T) {
		action, err := s.AddAction(ctx, entity.ClinicalAction{
			PatientID:        "p1",
			TargetDepartment: entity.DepartmentPharmacy,
			Description:      "penicillin drip",
			Notes:            "with meals",
		})
		require.NoError(t, err)
		assert.Equal(t, "with meals | "+triage.PenicillinWarning, action.Notes)
	})

	t.Run("unknown patient rejected", func(t *testing.T) {
		_, err := s.AddAction(ctx, entity.ClinicalAction{
			PatientID:        "ghost",
			TargetDepartment: entity.DepartmentLab,
			Description:      "x",
		})
		assert.ErrorIs(t, err, ErrPatientNotFound)
	})

	t.Run("invalid department rejected", func(t *testing.T) {
		_, err := s.AddAction(ctx, entity.ClinicalAction{
			PatientID:        "p1",
			TargetDepartment: "Radiology",
			Description:      "x",
		})
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("unique IDs", func(t *testing.T) {
		seen := map[string]bool{}
		for _, a := range s.Actions() {
			assert.False(t, seen[a.ID], "duplicate id %s", a.ID)
			seen[a.ID] = true
		}
	})
}

func TestUpdateActionStatus(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	action, err := s.AddAction(ctx, entity.ClinicalAction{
		PatientID:        "p2",
		TargetDepartment: entity.DepartmentLab,
		Description:      "CBC panel",
	})
	require.NoError(t, err)

	t.Run("full lifecycle", func(t *testing.T) {
		updated, err := s.UpdateActionStatus(ctx, action.ID, entity.StatusInProgress)
		require.NoError(t, err)
		assert.Equal(t, entity.StatusInProgress, updated.Status)

		updated, err = s.UpdateActionStatus(ctx, action.ID, entity.StatusCompleted)
		require.NoError(t, err)
		assert.Equal(t, entity.StatusCompleted, updated.Status)
		require.NotNil(t, updated.CompletedAt)
	})

	t.Run("terminal state is immutable", func(t *testing.T) {
		_, err := s.UpdateActionStatus(ctx, action.ID, entity.StatusPending)
		assert.ErrorIs(t, err, entity.ErrIllegalTransition)
	})

	t.Run("pending cannot skip to completed", func(t *testing.T) {
		other, err := s.AddAction(ctx, entity.ClinicalAction{
			PatientID:        "p2",
			TargetDepartment: entity.DepartmentLab,
			Description:      "BMP",
		})
		require.NoError(t, err)

		_, err = s.UpdateActionStatus(ctx, other.ID, entity.StatusCompleted)
		assert.ErrorIs(t, err, entity.ErrIllegalTransition)
	})

	t.Run("unknown action", func(t *testing.T) {
		_, err := s.UpdateActionStatus(ctx, "ghost", entity.StatusInProgress)
		assert.ErrorIs(t, err, ErrActionNotFound)
	})

	t.Run("invalid status value", func(t *testing.T) {
		_, err := s.UpdateActionStatus(ctx, action.ID, "Done")
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})
}

func TestNotes(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	author := entity.User{ID: "u2", Name: "Sarah Jones", Role: entity.RoleNurse}

	times := []time.Time{
		time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	i := 0
	s.now = func() time.Time { t := times[i]; i++; return t }

	first, err := s.AddNote(ctx, "p1", "first note", author)
	require.NoError(t, err)
	second, err := s.AddNote(ctx, "p1", "second note", author)
	require.NoError(t, err)

	assert.Equal(t, "Sarah Jones", first.AuthorName)
	assert.Equal(t, "Nurse", first.AuthorRole)

	notes := s.NotesForPatient("p1")
	require.Len(t, notes, 2)
	assert.Equal(t, second.ID, notes[0].ID)
	assert.Equal(t, first.ID, notes[1].ID)

	assert.Empty(t, s.NotesForPatient("p2"))

	_, err = s.AddNote(ctx, "ghost", "x", author)
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestAppointments(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	appt, err := s.AddAppointment(ctx, entity.Appointment{
		PatientName:   "Walk-in Visitor",
		ContactNumber: "555-0101",
		DoctorID:      "u1",
		Department:    "General",
		Time:          time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.AppointmentScheduled, appt.Status)

	t.Run("check-in then complete", func(t *testing.T) {
		updated, err := s.UpdateAppointmentStatus(ctx, appt.ID, entity.AppointmentCheckedIn)
		require.NoError(t, err)
		assert.Equal(t, entity.AppointmentCheckedIn, updated.Status)

		updated, err = s.UpdateAppointmentStatus(ctx, appt.ID, entity.AppointmentCompleted)
		require.NoError(t, err)
		assert.Equal(t, entity.AppointmentCompleted, updated.Status)
	})

	t.Run("terminal state is immutable", func(t *testing.T) {
		_, err := s.UpdateAppointmentStatus(ctx, appt.ID, entity.AppointmentCancelled)
		assert.ErrorIs(t, err, entity.ErrIllegalTransition)
	})

	t.Run("non-doctor reference rejected", func(t *testing.T) {
		_, err := s.AddAppointment(ctx, entity.Appointment{PatientName: "X", DoctorID: "u2"})
		assert.ErrorIs(t, err, ErrNotADoctor)
	})
}

func TestSeenPatients(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	// All three seed patients are assigned to u1 and unacknowledged.
	unseen, err := s.UnseenPatients(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, unseen, 3)

	seen, err := s.MarkPatientSeen(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, seen)

	// Deduplicated.
	seen, err = s.MarkPatientSeen(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, seen)

	unseen, err = s.UnseenPatients(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, unseen, 2)

	// Acknowledgements are per doctor.
	otherSeen, err := s.SeenPatients(ctx, "u9")
	require.NoError(t, err)
	assert.Empty(t, otherSeen)
}

func TestPatientSyncMirroring(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryStore()
	syncer := &fakeSyncer{}
	s := New(mem, syncer, nil, testLogger(), "test")
	require.NoError(t, s.Load(ctx))

	_, err := s.AddPatient(ctx, entity.Patient{Name: "Mirrored"})
	require.NoError(t, err)
	s.Close()

	syncer.mu.Lock()
	defer syncer.mu.Unlock()
	require.Len(t, syncer.appended, 1)
	assert.Equal(t, "Mirrored", syncer.appended[0].Name)
	// Seeding mirrors the initial census once.
	assert.NotEmpty(t, syncer.replaced)
}

func TestChangeSubscriptionRefreshesActions(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mem := kv.NewMemoryStore()
	s := New(mem, nil, nil, testLogger(), "test")
	require.NoError(t, s.Load(ctx))
	require.NoError(t, s.Start(ctx))
	defer s.Close()

	// A second store writing through the same adapter stands in for another
	// process.
	writer := New(mem, nil, nil, testLogger(), "test")
	require.NoError(t, writer.Load(ctx))
	_, err := writer.AddAction(ctx, entity.ClinicalAction{
		PatientID:        "p1",
		TargetDepartment: entity.DepartmentLab,
		Description:      "cross-process write",
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(s.Actions()) == 9
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, "cross-process write", s.Actions()[0].Description)
}

func TestEndToEndPharmacyFlow(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	current := base
	s.now = func() time.Time { return current }

	action, err := s.AddAction(ctx, entity.ClinicalAction{
		PatientID:        "p1",
		InitiatorID:      "u1",
		TargetDepartment: entity.DepartmentPharmacy,
		Type:             entity.ActionPrescription,
		Description:      "URGENT Amoxicillin 500mg",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.PriorityP2, action.Priority)
	assert.Contains(t, action.Notes, "Penicillin allergy")

	_, err = s.UpdateActionStatus(ctx, action.ID, entity.StatusInProgress)
	require.NoError(t, err)

	current = base.Add(40 * time.Minute)
	_, err = s.UpdateActionStatus(ctx, action.ID, entity.StatusCompleted)
	require.NoError(t, err)

	// Seed a4 completed at 110 minutes, the new action at 40: mean 75.
	report := analytics.MTTC(s.Actions(), entity.DepartmentPharmacy)
	assert.Equal(t, 2, report.Count)
	assert.Equal(t, 75, report.MTTC)
	assert.Equal(t, analytics.ClassAlert, report.Classification)
}
