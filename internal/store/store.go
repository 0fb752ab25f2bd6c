// Package store implements the domain store: the single source of truth for
// users, patients, clinical actions, notes and appointments. Every mutation
// updates the in-memory collection and synchronously persists the affected
// collection to the key-value adapter; patient mutations additionally sync to
// the file-backed record store on a best-effort, fire-and-forget basis.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"nexus-hospital/internal/adapter/kv"
	"nexus-hospital/internal/analytics"
	"nexus-hospital/internal/domain/entity"
	"nexus-hospital/internal/metrics"
	"nexus-hospital/internal/seed"
	"nexus-hospital/internal/triage"
)

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserNotFound        = errors.New("user not found")
	ErrPatientNotFound     = errors.New("patient not found")
	ErrActionNotFound      = errors.New("action not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrNotADoctor          = errors.New("referenced user is not a doctor")
	ErrUsernameTaken       = errors.New("username already taken")
	ErrInvalidStatus       = errors.New("invalid status value")
	ErrInvalidRole         = errors.New("invalid role")
	ErrInvalidSeverity     = errors.New("invalid severity")
)

// syncTimeout bounds each fire-and-forget patient sync.
const syncTimeout = 5 * time.Second

// PatientSyncer is the best-effort mirror of the patient collection (the
// file-backed record store in production). Failures are logged, never
// surfaced, and never roll back the local write.
type PatientSyncer interface {
	List(ctx context.Context) ([]entity.Patient, error)
	Append(ctx context.Context, patient entity.Patient) (entity.Patient, error)
	ReplaceAll(ctx context.Context, patients []entity.Patient) error
}

// DomainStore owns all collections. Reads are plain queries over in-memory
// slices; there is no caching layer and no indices. A mutex guards the
// collections because the HTTP layer serves requests concurrently.
type DomainStore struct {
	log     *logrus.Logger
	kv      kv.Store
	syncer  PatientSyncer
	metrics *metrics.Metrics
	prefix  string

	mu           sync.RWMutex
	users        []entity.User
	patients     []entity.Patient
	actions      []entity.ClinicalAction
	notes        []entity.PatientNote
	appointments []entity.Appointment

	now   func() time.Time
	newID func() string

	cancelWatch context.CancelFunc
	wg          sync.WaitGroup
	syncWG      sync.WaitGroup
}

// New creates a DomainStore over the given persistence adapter. syncer and m
// may be nil (no patient mirror, no metrics).
func New(kvStore kv.Store, syncer PatientSyncer, m *metrics.Metrics, log *logrus.Logger, keyPrefix string) *DomainStore {
	return &DomainStore{
		log:     log,
		kv:      kvStore,
		syncer:  syncer,
		metrics: m,
		prefix:  keyPrefix,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

func (s *DomainStore) key(name string) string {
	return s.prefix + ":" + name
}

func (s *DomainStore) seenKey(doctorID string) string {
	return s.key("seen:" + doctorID)
}

// Load populates the collections from the persistence adapter, falling back
// to seed data on first run. The patient collection prefers the file-backed
// record store, the authoritative mirror shared with other writers.
func (s *DomainStore) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	if err := s.loadCollection(ctx, "users", &s.users); err != nil {
		return err
	}
	if len(s.users) == 0 {
		s.users = seed.Users()
		if err := s.persistLocked(ctx, "users", s.users); err != nil {
			return err
		}
	}

	if err := s.loadPatients(ctx, now); err != nil {
		return err
	}

	if err := s.loadCollection(ctx, "actions", &s.actions); err != nil {
		return err
	}
	if len(s.actions) == 0 {
		s.actions = seed.Actions(now)
		if err := s.persistLocked(ctx, "actions", s.actions); err != nil {
			return err
		}
	}

	if err := s.loadCollection(ctx, "notes", &s.notes); err != nil {
		return err
	}
	if err := s.loadCollection(ctx, "appointments", &s.appointments); err != nil {
		return err
	}

	s.log.Infof("Domain store loaded: %d users, %d patients, %d actions, %d notes, %d appointments",
		len(s.users), len(s.patients), len(s.actions), len(s.notes), len(s.appointments))

	return nil
}

func (s *DomainStore) loadPatients(ctx context.Context, now time.Time) error {
	if s.syncer != nil {
		patients, err := s.syncer.List(ctx)
		if err != nil {
			s.log.Warnf("Failed to list patients from record store: %+v", err)
		} else if len(patients) > 0 {
			s.patients = patients
			return s.persistLocked(ctx, "patients", s.patients)
		}
	}

	if err := s.loadCollection(ctx, "patients", &s.patients); err != nil {
		return err
	}
	if len(s.patients) == 0 {
		s.patients = seed.Patients(now)
		if err := s.persistLocked(ctx, "patients", s.patients); err != nil {
			return err
		}
		s.syncReplaceAll(s.patients)
	}
	return nil
}

func (s *DomainStore) loadCollection(ctx context.Context, name string, out any) error {
	data, err := s.kv.Get(ctx, s.key(name))
	if errors.Is(err, kv.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", name, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// persistLocked serializes the whole collection to the adapter under its
// fixed key. Callers hold the mutex; the write is O(n) in collection size.
func (s *DomainStore) persistLocked(ctx context.Context, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := s.kv.Set(ctx, s.key(name), data, 0); err != nil {
		return fmt.Errorf("persist %s: %w", name, err)
	}
	return nil
}

// Start launches the change subscription that keeps the in-memory action
// collection in step with writes from other processes.
func (s *DomainStore) Start(ctx context.Context) error {
	watchCtx, cancel := context.WithCancel(ctx)
	s.cancelWatch = cancel

	changes, unsubscribe, err := s.kv.Subscribe(watchCtx, s.key("actions"))
	if err != nil {
		cancel()
		return fmt.Errorf("subscribe actions: %w", err)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer unsubscribe()
		for {
			select {
			case <-watchCtx.Done():
				return
			case data, ok := <-changes:
				if !ok {
					return
				}
				var actions []entity.ClinicalAction
				if err := json.Unmarshal(data, &actions); err != nil {
					s.log.Warnf("Ignoring malformed action change notification: %+v", err)
					continue
				}
				s.mu.Lock()
				s.actions = actions
				s.mu.Unlock()
			}
		}
	}()

	return nil
}

// Close stops the change subscription and waits for in-flight patient syncs.
func (s *DomainStore) Close() {
	if s.cancelWatch != nil {
		s.cancelWatch()
	}
	s.wg.Wait()
	s.syncWG.Wait()
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

func (s *DomainStore) Users() []entity.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entity.User(nil), s.users...)
}

func (s *DomainStore) Patients() []entity.Patient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entity.Patient(nil), s.patients...)
}

func (s *DomainStore) Actions() []entity.ClinicalAction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entity.ClinicalAction(nil), s.actions...)
}

func (s *DomainStore) Appointments() []entity.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entity.Appointment(nil), s.appointments...)
}

func (s *DomainStore) UserByID(id string) (entity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return entity.User{}, ErrUserNotFound
}

func (s *DomainStore) PatientByID(id string) (entity.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.patients {
		if p.ID == id {
			return p, nil
		}
	}
	return entity.Patient{}, ErrPatientNotFound
}

// NotesForPatient returns the patient's notes newest first.
func (s *DomainStore) NotesForPatient(patientID string) []entity.PatientNote {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var notes []entity.PatientNote
	for _, n := range s.notes {
		if n.PatientID == patientID {
			notes = append(notes, n)
		}
	}
	// The collection is prepend-ordered already, but notes loaded from an
	// external writer may not be; sort by timestamp descending.
	for i := 1; i < len(notes); i++ {
		for j := i; j > 0 && notes[j].Timestamp.After(notes[j-1].Timestamp); j-- {
			notes[j], notes[j-1] = notes[j-1], notes[j]
		}
	}
	return notes
}

// ---------------------------------------------------------------------------
// Patient operations
// ---------------------------------------------------------------------------

// AddPatient admits a patient: assigns an ID and admission timestamp, appends
// to the collection, persists it, and mirrors the new record to the file
// store without waiting for it.
func (s *DomainStore) AddPatient(ctx context.Context, patient entity.Patient) (entity.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if patient.Severity != "" && !patient.Severity.Valid() {
		return entity.Patient{}, ErrInvalidSeverity
	}
	if patient.AttendingDoctorID != "" {
		if err := s.requireDoctorLocked(patient.AttendingDoctorID); err != nil {
			return entity.Patient{}, err
		}
	}

	patient.ID = s.newID()
	patient.AdmissionDate = s.now()

	s.patients = append(s.patients, patient)
	if err := s.persistLocked(ctx, "patients", s.patients); err != nil {
		return entity.Patient{}, err
	}

	s.syncAppend(patient)

	return patient, nil
}

// AssignPatientToDoctor reassigns the attending doctor. The target must be an
// existing user with role Doctor.
func (s *DomainStore) AssignPatientToDoctor(ctx context.Context, patientID, doctorID string) (entity.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireDoctorLocked(doctorID); err != nil {
		return entity.Patient{}, err
	}

	idx := s.patientIndexLocked(patientID)
	if idx < 0 {
		return entity.Patient{}, ErrPatientNotFound
	}

	s.patients[idx].AttendingDoctorID = doctorID
	if err := s.persistLocked(ctx, "patients", s.patients); err != nil {
		return entity.Patient{}, err
	}

	s.syncReplaceAll(append([]entity.Patient(nil), s.patients...))

	return s.patients[idx], nil
}

// UpdatePatientSeverity overwrites the severity classification.
func (s *DomainStore) UpdatePatientSeverity(ctx context.Context, patientID string, severity entity.Severity) (entity.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !severity.Valid() {
		return entity.Patient{}, ErrInvalidSeverity
	}

	idx := s.patientIndexLocked(patientID)
	if idx < 0 {
		return entity.Patient{}, ErrPatientNotFound
	}

	s.patients[idx].Severity = severity
	if err := s.persistLocked(ctx, "patients", s.patients); err != nil {
		return entity.Patient{}, err
	}

	s.syncReplaceAll(append([]entity.Patient(nil), s.patients...))

	return s.patients[idx], nil
}

// ReplacePatients overwrites the whole patient collection, persists it and
// mirrors it to the record store. Backs the PUT collection endpoint; last
// writer wins.
func (s *DomainStore) ReplacePatients(ctx context.Context, patients []entity.Patient) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.patients = patients
	if err := s.persistLocked(ctx, "patients", s.patients); err != nil {
		return err
	}

	s.syncReplaceAll(append([]entity.Patient(nil), s.patients...))
	return nil
}

// RefreshPatients replaces the in-memory collection after an external rewrite
// of the record store (the file watcher calls this). The adapter copy is
// updated; the file itself is not echoed back.
func (s *DomainStore) RefreshPatients(ctx context.Context, patients []entity.Patient) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.patients = patients
	if err := s.persistLocked(ctx, "patients", s.patients); err != nil {
		s.log.Warnf("Failed to persist refreshed patients: %+v", err)
	}
}

func (s *DomainStore) patientIndexLocked(patientID string) int {
	for i := range s.patients {
		if s.patients[i].ID == patientID {
			return i
		}
	}
	return -1
}

func (s *DomainStore) requireDoctorLocked(userID string) error {
	for i := range s.users {
		if s.users[i].ID == userID {
			if !s.users[i].IsDoctor() {
				return ErrNotADoctor
			}
			return nil
		}
	}
	return ErrUserNotFound
}

// syncAppend mirrors one new patient to the record store, fire and forget.
func (s *DomainStore) syncAppend(patient entity.Patient) {
	if s.syncer == nil {
		return
	}
	s.syncWG.Add(1)
	go func() {
		defer s.syncWG.Done()
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()
		if _, err := s.syncer.Append(ctx, patient); err != nil {
			s.log.Warnf("Failed to sync patient %s to record store: %+v", patient.ID, err)
		}
	}()
}

// syncReplaceAll mirrors the full collection to the record store, fire and
// forget. The caller passes a snapshot so the goroutine never touches the
// live slice.
func (s *DomainStore) syncReplaceAll(patients []entity.Patient) {
	if s.syncer == nil {
		return
	}
	s.syncWG.Add(1)
	go func() {
		defer s.syncWG.Done()
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()
		if err := s.syncer.ReplaceAll(ctx, patients); err != nil {
			s.log.Warnf("Failed to sync patients to record store: %+v", err)
		}
	}()
}

// ---------------------------------------------------------------------------
// Clinical action operations
// ---------------------------------------------------------------------------

// AddAction creates a clinical action after two-stage triage enrichment:
// priority inference over the description and advisory allergy annotation
// from the target patient's allergy set. The new action starts Pending and is
// prepended so the collection stays most-recent-first.
func (s *DomainStore) AddAction(ctx context.Context, action entity.ClinicalAction) (entity.ClinicalAction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !action.TargetDepartment.Valid() {
		return entity.ClinicalAction{}, fmt.Errorf("%w: department %q", ErrInvalidStatus, action.TargetDepartment)
	}
	if action.Type != "" && !action.Type.Valid() {
		return entity.ClinicalAction{}, fmt.Errorf("%w: action type %q", ErrInvalidStatus, action.Type)
	}

	idx := s.patientIndexLocked(action.PatientID)
	if idx < 0 {
		return entity.ClinicalAction{}, ErrPatientNotFound
	}
	patient := s.patients[idx]

	action.Priority = triage.InferPriority(action.Description, action.Priority)
	warning := triage.SafetyNote(action.Description, patient.Allergies)
	action.Notes = triage.Annotate(action.Notes, warning)

	action.ID = s.newID()
	action.Timestamp = s.now()
	action.Status = entity.StatusPending
	action.CompletedAt = nil

	s.actions = append([]entity.ClinicalAction{action}, s.actions...)
	if err := s.persistLocked(ctx, "actions", s.actions); err != nil {
		return entity.ClinicalAction{}, err
	}

	if s.metrics != nil {
		s.metrics.ActionsCreated.
			WithLabelValues(string(action.TargetDepartment), string(action.Priority)).
			Inc()
	}

	return action, nil
}

// UpdateActionStatus moves an action along the lifecycle state machine.
// Illegal edges are rejected with entity.ErrIllegalTransition; Completed and
// Rejected actions are immutable.
func (s *DomainStore) UpdateActionStatus(ctx context.Context, actionID string, status entity.ActionStatus) (entity.ClinicalAction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !status.Valid() {
		return entity.ClinicalAction{}, ErrInvalidStatus
	}

	for i := range s.actions {
		if s.actions[i].ID != actionID {
			continue
		}
		if err := s.actions[i].TransitionTo(status, s.now()); err != nil {
			return entity.ClinicalAction{}, fmt.Errorf("action %s: %s -> %s: %w",
				actionID, s.actions[i].Status, status, err)
		}
		if err := s.persistLocked(ctx, "actions", s.actions); err != nil {
			return entity.ClinicalAction{}, err
		}
		if status == entity.StatusCompleted && s.metrics != nil {
			s.metrics.ActionsCompleted.
				WithLabelValues(string(s.actions[i].TargetDepartment)).
				Inc()
		}
		return s.actions[i], nil
	}

	return entity.ClinicalAction{}, ErrActionNotFound
}

// ---------------------------------------------------------------------------
// Note operations
// ---------------------------------------------------------------------------

// AddNote appends to the patient's note log. Author details are denormalized
// from the acting user at write time.
func (s *DomainStore) AddNote(ctx context.Context, patientID, content string, author entity.User) (entity.PatientNote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.patientIndexLocked(patientID) < 0 {
		return entity.PatientNote{}, ErrPatientNotFound
	}

	note := entity.PatientNote{
		ID:         s.newID(),
		PatientID:  patientID,
		AuthorID:   author.ID,
		AuthorName: author.Name,
		AuthorRole: string(author.Role),
		Content:    content,
		Timestamp:  s.now(),
	}

	s.notes = append([]entity.PatientNote{note}, s.notes...)
	if err := s.persistLocked(ctx, "notes", s.notes); err != nil {
		return entity.PatientNote{}, err
	}

	return note, nil
}

// ---------------------------------------------------------------------------
// Appointment operations
// ---------------------------------------------------------------------------

// AddAppointment schedules a visit. The doctor reference is validated; the
// patient name stays free text, unlinked to the patient collection.
func (s *DomainStore) AddAppointment(ctx context.Context, appt entity.Appointment) (entity.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if appt.DoctorID != "" {
		if err := s.requireDoctorLocked(appt.DoctorID); err != nil {
			return entity.Appointment{}, err
		}
	}

	appt.ID = s.newID()
	appt.Status = entity.AppointmentScheduled
	if appt.Time.IsZero() {
		appt.Time = s.now()
	}

	s.appointments = append([]entity.Appointment{appt}, s.appointments...)
	if err := s.persistLocked(ctx, "appointments", s.appointments); err != nil {
		return entity.Appointment{}, err
	}

	return appt, nil
}

// UpdateAppointmentStatus moves an appointment along its state machine,
// rejecting illegal edges.
func (s *DomainStore) UpdateAppointmentStatus(ctx context.Context, apptID string, status entity.AppointmentStatus) (entity.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !status.Valid() {
		return entity.Appointment{}, ErrInvalidStatus
	}

	for i := range s.appointments {
		if s.appointments[i].ID != apptID {
			continue
		}
		if err := s.appointments[i].TransitionTo(status); err != nil {
			return entity.Appointment{}, fmt.Errorf("appointment %s: %s -> %s: %w",
				apptID, s.appointments[i].Status, status, err)
		}
		if err := s.persistLocked(ctx, "appointments", s.appointments); err != nil {
			return entity.Appointment{}, err
		}
		return s.appointments[i], nil
	}

	return entity.Appointment{}, ErrAppointmentNotFound
}

// ---------------------------------------------------------------------------
// User operations
// ---------------------------------------------------------------------------

// Login finds the user by exact username and role match and verifies the
// password against the stored hash. Unknown user and wrong password both
// yield ErrInvalidCredentials so callers cannot enumerate accounts.
func (s *DomainStore) Login(_ context.Context, username string, role entity.UserRole, password string) (entity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username != username || u.Role != role {
			continue
		}
		if u.PasswordHash != "" {
			if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
				return entity.User{}, ErrInvalidCredentials
			}
		}
		return u, nil
	}

	return entity.User{}, ErrInvalidCredentials
}

// AddUser creates a staff account. Usernames are unique across roles.
func (s *DomainStore) AddUser(ctx context.Context, user entity.User, password string) (entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !user.Role.Valid() {
		return entity.User{}, ErrInvalidRole
	}
	for _, u := range s.users {
		if u.Username == user.Username {
			return entity.User{}, ErrUsernameTaken
		}
	}

	if password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			s.log.Warnf("Failed to hash password: %+v", err)
			return entity.User{}, err
		}
		user.PasswordHash = string(hashed)
	}

	user.ID = s.newID()
	s.users = append(s.users, user)
	if err := s.persistLocked(ctx, "users", s.users); err != nil {
		return entity.User{}, err
	}

	return user, nil
}

// ChangePassword replaces a user's credential with a fresh hash.
func (s *DomainStore) ChangePassword(ctx context.Context, userID, newPassword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		if s.users[i].ID != userID {
			continue
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
		if err != nil {
			s.log.Warnf("Failed to hash password: %+v", err)
			return err
		}
		s.users[i].PasswordHash = string(hashed)
		return s.persistLocked(ctx, "users", s.users)
	}

	return ErrUserNotFound
}

// ---------------------------------------------------------------------------
// Seen-patient notifications
// ---------------------------------------------------------------------------

// SeenPatients returns the doctor's acknowledged patient IDs.
func (s *DomainStore) SeenPatients(ctx context.Context, doctorID string) ([]string, error) {
	data, err := s.kv.Get(ctx, s.seenKey(doctorID))
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var seen []string
	if err := json.Unmarshal(data, &seen); err != nil {
		return nil, fmt.Errorf("decode seen list: %w", err)
	}
	return seen, nil
}

// MarkPatientSeen adds the patient ID to the doctor's acknowledged list,
// deduplicated, and returns the updated list.
func (s *DomainStore) MarkPatientSeen(ctx context.Context, doctorID, patientID string) ([]string, error) {
	seen, err := s.SeenPatients(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	for _, id := range seen {
		if id == patientID {
			return seen, nil
		}
	}
	seen = append(seen, patientID)

	data, err := json.Marshal(seen)
	if err != nil {
		return nil, fmt.Errorf("encode seen list: %w", err)
	}
	if err := s.kv.Set(ctx, s.seenKey(doctorID), data, 0); err != nil {
		return nil, err
	}

	return seen, nil
}

// UnseenPatients returns the doctor's assigned patients that have not been
// acknowledged yet.
func (s *DomainStore) UnseenPatients(ctx context.Context, doctorID string) ([]entity.Patient, error) {
	seen, err := s.SeenPatients(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	return analytics.Unseen(s.Patients(), doctorID, seen), nil
}
