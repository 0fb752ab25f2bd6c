// Package filestore implements the flat-file patient record store behind the
// patient collection endpoint: a single JSON array on disk with list, append
// and replace operations, plus a watcher that surfaces external rewrites.
package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"nexus-hospital/internal/domain/entity"
)

// PatientFile stores the patient collection as one JSON file. Writers in the
// same process are serialized by a mutex; concurrent writers in other
// processes can still clobber each other, an accepted weakness of the flat
// file (last writer wins).
type PatientFile struct {
	fs   afero.Fs
	path string
	log  *logrus.Logger
	mu   sync.Mutex
	now  func() time.Time
}

func New(fs afero.Fs, path string, log *logrus.Logger) *PatientFile {
	return &PatientFile{
		fs:   fs,
		path: path,
		log:  log,
		now:  time.Now,
	}
}

// List returns the stored collection. A missing or unreadable file yields an
// empty collection, never an error, matching the endpoint contract.
func (f *PatientFile) List(_ context.Context) ([]entity.Patient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.read(), nil
}

// Append adds one patient to the collection, assigning an ID and admission
// date when absent, and returns the stored record.
func (f *PatientFile) Append(_ context.Context, patient entity.Patient) (entity.Patient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if patient.ID == "" {
		patient.ID = uuid.NewString()
	}
	if patient.AdmissionDate.IsZero() {
		patient.AdmissionDate = f.now()
	}

	patients := append(f.read(), patient)
	if err := f.write(patients); err != nil {
		return entity.Patient{}, err
	}

	return patient, nil
}

// ReplaceAll overwrites the whole collection.
func (f *PatientFile) ReplaceAll(_ context.Context, patients []entity.Patient) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.write(patients)
}

// read returns the current collection, empty on any failure.
func (f *PatientFile) read() []entity.Patient {
	data, err := afero.ReadFile(f.fs, f.path)
	if err != nil {
		return nil
	}

	var patients []entity.Patient
	if err := json.Unmarshal(data, &patients); err != nil {
		f.log.Warnf("Patient file %s is corrupt, treating as empty: %+v", f.path, err)
		return nil
	}
	return patients
}

func (f *PatientFile) write(patients []entity.Patient) error {
	if patients == nil {
		patients = []entity.Patient{}
	}

	data, err := json.MarshalIndent(patients, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal patients: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := f.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir %s: %w", dir, err)
	}

	if err := afero.WriteFile(f.fs, f.path, data, 0o644); err != nil {
		return fmt.Errorf("write patient file %s: %w", f.path, err)
	}

	return nil
}

// Watch invokes fn with the reloaded collection whenever the file is
// rewritten by another process. It blocks until ctx is done. Watch requires a
// real filesystem; callers using an in-memory fs should not start it.
func (f *PatientFile) Watch(ctx context.Context, fn func([]entity.Patient)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(f.path)
	if err := f.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir %s: %w", dir, err)
	}
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != f.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			f.mu.Lock()
			patients := f.read()
			f.mu.Unlock()
			fn(patients)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			f.log.Warnf("Patient file watcher error: %+v", err)
		}
	}
}
