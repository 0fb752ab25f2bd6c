package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"nexus-hospital/internal/delivery/dto"
	"nexus-hospital/internal/delivery/http/middleware"
	"nexus-hospital/internal/domain/entity"
	"nexus-hospital/internal/store"
	"nexus-hospital/pkg/response"
	"nexus-hospital/pkg/validator"

	"github.com/gorilla/mux"
)

type PatientHandler struct {
	store     *store.DomainStore
	validator *validator.CustomValidator
}

func NewPatientHandler(domainStore *store.DomainStore, validator *validator.CustomValidator) *PatientHandler {
	return &PatientHandler{
		store:     domainStore,
		validator: validator,
	}
}

// ListPatients returns the full collection as a bare JSON array, keeping the
// collection endpoint wire-compatible with the record store consumers.
func (h *PatientHandler) ListPatients(w http.ResponseWriter, r *http.Request) {
	patients := h.store.Patients()
	if patients == nil {
		patients = []entity.Patient{}
	}
	response.JSON(w, http.StatusOK, patients)
}

// AdmitPatient appends one patient. The server assigns the ID and admission
// date and returns the stored record with 201.
func (h *PatientHandler) AdmitPatient(w http.ResponseWriter, r *http.Request) {
	var req dto.AdmitPatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	patient, err := h.store.AddPatient(r.Context(), entity.Patient{
		Name:                  req.Name,
		Age:                   req.Age,
		Gender:                req.Gender,
		Condition:             req.Condition,
		RoomNumber:            req.RoomNumber,
		AttendingDoctorID:     req.AttendingDoctorID,
		Allergies:             req.Allergies,
		Severity:              entity.Severity(req.Severity),
		Weight:                req.Weight,
		Height:                req.Height,
		BloodGroup:            req.BloodGroup,
		BloodPressure:         req.BloodPressure,
		Temperature:           req.Temperature,
		IsPregnant:            req.IsPregnant,
		IsBreastfeeding:       req.IsBreastfeeding,
		PhoneNumber:           req.PhoneNumber,
		InsuranceProvider:     req.InsuranceProvider,
		InsurancePolicyNumber: req.InsurancePolicyNumber,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrUserNotFound):
			response.BadRequest(w, "Attending doctor does not exist")
		case errors.Is(err, store.ErrNotADoctor):
			response.BadRequest(w, "Attending doctor must have the Doctor role")
		default:
			response.InternalServerError(w, "Failed to admit patient")
		}
		return
	}

	response.JSON(w, http.StatusCreated, patient)
}

// ReplacePatients overwrites the entire collection with the request body and
// echoes it back. Concurrent writers race; last writer wins.
func (h *PatientHandler) ReplacePatients(w http.ResponseWriter, r *http.Request) {
	var patients []entity.Patient
	if err := json.NewDecoder(r.Body).Decode(&patients); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.store.ReplacePatients(r.Context(), patients); err != nil {
		response.InternalServerError(w, "Failed to replace patients")
		return
	}

	response.JSON(w, http.StatusOK, patients)
}

// GetPatient returns one patient by ID.
func (h *PatientHandler) GetPatient(w http.ResponseWriter, r *http.Request) {
	patient, err := h.store.PatientByID(mux.Vars(r)["id"])
	if err != nil {
		response.NotFound(w, "Patient not found")
		return
	}
	response.Success(w, http.StatusOK, "Patient retrieved successfully", patient)
}

// AssignDoctor reassigns the attending doctor.
func (h *PatientHandler) AssignDoctor(w http.ResponseWriter, r *http.Request) {
	var req dto.AssignDoctorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	patient, err := h.store.AssignPatientToDoctor(r.Context(), mux.Vars(r)["id"], req.DoctorID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrPatientNotFound):
			response.NotFound(w, "Patient not found")
		case errors.Is(err, store.ErrUserNotFound):
			response.BadRequest(w, "Doctor does not exist")
		case errors.Is(err, store.ErrNotADoctor):
			response.BadRequest(w, "Target user must have the Doctor role")
		default:
			response.InternalServerError(w, "Failed to assign doctor")
		}
		return
	}

	response.Success(w, http.StatusOK, "Doctor assigned successfully", patient)
}

// UpdateSeverity overwrites the acuity classification.
func (h *PatientHandler) UpdateSeverity(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateSeverityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	patient, err := h.store.UpdatePatientSeverity(r.Context(), mux.Vars(r)["id"], entity.Severity(req.Severity))
	if err != nil {
		switch {
		case errors.Is(err, store.ErrPatientNotFound):
			response.NotFound(w, "Patient not found")
		default:
			response.InternalServerError(w, "Failed to update severity")
		}
		return
	}

	response.Success(w, http.StatusOK, "Severity updated successfully", patient)
}

// AddNote appends to the patient's note log, denormalizing the acting user.
func (h *PatientHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	var req dto.AddNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	author := entity.User{ID: "unknown", Name: "Unknown"}
	if userID, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		if u, err := h.store.UserByID(userID); err == nil {
			author = u
		}
	}

	note, err := h.store.AddNote(r.Context(), mux.Vars(r)["id"], req.Content, author)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrPatientNotFound):
			response.NotFound(w, "Patient not found")
		default:
			response.InternalServerError(w, "Failed to add note")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Note added successfully", note)
}

// ListNotes returns the patient's notes newest first.
func (h *PatientHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	patientID := mux.Vars(r)["id"]
	if _, err := h.store.PatientByID(patientID); err != nil {
		response.NotFound(w, "Patient not found")
		return
	}
	response.Success(w, http.StatusOK, "Notes retrieved successfully", h.store.NotesForPatient(patientID))
}
