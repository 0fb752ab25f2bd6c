package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"nexus-hospital/internal/delivery/dto"
	"nexus-hospital/internal/domain/entity"
	"nexus-hospital/internal/store"
	"nexus-hospital/pkg/response"
	"nexus-hospital/pkg/validator"

	"github.com/gorilla/mux"
)

type AppointmentHandler struct {
	store     *store.DomainStore
	validator *validator.CustomValidator
}

func NewAppointmentHandler(domainStore *store.DomainStore, validator *validator.CustomValidator) *AppointmentHandler {
	return &AppointmentHandler{
		store:     domainStore,
		validator: validator,
	}
}

// ListAppointments returns the bookings most recent first.
func (h *AppointmentHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	appointments := h.store.Appointments()
	if appointments == nil {
		appointments = []entity.Appointment{}
	}
	response.Success(w, http.StatusOK, "Appointments retrieved successfully", appointments)
}

// CreateAppointment books a visit. New appointments always start Scheduled.
func (h *AppointmentHandler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	when, err := time.Parse(time.RFC3339, req.Time)
	if err != nil {
		response.BadRequest(w, "Time must be RFC 3339")
		return
	}

	appt, err := h.store.AddAppointment(r.Context(), entity.Appointment{
		PatientName:   req.PatientName,
		ContactNumber: req.ContactNumber,
		DoctorID:      req.DoctorID,
		Department:    req.Department,
		Time:          when,
		Reason:        req.Reason,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrUserNotFound):
			response.BadRequest(w, "Doctor does not exist")
		case errors.Is(err, store.ErrNotADoctor):
			response.BadRequest(w, "Target user must have the Doctor role")
		default:
			response.InternalServerError(w, "Failed to create appointment")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Appointment created successfully", appt)
}

// UpdateStatus moves a booking along its state machine; illegal edges are 409.
func (h *AppointmentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateAppointmentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appt, err := h.store.UpdateAppointmentStatus(r.Context(), mux.Vars(r)["id"], entity.AppointmentStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, store.ErrAppointmentNotFound):
			response.NotFound(w, "Appointment not found")
		case errors.Is(err, entity.ErrIllegalTransition):
			response.Conflict(w, "Illegal status transition")
		case errors.Is(err, store.ErrInvalidStatus):
			response.BadRequest(w, "Invalid status value")
		default:
			response.InternalServerError(w, "Failed to update appointment status")
		}
		return
	}

	response.Success(w, http.StatusOK, "Appointment status updated successfully", appt)
}
