package handler

import (
	"net/http"

	"nexus-hospital/internal/analytics"
	"nexus-hospital/internal/delivery/http/middleware"
	"nexus-hospital/internal/domain/entity"
	"nexus-hospital/internal/store"
	"nexus-hospital/pkg/response"

	"github.com/gorilla/mux"
)

type AnalyticsHandler struct {
	store *store.DomainStore
}

func NewAnalyticsHandler(domainStore *store.DomainStore) *AnalyticsHandler {
	return &AnalyticsHandler{store: domainStore}
}

// Bottlenecks reports mean time to completion per department with the
// alert/efficient/normal classification used by the dashboard.
func (h *AnalyticsHandler) Bottlenecks(w http.ResponseWriter, r *http.Request) {
	reports := analytics.MTTCByDepartment(h.store.Actions())
	response.Success(w, http.StatusOK, "Bottleneck report retrieved successfully", reports)
}

// Notifications returns the doctor's assigned patients that have not been
// acknowledged yet.
func (h *AnalyticsHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	unseen, err := h.store.UnseenPatients(r.Context(), doctorID)
	if err != nil {
		response.InternalServerError(w, "Failed to retrieve notifications")
		return
	}
	if unseen == nil {
		unseen = []entity.Patient{}
	}

	response.Success(w, http.StatusOK, "Notifications retrieved successfully", unseen)
}

// DismissNotification marks a patient as seen by the acting doctor.
func (h *AnalyticsHandler) DismissNotification(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	seen, err := h.store.MarkPatientSeen(r.Context(), doctorID, mux.Vars(r)["patientId"])
	if err != nil {
		response.InternalServerError(w, "Failed to dismiss notification")
		return
	}

	response.Success(w, http.StatusOK, "Notification dismissed successfully", seen)
}
