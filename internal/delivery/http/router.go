package http

import (
	"net/http"

	"nexus-hospital/internal/delivery/http/handler"
	"nexus-hospital/internal/delivery/http/middleware"
	"nexus-hospital/internal/metrics"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Router struct {
	router             *mux.Router
	authHandler        *handler.AuthHandler
	patientHandler     *handler.PatientHandler
	actionHandler      *handler.ActionHandler
	appointmentHandler *handler.AppointmentHandler
	userHandler        *handler.UserHandler
	analyticsHandler   *handler.AnalyticsHandler
	assistHandler      *handler.AssistHandler
	authMiddleware     *middleware.AuthMiddleware
	corsMiddleware     *middleware.CORSMiddleware
	metrics            *metrics.Metrics
	registry           *prometheus.Registry
}

func NewRouter(
	authHandler *handler.AuthHandler,
	patientHandler *handler.PatientHandler,
	actionHandler *handler.ActionHandler,
	appointmentHandler *handler.AppointmentHandler,
	userHandler *handler.UserHandler,
	analyticsHandler *handler.AnalyticsHandler,
	assistHandler *handler.AssistHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	m *metrics.Metrics,
	registry *prometheus.Registry,
) *Router {
	return &Router{
		router:             mux.NewRouter(),
		authHandler:        authHandler,
		patientHandler:     patientHandler,
		actionHandler:      actionHandler,
		appointmentHandler: appointmentHandler,
		userHandler:        userHandler,
		analyticsHandler:   analyticsHandler,
		assistHandler:      assistHandler,
		authMiddleware:     authMiddleware,
		corsMiddleware:     corsMiddleware,
		metrics:            m,
		registry:           registry,
	}
}

func (r *Router) Setup() *mux.Router {
	// Metrics endpoint outside the API prefix
	r.router.Handle("/metrics", promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/me", r.authHandler.Me).Methods(http.MethodGet)

	// Patient collection endpoint: bare-array wire format, no auth, shared
	// with external record store consumers.
	api.HandleFunc("/patients", r.patientHandler.ListPatients).Methods(http.MethodGet)
	api.HandleFunc("/patients", r.patientHandler.ReplacePatients).Methods(http.MethodPut)

	// Patient routes (protected)
	patients := api.PathPrefix("/patients").Subrouter()
	patients.Use(r.authMiddleware.Authenticate)
	patients.HandleFunc("", r.patientHandler.AdmitPatient).Methods(http.MethodPost)
	patients.HandleFunc("/{id}", r.patientHandler.GetPatient).Methods(http.MethodGet)
	patients.HandleFunc("/{id}/doctor", r.patientHandler.AssignDoctor).Methods(http.MethodPut)
	patients.HandleFunc("/{id}/severity", r.patientHandler.UpdateSeverity).Methods(http.MethodPut)
	patients.HandleFunc("/{id}/notes", r.patientHandler.ListNotes).Methods(http.MethodGet)
	patients.HandleFunc("/{id}/notes", r.patientHandler.AddNote).Methods(http.MethodPost)

	// Clinical action routes (protected)
	actions := api.PathPrefix("/actions").Subrouter()
	actions.Use(r.authMiddleware.Authenticate)
	actions.HandleFunc("", r.actionHandler.ListActions).Methods(http.MethodGet)
	actions.HandleFunc("", r.actionHandler.CreateAction).Methods(http.MethodPost)
	actions.HandleFunc("/{id}/status", r.actionHandler.UpdateStatus).Methods(http.MethodPut)

	// Department views (protected)
	departments := api.PathPrefix("/departments").Subrouter()
	departments.Use(r.authMiddleware.Authenticate)
	departments.HandleFunc("/{department}/queue", r.actionHandler.DepartmentQueue).Methods(http.MethodGet)
	departments.HandleFunc("/{department}/counts", r.actionHandler.DepartmentCounts).Methods(http.MethodGet)

	// Appointment routes (protected - reception and admin)
	appointments := api.PathPrefix("/appointments").Subrouter()
	appointments.Use(r.authMiddleware.Authenticate)
	appointments.Use(middleware.RequireReception)
	appointments.HandleFunc("", r.appointmentHandler.ListAppointments).Methods(http.MethodGet)
	appointments.HandleFunc("", r.appointmentHandler.CreateAppointment).Methods(http.MethodPost)
	appointments.HandleFunc("/{id}/status", r.appointmentHandler.UpdateStatus).Methods(http.MethodPut)

	// Analytics routes (protected)
	analytics := api.PathPrefix("/analytics").Subrouter()
	analytics.Use(r.authMiddleware.Authenticate)
	analytics.HandleFunc("/bottlenecks", r.analyticsHandler.Bottlenecks).Methods(http.MethodGet)

	// Doctor notification routes (protected - doctors only)
	notifications := api.PathPrefix("/notifications").Subrouter()
	notifications.Use(r.authMiddleware.Authenticate)
	notifications.Use(middleware.RequireDoctor)
	notifications.HandleFunc("", r.analyticsHandler.Notifications).Methods(http.MethodGet)
	notifications.HandleFunc("/{patientId}/dismiss", r.analyticsHandler.DismissNotification).Methods(http.MethodPost)

	// Assist routes (protected)
	assist := api.PathPrefix("/assist").Subrouter()
	assist.Use(r.authMiddleware.Authenticate)
	assist.HandleFunc("/safety-check", r.assistHandler.SafetyCheck).Methods(http.MethodPost)
	assist.HandleFunc("/shift-summary", r.assistHandler.ShiftSummary).Methods(http.MethodPost)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/users", r.userHandler.ListUsers).Methods(http.MethodGet)
	admin.HandleFunc("/users", r.userHandler.CreateUser).Methods(http.MethodPost)
	admin.HandleFunc("/users/{id}/password", r.userHandler.ResetPassword).Methods(http.MethodPut)

	// Add CORS and request metrics middleware
	r.router.Use(r.corsMiddleware.Handle)
	if r.metrics != nil {
		r.router.Use(r.metrics.Middleware)
	}

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
