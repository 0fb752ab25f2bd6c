package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"nexus-hospital/internal/delivery/dto"
	"nexus-hospital/internal/domain/entity"
	"nexus-hospital/internal/store"
	"nexus-hospital/pkg/response"
	"nexus-hospital/pkg/validator"

	"github.com/gorilla/mux"
)

type UserHandler struct {
	store     *store.DomainStore
	validator *validator.CustomValidator
}

func NewUserHandler(domainStore *store.DomainStore, validator *validator.CustomValidator) *UserHandler {
	return &UserHandler{
		store:     domainStore,
		validator: validator,
	}
}

// ListUsers returns all staff accounts without credential material.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users := h.store.Users()
	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	response.Success(w, http.StatusOK, "Users retrieved successfully", out)
}

// CreateUser registers a staff account. Admin only; usernames are unique
// across roles.
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	user, err := h.store.AddUser(r.Context(), entity.User{
		Username: req.Username,
		Name:     req.Name,
		Role:     entity.UserRole(req.Role),
		Avatar:   req.Avatar,
	}, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrUsernameTaken):
			response.Conflict(w, "Username already taken")
		case errors.Is(err, store.ErrInvalidRole):
			response.BadRequest(w, "Invalid role")
		default:
			response.InternalServerError(w, "Failed to create user")
		}
		return
	}

	response.Success(w, http.StatusCreated, "User created successfully", toUserResponse(user))
}

// ResetPassword replaces a user's credential. Admin only.
func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	if err := h.store.ChangePassword(r.Context(), mux.Vars(r)["id"], req.Password); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			response.NotFound(w, "User not found")
			return
		}
		response.InternalServerError(w, "Failed to reset password")
		return
	}

	response.Success(w, http.StatusOK, "Password reset successfully", nil)
}
