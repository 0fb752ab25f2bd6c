package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"nexus-hospital/internal/adapter/kv"
	"nexus-hospital/internal/delivery/dto"
	"nexus-hospital/internal/delivery/http/middleware"
	"nexus-hospital/internal/domain/entity"
	"nexus-hospital/internal/store"
	"nexus-hospital/pkg/jwt"
	"nexus-hospital/pkg/response"
	"nexus-hospital/pkg/validator"

	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	store      *store.DomainStore
	validator  *validator.CustomValidator
	jwtService *jwt.JWTService
	tokens     kv.Store
	log        *logrus.Logger
}

func NewAuthHandler(domainStore *store.DomainStore, validator *validator.CustomValidator, jwtService *jwt.JWTService, tokens kv.Store, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		store:      domainStore,
		validator:  validator,
		jwtService: jwtService,
		tokens:     tokens,
		log:        log,
	}
}

// Login authenticates a username/role/password triple and issues session
// tokens. Unknown users and wrong passwords get the same generic message.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	user, err := h.store.Login(r.Context(), req.Username, entity.UserRole(req.Role), req.Password)
	if err != nil {
		if errors.Is(err, store.ErrInvalidCredentials) {
			response.Unauthorized(w, "Invalid credentials")
			return
		}
		response.InternalServerError(w, "Failed to login")
		return
	}

	accessToken, accessTokenID, err := h.jwtService.GenerateAccessToken(user.ID, user.Username, string(user.Role))
	if err != nil {
		h.log.Warnf("Failed to generate access token: %+v", err)
		response.InternalServerError(w, "Failed to login")
		return
	}

	refreshToken, refreshTokenID, err := h.jwtService.GenerateRefreshToken(user.ID, user.Username, string(user.Role))
	if err != nil {
		h.log.Warnf("Failed to generate refresh token: %+v", err)
		response.InternalServerError(w, "Failed to login")
		return
	}

	accessKey := middleware.TokenKey(user.ID, accessTokenID)
	refreshKey := middleware.RefreshTokenKey(user.ID, refreshTokenID)

	if err := h.tokens.Set(r.Context(), accessKey, []byte("valid"), h.jwtService.GetAccessExpiry()); err != nil {
		h.log.Warnf("Failed to store access token: %+v", err)
		response.InternalServerError(w, "Failed to login")
		return
	}
	if err := h.tokens.Set(r.Context(), refreshKey, []byte("valid"), h.jwtService.GetRefreshExpiry()); err != nil {
		h.log.Warnf("Failed to store refresh token: %+v", err)
		response.InternalServerError(w, "Failed to login")
		return
	}

	response.Success(w, http.StatusOK, "Login successful", dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(h.jwtService.GetAccessExpiry().Seconds()),
		User:         toUserResponse(user),
	})
}

// Logout revokes the current session token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}
	tokenID, ok := middleware.GetTokenIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	if err := h.tokens.Delete(r.Context(), middleware.TokenKey(userID, tokenID)); err != nil {
		h.log.Warnf("Failed to revoke token: %+v", err)
		response.InternalServerError(w, "Failed to logout")
		return
	}

	response.Success(w, http.StatusOK, "Logout successful", nil)
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	user, err := h.store.UserByID(userID)
	if err != nil {
		response.NotFound(w, "User not found")
		return
	}

	response.Success(w, http.StatusOK, "User retrieved successfully", toUserResponse(user))
}

func toUserResponse(user entity.User) dto.UserResponse {
	return dto.UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Name:     user.Name,
		Role:     string(user.Role),
		Avatar:   user.Avatar,
	}
}
