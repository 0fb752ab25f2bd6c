package dto

// CreateUserRequest creates a staff account (admin only).
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=2"`
	Name     string `json:"name" validate:"required,min=2"`
	Role     string `json:"role" validate:"required,oneof=Doctor Nurse Pharmacy Lab Receptionist Admin"`
	Password string `json:"password" validate:"required,min=6"`
	Avatar   string `json:"avatar" validate:"omitempty"`
}

// ResetPasswordRequest replaces a user's credential (admin only).
type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=6"`
}
