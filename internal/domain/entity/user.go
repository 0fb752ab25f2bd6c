package entity

// UserRole identifies which role-based screen a staff member works from.
type UserRole string

const (
	RoleDoctor       UserRole = "Doctor"
	RoleNurse        UserRole = "Nurse"
	RolePharmacy     UserRole = "Pharmacy"
	RoleLab          UserRole = "Lab"
	RoleReceptionist UserRole = "Receptionist"
	RoleAdmin        UserRole = "Admin"
)

// Valid reports whether the role is one of the known staff roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleDoctor, RoleNurse, RolePharmacy, RoleLab, RoleReceptionist, RoleAdmin:
		return true
	}
	return false
}

// User represents a staff member. Users are created by admin action or seed
// data and never deleted; the only mutation is a password change.
//
// PasswordHash is part of the persisted collection (the key-value adapter
// stores whole collections); delivery DTOs must never echo it back.
type User struct {
	ID           string   `json:"id"`
	Username     string   `json:"username"`
	Name         string   `json:"name"`
	Role         UserRole `json:"role"`
	PasswordHash string   `json:"passwordHash,omitempty"`
	Avatar       string   `json:"avatar,omitempty"`
}

func (u *User) IsDoctor() bool {
	return u.Role == RoleDoctor
}
