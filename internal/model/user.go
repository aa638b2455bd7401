package model

import (
	"fmt"
	"time"
)

// Role is a user's authorization level.
type Role string

const (
	RoleUser      Role = "user"
	RoleOrganizer Role = "organizer"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleOrganizer, RoleAdmin:
		return true
	}
	return false
}

// OrganizerRequestStatus tracks a user's promotion-to-organizer workflow.
type OrganizerRequestStatus string

const (
	RequestNone     OrganizerRequestStatus = "none"
	RequestPending  OrganizerRequestStatus = "pending"
	RequestApproved OrganizerRequestStatus = "approved"
	RequestRejected OrganizerRequestStatus = "rejected"
)

// CanTransition reports whether moving from s to next is a legal step in the
// promotion workflow: none/rejected -> pending (user requests), and
// pending -> approved|rejected (admin decides).
func (s OrganizerRequestStatus) CanTransition(next OrganizerRequestStatus) bool {
	switch next {
	case RequestPending:
		return s == RequestNone || s == RequestRejected
	case RequestApproved, RequestRejected:
		return s == RequestPending
	}
	return false
}

// User is a registered account. PasswordHash is never serialized.
type User struct {
	ID                     string                 `json:"id"`
	Username               string                 `json:"username"`
	Email                  string                 `json:"email"`
	PasswordHash           string                 `json:"-"`
	Phone                  string                 `json:"phone,omitempty"`
	City                   string                 `json:"city,omitempty"`
	Role                   Role                   `json:"role"`
	OrganizerRequestStatus OrganizerRequestStatus `json:"organizer_request_status"`
	CreatedAt              time.Time              `json:"created_at"`
}

// Identity is the caller identity resolved once at the HTTP boundary from the
// bearer token. Downstream code branches on this value and never re-derives
// the role from partial data.
type Identity struct {
	ID   string
	Role Role
}

// IsAdmin reports whether the identity holds admin privilege.
func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

func (i Identity) String() string {
	return fmt.Sprintf("%s(%s)", i.ID, i.Role)
}

// RegisterRequest is the payload for account creation. AdminSecret is
// required only when requesting the admin role.
type RegisterRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Role        Role   `json:"role,omitempty"`
	AdminSecret string `json:"admin_secret,omitempty"`
}

// LoginRequest is the payload for authentication.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries the account and its bearer token after register/login.
type AuthResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// UpdateProfileRequest is the payload for profile edits. Nil fields are left
// unchanged; empty strings clear the optional fields.
type UpdateProfileRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	City     *string `json:"city"`
}

// ChangePasswordRequest is the payload for an authenticated password change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ForgotPasswordRequest starts the password-reset flow.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest completes the password-reset flow.
type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}
