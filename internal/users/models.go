package users

import (
	"strings"

	"github.com/salud-red/appointment-service/internal/pagination"
	"github.com/salud-red/appointment-service/internal/store"
)

// CreateUserRequest represents the request to create a new user
type CreateUserRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	Role          string `json:"role"`
	ContactNumber string `json:"contact_number,omitempty"`
	Address       string `json:"address,omitempty"`
}

// Validate returns field-level validation errors, or nil when valid.
func (r *CreateUserRequest) Validate() map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(r.Name) == "" {
		errs["name"] = "name is required"
	}
	if strings.TrimSpace(r.Email) == "" {
		errs["email"] = "email is required"
	} else if !strings.Contains(r.Email, "@") {
		errs["email"] = "email is invalid"
	}
	if len(r.Password) < 6 {
		errs["password"] = "password must be at least 6 characters"
	}
	if r.Role == "" {
		errs["role"] = "role is required"
	} else if !store.ValidRole(r.Role) {
		errs["role"] = "role must be one of patient, health_worker, admin"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// UpdateUserRequest represents the request to update a user. Empty fields
// are left untouched.
type UpdateUserRequest struct {
	Name          string `json:"name,omitempty"`
	ContactNumber string `json:"contact_number,omitempty"`
	Address       string `json:"address,omitempty"`
	FCMToken      string `json:"fcm_token,omitempty"`
}

// Partial returns the non-empty fields as a partial document.
func (r *UpdateUserRequest) Partial() map[string]interface{} {
	partial := map[string]interface{}{}
	if r.Name != "" {
		partial["name"] = r.Name
	}
	if r.ContactNumber != "" {
		partial["contact_number"] = r.ContactNumber
	}
	if r.Address != "" {
		partial["address"] = r.Address
	}
	if r.FCMToken != "" {
		partial["fcm_token"] = r.FCMToken
	}
	return partial
}

// PaginatedUserListResponse represents a paginated list of users
type PaginatedUserListResponse struct {
	Users      []store.User    `json:"users"`
	Pagination pagination.Meta `json:"pagination"`
}
