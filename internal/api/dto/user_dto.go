package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/pkg/util/optional"
)

// UserResponse is the public projection of an account.
type UserResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	RoleID    *int64    `json:"role_id"`
	IsAdmin   bool      `json:"is_admin"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// UserSummary is the nested user shape inside ticket payloads.
type UserSummary struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	RoleID *int64 `json:"role_id"`
}

// UpdateUserRequest lists the only keys a user update accepts.
type UpdateUserRequest struct {
	Name     *string               `json:"name"`
	Email    *string               `json:"email"`
	Password *string               `json:"password"`
	RoleID   optional.Value[int64] `json:"role_id"`
	IsActive *bool                 `json:"is_active"`
}
