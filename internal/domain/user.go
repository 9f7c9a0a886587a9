package domain

import "time"

// User is an account that can file, work on and administer tickets.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	RoleID       *int64
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Summary returns the public projection of the user.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, RoleID: u.RoleID}
}

// UserSummary is the nested representation of a user in ticket payloads.
type UserSummary struct {
	ID     int64
	Name   string
	Email  string
	RoleID *int64
}
