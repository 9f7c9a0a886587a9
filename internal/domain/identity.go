package domain

import "time"

// TokenType differentiates access and refresh tokens.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// TokenPair is the result of a successful login, registration or refresh.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// Identity is the authenticated principal resolved from a bearer token.
type Identity struct {
	UserID int64
	RoleID *int64
	Admin  bool
}

// Is reports whether the identity is the given user.
func (i Identity) Is(userID int64) bool {
	return i.UserID == userID
}
