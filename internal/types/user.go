package types

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Roles assignable to a user. There is no promotion path: the role is fixed
// at signup for the lifetime of the record.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents the core user entity in the domain.
type User struct {
	ID           string    `json:"id"`         // Unique identifier (UUID), server-assigned.
	Name         string    `json:"name"`       // Display name.
	Email        string    `json:"email"`      // Unique email address used for login.
	PasswordHash string    `json:"-"`          // Hashed password (never exposed).
	Role         string    `json:"role"`       // 'user' or 'admin'.
	CreatedAt    time.Time `json:"created_at"` // Timestamp when the user was created.
}

// Claims is the JWT payload: subject identity plus role, with the registered
// issued-at/expiry claims.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}
