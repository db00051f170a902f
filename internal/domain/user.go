package domain

import (
	"fmt"
	"strings"
	"time"
)

// Role classifies a user's access level.
type Role string

const (
	RoleUser    Role = "USER"
	RoleManager Role = "MANAGER"
	RoleAdmin   Role = "ADMIN"
)

// ParseRole validates a stored role value. Unknown values are rejected at the
// data-model boundary so downstream authority derivation never sees them.
func ParseRole(value string) (Role, error) {
	switch Role(strings.ToUpper(value)) {
	case RoleUser:
		return RoleUser, nil
	case RoleManager:
		return RoleManager, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("unrecognized role %q", value)
	}
}

// User is the domain model for managed accounts.
type User struct {
	ID                  int64
	Email               string
	PasswordHash        string
	FirstName           string
	LastName            string
	Phone               string
	Role                Role
	Enabled             bool
	AccountNonLocked    bool
	FailedLoginAttempts int
	LastLogin           *time.Time
	CreatedAt           time.Time
}

// FullName joins first and last name for display and event payloads.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Session represents one active login. At most one valid session exists per
// user at any instant; a new login supersedes the previous one.
type Session struct {
	ID        string
	UserID    int64
	CreatedAt time.Time
	Valid     bool
}
