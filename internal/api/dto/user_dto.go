package dto

import (
	"time"

	"github.com/spec-kit/user-service/internal/domain"
)

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CreateUserRequest payload for admin user creation.
type CreateUserRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
}

// UpdateUserRequest payload for profile updates. Empty fields are left
// untouched; role changes require admin access.
type UpdateUserRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
}

// ChangePasswordRequest payload for password replacement.
type ChangePasswordRequest struct {
	Password string `json:"password"`
}

// SessionResponse is the public shape of a login session.
type SessionResponse struct {
	SessionID string    `json:"session_id"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// NewSessionResponse maps a domain session.
func NewSessionResponse(session *domain.Session) SessionResponse {
	return SessionResponse{
		SessionID: session.ID,
		UserID:    session.UserID,
		CreatedAt: session.CreatedAt,
	}
}

// ChangeRoleRequest payload for role assignment.
type ChangeRoleRequest struct {
	Role string `json:"role"`
}

// SetEnabledRequest payload for enable/disable.
type SetEnabledRequest struct {
	Enabled bool `json:"enabled"`
}

// SetLockedRequest payload for lock/unlock.
type SetLockedRequest struct {
	Locked bool `json:"locked"`
}

// UserResponse is the public shape of a user record.
type UserResponse struct {
	ID        int64      `json:"id"`
	Email     string     `json:"email"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Phone     string     `json:"phone,omitempty"`
	Role      string     `json:"role"`
	Enabled   bool       `json:"enabled"`
	Locked    bool       `json:"locked"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Phone:     user.Phone,
		Role:      string(user.Role),
		Enabled:   user.Enabled,
		Locked:    !user.AccountNonLocked,
		LastLogin: user.LastLogin,
		CreatedAt: user.CreatedAt,
	}
}

// NewUserResponses maps a slice of domain users.
func NewUserResponses(users []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, NewUserResponse(&users[i]))
	}
	return out
}

// StatsResponse reports aggregate user counts.
type StatsResponse struct {
	TotalUsers int64            `json:"total_users"`
	ByRole     map[string]int64 `json:"by_role,omitempty"`
}
