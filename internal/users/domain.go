package users

import "time"

// User represents a user account for management.
type User struct {
	ID                int64     `json:"id"`
	Email             string    `json:"email"`
	Name              string    `json:"name"`
	Role              string    `json:"role"`
	ExtraCapabilities []string  `json:"extra_capabilities"`
	IsActive          bool      `json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,max=200"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=admin manager sales"`
}

type UpdateUserRequest struct {
	Name              *string   `json:"name,omitempty" validate:"omitempty,max=200"`
	Role              *string   `json:"role,omitempty" validate:"omitempty,oneof=admin manager sales"`
	IsActive          *bool     `json:"is_active,omitempty"`
	ExtraCapabilities *[]string `json:"extra_capabilities,omitempty"`
}
