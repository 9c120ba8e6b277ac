package auth

import "time"

// User represents an authenticated user account. ExtraCapabilities holds
// per-user grants unioned with the role grants when resolving identity.
type User struct {
	ID                int64
	Email             string
	Name              string
	PasswordHash      string
	Role              string
	ExtraCapabilities []string
	IsActive          bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
