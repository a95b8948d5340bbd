package auth

import "time"

// Principal represents an employee account that can authenticate.
type Principal struct {
	ID             int64
	EmployeeNo     string
	Email          string
	FullName       string
	PasswordHash   string
	RoleID         int64
	IsActive       bool
	IsLocked       bool
	FailedAttempts int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
