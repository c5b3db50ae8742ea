package domain

import "time"

// User is the domain entity for an account that can log in.
// IsAdmin gates the registration of new accounts.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
}
