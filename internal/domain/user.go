package domain

import "time"

// User is an account that can act on tickets or be assigned to them.
type User struct {
	ID           string
	Name         string
	Email        string
	Login        string
	Active       bool
	PasswordHash string
	CreatedAt    time.Time
}
