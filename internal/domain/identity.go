package domain

import "time"

// IdentityUser is an account held by the identity provider. AppUsers reference it.
type IdentityUser struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
