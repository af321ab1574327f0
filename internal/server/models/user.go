// Package models defines the server-side records persisted by the repositories.
package models

import "time"

// User is an account record. PasswordHash and both TOTP secrets never leave
// the server; use Public for anything sent to a client.
type User struct {
	ID           string
	UserName     string
	Email        string
	PasswordHash string

	TwoFactorEnabled bool
	// TwoFactorSecret is the active base32 TOTP secret, set only while
	// TwoFactorEnabled is true.
	TwoFactorSecret string
	// TwoFactorPendingSecret holds an enrollment secret until it is confirmed
	// with a valid code.
	TwoFactorPendingSecret string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PublicUser is the projection of User that is safe to return to callers.
type PublicUser struct {
	ID               string `json:"id"`
	UserName         string `json:"username"`
	Email            string `json:"email"`
	TwoFactorEnabled bool   `json:"isTwoFactorEnabled"`
}

func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:               u.ID,
		UserName:         u.UserName,
		Email:            u.Email,
		TwoFactorEnabled: u.TwoFactorEnabled,
	}
}
