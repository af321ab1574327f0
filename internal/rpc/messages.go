package rpc

import "time"

type User struct {
	ID               string `json:"id"`
	Username         string `json:"username"`
	Email            string `json:"email"`
	TwoFactorEnabled bool   `json:"isTwoFactorEnabled"`
}

// Secret is secret metadata. Data is only filled by GetSecret.
type Secret struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Data        string    `json:"data,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupResponse struct {
	User *User `json:"user"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries either a token and user, or TwoFactorRequired with
// the UserID to pass to CompleteSecondFactor.
type LoginResponse struct {
	Token             string `json:"token,omitempty"`
	User              *User  `json:"user,omitempty"`
	TwoFactorRequired bool   `json:"twoFactorRequired"`
	UserID            string `json:"userId,omitempty"`
}

type CompleteSecondFactorRequest struct {
	UserID string `json:"userId"`
	Code   string `json:"code"`
}

type ListSecretsRequest struct {
	Type string `json:"type,omitempty"`
}

type ListSecretsResponse struct {
	Secrets []*Secret `json:"secrets"`
}

type GetSecretRequest struct {
	ID string `json:"id"`
}

type CreateSecretRequest struct {
	Title       string `json:"title"`
	Data        string `json:"data"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
}

// UpdateSecretRequest changes only the non-nil fields.
type UpdateSecretRequest struct {
	ID          string  `json:"id"`
	Title       *string `json:"title,omitempty"`
	Data        *string `json:"data,omitempty"`
	Type        *string `json:"type,omitempty"`
	Description *string `json:"description,omitempty"`
}

type SecretResponse struct {
	Secret *Secret `json:"secret"`
}

type DeleteSecretRequest struct {
	ID string `json:"id"`
}

type DeleteSecretResponse struct{}

type ExportBackupRequest struct{}

type ExportBackupResponse struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}
