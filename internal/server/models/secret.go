package models

import "time"

// SecretType classifies a stored secret.
type SecretType string

const (
	SecretTypeSecret   SecretType = "secret"
	SecretTypeKey      SecretType = "key"
	SecretTypePassword SecretType = "password"
)

// ParseSecretType validates s. An empty string maps to SecretTypeSecret.
func ParseSecretType(s string) (SecretType, bool) {
	switch SecretType(s) {
	case "", SecretTypeSecret:
		return SecretTypeSecret, true
	case SecretTypeKey, SecretTypePassword:
		return SecretType(s), true
	}
	return "", false
}

// Secret is a vault item as stored: the payload exists only as hex ciphertext
// plus the hex IV it was sealed under.
type Secret struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	Title         string     `json:"title"`
	EncryptedData string     `json:"-"`
	IV            string     `json:"-"`
	Type          SecretType `json:"type"`
	Description   string     `json:"description"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}
