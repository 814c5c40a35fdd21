package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is the recipient directory entry. Identity, credentials, and profile
// management live in the external identity service; this store keeps only
// what channel adapters need for addressing.
type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	FullName  string    `json:"full_name" db:"full_name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Device is a push registration token for one of a user's devices.
type Device struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Token     string    `json:"token" db:"token"`
	Platform  string    `json:"platform" db:"platform"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type RegisterDeviceInput struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

func (in *RegisterDeviceInput) Validate() error {
	if in.Token == "" {
		return &ValidationError{Field: "token", Reason: "required"}
	}
	switch in.Platform {
	case "ios", "android", "web":
		return nil
	default:
		return &ValidationError{Field: "platform", Reason: "must be ios, android, or web"}
	}
}
