package domain

import (
	"time"

	"github.com/google/uuid"
)

// DeliveryAttempt is the audit record the dispatcher writes after every
// delivery attempt, successful or not.
type DeliveryAttempt struct {
	ID             uuid.UUID `json:"id" db:"id"`
	NotificationID uuid.UUID `json:"notification_id" db:"notification_id"`
	Attempt        int       `json:"attempt" db:"attempt"`
	Channel        Channel   `json:"channel" db:"channel"`
	Outcome        string    `json:"outcome" db:"outcome"`
	Reason         *string   `json:"reason,omitempty" db:"reason"`
	DurationMS     int64     `json:"duration_ms" db:"duration_ms"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
