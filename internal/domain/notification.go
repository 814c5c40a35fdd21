package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID                uuid.UUID          `json:"id" db:"id"`
	UserID            uuid.UUID          `json:"user_id" db:"user_id"`
	Type              NotificationType   `json:"type" db:"type"`
	Priority          Priority           `json:"priority" db:"priority"`
	Title             string             `json:"title" db:"title"`
	Message           string             `json:"message" db:"message"`
	Data              json.RawMessage    `json:"data,omitempty" db:"data"`
	Channel           Channel            `json:"channel" db:"channel"`
	Status            NotificationStatus `json:"status" db:"status"`
	RetryCount        int                `json:"retry_count" db:"retry_count"`
	ScheduledAt       time.Time          `json:"scheduled_at" db:"scheduled_at"`
	SentAt            *time.Time         `json:"sent_at,omitempty" db:"sent_at"`
	ReadAt            *time.Time         `json:"read_at,omitempty" db:"read_at"`
	FailureReason     *string            `json:"failure_reason,omitempty" db:"failure_reason"`
	ProviderMessageID *string            `json:"-" db:"provider_message_id"`
	ClaimedBy         *string            `json:"-" db:"claimed_by"`
	ClaimExpiresAt    *time.Time         `json:"-" db:"claim_expires_at"`
	CreatedAt         time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at" db:"updated_at"`
}

type NotificationType string

const (
	NotifAccountSync      NotificationType = "ACCOUNT_SYNC"
	NotifBudgetWarning    NotificationType = "BUDGET_WARNING"
	NotifBudgetExceeded   NotificationType = "BUDGET_EXCEEDED"
	NotifGoalMilestone    NotificationType = "GOAL_MILESTONE"
	NotifTransactionAlert NotificationType = "TRANSACTION_ALERT"
	NotifSecurityAlert    NotificationType = "SECURITY_ALERT"
	NotifSystemUpdate     NotificationType = "SYSTEM_UPDATE"
)

func (t NotificationType) IsValid() bool {
	switch t {
	case NotifAccountSync, NotifBudgetWarning, NotifBudgetExceeded,
		NotifGoalMilestone, NotifTransactionAlert, NotifSecurityAlert, NotifSystemUpdate:
		return true
	default:
		return false
	}
}

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// Rank orders priorities for queue selection; higher ranks dispatch first.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

func (p Priority) IsValid() bool {
	return p.Rank() > 0
}

type Channel string

const (
	ChannelPush  Channel = "PUSH"
	ChannelEmail Channel = "EMAIL"
	ChannelInApp Channel = "IN_APP"
)

func (c Channel) IsValid() bool {
	switch c {
	case ChannelPush, ChannelEmail, ChannelInApp:
		return true
	default:
		return false
	}
}

// ParseChannels parses a comma-separated channel list, e.g. "IN_APP,EMAIL".
func ParseChannels(s string) ([]Channel, error) {
	var channels []Channel
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		ch := Channel(part)
		if !ch.IsValid() {
			return nil, fmt.Errorf("unknown channel %q", part)
		}
		channels = append(channels, ch)
	}
	if len(channels) == 0 {
		return nil, fmt.Errorf("no channels in %q", s)
	}
	return channels, nil
}

type NotificationStatus string

const (
	StatusPending NotificationStatus = "PENDING"
	StatusSent    NotificationStatus = "SENT"
	StatusRead    NotificationStatus = "READ"
	StatusFailed  NotificationStatus = "FAILED"
	StatusBounced NotificationStatus = "BOUNCED"
)

// Terminal reports whether the dispatcher is done with this notification.
func (s NotificationStatus) Terminal() bool {
	switch s {
	case StatusSent, StatusRead, StatusFailed, StatusBounced:
		return true
	default:
		return false
	}
}

type CreateNotificationInput struct {
	UserID      uuid.UUID        `json:"user_id"`
	Type        NotificationType `json:"type"`
	Priority    Priority         `json:"priority"`
	Title       string           `json:"title"`
	Message     string           `json:"message"`
	Data        json.RawMessage  `json:"data,omitempty"`
	Channels    []Channel        `json:"channels"`
	ScheduledAt *time.Time       `json:"scheduled_at,omitempty"`
}

func (in *CreateNotificationInput) Validate() error {
	if in.UserID == uuid.Nil {
		return &ValidationError{Field: "user_id", Reason: "required"}
	}
	if !in.Type.IsValid() {
		return &ValidationError{Field: "type", Reason: "unknown notification type"}
	}
	if in.Message == "" {
		return &ValidationError{Field: "message", Reason: "required"}
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if !in.Priority.IsValid() {
		return &ValidationError{Field: "priority", Reason: "unknown priority"}
	}
	if len(in.Channels) == 0 {
		return &ValidationError{Field: "channels", Reason: "at least one channel required"}
	}
	for _, ch := range in.Channels {
		if !ch.IsValid() {
			return &ValidationError{Field: "channels", Reason: "unknown channel"}
		}
	}
	return nil
}

// NewNotification builds one pending single-channel notification from a
// validated input. A multi-channel input becomes one notification per channel.
func NewNotification(in CreateNotificationInput, ch Channel) *Notification {
	now := time.Now().UTC()
	scheduled := now
	if in.ScheduledAt != nil && in.ScheduledAt.After(now) {
		scheduled = in.ScheduledAt.UTC()
	}
	return &Notification{
		ID:          uuid.New(),
		UserID:      in.UserID,
		Type:        in.Type,
		Priority:    in.Priority,
		Title:       in.Title,
		Message:     in.Message,
		Data:        in.Data,
		Channel:     ch,
		Status:      StatusPending,
		RetryCount:  0,
		ScheduledAt: scheduled,
	}
}

type NotificationFilter struct {
	Type       *NotificationType
	Status     *NotificationStatus
	Channel    *Channel
	UnreadOnly bool
	From       *time.Time
	To         *time.Time
}

type FeedbackStatus string

const (
	FeedbackDelivered FeedbackStatus = "delivered"
	FeedbackBounced   FeedbackStatus = "bounced"
	FeedbackFailed    FeedbackStatus = "failed"
)

// DeliveryFeedbackInput is a provider's asynchronous delivery report. The
// notification is addressed either by our id or by the provider's message id.
type DeliveryFeedbackInput struct {
	NotificationID    *uuid.UUID     `json:"notification_id,omitempty"`
	ProviderMessageID *string        `json:"provider_message_id,omitempty"`
	Status            FeedbackStatus `json:"status"`
	Reason            string         `json:"reason,omitempty"`
}

func (in *DeliveryFeedbackInput) Validate() error {
	if in.NotificationID == nil && (in.ProviderMessageID == nil || *in.ProviderMessageID == "") {
		return &ValidationError{Field: "notification_id", Reason: "notification_id or provider_message_id required"}
	}
	switch in.Status {
	case FeedbackDelivered, FeedbackBounced, FeedbackFailed:
		return nil
	default:
		return &ValidationError{Field: "status", Reason: "must be delivered, bounced, or failed"}
	}
}
