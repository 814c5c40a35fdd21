package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"mintlite/internal/domain"
	"mintlite/internal/repository"
)

const fcmDefaultEndpoint = "https://fcm.googleapis.com/fcm/send"

type fcmRequest struct {
	RegistrationIDs []string        `json:"registration_ids"`
	Notification    fcmNotification `json:"notification"`
	Data            json.RawMessage `json:"data,omitempty"`
	Priority        string          `json:"priority"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type fcmResponse struct {
	Success int         `json:"success"`
	Failure int         `json:"failure"`
	Results []fcmResult `json:"results"`
}

type fcmResult struct {
	MessageID string `json:"message_id"`
	Error     string `json:"error"`
}

type pushAdapter struct {
	serverKey  string
	endpoint   string
	users      repository.UserRepository
	httpClient *http.Client
}

func NewPushAdapter(serverKey, endpoint string, users repository.UserRepository) Adapter {
	if endpoint == "" {
		endpoint = fcmDefaultEndpoint
	}
	return &pushAdapter{
		serverKey:  serverKey,
		endpoint:   endpoint,
		users:      users,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (a *pushAdapter) Channel() domain.Channel {
	return domain.ChannelPush
}

func (a *pushAdapter) Deliver(ctx context.Context, notif *domain.Notification) DeliveryResult {
	tokens, err := a.users.ListDeviceTokens(ctx, notif.UserID)
	if err != nil {
		return TransientFailure(fmt.Sprintf("device lookup: %v", err))
	}
	if len(tokens) == 0 {
		return PermanentFailure("no registered devices")
	}

	priority := "normal"
	if notif.Priority == domain.PriorityHigh || notif.Priority == domain.PriorityUrgent {
		priority = "high"
	}

	body, err := json.Marshal(fcmRequest{
		RegistrationIDs: tokens,
		Notification:    fcmNotification{Title: notif.Title, Body: notif.Message},
		Data:            notif.Data,
		Priority:        priority,
	})
	if err != nil {
		return PermanentFailure(fmt.Sprintf("encode fcm request: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		return PermanentFailure(fmt.Sprintf("build fcm request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+a.serverKey)

	resp, err := a.httpClient.Do(req)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return TransientFailure("provider timeout")
	}
	if err != nil {
		return TransientFailure(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return TransientFailure(fmt.Sprintf("fcm status %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return PermanentFailure(fmt.Sprintf("fcm status %d", resp.StatusCode))
	}

	var parsed fcmResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return TransientFailure(fmt.Sprintf("decode fcm response: %v", err))
	}

	a.pruneStaleTokens(ctx, notif.UserID, tokens, parsed.Results)

	if parsed.Success > 0 {
		for _, result := range parsed.Results {
			if result.MessageID != "" {
				return Delivered(result.MessageID)
			}
		}
		return Delivered("")
	}

	return classifyPushFailure(parsed.Results)
}

// pruneStaleTokens drops device rows FCM reports as gone so later sends
// stop fanning out to them. Best effort.
func (a *pushAdapter) pruneStaleTokens(ctx context.Context, userID uuid.UUID, tokens []string, results []fcmResult) {
	for i, result := range results {
		if i >= len(tokens) {
			break
		}
		if result.Error == "NotRegistered" || result.Error == "InvalidRegistration" {
			_ = a.users.RemoveDevice(ctx, userID, tokens[i])
		}
	}
}

func classifyPushFailure(results []fcmResult) DeliveryResult {
	allGone := len(results) > 0
	for _, result := range results {
		switch result.Error {
		case "Unavailable", "InternalServerError", "DeviceMessageRateExceeded":
			return TransientFailure("fcm: " + result.Error)
		case "NotRegistered", "InvalidRegistration", "MismatchSenderId":
		default:
			allGone = false
		}
	}
	if allGone {
		return Bounced("device tokens no longer registered")
	}
	if len(results) > 0 {
		return PermanentFailure("fcm: " + results[0].Error)
	}
	return PermanentFailure("fcm: empty response")
}
