package channel

import (
	"context"

	"mintlite/internal/domain"
)

// Outcome classifies a delivery attempt for retry handling.
type Outcome string

const (
	OutcomeDelivered        Outcome = "delivered"
	OutcomeTransientFailure Outcome = "transient_failure"
	OutcomePermanentFailure Outcome = "permanent_failure"
)

// DeliveryResult is what an adapter reports back to the dispatcher.
// Adapters translate provider-native errors into an Outcome themselves;
// the dispatcher never inspects provider errors.
type DeliveryResult struct {
	Outcome Outcome
	Reason  string
	// Bounce marks a permanent failure where the provider rejected the
	// recipient, as opposed to the send itself failing.
	Bounce            bool
	ProviderMessageID string
}

func Delivered(providerMessageID string) DeliveryResult {
	return DeliveryResult{Outcome: OutcomeDelivered, ProviderMessageID: providerMessageID}
}

func TransientFailure(reason string) DeliveryResult {
	return DeliveryResult{Outcome: OutcomeTransientFailure, Reason: reason}
}

func PermanentFailure(reason string) DeliveryResult {
	return DeliveryResult{Outcome: OutcomePermanentFailure, Reason: reason}
}

func Bounced(reason string) DeliveryResult {
	return DeliveryResult{Outcome: OutcomePermanentFailure, Reason: reason, Bounce: true}
}

// Adapter delivers a single notification over one channel. Deliver must
// honor ctx cancellation and must not panic on malformed input.
type Adapter interface {
	Channel() domain.Channel
	Deliver(ctx context.Context, notif *domain.Notification) DeliveryResult
}
