package channel_test

import (
	"context"
	"testing"

	"mintlite/internal/channel"
	"mintlite/internal/domain"
	"mintlite/tests/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestEmailAdapter_Deliver(t *testing.T) {
	ctx := context.Background()
	notif := &domain.Notification{
		ID:      uuid.New(),
		UserID:  uuid.New(),
		Type:    domain.NotifBudgetWarning,
		Title:   "Budget warning: groceries",
		Message: "You have used 75% of your groceries budget",
		Channel: domain.ChannelEmail,
	}

	t.Run("Recipient Not Found Is Permanent", func(t *testing.T) {
		mockUsers := new(mocks.UserRepository)
		mockUsers.On("GetByID", ctx, notif.UserID).Return(nil, domain.ErrNotFound).Once()

		adapter := channel.NewEmailAdapter("test-key", "alerts@example.com", mockUsers)
		result := adapter.Deliver(ctx, notif)

		assert.Equal(t, channel.OutcomePermanentFailure, result.Outcome)
		assert.False(t, result.Bounce)
		assert.Equal(t, "recipient not found", result.Reason)
	})

	t.Run("Recipient Lookup Error Is Transient", func(t *testing.T) {
		mockUsers := new(mocks.UserRepository)
		mockUsers.On("GetByID", ctx, notif.UserID).Return(nil, assert.AnError).Once()

		adapter := channel.NewEmailAdapter("test-key", "alerts@example.com", mockUsers)
		result := adapter.Deliver(ctx, notif)

		assert.Equal(t, channel.OutcomeTransientFailure, result.Outcome)
	})

	t.Run("Missing Email Address Is Permanent", func(t *testing.T) {
		mockUsers := new(mocks.UserRepository)
		mockUsers.On("GetByID", ctx, notif.UserID).Return(&domain.User{
			ID:       notif.UserID,
			FullName: "Ada Lovelace",
		}, nil).Once()

		adapter := channel.NewEmailAdapter("test-key", "alerts@example.com", mockUsers)
		result := adapter.Deliver(ctx, notif)

		assert.Equal(t, channel.OutcomePermanentFailure, result.Outcome)
		assert.Equal(t, "recipient has no email address", result.Reason)
	})
}

func TestEmailAdapter_Channel(t *testing.T) {
	adapter := channel.NewEmailAdapter("k", "alerts@example.com", new(mocks.UserRepository))
	assert.Equal(t, domain.ChannelEmail, adapter.Channel())
}
