package notification_test

import (
	"context"
	"errors"
	"testing"

	"mintlite/internal/domain"
	"mintlite/internal/service/notification"
	"mintlite/tests/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNotificationService_Create(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	input := domain.CreateNotificationInput{
		UserID:   userID,
		Type:     domain.NotifBudgetWarning,
		Priority: domain.PriorityMedium,
		Title:    "Budget warning: groceries",
		Message:  "You have used 75% of your groceries budget",
		Channels: []domain.Channel{domain.ChannelInApp, domain.ChannelEmail},
	}

	t.Run("One Row Per Channel", func(t *testing.T) {
		mockRepo := new(mocks.NotificationRepository)
		svc := notification.NewService(mockRepo, nil)

		mockRepo.On("Create", ctx, mock.MatchedBy(func(n *domain.Notification) bool {
			return n.UserID == userID && n.Status == domain.StatusPending && n.Channel == domain.ChannelInApp
		})).Return(nil).Once()
		mockRepo.On("Create", ctx, mock.MatchedBy(func(n *domain.Notification) bool {
			return n.UserID == userID && n.Status == domain.StatusPending && n.Channel == domain.ChannelEmail
		})).Return(nil).Once()

		created, err := svc.Create(ctx, input)

		require.NoError(t, err)
		require.Len(t, created, 2)
		assert.NotEqual(t, created[0].ID, created[1].ID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Validation Error Without Repo Call", func(t *testing.T) {
		mockRepo := new(mocks.NotificationRepository)
		svc := notification.NewService(mockRepo, nil)

		bad := input
		bad.Channels = nil

		_, err := svc.Create(ctx, bad)

		var verr *domain.ValidationError
		assert.ErrorAs(t, err, &verr)
		mockRepo.AssertNotCalled(t, "Create")
	})

	t.Run("Partial Failure Returns Created Rows", func(t *testing.T) {
		mockRepo := new(mocks.NotificationRepository)
		svc := notification.NewService(mockRepo, nil)

		mockRepo.On("Create", ctx, mock.MatchedBy(func(n *domain.Notification) bool {
			return n.Channel == domain.ChannelInApp
		})).Return(nil).Once()
		mockRepo.On("Create", ctx, mock.MatchedBy(func(n *domain.Notification) bool {
			return n.Channel == domain.ChannelEmail
		})).Return(errors.New("insert failed")).Once()

		created, err := svc.Create(ctx, input)

		assert.Error(t, err)
		require.Len(t, created, 1)
		assert.Equal(t, domain.ChannelInApp, created[0].Channel)
		mockRepo.AssertExpectations(t)
	})
}

func TestNotificationService_GetByID(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	notifID := uuid.New()

	t.Run("Scoped To Owner", func(t *testing.T) {
		mockRepo := new(mocks.NotificationRepository)
		svc := notification.NewService(mockRepo, nil)

		mockRepo.On("GetByID", ctx, notifID).Return(&domain.Notification{
			ID:     notifID,
			UserID: uuid.New(), // someone else's
			Status: domain.StatusSent,
		}, nil).Once()

		_, err := svc.GetByID(ctx, userID, notifID)

		assert.ErrorIs(t, err, domain.ErrNotFound)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Owner Sees Row", func(t *testing.T) {
		mockRepo := new(mocks.NotificationRepository)
		svc := notification.NewService(mockRepo, nil)

		mockRepo.On("GetByID", ctx, notifID).Return(&domain.Notification{
			ID:     notifID,
			UserID: userID,
			Status: domain.StatusSent,
		}, nil).Once()

		notif, err := svc.GetByID(ctx, userID, notifID)

		require.NoError(t, err)
		assert.Equal(t, notifID, notif.ID)
	})
}

func TestNotificationService_MarkRead(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	notifID := uuid.New()

	t.Run("Delivered Becomes Read", func(t *testing.T) {
		mockRepo := new(mocks.NotificationRepository)
		svc := notification.NewService(mockRepo, nil)

		mockRepo.On("MarkRead", ctx, notifID, userID).Return(int64(1), nil).Once()
		mockRepo.On("GetByID", ctx, notifID).Return(&domain.Notification{
			ID:     notifID,
			UserID: userID,
			Status: domain.StatusRead,
		}, nil).Once()

		notif, err := svc.MarkRead(ctx, userID, notifID)

		require.NoError(t, err)
		assert.Equal(t, domain.StatusRead, notif.Status)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Already Read Is Idempotent", func(t *testing.T) {
		mockRepo := new(mocks.NotificationRepository)
		svc := notification.NewService(mockRepo, nil)

		mockRepo.On("MarkRead", ctx, notifID, userID).Return(int64(0), nil).Once()
		mockRepo.On("GetByID", ctx, notifID).Return(&domain.Notification{
			ID:     notifID,
			UserID: userID,
			Status: domain.StatusRead,
		}, nil).Once()

		notif, err := svc.MarkRead(ctx, userID, notifID)

		require.NoError(t, err)
		assert.Equal(t, domain.StatusRead, notif.Status)
	})

	t.Run("Pending Is Rejected", func(t *testing.T) {
		mockRepo := new(mocks.NotificationRepository)
		svc := notification.NewService(mockRepo, nil)

		mockRepo.On("MarkRead", ctx, notifID, userID).Return(int64(0), nil).Once()
		mockRepo.On("GetByID", ctx, notifID).Return(&domain.Notification{
			ID:     notifID,
			UserID: userID,
			Status: domain.StatusPending,
		}, nil).Once()

		_, err := svc.MarkRead(ctx, userID, notifID)

		var serr *domain.InvalidStateError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, domain.StatusPending, serr.Current)
	})

	t.Run("Unknown ID", func(t *testing.T) {
		mockRepo := new(mocks.NotificationRepository)
		svc := notification.NewService(mockRepo, nil)

		mockRepo.On("MarkRead", ctx, notifID, userID).Return(int64(0), nil).Once()
		mockRepo.On("GetByID", ctx, notifID).Return(nil, domain.ErrNotFound).Once()

		_, err := svc.MarkRead(ctx, userID, notifID)

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestNotificationService_RecordDeliveryFeedback(t *testing.T) {
	ctx := context.Background()
	notifID := uuid.New()
	msgID := "resend-abc123"

	t.Run("Delivered By Notification ID", func(t *testing.T) {
		mockRepo := new(mocks.NotificationRepository)
		svc := notification.NewService(mockRepo, nil)

		mockRepo.On("GetByID", ctx, notifID).Return(&domain.Notification{ID: notifID}, nil).Once()
		mockRepo.On("FeedbackDelivered", ctx, notifID).Return(nil).Once()

		err := svc.RecordDeliveryFeedback(ctx, domain.DeliveryFeedbackInput{
			NotificationID: &notifID,
			Status:         domain.FeedbackDelivered,
		})

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Bounced By Provider Message ID", func(t *testing.T) {
		mockRepo := new(mocks.NotificationRepository)
		svc := notification.NewService(mockRepo, nil)

		mockRepo.On("GetByProviderMessageID", ctx, msgID).Return(&domain.Notification{ID: notifID}, nil).Once()
		mockRepo.On("FeedbackBounced", ctx, notifID, "mailbox unavailable").Return(nil).Once()

		err := svc.RecordDeliveryFeedback(ctx, domain.DeliveryFeedbackInput{
			ProviderMessageID: &msgID,
			Status:            domain.FeedbackBounced,
			Reason:            "mailbox unavailable",
		})

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Unknown Provider Message ID", func(t *testing.T) {
		mockRepo := new(mocks.NotificationRepository)
		svc := notification.NewService(mockRepo, nil)

		mockRepo.On("GetByProviderMessageID", ctx, msgID).Return(nil, domain.ErrNotFound).Once()

		err := svc.RecordDeliveryFeedback(ctx, domain.DeliveryFeedbackInput{
			ProviderMessageID: &msgID,
			Status:            domain.FeedbackFailed,
		})

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Missing Identifier", func(t *testing.T) {
		mockRepo := new(mocks.NotificationRepository)
		svc := notification.NewService(mockRepo, nil)

		err := svc.RecordDeliveryFeedback(ctx, domain.DeliveryFeedbackInput{
			Status: domain.FeedbackDelivered,
		})

		var verr *domain.ValidationError
		assert.ErrorAs(t, err, &verr)
		mockRepo.AssertNotCalled(t, "GetByID")
	})
}

func TestNotificationService_Devices(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("Register", func(t *testing.T) {
		mockUsers := new(mocks.UserRepository)
		svc := notification.NewService(new(mocks.NotificationRepository), mockUsers)

		mockUsers.On("RegisterDevice", ctx, mock.MatchedBy(func(d *domain.Device) bool {
			return d.UserID == userID && d.Token == "tok-1" && d.Platform == "android"
		})).Return(nil).Once()

		device, err := svc.RegisterDevice(ctx, userID, domain.RegisterDeviceInput{Token: "tok-1", Platform: "android"})

		require.NoError(t, err)
		assert.Equal(t, "tok-1", device.Token)
		mockUsers.AssertExpectations(t)
	})

	t.Run("Register Rejects Bad Platform", func(t *testing.T) {
		mockUsers := new(mocks.UserRepository)
		svc := notification.NewService(new(mocks.NotificationRepository), mockUsers)

		_, err := svc.RegisterDevice(ctx, userID, domain.RegisterDeviceInput{Token: "tok-1", Platform: "blackberry"})

		var verr *domain.ValidationError
		assert.ErrorAs(t, err, &verr)
		mockUsers.AssertNotCalled(t, "RegisterDevice")
	})

	t.Run("Remove Requires Token", func(t *testing.T) {
		mockUsers := new(mocks.UserRepository)
		svc := notification.NewService(new(mocks.NotificationRepository), mockUsers)

		err := svc.RemoveDevice(ctx, userID, "")

		var verr *domain.ValidationError
		assert.ErrorAs(t, err, &verr)
		mockUsers.AssertNotCalled(t, "RemoveDevice")
	})
}
