package mocks

import (
	"context"
	"mintlite/internal/domain"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type NotificationRepository struct {
	mock.Mock
}

func (m *NotificationRepository) Create(ctx context.Context, notif *domain.Notification) error {
	args := m.Called(ctx, notif)
	return args.Error(0)
}

func (m *NotificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Notification), args.Error(1)
}

func (m *NotificationRepository) GetByProviderMessageID(ctx context.Context, providerMessageID string) (*domain.Notification, error) {
	args := m.Called(ctx, providerMessageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Notification), args.Error(1)
}

func (m *NotificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, filter domain.NotificationFilter, params domain.PaginationParams) ([]domain.Notification, int64, error) {
	args := m.Called(ctx, userID, filter, params)
	return args.Get(0).([]domain.Notification), args.Get(1).(int64), args.Error(2)
}

func (m *NotificationRepository) MarkRead(ctx context.Context, id, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, id, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *NotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *NotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *NotificationRepository) CountPending(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *NotificationRepository) ClaimNext(ctx context.Context, workerID string, leaseTTL time.Duration) (*domain.Notification, error) {
	args := m.Called(ctx, workerID, leaseTTL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Notification), args.Error(1)
}

func (m *NotificationRepository) MarkSent(ctx context.Context, id uuid.UUID, workerID string, providerMessageID *string) error {
	args := m.Called(ctx, id, workerID, providerMessageID)
	return args.Error(0)
}

func (m *NotificationRepository) ReleaseForRetry(ctx context.Context, id uuid.UUID, workerID string, retryCount int, scheduledAt time.Time, reason string) error {
	args := m.Called(ctx, id, workerID, retryCount, scheduledAt, reason)
	return args.Error(0)
}

func (m *NotificationRepository) MarkFailed(ctx context.Context, id uuid.UUID, workerID string, retryCount int, reason string) error {
	args := m.Called(ctx, id, workerID, retryCount, reason)
	return args.Error(0)
}

func (m *NotificationRepository) MarkBounced(ctx context.Context, id uuid.UUID, workerID string, reason string) error {
	args := m.Called(ctx, id, workerID, reason)
	return args.Error(0)
}

func (m *NotificationRepository) FeedbackDelivered(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *NotificationRepository) FeedbackBounced(ctx context.Context, id uuid.UUID, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

func (m *NotificationRepository) FeedbackFailed(ctx context.Context, id uuid.UUID, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}
