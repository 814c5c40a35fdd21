package mocks

import (
	"context"
	"mintlite/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type DeliveryAttemptRepository struct {
	mock.Mock
}

func (m *DeliveryAttemptRepository) Create(ctx context.Context, attempt *domain.DeliveryAttempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *DeliveryAttemptRepository) ListByNotification(ctx context.Context, notificationID uuid.UUID) ([]domain.DeliveryAttempt, error) {
	args := m.Called(ctx, notificationID)
	return args.Get(0).([]domain.DeliveryAttempt), args.Error(1)
}
