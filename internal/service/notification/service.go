package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"mintlite/internal/domain"
	"mintlite/internal/pkg/metrics"
	"mintlite/internal/repository"
)

type Service interface {
	Create(ctx context.Context, input domain.CreateNotificationInput) ([]domain.Notification, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Notification, error)
	List(ctx context.Context, userID uuid.UUID, filter domain.NotificationFilter, params domain.PaginationParams) (domain.PaginatedResponse[domain.Notification], error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) (*domain.Notification, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)

	RegisterDevice(ctx context.Context, userID uuid.UUID, input domain.RegisterDeviceInput) (*domain.Device, error)
	RemoveDevice(ctx context.Context, userID uuid.UUID, token string) error

	RecordDeliveryFeedback(ctx context.Context, input domain.DeliveryFeedbackInput) error
}

type service struct {
	notifRepo repository.NotificationRepository
	userRepo  repository.UserRepository
}

func NewService(notifRepo repository.NotificationRepository, userRepo repository.UserRepository) Service {
	return &service{
		notifRepo: notifRepo,
		userRepo:  userRepo,
	}
}

// Create enqueues one pending notification per requested channel. Each row
// dispatches and retries independently.
func (s *service) Create(ctx context.Context, input domain.CreateNotificationInput) ([]domain.Notification, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	created := make([]domain.Notification, 0, len(input.Channels))
	for _, ch := range input.Channels {
		notif := domain.NewNotification(input, ch)
		if err := s.notifRepo.Create(ctx, notif); err != nil {
			return created, fmt.Errorf("failed to enqueue %s notification: %w", ch, err)
		}
		created = append(created, *notif)
	}
	return created, nil
}

func (s *service) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Notification, error) {
	notif, err := s.notifRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if notif.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return notif, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, filter domain.NotificationFilter, params domain.PaginationParams) (domain.PaginatedResponse[domain.Notification], error) {
	params.Validate()

	notifications, total, err := s.notifRepo.ListByUser(ctx, userID, filter, params)
	if err != nil {
		return domain.PaginatedResponse[domain.Notification]{}, err
	}
	if notifications == nil {
		notifications = []domain.Notification{}
	}
	return domain.NewPaginatedResponse(notifications, params.Page, params.PageSize, total), nil
}

// MarkRead transitions a delivered notification to READ. Marking an already
// read notification is a no-op; any other status is rejected.
func (s *service) MarkRead(ctx context.Context, userID, id uuid.UUID) (*domain.Notification, error) {
	rows, err := s.notifRepo.MarkRead(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if rows > 0 {
		return s.GetByID(ctx, userID, id)
	}

	notif, err := s.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if notif.Status == domain.StatusRead {
		return notif, nil
	}
	return nil, &domain.InvalidStateError{Op: "mark read", Current: notif.Status}
}

func (s *service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.notifRepo.MarkAllRead(ctx, userID)
}

func (s *service) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.notifRepo.CountUnread(ctx, userID)
}

func (s *service) RegisterDevice(ctx context.Context, userID uuid.UUID, input domain.RegisterDeviceInput) (*domain.Device, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	device := &domain.Device{
		ID:       uuid.New(),
		UserID:   userID,
		Token:    input.Token,
		Platform: input.Platform,
	}
	if err := s.userRepo.RegisterDevice(ctx, device); err != nil {
		return nil, fmt.Errorf("failed to register device: %w", err)
	}
	return device, nil
}

func (s *service) RemoveDevice(ctx context.Context, userID uuid.UUID, token string) error {
	if token == "" {
		return &domain.ValidationError{Field: "token", Reason: "required"}
	}
	return s.userRepo.RemoveDevice(ctx, userID, token)
}

// RecordDeliveryFeedback applies a provider's asynchronous report. Feedback
// that no longer matches the row's state is dropped rather than rejected so
// provider retries stay cheap.
func (s *service) RecordDeliveryFeedback(ctx context.Context, input domain.DeliveryFeedbackInput) error {
	if err := input.Validate(); err != nil {
		return err
	}

	var notif *domain.Notification
	var err error
	if input.NotificationID != nil {
		notif, err = s.notifRepo.GetByID(ctx, *input.NotificationID)
	} else {
		notif, err = s.notifRepo.GetByProviderMessageID(ctx, *input.ProviderMessageID)
	}
	if err != nil {
		return err
	}

	switch input.Status {
	case domain.FeedbackDelivered:
		err = s.notifRepo.FeedbackDelivered(ctx, notif.ID)
	case domain.FeedbackBounced:
		err = s.notifRepo.FeedbackBounced(ctx, notif.ID, input.Reason)
	case domain.FeedbackFailed:
		err = s.notifRepo.FeedbackFailed(ctx, notif.ID, input.Reason)
	}
	if err != nil {
		return err
	}

	metrics.IncWebhookFeedback(string(input.Status))
	return nil
}
