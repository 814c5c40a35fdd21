package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"mintlite/internal/domain"
)

type DeliveryAttemptRepository interface {
	Create(ctx context.Context, attempt *domain.DeliveryAttempt) error
	ListByNotification(ctx context.Context, notificationID uuid.UUID) ([]domain.DeliveryAttempt, error)
}

type deliveryAttemptRepository struct {
	db *sqlx.DB
}

func NewDeliveryAttemptRepository(db *sqlx.DB) DeliveryAttemptRepository {
	return &deliveryAttemptRepository{db: db}
}

func (r *deliveryAttemptRepository) Create(ctx context.Context, attempt *domain.DeliveryAttempt) error {
	query := `
		INSERT INTO delivery_attempts (id, notification_id, attempt, channel, outcome, reason, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	return r.db.QueryRowxContext(ctx, query,
		attempt.ID, attempt.NotificationID, attempt.Attempt, attempt.Channel,
		attempt.Outcome, attempt.Reason, attempt.DurationMS,
	).Scan(&attempt.CreatedAt)
}

func (r *deliveryAttemptRepository) ListByNotification(ctx context.Context, notificationID uuid.UUID) ([]domain.DeliveryAttempt, error) {
	query := `
		SELECT * FROM delivery_attempts
		WHERE notification_id = $1
		ORDER BY created_at ASC`

	var attempts []domain.DeliveryAttempt
	err := r.db.SelectContext(ctx, &attempts, query, notificationID)
	return attempts, err
}
