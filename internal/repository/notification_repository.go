package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"mintlite/internal/domain"
)

// claimEligible matches rows a worker may claim: due, still pending, and
// either never claimed or held under a lease that has already expired.
const claimEligible = `
	status = 'PENDING'
	AND scheduled_at <= NOW()
	AND (claim_expires_at IS NULL OR claim_expires_at < NOW())`

type NotificationRepository interface {
	Create(ctx context.Context, notif *domain.Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error)
	GetByProviderMessageID(ctx context.Context, providerMessageID string) (*domain.Notification, error)
	ListByUser(ctx context.Context, userID uuid.UUID, filter domain.NotificationFilter, params domain.PaginationParams) ([]domain.Notification, int64, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) (int64, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	CountPending(ctx context.Context) (int64, error)

	ClaimNext(ctx context.Context, workerID string, leaseTTL time.Duration) (*domain.Notification, error)
	MarkSent(ctx context.Context, id uuid.UUID, workerID string, providerMessageID *string) error
	ReleaseForRetry(ctx context.Context, id uuid.UUID, workerID string, retryCount int, scheduledAt time.Time, reason string) error
	MarkFailed(ctx context.Context, id uuid.UUID, workerID string, retryCount int, reason string) error
	MarkBounced(ctx context.Context, id uuid.UUID, workerID string, reason string) error

	FeedbackDelivered(ctx context.Context, id uuid.UUID) error
	FeedbackBounced(ctx context.Context, id uuid.UUID, reason string) error
	FeedbackFailed(ctx context.Context, id uuid.UUID, reason string) error
}

type notificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notif *domain.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, type, priority, title, message, data, channel, status, retry_count, scheduled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`

	return r.db.QueryRowxContext(ctx, query,
		notif.ID, notif.UserID, notif.Type, notif.Priority, notif.Title, notif.Message,
		notif.Data, notif.Channel, notif.Status, notif.RetryCount, notif.ScheduledAt,
	).Scan(&notif.CreatedAt, &notif.UpdatedAt)
}

func (r *notificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	var notif domain.Notification
	query := `SELECT * FROM notifications WHERE id = $1`

	err := r.db.GetContext(ctx, &notif, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &notif, nil
}

func (r *notificationRepository) GetByProviderMessageID(ctx context.Context, providerMessageID string) (*domain.Notification, error) {
	var notif domain.Notification
	query := `SELECT * FROM notifications WHERE provider_message_id = $1`

	err := r.db.GetContext(ctx, &notif, query, providerMessageID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &notif, nil
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, filter domain.NotificationFilter, params domain.PaginationParams) ([]domain.Notification, int64, error) {
	params.Validate()

	conditions := []string{"user_id = $1"}
	args := []interface{}{userID}

	if filter.Type != nil {
		args = append(args, *filter.Type)
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Channel != nil {
		args = append(args, *filter.Channel)
		conditions = append(conditions, fmt.Sprintf("channel = $%d", len(args)))
	}
	if filter.UnreadOnly {
		conditions = append(conditions, "status = 'SENT'")
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	where := strings.Join(conditions, " AND ")

	var total int64
	countQuery := `SELECT COUNT(*) FROM notifications WHERE ` + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	args = append(args, params.PageSize, params.Offset())
	query := fmt.Sprintf(`
		SELECT * FROM notifications
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	var notifications []domain.Notification
	err := r.db.SelectContext(ctx, &notifications, query, args...)
	return notifications, total, err
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, userID uuid.UUID) (int64, error) {
	query := `
		UPDATE notifications
		SET status = 'READ', read_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND status = 'SENT'`

	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `
		UPDATE notifications
		SET status = 'READ', read_at = NOW(), updated_at = NOW()
		WHERE user_id = $1 AND status = 'SENT'`

	res, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND status = 'SENT'`
	err := r.db.GetContext(ctx, &count, query, userID)
	return count, err
}

func (r *notificationRepository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM notifications WHERE status = 'PENDING'`
	err := r.db.GetContext(ctx, &count, query)
	return count, err
}

// ClaimNext leases the highest-priority due notification to workerID.
// FOR UPDATE SKIP LOCKED keeps concurrent workers from blocking on or
// double-claiming the same row. Returns domain.ErrNotFound when the
// queue has nothing eligible.
func (r *notificationRepository) ClaimNext(ctx context.Context, workerID string, leaseTTL time.Duration) (*domain.Notification, error) {
	query := `
		UPDATE notifications
		SET claimed_by = $1, claim_expires_at = $2, updated_at = NOW()
		WHERE id = (
			SELECT id FROM notifications
			WHERE ` + claimEligible + `
			ORDER BY
				CASE priority
					WHEN 'URGENT' THEN 4
					WHEN 'HIGH' THEN 3
					WHEN 'MEDIUM' THEN 2
					ELSE 1
				END DESC,
				created_at ASC
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		)
		RETURNING *`

	var notif domain.Notification
	err := r.db.GetContext(ctx, &notif, query, workerID, time.Now().UTC().Add(leaseTTL))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &notif, nil
}

func (r *notificationRepository) MarkSent(ctx context.Context, id uuid.UUID, workerID string, providerMessageID *string) error {
	query := `
		UPDATE notifications
		SET status = 'SENT', sent_at = NOW(), provider_message_id = $3,
		    claimed_by = NULL, claim_expires_at = NULL, updated_at = NOW()
		WHERE id = $1 AND claimed_by = $2 AND status = 'PENDING'`

	return r.guarded(ctx, query, id, workerID, providerMessageID)
}

func (r *notificationRepository) ReleaseForRetry(ctx context.Context, id uuid.UUID, workerID string, retryCount int, scheduledAt time.Time, reason string) error {
	query := `
		UPDATE notifications
		SET retry_count = $3, scheduled_at = $4, failure_reason = $5,
		    claimed_by = NULL, claim_expires_at = NULL, updated_at = NOW()
		WHERE id = $1 AND claimed_by = $2 AND status = 'PENDING'`

	return r.guarded(ctx, query, id, workerID, retryCount, scheduledAt, reason)
}

func (r *notificationRepository) MarkFailed(ctx context.Context, id uuid.UUID, workerID string, retryCount int, reason string) error {
	query := `
		UPDATE notifications
		SET status = 'FAILED', retry_count = $3, failure_reason = $4,
		    claimed_by = NULL, claim_expires_at = NULL, updated_at = NOW()
		WHERE id = $1 AND claimed_by = $2 AND status = 'PENDING'`

	return r.guarded(ctx, query, id, workerID, retryCount, reason)
}

func (r *notificationRepository) MarkBounced(ctx context.Context, id uuid.UUID, workerID string, reason string) error {
	query := `
		UPDATE notifications
		SET status = 'BOUNCED', failure_reason = $3, sent_at = NULL,
		    claimed_by = NULL, claim_expires_at = NULL, updated_at = NOW()
		WHERE id = $1 AND claimed_by = $2 AND status = 'PENDING'`

	return r.guarded(ctx, query, id, workerID, reason)
}

// guarded runs a claim-fenced transition. Zero rows means another worker
// re-claimed the row after this worker's lease expired.
func (r *notificationRepository) guarded(ctx context.Context, query string, id uuid.UUID, workerID string, rest ...interface{}) error {
	args := append([]interface{}{id, workerID}, rest...)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrClaimLost
	}
	return nil
}

func (r *notificationRepository) FeedbackDelivered(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE notifications
		SET status = 'SENT', sent_at = COALESCE(sent_at, NOW()), updated_at = NOW()
		WHERE id = $1 AND status IN ('PENDING', 'SENT')`

	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *notificationRepository) FeedbackBounced(ctx context.Context, id uuid.UUID, reason string) error {
	query := `
		UPDATE notifications
		SET status = 'BOUNCED', failure_reason = $2, sent_at = NULL, updated_at = NOW()
		WHERE id = $1 AND status = 'SENT'`

	_, err := r.db.ExecContext(ctx, query, id, reason)
	return err
}

func (r *notificationRepository) FeedbackFailed(ctx context.Context, id uuid.UUID, reason string) error {
	query := `
		UPDATE notifications
		SET status = 'FAILED', failure_reason = $2, sent_at = NULL, updated_at = NOW()
		WHERE id = $1 AND status IN ('PENDING', 'SENT')`

	_, err := r.db.ExecContext(ctx, query, id, reason)
	return err
}
