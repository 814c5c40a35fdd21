package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"mintlite/internal/domain"
)

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	RegisterDevice(ctx context.Context, device *domain.Device) error
	RemoveDevice(ctx context.Context, userID uuid.UUID, token string) error
	ListDeviceTokens(ctx context.Context, userID uuid.UUID) ([]string, error)
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	query := `SELECT * FROM users WHERE id = $1`

	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// RegisterDevice upserts on token so a device that switches accounts is
// reassigned instead of fanning out to its previous owner.
func (r *userRepository) RegisterDevice(ctx context.Context, device *domain.Device) error {
	query := `
		INSERT INTO devices (id, user_id, token, platform)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (token) DO UPDATE
		SET user_id = EXCLUDED.user_id, platform = EXCLUDED.platform
		RETURNING created_at`

	return r.db.QueryRowxContext(ctx, query,
		device.ID, device.UserID, device.Token, device.Platform,
	).Scan(&device.CreatedAt)
}

func (r *userRepository) RemoveDevice(ctx context.Context, userID uuid.UUID, token string) error {
	query := `DELETE FROM devices WHERE user_id = $1 AND token = $2`
	_, err := r.db.ExecContext(ctx, query, userID, token)
	return err
}

func (r *userRepository) ListDeviceTokens(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var tokens []string
	query := `SELECT token FROM devices WHERE user_id = $1 ORDER BY created_at ASC`
	err := r.db.SelectContext(ctx, &tokens, query, userID)
	return tokens, err
}
