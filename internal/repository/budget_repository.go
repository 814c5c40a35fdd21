package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"mintlite/internal/domain"
)

type BudgetRepository interface {
	Create(ctx context.Context, budget *domain.Budget) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Budget, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Budget, error)
	SumSpent(ctx context.Context, budgetID uuid.UUID, from, to time.Time) (int64, error)
	GetAlertState(ctx context.Context, budgetID uuid.UUID, category string, periodStart time.Time) (*domain.BudgetAlertState, error)
	TryAdvanceThreshold(ctx context.Context, budgetID uuid.UUID, category string, periodStart time.Time, threshold int) (bool, error)
}

type budgetRepository struct {
	db *sqlx.DB
}

func NewBudgetRepository(db *sqlx.DB) BudgetRepository {
	return &budgetRepository{db: db}
}

func (r *budgetRepository) Create(ctx context.Context, budget *domain.Budget) error {
	query := `
		INSERT INTO budgets (id, user_id, category, amount_cents, period)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	return r.db.QueryRowxContext(ctx, query,
		budget.ID, budget.UserID, budget.Category, budget.AmountCents, budget.Period,
	).Scan(&budget.CreatedAt, &budget.UpdatedAt)
}

func (r *budgetRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Budget, error) {
	var budget domain.Budget
	query := `SELECT * FROM budgets WHERE id = $1`

	err := r.db.GetContext(ctx, &budget, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &budget, nil
}

func (r *budgetRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Budget, error) {
	query := `SELECT * FROM budgets WHERE user_id = $1 ORDER BY created_at DESC`
	var budgets []domain.Budget
	err := r.db.SelectContext(ctx, &budgets, query, userID)
	return budgets, err
}

func (r *budgetRepository) SumSpent(ctx context.Context, budgetID uuid.UUID, from, to time.Time) (int64, error) {
	var total int64
	query := `
		SELECT COALESCE(SUM(amount_cents), 0) FROM transactions
		WHERE budget_id = $1 AND occurred_at >= $2 AND occurred_at < $3`

	err := r.db.GetContext(ctx, &total, query, budgetID, from, to)
	return total, err
}

// GetAlertState returns nil without error when no threshold has been
// recorded for the period yet.
func (r *budgetRepository) GetAlertState(ctx context.Context, budgetID uuid.UUID, category string, periodStart time.Time) (*domain.BudgetAlertState, error) {
	var state domain.BudgetAlertState
	query := `
		SELECT * FROM budget_alert_states
		WHERE budget_id = $1 AND category = $2 AND period_start = $3`

	err := r.db.GetContext(ctx, &state, query, budgetID, category, periodStart)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// TryAdvanceThreshold records that threshold has been notified for the
// period, but only if it is higher than what was already recorded. The
// conditional upsert makes concurrent evaluators agree on a single
// winner per threshold crossing: exactly one caller sees true.
func (r *budgetRepository) TryAdvanceThreshold(ctx context.Context, budgetID uuid.UUID, category string, periodStart time.Time, threshold int) (bool, error) {
	query := `
		INSERT INTO budget_alert_states (budget_id, category, period_start, last_notified_threshold, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (budget_id, category, period_start) DO UPDATE
		SET last_notified_threshold = EXCLUDED.last_notified_threshold, updated_at = NOW()
		WHERE budget_alert_states.last_notified_threshold < EXCLUDED.last_notified_threshold`

	res, err := r.db.ExecContext(ctx, query, budgetID, category, periodStart, threshold)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}
