package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"mintlite/internal/domain"
)

type TransactionRepository interface {
	Create(ctx context.Context, txn *domain.Transaction) error
	ListByBudget(ctx context.Context, budgetID uuid.UUID, params domain.PaginationParams) ([]domain.Transaction, int64, error)
}

type transactionRepository struct {
	db *sqlx.DB
}

func NewTransactionRepository(db *sqlx.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, txn *domain.Transaction) error {
	query := `
		INSERT INTO transactions (id, budget_id, category, amount_cents, description, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	return r.db.QueryRowxContext(ctx, query,
		txn.ID, txn.BudgetID, txn.Category, txn.AmountCents, txn.Description, txn.OccurredAt,
	).Scan(&txn.CreatedAt)
}

func (r *transactionRepository) ListByBudget(ctx context.Context, budgetID uuid.UUID, params domain.PaginationParams) ([]domain.Transaction, int64, error) {
	params.Validate()

	var total int64
	countQuery := `SELECT COUNT(*) FROM transactions WHERE budget_id = $1`
	if err := r.db.GetContext(ctx, &total, countQuery, budgetID); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT * FROM transactions
		WHERE budget_id = $1
		ORDER BY occurred_at DESC
		LIMIT $2 OFFSET $3`

	var txns []domain.Transaction
	err := r.db.SelectContext(ctx, &txns, query, budgetID, params.PageSize, params.Offset())
	return txns, total, err
}
