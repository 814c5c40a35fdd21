package mocks

import (
	"context"
	"mintlite/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type TransactionRepository struct {
	mock.Mock
}

func (m *TransactionRepository) Create(ctx context.Context, txn *domain.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *TransactionRepository) ListByBudget(ctx context.Context, budgetID uuid.UUID, params domain.PaginationParams) ([]domain.Transaction, int64, error) {
	args := m.Called(ctx, budgetID, params)
	return args.Get(0).([]domain.Transaction), args.Get(1).(int64), args.Error(2)
}
