package mocks

import (
	"context"
	"mintlite/internal/domain"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type BudgetRepository struct {
	mock.Mock
}

func (m *BudgetRepository) Create(ctx context.Context, budget *domain.Budget) error {
	args := m.Called(ctx, budget)
	return args.Error(0)
}

func (m *BudgetRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Budget, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Budget), args.Error(1)
}

func (m *BudgetRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Budget, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Budget), args.Error(1)
}

func (m *BudgetRepository) SumSpent(ctx context.Context, budgetID uuid.UUID, from, to time.Time) (int64, error) {
	args := m.Called(ctx, budgetID, from, to)
	return args.Get(0).(int64), args.Error(1)
}

func (m *BudgetRepository) GetAlertState(ctx context.Context, budgetID uuid.UUID, category string, periodStart time.Time) (*domain.BudgetAlertState, error) {
	args := m.Called(ctx, budgetID, category, periodStart)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BudgetAlertState), args.Error(1)
}

func (m *BudgetRepository) TryAdvanceThreshold(ctx context.Context, budgetID uuid.UUID, category string, periodStart time.Time, threshold int) (bool, error) {
	args := m.Called(ctx, budgetID, category, periodStart, threshold)
	return args.Bool(0), args.Error(1)
}
