package transaction_test

import (
	"context"
	"testing"
	"time"

	"mintlite/internal/domain"
	"mintlite/internal/service/evaluator"
	"mintlite/internal/service/transaction"
	"mintlite/tests/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTransactionService_Create(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	budgetID := uuid.New()
	occurredAt := time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC)
	periodStart := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	b := &domain.Budget{
		ID:          budgetID,
		UserID:      userID,
		Category:    "groceries",
		AmountCents: 50000,
		Period:      domain.PeriodMonthly,
	}
	input := domain.CreateTransactionInput{
		BudgetID:    budgetID,
		Category:    "groceries",
		AmountCents: 4500,
		Description: "weekly shop",
		OccurredAt:  &occurredAt,
	}

	t.Run("Write Then Evaluate", func(t *testing.T) {
		mockTxns := new(mocks.TransactionRepository)
		mockBudgets := new(mocks.BudgetRepository)
		mockNotifs := new(mocks.NotificationService)
		eval := evaluator.New(mockBudgets, mockNotifs, domain.DefaultThresholdBands(),
			[]domain.Channel{domain.ChannelInApp}, zap.NewNop())
		svc := transaction.NewService(mockTxns, mockBudgets, eval)

		// Once for the ownership check, once inside evaluation.
		mockBudgets.On("GetByID", ctx, budgetID).Return(b, nil).Twice()
		mockTxns.On("Create", ctx, mock.MatchedBy(func(txn *domain.Transaction) bool {
			return txn.BudgetID == budgetID && txn.AmountCents == 4500 && txn.OccurredAt.Equal(occurredAt)
		})).Return(nil).Once()
		mockBudgets.On("SumSpent", ctx, budgetID, periodStart, periodEnd).Return(int64(4500), nil).Once()

		txn, err := svc.Create(ctx, userID, input)

		require.NoError(t, err)
		assert.Equal(t, budgetID, txn.BudgetID)
		mockTxns.AssertExpectations(t)
		mockBudgets.AssertExpectations(t)
		mockNotifs.AssertNotCalled(t, "Create")
	})

	t.Run("Evaluation Failure Does Not Fail Write", func(t *testing.T) {
		mockTxns := new(mocks.TransactionRepository)
		mockBudgets := new(mocks.BudgetRepository)
		mockNotifs := new(mocks.NotificationService)
		eval := evaluator.New(mockBudgets, mockNotifs, domain.DefaultThresholdBands(),
			[]domain.Channel{domain.ChannelInApp}, zap.NewNop())
		svc := transaction.NewService(mockTxns, mockBudgets, eval)

		mockBudgets.On("GetByID", ctx, budgetID).Return(b, nil).Twice()
		mockTxns.On("Create", ctx, mock.Anything).Return(nil).Once()
		mockBudgets.On("SumSpent", ctx, budgetID, periodStart, periodEnd).
			Return(int64(0), assert.AnError).Once()

		txn, err := svc.Create(ctx, userID, input)

		require.NoError(t, err)
		assert.NotNil(t, txn)
	})

	t.Run("Foreign Budget Rejected", func(t *testing.T) {
		mockTxns := new(mocks.TransactionRepository)
		mockBudgets := new(mocks.BudgetRepository)
		eval := evaluator.New(mockBudgets, new(mocks.NotificationService),
			domain.DefaultThresholdBands(), []domain.Channel{domain.ChannelInApp}, zap.NewNop())
		svc := transaction.NewService(mockTxns, mockBudgets, eval)

		foreign := *b
		foreign.UserID = uuid.New()
		mockBudgets.On("GetByID", ctx, budgetID).Return(&foreign, nil).Once()

		_, err := svc.Create(ctx, userID, input)

		assert.ErrorIs(t, err, domain.ErrNotFound)
		mockTxns.AssertNotCalled(t, "Create")
	})

	t.Run("Zero Amount Rejected", func(t *testing.T) {
		mockTxns := new(mocks.TransactionRepository)
		mockBudgets := new(mocks.BudgetRepository)
		eval := evaluator.New(mockBudgets, new(mocks.NotificationService),
			domain.DefaultThresholdBands(), []domain.Channel{domain.ChannelInApp}, zap.NewNop())
		svc := transaction.NewService(mockTxns, mockBudgets, eval)

		bad := input
		bad.AmountCents = 0

		_, err := svc.Create(ctx, userID, bad)

		var verr *domain.ValidationError
		assert.ErrorAs(t, err, &verr)
		mockBudgets.AssertNotCalled(t, "GetByID")
	})
}

func TestTransactionService_ListByBudget(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	budgetID := uuid.New()

	b := &domain.Budget{ID: budgetID, UserID: userID, Category: "groceries", AmountCents: 50000, Period: domain.PeriodMonthly}

	t.Run("Paginates", func(t *testing.T) {
		mockTxns := new(mocks.TransactionRepository)
		mockBudgets := new(mocks.BudgetRepository)
		eval := evaluator.New(mockBudgets, new(mocks.NotificationService),
			domain.DefaultThresholdBands(), []domain.Channel{domain.ChannelInApp}, zap.NewNop())
		svc := transaction.NewService(mockTxns, mockBudgets, eval)

		mockBudgets.On("GetByID", ctx, budgetID).Return(b, nil).Once()
		mockTxns.On("ListByBudget", ctx, budgetID, domain.PaginationParams{Page: 1, PageSize: 20}).
			Return([]domain.Transaction{{ID: uuid.New(), BudgetID: budgetID}}, int64(41), nil).Once()

		resp, err := svc.ListByBudget(ctx, userID, budgetID, domain.PaginationParams{})

		require.NoError(t, err)
		assert.Len(t, resp.Data, 1)
		assert.Equal(t, int64(41), resp.TotalItems)
		assert.Equal(t, 3, resp.TotalPages)
		assert.True(t, resp.HasNext)
	})

	t.Run("Foreign Budget Hidden", func(t *testing.T) {
		mockTxns := new(mocks.TransactionRepository)
		mockBudgets := new(mocks.BudgetRepository)
		eval := evaluator.New(mockBudgets, new(mocks.NotificationService),
			domain.DefaultThresholdBands(), []domain.Channel{domain.ChannelInApp}, zap.NewNop())
		svc := transaction.NewService(mockTxns, mockBudgets, eval)

		foreign := *b
		foreign.UserID = uuid.New()
		mockBudgets.On("GetByID", ctx, budgetID).Return(&foreign, nil).Once()

		_, err := svc.ListByBudget(ctx, userID, budgetID, domain.PaginationParams{})

		assert.ErrorIs(t, err, domain.ErrNotFound)
		mockTxns.AssertNotCalled(t, "ListByBudget")
	})
}
