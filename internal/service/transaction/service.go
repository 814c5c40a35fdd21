package transaction

import (
	"context"

	"github.com/google/uuid"

	"mintlite/internal/domain"
	"mintlite/internal/repository"
	"mintlite/internal/service/evaluator"
)

type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input domain.CreateTransactionInput) (*domain.Transaction, error)
	ListByBudget(ctx context.Context, userID, budgetID uuid.UUID, params domain.PaginationParams) (domain.PaginatedResponse[domain.Transaction], error)
}

type service struct {
	txnRepo    repository.TransactionRepository
	budgetRepo repository.BudgetRepository
	evaluator  *evaluator.Evaluator
}

func NewService(txnRepo repository.TransactionRepository, budgetRepo repository.BudgetRepository, eval *evaluator.Evaluator) Service {
	return &service{
		txnRepo:    txnRepo,
		budgetRepo: budgetRepo,
		evaluator:  eval,
	}
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input domain.CreateTransactionInput) (*domain.Transaction, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	budget, err := s.budgetRepo.GetByID(ctx, input.BudgetID)
	if err != nil {
		return nil, err
	}
	if budget.UserID != userID {
		return nil, domain.ErrNotFound
	}

	txn := domain.NewTransaction(input)
	if err := s.txnRepo.Create(ctx, txn); err != nil {
		return nil, err
	}

	// The write has already committed; threshold evaluation only logs on
	// failure and never undoes or fails the transaction.
	s.evaluator.OnTransactionRecorded(ctx, txn)

	return txn, nil
}

func (s *service) ListByBudget(ctx context.Context, userID, budgetID uuid.UUID, params domain.PaginationParams) (domain.PaginatedResponse[domain.Transaction], error) {
	params.Validate()

	budget, err := s.budgetRepo.GetByID(ctx, budgetID)
	if err != nil {
		return domain.PaginatedResponse[domain.Transaction]{}, err
	}
	if budget.UserID != userID {
		return domain.PaginatedResponse[domain.Transaction]{}, domain.ErrNotFound
	}

	txns, total, err := s.txnRepo.ListByBudget(ctx, budgetID, params)
	if err != nil {
		return domain.PaginatedResponse[domain.Transaction]{}, err
	}
	if txns == nil {
		txns = []domain.Transaction{}
	}
	return domain.NewPaginatedResponse(txns, params.Page, params.PageSize, total), nil
}
