package budget

import (
	"context"
	"time"

	"github.com/google/uuid"

	"mintlite/internal/domain"
	"mintlite/internal/repository"
)

type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input domain.CreateBudgetInput) (*domain.Budget, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Budget, error)
	List(ctx context.Context, userID uuid.UUID) ([]domain.Budget, error)
	Status(ctx context.Context, userID, id uuid.UUID, at time.Time) (*domain.BudgetStatus, error)
}

type service struct {
	budgetRepo repository.BudgetRepository
}

func NewService(budgetRepo repository.BudgetRepository) Service {
	return &service{budgetRepo: budgetRepo}
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input domain.CreateBudgetInput) (*domain.Budget, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	budget := domain.NewBudget(userID, input)
	if err := s.budgetRepo.Create(ctx, budget); err != nil {
		return nil, err
	}
	return budget, nil
}

func (s *service) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Budget, error) {
	budget, err := s.budgetRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if budget.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return budget, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]domain.Budget, error) {
	budgets, err := s.budgetRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if budgets == nil {
		budgets = []domain.Budget{}
	}
	return budgets, nil
}

// Status reports spend against the budget for the period containing at,
// along with the highest threshold already alerted in that period.
func (s *service) Status(ctx context.Context, userID, id uuid.UUID, at time.Time) (*domain.BudgetStatus, error) {
	budget, err := s.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	periodStart, periodEnd := budget.Period.BoundsAt(at)

	spent, err := s.budgetRepo.SumSpent(ctx, budget.ID, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}

	var ratio float64
	if budget.AmountCents > 0 {
		ratio = float64(spent) / float64(budget.AmountCents)
	}

	state, err := s.budgetRepo.GetAlertState(ctx, budget.ID, budget.Category, periodStart)
	if err != nil {
		return nil, err
	}

	status := &domain.BudgetStatus{
		Budget:      *budget,
		SpentCents:  spent,
		Ratio:       ratio,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
	}
	if state != nil {
		status.LastNotifiedThreshold = state.LastNotifiedThreshold
	}
	return status, nil
}
