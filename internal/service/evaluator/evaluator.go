package evaluator

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"mintlite/internal/domain"
	"mintlite/internal/pkg/metrics"
	"mintlite/internal/repository"
	"mintlite/internal/service/notification"
)

// Evaluator re-checks a budget's spend against its threshold bands whenever a
// transaction lands, and enqueues alert notifications for newly crossed
// thresholds. Evaluation is best effort: it must never fail the transaction
// write that triggered it, so every error is logged and swallowed here.
type Evaluator struct {
	budgetRepo repository.BudgetRepository
	notifs     notification.Service
	bands      []domain.ThresholdBand
	channels   []domain.Channel
	logger     *zap.Logger
}

func New(
	budgetRepo repository.BudgetRepository,
	notifs notification.Service,
	bands []domain.ThresholdBand,
	channels []domain.Channel,
	logger *zap.Logger,
) *Evaluator {
	return &Evaluator{
		budgetRepo: budgetRepo,
		notifs:     notifs,
		bands:      bands,
		channels:   channels,
		logger:     logger,
	}
}

func (e *Evaluator) OnTransactionRecorded(ctx context.Context, txn *domain.Transaction) {
	budget, err := e.budgetRepo.GetByID(ctx, txn.BudgetID)
	if err != nil {
		e.logger.Warn("budget evaluation: load budget",
			zap.String("budget_id", txn.BudgetID.String()), zap.Error(err))
		metrics.IncBudgetEvaluation("error")
		return
	}

	if budget.AmountCents <= 0 {
		e.logger.Warn("budget evaluation skipped",
			zap.Error(&domain.EvaluationError{BudgetID: budget.ID, Reason: "allocated amount is zero"}))
		metrics.IncBudgetEvaluation("skipped")
		return
	}

	periodStart, periodEnd := budget.Period.BoundsAt(txn.OccurredAt)

	spent, err := e.budgetRepo.SumSpent(ctx, budget.ID, periodStart, periodEnd)
	if err != nil {
		e.logger.Warn("budget evaluation: sum spend",
			zap.String("budget_id", budget.ID.String()), zap.Error(err))
		metrics.IncBudgetEvaluation("error")
		return
	}

	ratio := float64(spent) / float64(budget.AmountCents)

	band, crossed := domain.HighestCrossedBand(e.bands, ratio)
	if !crossed {
		metrics.IncBudgetEvaluation("no_change")
		return
	}

	// Concurrent evaluations of the same period race here; exactly one wins
	// per threshold, so each threshold alerts once per period.
	advanced, err := e.budgetRepo.TryAdvanceThreshold(ctx, budget.ID, budget.Category, periodStart, band.Percent)
	if err != nil {
		e.logger.Warn("budget evaluation: advance threshold",
			zap.String("budget_id", budget.ID.String()), zap.Error(err))
		metrics.IncBudgetEvaluation("error")
		return
	}
	if !advanced {
		metrics.IncBudgetEvaluation("no_change")
		return
	}

	data, _ := json.Marshal(domain.BudgetAlertData{
		BudgetID:  budget.ID,
		Category:  budget.Category,
		Threshold: band.Percent,
		Spent:     spent,
		Amount:    budget.AmountCents,
	})

	title, message := alertCopy(band, budget, spent, ratio)

	input := domain.CreateNotificationInput{
		UserID:   budget.UserID,
		Type:     band.Type,
		Priority: band.Priority,
		Title:    title,
		Message:  message,
		Data:     data,
		Channels: e.channels,
	}
	if _, err := e.notifs.Create(ctx, input); err != nil {
		e.logger.Error("budget evaluation: enqueue alert",
			zap.String("budget_id", budget.ID.String()),
			zap.Int("threshold", band.Percent),
			zap.Error(err))
		metrics.IncBudgetEvaluation("error")
		return
	}

	e.logger.Info("budget alert enqueued",
		zap.String("budget_id", budget.ID.String()),
		zap.String("category", budget.Category),
		zap.Int("threshold", band.Percent),
		zap.Int64("spent_cents", spent))
	metrics.IncBudgetEvaluation("crossed")
}

func alertCopy(band domain.ThresholdBand, budget *domain.Budget, spent int64, ratio float64) (title, message string) {
	switch band.Type {
	case domain.NotifBudgetExceeded:
		title = fmt.Sprintf("Budget exceeded: %s", budget.Category)
		message = fmt.Sprintf("You have spent $%.2f of your $%.2f %s budget.",
			dollars(spent), dollars(budget.AmountCents), budget.Category)
	case domain.NotifBudgetWarning:
		title = fmt.Sprintf("Budget warning: %s", budget.Category)
		message = fmt.Sprintf("You have used %d%% of your %s budget: $%.2f of $%.2f.",
			int(ratio*100), budget.Category, dollars(spent), dollars(budget.AmountCents))
	default:
		title = fmt.Sprintf("Budget alert: %s", budget.Category)
		message = fmt.Sprintf("Spending on %s crossed %d%% of budget: $%.2f of $%.2f.",
			budget.Category, band.Percent, dollars(spent), dollars(budget.AmountCents))
	}
	return title, message
}

func dollars(cents int64) float64 {
	return float64(cents) / 100
}
