package service

import (
	"go.uber.org/zap"

	"mintlite/internal/config"
	"mintlite/internal/domain"
	"mintlite/internal/repository"
	"mintlite/internal/service/budget"
	"mintlite/internal/service/evaluator"
	"mintlite/internal/service/notification"
	"mintlite/internal/service/transaction"
)

type Services struct {
	Notification notification.Service
	Budget       budget.Service
	Transaction  transaction.Service
	Evaluator    *evaluator.Evaluator
}

func NewServices(repos *repository.Repositories, cfg *config.Config, logger *zap.Logger) *Services {
	bands, err := domain.ParseThresholdBands(cfg.ThresholdBands)
	if err != nil {
		logger.Warn("invalid THRESHOLD_BANDS, using defaults", zap.Error(err))
		bands = domain.DefaultThresholdBands()
	}

	alertChannels, err := domain.ParseChannels(cfg.AlertChannels)
	if err != nil {
		logger.Warn("invalid ALERT_CHANNELS, using all channels", zap.Error(err))
		alertChannels = []domain.Channel{domain.ChannelInApp, domain.ChannelEmail, domain.ChannelPush}
	}

	notificationService := notification.NewService(repos.Notification, repos.User)
	budgetEvaluator := evaluator.New(repos.Budget, notificationService, bands, alertChannels, logger)
	budgetService := budget.NewService(repos.Budget)
	transactionService := transaction.NewService(repos.Transaction, repos.Budget, budgetEvaluator)

	return &Services{
		Notification: notificationService,
		Budget:       budgetService,
		Transaction:  transactionService,
		Evaluator:    budgetEvaluator,
	}
}
