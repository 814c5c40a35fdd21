package handler

import "mintlite/internal/service"

type Handlers struct {
	Notification *NotificationHandler
	Budget       *BudgetHandler
	Transaction  *TransactionHandler
	Webhook      *WebhookHandler
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Notification: NewNotificationHandler(services.Notification),
		Budget:       NewBudgetHandler(services.Budget),
		Transaction:  NewTransactionHandler(services.Transaction),
		Webhook:      NewWebhookHandler(services.Notification),
	}
}
