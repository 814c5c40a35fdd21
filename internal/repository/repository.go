package repository

import (
	"github.com/jmoiron/sqlx"
)

type Repositories struct {
	Notification    NotificationRepository
	Budget          BudgetRepository
	Transaction     TransactionRepository
	User            UserRepository
	DeliveryAttempt DeliveryAttemptRepository
}

func NewRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		Notification:    NewNotificationRepository(db),
		Budget:          NewBudgetRepository(db),
		Transaction:     NewTransactionRepository(db),
		User:            NewUserRepository(db),
		DeliveryAttempt: NewDeliveryAttemptRepository(db),
	}
}
