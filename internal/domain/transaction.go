package domain

import (
	"time"

	"github.com/google/uuid"
)

type Transaction struct {
	ID          uuid.UUID `json:"id" db:"id"`
	BudgetID    uuid.UUID `json:"budget_id" db:"budget_id"`
	Category    string    `json:"category" db:"category"`
	AmountCents int64     `json:"amount_cents" db:"amount_cents"`
	Description string    `json:"description" db:"description"`
	OccurredAt  time.Time `json:"occurred_at" db:"occurred_at"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type CreateTransactionInput struct {
	BudgetID    uuid.UUID  `json:"budget_id"`
	Category    string     `json:"category"`
	AmountCents int64      `json:"amount_cents"`
	Description string     `json:"description"`
	OccurredAt  *time.Time `json:"occurred_at,omitempty"`
}

func (in *CreateTransactionInput) Validate() error {
	if in.BudgetID == uuid.Nil {
		return &ValidationError{Field: "budget_id", Reason: "required"}
	}
	if in.Category == "" {
		return &ValidationError{Field: "category", Reason: "required"}
	}
	// Negative amounts are refunds and are allowed; zero is meaningless.
	if in.AmountCents == 0 {
		return &ValidationError{Field: "amount_cents", Reason: "must be non-zero"}
	}
	return nil
}

func NewTransaction(in CreateTransactionInput) *Transaction {
	occurred := time.Now().UTC()
	if in.OccurredAt != nil {
		occurred = in.OccurredAt.UTC()
	}
	return &Transaction{
		ID:          uuid.New(),
		BudgetID:    in.BudgetID,
		Category:    in.Category,
		AmountCents: in.AmountCents,
		Description: in.Description,
		OccurredAt:  occurred,
	}
}
