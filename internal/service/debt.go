package service

import (
	"time"

	"github.com/chinhnt-ps/portfolio-be/internal/models"

	"github.com/shopspring/decimal"
)

// DebtView is the derived presentation of a receivable or liability.
type DebtView struct {
	ID               uint              `json:"id"`
	CounterpartyName string            `json:"counterparty_name"`
	Amount           decimal.Decimal   `json:"amount"`
	Currency         string            `json:"currency"`
	OccurredAt       time.Time         `json:"occurred_at"`
	DueAt            *time.Time        `json:"due_at,omitempty"`
	AccountID        *uint             `json:"account_id,omitempty"`
	Status           models.DebtStatus `json:"status"`
	PaidAmount       decimal.Decimal   `json:"paid_amount"`
	RemainingAmount  decimal.Decimal   `json:"remaining_amount"`
	Note             string            `json:"note,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// deriveDebtStatus recomputes the status from paid amount and due date.
// A past due date takes precedence over partial payment; a fully paid
// record is PAID regardless of date.
func deriveDebtStatus(amount, paid decimal.Decimal, dueAt *time.Time, now time.Time) models.DebtStatus {
	overdue := dueAt != nil && now.After(*dueAt)

	switch {
	case paid.Cmp(amount) >= 0:
		return models.DebtPaid
	case paid.Sign() == 0 && overdue:
		return models.DebtOverdue
	case paid.Sign() == 0:
		return models.DebtOpen
	case overdue:
		return models.DebtOverdue
	default:
		return models.DebtPartiallyPaid
	}
}

// CreateDebtRequest is shared by receivable and liability creation.
type CreateDebtRequest struct {
	CounterpartyName string           `json:"counterparty_name" binding:"required"`
	Amount           *decimal.Decimal `json:"amount" binding:"required"`
	Currency         string           `json:"currency"`
	OccurredAt       string           `json:"occurred_at"`
	DueAt            string           `json:"due_at"`
	AccountID        *uint            `json:"account_id"`
	Note             string           `json:"note"`
}

// UpdateDebtRequest carries the mutable fields; nil means unchanged.
type UpdateDebtRequest struct {
	CounterpartyName *string          `json:"counterparty_name"`
	Amount           *decimal.Decimal `json:"amount"`
	Currency         *string          `json:"currency"`
	OccurredAt       *string          `json:"occurred_at"`
	DueAt            *string          `json:"due_at"`
	AccountID        *uint            `json:"account_id"`
	Note             *string          `json:"note"`
}
