package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DebtStatus is the derived repayment state of a receivable or liability.
// It is recomputed on every read and mutation, never trusted as stored.
type DebtStatus string

const (
	DebtOpen          DebtStatus = "OPEN"
	DebtPartiallyPaid DebtStatus = "PARTIALLY_PAID"
	DebtPaid          DebtStatus = "PAID"
	DebtOverdue       DebtStatus = "OVERDUE"
)

// Receivable is money a counterparty owes the user.
type Receivable struct {
	ID               uint   `gorm:"primaryKey"`
	UserID           uint   `gorm:"index;not null"`
	CounterpartyName string `gorm:"size:128;not null"`

	// Original amount, immutable in spirit after creation.
	Amount   decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	Currency string          `gorm:"size:8;default:VND"`

	OccurredAt time.Time
	DueAt      *time.Time

	// The account the money originally left from, if any.
	AccountID *uint `gorm:"index"`

	Status DebtStatus `gorm:"size:16;index"`

	// Denormalized cache. The source of truth is the sum of the
	// non-deleted settlements referencing this receivable.
	PaidAmount decimal.Decimal `gorm:"type:decimal(20,2)"`

	Note      string `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
