package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Liability is money the user owes a counterparty. Mirror of Receivable
// with the opposite cash-flow direction.
type Liability struct {
	ID               uint   `gorm:"primaryKey"`
	UserID           uint   `gorm:"index;not null"`
	CounterpartyName string `gorm:"size:128;not null"`

	Amount   decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	Currency string          `gorm:"size:8;default:VND"`

	OccurredAt time.Time
	DueAt      *time.Time

	// The account the borrowed money arrived at, if any.
	AccountID *uint `gorm:"index"`

	Status DebtStatus `gorm:"size:16;index"`

	// Denormalized cache, see Receivable.PaidAmount.
	PaidAmount decimal.Decimal `gorm:"type:decimal(20,2)"`

	Note      string `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
