package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionType classifies a ledger entry.
type TransactionType string

const (
	TransactionExpense              TransactionType = "EXPENSE"
	TransactionIncome               TransactionType = "INCOME"
	TransactionTransfer             TransactionType = "TRANSFER"
	TransactionReceivableSettlement TransactionType = "RECEIVABLE_SETTLEMENT"
	TransactionLiabilitySettlement  TransactionType = "LIABILITY_SETTLEMENT"
	TransactionBalanceAdjustment    TransactionType = "BALANCE_ADJUSTMENT"
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionExpense, TransactionIncome, TransactionTransfer,
		TransactionReceivableSettlement, TransactionLiabilitySettlement,
		TransactionBalanceAdjustment:
		return true
	}
	return false
}

// Transaction is a single ledger entry. Amount is unsigned for every
// type except BALANCE_ADJUSTMENT, where it is a signed delta so that a
// single replay pass can apply it without a direction branch.
type Transaction struct {
	ID       uint            `gorm:"primaryKey"`
	UserID   uint            `gorm:"index;not null"`
	Type     TransactionType `gorm:"size:32;index;not null"`
	Amount   decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	Currency string          `gorm:"size:8;default:VND"`

	OccurredAt time.Time `gorm:"index"`

	// single-account types
	AccountID *uint `gorm:"index"`
	// TRANSFER only
	FromAccountID *uint `gorm:"index"`
	ToAccountID   *uint `gorm:"index"`

	CategoryID *uint `gorm:"index"`

	// settlement types: exactly one of these is set
	ReceivableID *uint `gorm:"index"`
	LiabilityID  *uint `gorm:"index"`
	// back-reference populated after the paired Settlement is created
	SettlementID *uint `gorm:"index"`

	Note          string   `gorm:"type:text"`
	AttachmentIDs []string `gorm:"serializer:json"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
