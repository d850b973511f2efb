package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SettlementType discriminates which kind of debt record a settlement
// applies to.
type SettlementType string

const (
	SettlementReceivable SettlementType = "RECEIVABLE"
	SettlementLiability  SettlementType = "LIABILITY"
)

// Settlement is one payment event applied against exactly one
// Receivable or one Liability. Exactly one of ReceivableID/LiabilityID
// is set, matching Type.
type Settlement struct {
	ID     uint           `gorm:"primaryKey"`
	UserID uint           `gorm:"index;not null"`
	Type   SettlementType `gorm:"size:16;index;not null"`

	ReceivableID *uint `gorm:"index"`
	LiabilityID  *uint `gorm:"index"`

	// Set when the settlement was auto-created from a transaction.
	TransactionID *uint `gorm:"index"`
	// The account the payment moved through, if any.
	AccountID *uint `gorm:"index"`

	Amount   decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	Currency string          `gorm:"size:8;default:VND"`

	OccurredAt time.Time
	Note       string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
