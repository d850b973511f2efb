package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AccountType classifies a money container.
type AccountType string

const (
	AccountCash       AccountType = "CASH"
	AccountBank       AccountType = "BANK"
	AccountEWallet    AccountType = "E_WALLET"
	AccountSavings    AccountType = "SAVINGS"
	AccountInvestment AccountType = "INVESTMENT"
	AccountPostpaid   AccountType = "POSTPAID"
	AccountOther      AccountType = "OTHER"
)

// Valid reports whether t is one of the known account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountCash, AccountBank, AccountEWallet, AccountSavings,
		AccountInvestment, AccountPostpaid, AccountOther:
		return true
	}
	return false
}

// Account is a named money container owned by one user.
// It deliberately has no balance column: the balance is always derived
// from the transaction log plus open receivable/liability exposure.
type Account struct {
	ID       uint        `gorm:"primaryKey"`
	UserID   uint        `gorm:"index;not null"`
	Name     string      `gorm:"size:128;not null"`
	Type     AccountType `gorm:"size:16;index;not null"`
	Currency string      `gorm:"size:8;default:VND"`

	// Credit limit, POSTPAID accounts only. nil means unlimited.
	CreditLimit *decimal.Decimal `gorm:"type:decimal(20,2)"`

	Note      string `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
