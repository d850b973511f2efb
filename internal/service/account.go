package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/chinhnt-ps/portfolio-be/internal/apperr"
	"github.com/chinhnt-ps/portfolio-be/internal/models"
	"github.com/chinhnt-ps/portfolio-be/internal/util"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AccountService owns account CRUD, balance derivation and the balance
// adjustment workflow.
type AccountService struct {
	db       *gorm.DB
	currency string
}

// AccountView is the derived presentation of an account. Balance fields
// are recomputed from the ledger on every call, never read from a
// stored column.
type AccountView struct {
	ID             uint               `json:"id"`
	Name           string             `json:"name"`
	Type           models.AccountType `json:"type"`
	Currency       string             `json:"currency"`
	CurrentBalance decimal.Decimal    `json:"current_balance"`
	CreditLimit    *decimal.Decimal   `json:"credit_limit,omitempty"`
	CurrentDebt    *decimal.Decimal   `json:"current_debt,omitempty"`
	AvailableLimit *decimal.Decimal   `json:"available_limit,omitempty"`
	Note           string             `json:"note,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

type CreateAccountRequest struct {
	Name           string             `json:"name" binding:"required"`
	Type           models.AccountType `json:"type" binding:"required"`
	Currency       string             `json:"currency"`
	CreditLimit    *decimal.Decimal   `json:"credit_limit"`
	InitialBalance *decimal.Decimal   `json:"initial_balance"`
	Note           string             `json:"note"`
}

type UpdateAccountRequest struct {
	Name        *string             `json:"name"`
	Type        *models.AccountType `json:"type"`
	Currency    *string             `json:"currency"`
	CreditLimit *decimal.Decimal    `json:"credit_limit"`
	Note        *string             `json:"note"`
}

type AdjustBalanceRequest struct {
	ActualBalance *decimal.Decimal `json:"actual_balance" binding:"required"`
	Note          string           `json:"note"`
}

// computeBalance derives the raw signed balance for an account by
// replaying the non-deleted transaction log and then applying the open
// receivable/liability exposure pointing at this account.
//
// The exposure pass exists because creating a receivable/liability with
// a linked account also books an offsetting EXPENSE/INCOME entry; the
// two together make up the opening accounting impact, and settlements
// unwind both sides symmetrically.
func (s *AccountService) computeBalance(tx *gorm.DB, acct *models.Account) (decimal.Decimal, error) {
	balance := decimal.Zero

	var txs []models.Transaction
	if err := tx.Where("account_id = ?", acct.ID).Find(&txs).Error; err != nil {
		return decimal.Zero, fmt.Errorf("load transactions: %w", err)
	}
	for i := range txs {
		t := &txs[i]
		switch t.Type {
		case models.TransactionIncome, models.TransactionReceivableSettlement:
			balance = balance.Add(t.Amount)
		case models.TransactionExpense, models.TransactionLiabilitySettlement:
			balance = balance.Sub(t.Amount)
		case models.TransactionBalanceAdjustment:
			// amount is a signed delta
			balance = balance.Add(t.Amount)
		}
	}

	var outs []models.Transaction
	if err := tx.Where("from_account_id = ? AND type = ?", acct.ID, models.TransactionTransfer).
		Find(&outs).Error; err != nil {
		return decimal.Zero, fmt.Errorf("load outgoing transfers: %w", err)
	}
	for i := range outs {
		balance = balance.Sub(outs[i].Amount)
	}

	var ins []models.Transaction
	if err := tx.Where("to_account_id = ? AND type = ?", acct.ID, models.TransactionTransfer).
		Find(&ins).Error; err != nil {
		return decimal.Zero, fmt.Errorf("load incoming transfers: %w", err)
	}
	for i := range ins {
		balance = balance.Add(ins[i].Amount)
	}

	// Money lent out of this account is conceptually already gone:
	// subtract what the counterparty still owes.
	var receivables []models.Receivable
	if err := tx.Where("account_id = ?", acct.ID).Find(&receivables).Error; err != nil {
		return decimal.Zero, fmt.Errorf("load receivables: %w", err)
	}
	for i := range receivables {
		r := &receivables[i]
		balance = balance.Sub(r.Amount.Sub(r.PaidAmount))
	}

	// Money borrowed into this account is conceptually already here:
	// add back what the user still owes.
	var liabilities []models.Liability
	if err := tx.Where("account_id = ?", acct.ID).Find(&liabilities).Error; err != nil {
		return decimal.Zero, fmt.Errorf("load liabilities: %w", err)
	}
	for i := range liabilities {
		l := &liabilities[i]
		balance = balance.Add(l.Amount.Sub(l.PaidAmount))
	}

	return balance, nil
}

// view derives the presentation of an account, branching on type.
// POSTPAID accounts have no cash semantics: the raw balance is
// presented as debt and the cash balance reports zero.
func (s *AccountService) view(tx *gorm.DB, acct *models.Account) (*AccountView, error) {
	balance, err := s.computeBalance(tx, acct)
	if err != nil {
		return nil, err
	}

	v := &AccountView{
		ID:          acct.ID,
		Name:        acct.Name,
		Type:        acct.Type,
		Currency:    acct.Currency,
		CreditLimit: acct.CreditLimit,
		Note:        acct.Note,
		CreatedAt:   acct.CreatedAt,
		UpdatedAt:   acct.UpdatedAt,
	}

	if acct.Type == models.AccountPostpaid {
		debt := decimal.Zero
		if balance.Sign() < 0 {
			debt = balance.Neg()
		}
		v.CurrentBalance = decimal.Zero
		v.CurrentDebt = &debt
		if acct.CreditLimit != nil {
			available := acct.CreditLimit.Sub(debt)
			if available.Sign() < 0 {
				available = decimal.Zero
			}
			v.AvailableLimit = &available
		}
	} else {
		v.CurrentBalance = balance
	}

	return v, nil
}

func (s *AccountService) find(tx *gorm.DB, userID, id uint) (*models.Account, error) {
	var acct models.Account
	if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&acct).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("account not found")
		}
		return nil, fmt.Errorf("load account: %w", err)
	}
	return &acct, nil
}

func (s *AccountService) existsTx(tx *gorm.DB, userID, id uint) (bool, error) {
	var count int64
	if err := tx.Model(&models.Account{}).
		Where("id = ? AND user_id = ?", id, userID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check account: %w", err)
	}
	return count > 0, nil
}

// Create persists a new account. A non-zero initial balance books an
// opening BALANCE_ADJUSTMENT in the same unit of work; for POSTPAID the
// amount is negated so the opening debt shows as a negative raw
// balance.
func (s *AccountService) Create(userID uint, req CreateAccountRequest) (*AccountView, error) {
	if !req.Type.Valid() {
		return nil, apperr.Validationf("unknown account type %q", req.Type)
	}
	currency := req.Currency
	if currency == "" {
		currency = s.currency
	} else if err := util.ValidateCurrency(currency); err != nil {
		return nil, apperr.Validationf("%v", err)
	}

	var view *AccountView
	err := s.db.Transaction(func(tx *gorm.DB) error {
		acct := models.Account{
			UserID:      userID,
			Name:        req.Name,
			Type:        req.Type,
			Currency:    currency,
			CreditLimit: req.CreditLimit,
			Note:        req.Note,
		}
		if err := tx.Create(&acct).Error; err != nil {
			return fmt.Errorf("create account: %w", err)
		}

		if req.InitialBalance != nil && req.InitialBalance.Sign() != 0 {
			amount := *req.InitialBalance
			note := "Opening balance"
			if acct.Type == models.AccountPostpaid {
				// opening debt makes the raw balance negative
				amount = amount.Neg()
				note = "Opening debt"
			}
			opening := models.Transaction{
				UserID:     userID,
				Type:       models.TransactionBalanceAdjustment,
				Amount:     amount,
				Currency:   acct.Currency,
				OccurredAt: time.Now(),
				AccountID:  &acct.ID,
				Note:       note,
			}
			if err := tx.Create(&opening).Error; err != nil {
				return fmt.Errorf("create opening adjustment: %w", err)
			}
		}

		v, err := s.view(tx, &acct)
		if err != nil {
			return err
		}
		view = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("account created: id=%d user=%d", view.ID, userID)
	return view, nil
}

// Get returns the derived view of one account.
func (s *AccountService) Get(userID, id uint) (*AccountView, error) {
	acct, err := s.find(s.db, userID, id)
	if err != nil {
		return nil, err
	}
	return s.view(s.db, acct)
}

// List returns derived views of the user's accounts, paginated.
func (s *AccountService) List(userID uint, page, size int) ([]AccountView, int64, error) {
	var total int64
	if err := s.db.Model(&models.Account{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count accounts: %w", err)
	}

	var accounts []models.Account
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Limit(size).
		Offset((page - 1) * size).
		Find(&accounts).Error; err != nil {
		return nil, 0, fmt.Errorf("list accounts: %w", err)
	}

	views := make([]AccountView, 0, len(accounts))
	for i := range accounts {
		v, err := s.view(s.db, &accounts[i])
		if err != nil {
			return nil, 0, err
		}
		views = append(views, *v)
	}
	return views, total, nil
}

// Update mutates the descriptive fields of an account.
func (s *AccountService) Update(userID, id uint, req UpdateAccountRequest) (*AccountView, error) {
	var view *AccountView
	err := s.db.Transaction(func(tx *gorm.DB) error {
		acct, err := s.find(tx, userID, id)
		if err != nil {
			return err
		}

		if req.Name != nil {
			acct.Name = *req.Name
		}
		if req.Type != nil {
			if !req.Type.Valid() {
				return apperr.Validationf("unknown account type %q", *req.Type)
			}
			acct.Type = *req.Type
		}
		if req.Currency != nil {
			if err := util.ValidateCurrency(*req.Currency); err != nil {
				return apperr.Validationf("%v", err)
			}
			acct.Currency = *req.Currency
		}
		if req.CreditLimit != nil {
			acct.CreditLimit = req.CreditLimit
		}
		if req.Note != nil {
			acct.Note = *req.Note
		}

		if err := tx.Save(acct).Error; err != nil {
			return fmt.Errorf("save account: %w", err)
		}

		v, err := s.view(tx, acct)
		if err != nil {
			return err
		}
		view = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Delete soft-deletes an account.
func (s *AccountService) Delete(userID, id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		acct, err := s.find(tx, userID, id)
		if err != nil {
			return err
		}
		if err := tx.Delete(acct).Error; err != nil {
			return fmt.Errorf("delete account: %w", err)
		}
		log.Printf("account deleted: id=%d user=%d", id, userID)
		return nil
	})
}

// AdjustBalance reconciles the derived balance to a user-reported
// actual balance by booking a BALANCE_ADJUSTMENT whose amount is the
// signed delta. POSTPAID accounts are rejected: adjustment is undefined
// for debt-style accounts.
func (s *AccountService) AdjustBalance(userID, id uint, req AdjustBalanceRequest) (*AccountView, error) {
	if req.ActualBalance == nil {
		return nil, apperr.Validationf("actual_balance is required")
	}

	var view *AccountView
	err := s.db.Transaction(func(tx *gorm.DB) error {
		acct, err := s.find(tx, userID, id)
		if err != nil {
			return err
		}

		if acct.Type == models.AccountPostpaid {
			return apperr.Businessf("balance adjustment is not supported for POSTPAID accounts")
		}
		if req.ActualBalance.Sign() < 0 {
			return apperr.Businessf("actual balance must be >= 0")
		}

		current, err := s.computeBalance(tx, acct)
		if err != nil {
			return err
		}

		delta := req.ActualBalance.Sub(current)
		if delta.Sign() == 0 {
			return apperr.Businessf("current balance already matches the actual balance")
		}

		adjustment := models.Transaction{
			UserID:     userID,
			Type:       models.TransactionBalanceAdjustment,
			Amount:     delta,
			Currency:   acct.Currency,
			OccurredAt: time.Now(),
			AccountID:  &acct.ID,
			Note:       buildAdjustmentNote(req.Note, current, *req.ActualBalance),
		}
		if err := tx.Create(&adjustment).Error; err != nil {
			return fmt.Errorf("create adjustment: %w", err)
		}
		log.Printf("balance adjustment created: tx=%d account=%d delta=%s",
			adjustment.ID, acct.ID, delta.String())

		v, err := s.view(tx, acct)
		if err != nil {
			return err
		}
		view = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func buildAdjustmentNote(note string, before, after decimal.Decimal) string {
	base := fmt.Sprintf("[Balance adjustment] from %s to %s", before.String(), after.String())
	if note == "" {
		return base
	}
	return base + " - " + note
}
