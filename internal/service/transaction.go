package service

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/chinhnt-ps/portfolio-be/internal/apperr"
	"github.com/chinhnt-ps/portfolio-be/internal/models"
	"github.com/chinhnt-ps/portfolio-be/internal/util"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionService validates and persists transactions. For the two
// settlement-flavored types it also creates the paired settlement and
// writes the back-reference, all inside one unit of work.
type TransactionService struct {
	db          *gorm.DB
	currency    string
	settlements *SettlementService
}

// TransactionView is the presentation of one ledger entry.
type TransactionView struct {
	ID            uint                   `json:"id"`
	Type          models.TransactionType `json:"type"`
	Amount        decimal.Decimal        `json:"amount"`
	Currency      string                 `json:"currency"`
	OccurredAt    time.Time              `json:"occurred_at"`
	AccountID     *uint                  `json:"account_id,omitempty"`
	FromAccountID *uint                  `json:"from_account_id,omitempty"`
	ToAccountID   *uint                  `json:"to_account_id,omitempty"`
	CategoryID    *uint                  `json:"category_id,omitempty"`
	ReceivableID  *uint                  `json:"receivable_id,omitempty"`
	LiabilityID   *uint                  `json:"liability_id,omitempty"`
	SettlementID  *uint                  `json:"settlement_id,omitempty"`
	Note          string                 `json:"note,omitempty"`
	AttachmentIDs []string               `json:"attachment_ids,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

type CreateTransactionRequest struct {
	Type          models.TransactionType `json:"type" binding:"required"`
	Amount        *decimal.Decimal       `json:"amount" binding:"required"`
	Currency      string                 `json:"currency"`
	OccurredAt    string                 `json:"occurred_at"`
	AccountID     *uint                  `json:"account_id"`
	FromAccountID *uint                  `json:"from_account_id"`
	ToAccountID   *uint                  `json:"to_account_id"`
	CategoryID    *uint                  `json:"category_id"`
	ReceivableID  *uint                  `json:"receivable_id"`
	LiabilityID   *uint                  `json:"liability_id"`
	Note          string                 `json:"note"`
	AttachmentIDs []string               `json:"attachment_ids"`
}

type UpdateTransactionRequest struct {
	Type          *models.TransactionType `json:"type"`
	Amount        *decimal.Decimal        `json:"amount"`
	Currency      *string                 `json:"currency"`
	OccurredAt    *string                 `json:"occurred_at"`
	AccountID     *uint                   `json:"account_id"`
	FromAccountID *uint                   `json:"from_account_id"`
	ToAccountID   *uint                   `json:"to_account_id"`
	CategoryID    *uint                   `json:"category_id"`
	ReceivableID  *uint                   `json:"receivable_id"`
	LiabilityID   *uint                   `json:"liability_id"`
	Note          *string                 `json:"note"`
	AttachmentIDs []string                `json:"attachment_ids"`
}

// TransactionFilters narrows List results.
type TransactionFilters struct {
	Type       models.TransactionType
	AccountID  *uint // matches account_id, from_account_id or to_account_id
	CategoryID *uint
	Start      *time.Time
	End        *time.Time
	MinAmount  *decimal.Decimal
	MaxAmount  *decimal.Decimal
	Keyword    string
	Sort       string // date_desc (default), date_asc, amount_desc, amount_asc
}

func toTransactionView(t *models.Transaction) TransactionView {
	return TransactionView{
		ID:            t.ID,
		Type:          t.Type,
		Amount:        t.Amount,
		Currency:      t.Currency,
		OccurredAt:    t.OccurredAt,
		AccountID:     t.AccountID,
		FromAccountID: t.FromAccountID,
		ToAccountID:   t.ToAccountID,
		CategoryID:    t.CategoryID,
		ReceivableID:  t.ReceivableID,
		LiabilityID:   t.LiabilityID,
		SettlementID:  t.SettlementID,
		Note:          t.Note,
		AttachmentIDs: t.AttachmentIDs,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

func (s *TransactionService) find(tx *gorm.DB, userID, id uint) (*models.Transaction, error) {
	var t models.Transaction
	if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("transaction not found")
		}
		return nil, fmt.Errorf("load transaction: %w", err)
	}
	return &t, nil
}

func (s *TransactionService) accountExists(tx *gorm.DB, userID, id uint) (bool, error) {
	var count int64
	if err := tx.Model(&models.Account{}).
		Where("id = ? AND user_id = ?", id, userID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check account: %w", err)
	}
	return count > 0, nil
}

func (s *TransactionService) categoryExists(tx *gorm.DB, userID, id uint) (bool, error) {
	var count int64
	if err := tx.Model(&models.Category{}).
		Where("id = ? AND user_id = ?", id, userID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check category: %w", err)
	}
	return count > 0, nil
}

func (s *TransactionService) receivableExists(tx *gorm.DB, userID, id uint) (bool, error) {
	var count int64
	if err := tx.Model(&models.Receivable{}).
		Where("id = ? AND user_id = ?", id, userID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check receivable: %w", err)
	}
	return count > 0, nil
}

func (s *TransactionService) liabilityExists(tx *gorm.DB, userID, id uint) (bool, error) {
	var count int64
	if err := tx.Model(&models.Liability{}).
		Where("id = ? AND user_id = ?", id, userID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check liability: %w", err)
	}
	return count > 0, nil
}

// validate checks the type-specific required fields before any write.
func (s *TransactionService) validate(tx *gorm.DB, userID uint,
	txType models.TransactionType, amount decimal.Decimal,
	accountID, fromAccountID, toAccountID, categoryID, receivableID, liabilityID *uint) error {

	if !txType.Valid() {
		return apperr.Validationf("unknown transaction type %q", txType)
	}

	// BALANCE_ADJUSTMENT is the only type whose amount carries a sign.
	if txType == models.TransactionBalanceAdjustment {
		if amount.Sign() == 0 {
			return apperr.Validationf("amount must be non-zero for BALANCE_ADJUSTMENT")
		}
	} else if amount.Sign() <= 0 {
		return apperr.Validationf("amount must be positive for %s transactions", txType)
	}

	switch txType {
	case models.TransactionTransfer:
		if fromAccountID == nil || toAccountID == nil {
			return apperr.Validationf("TRANSFER transactions require both from_account_id and to_account_id")
		}
		if *fromAccountID == *toAccountID {
			return apperr.Validationf("from_account_id and to_account_id must be different")
		}
		if ok, err := s.accountExists(tx, userID, *fromAccountID); err != nil {
			return err
		} else if !ok {
			return apperr.NotFoundf("from account not found")
		}
		if ok, err := s.accountExists(tx, userID, *toAccountID); err != nil {
			return err
		} else if !ok {
			return apperr.NotFoundf("to account not found")
		}

	case models.TransactionExpense, models.TransactionIncome:
		if accountID == nil {
			return apperr.Validationf("account_id is required for %s transactions", txType)
		}
		// category is required unless the entry is auto-generated from a
		// receivable/liability creation
		if categoryID == nil && receivableID == nil && liabilityID == nil {
			return apperr.Validationf("category_id is required for %s transactions", txType)
		}
		if ok, err := s.accountExists(tx, userID, *accountID); err != nil {
			return err
		} else if !ok {
			return apperr.NotFoundf("account not found")
		}
		if categoryID != nil {
			if ok, err := s.categoryExists(tx, userID, *categoryID); err != nil {
				return err
			} else if !ok {
				return apperr.NotFoundf("category not found")
			}
		}

	case models.TransactionReceivableSettlement:
		if receivableID == nil {
			return apperr.Validationf("receivable_id is required for RECEIVABLE_SETTLEMENT transactions")
		}
		if ok, err := s.receivableExists(tx, userID, *receivableID); err != nil {
			return err
		} else if !ok {
			return apperr.NotFoundf("receivable not found")
		}
		if err := s.validateOptionalRefs(tx, userID, accountID, categoryID); err != nil {
			return err
		}

	case models.TransactionLiabilitySettlement:
		if liabilityID == nil {
			return apperr.Validationf("liability_id is required for LIABILITY_SETTLEMENT transactions")
		}
		if ok, err := s.liabilityExists(tx, userID, *liabilityID); err != nil {
			return err
		} else if !ok {
			return apperr.NotFoundf("liability not found")
		}
		if err := s.validateOptionalRefs(tx, userID, accountID, categoryID); err != nil {
			return err
		}

	case models.TransactionBalanceAdjustment:
		if accountID == nil {
			return apperr.Validationf("account_id is required for BALANCE_ADJUSTMENT transactions")
		}
		if ok, err := s.accountExists(tx, userID, *accountID); err != nil {
			return err
		} else if !ok {
			return apperr.NotFoundf("account not found")
		}
	}

	return nil
}

// account and category are optional for settlement-flavored entries but
// are validated when present.
func (s *TransactionService) validateOptionalRefs(tx *gorm.DB, userID uint, accountID, categoryID *uint) error {
	if accountID != nil {
		if ok, err := s.accountExists(tx, userID, *accountID); err != nil {
			return err
		} else if !ok {
			return apperr.NotFoundf("account not found")
		}
	}
	if categoryID != nil {
		if ok, err := s.categoryExists(tx, userID, *categoryID); err != nil {
			return err
		} else if !ok {
			return apperr.NotFoundf("category not found")
		}
	}
	return nil
}

// createTx validates and persists one transaction inside the given unit
// of work. Settlement-flavored entries are pre-flight checked against
// the settlement amount invariant before anything is written; the
// paired settlement is created after the row is durable and its id
// written back onto the row. Also used by the debt services to book
// companion entries.
func (s *TransactionService) createTx(tx *gorm.DB, userID uint, req CreateTransactionRequest) (*models.Transaction, error) {
	if req.Amount == nil {
		return nil, apperr.Validationf("amount is required")
	}

	occurredAt := time.Now()
	if req.OccurredAt != "" {
		t, err := util.ParseDateTime(req.OccurredAt)
		if err != nil {
			return nil, apperr.Validationf("invalid occurred_at: %v", err)
		}
		occurredAt = t
	}

	if err := s.validate(tx, userID, req.Type, *req.Amount,
		req.AccountID, req.FromAccountID, req.ToAccountID,
		req.CategoryID, req.ReceivableID, req.LiabilityID); err != nil {
		return nil, err
	}

	currency := req.Currency
	if currency == "" {
		currency = s.currency
	} else if err := util.ValidateCurrency(currency); err != nil {
		return nil, apperr.Validationf("%v", err)
	}

	settlementFlavor := req.Type == models.TransactionReceivableSettlement ||
		req.Type == models.TransactionLiabilitySettlement

	// Pre-flight the settlement invariant so a rejected amount never
	// leaves a transaction row behind.
	if settlementFlavor {
		stype := models.SettlementReceivable
		if req.Type == models.TransactionLiabilitySettlement {
			stype = models.SettlementLiability
		}
		if err := s.settlements.validateAmountTx(tx, userID, stype,
			req.ReceivableID, req.LiabilityID, *req.Amount, nil); err != nil {
			return nil, err
		}
	}

	entry := models.Transaction{
		UserID:        userID,
		Type:          req.Type,
		Amount:        *req.Amount,
		Currency:      currency,
		OccurredAt:    occurredAt,
		AccountID:     req.AccountID,
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
		CategoryID:    req.CategoryID,
		ReceivableID:  req.ReceivableID,
		LiabilityID:   req.LiabilityID,
		Note:          req.Note,
		AttachmentIDs: req.AttachmentIDs,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	if settlementFlavor {
		stype := models.SettlementReceivable
		if entry.Type == models.TransactionLiabilitySettlement {
			stype = models.SettlementLiability
		}
		settlement, err := s.settlements.createForTransactionTx(tx, userID, createSettlementParams{
			Type:          stype,
			ReceivableID:  entry.ReceivableID,
			LiabilityID:   entry.LiabilityID,
			TransactionID: &entry.ID,
			AccountID:     entry.AccountID,
			Amount:        entry.Amount,
			Currency:      entry.Currency,
			OccurredAt:    entry.OccurredAt,
			Note:          entry.Note,
		})
		if err != nil {
			return nil, err
		}
		entry.SettlementID = &settlement.ID
		if err := tx.Save(&entry).Error; err != nil {
			return nil, fmt.Errorf("link settlement: %w", err)
		}
	}

	return &entry, nil
}

// Create persists one transaction as a single unit of work.
func (s *TransactionService) Create(userID uint, req CreateTransactionRequest) (*TransactionView, error) {
	var view TransactionView
	err := s.db.Transaction(func(tx *gorm.DB) error {
		entry, err := s.createTx(tx, userID, req)
		if err != nil {
			return err
		}
		view = toTransactionView(entry)
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("transaction created: id=%d user=%d type=%s", view.ID, userID, view.Type)
	return &view, nil
}

// Get returns one transaction.
func (s *TransactionService) Get(userID, id uint) (*TransactionView, error) {
	t, err := s.find(s.db, userID, id)
	if err != nil {
		return nil, err
	}
	v := toTransactionView(t)
	return &v, nil
}

// List returns the user's transactions with filters and pagination.
func (s *TransactionService) List(userID uint, filters TransactionFilters, page, size int) ([]TransactionView, int64, error) {
	base := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)

	if filters.Type != "" {
		base = base.Where("type = ?", filters.Type)
	}
	if filters.AccountID != nil {
		base = base.Where("account_id = ? OR from_account_id = ? OR to_account_id = ?",
			*filters.AccountID, *filters.AccountID, *filters.AccountID)
	}
	if filters.CategoryID != nil {
		base = base.Where("category_id = ?", *filters.CategoryID)
	}
	if filters.Start != nil {
		base = base.Where("occurred_at >= ?", *filters.Start)
	}
	if filters.End != nil {
		base = base.Where("occurred_at <= ?", *filters.End)
	}
	if filters.MinAmount != nil {
		base = base.Where("amount >= ?", *filters.MinAmount)
	}
	if filters.MaxAmount != nil {
		base = base.Where("amount <= ?", *filters.MaxAmount)
	}
	if kw := strings.TrimSpace(filters.Keyword); kw != "" {
		base = base.Where("note LIKE ?", "%"+kw+"%")
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	orderBy := "occurred_at DESC, id DESC"
	switch filters.Sort {
	case "date_asc":
		orderBy = "occurred_at ASC, id ASC"
	case "amount_desc":
		orderBy = "amount DESC, id DESC"
	case "amount_asc":
		orderBy = "amount ASC, id ASC"
	}

	var entries []models.Transaction
	if err := base.Session(&gorm.Session{}).
		Order(orderBy).
		Limit(size).
		Offset((page - 1) * size).
		Find(&entries).Error; err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}

	views := make([]TransactionView, 0, len(entries))
	for i := range entries {
		views = append(views, toTransactionView(&entries[i]))
	}
	return views, total, nil
}

// Update mutates the classification fields of a transaction and
// re-validates the merged state exactly as create does. Once a paired
// settlement exists, the type-defining fields are locked.
func (s *TransactionService) Update(userID, id uint, req UpdateTransactionRequest) (*TransactionView, error) {
	var view TransactionView
	err := s.db.Transaction(func(tx *gorm.DB) error {
		entry, err := s.find(tx, userID, id)
		if err != nil {
			return err
		}

		if entry.SettlementID != nil {
			locked := req.Type != nil && *req.Type != entry.Type ||
				req.Amount != nil && req.Amount.Cmp(entry.Amount) != 0 ||
				req.ReceivableID != nil && (entry.ReceivableID == nil || *req.ReceivableID != *entry.ReceivableID) ||
				req.LiabilityID != nil && (entry.LiabilityID == nil || *req.LiabilityID != *entry.LiabilityID)
			if locked {
				return apperr.Businessf("type, amount and debt references are locked once a settlement is linked")
			}
		}

		// merge requested over existing, then validate as create does
		merged := *entry
		if req.Type != nil {
			merged.Type = *req.Type
		}
		if req.Amount != nil {
			merged.Amount = *req.Amount
		}
		if req.Currency != nil {
			if err := util.ValidateCurrency(*req.Currency); err != nil {
				return apperr.Validationf("%v", err)
			}
			merged.Currency = *req.Currency
		}
		if req.OccurredAt != nil {
			t, err := util.ParseDateTime(*req.OccurredAt)
			if err != nil {
				return apperr.Validationf("invalid occurred_at: %v", err)
			}
			merged.OccurredAt = t
		}
		if req.AccountID != nil {
			merged.AccountID = req.AccountID
		}
		if req.FromAccountID != nil {
			merged.FromAccountID = req.FromAccountID
		}
		if req.ToAccountID != nil {
			merged.ToAccountID = req.ToAccountID
		}
		if req.CategoryID != nil {
			merged.CategoryID = req.CategoryID
		}
		if req.ReceivableID != nil {
			merged.ReceivableID = req.ReceivableID
		}
		if req.LiabilityID != nil {
			merged.LiabilityID = req.LiabilityID
		}
		if req.Note != nil {
			merged.Note = *req.Note
		}
		if req.AttachmentIDs != nil {
			merged.AttachmentIDs = req.AttachmentIDs
		}

		// a settlement flavor acquired by update would have no paired
		// settlement behind it
		if merged.Type != entry.Type &&
			(merged.Type == models.TransactionReceivableSettlement ||
				merged.Type == models.TransactionLiabilitySettlement) {
			return apperr.Businessf("cannot change an existing transaction into a %s; create a new one instead", merged.Type)
		}

		if err := s.validate(tx, userID, merged.Type, merged.Amount,
			merged.AccountID, merged.FromAccountID, merged.ToAccountID,
			merged.CategoryID, merged.ReceivableID, merged.LiabilityID); err != nil {
			return err
		}

		if err := tx.Save(&merged).Error; err != nil {
			return fmt.Errorf("save transaction: %w", err)
		}
		view = toTransactionView(&merged)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// Delete soft-deletes a transaction. A linked settlement is deliberately
// left in place; deleting the settlement instead self-heals the debt
// record's paid amount.
func (s *TransactionService) Delete(userID, id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		entry, err := s.find(tx, userID, id)
		if err != nil {
			return err
		}
		if err := tx.Delete(entry).Error; err != nil {
			return fmt.Errorf("delete transaction: %w", err)
		}
		log.Printf("transaction deleted: id=%d user=%d", id, userID)
		return nil
	})
}
