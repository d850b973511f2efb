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

// SettlementService owns settlement records and enforces the invariant
// that the settlements applied against a debt record never exceed its
// original amount. Every mutation triggers a full recount of the debt
// record's paid amount, never an incremental patch, so edits and
// deletes performed out of order self-heal.
type SettlementService struct {
	db          *gorm.DB
	currency    string
	receivables *ReceivableService
	liabilities *LiabilityService
}

// SettlementView is the presentation of one payment event.
type SettlementView struct {
	ID            uint                  `json:"id"`
	Type          models.SettlementType `json:"type"`
	ReceivableID  *uint                 `json:"receivable_id,omitempty"`
	LiabilityID   *uint                 `json:"liability_id,omitempty"`
	TransactionID *uint                 `json:"transaction_id,omitempty"`
	AccountID     *uint                 `json:"account_id,omitempty"`
	Amount        decimal.Decimal       `json:"amount"`
	Currency      string                `json:"currency"`
	OccurredAt    time.Time             `json:"occurred_at"`
	Note          string                `json:"note,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

type CreateSettlementRequest struct {
	Type         models.SettlementType `json:"type" binding:"required"`
	ReceivableID *uint                 `json:"receivable_id"`
	LiabilityID  *uint                 `json:"liability_id"`
	AccountID    *uint                 `json:"account_id"`
	Amount       *decimal.Decimal      `json:"amount" binding:"required"`
	Currency     string                `json:"currency"`
	OccurredAt   string                `json:"occurred_at"`
	Note         string                `json:"note"`
}

type UpdateSettlementRequest struct {
	Amount     *decimal.Decimal `json:"amount"`
	Currency   *string          `json:"currency"`
	OccurredAt *string          `json:"occurred_at"`
	Note       *string          `json:"note"`
}

// createSettlementParams is the internal creation shape shared by the
// public create path and the transaction-paired path.
type createSettlementParams struct {
	Type          models.SettlementType
	ReceivableID  *uint
	LiabilityID   *uint
	TransactionID *uint
	AccountID     *uint
	Amount        decimal.Decimal
	Currency      string
	OccurredAt    time.Time
	Note          string
}

func toSettlementView(m *models.Settlement) SettlementView {
	return SettlementView{
		ID:            m.ID,
		Type:          m.Type,
		ReceivableID:  m.ReceivableID,
		LiabilityID:   m.LiabilityID,
		TransactionID: m.TransactionID,
		AccountID:     m.AccountID,
		Amount:        m.Amount,
		Currency:      m.Currency,
		OccurredAt:    m.OccurredAt,
		Note:          m.Note,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func (s *SettlementService) find(tx *gorm.DB, userID, id uint) (*models.Settlement, error) {
	var m models.Settlement
	if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("settlement not found")
		}
		return nil, fmt.Errorf("load settlement: %w", err)
	}
	return &m, nil
}

// resolveRef validates the discriminated reference (exactly one of
// receivable/liability id, matching the type, owned by the caller) and
// returns the referenced record's original amount.
func (s *SettlementService) resolveRef(tx *gorm.DB, userID uint,
	stype models.SettlementType, receivableID, liabilityID *uint) (decimal.Decimal, error) {

	switch stype {
	case models.SettlementReceivable:
		if receivableID == nil {
			return decimal.Zero, apperr.Validationf("receivable_id is required for RECEIVABLE settlements")
		}
		if liabilityID != nil {
			return decimal.Zero, apperr.Validationf("liability_id must not be set for RECEIVABLE settlements")
		}
		var r models.Receivable
		if err := tx.Where("id = ? AND user_id = ?", *receivableID, userID).First(&r).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return decimal.Zero, apperr.NotFoundf("receivable not found")
			}
			return decimal.Zero, fmt.Errorf("load receivable: %w", err)
		}
		return r.Amount, nil

	case models.SettlementLiability:
		if liabilityID == nil {
			return decimal.Zero, apperr.Validationf("liability_id is required for LIABILITY settlements")
		}
		if receivableID != nil {
			return decimal.Zero, apperr.Validationf("receivable_id must not be set for LIABILITY settlements")
		}
		var l models.Liability
		if err := tx.Where("id = ? AND user_id = ?", *liabilityID, userID).First(&l).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return decimal.Zero, apperr.NotFoundf("liability not found")
			}
			return decimal.Zero, fmt.Errorf("load liability: %w", err)
		}
		return l.Amount, nil

	default:
		return decimal.Zero, apperr.Validationf("unknown settlement type %q", stype)
	}
}

// sumTx recounts the non-deleted settlements applied against one debt
// record. The rows are summed in decimal space rather than pushed into
// a SQL SUM to keep exact arithmetic.
func (s *SettlementService) sumTx(tx *gorm.DB, stype models.SettlementType,
	receivableID, liabilityID *uint, excludeID *uint) (decimal.Decimal, error) {

	q := tx.Model(&models.Settlement{})
	if stype == models.SettlementReceivable {
		q = q.Where("receivable_id = ?", *receivableID)
	} else {
		q = q.Where("liability_id = ?", *liabilityID)
	}
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}

	var rows []models.Settlement
	if err := q.Find(&rows).Error; err != nil {
		return decimal.Zero, fmt.Errorf("sum settlements: %w", err)
	}

	total := decimal.Zero
	for i := range rows {
		total = total.Add(rows[i].Amount)
	}
	return total, nil
}

// validateAmountTx runs the reference and amount-bound checks without
// writing anything. excludeID drops one existing settlement from the
// recount (used when updating it). The transaction orchestrator uses
// this as a pre-flight check before persisting a settlement-flavored
// transaction.
func (s *SettlementService) validateAmountTx(tx *gorm.DB, userID uint,
	stype models.SettlementType, receivableID, liabilityID *uint,
	amount decimal.Decimal, excludeID *uint) error {

	if amount.Sign() <= 0 {
		return apperr.Validationf("settlement amount must be positive")
	}

	original, err := s.resolveRef(tx, userID, stype, receivableID, liabilityID)
	if err != nil {
		return err
	}

	existing, err := s.sumTx(tx, stype, receivableID, liabilityID, excludeID)
	if err != nil {
		return err
	}

	if existing.Add(amount).Cmp(original) > 0 {
		return apperr.Conflictf("total settlement amount (%s) exceeds original amount (%s)",
			existing.Add(amount).String(), original.String())
	}
	return nil
}

// refreshTx recounts the settlements for the referenced debt record and
// pushes the fresh total into its paid amount and derived status.
func (s *SettlementService) refreshTx(tx *gorm.DB, stype models.SettlementType,
	receivableID, liabilityID *uint) error {

	total, err := s.sumTx(tx, stype, receivableID, liabilityID, nil)
	if err != nil {
		return err
	}
	if stype == models.SettlementReceivable {
		return s.receivables.refreshPaidAmountTx(tx, *receivableID, total)
	}
	return s.liabilities.refreshPaidAmountTx(tx, *liabilityID, total)
}

func (s *SettlementService) createTx(tx *gorm.DB, userID uint, p createSettlementParams) (*models.Settlement, error) {
	if err := s.validateAmountTx(tx, userID, p.Type, p.ReceivableID, p.LiabilityID, p.Amount, nil); err != nil {
		return nil, err
	}

	currency := p.Currency
	if currency == "" {
		currency = s.currency
	} else if err := util.ValidateCurrency(currency); err != nil {
		return nil, apperr.Validationf("%v", err)
	}
	occurredAt := p.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	m := models.Settlement{
		UserID:        userID,
		Type:          p.Type,
		ReceivableID:  p.ReceivableID,
		LiabilityID:   p.LiabilityID,
		TransactionID: p.TransactionID,
		AccountID:     p.AccountID,
		Amount:        p.Amount,
		Currency:      currency,
		OccurredAt:    occurredAt,
		Note:          p.Note,
	}
	if err := tx.Create(&m).Error; err != nil {
		return nil, fmt.Errorf("create settlement: %w", err)
	}

	if err := s.refreshTx(tx, p.Type, p.ReceivableID, p.LiabilityID); err != nil {
		return nil, err
	}
	return &m, nil
}

// createForTransactionTx is the only path that populates the
// transaction back-reference. It must run after the originating
// transaction row is written, inside the same unit of work.
func (s *SettlementService) createForTransactionTx(tx *gorm.DB, userID uint, p createSettlementParams) (*models.Settlement, error) {
	if p.TransactionID == nil {
		return nil, apperr.Validationf("transaction id is required")
	}
	return s.createTx(tx, userID, p)
}

// Create persists a new settlement as one unit of work.
func (s *SettlementService) Create(userID uint, req CreateSettlementRequest) (*SettlementView, error) {
	if req.Amount == nil {
		return nil, apperr.Validationf("amount is required")
	}

	occurredAt := time.Time{}
	if req.OccurredAt != "" {
		t, err := util.ParseDateTime(req.OccurredAt)
		if err != nil {
			return nil, apperr.Validationf("invalid occurred_at: %v", err)
		}
		occurredAt = t
	}

	var view SettlementView
	err := s.db.Transaction(func(tx *gorm.DB) error {
		m, err := s.createTx(tx, userID, createSettlementParams{
			Type:         req.Type,
			ReceivableID: req.ReceivableID,
			LiabilityID:  req.LiabilityID,
			AccountID:    req.AccountID,
			Amount:       *req.Amount,
			Currency:     req.Currency,
			OccurredAt:   occurredAt,
			Note:         req.Note,
		})
		if err != nil {
			return err
		}
		view = toSettlementView(m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("settlement created: id=%d user=%d type=%s", view.ID, userID, view.Type)
	return &view, nil
}

// Get returns one settlement.
func (s *SettlementService) Get(userID, id uint) (*SettlementView, error) {
	m, err := s.find(s.db, userID, id)
	if err != nil {
		return nil, err
	}
	v := toSettlementView(m)
	return &v, nil
}

// List returns the user's settlements, paginated.
func (s *SettlementService) List(userID uint, page, size int) ([]SettlementView, int64, error) {
	var total int64
	if err := s.db.Model(&models.Settlement{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count settlements: %w", err)
	}

	var rows []models.Settlement
	if err := s.db.Where("user_id = ?", userID).
		Order("occurred_at DESC, id DESC").
		Limit(size).
		Offset((page - 1) * size).
		Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list settlements: %w", err)
	}

	views := make([]SettlementView, 0, len(rows))
	for i := range rows {
		views = append(views, toSettlementView(&rows[i]))
	}
	return views, total, nil
}

// ListForReceivable returns the settlements applied against one
// receivable, verifying ownership first.
func (s *SettlementService) ListForReceivable(userID, receivableID uint) ([]SettlementView, error) {
	if _, err := s.resolveRef(s.db, userID, models.SettlementReceivable, &receivableID, nil); err != nil {
		return nil, err
	}
	return s.listByRef(s.db, "receivable_id", receivableID)
}

// ListForLiability returns the settlements applied against one
// liability, verifying ownership first.
func (s *SettlementService) ListForLiability(userID, liabilityID uint) ([]SettlementView, error) {
	if _, err := s.resolveRef(s.db, userID, models.SettlementLiability, nil, &liabilityID); err != nil {
		return nil, err
	}
	return s.listByRef(s.db, "liability_id", liabilityID)
}

func (s *SettlementService) listByRef(tx *gorm.DB, column string, refID uint) ([]SettlementView, error) {
	var rows []models.Settlement
	if err := tx.Where(column+" = ?", refID).
		Order("occurred_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list settlements: %w", err)
	}
	views := make([]SettlementView, 0, len(rows))
	for i := range rows {
		views = append(views, toSettlementView(&rows[i]))
	}
	return views, nil
}

// Update mutates a settlement. The type and debt reference are
// immutable; an amount change re-runs the bound check with the old
// amount excluded before accepting, then recounts the paid amount.
func (s *SettlementService) Update(userID, id uint, req UpdateSettlementRequest) (*SettlementView, error) {
	var view SettlementView
	err := s.db.Transaction(func(tx *gorm.DB) error {
		m, err := s.find(tx, userID, id)
		if err != nil {
			return err
		}

		if req.Amount != nil && req.Amount.Cmp(m.Amount) != 0 {
			if err := s.validateAmountTx(tx, userID, m.Type,
				m.ReceivableID, m.LiabilityID, *req.Amount, &m.ID); err != nil {
				return err
			}
			m.Amount = *req.Amount
		}
		if req.Currency != nil {
			if err := util.ValidateCurrency(*req.Currency); err != nil {
				return apperr.Validationf("%v", err)
			}
			m.Currency = *req.Currency
		}
		if req.OccurredAt != nil {
			t, err := util.ParseDateTime(*req.OccurredAt)
			if err != nil {
				return apperr.Validationf("invalid occurred_at: %v", err)
			}
			m.OccurredAt = t
		}
		if req.Note != nil {
			m.Note = *req.Note
		}

		if err := tx.Save(m).Error; err != nil {
			return fmt.Errorf("save settlement: %w", err)
		}

		if err := s.refreshTx(tx, m.Type, m.ReceivableID, m.LiabilityID); err != nil {
			return err
		}
		view = toSettlementView(m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// Delete soft-deletes a settlement, then recounts the debt record's
// paid amount with the deleted row excluded.
func (s *SettlementService) Delete(userID, id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		m, err := s.find(tx, userID, id)
		if err != nil {
			return err
		}
		if err := tx.Delete(m).Error; err != nil {
			return fmt.Errorf("delete settlement: %w", err)
		}
		if err := s.refreshTx(tx, m.Type, m.ReceivableID, m.LiabilityID); err != nil {
			return err
		}
		log.Printf("settlement deleted: id=%d user=%d", id, userID)
		return nil
	})
}
