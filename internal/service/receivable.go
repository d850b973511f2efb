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

// ReceivableService owns records of money counterparties owe the user.
// It maintains the denormalized paid amount cache and derived status;
// the cache is refreshed only by the settlement service's full recount.
type ReceivableService struct {
	db           *gorm.DB
	currency     string
	transactions *TransactionService
}

func toReceivableView(r *models.Receivable, now time.Time) DebtView {
	return DebtView{
		ID:               r.ID,
		CounterpartyName: r.CounterpartyName,
		Amount:           r.Amount,
		Currency:         r.Currency,
		OccurredAt:       r.OccurredAt,
		DueAt:            r.DueAt,
		AccountID:        r.AccountID,
		Status:           deriveDebtStatus(r.Amount, r.PaidAmount, r.DueAt, now),
		PaidAmount:       r.PaidAmount,
		RemainingAmount:  r.Amount.Sub(r.PaidAmount),
		Note:             r.Note,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

func (s *ReceivableService) find(tx *gorm.DB, userID, id uint) (*models.Receivable, error) {
	var r models.Receivable
	if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&r).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("receivable not found")
		}
		return nil, fmt.Errorf("load receivable: %w", err)
	}
	return &r, nil
}

// Create persists a new receivable. When an account is linked, the
// outgoing loan is booked as a companion EXPENSE transaction in the
// same unit of work; any failure rolls back both records.
func (s *ReceivableService) Create(userID uint, req CreateDebtRequest) (*DebtView, error) {
	if req.Amount == nil || req.Amount.Sign() <= 0 {
		return nil, apperr.Validationf("amount must be positive")
	}

	currency := req.Currency
	if currency == "" {
		currency = s.currency
	} else if err := util.ValidateCurrency(currency); err != nil {
		return nil, apperr.Validationf("%v", err)
	}

	occurredAt := time.Now()
	if req.OccurredAt != "" {
		t, err := util.ParseDateTime(req.OccurredAt)
		if err != nil {
			return nil, apperr.Validationf("invalid occurred_at: %v", err)
		}
		occurredAt = t
	}

	var dueAt *time.Time
	if req.DueAt != "" {
		t, err := util.ParseDateTime(req.DueAt)
		if err != nil {
			return nil, apperr.Validationf("invalid due_at: %v", err)
		}
		dueAt = &t
	}

	var view DebtView
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if req.AccountID != nil {
			var count int64
			if err := tx.Model(&models.Account{}).
				Where("id = ? AND user_id = ?", *req.AccountID, userID).
				Count(&count).Error; err != nil {
				return fmt.Errorf("check account: %w", err)
			}
			if count == 0 {
				return apperr.NotFoundf("account not found")
			}
		}

		now := time.Now()
		r := models.Receivable{
			UserID:           userID,
			CounterpartyName: req.CounterpartyName,
			Amount:           *req.Amount,
			Currency:         currency,
			OccurredAt:       occurredAt,
			DueAt:            dueAt,
			AccountID:        req.AccountID,
			Status:           deriveDebtStatus(*req.Amount, decimal.Zero, dueAt, now),
			PaidAmount:       decimal.Zero,
			Note:             req.Note,
		}
		if err := tx.Create(&r).Error; err != nil {
			return fmt.Errorf("create receivable: %w", err)
		}

		// money leaving to fund the loan
		if r.AccountID != nil {
			note := "Lent to " + r.CounterpartyName
			if r.Note != "" {
				note = "Lent: " + r.Note
			}
			if _, err := s.transactions.createTx(tx, userID, CreateTransactionRequest{
				Type:         models.TransactionExpense,
				Amount:       &r.Amount,
				Currency:     r.Currency,
				OccurredAt:   r.OccurredAt.Format(time.RFC3339),
				AccountID:    r.AccountID,
				ReceivableID: &r.ID,
				Note:         note,
			}); err != nil {
				return fmt.Errorf("book loan expense: %w", err)
			}
		}

		view = toReceivableView(&r, now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("receivable created: id=%d user=%d", view.ID, userID)
	return &view, nil
}

// Get returns one receivable with its status derived fresh.
func (s *ReceivableService) Get(userID, id uint) (*DebtView, error) {
	r, err := s.find(s.db, userID, id)
	if err != nil {
		return nil, err
	}
	v := toReceivableView(r, time.Now())
	return &v, nil
}

// List returns the user's receivables, paginated, statuses derived
// fresh for display.
func (s *ReceivableService) List(userID uint, page, size int) ([]DebtView, int64, error) {
	var total int64
	if err := s.db.Model(&models.Receivable{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count receivables: %w", err)
	}

	var rows []models.Receivable
	if err := s.db.Where("user_id = ?", userID).
		Order("occurred_at DESC, id DESC").
		Limit(size).
		Offset((page - 1) * size).
		Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list receivables: %w", err)
	}

	now := time.Now()
	views := make([]DebtView, 0, len(rows))
	for i := range rows {
		views = append(views, toReceivableView(&rows[i], now))
	}
	return views, total, nil
}

// Update mutates a receivable. Amount changes do not rescale existing
// settlements, and the new amount may not drop below what has already
// been settled.
func (s *ReceivableService) Update(userID, id uint, req UpdateDebtRequest) (*DebtView, error) {
	var view DebtView
	err := s.db.Transaction(func(tx *gorm.DB) error {
		r, err := s.find(tx, userID, id)
		if err != nil {
			return err
		}

		if req.CounterpartyName != nil {
			r.CounterpartyName = *req.CounterpartyName
		}
		if req.Amount != nil {
			if req.Amount.Sign() <= 0 {
				return apperr.Validationf("amount must be positive")
			}
			if req.Amount.Cmp(r.PaidAmount) < 0 {
				return apperr.Conflictf("amount (%s) cannot drop below the settled amount (%s)",
					req.Amount.String(), r.PaidAmount.String())
			}
			r.Amount = *req.Amount
		}
		if req.Currency != nil {
			if err := util.ValidateCurrency(*req.Currency); err != nil {
				return apperr.Validationf("%v", err)
			}
			r.Currency = *req.Currency
		}
		if req.OccurredAt != nil {
			t, err := util.ParseDateTime(*req.OccurredAt)
			if err != nil {
				return apperr.Validationf("invalid occurred_at: %v", err)
			}
			r.OccurredAt = t
		}
		if req.DueAt != nil {
			if *req.DueAt == "" {
				r.DueAt = nil
			} else {
				t, err := util.ParseDateTime(*req.DueAt)
				if err != nil {
					return apperr.Validationf("invalid due_at: %v", err)
				}
				r.DueAt = &t
			}
		}
		if req.AccountID != nil {
			var count int64
			if err := tx.Model(&models.Account{}).
				Where("id = ? AND user_id = ?", *req.AccountID, userID).
				Count(&count).Error; err != nil {
				return fmt.Errorf("check account: %w", err)
			}
			if count == 0 {
				return apperr.NotFoundf("account not found")
			}
			r.AccountID = req.AccountID
		}
		if req.Note != nil {
			r.Note = *req.Note
		}

		now := time.Now()
		r.Status = deriveDebtStatus(r.Amount, r.PaidAmount, r.DueAt, now)
		if err := tx.Save(r).Error; err != nil {
			return fmt.Errorf("save receivable: %w", err)
		}
		view = toReceivableView(r, now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// Delete soft-deletes a receivable.
func (s *ReceivableService) Delete(userID, id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		r, err := s.find(tx, userID, id)
		if err != nil {
			return err
		}
		if err := tx.Delete(r).Error; err != nil {
			return fmt.Errorf("delete receivable: %w", err)
		}
		log.Printf("receivable deleted: id=%d user=%d", id, userID)
		return nil
	})
}

// refreshPaidAmountTx persists a freshly recounted paid amount and the
// status derived from it. Invoked only by the settlement service after
// its mutations, never by external callers.
func (s *ReceivableService) refreshPaidAmountTx(tx *gorm.DB, id uint, total decimal.Decimal) error {
	var r models.Receivable
	if err := tx.First(&r, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("receivable not found")
		}
		return fmt.Errorf("load receivable: %w", err)
	}
	r.PaidAmount = total
	r.Status = deriveDebtStatus(r.Amount, r.PaidAmount, r.DueAt, time.Now())
	if err := tx.Save(&r).Error; err != nil {
		return fmt.Errorf("save receivable: %w", err)
	}
	return nil
}
