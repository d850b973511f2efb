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

// LiabilityService is the mirror of ReceivableService for money the
// user owes a counterparty.
type LiabilityService struct {
	db           *gorm.DB
	currency     string
	transactions *TransactionService
}

func toLiabilityView(l *models.Liability, now time.Time) DebtView {
	return DebtView{
		ID:               l.ID,
		CounterpartyName: l.CounterpartyName,
		Amount:           l.Amount,
		Currency:         l.Currency,
		OccurredAt:       l.OccurredAt,
		DueAt:            l.DueAt,
		AccountID:        l.AccountID,
		Status:           deriveDebtStatus(l.Amount, l.PaidAmount, l.DueAt, now),
		PaidAmount:       l.PaidAmount,
		RemainingAmount:  l.Amount.Sub(l.PaidAmount),
		Note:             l.Note,
		CreatedAt:        l.CreatedAt,
		UpdatedAt:        l.UpdatedAt,
	}
}

func (s *LiabilityService) find(tx *gorm.DB, userID, id uint) (*models.Liability, error) {
	var l models.Liability
	if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&l).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("liability not found")
		}
		return nil, fmt.Errorf("load liability: %w", err)
	}
	return &l, nil
}

// Create persists a new liability. When an account is linked, the
// borrowed funds are booked as a companion INCOME transaction in the
// same unit of work; any failure rolls back both records.
func (s *LiabilityService) Create(userID uint, req CreateDebtRequest) (*DebtView, error) {
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
		l := models.Liability{
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
		if err := tx.Create(&l).Error; err != nil {
			return fmt.Errorf("create liability: %w", err)
		}

		// money received as the borrowed funds
		if l.AccountID != nil {
			note := "Borrowed from " + l.CounterpartyName
			if l.Note != "" {
				note = "Borrowed: " + l.Note
			}
			if _, err := s.transactions.createTx(tx, userID, CreateTransactionRequest{
				Type:        models.TransactionIncome,
				Amount:      &l.Amount,
				Currency:    l.Currency,
				OccurredAt:  l.OccurredAt.Format(time.RFC3339),
				AccountID:   l.AccountID,
				LiabilityID: &l.ID,
				Note:        note,
			}); err != nil {
				return fmt.Errorf("book borrowed income: %w", err)
			}
		}

		view = toLiabilityView(&l, now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("liability created: id=%d user=%d", view.ID, userID)
	return &view, nil
}

// Get returns one liability with its status derived fresh.
func (s *LiabilityService) Get(userID, id uint) (*DebtView, error) {
	l, err := s.find(s.db, userID, id)
	if err != nil {
		return nil, err
	}
	v := toLiabilityView(l, time.Now())
	return &v, nil
}

// List returns the user's liabilities, paginated.
func (s *LiabilityService) List(userID uint, page, size int) ([]DebtView, int64, error) {
	var total int64
	if err := s.db.Model(&models.Liability{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count liabilities: %w", err)
	}

	var rows []models.Liability
	if err := s.db.Where("user_id = ?", userID).
		Order("occurred_at DESC, id DESC").
		Limit(size).
		Offset((page - 1) * size).
		Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list liabilities: %w", err)
	}

	now := time.Now()
	views := make([]DebtView, 0, len(rows))
	for i := range rows {
		views = append(views, toLiabilityView(&rows[i], now))
	}
	return views, total, nil
}

// Update mutates a liability under the same rules as
// ReceivableService.Update.
func (s *LiabilityService) Update(userID, id uint, req UpdateDebtRequest) (*DebtView, error) {
	var view DebtView
	err := s.db.Transaction(func(tx *gorm.DB) error {
		l, err := s.find(tx, userID, id)
		if err != nil {
			return err
		}

		if req.CounterpartyName != nil {
			l.CounterpartyName = *req.CounterpartyName
		}
		if req.Amount != nil {
			if req.Amount.Sign() <= 0 {
				return apperr.Validationf("amount must be positive")
			}
			if req.Amount.Cmp(l.PaidAmount) < 0 {
				return apperr.Conflictf("amount (%s) cannot drop below the settled amount (%s)",
					req.Amount.String(), l.PaidAmount.String())
			}
			l.Amount = *req.Amount
		}
		if req.Currency != nil {
			if err := util.ValidateCurrency(*req.Currency); err != nil {
				return apperr.Validationf("%v", err)
			}
			l.Currency = *req.Currency
		}
		if req.OccurredAt != nil {
			t, err := util.ParseDateTime(*req.OccurredAt)
			if err != nil {
				return apperr.Validationf("invalid occurred_at: %v", err)
			}
			l.OccurredAt = t
		}
		if req.DueAt != nil {
			if *req.DueAt == "" {
				l.DueAt = nil
			} else {
				t, err := util.ParseDateTime(*req.DueAt)
				if err != nil {
					return apperr.Validationf("invalid due_at: %v", err)
				}
				l.DueAt = &t
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
			l.AccountID = req.AccountID
		}
		if req.Note != nil {
			l.Note = *req.Note
		}

		now := time.Now()
		l.Status = deriveDebtStatus(l.Amount, l.PaidAmount, l.DueAt, now)
		if err := tx.Save(l).Error; err != nil {
			return fmt.Errorf("save liability: %w", err)
		}
		view = toLiabilityView(l, now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// Delete soft-deletes a liability.
func (s *LiabilityService) Delete(userID, id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		l, err := s.find(tx, userID, id)
		if err != nil {
			return err
		}
		if err := tx.Delete(l).Error; err != nil {
			return fmt.Errorf("delete liability: %w", err)
		}
		log.Printf("liability deleted: id=%d user=%d", id, userID)
		return nil
	})
}

// refreshPaidAmountTx persists a freshly recounted paid amount and the
// status derived from it. Invoked only by the settlement service.
func (s *LiabilityService) refreshPaidAmountTx(tx *gorm.DB, id uint, total decimal.Decimal) error {
	var l models.Liability
	if err := tx.First(&l, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("liability not found")
		}
		return fmt.Errorf("load liability: %w", err)
	}
	l.PaidAmount = total
	l.Status = deriveDebtStatus(l.Amount, l.PaidAmount, l.DueAt, time.Now())
	if err := tx.Save(&l).Error; err != nil {
		return fmt.Errorf("save liability: %w", err)
	}
	return nil
}
