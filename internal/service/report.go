package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/chinhnt-ps/portfolio-be/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReportService produces read-only rollups over the transaction log and
// open debt exposure. It performs no writes.
type ReportService struct {
	db *gorm.DB
}

type CategoryBreakdown struct {
	CategoryID uint            `json:"category_id"`
	Income     decimal.Decimal `json:"income"`
	Expense    decimal.Decimal `json:"expense"`
}

// DashboardReport is the monthly summary view.
type DashboardReport struct {
	Month                 string              `json:"month"`
	TotalIncome           decimal.Decimal     `json:"total_income"`
	TotalExpense          decimal.Decimal     `json:"total_expense"`
	Net                   decimal.Decimal     `json:"net"`
	ByCategory            []CategoryBreakdown `json:"by_category"`
	OutstandingReceivable decimal.Decimal     `json:"outstanding_receivable"`
	OutstandingLiability  decimal.Decimal     `json:"outstanding_liability"`
}

// Dashboard aggregates one month of INCOME/EXPENSE entries plus the
// user's current open debt exposure.
func (s *ReportService) Dashboard(userID uint, month time.Time) (*DashboardReport, error) {
	start := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, month.Location())
	end := start.AddDate(0, 1, 0)

	var entries []models.Transaction
	if err := s.db.Where(
		"user_id = ? AND occurred_at >= ? AND occurred_at < ? AND type IN ?",
		userID, start, end,
		[]models.TransactionType{models.TransactionIncome, models.TransactionExpense},
	).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}

	report := &DashboardReport{
		Month:                 start.Format("2006-01"),
		TotalIncome:           decimal.Zero,
		TotalExpense:          decimal.Zero,
		OutstandingReceivable: decimal.Zero,
		OutstandingLiability:  decimal.Zero,
	}

	byCategory := make(map[uint]*CategoryBreakdown)
	for i := range entries {
		e := &entries[i]
		if e.Type == models.TransactionIncome {
			report.TotalIncome = report.TotalIncome.Add(e.Amount)
		} else {
			report.TotalExpense = report.TotalExpense.Add(e.Amount)
		}

		if e.CategoryID == nil {
			continue
		}
		cb, ok := byCategory[*e.CategoryID]
		if !ok {
			cb = &CategoryBreakdown{
				CategoryID: *e.CategoryID,
				Income:     decimal.Zero,
				Expense:    decimal.Zero,
			}
			byCategory[*e.CategoryID] = cb
		}
		if e.Type == models.TransactionIncome {
			cb.Income = cb.Income.Add(e.Amount)
		} else {
			cb.Expense = cb.Expense.Add(e.Amount)
		}
	}
	report.Net = report.TotalIncome.Sub(report.TotalExpense)
	for _, cb := range byCategory {
		report.ByCategory = append(report.ByCategory, *cb)
	}
	sort.Slice(report.ByCategory, func(i, j int) bool {
		return report.ByCategory[i].CategoryID < report.ByCategory[j].CategoryID
	})

	var receivables []models.Receivable
	if err := s.db.Where("user_id = ?", userID).Find(&receivables).Error; err != nil {
		return nil, fmt.Errorf("load receivables: %w", err)
	}
	for i := range receivables {
		r := &receivables[i]
		report.OutstandingReceivable = report.OutstandingReceivable.Add(r.Amount.Sub(r.PaidAmount))
	}

	var liabilities []models.Liability
	if err := s.db.Where("user_id = ?", userID).Find(&liabilities).Error; err != nil {
		return nil, fmt.Errorf("load liabilities: %w", err)
	}
	for i := range liabilities {
		l := &liabilities[i]
		report.OutstandingLiability = report.OutstandingLiability.Add(l.Amount.Sub(l.PaidAmount))
	}

	return report, nil
}
