package service

import (
	"testing"
	"time"

	"github.com/chinhnt-ps/portfolio-be/internal/models"
)

func TestDashboard_MonthlyTotals(t *testing.T) {
	s := newTestServices(t)
	acctID := mustAccount(t, s, 1, "Cash", 0)
	incomeCat := mustCategory(t, s, 1, "Salary", "INCOME")
	expenseCat := mustCategory(t, s, 1, "Food", "EXPENSE")

	entries := []struct {
		ttype  models.TransactionType
		amount int64
		catID  uint
		day    string
	}{
		{models.TransactionIncome, 100000, incomeCat, "2026-07-01"},
		{models.TransactionExpense, 30000, expenseCat, "2026-07-10"},
		{models.TransactionExpense, 15000, expenseCat, "2026-07-20"},
		// outside the reporting month
		{models.TransactionExpense, 99999, expenseCat, "2026-08-01"},
	}
	for _, e := range entries {
		catID := e.catID
		if _, err := s.Transactions.Create(1, CreateTransactionRequest{
			Type:       e.ttype,
			Amount:     decPtr(e.amount),
			AccountID:  &acctID,
			CategoryID: &catID,
			OccurredAt: e.day,
		}); err != nil {
			t.Fatalf("create %s on %s: %v", e.ttype, e.day, err)
		}
	}

	month := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	report, err := s.Reports.Dashboard(1, month)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}

	if report.Month != "2026-07" {
		t.Errorf("month = %q, want 2026-07", report.Month)
	}
	if report.TotalIncome.Cmp(dec(100000)) != 0 {
		t.Errorf("total income = %s, want 100000", report.TotalIncome)
	}
	if report.TotalExpense.Cmp(dec(45000)) != 0 {
		t.Errorf("total expense = %s, want 45000", report.TotalExpense)
	}
	if report.Net.Cmp(dec(55000)) != 0 {
		t.Errorf("net = %s, want 55000", report.Net)
	}

	var foodExpense bool
	for _, cb := range report.ByCategory {
		if cb.CategoryID == expenseCat && cb.Expense.Cmp(dec(45000)) == 0 {
			foodExpense = true
		}
	}
	if !foodExpense {
		t.Errorf("category breakdown missing food expense 45000: %+v", report.ByCategory)
	}
}

func TestDashboard_ByCategoryOrderedByID(t *testing.T) {
	s := newTestServices(t)
	acctID := mustAccount(t, s, 1, "Cash", 0)
	cats := []uint{
		mustCategory(t, s, 1, "Food", "EXPENSE"),
		mustCategory(t, s, 1, "Transport", "EXPENSE"),
		mustCategory(t, s, 1, "Rent", "EXPENSE"),
	}
	for i := range cats {
		catID := cats[i]
		if _, err := s.Transactions.Create(1, CreateTransactionRequest{
			Type:       models.TransactionExpense,
			Amount:     decPtr(1000),
			AccountID:  &acctID,
			CategoryID: &catID,
			OccurredAt: "2026-07-05",
		}); err != nil {
			t.Fatalf("create expense for category %d: %v", catID, err)
		}
	}

	month := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	report, err := s.Reports.Dashboard(1, month)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if len(report.ByCategory) != len(cats) {
		t.Fatalf("breakdown rows = %d, want %d", len(report.ByCategory), len(cats))
	}
	for i := 1; i < len(report.ByCategory); i++ {
		if report.ByCategory[i-1].CategoryID >= report.ByCategory[i].CategoryID {
			t.Fatalf("breakdown not ordered by category id at index %d: %+v", i, report.ByCategory)
		}
	}
}

func TestDashboard_OutstandingDebt(t *testing.T) {
	s := newTestServices(t)
	recvID := mustReceivable(t, s, 1, 500000)
	mustLiability(t, s, 1, 300000)

	if _, err := s.Settlements.Create(1, CreateSettlementRequest{
		Type:         models.SettlementReceivable,
		ReceivableID: &recvID,
		Amount:       decPtr(200000),
	}); err != nil {
		t.Fatalf("settle receivable: %v", err)
	}

	report, err := s.Reports.Dashboard(1, time.Now())
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if report.OutstandingReceivable.Cmp(dec(300000)) != 0 {
		t.Errorf("outstanding receivable = %s, want 300000", report.OutstandingReceivable)
	}
	if report.OutstandingLiability.Cmp(dec(300000)) != 0 {
		t.Errorf("outstanding liability = %s, want 300000", report.OutstandingLiability)
	}
}
