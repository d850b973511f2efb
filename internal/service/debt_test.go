package service

import (
	"testing"
	"time"

	"github.com/chinhnt-ps/portfolio-be/internal/models"

	"github.com/shopspring/decimal"
)

func TestDeriveDebtStatus(t *testing.T) {
	now := time.Date(2026, 7, 15, 12, 0, 0, 0, time.UTC)
	past := now.AddDate(0, 0, -5)
	future := now.AddDate(0, 0, 5)

	cases := []struct {
		name   string
		amount int64
		paid   int64
		dueAt  *time.Time
		want   models.DebtStatus
	}{
		{"unpaid no due date", 1000, 0, nil, models.DebtOpen},
		{"unpaid future due date", 1000, 0, &future, models.DebtOpen},
		{"unpaid past due date", 1000, 0, &past, models.DebtOverdue},
		{"partial no due date", 1000, 400, nil, models.DebtPartiallyPaid},
		{"partial future due date", 1000, 400, &future, models.DebtPartiallyPaid},
		{"partial past due date", 1000, 400, &past, models.DebtOverdue},
		{"fully paid", 1000, 1000, nil, models.DebtPaid},
		{"fully paid past due date", 1000, 1000, &past, models.DebtPaid},
		{"overpaid", 1000, 1200, &past, models.DebtPaid},
	}

	for _, tc := range cases {
		got := deriveDebtStatus(decimal.NewFromInt(tc.amount), decimal.NewFromInt(tc.paid), tc.dueAt, now)
		if got != tc.want {
			t.Errorf("%s: status = %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestDebtStatus_OverdueFlipsWithoutWrite(t *testing.T) {
	s := newTestServices(t)

	due := time.Now().Add(time.Hour).Format("2006-01-02T15:04:05")
	v, err := s.Receivables.Create(1, CreateDebtRequest{
		CounterpartyName: "An",
		Amount:           decPtr(1000),
		DueAt:            due,
	})
	if err != nil {
		t.Fatalf("create receivable: %v", err)
	}
	if v.Status != models.DebtOpen {
		t.Errorf("status before due date = %s, want OPEN", v.Status)
	}

	// push the due date into the past and re-read: the status is
	// derived at read time, no settlement writes needed
	pastDue := time.Now().Add(-time.Hour).Format("2006-01-02T15:04:05")
	updated, err := s.Receivables.Update(1, v.ID, UpdateDebtRequest{DueAt: &pastDue})
	if err != nil {
		t.Fatalf("update due date: %v", err)
	}
	if updated.Status != models.DebtOverdue {
		t.Errorf("status after due date = %s, want OVERDUE", updated.Status)
	}

	read, err := s.Receivables.Get(1, v.ID)
	if err != nil {
		t.Fatalf("get receivable: %v", err)
	}
	if read.Status != models.DebtOverdue {
		t.Errorf("re-read status = %s, want OVERDUE", read.Status)
	}
}
