package service

import (
	"testing"

	"github.com/chinhnt-ps/portfolio-be/internal/apperr"
	"github.com/chinhnt-ps/portfolio-be/internal/models"
)

func mustLiability(t *testing.T, s *Services, userID uint, amount int64) uint {
	t.Helper()
	v, err := s.Liabilities.Create(userID, CreateDebtRequest{
		CounterpartyName: "Binh",
		Amount:           decPtr(amount),
	})
	if err != nil {
		t.Fatalf("create liability: %v", err)
	}
	return v.ID
}

func mustReceivable(t *testing.T, s *Services, userID uint, amount int64) uint {
	t.Helper()
	v, err := s.Receivables.Create(userID, CreateDebtRequest{
		CounterpartyName: "An",
		Amount:           decPtr(amount),
	})
	if err != nil {
		t.Fatalf("create receivable: %v", err)
	}
	return v.ID
}

func TestSettlementLifecycle_PartialThenOverflowThenPaid(t *testing.T) {
	s := newTestServices(t)
	liabID := mustLiability(t, s, 1, 1000000)

	if _, err := s.Settlements.Create(1, CreateSettlementRequest{
		Type:        models.SettlementLiability,
		LiabilityID: &liabID,
		Amount:      decPtr(700000),
	}); err != nil {
		t.Fatalf("first settlement: %v", err)
	}

	v, err := s.Liabilities.Get(1, liabID)
	if err != nil {
		t.Fatalf("get liability: %v", err)
	}
	if v.Status != models.DebtPartiallyPaid {
		t.Errorf("status = %s, want PARTIALLY_PAID", v.Status)
	}
	if v.PaidAmount.Cmp(dec(700000)) != 0 {
		t.Errorf("paid = %s, want 700000", v.PaidAmount)
	}

	_, err = s.Settlements.Create(1, CreateSettlementRequest{
		Type:        models.SettlementLiability,
		LiabilityID: &liabID,
		Amount:      decPtr(400000),
	})
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Errorf("overflow settlement: err = %v, want conflict", err)
	}

	if _, err := s.Settlements.Create(1, CreateSettlementRequest{
		Type:        models.SettlementLiability,
		LiabilityID: &liabID,
		Amount:      decPtr(300000),
	}); err != nil {
		t.Fatalf("final settlement: %v", err)
	}

	v, err = s.Liabilities.Get(1, liabID)
	if err != nil {
		t.Fatalf("get liability after full payment: %v", err)
	}
	if v.Status != models.DebtPaid {
		t.Errorf("status = %s, want PAID", v.Status)
	}
	if v.RemainingAmount.Sign() != 0 {
		t.Errorf("remaining = %s, want 0", v.RemainingAmount)
	}
}

func TestSettlementDelete_RecountsPaidAmount(t *testing.T) {
	s := newTestServices(t)
	recvID := mustReceivable(t, s, 1, 500000)

	first, err := s.Settlements.Create(1, CreateSettlementRequest{
		Type:         models.SettlementReceivable,
		ReceivableID: &recvID,
		Amount:       decPtr(200000),
	})
	if err != nil {
		t.Fatalf("first settlement: %v", err)
	}
	if _, err := s.Settlements.Create(1, CreateSettlementRequest{
		Type:         models.SettlementReceivable,
		ReceivableID: &recvID,
		Amount:       decPtr(100000),
	}); err != nil {
		t.Fatalf("second settlement: %v", err)
	}

	if err := s.Settlements.Delete(1, first.ID); err != nil {
		t.Fatalf("delete settlement: %v", err)
	}

	v, err := s.Receivables.Get(1, recvID)
	if err != nil {
		t.Fatalf("get receivable: %v", err)
	}
	if v.PaidAmount.Cmp(dec(100000)) != 0 {
		t.Errorf("paid after delete = %s, want 100000", v.PaidAmount)
	}
	if v.Status != models.DebtPartiallyPaid {
		t.Errorf("status = %s, want PARTIALLY_PAID", v.Status)
	}
}

func TestSettlementDelete_LastOneReopens(t *testing.T) {
	s := newTestServices(t)
	recvID := mustReceivable(t, s, 1, 500000)

	only, err := s.Settlements.Create(1, CreateSettlementRequest{
		Type:         models.SettlementReceivable,
		ReceivableID: &recvID,
		Amount:       decPtr(500000),
	})
	if err != nil {
		t.Fatalf("create settlement: %v", err)
	}
	if err := s.Settlements.Delete(1, only.ID); err != nil {
		t.Fatalf("delete settlement: %v", err)
	}

	v, err := s.Receivables.Get(1, recvID)
	if err != nil {
		t.Fatalf("get receivable: %v", err)
	}
	if v.Status != models.DebtOpen {
		t.Errorf("status = %s, want OPEN", v.Status)
	}
	if v.PaidAmount.Sign() != 0 {
		t.Errorf("paid = %s, want 0", v.PaidAmount)
	}
}

func TestSettlementUpdate_ExcludesOldAmountFromBound(t *testing.T) {
	s := newTestServices(t)
	liabID := mustLiability(t, s, 1, 1000)

	created, err := s.Settlements.Create(1, CreateSettlementRequest{
		Type:        models.SettlementLiability,
		LiabilityID: &liabID,
		Amount:      decPtr(600),
	})
	if err != nil {
		t.Fatalf("create settlement: %v", err)
	}

	// raising 600 to 1000 is fine: the old amount does not count
	// against the bound
	if _, err := s.Settlements.Update(1, created.ID, UpdateSettlementRequest{
		Amount: decPtr(1000),
	}); err != nil {
		t.Fatalf("update to full amount: %v", err)
	}

	v, err := s.Liabilities.Get(1, liabID)
	if err != nil {
		t.Fatalf("get liability: %v", err)
	}
	if v.Status != models.DebtPaid {
		t.Errorf("status = %s, want PAID", v.Status)
	}

	_, err = s.Settlements.Update(1, created.ID, UpdateSettlementRequest{
		Amount: decPtr(1100),
	})
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Errorf("update above bound: err = %v, want conflict", err)
	}
}

func TestSettlementCreate_WrongRefForType(t *testing.T) {
	s := newTestServices(t)
	recvID := mustReceivable(t, s, 1, 1000)
	liabID := mustLiability(t, s, 1, 1000)

	_, err := s.Settlements.Create(1, CreateSettlementRequest{
		Type:         models.SettlementReceivable,
		ReceivableID: &recvID,
		LiabilityID:  &liabID,
		Amount:       decPtr(100),
	})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("both refs set: err = %v, want validation error", err)
	}

	_, err = s.Settlements.Create(1, CreateSettlementRequest{
		Type:   models.SettlementLiability,
		Amount: decPtr(100),
	})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("missing liability ref: err = %v, want validation error", err)
	}
}

func TestSettlementCreate_NonPositiveAmount(t *testing.T) {
	s := newTestServices(t)
	recvID := mustReceivable(t, s, 1, 1000)

	_, err := s.Settlements.Create(1, CreateSettlementRequest{
		Type:         models.SettlementReceivable,
		ReceivableID: &recvID,
		Amount:       decPtr(0),
	})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("zero amount: err = %v, want validation error", err)
	}
}

func TestSettlementCreate_CrossUserRef(t *testing.T) {
	s := newTestServices(t)
	recvID := mustReceivable(t, s, 1, 1000)

	_, err := s.Settlements.Create(2, CreateSettlementRequest{
		Type:         models.SettlementReceivable,
		ReceivableID: &recvID,
		Amount:       decPtr(100),
	})
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Errorf("settle other user's receivable: err = %v, want not found", err)
	}
}

func TestSettlementListForLiability_Ordered(t *testing.T) {
	s := newTestServices(t)
	liabID := mustLiability(t, s, 1, 1000)

	if _, err := s.Settlements.Create(1, CreateSettlementRequest{
		Type:        models.SettlementLiability,
		LiabilityID: &liabID,
		Amount:      decPtr(300),
		OccurredAt:  "2026-01-10",
	}); err != nil {
		t.Fatalf("first settlement: %v", err)
	}
	if _, err := s.Settlements.Create(1, CreateSettlementRequest{
		Type:        models.SettlementLiability,
		LiabilityID: &liabID,
		Amount:      decPtr(200),
		OccurredAt:  "2026-01-05",
	}); err != nil {
		t.Fatalf("second settlement: %v", err)
	}

	views, err := s.Settlements.ListForLiability(1, liabID)
	if err != nil {
		t.Fatalf("list settlements: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("settlements = %d, want 2", len(views))
	}
	if !views[0].OccurredAt.Before(views[1].OccurredAt) {
		t.Errorf("settlements not in chronological order: %v then %v",
			views[0].OccurredAt, views[1].OccurredAt)
	}
}
