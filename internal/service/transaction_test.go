package service

import (
	"testing"

	"github.com/chinhnt-ps/portfolio-be/internal/apperr"
	"github.com/chinhnt-ps/portfolio-be/internal/models"
)

func TestTransactionTransfer_SameAccountRejected(t *testing.T) {
	s := newTestServices(t)
	acctID := mustAccount(t, s, 1, "Cash", 100000)

	_, err := s.Transactions.Create(1, CreateTransactionRequest{
		Type:          models.TransactionTransfer,
		Amount:        decPtr(10000),
		FromAccountID: &acctID,
		ToAccountID:   &acctID,
	})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("same-account transfer: err = %v, want validation error", err)
	}

	// nothing may be persisted on a rejected transfer
	_, total, err := s.Transactions.List(1, TransactionFilters{
		Type: models.TransactionTransfer,
	}, 1, 10)
	if err != nil {
		t.Fatalf("list transfers: %v", err)
	}
	if total != 0 {
		t.Errorf("transfers persisted = %d, want 0", total)
	}
}

func TestTransactionSettlement_NoRoomLeavesNoRow(t *testing.T) {
	s := newTestServices(t)
	recvID := mustReceivable(t, s, 1, 500)

	if _, err := s.Settlements.Create(1, CreateSettlementRequest{
		Type:         models.SettlementReceivable,
		ReceivableID: &recvID,
		Amount:       decPtr(500),
	}); err != nil {
		t.Fatalf("settle in full: %v", err)
	}

	_, err := s.Transactions.Create(1, CreateTransactionRequest{
		Type:         models.TransactionReceivableSettlement,
		Amount:       decPtr(100),
		ReceivableID: &recvID,
	})
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("settle beyond amount: err = %v, want conflict", err)
	}

	// pre-flight rejection must not leave a transaction behind
	_, total, err := s.Transactions.List(1, TransactionFilters{
		Type: models.TransactionReceivableSettlement,
	}, 1, 10)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if total != 0 {
		t.Errorf("settlement transactions persisted = %d, want 0", total)
	}
}

func TestTransactionSettlement_PairsSettlement(t *testing.T) {
	s := newTestServices(t)
	recvID := mustReceivable(t, s, 1, 1000)

	view, err := s.Transactions.Create(1, CreateTransactionRequest{
		Type:         models.TransactionReceivableSettlement,
		Amount:       decPtr(400),
		ReceivableID: &recvID,
	})
	if err != nil {
		t.Fatalf("create settlement transaction: %v", err)
	}
	if view.SettlementID == nil {
		t.Fatal("settlement id not written back onto the transaction")
	}

	settlement, err := s.Settlements.Get(1, *view.SettlementID)
	if err != nil {
		t.Fatalf("get paired settlement: %v", err)
	}
	if settlement.TransactionID == nil || *settlement.TransactionID != view.ID {
		t.Errorf("settlement transaction ref = %v, want %d", settlement.TransactionID, view.ID)
	}
	if settlement.Amount.Cmp(dec(400)) != 0 {
		t.Errorf("settlement amount = %s, want 400", settlement.Amount)
	}

	recv, err := s.Receivables.Get(1, recvID)
	if err != nil {
		t.Fatalf("get receivable: %v", err)
	}
	if recv.PaidAmount.Cmp(dec(400)) != 0 {
		t.Errorf("receivable paid = %s, want 400", recv.PaidAmount)
	}
}

func TestTransactionUpdate_LockedAfterSettlementLink(t *testing.T) {
	s := newTestServices(t)
	liabID := mustLiability(t, s, 1, 1000)

	view, err := s.Transactions.Create(1, CreateTransactionRequest{
		Type:        models.TransactionLiabilitySettlement,
		Amount:      decPtr(400),
		LiabilityID: &liabID,
	})
	if err != nil {
		t.Fatalf("create settlement transaction: %v", err)
	}

	_, err = s.Transactions.Update(1, view.ID, UpdateTransactionRequest{
		Amount: decPtr(500),
	})
	if apperr.KindOf(err) != apperr.KindBusiness {
		t.Errorf("amount change on linked transaction: err = %v, want business error", err)
	}

	// descriptive fields stay editable
	note := "paid back at lunch"
	updated, err := s.Transactions.Update(1, view.ID, UpdateTransactionRequest{
		Note: &note,
	})
	if err != nil {
		t.Fatalf("note change on linked transaction: %v", err)
	}
	if updated.Note != note {
		t.Errorf("note = %q, want %q", updated.Note, note)
	}
}

func TestTransactionExpense_RequiresCategory(t *testing.T) {
	s := newTestServices(t)
	acctID := mustAccount(t, s, 1, "Cash", 0)

	_, err := s.Transactions.Create(1, CreateTransactionRequest{
		Type:      models.TransactionExpense,
		Amount:    decPtr(100),
		AccountID: &acctID,
	})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("expense without category: err = %v, want validation error", err)
	}
}

func TestTransactionDelete_KeepsPairedSettlement(t *testing.T) {
	s := newTestServices(t)
	liabID := mustLiability(t, s, 1, 1000)

	view, err := s.Transactions.Create(1, CreateTransactionRequest{
		Type:        models.TransactionLiabilitySettlement,
		Amount:      decPtr(400),
		LiabilityID: &liabID,
	})
	if err != nil {
		t.Fatalf("create settlement transaction: %v", err)
	}
	if err := s.Transactions.Delete(1, view.ID); err != nil {
		t.Fatalf("delete transaction: %v", err)
	}

	// the settlement and the paid amount survive the transaction delete
	if _, err := s.Settlements.Get(1, *view.SettlementID); err != nil {
		t.Errorf("paired settlement gone after transaction delete: %v", err)
	}
	liab, err := s.Liabilities.Get(1, liabID)
	if err != nil {
		t.Fatalf("get liability: %v", err)
	}
	if liab.PaidAmount.Cmp(dec(400)) != 0 {
		t.Errorf("paid after transaction delete = %s, want 400", liab.PaidAmount)
	}
}

func TestTransactionBalanceAdjustment_SignedAmount(t *testing.T) {
	s := newTestServices(t)
	acctID := mustAccount(t, s, 1, "Cash", 100000)

	if _, err := s.Transactions.Create(1, CreateTransactionRequest{
		Type:      models.TransactionBalanceAdjustment,
		Amount:    decPtr(-25000),
		AccountID: &acctID,
	}); err != nil {
		t.Fatalf("negative adjustment: %v", err)
	}

	v, err := s.Accounts.Get(1, acctID)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if v.CurrentBalance.Cmp(dec(75000)) != 0 {
		t.Errorf("balance = %s, want 75000", v.CurrentBalance)
	}

	_, err = s.Transactions.Create(1, CreateTransactionRequest{
		Type:      models.TransactionBalanceAdjustment,
		Amount:    decPtr(0),
		AccountID: &acctID,
	})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("zero adjustment: err = %v, want validation error", err)
	}
}

func TestTransactionCreate_NegativeAmountRejected(t *testing.T) {
	s := newTestServices(t)
	acctID := mustAccount(t, s, 1, "Cash", 0)
	catID := mustCategory(t, s, 1, "Food", "EXPENSE")

	_, err := s.Transactions.Create(1, CreateTransactionRequest{
		Type:       models.TransactionExpense,
		Amount:     decPtr(-100),
		AccountID:  &acctID,
		CategoryID: &catID,
	})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("negative expense: err = %v, want validation error", err)
	}
}

func TestTransactionCreate_CrossUserCategoryRejected(t *testing.T) {
	s := newTestServices(t)
	acctID := mustAccount(t, s, 1, "Cash", 0)
	otherCat := mustCategory(t, s, 2, "Food", "EXPENSE")

	_, err := s.Transactions.Create(1, CreateTransactionRequest{
		Type:       models.TransactionExpense,
		Amount:     decPtr(100),
		AccountID:  &acctID,
		CategoryID: &otherCat,
	})
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expense against another user's category: err = %v, want not found", err)
	}

	_, total, err := s.Transactions.List(1, TransactionFilters{}, 1, 10)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if total != 0 {
		t.Errorf("transactions persisted = %d, want 0", total)
	}
}

func TestTransactionCreate_InvalidCurrencyRejected(t *testing.T) {
	s := newTestServices(t)
	acctID := mustAccount(t, s, 1, "Cash", 0)
	catID := mustCategory(t, s, 1, "Food", "EXPENSE")

	for _, code := range []string{"dong", "vn", "US$"} {
		_, err := s.Transactions.Create(1, CreateTransactionRequest{
			Type:       models.TransactionExpense,
			Amount:     decPtr(100),
			Currency:   code,
			AccountID:  &acctID,
			CategoryID: &catID,
		})
		if apperr.KindOf(err) != apperr.KindValidation {
			t.Errorf("currency %q: err = %v, want validation error", code, err)
		}
	}
}

func TestTransactionUpdate_CannotBecomeSettlementFlavor(t *testing.T) {
	s := newTestServices(t)
	acctID := mustAccount(t, s, 1, "Cash", 0)
	catID := mustCategory(t, s, 1, "Food", "EXPENSE")
	recvID := mustReceivable(t, s, 1, 1000)

	view, err := s.Transactions.Create(1, CreateTransactionRequest{
		Type:       models.TransactionExpense,
		Amount:     decPtr(100),
		AccountID:  &acctID,
		CategoryID: &catID,
	})
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}

	newType := models.TransactionReceivableSettlement
	_, err = s.Transactions.Update(1, view.ID, UpdateTransactionRequest{
		Type:         &newType,
		ReceivableID: &recvID,
	})
	if apperr.KindOf(err) != apperr.KindBusiness {
		t.Fatalf("type change into settlement flavor: err = %v, want business error", err)
	}

	// no settlement may appear and no paid amount may move
	recv, err := s.Receivables.Get(1, recvID)
	if err != nil {
		t.Fatalf("get receivable: %v", err)
	}
	if recv.PaidAmount.Cmp(dec(0)) != 0 {
		t.Errorf("receivable paid = %s, want 0", recv.PaidAmount)
	}
}

func TestTransactionList_Filters(t *testing.T) {
	s := newTestServices(t)
	acctID := mustAccount(t, s, 1, "Cash", 0)
	incomeCat := mustCategory(t, s, 1, "Salary", "INCOME")
	expenseCat := mustCategory(t, s, 1, "Food", "EXPENSE")

	if _, err := s.Transactions.Create(1, CreateTransactionRequest{
		Type:       models.TransactionIncome,
		Amount:     decPtr(100000),
		AccountID:  &acctID,
		CategoryID: &incomeCat,
		Note:       "July salary",
		OccurredAt: "2026-07-01",
	}); err != nil {
		t.Fatalf("create income: %v", err)
	}
	if _, err := s.Transactions.Create(1, CreateTransactionRequest{
		Type:       models.TransactionExpense,
		Amount:     decPtr(45000),
		AccountID:  &acctID,
		CategoryID: &expenseCat,
		Note:       "pho bo",
		OccurredAt: "2026-07-02",
	}); err != nil {
		t.Fatalf("create expense: %v", err)
	}

	views, total, err := s.Transactions.List(1, TransactionFilters{
		Type: models.TransactionExpense,
	}, 1, 10)
	if err != nil {
		t.Fatalf("filter by type: %v", err)
	}
	if total != 1 || len(views) != 1 {
		t.Fatalf("expense filter hits = %d, want 1", total)
	}
	if views[0].Note != "pho bo" {
		t.Errorf("filtered note = %q, want %q", views[0].Note, "pho bo")
	}

	_, total, err = s.Transactions.List(1, TransactionFilters{
		Keyword: "salary",
	}, 1, 10)
	if err != nil {
		t.Fatalf("filter by keyword: %v", err)
	}
	if total != 1 {
		t.Errorf("keyword filter hits = %d, want 1", total)
	}

	min := dec(50000)
	_, total, err = s.Transactions.List(1, TransactionFilters{
		MinAmount: &min,
	}, 1, 10)
	if err != nil {
		t.Fatalf("filter by min amount: %v", err)
	}
	if total != 1 {
		t.Errorf("min amount filter hits = %d, want 1", total)
	}
}

func TestTransactionList_SortByDateDescDefault(t *testing.T) {
	s := newTestServices(t)
	acctID := mustAccount(t, s, 1, "Cash", 0)
	catID := mustCategory(t, s, 1, "Food", "EXPENSE")

	for _, day := range []string{"2026-07-03", "2026-07-01", "2026-07-02"} {
		if _, err := s.Transactions.Create(1, CreateTransactionRequest{
			Type:       models.TransactionExpense,
			Amount:     decPtr(1000),
			AccountID:  &acctID,
			CategoryID: &catID,
			OccurredAt: day,
		}); err != nil {
			t.Fatalf("create expense on %s: %v", day, err)
		}
	}

	views, _, err := s.Transactions.List(1, TransactionFilters{}, 1, 10)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	for i := 1; i < len(views); i++ {
		if views[i-1].OccurredAt.Before(views[i].OccurredAt) {
			t.Fatalf("not sorted newest first at index %d", i)
		}
	}
}
