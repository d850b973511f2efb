// Package service implements the ledger core: balance derivation,
// debt exposure tracking, settlement reconciliation and the
// transaction/account orchestrators. Every public mutating method runs
// as one gorm transaction; cross-service calls inside a unit of work
// pass the tx handle so the whole operation commits or rolls back
// together.
package service

import "gorm.io/gorm"

// Services bundles the wired service instances.
//
// Transaction -> Settlement -> Receivable/Liability is the designated
// call direction inside a request; the debt services additionally use
// the transaction service to book companion entries on create. The
// cross-references are set after construction to keep the constructors
// acyclic.
type Services struct {
	Accounts     *AccountService
	Categories   *CategoryService
	Transactions *TransactionService
	Receivables  *ReceivableService
	Liabilities  *LiabilityService
	Settlements  *SettlementService
	Reports      *ReportService
}

// New wires up all services against one database handle.
func New(db *gorm.DB, defaultCurrency string) *Services {
	if defaultCurrency == "" {
		defaultCurrency = "VND"
	}

	s := &Services{
		Accounts:     &AccountService{db: db, currency: defaultCurrency},
		Categories:   &CategoryService{db: db},
		Transactions: &TransactionService{db: db, currency: defaultCurrency},
		Receivables:  &ReceivableService{db: db, currency: defaultCurrency},
		Liabilities:  &LiabilityService{db: db, currency: defaultCurrency},
		Settlements:  &SettlementService{db: db, currency: defaultCurrency},
		Reports:      &ReportService{db: db},
	}

	s.Transactions.settlements = s.Settlements
	s.Settlements.receivables = s.Receivables
	s.Settlements.liabilities = s.Liabilities
	s.Receivables.transactions = s.Transactions
	s.Liabilities.transactions = s.Transactions

	return s
}
