package service

import (
	"testing"

	"github.com/chinhnt-ps/portfolio-be/internal/database"
	"github.com/chinhnt-ps/portfolio-be/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestServices opens a fresh in-memory database per test. The pool
// is pinned to a single connection because every sqlite :memory:
// connection gets its own database.
func newTestServices(t *testing.T) *Services {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	return New(db, "VND")
}

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func decPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func uintPtr(v uint) *uint {
	return &v
}

// mustAccount creates a CASH account and returns its id.
func mustAccount(t *testing.T, s *Services, userID uint, name string, initial int64) uint {
	t.Helper()
	req := CreateAccountRequest{Name: name, Type: models.AccountCash}
	if initial != 0 {
		req.InitialBalance = decPtr(initial)
	}
	v, err := s.Accounts.Create(userID, req)
	if err != nil {
		t.Fatalf("create account %q: %v", name, err)
	}
	return v.ID
}

// mustCategory creates an EXPENSE category and returns its id.
func mustCategory(t *testing.T, s *Services, userID uint, name, ctype string) uint {
	t.Helper()
	v, err := s.Categories.Create(userID, CreateCategoryRequest{Name: name, Type: ctype})
	if err != nil {
		t.Fatalf("create category %q: %v", name, err)
	}
	return v.ID
}
