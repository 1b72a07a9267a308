package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository reads and writes invoice rows. Every method issues
// parameterized SQL over the handle of the caller's session; lookups that
// find nothing return empty results, never an error.
type Repository interface {
	ByIDs(ctx context.Context, db *gorm.DB, ids []int64) ([]Row, error)
	ByIssueDateRange(ctx context.Context, db *gorm.DB, from, to time.Time) ([]Row, error)
	ByDueDate(ctx context.Context, db *gorm.DB, due time.Time) ([]Row, error)
	ByTotal(ctx context.Context, db *gorm.DB, total decimal.Decimal) ([]Row, error)
	ByVariableSymbols(ctx context.Context, db *gorm.DB, symbols []string) ([]Row, error)
	ByCompanyID(ctx context.Context, db *gorm.DB, companyID string) ([]Row, error)
	PaidInRange(ctx context.Context, db *gorm.DB, from, to time.Time, reportMode bool) ([]Row, error)
	All(ctx context.Context, db *gorm.DB) ([]Row, error)
	RealInvoicesIssuedUpTo(ctx context.Context, db *gorm.DB, symbolPrefix string, upTo time.Time) ([]Row, error)

	IDByVariableSymbol(ctx context.Context, db *gorm.DB, symbol string) (int64, error)
	PaymentsByInvoiceIDs(ctx context.Context, db *gorm.DB, ids []int64) ([]PaymentRow, error)
	StateRows(ctx context.Context, db *gorm.DB) ([]StateRow, error)

	InsertPayment(ctx context.Context, db *gorm.DB, p PaymentInsert) error
}

// PaymentInsert carries one payment row to be written.
type PaymentInsert struct {
	ID        int64
	InvoiceID int64
	BankID    int
	Amount    decimal.Decimal
	Currency  string
	PaidOn    time.Time
	Method    int
	LogUser   string
}
